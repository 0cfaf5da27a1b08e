package render

import (
	"bytes"
	"html/template"
	"io/fs"
	"strings"
	"testing"

	"github.com/nomis52/signup/banner"
	"github.com/nomis52/signup/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chessView() board.View {
	return board.View{
		Loaded: true,
		Cards: []board.Card{
			{
				Name:         "Chess Club",
				Description:  "Learn strategies and compete in chess tournaments",
				Schedule:     "Fridays, 3:30 PM - 5:00 PM",
				SpotsLeft:    9,
				Participants: []board.Participant{{Email: "a@x.com", Activity: "Chess Club"}},
			},
			{
				Name:        "Gym Class",
				Description: "Physical education",
				Schedule:    "Mondays",
				SpotsLeft:   30,
			},
		},
		Options: []board.Option{
			{Value: "", Label: board.PlaceholderOption},
			{Value: "Chess Club", Label: "Chess Club"},
			{Value: "Gym Class", Label: "Gym Class"},
		},
	}
}

func renderBoard(t *testing.T, p BoardPage) string {
	t.Helper()
	h, err := NewHTML()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, h.Board(&buf, p))
	return buf.String()
}

func TestHTML_Board(t *testing.T) {
	out := renderBoard(t, BoardPage{View: chessView()})

	assert.Equal(t, 2, strings.Count(out, `class="activity-card"`))
	assert.Equal(t, 3, strings.Count(out, "<option "))
	assert.Contains(t, out, "<h4>Chess Club</h4>")
	assert.Contains(t, out, "<strong>Availability:</strong> 9 spots left")
	assert.Contains(t, out, "<strong>Schedule:</strong> Fridays, 3:30 PM - 5:00 PM")
	assert.Equal(t, 1, strings.Count(out, `class="participant-email"`))
	assert.Contains(t, out, `<span class="participant-email">a@x.com</span>`)
	assert.Contains(t, out, board.NoParticipantsText)
	assert.Contains(t, out, board.PlaceholderOption)
	assert.Contains(t, out, `id="message" class="hidden"`)
	assert.Contains(t, out, "<title>"+DefaultTitle+"</title>")
}

func TestHTML_BoardUnregisterLink(t *testing.T) {
	out := renderBoard(t, BoardPage{View: chessView()})

	assert.Contains(t, out, `href="/unregister?activity=Chess%20Club&email=a%40x.com"`)
}

func TestHTML_BoardEscapesText(t *testing.T) {
	v := board.View{
		Loaded: true,
		Cards: []board.Card{{
			Name:         `<b>"Tom" & 'Jerry'</b>`,
			Description:  "<script>alert(1)</script>",
			Schedule:     "1 < 2",
			Participants: []board.Participant{{Email: `x"><img src=y>@x.com`, Activity: "A"}},
		}},
		Options: []board.Option{
			{Value: "", Label: board.PlaceholderOption},
			{Value: `<b>"Tom" & 'Jerry'</b>`, Label: `<b>"Tom" & 'Jerry'</b>`},
		},
	}
	out := renderBoard(t, BoardPage{View: v})

	assert.NotContains(t, out, "<b>")
	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, "<img")
	assert.Contains(t, out, "<h4>&lt;b&gt;&#34;Tom&#34; &amp; &#39;Jerry&#39;&lt;/b&gt;</h4>")
	assert.Contains(t, out, "&lt;script&gt;alert(1)&lt;/script&gt;")
	assert.Contains(t, out, "1 &lt; 2")
}

func TestHTML_BoardStates(t *testing.T) {
	tests := []struct {
		name    string
		view    board.View
		want    []string
		notWant []string
	}{
		{
			name:    "not loaded",
			view:    board.View{Options: []board.Option{{Label: board.PlaceholderOption}}},
			want:    []string{"Loading activities..."},
			notWant: []string{`class="activity-card"`},
		},
		{
			name:    "load failed",
			view:    board.View{Loaded: true, LoadFailed: true},
			want:    []string{board.LoadFailedText},
			notWant: []string{`class="activity-card"`, "Loading activities..."},
		},
		{
			name: "success banner",
			view: board.View{Loaded: true, Banner: banner.State{Text: "Signed up a@x.com for Chess Club", Kind: banner.KindSuccess, Visible: true}},
			want: []string{`id="message" class="success">Signed up a@x.com for Chess Club</div>`},
		},
		{
			name: "error banner",
			view: board.View{Loaded: true, Banner: banner.State{Text: "Activity <not> found", Kind: banner.KindError, Visible: true}},
			want: []string{`id="message" class="error">Activity &lt;not&gt; found</div>`},
		},
		{
			name: "form keeps values",
			view: board.View{
				Loaded:  true,
				Form:    board.Form{Email: "b@x.com", Activity: "Chess Club"},
				Options: []board.Option{{Label: board.PlaceholderOption}, {Value: "Chess Club", Label: "Chess Club"}},
			},
			want: []string{`value="b@x.com"`, `<option value="Chess Club" selected>Chess Club</option>`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := renderBoard(t, BoardPage{View: tt.view})
			for _, s := range tt.want {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.notWant {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestHTML_BoardCSRFField(t *testing.T) {
	field := template.HTML(`<input type="hidden" name="gorilla.csrf.Token" value="tok">`)
	out := renderBoard(t, BoardPage{View: chessView(), CSRFField: field})

	assert.Contains(t, out, string(field))
}

func TestHTML_Confirm(t *testing.T) {
	h, err := NewHTML()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, h.Confirm(&buf, ConfirmPage{Activity: "Chess Club", Email: "a@x.com"}))
	out := buf.String()

	assert.Contains(t, out, "<h3>Unregister a@x.com from Chess Club?</h3>")
	assert.Contains(t, out, `name="activity" value="Chess Club"`)
	assert.Contains(t, out, `name="email" value="a@x.com"`)
	assert.Contains(t, out, `name="confirm" value="yes"`)
}

func TestText(t *testing.T) {
	v := chessView()
	v.Banner = banner.State{Text: "Signed up a@x.com for Chess Club", Kind: banner.KindSuccess, Visible: true}

	var buf bytes.Buffer
	require.NoError(t, Text(&buf, v))

	want := `[success] Signed up a@x.com for Chess Club

Chess Club
  Learn strategies and compete in chess tournaments
  Schedule: Fridays, 3:30 PM - 5:00 PM
  Availability: 9 spots left
  Current Participants:
    - a@x.com

Gym Class
  Physical education
  Schedule: Mondays
  Availability: 30 spots left
  No participants yet
`
	assert.Equal(t, want, buf.String())
}

func TestText_Literal(t *testing.T) {
	v := board.View{Loaded: true, Cards: []board.Card{{Name: `<b>"Tom" & 'Jerry'</b>`}}}

	var buf bytes.Buffer
	require.NoError(t, Text(&buf, v))
	assert.True(t, strings.HasPrefix(buf.String(), `<b>"Tom" & 'Jerry'</b>`+"\n"))
}

func TestText_LoadFailed(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text(&buf, board.View{Loaded: true, LoadFailed: true}))
	assert.Equal(t, board.LoadFailedText+"\n", buf.String())
}

func TestStatic(t *testing.T) {
	data, err := fs.ReadFile(Static(), "styles.css")
	require.NoError(t, err)
	assert.Contains(t, string(data), ".hidden")
}
