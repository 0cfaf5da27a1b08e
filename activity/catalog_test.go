package activity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantErr  bool
		verifyFn func(t *testing.T, c Catalog)
	}{
		{
			name: "keeps document order",
			input: `{
				"Programming Class": {"description": "Learn", "schedule": "Tue", "max_participants": 20, "participants": []},
				"Chess Club": {"description": "Chess", "schedule": "Fri", "max_participants": 10, "participants": ["a@x.com"]},
				"Art Studio": {"description": "Paint", "schedule": "Mon", "max_participants": 5, "participants": []}
			}`,
			verifyFn: func(t *testing.T, c Catalog) {
				assert.Equal(t, []string{"Programming Class", "Chess Club", "Art Studio"}, c.Names())
				assert.Equal(t, []string{"a@x.com"}, c[1].Participants)
				assert.Equal(t, 9, c[1].SpotsLeft())
				assert.Equal(t, 5, c[2].SpotsLeft())
				assert.False(t, c[2].HasParticipants())
			},
		},
		{
			name:  "empty object",
			input: `{}`,
			verifyFn: func(t *testing.T, c Catalog) {
				assert.Empty(t, c)
			},
		},
		{
			name:  "repeated key keeps first position",
			input: `{"A": {"max_participants": 1, "participants": []}, "B": {"max_participants": 2, "participants": []}, "A": {"max_participants": 3, "participants": []}}`,
			verifyFn: func(t *testing.T, c Catalog) {
				require.Len(t, c, 2)
				assert.Equal(t, "A", c[0].Name)
				assert.Equal(t, 3, c[0].MaxParticipants)
			},
		},
		{
			name:    "array is rejected",
			input:   `[]`,
			wantErr: true,
		},
		{
			name:    "null is rejected",
			input:   `null`,
			wantErr: true,
		},
		{
			name:    "bad activity body",
			input:   `{"A": {"max_participants": "ten", "participants": []}}`,
			wantErr: true,
		},
		{
			name:    "null participants",
			input:   `{"A": {"max_participants": 1, "participants": null}}`,
			wantErr: true,
		},
		{
			name:    "missing participants",
			input:   `{"A": {"description": "x", "schedule": "Mon", "max_participants": 1}}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Catalog
			err := json.Unmarshal([]byte(tt.input), &c)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.verifyFn != nil {
				tt.verifyFn(t, c)
			}
		})
	}
}

func TestCatalog_MarshalJSONKeepsOrder(t *testing.T) {
	c := Catalog{
		{Name: "Zebra", MaxParticipants: 1},
		{Name: "Alpha", MaxParticipants: 2, Participants: []string{"x@y.z"}},
	}

	data, err := json.Marshal(c)
	require.NoError(t, err)

	var decoded Catalog
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, []string{"Zebra", "Alpha"}, decoded.Names())
	assert.Equal(t, []string{"x@y.z"}, decoded[1].Participants)
	assert.Empty(t, decoded[0].Participants, "a nil list is written as []")
	assert.NotNil(t, decoded[0].Participants)
}

func TestActivity_SpotsLeftCanBeNegative(t *testing.T) {
	a := Activity{MaxParticipants: 1, Participants: []string{"a", "b", "c"}}
	assert.Equal(t, -2, a.SpotsLeft())
}
