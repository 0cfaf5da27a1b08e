package render

import (
	"bufio"
	"fmt"
	"io"

	"github.com/nomis52/signup/banner"
	"github.com/nomis52/signup/board"
)

// Text writes a plain text rendering of the board. Only the activity list
// and a visible banner are written; the form has no meaning on a terminal.
func Text(w io.Writer, v board.View) error {
	bw := bufio.NewWriter(w)

	if v.Banner.Visible {
		writeBanner(bw, v.Banner)
		fmt.Fprintln(bw)
	}

	switch {
	case v.LoadFailed:
		fmt.Fprintln(bw, board.LoadFailedText)
	case !v.Loaded:
		fmt.Fprintln(bw, "Loading activities...")
	default:
		for i, c := range v.Cards {
			if i > 0 {
				fmt.Fprintln(bw)
			}
			writeCard(bw, c)
		}
	}
	return bw.Flush()
}

func writeCard(w io.Writer, c board.Card) {
	fmt.Fprintln(w, c.Name)
	fmt.Fprintf(w, "  %s\n", c.Description)
	fmt.Fprintf(w, "  Schedule: %s\n", c.Schedule)
	fmt.Fprintf(w, "  Availability: %d spots left\n", c.SpotsLeft)
	if len(c.Participants) == 0 {
		fmt.Fprintf(w, "  %s\n", board.NoParticipantsText)
		return
	}
	fmt.Fprintln(w, "  Current Participants:")
	for _, p := range c.Participants {
		fmt.Fprintf(w, "    - %s\n", p.Email)
	}
}

// Banner writes the banner on one line, or nothing if it is hidden.
func Banner(w io.Writer, s banner.State) error {
	if !s.Visible {
		return nil
	}
	bw := bufio.NewWriter(w)
	writeBanner(bw, s)
	return bw.Flush()
}

func writeBanner(w io.Writer, s banner.State) {
	fmt.Fprintf(w, "[%s] %s\n", s.Kind, s.Text)
}
