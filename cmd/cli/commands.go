package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/nomis52/signup/board"
	"github.com/nomis52/signup/render"
)

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "Show every activity with its schedule, free spots and participants",
		Action: func(c *cli.Context) error {
			s, err := newSession(c)
			if err != nil {
				return err
			}
			defer s.finish(c.Context)

			refreshErr := s.board.Refresh(c.Context)
			if err := render.Text(c.App.Writer, s.board.View()); err != nil {
				return err
			}
			if refreshErr != nil {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}

func signupCommand() *cli.Command {
	return &cli.Command{
		Name:  "signup",
		Usage: "Sign an email up for an activity",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "activity", Aliases: []string{"a"}, Usage: "Activity name"},
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Student email"},
		},
		Action: func(c *cli.Context) error {
			s, err := newSession(c)
			if err != nil {
				return err
			}
			defer s.finish(c.Context)

			if err := s.board.Signup(c.Context, c.String("email"), c.String("activity")); err != nil {
				if err := render.Banner(c.App.Writer, s.board.View().Banner); err != nil {
					return err
				}
				return cli.Exit("", 1)
			}
			return render.Text(c.App.Writer, s.board.View())
		},
	}
}

func unregisterCommand() *cli.Command {
	return &cli.Command{
		Name:  "unregister",
		Usage: "Remove an email from an activity",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "activity", Aliases: []string{"a"}, Usage: "Activity name", Required: true},
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Student email", Required: true},
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Skip the confirmation prompt"},
		},
		Action: func(c *cli.Context) error {
			s, err := newSession(c)
			if err != nil {
				return err
			}
			defer s.finish(c.Context)

			var confirm board.Confirmer = board.ConfirmFunc(func(string) bool { return true })
			if !c.Bool("yes") {
				confirm = promptConfirmer(c.App.Reader, c.App.Writer)
			}

			err = s.board.Unregister(c.Context, c.String("activity"), c.String("email"), confirm)
			switch {
			case errors.Is(err, board.ErrCancelled):
				fmt.Fprintln(c.App.Writer, "Cancelled.")
				return nil
			case err != nil:
				if err := render.Banner(c.App.Writer, s.board.View().Banner); err != nil {
					return err
				}
				return cli.Exit("", 1)
			}
			return render.Text(c.App.Writer, s.board.View())
		},
	}
}

// promptConfirmer asks on out and accepts "y" or "yes" read from in.
func promptConfirmer(in io.Reader, out io.Writer) board.Confirmer {
	return board.ConfirmFunc(func(prompt string) bool {
		fmt.Fprintf(out, "%s [y/N] ", prompt)
		answer, _ := bufio.NewReader(in).ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true
		default:
			return false
		}
	})
}
