package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/nomis52/signup/buildinfo"
)

func main() {
	// Load .env file first, but don't error if it doesn't exist.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := newApp(os.Stdin, os.Stdout)
	if err := app.RunContext(ctx, os.Args); err != nil {
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			if msg := exitErr.Error(); msg != "" {
				fmt.Fprintln(os.Stderr, msg)
			}
			os.Exit(exitErr.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp(in io.Reader, out io.Writer) *cli.App {
	return &cli.App{
		Name:    "signup",
		Usage:   "List extracurricular activities and manage signups from the terminal.",
		Version: buildinfo.Get().Version,
		Reader:  in,
		Writer:  out,
		// Exit codes are mapped in main so tests can run the app in-process.
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "api-url",
				Usage:    "Base URL of the activities API",
				EnvVars:  []string{"SIGNUP_API_URL"},
				Required: true,
			},
			&cli.DurationFlag{Name: "timeout", Value: defaultTimeout, Usage: "Timeout for each API request"},
			&cli.StringFlag{Name: "log-level", Value: "warn", EnvVars: []string{"LOG_LEVEL"}, Usage: "debug, info, warn or error"},
			&cli.StringFlag{Name: "log-format", Value: "console", Usage: "json, text or console"},
			&cli.StringFlag{
				Name:    "push-url",
				Usage:   "Remote-write endpoint to push metrics to after the command",
				EnvVars: []string{"SIGNUP_METRICS_PUSH_URL"},
			},
			&cli.StringFlag{Name: "metrics-job", Value: "signup-cli", Usage: "Job label for pushed metrics"},
			&cli.StringFlag{Name: "metrics-prefix", Value: "signup", Usage: "Prefix for pushed metric names"},
		},
		Commands: []*cli.Command{
			listCommand(),
			signupCommand(),
			unregisterCommand(),
			versionCommand(),
		},
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version information",
		Action: func(c *cli.Context) error {
			props := buildinfo.Get()
			fmt.Fprintf(c.App.Writer, "signup %s\n", props.Version)
			fmt.Fprintf(c.App.Writer, "Built: %s\n", props.BuildTime)
			fmt.Fprintf(c.App.Writer, "Commit: %s\n", props.GitCommit)
			return nil
		},
	}
}
