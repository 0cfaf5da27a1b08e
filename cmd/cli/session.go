package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/nomis52/signup/board"
	"github.com/nomis52/signup/clients/activityclient"
	"github.com/nomis52/signup/logging"
	"github.com/nomis52/signup/metrics"
)

const defaultTimeout = 10 * time.Second

// session holds what a single command needs: the logger, a board backed by
// the API and, when --push-url is set, the registry its metrics go to.
type session struct {
	logger   *logging.Logger
	board    *board.Board
	registry *metrics.PushRegistry
}

func newSession(c *cli.Context) (*session, error) {
	logger, err := logging.New(logging.Config{
		Level:  c.String("log-level"),
		Format: c.String("log-format"),
		Output: "stderr",
	})
	if err != nil {
		return nil, err
	}

	client, err := activityclient.New(c.String("api-url"),
		activityclient.WithLogger(logger.Logger),
		activityclient.WithTimeout(c.Duration("timeout")))
	if err != nil {
		logger.Close()
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	s := &session{logger: logger}
	opts := []board.BoardOption{board.WithLogger(logger.Logger)}

	if url := c.String("push-url"); url != "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		s.registry = metrics.NewPushRegistry(metrics.PushConfig{
			URL:      url,
			Prefix:   c.String("metrics-prefix"),
			Job:      c.String("metrics-job"),
			Instance: hostname,
		})
		m, err := metrics.NewBoardMetrics(s.registry)
		if err != nil {
			logger.Close()
			return nil, fmt.Errorf("failed to create metrics: %w", err)
		}
		opts = append(opts, board.WithMetrics(m))
	}

	s.board = board.New(client, opts...)
	return s, nil
}

// finish pushes metrics, if enabled, and releases the session. A failed
// push is logged and does not change the command's outcome.
func (s *session) finish(ctx context.Context) {
	s.board.Close()
	if s.registry != nil {
		if err := s.registry.Flush(ctx); err != nil {
			s.logger.Warn("failed to push metrics", "error", err)
		}
	}
	s.logger.Close()
}
