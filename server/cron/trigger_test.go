package cron

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRunnable struct {
	runCount atomic.Int32
	runErr   error
}

func (m *mockRunnable) Run(ctx context.Context) error {
	m.runCount.Add(1)
	return m.runErr
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewCronTrigger(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		wantErr bool
	}{
		{name: "valid spec - daily at 2am", spec: "0 2 * * *"},
		{name: "valid spec - every five minutes", spec: "*/5 * * * *"},
		{name: "valid spec - descriptor", spec: "@hourly"},
		{name: "valid spec - interval", spec: "@every 30s"},
		{name: "invalid spec - empty", spec: "", wantErr: true},
		{name: "invalid spec - blank", spec: "   ", wantErr: true},
		{name: "invalid spec - wrong format", spec: "not a cron spec", wantErr: true},
		{name: "invalid spec - too few fields", spec: "0 2 *", wantErr: true},
		{name: "invalid spec - invalid value", spec: "60 2 * * *", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trigger, err := NewCronTrigger(tt.spec, &mockRunnable{}, discardLogger())

			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidCronSpec)
				assert.Nil(t, trigger)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.spec, trigger.spec)
			}
		})
	}
}

func TestCronTrigger_NextRun(t *testing.T) {
	trigger, err := NewCronTrigger("0 2 * * *", &mockRunnable{}, discardLogger())
	require.NoError(t, err)

	now := time.Date(2025, 3, 1, 13, 0, 0, 0, time.UTC)
	trigger.now = func() time.Time { return now }

	assert.Equal(t, time.Date(2025, 3, 2, 2, 0, 0, 0, time.UTC), trigger.NextRun())
}

func TestCronTrigger_RunsOnSchedule(t *testing.T) {
	runnable := &mockRunnable{}
	trigger, err := NewCronTrigger("@every 1s", runnable, discardLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	trigger.Start(ctx)

	assert.Eventually(t, func() bool {
		return runnable.runCount.Load() >= 1
	}, 3*time.Second, 50*time.Millisecond)
}

func TestCronTrigger_Start_CancellationStopsLoop(t *testing.T) {
	runnable := &mockRunnable{}
	trigger, err := NewCronTrigger("* * * * *", runnable, discardLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	trigger.Start(ctx)
	time.Sleep(10 * time.Millisecond)
	cancel()
	time.Sleep(10 * time.Millisecond)

	assert.Equal(t, int32(0), runnable.runCount.Load())
}

func TestCronTrigger_ExecuteRunLogsError(t *testing.T) {
	var logs strings.Builder
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	runnable := &mockRunnable{runErr: errors.New("upstream down")}

	trigger, err := NewCronTrigger("@hourly", runnable, logger)
	require.NoError(t, err)

	trigger.executeRun(context.Background())

	assert.Equal(t, int32(1), runnable.runCount.Load())
	assert.Contains(t, logs.String(), "scheduled run completed with error")
	assert.Contains(t, logs.String(), "upstream down")
}

func TestRunFunc(t *testing.T) {
	called := false
	var r Runnable = RunFunc(func(ctx context.Context) error {
		called = true
		return nil
	})
	require.NoError(t, r.Run(context.Background()))
	assert.True(t, called)
}
