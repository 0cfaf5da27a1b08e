package cron

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSchedule(t *testing.T) {
	base := time.Date(2025, 3, 1, 13, 7, 0, 0, time.UTC)

	tests := []struct {
		spec string
		want time.Time
	}{
		{"*/5 * * * *", time.Date(2025, 3, 1, 13, 10, 0, 0, time.UTC)},
		{"  0 2 * * *  ", time.Date(2025, 3, 2, 2, 0, 0, 0, time.UTC)},
		{"@hourly", time.Date(2025, 3, 1, 14, 0, 0, 0, time.UTC)},
		{"@every 5m", base.Add(5 * time.Minute)},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			schedule, err := ParseSchedule(tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, schedule.Next(base))
		})
	}
}

func TestParseSchedule_Invalid(t *testing.T) {
	for _, spec := range []string{"", "* * *", "@sometimes", "0 25 * * *"} {
		t.Run(spec, func(t *testing.T) {
			_, err := ParseSchedule(spec)
			assert.ErrorIs(t, err, ErrInvalidCronSpec)
		})
	}
}
