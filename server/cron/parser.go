package cron

import (
	"errors"
	"strings"

	"github.com/robfig/cron/v3"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParseSchedule parses a standard 5 field cron expression or a descriptor
// such as "@hourly" or "@every 5m".
// Returns ErrInvalidCronSpec if the expression is empty or cannot be parsed.
func ParseSchedule(spec string) (cron.Schedule, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, errors.Join(ErrInvalidCronSpec, errors.New("cron spec cannot be empty"))
	}
	schedule, err := parser.Parse(spec)
	if err != nil {
		return nil, errors.Join(ErrInvalidCronSpec, err)
	}
	return schedule, nil
}
