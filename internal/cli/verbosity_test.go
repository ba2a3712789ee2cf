package cli_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ubuntu/app-showcase/internal/cli"
	"github.com/ubuntu/app-showcase/internal/constants"
)

// hacky way to allow us to reset the default logger.
var defaultLogger = *slog.Default()

func TestSetVerbosity(t *testing.T) {
	testCases := map[string]struct {
		pattern []int
	}{
		"info":            {pattern: []int{1}},
		"none":            {pattern: []int{0}},
		"info none":       {pattern: []int{1, 0}},
		"info debug":      {pattern: []int{1, 2}},
		"info debug none": {pattern: []int{1, 2, 0}},
		"debug":           {pattern: []int{2}},
		"more than debug": {pattern: []int{5}},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			slog.SetDefault(&defaultLogger)

			for _, p := range tc.pattern {
				cli.SetVerbosity(p)
				assertLevel(t, p)
			}
		})
	}
}

func TestSetSlog(t *testing.T) {
	testCases := map[string]struct {
		level    int
		jsonLogs bool
	}{
		"text default": {level: 0},
		"text debug":   {level: 2},
		"json info":    {level: 1, jsonLogs: true},
		"json debug":   {level: 3, jsonLogs: true},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			slog.SetDefault(&defaultLogger)
			defer slog.SetDefault(&defaultLogger)

			cli.SetSlog(tc.level, tc.jsonLogs)
			assertLevel(t, tc.level)

			_, isJSON := slog.Default().Handler().(*slog.JSONHandler)
			assert.Equal(t, tc.jsonLogs, isJSON, "Unexpected log handler")
		})
	}
}

func assertLevel(t *testing.T, verbosity int) {
	t.Helper()

	want := constants.DefaultLogLevel
	switch verbosity {
	case 0:
	case 1:
		want = slog.LevelInfo
	default:
		want = slog.LevelDebug
	}
	assert.True(t, slog.Default().Enabled(context.Background(), want), "Level %v should be enabled", want)
	assert.False(t, slog.Default().Enabled(context.Background(), want-1), "Level below %v should be disabled", want)
}
