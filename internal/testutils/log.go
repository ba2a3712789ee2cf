// Package testutils provides helpers shared by the tests of the app showcase.
package testutils

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// MockHandler is a slog.Handler recording the handled records.
type MockHandler struct {
	// IgnoreBelow is the level at and below which records are not handled.
	IgnoreBelow slog.Level

	mu      sync.Mutex
	records []slog.Record
}

// NewMockHandler returns a MockHandler handling the records above ignoreBelow.
func NewMockHandler(ignoreBelow slog.Level) *MockHandler {
	return &MockHandler{IgnoreBelow: ignoreBelow}
}

// Logger returns a logger writing to h.
func (h *MockHandler) Logger() *slog.Logger {
	return slog.New(h)
}

// Levels counts the handled records per level.
func (h *MockHandler) Levels() map[slog.Level]uint {
	h.mu.Lock()
	defer h.mu.Unlock()

	levels := make(map[slog.Level]uint)
	for _, r := range h.records {
		levels[r.Level]++
	}
	return levels
}

// AssertLevels asserts the number of handled records per level. A nil levels asserts nothing was handled.
func (h *MockHandler) AssertLevels(t *testing.T, levels map[slog.Level]uint) bool {
	t.Helper()

	have := h.Levels()
	if levels == nil {
		return assert.Empty(t, have, "No record should be logged")
	}
	if !assert.Equal(t, levels, have, "Unexpected logged levels") {
		h.OutputLogs(t)
		return false
	}
	return true
}

// OutputLogs outputs the handled records in a readable format.
func (h *MockHandler) OutputLogs(t *testing.T) {
	t.Helper()
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, r := range h.records {
		t.Logf("Logged %v %s:", r.Level, r.Message)
		r.Attrs(func(attr slog.Attr) bool {
			t.Log(attr.String())
			return true
		})
	}
}

// Enabled implements slog.Handler.
func (h *MockHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level > h.IgnoreBelow
}

// Handle implements slog.Handler.
func (h *MockHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r.Clone())
	return nil
}

// WithAttrs implements slog.Handler. Attributes are dropped.
func (h *MockHandler) WithAttrs([]slog.Attr) slog.Handler {
	return h
}

// WithGroup implements slog.Handler. Groups are dropped.
func (h *MockHandler) WithGroup(string) slog.Handler {
	return h
}
