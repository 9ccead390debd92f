// Package testutil provides deterministic collaborators for engine, table
// and harness tests.
package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/queuedpixel/twitch-craps-bot/internal/engine"
	"github.com/queuedpixel/twitch-craps-bot/internal/ir"
)

// RecordingHost is an engine.Host that records every message and claimed
// command.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type RecordingHost struct {
	mu       sync.Mutex
	messages []engine.Message
	commands []string
	vars     map[string]ir.Value
	claims   map[string]bool
}

var _ engine.Host = (*RecordingHost)(nil)

// NewRecordingHost creates a host with no variables that claims no commands.
func NewRecordingHost() *RecordingHost {
	return &RecordingHost{
		vars:   make(map[string]ir.Value),
		claims: make(map[string]bool),
	}
}

// SetVariable exposes a host variable to every user.
func (h *RecordingHost) SetVariable(name string, v ir.Value) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.vars[name] = v
}

// Claim makes TryCommand claim commands starting with any of words.
func (h *RecordingHost) Claim(words ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, w := range words {
		h.claims[strings.ToLower(w)] = true
	}
}

// SendMessage implements engine.Host.
func (h *RecordingHost) SendMessage(msg engine.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, msg)
}

// TryCommand implements engine.Host.
func (h *RecordingHost) TryCommand(user, command string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	fields := strings.Fields(command)
	if len(fields) == 0 || !h.claims[strings.ToLower(fields[0])] {
		return false
	}
	h.commands = append(h.commands, command)
	return true
}

// Variable implements engine.Host.
func (h *RecordingHost) Variable(user, name string) (ir.Value, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	v, ok := h.vars[name]
	return v, ok
}

// Messages returns every message sent so far.
func (h *RecordingHost) Messages() []engine.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]engine.Message(nil), h.messages...)
}

// Texts returns the formatted text of every message sent so far.
func (h *RecordingHost) Texts() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.messages))
	for i, m := range h.messages {
		out[i] = m.Format()
	}
	return out
}

// Last returns the most recent message, or the zero Message.
func (h *RecordingHost) Last() engine.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.messages) == 0 {
		return engine.Message{}
	}
	return h.messages[len(h.messages)-1]
}

// Commands returns every claimed command in order.
func (h *RecordingHost) Commands() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.commands...)
}

// Reset forgets recorded messages and commands.
func (h *RecordingHost) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = nil
	h.commands = nil
}

// SchedulingHost is a RecordingHost that defers the tick following
// "program run" until RunScheduled is called.
type SchedulingHost struct {
	*RecordingHost
	pending []func(context.Context) error
}

var _ engine.TickScheduler = (*SchedulingHost)(nil)

// NewSchedulingHost creates a SchedulingHost.
func NewSchedulingHost() *SchedulingHost {
	return &SchedulingHost{RecordingHost: NewRecordingHost()}
}

// ScheduleTick implements engine.TickScheduler.
func (h *SchedulingHost) ScheduleTick(_ context.Context, _ string, tick func(context.Context) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pending = append(h.pending, tick)
	return nil
}

// Scheduled returns how many ticks are waiting.
func (h *SchedulingHost) Scheduled() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.pending)
}

// RunScheduled runs and clears the waiting ticks in order.
func (h *SchedulingHost) RunScheduled(ctx context.Context) error {
	h.mu.Lock()
	pending := h.pending
	h.pending = nil
	h.mu.Unlock()

	for _, tick := range pending {
		if err := tick(ctx); err != nil {
			return err
		}
	}
	return nil
}
