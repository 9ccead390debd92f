package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/queuedpixel/twitch-craps-bot/internal/expr"
	"github.com/queuedpixel/twitch-craps-bot/internal/ir"
)

// Message is a user-visible message produced by the engine.
type Message struct {
	User       string
	FromScript bool // produced while running a program's action
	IsError    bool
	NeedsHelp  bool // the user should be pointed at command usage
	Text       string
}

// Format renders the message body the way players see it.
func (m Message) Format() string {
	if m.IsError {
		return "error - " + m.Text
	}
	return m.Text
}

// Host is the engine's view of the game it is embedded in.
type Host interface {
	// SendMessage delivers a message to a user.
	SendMessage(msg Message)

	// TryCommand lets the host claim and fully handle a resolved command
	// before the engine's own commands are tried.
	TryCommand(user, command string) bool

	// Variable exposes read-only host identifiers such as game state.
	Variable(user, name string) (ir.Value, bool)
}

// TickScheduler is implemented by hosts that control when the tick which
// follows "program run" executes. Hosts without it get the tick immediately.
type TickScheduler interface {
	ScheduleTick(ctx context.Context, user string, tick func(context.Context) error) error
}

// Repository loads and saves the engine state.
type Repository interface {
	Load(ctx context.Context) (*ir.State, error)
	Save(ctx context.Context, s *ir.State) error
}

// TickIDGenerator generates unique tick ids for log correlation.
// Implemented by UUIDv7Generator (production) and FixedGenerator (tests).
type TickIDGenerator interface {
	Generate() string
}

// Engine owns every user's programs, functions and variables.
type Engine struct {
	host    Host
	repo    Repository
	state   *ir.State
	tickIDs TickIDGenerator
	clock   *Clock
	metrics *Metrics

	maxCallDepth int
	maxNesting   int

	savedHash string // hash of the last loaded or saved state
	ticking   bool
	initUser  string // user whose post-run tick is in progress
}

// Option configures an Engine.
type Option func(*Engine)

// WithRepository sets where state is loaded from and saved to.
// Without one the engine keeps state in memory only.
func WithRepository(r Repository) Option {
	return func(e *Engine) {
		e.repo = r
	}
}

// WithState seeds the engine with an existing state.
func WithState(s *ir.State) Option {
	return func(e *Engine) {
		e.state = s
	}
}

// WithMaxCallDepth sets the user function call-depth ceiling.
//
// Default: 1000 (expr.DefaultMaxCallDepth)
func WithMaxCallDepth(n int) Option {
	return func(e *Engine) {
		e.maxCallDepth = n
	}
}

// WithMaxNesting sets the parenthesis nesting ceiling.
//
// Default: 256 (expr.DefaultMaxNesting)
func WithMaxNesting(n int) Option {
	return func(e *Engine) {
		e.maxNesting = n
	}
}

// WithTickIDs sets the tick id generator.
func WithTickIDs(g TickIDGenerator) Option {
	return func(e *Engine) {
		e.tickIDs = g
	}
}

// WithMetrics records engine activity in m.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// New creates an engine for host.
func New(host Host, opts ...Option) *Engine {
	e := &Engine{
		host:         host,
		state:        ir.NewState(),
		tickIDs:      UUIDv7Generator{},
		clock:        NewClock(),
		maxCallDepth: expr.DefaultMaxCallDepth,
		maxNesting:   expr.DefaultMaxNesting,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Load replaces the engine state with the repository's.
func (e *Engine) Load(ctx context.Context) error {
	if e.repo == nil {
		return nil
	}

	s, err := e.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	hash, err := ir.StateHash(s)
	if err != nil {
		return fmt.Errorf("hash loaded state: %w", err)
	}

	e.state = s
	e.savedHash = hash

	slog.Info("state loaded",
		"programs", len(s.Programs),
		"active", len(s.Active),
		"functions", len(s.Functions),
		"variables", len(s.Variables),
	)
	return nil
}

// State returns the live engine state. Callers must not mutate it.
func (e *Engine) State() *ir.State {
	return e.state
}

// Command handles one top-level command from user.
// It reports handled=false when the command word is not an engine command,
// leaving it to the host. Command failures are reported to the user; the
// returned error is a persistence failure only.
func (e *Engine) Command(ctx context.Context, user, text string) (handled bool, err error) {
	word, rest := splitCommand(text)

	switch word {
	case "eval":
		e.execCompound(ctx, user, rest, false)
	case "program":
		err = e.programCommand(ctx, user, rest)
	case "function":
		err = e.functionCommand(user, rest)
	case "variable":
		err = e.variableCommand(user, rest, false)
	default:
		return false, nil
	}
	e.metrics.command(word)

	if err != nil {
		if !reportable(err) {
			return true, err
		}
		e.report(user, false, err)
	}

	return true, e.persist(ctx)
}

// persist saves the state when it differs from the last saved snapshot.
func (e *Engine) persist(ctx context.Context) error {
	if e.repo == nil {
		return nil
	}

	hash, err := ir.StateHash(e.state)
	if err != nil {
		return fmt.Errorf("hash state: %w", err)
	}
	if hash == e.savedHash {
		return nil
	}

	if err := e.repo.Save(ctx, e.state); err != nil {
		slog.Error("state save failed", "error", err)
		return fmt.Errorf("save state: %w", err)
	}
	e.savedHash = hash
	e.metrics.saved()

	slog.Debug("state saved", "hash", hash)
	return nil
}

// send delivers a plain message to user.
func (e *Engine) send(user string, fromScript bool, text string) {
	e.host.SendMessage(Message{User: user, FromScript: fromScript, Text: text})
}

// report delivers err to user and counts it.
func (e *Engine) report(user string, fromScript bool, err error) {
	e.reportAt(user, fromScript, "", err)
}

// reportAt is report with the failing statement's location as a prefix.
func (e *Engine) reportAt(user string, fromScript bool, where string, err error) {
	code := ErrorCode(err)
	e.metrics.failure(code)

	slog.Debug("command failed", "user", user, "from_script", fromScript, "code", code, "error", err)

	text := userMessage(err)
	if where != "" {
		text = where + ": " + text
	}
	e.host.SendMessage(Message{
		User:       user,
		FromScript: fromScript,
		IsError:    true,
		NeedsHelp:  needsHelp(err),
		Text:       text,
	})
}
