package harness

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/queuedpixel/twitch-craps-bot/internal/bot"
	"github.com/queuedpixel/twitch-craps-bot/internal/config"
	"github.com/queuedpixel/twitch-craps-bot/internal/engine"
	"github.com/queuedpixel/twitch-craps-bot/internal/ir"
	"github.com/queuedpixel/twitch-craps-bot/internal/store"
	"github.com/queuedpixel/twitch-craps-bot/internal/testutil"
)

// Epoch is the fixed time every scenario runs at.
var Epoch = time.Date(2019, time.June, 1, 12, 0, 0, 0, time.UTC)

// TickID is the fixed tick id used by scenarios.
const TickID = "scenario-tick"

// Harness is the scenario execution environment.
type Harness struct {
	bot   *bot.Bot
	store *store.Store
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory database. Step output and
// assertion failures are recorded in the result; the returned error means
// the scenario could not be executed at all.
func Run(scenario *Scenario) (*Result, error) {
	cfg, err := scenarioConfig(scenario)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	dice := make([][2]int, len(scenario.Dice))
	for i, d := range scenario.Dice {
		dice[i] = [2]int{d[0], d[1]}
	}

	b := bot.New(cfg,
		bot.WithRepository(st),
		bot.WithDice(testutil.NewScriptedDice(dice...)),
		bot.WithTickIDs(engine.NewFixedGenerator(TickID)),
		bot.WithNow(func() time.Time { return Epoch }),
	)

	ctx := context.Background()
	if err := b.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}

	h := &Harness{bot: b, store: st}
	result := NewResult()

	for i, step := range scenario.Setup {
		if _, err := h.execute(ctx, step); err != nil {
			return nil, fmt.Errorf("setup step %d: %w", i, err)
		}
	}

	for i, step := range scenario.Flow {
		out, err := h.execute(ctx, step)
		if err != nil {
			return nil, fmt.Errorf("flow step %d: %w", i, err)
		}
		result.Transcript = append(result.Transcript, Entry{Input: step.Input(), Output: out})

		if step.Expect != nil && !slices.Equal(step.Expect, out) {
			result.AddError(fmt.Sprintf("flow[%d] %s: expected output %q, got %q", i, step.Input(), step.Expect, out))
		}
	}

	if err := h.checkPersisted(ctx, result); err != nil {
		return nil, err
	}

	actx := &AssertionContext{
		Table: b.Table(),
		State: result.State,
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	return result, nil
}

// scenarioConfig applies the scenario's overrides to the default config.
func scenarioConfig(scenario *Scenario) (config.Config, error) {
	if scenario.Config.Kind == 0 {
		return config.Default(), nil
	}
	data, err := yaml.Marshal(&scenario.Config)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to encode scenario config: %w", err)
	}
	cfg, err := config.Parse(data)
	if err != nil {
		return config.Config{}, fmt.Errorf("scenario config: %w", err)
	}
	return cfg, nil
}

// execute runs one step and returns the chat lines it produced.
func (h *Harness) execute(ctx context.Context, step Step) ([]string, error) {
	var err error
	if step.Roll != nil {
		err = h.bot.RollDice(ctx, step.Roll[0], step.Roll[1])
	} else {
		err = h.bot.Handle(ctx, step.User, step.Say)
	}
	if err != nil {
		return nil, err
	}

	out := h.bot.Drain()
	if out == nil {
		out = []string{}
	}
	slog.Debug("scenario step", "input", step.Input(), "lines", len(out))
	return out, nil
}

// checkPersisted reloads the state from the store into the result and
// records an error if it differs from the engine's.
func (h *Harness) checkPersisted(ctx context.Context, result *Result) error {
	loaded, err := h.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to reload state: %w", err)
	}
	result.State = loaded

	want, err := ir.StateHash(h.bot.Engine().State())
	if err != nil {
		return err
	}
	got, err := ir.StateHash(loaded)
	if err != nil {
		return err
	}
	if got != want {
		result.AddError("persisted state differs from engine state")
	}
	return nil
}
