package bot_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queuedpixel/twitch-craps-bot/internal/bot"
	"github.com/queuedpixel/twitch-craps-bot/internal/config"
	"github.com/queuedpixel/twitch-craps-bot/internal/engine"
	"github.com/queuedpixel/twitch-craps-bot/internal/ir"
	"github.com/queuedpixel/twitch-craps-bot/internal/testutil"
)

// fakeClock is a settable time source.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Owner = "owner"
	cfg.Debug = true
	cfg.MessageInterval = 0
	return cfg
}

func newBot(t *testing.T, cfg config.Config, opts ...bot.Option) *bot.Bot {
	t.Helper()
	opts = append([]bot.Option{bot.WithTickIDs(engine.NewFixedGenerator("tick-1"))}, opts...)
	b := bot.New(cfg, opts...)
	require.NoError(t, b.Load(context.Background()))
	return b
}

func say(t *testing.T, b *bot.Bot, user, line string) []string {
	t.Helper()
	require.NoError(t, b.Handle(context.Background(), user, line))
	return b.Drain()
}

func TestHandle_Prefix(t *testing.T) {
	b := newBot(t, testConfig())

	assert.Empty(t, say(t, b, "alice", "hello chat"))
	assert.Equal(t, []string{"@alice, you must specify a command."}, say(t, b, "alice", "!craps"))
	assert.Equal(t, []string{"@alice, you must specify a command."}, say(t, b, "alice", "!crapsbalance"))
	assert.Equal(t, []string{"@alice, you must specify a command."}, say(t, b, "alice", "!craps    "))
}

func TestHandle_Routing(t *testing.T) {
	b := newBot(t, testConfig())

	assert.Equal(t, []string{"@alice, balance: §10,000.00"}, say(t, b, "alice", "!craps balance"))
	assert.Equal(t, []string{"@alice, 7"}, say(t, b, "alice", "!craps eval {3 + 4}"))
	assert.Equal(t, []string{"@alice, unrecognized command."}, say(t, b, "alice", "!craps dance"))
	assert.Equal(t, []string{"@alice, unrecognized command."}, say(t, b, "alice", "!craps roll"),
		"only the owner may roll")
}

func TestHandle_UsageErrorsPointAtHelp(t *testing.T) {
	b := newBot(t, testConfig())

	lines := say(t, b, "alice", "!craps program")
	require.Len(t, lines, 1)
	assert.Regexp(t, `^@alice, error - usage: program .* \(see !craps help\)$`, lines[0])
}

func TestRoll_RunsOneTick(t *testing.T) {
	b := newBot(t, testConfig())

	say(t, b, "owner", "!craps program create p")
	say(t, b, "owner", "!craps program add p true ; print rolled {total}")
	assert.Equal(t, []string{
		"@owner, Program p is running.",
		"@owner, print - rolled 0",
	}, say(t, b, "owner", "!craps program run p"))

	assert.Equal(t, []string{
		"Roll: 3, 4 - (7)",
		"@owner, print - rolled 7",
	}, say(t, b, "owner", "!craps roll 3 4"))

	require.NoError(t, b.RollDice(context.Background(), 2, 2))
	assert.Equal(t, []string{
		"Roll: 2, 2 - (4)",
		"New point established: 4",
		"@owner, print - rolled 4",
	}, b.Drain())
}

func TestRoll_ProgramRollDoesNotTickAgain(t *testing.T) {
	b := newBot(t, testConfig(), bot.WithDice(testutil.NewScriptedDice([2]int{1, 2}, [2]int{6, 6})))

	say(t, b, "owner", "!craps program create loop")
	say(t, b, "owner", "!craps program add loop total == 3 ; roll")
	say(t, b, "owner", "!craps program run loop")
	b.Drain()

	require.NoError(t, b.Roll(context.Background()))
	assert.Equal(t, []string{
		"Roll: 1, 2 - (3)",
		"Roll: 6, 6 - (12)",
	}, b.Drain())
	assert.Equal(t, 2, b.Table().Rolls())
}

func TestHelp(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	b := newBot(t, testConfig(), bot.WithNow(clock.Now))

	assert.Equal(t, []string{
		`@alice, commands: balance, bet, eval, program, function, variable. Use "!craps help <command>" for details.`,
	}, say(t, b, "alice", "!craps help"))

	// global cooldown
	assert.Empty(t, say(t, b, "bob", "!craps help program add"))

	// the owner is exempt
	assert.Equal(t, []string{"@owner, usage: program add <name> <condition> ; <action>"},
		say(t, b, "owner", "!craps HELP program add"))

	clock.Advance(time.Minute)
	assert.Equal(t, []string{"@bob, usage: bet pass <amount>"}, say(t, b, "bob", "!craps help bet"))

	clock.Advance(time.Minute)
	assert.Equal(t, []string{`@bob, no help for "dance".`}, say(t, b, "bob", "!craps help dance"))
}

func TestAutomaticRoll(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	cfg := testConfig()
	cfg.RollingDelay = 30
	b := newBot(t, cfg, bot.WithNow(clock.Now), bot.WithDice(testutil.NewScriptedDice([2]int{5, 6})))

	say(t, b, "alice", "!craps balance")
	assert.False(t, b.RollDue(), "no bet, no roll")

	say(t, b, "alice", "!craps bet pass 10")
	clock.Advance(20 * time.Second)
	say(t, b, "bob", "!craps bet pass 10")
	clock.Advance(20 * time.Second)
	assert.False(t, b.RollDue(), "delay restarts with every bet")

	clock.Advance(10 * time.Second)
	require.True(t, b.RollDue())

	require.NoError(t, b.Roll(context.Background()))
	assert.Equal(t, []string{
		"Roll: 5, 6 - (11)",
		"@alice, won §10.00",
		"@bob, won §10.00",
	}, b.Drain())
	assert.False(t, b.RollDue())
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	b := newBot(t, testConfig(), bot.WithRegistry(reg))

	say(t, b, "owner", "!craps balance")
	say(t, b, "owner", "!craps roll 1 1")
	say(t, b, "owner", "!craps eval {1}")
	b.Drain()

	families, err := reg.Gather()
	require.NoError(t, err)
	values := make(map[string]float64)
	for _, f := range families {
		for _, m := range f.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				values[f.GetName()] += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				values[f.GetName()] += m.GetGauge().GetValue()
			}
		}
	}

	assert.Equal(t, 3.0, values["crapsbot_chat_lines_total"])
	assert.Equal(t, 1.0, values["crapsbot_table_rolls_total"])
	assert.Equal(t, 1.0, values["crapsbot_engine_ticks_total"])
	assert.Equal(t, 0.0, values["crapsbot_chat_outbox_length"])
	series, err := promtest.GatherAndCount(reg, "crapsbot_engine_commands_total")
	require.NoError(t, err)
	assert.Equal(t, 1, series, "only eval was used")
}

// failingRepo loads an empty state and fails every save.
type failingRepo struct{}

func (failingRepo) Load(context.Context) (*ir.State, error) { return ir.NewState(), nil }
func (failingRepo) Save(context.Context, *ir.State) error  { return errors.New("disk full") }

func TestHandle_PersistenceFailureIsReturned(t *testing.T) {
	b := newBot(t, testConfig(), bot.WithRepository(failingRepo{}))

	err := b.Handle(context.Background(), "alice", "!craps program create p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

// chatRecorder is a Sender that records lines.
type chatRecorder struct {
	mu    sync.Mutex
	lines []string
}

func (r *chatRecorder) Say(_ context.Context, line string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, line)
	return nil
}

func (r *chatRecorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

func TestRun_ProcessesQueuedLines(t *testing.T) {
	b := newBot(t, testConfig())
	chat := &chatRecorder{}

	done := make(chan error, 1)
	go func() { done <- b.Run(context.Background(), chat) }()

	require.True(t, b.Enqueue("alice", "!craps balance"))
	require.True(t, b.Enqueue("alice", "not for the bot"))
	require.True(t, b.Enqueue("alice", "!craps bet pass 5"))

	require.Eventually(t, func() bool { return len(chat.Lines()) == 2 },
		time.Second, 5*time.Millisecond)

	b.Stop()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}

	assert.Equal(t, []string{"@alice, balance: §10,000.00", "@alice, bet made."}, chat.Lines())
	assert.False(t, b.Enqueue("alice", "!craps balance"), "stopped bot accepts nothing")
}

func TestRun_StopSendsPendingReplies(t *testing.T) {
	b := newBot(t, testConfig())
	chat := &chatRecorder{}

	require.True(t, b.Enqueue("alice", "!craps balance"))
	require.True(t, b.Enqueue("bob", "!craps balance"))
	b.Stop()

	require.NoError(t, b.Run(context.Background(), chat))
	assert.Equal(t, []string{
		"@alice, balance: §10,000.00",
		"@bob, balance: §10,000.00",
	}, chat.Lines())
}

func TestRun_ContextCancel(t *testing.T) {
	b := newBot(t, testConfig())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- b.Run(ctx, bot.SenderFunc(func(context.Context, string) error { return nil }))
	}()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_PushesMetricsOnStop(t *testing.T) {
	var mu sync.Mutex
	var paths []string
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.Method+" "+r.URL.Path)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer gateway.Close()

	cfg := testConfig()
	cfg.Metrics.PushURL = gateway.URL
	b := newBot(t, cfg, bot.WithRegistry(prometheus.NewRegistry()))

	done := make(chan error, 1)
	go func() {
		done <- b.Run(context.Background(), bot.SenderFunc(func(context.Context, string) error { return nil }))
	}()
	b.Stop()
	require.NoError(t, <-done)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"PUT /metrics/job/crapsbot"}, paths)
}
