package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/queuedpixel/twitch-craps-bot/internal/config"
	"github.com/queuedpixel/twitch-craps-bot/internal/engine"
	"github.com/queuedpixel/twitch-craps-bot/internal/table"
)

// Prefix marks chat lines addressed to the bot.
const Prefix = "!craps"

// Sender delivers chat lines to the channel.
type Sender interface {
	Say(ctx context.Context, line string) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, line string) error

// Say calls f(ctx, line).
func (f SenderFunc) Say(ctx context.Context, line string) error { return f(ctx, line) }

// Event is a chat line received from the channel.
type Event struct {
	User string
	Line string
}

// Bot is a craps table with a scripting engine behind a chat channel.
type Bot struct {
	cfg    config.Config
	engine *engine.Engine
	table  *table.Table

	inbox *queue[Event]
	out   *queue[string]

	dice     table.Dice
	repo     engine.Repository
	registry *prometheus.Registry
	metrics  *Metrics
	tickIDs  engine.TickIDGenerator
	now      func() time.Time

	lastHelp time.Time
	rollAt   time.Time // zero when no automatic roll is due
}

// Option configures a Bot.
type Option func(*Bot)

// WithDice sets the table's dice.
//
// Default: table.RandomDice
func WithDice(d table.Dice) Option {
	return func(b *Bot) {
		b.dice = d
	}
}

// WithRepository sets where scripting state is persisted.
func WithRepository(r engine.Repository) Option {
	return func(b *Bot) {
		b.repo = r
	}
}

// WithRegistry registers the engine and bot metrics with reg.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(b *Bot) {
		b.registry = reg
	}
}

// WithTickIDs sets the engine's tick id generator.
func WithTickIDs(g engine.TickIDGenerator) Option {
	return func(b *Bot) {
		b.tickIDs = g
	}
}

// WithNow sets the clock used for cooldowns and automatic rolls.
func WithNow(now func() time.Time) Option {
	return func(b *Bot) {
		b.now = now
	}
}

// New creates a bot for cfg. Call Load before handling chat.
func New(cfg config.Config, opts ...Option) *Bot {
	b := &Bot{
		cfg:   cfg,
		inbox: newQueue[Event](),
		out:   newQueue[string](),
		dice:  table.RandomDice{},
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}

	b.table = table.New(table.Settings{
		Owner:           cfg.Owner,
		Debug:           cfg.Debug,
		StartingBalance: int64(cfg.StartingBalance),
	}, b.dice, table.OutputFunc(b.deliver))

	engineOpts := []engine.Option{
		engine.WithMaxCallDepth(cfg.MaxCallDepth),
		engine.WithMaxNesting(cfg.MaxNesting),
	}
	if b.repo != nil {
		engineOpts = append(engineOpts, engine.WithRepository(b.repo))
	}
	if b.tickIDs != nil {
		engineOpts = append(engineOpts, engine.WithTickIDs(b.tickIDs))
	}
	if b.registry != nil {
		engineOpts = append(engineOpts, engine.WithMetrics(engine.NewMetrics(b.registry)))
		b.metrics = NewMetrics(b.registry)
		b.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "crapsbot_chat_outbox_length",
			Help: "Chat messages waiting to be sent",
		}, func() float64 { return float64(b.out.Len()) }))
	}
	b.engine = engine.New(b.table, engineOpts...)

	return b
}

// Load restores the scripting state from the repository.
func (b *Bot) Load(ctx context.Context) error {
	return b.engine.Load(ctx)
}

// Engine returns the bot's scripting engine.
func (b *Bot) Engine() *engine.Engine { return b.engine }

// Table returns the bot's craps table.
func (b *Bot) Table() *table.Table { return b.table }

// Enqueue submits a chat line for the Run loop.
// Safe from any goroutine; returns false once the bot has stopped.
func (b *Bot) Enqueue(user, line string) bool {
	return b.inbox.Enqueue(Event{User: user, Line: line})
}

// Drain removes and returns every chat line waiting to be sent. Used when
// no send loop is running.
func (b *Bot) Drain() []string {
	return b.out.Drain()
}

// deliver renders msg as a chat line and queues it.
func (b *Bot) deliver(msg engine.Message) {
	text := msg.Format()
	if msg.NeedsHelp {
		text += fmt.Sprintf(" (see %s help)", Prefix)
	}
	if msg.User != "" {
		text = "@" + msg.User + ", " + text
	}
	b.out.Enqueue(text)
}

func (b *Bot) tell(user, text string) {
	b.deliver(engine.Message{User: user, Text: text})
}

// Handle processes one chat line from user. Lines without the prefix are
// ignored. The returned error is a persistence failure and is fatal.
func (b *Bot) Handle(ctx context.Context, user, line string) error {
	if !strings.HasPrefix(line, Prefix) {
		return nil
	}
	b.metrics.line()

	command, ok := strings.CutPrefix(line, Prefix+" ")
	command = strings.TrimSpace(command)
	if !ok || command == "" {
		b.tell(user, "you must specify a command.")
		return nil
	}

	slog.Debug("chat command", "user", user, "command", command)

	placed := b.table.BetsPlaced()
	if err := b.route(ctx, user, command); err != nil {
		return err
	}
	if err := b.tickAfterRoll(ctx); err != nil {
		return err
	}
	b.scheduleRoll(placed)
	return nil
}

// route offers command to the bot, the engine and the table in turn.
func (b *Bot) route(ctx context.Context, user, command string) error {
	word, rest, _ := strings.Cut(command, " ")
	if strings.EqualFold(word, "help") {
		b.help(user, strings.TrimSpace(rest))
		return nil
	}

	handled, err := b.engine.Command(ctx, user, command)
	if err != nil {
		return err
	}
	if handled || b.table.TryCommand(user, command) {
		return nil
	}

	b.tell(user, "unrecognized command.")
	return nil
}

// Roll rolls the table's dice and runs the programs.
func (b *Bot) Roll(ctx context.Context) error {
	placed := b.table.BetsPlaced()
	b.table.RollRandom()
	if err := b.tickAfterRoll(ctx); err != nil {
		return err
	}
	b.scheduleRoll(placed)
	return nil
}

// RollDice rolls the given values and runs the programs.
func (b *Bot) RollDice(ctx context.Context, d1, d2 int) error {
	placed := b.table.BetsPlaced()
	b.table.Roll(d1, d2)
	if err := b.tickAfterRoll(ctx); err != nil {
		return err
	}
	b.scheduleRoll(placed)
	return nil
}

// tickAfterRoll runs one program tick if the table rolled. Rolls made by
// programs during that tick do not start another.
func (b *Bot) tickAfterRoll(ctx context.Context) error {
	if !b.table.TakeRoll() {
		return nil
	}
	b.metrics.roll()
	b.rollAt = time.Time{}

	err := b.engine.RunPrograms(ctx)
	b.table.TakeRoll()
	return err
}

// scheduleRoll arms the automatic roll when a bet was placed since placed.
func (b *Bot) scheduleRoll(placed int) {
	if b.cfg.RollingDelay <= 0 || b.table.BetsPlaced() == placed {
		return
	}
	b.rollAt = b.now().Add(b.cfg.RollingDelayDuration())
	slog.Debug("automatic roll scheduled", "at", b.rollAt)
}

// RollDue reports whether an automatic roll is scheduled and due.
func (b *Bot) RollDue() bool {
	return !b.rollAt.IsZero() && !b.now().Before(b.rollAt)
}

// help answers "help" and "help <command>", subject to a global cooldown
// that does not apply to the owner.
func (b *Bot) help(user, topic string) {
	now := b.now()
	if !b.cfg.IsOwner(user) && !b.lastHelp.IsZero() &&
		now.Sub(b.lastHelp) < b.cfg.HelpCooldownDuration() {
		slog.Debug("help on cooldown", "user", user)
		return
	}
	b.lastHelp = now

	if topic == "" {
		words := append(table.Commands(), engine.Commands()...)
		b.tell(user, fmt.Sprintf("commands: %s. Use \"%s help <command>\" for details.",
			strings.Join(words, ", "), Prefix))
		return
	}

	usage := engine.Usage(topic)
	if usage == "" {
		usage = table.Usage(topic)
	}
	if usage == "" {
		b.tell(user, fmt.Sprintf("no help for %q.", topic))
		return
	}
	b.tell(user, "usage: "+usage)
}

// Run processes queued chat lines and automatic rolls, and drains the
// outbox through sender, until ctx is cancelled or Stop is called.
//
// Must be called from exactly one goroutine. A persistence failure stops
// the bot and is returned.
func (b *Bot) Run(ctx context.Context, sender Sender) error {
	slog.Info("bot starting", "channel", b.cfg.Channel, "owner", b.cfg.Owner)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sendDone := make(chan struct{})
	go func() {
		defer close(sendDone)
		b.sendLoop(ctx, sender)
	}()
	defer func() {
		b.out.Close()
		<-sendDone
	}()

	var pushC <-chan time.Time
	if b.cfg.Metrics.PushURL != "" && b.registry != nil {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		pushC = ticker.C
		defer b.push()
	}

	for {
		if ev, ok := b.inbox.TryDequeue(); ok {
			if err := b.Handle(ctx, ev.User, ev.Line); err != nil {
				slog.Error("bot stopping: persistence failed", "error", err)
				b.Stop()
				return err
			}
			continue
		}

		var rollC <-chan time.Time
		var timer *time.Timer
		if !b.rollAt.IsZero() {
			timer = time.NewTimer(b.rollAt.Sub(b.now()))
			rollC = timer.C
		}

		err := b.wait(ctx, rollC, pushC)
		if timer != nil {
			timer.Stop()
		}
		if err != nil {
			return err
		}
		if b.inbox.Done() {
			slog.Info("bot stopping: inbox closed")
			return nil
		}
	}
}

// wait blocks until the next chat line, automatic roll or metrics push.
func (b *Bot) wait(ctx context.Context, rollC, pushC <-chan time.Time) error {
	select {
	case <-ctx.Done():
		slog.Info("bot stopping: context cancelled")
		b.Stop()
		return ctx.Err()

	case <-b.inbox.Wait():

	case <-rollC:
		if !b.table.HasBets() {
			b.rollAt = time.Time{}
			return nil
		}
		if err := b.Roll(ctx); err != nil {
			b.Stop()
			return err
		}

	case <-pushC:
		b.push()
	}
	return nil
}

// Stop closes the inbox. Run returns once the queued lines are handled
// and their replies sent.
func (b *Bot) Stop() {
	b.inbox.Close()
}

func (b *Bot) push() {
	if err := pushMetrics(b.cfg.Metrics.PushURL, b.cfg.Metrics.Job, b.registry); err != nil {
		slog.Warn("could not push metrics", "url", b.cfg.Metrics.PushURL, "error", err)
		return
	}
	slog.Debug("metrics pushed", "job", b.cfg.Metrics.Job)
}

// sendLoop sends queued lines, at most one per message interval. A failed
// send is logged and the line dropped.
func (b *Bot) sendLoop(ctx context.Context, sender Sender) {
	limit := rate.Inf
	if interval := b.cfg.MessageIntervalDuration(); interval > 0 {
		limit = rate.Every(interval)
	}
	limiter := rate.NewLimiter(limit, 1)

	for {
		line, ok := b.out.TryDequeue()
		if !ok {
			if b.out.Done() {
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-b.out.Wait():
			}
			continue
		}

		if err := limiter.Wait(ctx); err != nil {
			return
		}
		if err := sender.Say(ctx, line); err != nil {
			slog.Warn("chat send failed", "error", err)
			continue
		}
		b.metrics.sent()
	}
}
