package table

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/queuedpixel/twitch-craps-bot/internal/engine"
	"github.com/queuedpixel/twitch-craps-bot/internal/ir"
)

// Output receives everything the table and the engine say. Messages with
// an empty User are announcements for the whole channel.
type Output interface {
	Deliver(msg engine.Message)
}

// OutputFunc adapts a function to Output.
type OutputFunc func(msg engine.Message)

// Deliver calls f(msg).
func (f OutputFunc) Deliver(msg engine.Message) { f(msg) }

// Settings configures a Table.
type Settings struct {
	Owner           string
	Debug           bool  // enables the owner's roll command
	StartingBalance int64 // whole units
}

// Host variable names.
const (
	VarBalance = "balance"
	VarPoint   = "point"
	VarDie1    = "die1"
	VarDie2    = "die2"
	VarTotal   = "total"
	VarPassBet = "passbet"
)

var usages = map[string]string{
	"balance": "balance",
	"bet":     "bet pass <amount>",
	"roll":    "roll [<die1> <die2>]",
}

// Usage returns the synopsis of a table command, or "" if there is none.
func Usage(command string) string {
	return usages[strings.ToLower(strings.TrimSpace(command))]
}

// Commands returns the table's command words available to every player.
func Commands() []string {
	return []string{"balance", "bet"}
}

// Variables lists the identifiers the table exposes to expressions.
func Variables() []string {
	return []string{VarBalance, VarDie1, VarDie2, VarPassBet, VarPoint, VarTotal}
}

// Table is a pass-line craps table.
type Table struct {
	settings Settings
	dice     Dice
	out      Output

	balances map[string]int64
	passBets map[string]int64
	betOrder []string // pass bets settle in the order they were placed

	point      int
	die1, die2 int
	rolls      int
	placed     int // pass bets accepted, ever
	rolled     bool // set by a roll, cleared by TakeRoll
}

// New creates a table with no bets and no point.
func New(settings Settings, dice Dice, out Output) *Table {
	return &Table{
		settings: settings,
		dice:     dice,
		out:      out,
		balances: make(map[string]int64),
		passBets: make(map[string]int64),
	}
}

// SendMessage forwards an engine message to the output.
func (t *Table) SendMessage(msg engine.Message) {
	t.out.Deliver(msg)
}

func (t *Table) announce(format string, args ...any) {
	t.out.Deliver(engine.Message{Text: fmt.Sprintf(format, args...)})
}

func (t *Table) tell(user, format string, args ...any) {
	t.out.Deliver(engine.Message{User: user, Text: fmt.Sprintf(format, args...)})
}

// Variable resolves the table's read-only identifiers. Money is reported in
// whole units.
func (t *Table) Variable(user, name string) (ir.Value, bool) {
	switch name {
	case VarBalance:
		return ir.Number(float64(t.Balance(user)) / 100), true
	case VarPoint:
		return ir.Number(float64(t.point)), true
	case VarDie1:
		return ir.Number(float64(t.die1)), true
	case VarDie2:
		return ir.Number(float64(t.die2)), true
	case VarTotal:
		return ir.Number(float64(t.die1 + t.die2)), true
	case VarPassBet:
		return ir.Number(float64(t.passBets[user]) / 100), true
	}
	return nil, false
}

// TryCommand claims the table's commands. Anything it does not recognize is
// left for the engine.
func (t *Table) TryCommand(user, command string) bool {
	word, rest := splitWord(command)
	switch word {
	case "balance":
		if rest != "" {
			return false
		}
		t.tell(user, "balance: %s", FormatCurrency(t.Balance(user)))
		return true

	case "bet":
		t.betCommand(user, rest)
		return true

	case "roll":
		if !t.settings.Debug || !strings.EqualFold(user, t.settings.Owner) {
			return false
		}
		t.rollCommand(user, rest)
		return true
	}
	return false
}

// Balance returns user's balance in hundredths, opening an account with the
// starting balance on first use.
func (t *Table) Balance(user string) int64 {
	b, ok := t.balances[user]
	if !ok {
		b = t.settings.StartingBalance * 100
		t.balances[user] = b
	}
	return b
}

// Point returns the current point, or 0 when there is none.
func (t *Table) Point() int { return t.point }

// Rolls returns how many rolls the table has made.
func (t *Table) Rolls() int { return t.rolls }

// HasBets reports whether any pass bet is waiting to be settled.
func (t *Table) HasBets() bool { return len(t.betOrder) > 0 }

// BetsPlaced returns how many pass bets the table has accepted.
func (t *Table) BetsPlaced() int { return t.placed }

// TakeRoll reports whether the table rolled since the last call and clears
// the flag. The bot runs one program tick for each roll it takes.
func (t *Table) TakeRoll() bool {
	r := t.rolled
	t.rolled = false
	return r
}

func (t *Table) betCommand(user, rest string) {
	if rest == "" {
		t.tell(user, "you must specify which bet you wish to make.")
		return
	}

	kind, amountText := splitWord(rest)
	if kind != "pass" {
		t.tell(user, "unrecognized bet.")
		return
	}
	if amountText == "" {
		t.tell(user, "you must specify an amount.")
		return
	}

	units, err := strconv.ParseInt(amountText, 10, 64)
	if err != nil {
		t.tell(user, "unable to parse bet.")
		return
	}
	if units < 1 {
		t.tell(user, "bet is too small.")
		return
	}

	amount := units * 100
	if balance := t.Balance(user); amount > balance {
		t.tell(user, "bet exceeds your balance of %s", FormatCurrency(balance))
		return
	}
	if _, ok := t.passBets[user]; ok {
		t.tell(user, "you've already made this bet.")
		return
	}

	t.passBets[user] = amount
	t.betOrder = append(t.betOrder, user)
	t.placed++
	t.tell(user, "bet made.")
	slog.Debug("pass bet placed", "user", user, "amount", amount)
}

func (t *Table) rollCommand(user, rest string) {
	if rest == "" {
		t.RollRandom()
		return
	}

	values := strings.Fields(rest)
	if len(values) != 2 {
		t.tell(user, "you must specify two values.")
		return
	}

	d1, err1 := strconv.Atoi(values[0])
	d2, err2 := strconv.Atoi(values[1])
	if err1 != nil || err2 != nil {
		t.tell(user, "unable to parse values.")
		return
	}
	if d1 < 1 || d1 > 6 || d2 < 1 || d2 > 6 {
		t.tell(user, "values must be between 1 and 6.")
		return
	}

	t.Roll(d1, d2)
}

// RollRandom rolls the table's dice.
func (t *Table) RollRandom() {
	t.Roll(t.dice.Roll())
}

// Roll settles the table for the given dice.
func (t *Table) Roll(d1, d2 int) {
	t.die1, t.die2 = d1, d2
	t.rolls++
	t.rolled = true

	total := d1 + d2
	t.announce("Roll: %d, %d - (%d)", d1, d2, total)
	slog.Info("dice rolled", "die1", d1, "die2", d2, "point", t.point)

	if t.point == 0 {
		switch total {
		case 7, 11:
			t.settle(true)
		case 2, 3, 12:
			t.settle(false)
		default:
			t.point = total
			t.announce("New point established: %d", t.point)
		}
		return
	}

	switch total {
	case t.point:
		t.point = 0
		t.announce("The point was made.")
		t.settle(true)
	case 7:
		t.point = 0
		t.announce("Seven out.")
		t.settle(false)
	}
}

// settle pays or collects every pass bet and clears them.
func (t *Table) settle(won bool) {
	for _, user := range t.betOrder {
		bet := t.passBets[user]
		if won {
			t.balances[user] = t.Balance(user) + bet
			t.tell(user, "won %s", FormatCurrency(bet))
		} else {
			t.balances[user] = t.Balance(user) - bet
			t.tell(user, "lost %s", FormatCurrency(bet))
		}
	}
	clear(t.passBets)
	t.betOrder = t.betOrder[:0]
}

// splitWord returns the lowercased first word of s and the trimmed rest.
func splitWord(s string) (string, string) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return "", ""
	}
	word := fields[0]
	rest := strings.TrimSpace(strings.TrimSpace(s)[len(word):])
	return strings.ToLower(word), rest
}
