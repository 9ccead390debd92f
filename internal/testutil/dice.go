package testutil

import "sync"

// ScriptedDice returns predetermined dice rolls, satisfying table.Dice.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type ScriptedDice struct {
	mu    sync.Mutex
	rolls [][2]int
	idx   int
}

// NewScriptedDice creates dice that return rolls in order.
//
// Example:
//
//	dice := NewScriptedDice([2]int{3, 4}, [2]int{6, 6})
//	dice.Roll() // 3, 4
//	dice.Roll() // 6, 6
//	dice.Roll() // panic: rolls exhausted
func NewScriptedDice(rolls ...[2]int) *ScriptedDice {
	return &ScriptedDice{rolls: rolls}
}

// Roll returns the next scripted roll.
//
// Panics if all rolls have been used. This catches tests that roll more
// often than they scripted.
func (d *ScriptedDice) Roll() (int, int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.idx >= len(d.rolls) {
		panic("ScriptedDice: rolls exhausted")
	}
	r := d.rolls[d.idx]
	d.idx++
	return r[0], r[1]
}

// Remaining returns how many rolls have not been used.
func (d *ScriptedDice) Remaining() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.rolls) - d.idx
}
