package table

import "math/rand/v2"

// Dice rolls a pair of six-sided dice.
type Dice interface {
	Roll() (int, int)
}

// RandomDice rolls with the runtime's random source.
type RandomDice struct{}

// Roll returns two values between 1 and 6.
func (RandomDice) Roll() (int, int) {
	return rand.IntN(6) + 1, rand.IntN(6) + 1
}
