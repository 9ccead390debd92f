// Package harness runs scripted chat scenarios against a complete bot.
//
// A scenario is a YAML file describing a table configuration, a list of
// chat lines and dice rolls, and assertions about the resulting chat
// transcript and final state:
//
//	name: pass_line_bettor
//	description: A program bets on every come-out roll
//	config:
//	  owner: owner
//	  starting_balance: 100
//	flow:
//	  - user: alice
//	    say: "!craps bet pass 10"
//	    expect: ["@alice, bet made."]
//	  - roll: [3, 4]
//	assertions:
//	  - type: balance
//	    user: alice
//	    value: 110
//
// Each scenario runs against a fresh in-memory SQLite repository with a
// fixed clock and fixed tick ids, so transcripts are reproducible and can be
// compared against golden files under testdata/golden. After the flow the
// state is reloaded from the repository and must match the engine's.
package harness
