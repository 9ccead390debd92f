// Package table implements a minimal craps table with pass-line bets.
//
// The Table is the scripting engine's host: it claims the betting
// commands (balance, bet pass, roll), exposes its state to expressions as
// read-only variables, and forwards engine messages to its Output.
//
// Balances and bets are kept in hundredths of one unit of currency and
// shown as §1,234.56.
//
// A Table is not safe for concurrent use; the bot serializes access.
package table
