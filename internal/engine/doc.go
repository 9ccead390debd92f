// Package engine implements the player scripting engine: the statement and
// command dispatcher, per-user programs, functions and variables, and
// tick-driven program execution.
//
// ARCHITECTURE:
//
// The engine is owned by a host (the craps table and chat bot). The host
// passes every chat command to Command and calls RunPrograms once per game
// event. Both run synchronously to completion; nothing suspends mid-evaluation.
//
// Command Flow:
//  1. Command splits off the command word (eval, program, function, variable)
//  2. eval runs a compound statement: ';'-separated statements, in order
//  3. Each statement has its {expr} blocks evaluated and substituted
//  4. The resolved text is offered to Host.TryCommand, then to print/variable
//  5. Changed state is saved through the Repository
//
// Tick Flow:
//  1. Every user with an active program is visited in sorted order
//  2. Each statement condition is evaluated in a fresh context
//  3. A true condition runs the statement's action as a compound statement
//
// Errors raised by one expression, statement or rule are reported to the
// acting user through Host.SendMessage and never stop sibling statements.
// Only persistence failures are returned to the caller.
//
// Thread-safety: an Engine is not safe for concurrent use. Hosts with
// several command sources serialize calls, as the bot's event loop does.
package engine
