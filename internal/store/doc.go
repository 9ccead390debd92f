// Package store persists the scripting engine state.
//
// Two repositories implement engine.Repository:
//   - JSONFile: the players document (playerPrograms, activePlayerPrograms,
//     playerFunctions, playerVariables) in one file, replaced atomically
//   - Store: SQLite tables, one row per program, statement, function and
//     variable
//
// Both save whole snapshots. The engine only saves when the state hash
// changed, so a snapshot write per mutating command is cheap enough.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Statements and active programs reference programs
package store
