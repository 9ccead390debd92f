// Package ir provides the foundational types shared by the scripting engine.
//
// This package contains type definitions and their persisted encoding only.
// All other internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Value is a closed sum type: Number or Boolean, nothing else
//   - Per-user tables are keyed by username, then by object name
//   - The persisted document encodes every name-keyed table as ordered
//     [key, value] pairs, users sorted, so saves are deterministic
package ir
