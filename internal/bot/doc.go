// Package bot connects chat to the craps table and the scripting engine.
//
// Chat lines beginning with "!craps" are routed to help, then to the
// engine's commands, then to the table's. Everything the engine and the
// table say is rendered as a chat line ("@user, text" for replies) and
// queued on the outbox, which a sender drains at most once per message
// interval.
//
// Architecture:
//
//	transport ──Enqueue──▶ inbox ──Run loop──▶ Handle ──▶ engine / table
//	                                                          │
//	transport ◀──Say── send loop (rate limited) ◀── outbox ◀──┘
//
// Every roll is followed by exactly one program tick. When rolling_delay is
// set, the table rolls on its own that long after the last pass bet.
//
// Run owns all engine and table access; Enqueue is safe from any goroutine.
// Stop closes the inbox: lines already queued are still handled and their
// replies sent before Run returns.
package bot
