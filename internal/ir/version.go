package ir

// Version constants for the persisted state and the bot.
const (
	// StateVersion is the persisted state document version.
	StateVersion = "1"

	// BotVersion is the craps bot version.
	BotVersion = "0.3.0"
)
