package bot

// Config represents the configuration for the bot
type Config struct {
	Token string
	// ChatID is the only chat the bot talks to
	ChatID int64
	// UpdateTimeout is the long-polling timeout in seconds
	UpdateTimeout int
}

// DefaultConfig returns the default bot configuration
func DefaultConfig(token string, chatID int64) Config {
	return Config{
		Token:         token,
		ChatID:        chatID,
		UpdateTimeout: 60,
	}
}
