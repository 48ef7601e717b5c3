// Package config loads application settings from the environment.
package config

import "time"

// Config is the root application configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Backup   BackupConfig   `yaml:"backup"`
	HTTP     HTTPConfig     `yaml:"http"`
	Log      LogConfig      `yaml:"log"`
	SRS      SRSConfig      `yaml:"srs"`
	Reminder ReminderConfig `yaml:"reminder"`
	Telegram TelegramConfig `yaml:"telegram"`
	Catalog  CatalogConfig  `yaml:"catalog"`
}

// DatabaseConfig selects the progress store backend.
type DatabaseConfig struct {
	Driver string `yaml:"driver" env:"DB_DRIVER" env-default:"sqlite3"`
	// DSN is the SQLite file path or the Postgres connection string.
	// SQLite falls back to data/vox.db when empty.
	DSN string `yaml:"dsn" env:"DB_DSN"`
}

// BackupConfig holds backup settings.
type BackupConfig struct {
	Dir string `yaml:"dir" env:"BACKUP_DIR" env-default:"data/backups"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Addr            string        `yaml:"addr"             env:"HTTP_ADDR"             env-default:"127.0.0.1:8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"HTTP_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"HTTP_WRITE_TIMEOUT"    env-default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
	// MaxImportBytes caps the size of an uploaded progress file.
	MaxImportBytes int64 `yaml:"max_import_bytes" env:"HTTP_MAX_IMPORT_BYTES" env-default:"10485760"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// SRSConfig holds review scheduling parameters.
type SRSConfig struct {
	MissPolicy string `yaml:"miss_policy" env:"SRS_MISS_POLICY" env-default:"reset"`
	// ShuffleWindow > 0 picks at random among that many earliest due cards.
	ShuffleWindow int   `yaml:"shuffle_window" env:"SRS_SHUFFLE_WINDOW" env-default:"0"`
	ShuffleSeed   int64 `yaml:"shuffle_seed"   env:"SRS_SHUFFLE_SEED"   env-default:"1"`
}

// ReminderConfig controls the due-card reminder job.
type ReminderConfig struct {
	Enabled   bool          `yaml:"enabled"    env:"REMINDER_ENABLED"    env-default:"false"`
	Interval  time.Duration `yaml:"interval"   env:"REMINDER_INTERVAL"   env-default:"1h"`
	StartHour int           `yaml:"start_hour" env:"NOTIFICATION_START_HOUR" env-default:"8"`
	EndHour   int           `yaml:"end_hour"   env:"NOTIFICATION_END_HOUR"   env-default:"22"`
}

// TelegramConfig holds the reminder bot credentials. Reminders go to the log when Token is empty.
type TelegramConfig struct {
	Token  string `yaml:"token"   env:"TELEGRAM_BOT_TOKEN"`
	ChatID int64  `yaml:"chat_id" env:"TELEGRAM_CHAT_ID"`
}

// CatalogConfig points at the catalog files used by the seed command.
type CatalogConfig struct {
	VocabPath   string `yaml:"vocab_path"   env:"CATALOG_VOCAB_PATH"   env-default:"data/vocab_a1.json"`
	GrammarPath string `yaml:"grammar_path" env:"CATALOG_GRAMMAR_PATH" env-default:"data/grammar_a1.json"`
}
