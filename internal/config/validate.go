package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BenWassa/vox/internal/database"
	"github.com/BenWassa/vox/internal/spaced_repetition"
	"go.uber.org/zap/zapcore"
)

// Validate checks the loaded values and reports every problem at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case database.DriverSQLite:
	case database.DriverPostgres:
		if c.Database.DSN == "" {
			errs = append(errs, errors.New("database: DB_DSN is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("database: unsupported driver %q", c.Database.Driver))
	}

	if strings.TrimSpace(c.Backup.Dir) == "" {
		errs = append(errs, errors.New("backup: BACKUP_DIR must not be empty"))
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log: unsupported format %q", c.Log.Format))
	}

	if _, err := spaced_repetition.ParseMissPolicy(c.SRS.MissPolicy); err != nil {
		errs = append(errs, fmt.Errorf("srs: %w", err))
	}
	if c.SRS.ShuffleWindow < 0 {
		errs = append(errs, errors.New("srs: shuffle window must not be negative"))
	}

	if c.Reminder.StartHour < 0 || c.Reminder.StartHour > 23 {
		errs = append(errs, fmt.Errorf("reminder: start hour %d out of range 0-23", c.Reminder.StartHour))
	}
	if c.Reminder.EndHour < 0 || c.Reminder.EndHour > 23 {
		errs = append(errs, fmt.Errorf("reminder: end hour %d out of range 0-23", c.Reminder.EndHour))
	}
	if c.Reminder.Enabled && c.Reminder.Interval <= 0 {
		errs = append(errs, errors.New("reminder: interval must be positive"))
	}
	if c.Telegram.Token != "" && c.Telegram.ChatID == 0 {
		errs = append(errs, errors.New("telegram: TELEGRAM_CHAT_ID is required when a token is set"))
	}

	return errors.Join(errs...)
}
