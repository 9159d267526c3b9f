package logger

import (
	"os"
	"strings"

	"facilitator_activity_tracker/internal/infra/config"

	"github.com/sirupsen/logrus"
)

// Log is the process-wide logger. Components log through it directly rather
// than threading a logger through every constructor.
var Log = logrus.New()

// Init applies level and format from configuration. Call once at startup,
// before anything else logs.
func Init(cfg *config.AppConfig) {
	Log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		Log.Warnf("Invalid log level '%s', defaulting to 'info'. Error: %v", cfg.LogLevel, err)
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)
	Log.SetFormatter(formatterFor(cfg.Environment))
}

// formatterFor picks JSON for deployed environments and colored text for
// local development.
func formatterFor(environment string) logrus.Formatter {
	switch environment {
	case "production", "staging":
		return &logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		}
	default:
		return &logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
			ForceColors:     true,
		}
	}
}

// Get returns the configured process-wide logger.
func Get() *logrus.Logger {
	return Log
}
