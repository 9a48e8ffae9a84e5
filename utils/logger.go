package utils

import (
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// InitLogger configures the global logger. Unknown levels fall back to info.
func InitLogger(level, format string) {
	if strings.EqualFold(format, "text") {
		log.SetFormatter(&log.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02T15:04:05Z07:00",
		})
	} else {
		log.SetFormatter(&log.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05Z07:00",
		})
	}

	log.SetOutput(os.Stdout)

	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

// Logger returns an entry tagged with the given component name.
func Logger(component string) *log.Entry {
	return log.WithField("component", component)
}

// Info logs a message at info level with optional fields
func Info(message string, fields map[string]any) {
	log.WithFields(fields).Info(message)
}

// Warn logs a message at warning level with optional fields
func Warn(message string, fields map[string]any) {
	log.WithFields(fields).Warn(message)
}

// Error logs a message at error level with optional fields
func Error(message string, fields map[string]any) {
	log.WithFields(fields).Error(message)
}

// Fatal logs a message at fatal level and exits the application
func Fatal(message string, fields map[string]any) {
	log.WithFields(fields).Fatal(message)
}
