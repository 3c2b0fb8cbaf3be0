// internal/logger/logger.go
package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger wraps logrus so call sites keep the familiar Printf-style API
// while still getting leveled, timestamped output.
type Logger struct {
	*logrus.Logger
}

// NewLogger returns a logger writing human-readable lines to stdout.
func NewLogger() *Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	l.SetLevel(logrus.InfoLevel)
	return &Logger{Logger: l}
}
