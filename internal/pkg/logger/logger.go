package logger

import (
	"io"
	"os"
	"strings"

	"skillgap/internal/config"

	"github.com/sirupsen/logrus"
)

// New builds the process logger. Production uses JSON lines, everything else
// human readable text.
func New(app config.AppConfig, cfg config.LogConfig) *logrus.Logger {
	return newWithOutput(app, cfg, os.Stdout)
}

func newWithOutput(app config.AppConfig, cfg config.LogConfig, out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)

	level, err := logrus.ParseLevel(strings.TrimSpace(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if app.IsProduction() {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return l
}

// Discard returns a logger that drops everything. Handy for tests and for
// components constructed without a logger.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
