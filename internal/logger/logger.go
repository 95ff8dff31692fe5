package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// Init sets the process log level. An unknown level falls back to info.
func Init(level string) {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
}

// Get returns the process logger.
func Get() *logrus.Logger {
	return log
}

func Debugf(format string, args ...any) { log.Debugf(format, args...) }
func Warnf(format string, args ...any)  { log.Warnf(format, args...) }
