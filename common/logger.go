package common

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000",
	})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// Logger returns the process wide logger every package logs through.
func Logger() *logrus.Logger {
	return logger
}

// SetLogLevel accepts logrus level names. Unknown names fall back to info.
func SetLogLevel(level string) {
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
}

// SetLogOutput redirects log output, tests use it with io.Discard.
func SetLogOutput(w io.Writer) {
	logger.SetOutput(w)
}
