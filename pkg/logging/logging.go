// Package logging configures the logrus logger used by the object
// database and the command line.
package logging

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// TimestampFormat is the timestamp layout of log lines.
const TimestampFormat = "2006-01-02T15:04:05.000Z07:00"

// New returns a logger writing to out at warn level with text output.
func New(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.Out = out
	l.SetLevel(logrus.WarnLevel)
	l.Formatter = &logrus.TextFormatter{TimestampFormat: TimestampFormat}
	return l
}

// Configure sets the format and level of l. An empty format keeps the
// current formatter; an unknown level falls back to info.
func Configure(l *logrus.Logger, format, level string) error {
	switch format {
	case "json":
		l.Formatter = &logrus.JSONFormatter{TimestampFormat: TimestampFormat}
	case "text":
		l.Formatter = &logrus.TextFormatter{TimestampFormat: TimestampFormat}
	case "":
	default:
		return fmt.Errorf("invalid log format %q", format)
	}

	if level == "" {
		return nil
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	return nil
}
