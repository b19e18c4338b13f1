package util

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the process-wide logger. Diagnostics go to stderr so that
// stdout stays free for reports and JSON output.
var Logger = logrus.New()

func init() {
	Logger.SetOutput(os.Stderr)
	Logger.SetLevel(logrus.InfoLevel)
	Logger.SetFormatter(textFormatter())
}

func textFormatter() logrus.Formatter {
	return &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	}
}

// Configure sets the level ("debug", "info", "warn", ...) and the format
// ("text" or "json"). An empty format leaves the formatter unchanged.
func Configure(level, format string) error {
	if err := SetLogLevel(level); err != nil {
		return err
	}
	switch format {
	case "":
	case "text":
		Logger.SetFormatter(textFormatter())
	case "json":
		SetJSONFormat()
	default:
		return fmt.Errorf("unknown log format '%s' (want text or json)", format)
	}
	return nil
}

// SetLogLevel sets the logging level
func SetLogLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	Logger.SetLevel(lvl)
	return nil
}

// SetLogOutput sets the log output destination
func SetLogOutput(w io.Writer) {
	Logger.SetOutput(w)
}

// SetJSONFormat switches to one JSON object per line, for log shippers.
func SetJSONFormat() {
	Logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05Z07:00",
	})
}

func WithField(key string, value interface{}) *logrus.Entry {
	return Logger.WithField(key, value)
}

func WithFields(fields map[string]interface{}) *logrus.Entry {
	return Logger.WithFields(fields)
}

// WithCommand returns a logger scoped to a push command
func WithCommand(command string) *logrus.Entry {
	return Logger.WithField("command", command)
}

// WithRun returns a logger scoped to one run of a command. Every line of
// the run carries the same run id as its audit event.
func WithRun(runID, command string) *logrus.Entry {
	return Logger.WithFields(logrus.Fields{"run": runID, "command": command})
}

// WithRow returns a logger scoped to one table row of a command
func WithRow(command string, index int) *logrus.Entry {
	return Logger.WithFields(logrus.Fields{"command": command, "row": index})
}

func Debugf(format string, args ...interface{}) {
	Logger.Debugf(format, args...)
}

func Infof(format string, args ...interface{}) {
	Logger.Infof(format, args...)
}

func Warnf(format string, args ...interface{}) {
	Logger.Warnf(format, args...)
}

func Errorf(format string, args ...interface{}) {
	Logger.Errorf(format, args...)
}
