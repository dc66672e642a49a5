package logger

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

// Logger wraps logrus with the property-map logging style used across
// the project.
type Logger struct {
	*logrus.Logger
}

var (
	instance *Logger
	once     sync.Once
)

// GetLogger returns a singleton logger instance
func GetLogger() *Logger {
	once.Do(func() {
		instance = setupLogger()
	})
	return instance
}

// L is a short alias for GetLogger
func L() *Logger {
	return GetLogger()
}

func setupLogger() *Logger {
	// Create logs directory under the working directory
	dir, _ := os.Getwd()
	logDir := filepath.Join(dir, "logs")
	os.MkdirAll(logDir, 0755)

	base := logrus.New()
	base.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "02-01-06 15:04:05",
	})
	base.SetLevel(logrus.InfoLevel)

	// Log to the application log file and stderr. Falls back to
	// stderr only when the file cannot be opened.
	logFile := filepath.Join(logDir, "application.log")
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		base.SetOutput(os.Stderr)
	} else {
		base.SetOutput(io.MultiWriter(file, os.Stderr))
	}

	return &Logger{Logger: base}
}

func (l *Logger) fields(props []map[string]interface{}) logrus.Fields {
	if len(props) == 0 || props[0] == nil {
		return logrus.Fields{}
	}
	return logrus.Fields(props[0])
}

func (l *Logger) Info(msg string, props ...map[string]interface{}) {
	l.WithFields(l.fields(props)).Info(msg)
}

func (l *Logger) Error(msg string, props ...map[string]interface{}) {
	l.WithFields(l.fields(props)).Error(msg)
}

func (l *Logger) Debug(msg string, props ...map[string]interface{}) {
	l.WithFields(l.fields(props)).Debug(msg)
}

func (l *Logger) Fatal(msg string, props ...map[string]interface{}) {
	l.WithFields(l.fields(props)).Fatal(msg)
}

// EnableDebug enables debug logging
func (l *Logger) EnableDebug() {
	l.SetLevel(logrus.DebugLevel)
}

// DisableDebug disables debug logging
func (l *Logger) DisableDebug() {
	l.SetLevel(logrus.InfoLevel)
}
