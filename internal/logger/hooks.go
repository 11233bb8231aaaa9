package logger

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
)

// EnhancedFormatter adds enhanced formatting with caller info and request context
type EnhancedFormatter struct {
	baseFormatter   logrus.Formatter
	includeCaller   bool
	includeHostname bool
	hostname        string
}

// NewEnhancedFormatter creates a new enhanced formatter
func NewEnhancedFormatter(format LogFormat, includeCaller bool) *EnhancedFormatter {
	var baseFormatter logrus.Formatter

	switch format {
	case JSONFormat:
		baseFormatter = &logrus.JSONFormatter{
			TimestampFormat:   "2006-01-02T15:04:05.000Z07:00",
			DisableHTMLEscape: true,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		}
	default:
		baseFormatter = &logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05.000",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		}
	}

	hostname, _ := os.Hostname()

	return &EnhancedFormatter{
		baseFormatter:   baseFormatter,
		includeCaller:   includeCaller,
		includeHostname: true,
		hostname:        hostname,
	}
}

// Format formats the log entry with enhanced information
func (f *EnhancedFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	// Clone entry data to avoid modifying original
	data := make(logrus.Fields)
	for k, v := range entry.Data {
		data[k] = v
	}

	if f.includeHostname && f.hostname != "" {
		data["hostname"] = f.hostname
	}

	if f.includeCaller && entry.Caller != nil {
		data["caller"] = fmt.Sprintf("%s:%d",
			strings.TrimPrefix(entry.Caller.File, runtime.GOROOT()),
			entry.Caller.Line)
		data["function"] = entry.Caller.Function
	}

	enhancedEntry := &logrus.Entry{
		Logger:  entry.Logger,
		Data:    data,
		Time:    entry.Time,
		Level:   entry.Level,
		Caller:  entry.Caller,
		Message: entry.Message,
	}

	return f.baseFormatter.Format(enhancedEntry)
}

// ContextHook adds context information to log entries
type ContextHook struct {
	serviceName string
	version     string
	environment string
}

// NewContextHook creates a context hook with service information
func NewContextHook(serviceName, version, environment string) *ContextHook {
	return &ContextHook{
		serviceName: serviceName,
		version:     version,
		environment: environment,
	}
}

// Levels returns all levels
func (hook *ContextHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire adds context information to log entries
func (hook *ContextHook) Fire(entry *logrus.Entry) error {
	entry.Data["service"] = hook.serviceName
	entry.Data["version"] = hook.version
	entry.Data["environment"] = hook.environment
	return nil
}
