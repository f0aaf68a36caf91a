package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	serr "aspect/internal/errors"

	"github.com/sirupsen/logrus"
)

var (
	isDebug atomic.Bool
	logger  = NewLogger()
)

// Logging is the subset of Logger that components depend on.
type Logging interface {
	Debug(msg string)
	Debugf(format string, args ...interface{})
	Info(msg string)
	Infof(format string, args ...interface{})
	Warn(msg string)
	Warnf(format string, args ...interface{})
	Error(msg string)
	Errorf(format string, args ...interface{})
}

// Field is a single structured key/value pair.
type Field struct {
	Key   string
	Value interface{}
}

// F creates a Field.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Logger writes leveled, structured log lines through logrus.
type Logger struct {
	entry *logrus.Entry
	file  *os.File
}

type options struct {
	out      io.Writer
	json     bool
	filePath string
	level    logrus.Level
}

// Option configures a Logger.
type Option func(*options)

// WithOutput sends log lines to w instead of stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

// WithJSON switches to one JSON object per line.
func WithJSON() Option {
	return func(o *options) { o.json = true }
}

// WithFile additionally appends log lines to the file at path.
func WithFile(path string) Option {
	return func(o *options) { o.filePath = path }
}

// WithLevel sets the minimum level by name (debug, info, warn, error).
// Unknown names keep the default.
func WithLevel(name string) Option {
	return func(o *options) {
		if lvl, err := logrus.ParseLevel(name); err == nil {
			o.level = lvl
		}
	}
}

// NewLogger creates a Logger. Without options it writes text lines to stdout.
func NewLogger(opts ...Option) *Logger {
	o := options{out: os.Stdout, level: logrus.DebugLevel}
	for _, opt := range opts {
		opt(&o)
	}

	l := &Logger{}
	out := o.out
	if o.filePath != "" {
		f, err := os.OpenFile(o.filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log: cannot open %s: %v\n", o.filePath, err)
		} else {
			l.file = f
			out = io.MultiWriter(out, f)
		}
	}

	base := logrus.New()
	base.SetOutput(out)
	base.SetLevel(o.level)
	if o.json {
		base.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "timestamp",
				logrus.FieldKeyMsg:  "message",
			},
		})
	} else {
		base.SetFormatter(&textFormatter{})
	}

	l.entry = logrus.NewEntry(base)
	return l
}

// Configure replaces the package-level logger.
func Configure(opts ...Option) {
	logger = NewLogger(opts...)
}

// SetDebug toggles debug output for every logger.
func SetDebug(debug bool) {
	isDebug.Store(debug)
}

// Close releases the log file opened by WithFile, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// With returns a child logger carrying the given fields.
func (l *Logger) With(fields ...Field) *Logger {
	data := make(logrus.Fields, len(fields))
	for _, f := range fields {
		data[f.Key] = f.Value
	}
	return &Logger{entry: l.entry.WithFields(data), file: l.file}
}

// WithContext attaches ctx to subsequent entries.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}
	return &Logger{entry: l.entry.WithContext(ctx), file: l.file}
}

func (l *Logger) Debug(msg string) {
	if isDebug.Load() {
		l.log(logrus.DebugLevel, 3, msg)
	}
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	if isDebug.Load() {
		l.log(logrus.DebugLevel, 3, fmt.Sprintf(format, args...))
	}
}

func (l *Logger) Info(msg string) { l.log(logrus.InfoLevel, 3, msg) }

func (l *Logger) Infof(format string, args ...interface{}) {
	l.log(logrus.InfoLevel, 3, fmt.Sprintf(format, args...))
}

func (l *Logger) Warn(msg string) { l.log(logrus.WarnLevel, 3, msg) }

func (l *Logger) Warnf(format string, args ...interface{}) {
	l.log(logrus.WarnLevel, 3, fmt.Sprintf(format, args...))
}

func (l *Logger) Error(msg string) { l.log(logrus.ErrorLevel, 3, msg) }

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.log(logrus.ErrorLevel, 3, fmt.Sprintf(format, args...))
}

// log records the caller skip frames above itself.
func (l *Logger) log(level logrus.Level, skip int, msg string) {
	entry := l.entry
	if _, file, line, ok := runtime.Caller(skip - 1); ok {
		entry = entry.WithField("caller", fmt.Sprintf("%s:%d", filepath.Base(file), line))
	}
	entry.Log(level, msg)
}

// Package-level helpers use the configured global logger.

func Debug(msg string) {
	if isDebug.Load() {
		logger.log(logrus.DebugLevel, 3, msg)
	}
}

func Debugf(format string, args ...interface{}) {
	if isDebug.Load() {
		logger.log(logrus.DebugLevel, 3, fmt.Sprintf(format, args...))
	}
}

func Info(msg string) { logger.log(logrus.InfoLevel, 3, msg) }

func Infof(format string, args ...interface{}) {
	logger.log(logrus.InfoLevel, 3, fmt.Sprintf(format, args...))
}

func Warn(msg string) { logger.log(logrus.WarnLevel, 3, msg) }

func Warnf(format string, args ...interface{}) {
	logger.log(logrus.WarnLevel, 3, fmt.Sprintf(format, args...))
}

func Error(msg string) { logger.log(logrus.ErrorLevel, 3, msg) }

func Errorf(format string, args ...interface{}) {
	logger.log(logrus.ErrorLevel, 3, fmt.Sprintf(format, args...))
}

// LogWithFields returns the global logger with the given fields attached.
func LogWithFields(fields ...Field) *Logger {
	return logger.With(fields...)
}

// LogWithError returns the global logger annotated with err and, for
// application errors, its kind and typed details.
func LogWithError(err error) *Logger {
	return logger.With(errorFields(err)...)
}

// LogError logs err at error level with msg.
func LogError(err error, msg string) {
	logger.With(errorFields(err)...).log(logrus.ErrorLevel, 3, msg)
}

func errorFields(err error) []Field {
	if err == nil {
		return []Field{F("error", "<nil>")}
	}

	fields := []Field{F("error", err.Error())}

	var kinded interface{ Kind() serr.ErrorKind }
	if serr.As(err, &kinded) {
		fields = append(fields, F("error_kind", int(kinded.Kind())))
	}

	var fileErr *serr.FileError
	var decodeErr *serr.DecodeError
	var configErr *serr.ConfigError
	var dbErr *serr.DatabaseError
	switch {
	case serr.As(err, &configErr) && configErr.Param() != "":
		fields = append(fields, F("param", configErr.Param()))
	case serr.As(err, &decodeErr) && decodeErr.Path() != "":
		fields = append(fields, F("path", decodeErr.Path()))
	case serr.As(err, &fileErr) && fileErr.Path() != "":
		fields = append(fields, F("path", fileErr.Path()))
	case serr.As(err, &dbErr):
		if dbErr.Operation() != "" {
			fields = append(fields, F("operation", dbErr.Operation()))
		}
		for k, v := range dbErr.Context() {
			fields = append(fields, F(k, v))
		}
	}
	return fields
}

// textFormatter renders "[time] LEVEL: message key=value ..." lines.
type textFormatter struct{}

func (f *textFormatter) Format(e *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer
	fmt.Fprintf(&b, "[%s] %s: %s", e.Time.Format("2006-01-02 15:04:05"), levelName(e.Level), e.Message)

	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Data[k])
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

func levelName(l logrus.Level) string {
	if l == logrus.WarnLevel {
		return "WARN"
	}
	return strings.ToUpper(l.String())
}
