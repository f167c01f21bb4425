package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Logger is a zerolog logger with the nyaya field conventions.
type Logger struct {
	zl zerolog.Logger
}

// New builds a logger for service from cfg. An unknown level falls back
// to info.
func New(cfg Config, service string) *Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	out := outputWriter(cfg.Output)
	var zl zerolog.Logger
	if cfg.Format == "json" {
		zl = zerolog.New(out).With().Str("service", service).Logger()
	} else {
		zl = zerolog.New(consoleWriter(out, service, cfg.NoColor))
	}

	ctx := zl.Level(level).With()
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}
	if cfg.Caller {
		ctx = ctx.Caller()
	}
	return &Logger{zl: ctx.Logger()}
}

// NewWriter returns a JSON logger writing to w at debug level.
func NewWriter(w io.Writer, service string) *Logger {
	return &Logger{zl: zerolog.New(w).Level(zerolog.DebugLevel).With().Str("service", service).Logger()}
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

type contextKey string

// ContextWithRequestID stores an HTTP request id for WithContext.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey(FieldRequestID), id)
}

// ContextWithTraceID stores a trace id for WithContext.
func ContextWithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey(FieldTraceID), id)
}

// ContextWithRunID stores a pipeline run id for WithContext.
func ContextWithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey(FieldRunID), id)
}

// RunIDFromContext returns the pipeline run id stored in ctx, or "".
func RunIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(contextKey(FieldRunID)).(string)
	return id
}

// WithContext adds the trace, request and run ids found in ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	zc := l.zl.With()
	for _, key := range []string{FieldTraceID, FieldRequestID, FieldRunID} {
		if v, ok := ctx.Value(contextKey(key)).(string); ok && v != "" {
			zc = zc.Str(key, v)
		}
	}
	return &Logger{zl: zc.Logger()}
}

// Level is the minimum level this logger writes.
func (l *Logger) Level() zerolog.Level { return l.zl.GetLevel() }

func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{zl: l.zl.With().Str(FieldComponent, name).Logger()}
}

func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return &Logger{zl: l.zl.With().Fields(fields).Logger()}
}

func (l *Logger) WithError(err error) *Logger {
	return &Logger{zl: l.zl.With().Err(err).Logger()}
}

func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	emit(l.zl.Debug(), msg, fields)
}

func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	emit(l.zl.Info(), msg, fields)
}

func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	emit(l.zl.Warn(), msg, fields)
}

func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	emit(l.zl.Error(), msg, fields)
}

// Fatal logs and exits the process.
func (l *Logger) Fatal(msg string, fields ...map[string]interface{}) {
	emit(l.zl.Fatal(), msg, fields)
}

func emit(e *zerolog.Event, msg string, fields []map[string]interface{}) {
	for _, f := range fields {
		e = e.Fields(f)
	}
	e.Msg(msg)
}

var (
	globalMu   sync.RWMutex
	global     *Logger
	components = map[string]*Logger{}
)

// Init replaces the process-wide logger and drops component loggers
// derived from the previous one.
func Init(cfg Config, service string) {
	cfg.ApplyDefaults()
	SetGlobalLogger(New(cfg, service))
}

// SetGlobalLogger replaces the process-wide logger.
func SetGlobalLogger(l *Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	global = l
	components = map[string]*Logger{}
}

// GetGlobalLogger returns the process-wide logger. Before Init it is a
// console logger at info level.
func GetGlobalLogger() *Logger {
	globalMu.RLock()
	l := global
	globalMu.RUnlock()
	if l != nil {
		return l
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if global == nil {
		cfg := Config{}
		cfg.ApplyDefaults()
		global = New(cfg, "nyaya")
	}
	return global
}

// WithComponent returns the global logger tagged with a component name.
// Loggers are cached per name until the next Init.
func WithComponent(name string) *Logger {
	base := GetGlobalLogger()

	globalMu.Lock()
	defer globalMu.Unlock()
	if l, ok := components[name]; ok {
		return l
	}
	l := base.WithComponent(name)
	components[name] = l
	return l
}

func Info(msg string, fields ...map[string]interface{}) {
	GetGlobalLogger().Info(msg, fields...)
}

func Warn(msg string, fields ...map[string]interface{}) {
	GetGlobalLogger().Warn(msg, fields...)
}

func outputWriter(output string) io.Writer {
	if strings.EqualFold(output, "stderr") {
		return os.Stderr
	}
	return os.Stdout
}

var levelTags = map[string]struct{ tag, color string }{
	"trace": {"TRC", "90"},
	"debug": {"DBG", "36"},
	"info":  {"INF", "32"},
	"warn":  {"WRN", "33"},
	"error": {"ERR", "31"},
	"fatal": {"FTL", "35"},
}

// consoleWriter prints "15:04:05 [NYA][INF] message key:value".
func consoleWriter(out io.Writer, service string, noColor bool) zerolog.ConsoleWriter {
	paint := func(color, s string) string {
		if noColor || color == "" {
			return s
		}
		return "\033[" + color + "m" + s + "\033[0m"
	}

	prefix := ""
	if svc := strings.ToUpper(service); svc != "" {
		prefix = paint("34", "["+svc[:min(3, len(svc))]+"]")
	}

	return zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    noColor,
		TimeFormat: "15:04:05",
		FormatLevel: func(i interface{}) string {
			lvl := fmt.Sprint(i)
			t, ok := levelTags[lvl]
			if !ok {
				t.tag = strings.ToUpper(lvl)
			}
			return prefix + paint(t.color, "["+t.tag+"]")
		},
		FormatFieldName: func(i interface{}) string { return fmt.Sprint(i) + ":" },
	}
}
