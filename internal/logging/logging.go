package logging

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu     sync.RWMutex
	logger = newLogger(os.Stdout, "trendforge")
)

func newLogger(w io.Writer, service string) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Str("service", service).Logger()
}

// Init sets the global level and service name. Unknown levels fall back to info.
func Init(level, service string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.DurationFieldUnit = time.Millisecond
	zerolog.DurationFieldInteger = true

	mu.Lock()
	logger = newLogger(os.Stdout, service)
	mu.Unlock()
}

// SetOutput redirects logs, mainly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	logger = logger.Output(w)
	mu.Unlock()
}

// Logger returns the shared logger.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func Log(level zerolog.Level, msg string, fields map[string]any) {
	l := Logger()
	l.WithLevel(level).Fields(fields).Msg(msg)
}

func Debug(msg string, fields map[string]any) { Log(zerolog.DebugLevel, msg, fields) }
func Info(msg string, fields map[string]any)  { Log(zerolog.InfoLevel, msg, fields) }
func Warn(msg string, fields map[string]any)  { Log(zerolog.WarnLevel, msg, fields) }
func Error(msg string, fields map[string]any) { Log(zerolog.ErrorLevel, msg, fields) }
