package logging

// Leveled logging for the decoder and the command line tool.

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

type LogLevel int

const (
	// errors that should almost always be printed
	LevelFatal LogLevel = iota // error that must stop the program
	LevelError                 // error that does not need to stop execution

	// okay to disable
	LevelWarn // data was truncated or guessed, decoding continues
	LevelInfo // tracing of the decoder state machine

	LogLevelDefault = LevelWarn

	LevelMin = LevelFatal
	LevelMax = LevelInfo
)

var levelToPrefix = []string{
	"FATAL ",
	"ERROR ",
	"WARN ",
	"INFO ",
}

type Logger struct {
	mu       sync.Mutex
	logLevel LogLevel
	logger   *log.Logger
}

func NewLogger() *Logger {
	return NewLoggerTo(os.Stderr)
}

// NewLoggerTo creates a logger writing to w at the default level.
func NewLoggerTo(w io.Writer) *Logger {
	return &Logger{
		logLevel: LogLevelDefault,
		logger:   log.New(w, "", log.LstdFlags),
	}
}

// SetLogLevel returns the old level
func (l *Logger) SetLogLevel(level LogLevel) LogLevel {
	if level < LevelMin || level > LevelMax {
		panic("trying to set invalid log level")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	old := l.logLevel
	l.logLevel = level
	return old
}

func (l *Logger) output(level LogLevel, s string) {
	l.mu.Lock()
	enabled := level <= l.logLevel
	l.mu.Unlock()
	if !enabled {
		return
	}
	_ = l.logger.Output(3, levelToPrefix[level]+s)
}

func (l *Logger) Infof(format string, v ...any) { l.output(LevelInfo, fmt.Sprintf(format, v...)) }
func (l *Logger) Warnf(format string, v ...any) { l.output(LevelWarn, fmt.Sprintf(format, v...)) }

// Fatalf logs at any level and exits the program
func (l *Logger) Fatalf(format string, v ...any) {
	l.output(LevelFatal, fmt.Sprintf(format, v...))
	os.Exit(1)
}
