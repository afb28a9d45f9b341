package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

type LogLevel uint8

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelCritical
)

type Logger struct {
	level   LogLevel
	out     io.Writer
	closer  io.Closer
	logChan chan string
	wg      sync.WaitGroup
	closed  sync.Once
}

type Options struct {
	Level   LogLevel
	Path    string
	Console bool
	// Rotation is applied once, when the file is opened.
	Rotation *LogRotation
}

// NewLogger opens (and if due, rotates) the log file at opts.Path.
func NewLogger(opts Options) (*Logger, error) {
	if dir := filepath.Dir(opts.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}

	if opts.Rotation != nil && opts.Rotation.ShouldRotate(opts.Path) {
		if _, err := opts.Rotation.Rotate(opts.Path); err != nil {
			return nil, fmt.Errorf("rotate %s: %w", opts.Path, err)
		}
	}

	file, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}

	var out io.Writer = file
	if opts.Console {
		out = io.MultiWriter(file, os.Stdout)
	}

	return newLogger(opts.Level, out, file), nil
}

// NewWriterLogger logs to w; Close does not close w.
func NewWriterLogger(level LogLevel, w io.Writer) *Logger {
	return newLogger(level, w, nil)
}

func newLogger(level LogLevel, out io.Writer, closer io.Closer) *Logger {
	l := &Logger{
		level:   level,
		out:     out,
		closer:  closer,
		logChan: make(chan string, 4096),
	}

	l.wg.Add(1)
	go l.worker()

	return l
}

func (l *Logger) worker() {
	defer l.wg.Done()
	for line := range l.logChan {
		io.WriteString(l.out, line)
	}
}

func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	if level < l.level {
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	message := fmt.Sprintf(format, args...)
	line := fmt.Sprintf("[%s] [%s] %s\n", timestamp, level, message)

	select {
	case l.logChan <- line:
	default:
		// buffer full, drop
	}
}

func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(LevelDebug, format, args...)
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.log(LevelInfo, format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(LevelWarn, format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.log(LevelError, format, args...)
}

func (l *Logger) Critical(format string, args ...interface{}) {
	l.log(LevelCritical, format, args...)
}

func (level LogLevel) String() string {
	switch level {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a config string to a level, defaulting to info.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "critical":
		return LevelCritical
	default:
		return LevelInfo
	}
}

// Close flushes pending lines.
func (l *Logger) Close() error {
	var err error
	l.closed.Do(func() {
		close(l.logChan)
		l.wg.Wait()
		if l.closer != nil {
			err = l.closer.Close()
		}
	})
	return err
}

var GlobalLogger *Logger

func InitGlobalLogger(opts Options) error {
	logger, err := NewLogger(opts)
	if err != nil {
		return err
	}
	GlobalLogger = logger
	return nil
}

func SetGlobalLogger(l *Logger) {
	GlobalLogger = l
}

func Debug(format string, args ...interface{}) {
	if GlobalLogger != nil {
		GlobalLogger.Debug(format, args...)
	}
}

func Info(format string, args ...interface{}) {
	if GlobalLogger != nil {
		GlobalLogger.Info(format, args...)
	}
}

func Warn(format string, args ...interface{}) {
	if GlobalLogger != nil {
		GlobalLogger.Warn(format, args...)
	}
}

func Error(format string, args ...interface{}) {
	if GlobalLogger != nil {
		GlobalLogger.Error(format, args...)
	}
}

func Critical(format string, args ...interface{}) {
	if GlobalLogger != nil {
		GlobalLogger.Critical(format, args...)
	}
}
