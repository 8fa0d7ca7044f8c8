package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Logger is a wrapper around charmbracelet/log.Logger
type Logger struct {
	*log.Logger
}

var (
	instance *Logger
	once     sync.Once

	mu          sync.Mutex
	sessionFile *os.File
	sessionPath string
)

// GetLogger returns the singleton logger instance
func GetLogger() *Logger {
	once.Do(func() {
		instance = &Logger{
			Logger: log.NewWithOptions(os.Stderr, log.Options{
				Level:           log.InfoLevel,
				ReportTimestamp: true,
				TimeFormat:      "15:04:05",
			}),
		}
	})
	return instance
}

// SetLogLevel sets the log level from a string
func (l *Logger) SetLogLevel(level string) {
	var logLevel log.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = log.DebugLevel
	case "info":
		logLevel = log.InfoLevel
	case "warn", "warning":
		logLevel = log.WarnLevel
	case "error":
		logLevel = log.ErrorLevel
	case "fatal":
		logLevel = log.FatalLevel
	default:
		logLevel = log.InfoLevel
	}

	l.SetLevel(logLevel)
	log.SetLevel(logLevel)
}

// ConfigureFromEnv configures the logger from environment variables
func (l *Logger) ConfigureFromEnv() {
	if logLevelEnv := os.Getenv("N8N_LOCAL_LOG_LEVEL"); logLevelEnv != "" {
		l.SetLogLevel(logLevelEnv)
		l.Debug("Log level set from environment variable", "level", logLevelEnv)
	}
}

// StartSession opens a per-run log file under dir, named after name and
// timestamped to the second, and duplicates all logger output into it.
// Returns the path of the session log.
func StartSession(dir, name string) (string, error) {
	mu.Lock()
	defer mu.Unlock()

	if sessionFile != nil {
		return sessionPath, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}

	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(dir, fmt.Sprintf("%s-%s.log", name, stamp))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to open session log %s: %w", path, err)
	}

	sessionFile = f
	sessionPath = path
	GetLogger().SetOutput(io.MultiWriter(os.Stderr, f))
	return path, nil
}

// SessionPath returns the current session log path, or "" when no session
// has been started.
func SessionPath() string {
	mu.Lock()
	defer mu.Unlock()
	return sessionPath
}

// Writer returns a writer that duplicates into the session log. Use it for
// console output that should survive in the persisted log, e.g. the final
// summary or the output of external commands.
func Writer(console io.Writer) io.Writer {
	mu.Lock()
	defer mu.Unlock()
	if sessionFile == nil {
		return console
	}
	return io.MultiWriter(console, sessionFile)
}

// EndSession closes the session log file.
func EndSession() {
	mu.Lock()
	defer mu.Unlock()
	if sessionFile != nil {
		_ = sessionFile.Close()
		sessionFile = nil
	}
	GetLogger().SetOutput(os.Stderr)
}

// Debug logs a debug message
func Debug(msg string, keyvals ...interface{}) {
	GetLogger().Debug(msg, keyvals...)
}

// Info logs an info message
func Info(msg string, keyvals ...interface{}) {
	GetLogger().Info(msg, keyvals...)
}

// Warn logs a warning message
func Warn(msg string, keyvals ...interface{}) {
	GetLogger().Warn(msg, keyvals...)
}

// Error logs an error message
func Error(msg string, keyvals ...interface{}) {
	GetLogger().Error(msg, keyvals...)
}

// Fatal logs a fatal message and exits
func Fatal(msg string, keyvals ...interface{}) {
	GetLogger().Fatal(msg, keyvals...)
}
