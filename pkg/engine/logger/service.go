package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

// Level represents log severity
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Logger interface for logging operations
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
	SetLevel(level Level)
}

// Service implements the Logger interface with a file sink and an
// optional console mirror. With an empty logFile and the console off,
// everything is discarded, which is what tests want.
type Service struct {
	level   Level
	logFile string
	file    *os.File
	console bool
	logger  *log.Logger
	mu      sync.Mutex
	pid     int
}

// NewService creates a new logger service writing to logFile.
func NewService(logFile string) *Service {
	s := &Service{
		level:   LevelInfo,
		logFile: logFile,
		pid:     os.Getpid(),
	}
	s.updateOutputWriters()
	return s
}

// updateOutputWriters configures the output writers based on current settings
func (s *Service) updateOutputWriters() {
	s.mu.Lock()
	defer s.mu.Unlock()

	var output io.Writer = io.Discard

	if s.logFile != "" && s.file == nil {
		dir := filepath.Dir(s.logFile)
		if err := os.MkdirAll(dir, 0755); err == nil {
			if file, err := os.OpenFile(s.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644); err == nil {
				s.file = file
				output = file
			}
		}
	} else if s.file != nil {
		output = s.file
	}

	if s.console {
		if output == io.Discard {
			output = os.Stderr
		} else {
			output = io.MultiWriter(output, os.Stderr)
		}
	}

	// Empty flags since we format the entries ourselves
	s.logger = log.New(output, "", 0)
}

// SetConsoleOutput mirrors log entries to stderr, used by the CLI's
// verbose and debug flags.
func (s *Service) SetConsoleOutput(enabled bool) {
	s.mu.Lock()
	s.console = enabled
	s.mu.Unlock()
	s.updateOutputWriters()
}

// SetLevel sets the minimum log level
func (s *Service) SetLevel(level Level) {
	s.mu.Lock()
	s.level = level
	s.mu.Unlock()
}

// Close closes the log file if open
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file != nil {
		err := s.file.Close()
		s.file = nil
		return err
	}
	return nil
}

// Debug logs a debug message
func (s *Service) Debug(format string, args ...interface{}) {
	s.log(LevelDebug, format, args...)
}

// Info logs an info message
func (s *Service) Info(format string, args ...interface{}) {
	s.log(LevelInfo, format, args...)
}

// Warn logs a warning message
func (s *Service) Warn(format string, args ...interface{}) {
	s.log(LevelWarn, format, args...)
}

// Error logs an error message
func (s *Service) Error(format string, args ...interface{}) {
	s.log(LevelError, format, args...)
}

// log performs the actual logging
func (s *Service) log(level Level, format string, args ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if level < s.level {
		return
	}

	_, file, line, ok := runtime.Caller(2)
	fileInfo := "unknown:0"
	if ok {
		fileInfo = fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}

	// Timestamp with comma-separated milliseconds
	now := time.Now()
	timestamp := fmt.Sprintf("%s,%03d",
		now.Format("2006-01-02 15:04:05"),
		now.Nanosecond()/1000000)

	message := fmt.Sprintf(format, args...)

	// Pad file info to a consistent column width
	paddedFileInfo := fileInfo
	if len(fileInfo) < 23 {
		paddedFileInfo = fileInfo + strings.Repeat(" ", 23-len(fileInfo))
	}

	s.logger.Printf("%s [%d] %-5s - %s - %s",
		timestamp, s.pid, s.levelString(level), paddedFileInfo, message)
}

// levelString returns the string representation of a level
func (s *Service) levelString(level Level) string {
	switch level {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LogFile returns the path to the log file
func (s *Service) LogFile() string {
	return s.logFile
}
