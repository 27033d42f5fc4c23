// Package logger provides an asynchronous, batched JSON file logger with
// daily and size based rotation.
package logger

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// LogLevel represents the severity level of a log entry
type LogLevel string

const (
	LevelDebug LogLevel = "DEBUG"
	LevelInfo  LogLevel = "INFO"
	LevelWarn  LogLevel = "WARN"
	LevelError LogLevel = "ERROR"
	LevelFatal LogLevel = "FATAL"
)

var levelWeight = map[LogLevel]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
	LevelFatal: 4,
}

// ParseLevel converts "debug", "INFO", "warning"... into a LogLevel. Unknown
// values fall back to LevelInfo.
func ParseLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	case "FATAL":
		return LevelFatal
	default:
		return LevelInfo
	}
}

// Logger is the logging contract used across the application
type Logger interface {
	Debug(message string, fields ...map[string]interface{})
	Info(message string, fields ...map[string]interface{})
	Warn(message string, fields ...map[string]interface{})
	Error(message string, err error, fields ...map[string]interface{})
	Fatal(message string, err error, fields ...map[string]interface{})
	WithContext(level LogLevel, message string, ctx LogContext)
	Close() error
}

// LogEntry represents the structure of a log record
type LogEntry struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"@timestamp"`
	Level       LogLevel  `json:"level"`
	Message     string    `json:"message"`
	Service     string    `json:"service"`
	Version     string    `json:"version"`
	Environment string    `json:"environment"`
	Hostname    string    `json:"hostname"`
	PID         int       `json:"pid"`
	ExecID      string    `json:"exec_id"`

	Caller *CallerContext         `json:"caller,omitempty"`
	HTTP   *HTTPContext           `json:"http,omitempty"`
	Error  *ErrorContext          `json:"error,omitempty"`
	User   *UserContext           `json:"user,omitempty"`
	Fields map[string]interface{} `json:"fields,omitempty"`
}

// CallerContext identifies the source of a log entry
type CallerContext struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Function string `json:"function"`
}

// HTTPContext contains HTTP request/response information
type HTTPContext struct {
	Method       string            `json:"method"`
	Path         string            `json:"path"`
	Route        string            `json:"route,omitempty"`
	Query        string            `json:"query,omitempty"`
	UserAgent    string            `json:"user_agent,omitempty"`
	RemoteIP     string            `json:"remote_ip"`
	Headers      map[string]string `json:"headers,omitempty"`
	StatusCode   int               `json:"status_code"`
	ResponseSize int               `json:"response_size"`
	RequestID    string            `json:"request_id,omitempty"`
	DurationMs   float64           `json:"duration_ms"`
	RequestBody  string            `json:"request_body,omitempty"`
	ResponseBody string            `json:"response_body,omitempty"`
}

// ErrorContext contains error information
type ErrorContext struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// UserContext contains the authenticated user
type UserContext struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// LogContext holds additional context for WithContext
type LogContext struct {
	HTTP   *HTTPContext
	Error  *ErrorContext
	User   *UserContext
	Fields map[string]interface{}
}

// Config holds the logger configuration
type Config struct {
	Service         string        // Service name
	Version         string        // Application version
	Environment     string        // Environment (dev, homol, prod)
	LogDir          string        // Directory for log files
	FlushInterval   time.Duration // How often to flush logs to file
	BatchSize       int           // Maximum number of logs to batch
	BufferSize      int           // Channel buffer size
	LogLevel        LogLevel      // Minimum log level to process
	EnableCaller    bool          // Whether to capture caller information
	EnableBody      bool          // Whether to log request/response bodies
	MaxBodySize     int           // Maximum body size to log
	SensitiveFields []string      // Field names redacted from Fields
	ExecutionID     string        // Identifies this process run
	MaxFileSize     int64         // Maximum file size in bytes (default 10MB)
	WriteBufferSize int           // Buffer size for the file writer (default 64KB)
}

func (c *Config) setDefaults() {
	if c.LogDir == "" {
		c.LogDir = "./logs"
	}
	if c.FlushInterval == 0 {
		c.FlushInterval = time.Second
	}
	if c.BatchSize == 0 {
		c.BatchSize = 100
	}
	if c.BufferSize == 0 {
		c.BufferSize = 10000
	}
	if c.LogLevel == "" {
		c.LogLevel = LevelInfo
	}
	if c.MaxBodySize == 0 {
		c.MaxBodySize = 1024
	}
	if c.MaxFileSize == 0 {
		c.MaxFileSize = 10 * 1024 * 1024
	}
	if c.WriteBufferSize == 0 {
		c.WriteBufferSize = 64 * 1024
	}
	if c.ExecutionID == "" {
		c.ExecutionID = uuid.New().String()[0:5]
	}
}

// FileLogger is the asynchronous file logger
type FileLogger struct {
	config     Config
	logChannel chan LogEntry
	flushReq   chan chan struct{}
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	closeOnce  sync.Once
	hostname   string
	pid        int
	sensitive  map[string]bool
	fileWriter *fileWriter
}

// NewLogger creates a new FileLogger and starts its writer goroutine
func NewLogger(config Config) *FileLogger {
	config.setDefaults()

	hostname, _ := os.Hostname()
	ctx, cancel := context.WithCancel(context.Background())

	if err := os.MkdirAll(config.LogDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create log directory: %v\n", err)
	}

	sensitive := make(map[string]bool, len(config.SensitiveFields))
	for _, f := range config.SensitiveFields {
		sensitive[strings.ToLower(f)] = true
	}

	l := &FileLogger{
		config:     config,
		logChannel: make(chan LogEntry, config.BufferSize),
		flushReq:   make(chan chan struct{}),
		ctx:        ctx,
		cancel:     cancel,
		hostname:   hostname,
		pid:        os.Getpid(),
		sensitive:  sensitive,
		fileWriter: newFileWriter(config.LogDir, config.MaxFileSize, config.WriteBufferSize),
	}

	l.wg.Add(1)
	go l.processLogs()

	return l
}

// Config returns the effective configuration
func (l *FileLogger) Config() Config {
	return l.config
}

// processLogs batches entries and writes them to the current file
func (l *FileLogger) processLogs() {
	defer l.wg.Done()

	ticker := time.NewTicker(l.config.FlushInterval)
	defer ticker.Stop()

	batch := make([]LogEntry, 0, l.config.BatchSize)

	flush := func() {
		for _, entry := range batch {
			if err := l.fileWriter.writeEntry(entry); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to write log entry: %v\n", err)
			}
		}
		batch = batch[:0]
		if err := l.fileWriter.flush(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to flush log buffer: %v\n", err)
		}
	}

	drain := func() {
		for {
			select {
			case entry := <-l.logChannel:
				batch = append(batch, entry)
			default:
				return
			}
		}
	}

	for {
		select {
		case entry := <-l.logChannel:
			batch = append(batch, entry)
			if len(batch) >= l.config.BatchSize {
				flush()
			}

		case done := <-l.flushReq:
			drain()
			flush()
			close(done)

		case <-ticker.C:
			flush()

		case <-l.ctx.Done():
			drain()
			flush()
			return
		}
	}
}

func (l *FileLogger) shouldLog(level LogLevel) bool {
	return levelWeight[level] >= levelWeight[l.config.LogLevel]
}

func (l *FileLogger) createLogEntry(level LogLevel, message string) LogEntry {
	entry := LogEntry{
		ID:          uuid.New().String(),
		Timestamp:   time.Now().UTC(),
		Level:       level,
		Message:     message,
		Service:     l.config.Service,
		Version:     l.config.Version,
		Environment: l.config.Environment,
		Hostname:    l.hostname,
		PID:         l.pid,
		ExecID:      l.config.ExecutionID,
	}

	if l.config.EnableCaller {
		if pc, file, line, ok := runtime.Caller(3); ok {
			entry.Caller = &CallerContext{File: file, Line: line}
			if fn := runtime.FuncForPC(pc); fn != nil {
				entry.Caller.Function = fn.Name()
			}
		}
	}

	return entry
}

// redact replaces the values of sensitive keys
func (l *FileLogger) redact(fields map[string]interface{}) map[string]interface{} {
	if len(fields) == 0 || len(l.sensitive) == 0 {
		return fields
	}
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		if l.sensitive[strings.ToLower(k)] {
			out[k] = "[REDACTED]"
			continue
		}
		out[k] = v
	}
	return out
}

func (l *FileLogger) log(entry LogEntry) {
	select {
	case <-l.ctx.Done():
		return
	default:
	}

	select {
	case l.logChannel <- entry:
	default:
		fmt.Fprintf(os.Stderr, "Logger channel full, dropping log: %s\n", entry.Message)
	}
}

func (l *FileLogger) emit(level LogLevel, message string, err error, fields []map[string]interface{}) {
	if !l.shouldLog(level) {
		return
	}
	entry := l.createLogEntry(level, message)
	if err != nil {
		entry.Error = &ErrorContext{Type: fmt.Sprintf("%T", err), Message: err.Error()}
	}
	if len(fields) > 0 {
		entry.Fields = l.redact(fields[0])
	}
	l.log(entry)
}

// Debug logs a debug message
func (l *FileLogger) Debug(message string, fields ...map[string]interface{}) {
	l.emit(LevelDebug, message, nil, fields)
}

// Info logs an info message
func (l *FileLogger) Info(message string, fields ...map[string]interface{}) {
	l.emit(LevelInfo, message, nil, fields)
}

// Warn logs a warning message
func (l *FileLogger) Warn(message string, fields ...map[string]interface{}) {
	l.emit(LevelWarn, message, nil, fields)
}

// Error logs an error message
func (l *FileLogger) Error(message string, err error, fields ...map[string]interface{}) {
	l.emit(LevelError, message, err, fields)
}

// Fatal logs a fatal message. The caller decides whether to exit.
func (l *FileLogger) Fatal(message string, err error, fields ...map[string]interface{}) {
	l.emit(LevelFatal, message, err, fields)
}

// WithContext logs with HTTP, user and error context
func (l *FileLogger) WithContext(level LogLevel, message string, ctx LogContext) {
	if !l.shouldLog(level) {
		return
	}

	entry := l.createLogEntry(level, message)
	entry.HTTP = ctx.HTTP
	entry.Error = ctx.Error
	entry.User = ctx.User
	entry.Fields = l.redact(ctx.Fields)

	l.log(entry)
}

// Flush blocks until every queued entry is on disk
func (l *FileLogger) Flush() error {
	done := make(chan struct{})
	select {
	case l.flushReq <- done:
		<-done
	case <-l.ctx.Done():
	}
	return nil
}

// Close gracefully shuts down the logger
func (l *FileLogger) Close() error {
	var err error
	l.closeOnce.Do(func() {
		l.cancel()
		l.wg.Wait()
		err = l.fileWriter.close()
	})
	return err
}

// nopLogger discards everything
type nopLogger struct{}

// NewNop returns a Logger that discards all entries
func NewNop() Logger {
	return nopLogger{}
}

func (nopLogger) Debug(string, ...map[string]interface{})        {}
func (nopLogger) Info(string, ...map[string]interface{})         {}
func (nopLogger) Warn(string, ...map[string]interface{})         {}
func (nopLogger) Error(string, error, ...map[string]interface{}) {}
func (nopLogger) Fatal(string, error, ...map[string]interface{}) {}
func (nopLogger) WithContext(LogLevel, string, LogContext)       {}
func (nopLogger) Close() error                                   { return nil }
