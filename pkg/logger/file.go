package logger

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// fileWriter manages the current log file with buffering. Files live in
// <dir>/<date>/app-<date>-<index>.log and rotate per day and by size.
type fileWriter struct {
	mu           sync.Mutex
	file         *os.File
	writer       *bufio.Writer
	currentSize  int64
	currentDate  string
	currentIndex int
	maxSize      int64
	logDir       string
	bufferSize   int
	now          func() time.Time
}

func newFileWriter(dir string, maxSize int64, bufferSize int) *fileWriter {
	return &fileWriter{
		maxSize:    maxSize,
		logDir:     dir,
		bufferSize: bufferSize,
		now:        time.Now,
	}
}

// ensureCurrentFile must be called with mu held
func (fw *fileWriter) ensureCurrentFile() error {
	date := fw.now().Format("2006-01-02")
	if fw.file == nil || fw.currentDate != date || fw.currentSize >= fw.maxSize {
		return fw.rotateFile(date)
	}
	return nil
}

// rotateFile must be called with mu held
func (fw *fileWriter) rotateFile(date string) error {
	if fw.writer != nil {
		_ = fw.writer.Flush()
		fw.writer = nil
	}
	if fw.file != nil {
		_ = fw.file.Close()
		fw.file = nil
	}

	if fw.currentDate != date {
		fw.currentIndex = 0
		fw.currentDate = date
	} else {
		fw.currentIndex++
	}

	path := filepath.Join(fw.logDir, date, fmt.Sprintf("app-%s-%03d.log", date, fw.currentIndex))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create date directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}

	fw.file = file
	fw.writer = bufio.NewWriterSize(file, fw.bufferSize)
	fw.currentSize = stat.Size()
	return nil
}

func (fw *fileWriter) writeEntry(entry LogEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal log entry: %w", err)
	}
	data = append(data, '\n')

	fw.mu.Lock()
	defer fw.mu.Unlock()

	if err := fw.ensureCurrentFile(); err != nil {
		return err
	}

	n, err := fw.writer.Write(data)
	fw.currentSize += int64(n)
	if err != nil {
		return fmt.Errorf("failed to write log entry: %w", err)
	}
	return nil
}

func (fw *fileWriter) flush() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.writer != nil {
		return fw.writer.Flush()
	}
	return nil
}

func (fw *fileWriter) close() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	var err error
	if fw.writer != nil {
		err = fw.writer.Flush()
		fw.writer = nil
	}
	if fw.file != nil {
		if e := fw.file.Close(); e != nil && err == nil {
			err = e
		}
		fw.file = nil
	}
	return err
}
