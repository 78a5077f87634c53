// Package source manages the append-only line log of collected text
// samples. Producers (keyboard capture, transcription) append; the monitor
// consumes by line index.
package source

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/RAVBLACK/sentiguard/internal/errors"
)

// DefaultFileName is the line log's name inside the data directory when no
// explicit path is configured.
const DefaultFileName = "keystrokes.log"

// LineLog is a newline-delimited append-only log. Appends are serialized;
// concurrent producers never interleave bytes of a line.
type LineLog struct {
	mu   sync.Mutex
	path string
}

// NewLineLog creates a LineLog at path. The file itself is created lazily
// on first append.
func NewLineLog(path string) *LineLog {
	return &LineLog{path: path}
}

// DefaultPath returns the log location inside baseDir.
func DefaultPath(baseDir string) string {
	return filepath.Join(baseDir, DefaultFileName)
}

// Path returns the log file location.
func (l *LineLog) Path() string {
	return l.path
}

// Append writes one line to the log. Embedded newlines are flattened to
// spaces so one call is always exactly one line.
func (l *LineLog) Append(line string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	flat := strings.ReplaceAll(strings.ReplaceAll(line, "\r\n", " "), "\n", " ")

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return errors.NewPersistence("line log", err)
	}
	defer f.Close()

	if _, err := f.WriteString(flat + "\n"); err != nil {
		return errors.NewPersistence("line log", err)
	}
	return nil
}

// Lines returns every line in the log, in order. A missing or unreadable
// file reads as no lines; the scan path treats that as nothing new rather
// than an error.
func (l *LineLog) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.readLines()
}

// LinesFrom returns the lines at index n and beyond. Out-of-range n yields
// nil.
func (l *LineLog) LinesFrom(n int) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	lines := l.readLines()
	if n < 0 {
		n = 0
	}
	if n >= len(lines) {
		return nil
	}
	return lines[n:]
}

// Count returns the number of lines in the log.
func (l *LineLog) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.readLines())
}

// Check reports whether the log is readable, distinguishing "not yet
// created" (no error) from a real access failure.
func (l *LineLog) Check() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.NewSourceUnavailable(l.path, err)
	}
	f.Close()
	return nil
}

// Clear truncates the log. Irreversible.
func (l *LineLog) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	err := os.Remove(l.path)
	if err != nil && !os.IsNotExist(err) {
		return errors.NewPersistence("line log", err)
	}
	return nil
}

// readLines loads the log without locking; callers hold l.mu.
func (l *LineLog) readLines() []string {
	f, err := os.Open(l.path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if scanner.Err() != nil {
		return nil
	}
	return lines
}
