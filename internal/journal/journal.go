// Package journal persists lifecycle transitions and run summaries to a
// plain text file so a run can be reconstructed after the host exits.
package journal

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/armature-dev/armature/internal/lifecycle"
)

// Level represents the severity of a journal entry.
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// FileName is the journal file created inside the journal directory.
const FileName = "armature-journal.log"

// Journal appends timestamped entries tagged with a per-run session ID.
type Journal struct {
	path    string
	session string
	mu      sync.Mutex
}

// New creates a journal writing to dir/armature-journal.log. Each Journal
// gets a fresh session ID so interleaved runs stay distinguishable.
func New(dir string) (*Journal, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("journal: ensure dir: %w", err)
	}
	session := uuid.NewString()[:8]
	return &Journal{path: filepath.Join(dir, FileName), session: session}, nil
}

// Path returns the file backing this journal.
func (j *Journal) Path() string {
	if j == nil {
		return ""
	}
	return j.path
}

// SessionID returns the per-run session identifier.
func (j *Journal) SessionID() string {
	if j == nil {
		return ""
	}
	return j.session
}

// Append writes a single entry.
func (j *Journal) Append(level Level, message string) {
	if j == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	line := fmt.Sprintf("%s %-5s [%s] %s\n",
		time.Now().UTC().Format(time.RFC3339),
		string(level),
		j.session,
		strings.TrimSpace(message),
	)
	file, err := os.OpenFile(j.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return
	}
	defer file.Close()
	_, _ = file.WriteString(line)
}

// Info appends an informational entry.
func (j *Journal) Info(format string, args ...any) {
	j.Append(LevelInfo, fmt.Sprintf(format, args...))
}

// Warn appends a warning entry.
func (j *Journal) Warn(format string, args ...any) {
	j.Append(LevelWarn, fmt.Sprintf(format, args...))
}

// Error appends an error entry.
func (j *Journal) Error(format string, args ...any) {
	j.Append(LevelError, fmt.Sprintf(format, args...))
}

// Transition records a completed lifecycle transition. It satisfies
// lifecycle.TransitionFunc.
func (j *Journal) Transition(component string, from, to lifecycle.State) {
	level := LevelInfo
	if to == lifecycle.StateError {
		level = LevelError
	}
	j.Append(level, fmt.Sprintf("%s: %s -> %s", component, from, to))
}

// Tail returns up to maxLines of the most recent entries.
func (j *Journal) Tail(maxLines int) []string {
	if j == nil || maxLines <= 0 {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	file, err := os.Open(j.path)
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if len(lines) == 0 {
		return nil
	}
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return lines
}
