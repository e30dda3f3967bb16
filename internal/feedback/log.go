package feedback

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/kirilligum/co-dreamer-hackathon-20251011/internal/types"
)

// Log is an append-only feedback event store backed by one writable JSONL
// destination plus any number of additional read-only sources. The log may
// be split across multiple physical files (e.g., an external reviewer tool
// dropping its own feedback file); sources are always read in the
// configured order. Appends to the write destination are serialized so
// concurrent trajectory completions cannot interleave partial lines.
type Log struct {
	writePath string
	sources   []string
	mu        sync.Mutex
	logger    *slog.Logger
}

// LogOption configures a Log during construction.
type LogOption func(*Log)

// WithExtraSources adds read-only feedback sources scanned after the
// write destination.
func WithExtraSources(paths ...string) LogOption {
	return func(l *Log) {
		l.sources = append(l.sources, paths...)
	}
}

// WithLogLogger sets the logger used to report skipped records.
func WithLogLogger(logger *slog.Logger) LogOption {
	return func(l *Log) {
		l.logger = logger
	}
}

// NewLog creates a feedback log writing to writePath. The write
// destination is also the first read source.
func NewLog(writePath string, opts ...LogOption) *Log {
	l := &Log{
		writePath: writePath,
		sources:   []string{writePath},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Append durably writes one event record, creating the backing file (and
// its parent directory) if absent. Events are immutable once appended.
func (l *Log) Append(event Event) error {
	data, err := event.Encode()
	if err != nil {
		return types.WrapError(types.FEEDBACK_ENCODE_FAILED, "encoding feedback event", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.writePath), 0755); err != nil {
		return types.WrapError(types.FEEDBACK_APPEND_FAILED, "creating feedback directory", err)
	}

	f, err := os.OpenFile(l.writePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return types.WrapError(types.FEEDBACK_APPEND_FAILED, fmt.Sprintf("opening %s", l.writePath), err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return types.WrapError(types.FEEDBACK_APPEND_FAILED, fmt.Sprintf("writing to %s", l.writePath), err)
	}
	return nil
}

// EventsFor scans every configured source in order and returns the events
// matching any of the given trajectory ids. Missing source files and
// unparseable lines are skipped, not fatal: feedback may reference
// trajectories never queried, and external sources may be partially
// written.
func (l *Log) EventsFor(trajectoryIDs []string) []Event {
	wanted := make(map[string]bool, len(trajectoryIDs))
	for _, id := range trajectoryIDs {
		wanted[id] = true
	}

	var events []Event
	for _, source := range l.sources {
		f, err := os.Open(source)
		if err != nil {
			if !os.IsNotExist(err) && l.logger != nil {
				l.logger.Warn("skipping unreadable feedback source", "path", source, "error", err)
			}
			continue
		}

		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}
			event, err := DecodeEvent(line)
			if err != nil {
				if l.logger != nil {
					l.logger.Debug("skipping feedback record", "path", source, "error", err)
				}
				continue
			}
			for id := range wanted {
				if event.Matches(id) {
					events = append(events, event)
					break
				}
			}
		}
		f.Close()
	}
	return events
}
