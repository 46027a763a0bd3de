package tracking

import (
	"context"
	"sync"
	"time"
)

// Record describes one filed document.
type Record struct {
	Path            string    `json:"path"`
	OriginalName    string    `json:"original_name"`
	NewName         string    `json:"new_name"`
	DocumentType    string    `json:"document_type"`
	DestinationPath string    `json:"destination_path,omitempty"`
	ProcessedAt     time.Time `json:"processed_at"`
}

// Tracker answers whether a source path was already handled.
type Tracker interface {
	HasBeenProcessed(ctx context.Context, path string) (bool, error)
	MarkProcessed(ctx context.Context, rec Record) error
	Forget(ctx context.Context, path string) error
}

// Memory is an in-process Tracker. The zero value is ready to use.
type Memory struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemory returns an empty in-process tracker.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) HasBeenProcessed(_ context.Context, path string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.records[path]
	return ok, nil
}

func (m *Memory) MarkProcessed(_ context.Context, rec Record) error {
	if rec.ProcessedAt.IsZero() {
		rec.ProcessedAt = time.Now().UTC()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.records == nil {
		m.records = make(map[string]Record)
	}
	m.records[rec.Path] = rec
	return nil
}

func (m *Memory) Forget(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, path)
	return nil
}

// Len reports how many paths are tracked.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// Session layers per-process release state over a durable Tracker. Forget
// never reaches the base: the durable record stays, and the path reads as
// unprocessed for the rest of the session.
type Session struct {
	base Tracker

	mu       sync.Mutex
	released map[string]struct{}
}

var _ Tracker = (*Session)(nil)

// NewSession wraps base. A nil base is replaced by an empty Memory.
func NewSession(base Tracker) *Session {
	if base == nil {
		base = NewMemory()
	}
	return &Session{base: base, released: make(map[string]struct{})}
}

func (s *Session) HasBeenProcessed(ctx context.Context, path string) (bool, error) {
	s.mu.Lock()
	_, released := s.released[path]
	s.mu.Unlock()
	if released {
		return false, nil
	}
	return s.base.HasBeenProcessed(ctx, path)
}

// MarkProcessed writes through to the base. It does not undo a release: a
// filed source has already left the inbox, and its removal event may be
// seen before or after this call.
func (s *Session) MarkProcessed(ctx context.Context, rec Record) error {
	return s.base.MarkProcessed(ctx, rec)
}

func (s *Session) Forget(_ context.Context, path string) error {
	s.mu.Lock()
	s.released[path] = struct{}{}
	s.mu.Unlock()
	return nil
}
