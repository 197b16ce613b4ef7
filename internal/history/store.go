// Package history records the outcome of every project build.
package history

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

// DefaultLimit is the number of records Recent returns when no limit is given.
const DefaultLimit = 10

// Outcome is the result of building one project.
type Outcome string

const (
	Built   Outcome = "built"
	Skipped Outcome = "skipped"
	Failed  Outcome = "failed"
)

// Record describes one build of one project.
type Record struct {
	ID int64 `json:"id"`
	// Project is the project directory.
	Project  string        `json:"project"`
	Slug     string        `json:"slug"`
	Outcome  Outcome       `json:"outcome"`
	Digest   string        `json:"digest,omitempty"`
	Pages    []string      `json:"pages,omitempty"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
	BuiltAt  time.Time     `json:"built_at"`
}

// Store persists build records.
type Store interface {
	Record(ctx context.Context, r Record) error
	// Recent returns the latest records of the project identified by slug,
	// newest first.
	Recent(ctx context.Context, slug string, limit int) ([]Record, error)
}

func validate(r Record) error {
	switch {
	case r.Project == "":
		return fmt.Errorf("project is required")
	case r.Slug == "":
		return fmt.Errorf("slug is required")
	}
	switch r.Outcome {
	case Built, Skipped, Failed:
		return nil
	}
	return fmt.Errorf("unknown outcome %q", r.Outcome)
}

// MemoryStore is an in-memory implementation of Store.
type MemoryStore struct {
	records []Record
	nextID  int64
	mu      sync.RWMutex
}

// NewMemoryStore creates a new in-memory history store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

func (s *MemoryStore) Record(_ context.Context, r Record) error {
	if err := validate(r); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r.ID = s.nextID
	s.nextID++
	if r.BuiltAt.IsZero() {
		r.BuiltAt = time.Now()
	}
	r.Pages = slices.Clone(r.Pages)
	s.records = append(s.records, r)
	return nil
}

func (s *MemoryStore) Recent(_ context.Context, slug string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var recent []Record
	for i := len(s.records) - 1; i >= 0 && len(recent) < limit; i-- {
		if s.records[i].Slug == slug {
			recent = append(recent, s.records[i])
		}
	}
	return recent, nil
}
