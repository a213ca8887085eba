// Package session holds the per-user working state between requests.
package session

import (
	"sync"
	"time"

	"gotally/domain/core"
	"gotally/domain/dataset"
	"gotally/domain/selection"
)

// Session owns the working dataset and the in-progress field selection.
// All access goes through the mutex. Tables handed out by Dataset are never
// mutated afterwards; Update swaps in a modified copy.
type Session struct {
	ID        core.SessionID
	CreatedAt time.Time

	mu        sync.Mutex
	table     *dataset.Table
	selection *selection.Set
}

// New creates an empty session
func New() *Session {
	return &Session{
		ID:        core.NewSessionID(),
		CreatedAt: time.Now().UTC(),
	}
}

// SetDataset replaces the working dataset wholesale
func (s *Session) SetDataset(t *dataset.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table = t
}

// Dataset returns the working dataset, if one is loaded
func (s *Session) Dataset() (*dataset.Table, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table, s.table != nil
}

// Filename returns the name of the loaded file, or ""
func (s *Session) Filename() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.table == nil {
		return ""
	}
	return s.table.Source.Filename
}

// Update runs fn against a copy of the working dataset while holding the
// lock and makes the copy current when fn succeeds. It returns
// core.ErrNoDataset when nothing is loaded.
func (s *Session) Update(fn func(t *dataset.Table) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.table == nil {
		return core.ErrNoDataset
	}
	next := s.table.Clone()
	if err := fn(next); err != nil {
		return err
	}
	s.table = next
	return nil
}

// SetSelection records the selection currently being edited
func (s *Session) SetSelection(set selection.Set) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = &set
}

// Selection returns the selection being edited, if any
func (s *Session) Selection() (selection.Set, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selection == nil {
		return selection.Set{}, false
	}
	return *s.selection, true
}

// ClearSelection forgets the selection being edited
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = nil
}

// Reset drops all working state
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table = nil
	s.selection = nil
}
