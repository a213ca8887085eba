package core

import (
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 1000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}
}

// TestIDIsEmpty tests ID emptiness check
func TestIDIsEmpty(t *testing.T) {
	if !ID("").IsEmpty() {
		t.Error("Expected empty ID to be empty")
	}
	if ID("not-empty").IsEmpty() {
		t.Error("Expected non-empty ID to not be empty")
	}
}

func TestNewSessionIDNotEmpty(t *testing.T) {
	if NewSessionID().String() == "" {
		t.Error("Expected non-empty session ID")
	}
}

func TestNewHashIsStable(t *testing.T) {
	a := NewHash([]byte("ventas"))
	if !a.Equals(NewHash([]byte("ventas"))) {
		t.Error("Expected equal input to hash equally")
	}
	if a.Equals(NewHash([]byte("Ventas"))) {
		t.Error("Expected different input to hash differently")
	}
	if len(a.String()) != 64 || a.IsEmpty() {
		t.Errorf("Expected 64 hex characters, got %q", a)
	}
}
