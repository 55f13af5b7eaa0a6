package domain

import (
	"fmt"
	"testing"
)

func TestRingStaysWithinCapacity(t *testing.T) {
	ring := NewBackupRing(3)
	var lastEvicted []string
	for i := 0; i < 10; i++ {
		lastEvicted = ring.Add(fmt.Sprintf("%s%03d", BackupKeyPrefix, i), []byte("x"))
	}
	if ring.Len() != 3 {
		t.Fatalf("ring length = %d, want 3", ring.Len())
	}
	if len(lastEvicted) != 1 || lastEvicted[0] != BackupKeyPrefix+"006" {
		t.Fatalf("evicted = %v, want oldest key", lastEvicted)
	}
	keys := ring.Keys()
	if keys[0] != BackupKeyPrefix+"009" || keys[2] != BackupKeyPrefix+"007" {
		t.Fatalf("keys not newest first: %v", keys)
	}
}

func TestRingEvictsOldestFirst(t *testing.T) {
	ring := NewBackupRing(2)
	ring.Add("b", []byte("2"))
	ring.Add("c", []byte("3"))
	// Inserting an older key than everything retained evicts that same key.
	evicted := ring.Add("a", []byte("1"))
	if len(evicted) != 1 || evicted[0] != "a" {
		t.Fatalf("evicted = %v, want [a]", evicted)
	}
	if _, ok := ring.Get("a"); ok {
		t.Fatal("evicted key still retrievable")
	}
}

func TestRingOverwritesExistingKey(t *testing.T) {
	ring := NewBackupRing(3)
	ring.Add("k", []byte("old"))
	evicted := ring.Add("k", []byte("new"))
	if len(evicted) != 0 {
		t.Fatalf("overwrite evicted %v", evicted)
	}
	payload, ok := ring.Get("k")
	if !ok || string(payload) != "new" {
		t.Fatalf("Get(k) = %q, %v", payload, ok)
	}
	if ring.Len() != 1 {
		t.Fatalf("ring length = %d, want 1", ring.Len())
	}
}

func TestRingGetCopies(t *testing.T) {
	ring := NewBackupRing(2)
	ring.Add("k", []byte("abc"))
	payload, _ := ring.Get("k")
	payload[0] = 'z'
	again, _ := ring.Get("k")
	if string(again) != "abc" {
		t.Fatalf("stored payload mutated through Get: %q", again)
	}
}

func TestRingDefaultCapacity(t *testing.T) {
	ring := NewBackupRing(0)
	for i := 0; i < BackupRingCapacity+5; i++ {
		ring.Add(fmt.Sprintf("%s%03d", BackupKeyPrefix, i), nil)
	}
	if ring.Len() != BackupRingCapacity {
		t.Fatalf("ring length = %d, want %d", ring.Len(), BackupRingCapacity)
	}
}
