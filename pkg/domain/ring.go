package domain

import "sort"

// BackupEntry is one retained snapshot copy, keyed by creation time. The key
// is time-prefixed, so lexicographic key order equals chronological order.
type BackupEntry struct {
	Key     string
	Payload []byte
}

// BackupRing is a bounded, key-ordered collection of serialized snapshot
// copies. When capacity is exceeded the entries with the lexicographically
// smallest (oldest) keys are evicted first.
type BackupRing struct {
	capacity int
	entries  []BackupEntry // sorted by key ascending
}

// NewBackupRing returns an empty ring holding at most capacity entries.
func NewBackupRing(capacity int) *BackupRing {
	if capacity <= 0 {
		capacity = BackupRingCapacity
	}
	return &BackupRing{capacity: capacity}
}

// Add inserts a payload copy under key and trims the ring, returning the keys
// evicted to stay within capacity. An existing key is overwritten in place.
func (r *BackupRing) Add(key string, payload []byte) []string {
	cp := append([]byte(nil), payload...)
	idx := sort.Search(len(r.entries), func(i int) bool { return r.entries[i].Key >= key })
	if idx < len(r.entries) && r.entries[idx].Key == key {
		r.entries[idx].Payload = cp
	} else {
		r.entries = append(r.entries, BackupEntry{})
		copy(r.entries[idx+1:], r.entries[idx:])
		r.entries[idx] = BackupEntry{Key: key, Payload: cp}
	}
	var evicted []string
	for len(r.entries) > r.capacity {
		evicted = append(evicted, r.entries[0].Key)
		r.entries = r.entries[1:]
	}
	return evicted
}

// Get returns a copy of the payload stored under key.
func (r *BackupRing) Get(key string) ([]byte, bool) {
	idx := sort.Search(len(r.entries), func(i int) bool { return r.entries[i].Key >= key })
	if idx < len(r.entries) && r.entries[idx].Key == key {
		return append([]byte(nil), r.entries[idx].Payload...), true
	}
	return nil, false
}

// Keys returns all retained keys, newest first.
func (r *BackupRing) Keys() []string {
	keys := make([]string, 0, len(r.entries))
	for i := len(r.entries) - 1; i >= 0; i-- {
		keys = append(keys, r.entries[i].Key)
	}
	return keys
}

// Entries returns copies of all retained entries, oldest first.
func (r *BackupRing) Entries() []BackupEntry {
	out := make([]BackupEntry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, BackupEntry{Key: e.Key, Payload: append([]byte(nil), e.Payload...)})
	}
	return out
}

// Len returns the number of retained entries.
func (r *BackupRing) Len() int { return len(r.entries) }
