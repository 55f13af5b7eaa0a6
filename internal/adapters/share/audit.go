package share

import (
	"context"
	"sync"
	"time"
)

// AuditEntry captures one audit trail event for a share delivery.
type AuditEntry struct {
	ID         string         `json:"id"`
	Action     string         `json:"action"`
	Actor      string         `json:"actor"`
	FileName   string         `json:"file_name"`
	Status     DeliveryStatus `json:"status"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// AuditLogger records share audit entries.
type AuditLogger interface {
	Record(ctx context.Context, entry AuditEntry)
}

// MemoryAuditLogger keeps entries in memory, oldest first.
type MemoryAuditLogger struct {
	mu      sync.Mutex
	entries []AuditEntry
}

// NewMemoryAuditLogger returns an empty in-memory audit logger.
func NewMemoryAuditLogger() *MemoryAuditLogger { return &MemoryAuditLogger{} }

// Record appends an entry.
func (l *MemoryAuditLogger) Record(_ context.Context, entry AuditEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
}

// Entries returns a copy of the recorded entries.
func (l *MemoryAuditLogger) Entries() []AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]AuditEntry(nil), l.entries...)
}
