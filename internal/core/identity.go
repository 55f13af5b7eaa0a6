// Package core implements the state & synchronization engine: the service
// owning the canonical snapshot, its mutators and cross-list sync rules, the
// query engine, and the staged snapshot exchange workflow.
package core

import (
	"crypto/rand"
	"strconv"
	"time"

	"homestock/pkg/domain"
)

const idSuffixLen = 8

var base36 = []byte("0123456789abcdefghijklmnopqrstuvwxyz")

// NewID returns an identifier unique among all IDs generated on this device
// with overwhelming probability: base36 epoch milliseconds plus a random
// base36 suffix. The time prefix keeps ids roughly sortable. Collisions are
// treated as practically impossible, not defended against.
func NewID() string {
	var b [idSuffixLen]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	for i := range b {
		b[i] = base36[int(b[i])%len(base36)]
	}
	return strconv.FormatInt(time.Now().UnixMilli(), 36) + "-" + string(b[:])
}

// NowISO returns the current wall-clock time as an ISO-8601 string with
// millisecond precision, UTC-normalized.
func NowISO() string {
	return domain.FormatISO(time.Now())
}

// FormatDisplayDate renders an ISO timestamp as "2006/01/02 15:04" in local
// time for presentation. Unparseable input renders empty.
func FormatDisplayDate(iso string) string {
	if iso == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return ""
	}
	return t.Local().Format("2006/01/02 15:04")
}
