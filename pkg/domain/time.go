package domain

import "time"

// ISOMillisLayout is the timestamp form used everywhere in snapshots:
// ISO-8601 with millisecond precision, UTC-normalized. Lexicographic
// comparison of such strings is chronological comparison.
const ISOMillisLayout = "2006-01-02T15:04:05.000Z"

// FormatISO renders t in the snapshot timestamp form.
func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOMillisLayout)
}

// ISOFromUnixMilli converts epoch milliseconds to the snapshot timestamp
// form. Used to derive backup creation times from time-keyed slots.
func ISOFromUnixMilli(ms int64) string {
	return FormatISO(time.UnixMilli(ms))
}
