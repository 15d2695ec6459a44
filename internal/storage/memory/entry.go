package memory

// Entry is the value stored under a key.
//
// ExpiresAt is an absolute deadline in Unix milliseconds. Zero means the
// entry never expires.
type Entry struct {
	Value     string
	ExpiresAt int64
}

// Plain returns an entry that never expires.
func Plain(value string) Entry {
	return Entry{Value: value}
}

// WithExpiry returns an entry that is live while the clock reads less than
// expiresAtMs.
func WithExpiry(value string, expiresAtMs int64) Entry {
	return Entry{Value: value, ExpiresAt: expiresAtMs}
}

// HasExpiry reports whether the entry carries a deadline.
func (e Entry) HasExpiry() bool {
	return e.ExpiresAt != 0
}

// Expired reports whether the entry is past its deadline at nowMs.
func (e Entry) Expired(nowMs int64) bool {
	return e.HasExpiry() && nowMs >= e.ExpiresAt
}
