package memory

import (
	"math"
	"time"

	"github.com/yndnr/minikv/pkg/cmap"
)

// DefaultShardCount keeps the whole keyspace behind one lock.
const DefaultShardCount = 1

// Store is the shared key-value store. A single *Store is created at
// startup and handed to every connection.
type Store struct {
	entries *cmap.Map[string, Entry]
	now     func() time.Time
	shards  int
}

// Option configures the Store.
type Option func(*Store)

// WithShards sets the number of lock shards. It must be a power of 2.
func WithShards(n int) Option {
	return func(s *Store) {
		s.shards = n
	}
}

// WithClock replaces the wall clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates a new in-memory store.
func New(opts ...Option) *Store {
	s := &Store{
		now:    time.Now,
		shards: DefaultShardCount,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.entries = cmap.NewWithShards[string, Entry](s.shards)
	return s
}

// NowMillis returns the store clock in Unix milliseconds.
func (s *Store) NowMillis() int64 {
	return s.now().UnixMilli()
}

// Set stores e under key, replacing any previous entry. It returns the
// previous value if the key held one, whether or not that entry had
// expired.
func (s *Store) Set(key string, e Entry) (string, bool) {
	prev, ok := s.entries.Swap(key, e)
	if !ok {
		return "", false
	}
	return prev.Value, true
}

// SetValue stores a value that never expires.
func (s *Store) SetValue(key, value string) (string, bool) {
	return s.Set(key, Plain(value))
}

// SetWithTTL stores a value that expires ttlMillis milliseconds from now.
// A negative TTL counts as zero and a deadline past the int64 range
// saturates.
func (s *Store) SetWithTTL(key, value string, ttlMillis int64) (string, bool) {
	return s.Set(key, WithExpiry(value, expiryAfter(s.NowMillis(), ttlMillis)))
}

func expiryAfter(nowMs, ttlMillis int64) int64 {
	if ttlMillis < 0 {
		ttlMillis = 0
	}
	if ttlMillis > math.MaxInt64-nowMs {
		return math.MaxInt64
	}
	return nowMs + ttlMillis
}

// Get returns the value stored under key if it exists and has not
// expired. Expired entries are reported as missing but left in place.
func (s *Store) Get(key string) (string, bool) {
	e, ok := s.entries.Get(key)
	if !ok {
		return "", false
	}
	if e.Expired(s.NowMillis()) {
		return "", false
	}
	return e.Value, true
}

// Len returns the number of stored entries, expired ones included.
func (s *Store) Len() int {
	return s.entries.Count()
}

// ShardCount returns the number of lock shards in use.
func (s *Store) ShardCount() int {
	return s.entries.ShardCount()
}
