// Package kvstorage implements an in-process key-value store with per-key
// TTL expiration, lexicographically ordered range scans and explicit
// expiry reclamation.
//
// Three views of one record set are kept mutually consistent on every
// mutation: a primary map for O(1) lookup, a key-ordered index for range
// scans and an expiry-ordered index for reclamation. Reads treat expired
// records as absent without removing them; RemoveOneExpiredEntry is the
// only path that reclaims them.
package kvstorage

import (
	"fmt"
	"time"

	"github.com/dokzlo13/tempokv/clock"
	"github.com/dokzlo13/tempokv/internal/skiplist"
)

// Item is one input record for bulk construction.
type Item struct {
	Key   string
	Value string
	TTL   uint32 // Seconds until expiry; zero means the record never expires
}

// Entry is a key/value pair returned by queries.
type Entry struct {
	Key   string
	Value string
}

// deadline is one expiry-index element. Ordering considers the timestamp
// only, so records sharing an expiry instant coexist; their relative order
// is unspecified.
type deadline struct {
	at  time.Time
	key string
}

// record is the stored form of a value plus the node handles needed to
// unlink it from both auxiliary indices without searching them again.
type record struct {
	value     string
	expiresAt time.Time // Zero value means no expiry

	orderNode  *skiplist.Node[string]
	expiryNode *skiplist.Node[deadline] // nil iff expiresAt is zero
}

// expired reports whether the record is dead at the given instant. The
// boundary is inclusive: a record whose deadline equals now is expired.
func (r *record) expired(now time.Time) bool {
	if r.expiresAt.IsZero() {
		return false
	}
	return !r.expiresAt.After(now)
}

// Storage is an indexed TTL store. It is not safe for concurrent use;
// wrap it in Guarded when several goroutines share one instance.
type Storage struct {
	clk clock.Clock

	records map[string]*record
	order   *skiplist.List[string]
	expiry  *skiplist.List[deadline]
}

// New builds a store from the given items. The TTL countdown of every item
// starts at a single instant captured once here, so two items with equal
// TTLs expire together regardless of their position in the slice.
// Duplicate keys are allowed; the last occurrence wins.
func New(items []Item, clk clock.Clock) *Storage {
	s := &Storage{
		clk:     clk,
		records: make(map[string]*record, len(items)),
		order: skiplist.New[string](func(a, b string) bool {
			return a < b
		}),
		expiry: skiplist.New[deadline](func(a, b deadline) bool {
			return a.at.Before(b.at)
		}),
	}

	now := clk.Now()
	for _, it := range items {
		s.setAt(it.Key, it.Value, it.TTL, now)
	}

	return s
}

// Set assigns value to key and unconditionally recomputes its expiry from
// ttl against the current clock reading. ttl is a number of seconds; zero
// means the record never expires. A previously set TTL is never carried
// over.
func (s *Storage) Set(key, value string, ttl uint32) {
	s.setAt(key, value, ttl, s.clk.Now())
}

// Get returns the live value stored under key. A record whose expiry has
// passed is reported as absent, but stays in the indices until reclaimed.
func (s *Storage) Get(key string) (string, bool) {
	rec, ok := s.records[key]
	if !ok || rec.expired(s.clk.Now()) {
		return "", false
	}
	return rec.value, true
}

// Remove deletes key from all three indices and reports whether a record
// existed, expired or not. Unlinking goes through the node handles cached
// at insertion time, so neither auxiliary index is searched again.
func (s *Storage) Remove(key string) bool {
	rec, ok := s.records[key]
	if !ok {
		return false
	}

	s.order.Remove(rec.orderNode)
	if rec.expiryNode != nil {
		s.expiry.Remove(rec.expiryNode)
	}
	delete(s.records, key)

	return true
}

// GetManySorted returns up to count live entries whose keys are greater
// than or equal to from, in ascending lexicographic order. Expired records
// are skipped and do not count toward count; scanning continues past them.
func (s *Storage) GetManySorted(from string, count uint32) []Entry {
	// Cap the reservation: count is caller-controlled and may far exceed
	// what the store holds.
	reserve := int(count)
	if reserve > s.order.Len() {
		reserve = s.order.Len()
	}
	result := make([]Entry, 0, reserve)
	now := s.clk.Now()

	for n := s.order.Seek(from); n != nil && uint32(len(result)) < count; n = n.Next() {
		rec := s.records[n.Value]
		if rec.expired(now) {
			continue
		}
		result = append(result, Entry{Key: n.Value, Value: rec.value})
	}

	return result
}

// RemoveOneExpiredEntry reclaims one record whose expiry has passed and
// returns it. It reports false when no record has expired yet. When
// several records expired simultaneously, which one is reclaimed first is
// unspecified.
func (s *Storage) RemoveOneExpiredEntry() (Entry, bool) {
	n := s.expiry.Front()
	if n == nil || n.Value.at.After(s.clk.Now()) {
		return Entry{}, false
	}

	key := n.Value.key
	rec := s.records[key]

	s.order.Remove(rec.orderNode)
	s.expiry.Remove(n)
	delete(s.records, key)

	return Entry{Key: key, Value: rec.value}, true
}

// Len returns the number of records physically present, including expired
// ones that have not been reclaimed yet.
func (s *Storage) Len() int {
	return len(s.records)
}

// setAt performs the insert-or-overwrite against a fixed timestamp. On
// overwrite the stale expiry-index node is removed before the new one is
// inserted; the order index is untouched since the key does not change.
func (s *Storage) setAt(key, value string, ttl uint32, now time.Time) {
	var expiresAt time.Time
	if ttl != 0 {
		expiresAt = now.Add(time.Duration(ttl) * time.Second)
	}

	if rec, ok := s.records[key]; ok {
		rec.value = value
		if rec.expiryNode != nil {
			s.expiry.Remove(rec.expiryNode)
			rec.expiryNode = nil
		}
		rec.expiresAt = expiresAt
		if !expiresAt.IsZero() {
			rec.expiryNode = s.expiry.Insert(deadline{at: expiresAt, key: key})
		}
		return
	}

	rec := &record{value: value, expiresAt: expiresAt}
	s.records[key] = rec
	rec.orderNode = s.order.Insert(key)
	if !expiresAt.IsZero() {
		rec.expiryNode = s.expiry.Insert(deadline{at: expiresAt, key: key})
	}
}

// invariants cross-checks the three indices against each other. Violations
// are programming errors, not runtime conditions; tests run this after
// every mutation.
func (s *Storage) invariants() error {
	if s.order.Len() != len(s.records) {
		return fmt.Errorf("order index holds %d keys, primary holds %d", s.order.Len(), len(s.records))
	}

	prev := ""
	first := true
	for n := s.order.Front(); n != nil; n = n.Next() {
		if !first && n.Value <= prev {
			return fmt.Errorf("order index not strictly ascending at %q", n.Value)
		}
		prev, first = n.Value, false

		rec, ok := s.records[n.Value]
		if !ok {
			return fmt.Errorf("order index key %q missing from primary index", n.Value)
		}
		if rec.orderNode != n {
			return fmt.Errorf("stale order handle for key %q", n.Value)
		}
	}

	expiring := 0
	for key, rec := range s.records {
		if rec.expiresAt.IsZero() != (rec.expiryNode == nil) {
			return fmt.Errorf("key %q: expiry node presence disagrees with expiry", key)
		}
		if rec.expiryNode != nil {
			expiring++
			if rec.expiryNode.Value.key != key {
				return fmt.Errorf("key %q: expiry node points at %q", key, rec.expiryNode.Value.key)
			}
			if !rec.expiryNode.Value.at.Equal(rec.expiresAt) {
				return fmt.Errorf("key %q: expiry node timestamp mismatch", key)
			}
		}
	}
	if s.expiry.Len() != expiring {
		return fmt.Errorf("expiry index holds %d entries, primary expects %d", s.expiry.Len(), expiring)
	}

	var prevAt time.Time
	for n := s.expiry.Front(); n != nil; n = n.Next() {
		if n.Value.at.Before(prevAt) {
			return fmt.Errorf("expiry index not ascending at key %q", n.Value.key)
		}
		prevAt = n.Value.at
		if _, ok := s.records[n.Value.key]; !ok {
			return fmt.Errorf("expiry index key %q missing from primary index", n.Value.key)
		}
	}

	return nil
}
