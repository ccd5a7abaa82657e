package kvstorage

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"testing"
	"time"

	"github.com/dokzlo13/tempokv/clock"
)

type modelRecord struct {
	value     string
	expiresAt time.Time
}

// TestRandomizedAgainstModel drives the store and a naive map model with
// the same random operation stream, advancing a manual clock along the
// way, and asserts the cross-index invariants after every step.
func TestRandomizedAgainstModel(t *testing.T) {
	clk := clock.NewManual(testStart)
	s := New(nil, clk)
	model := make(map[string]modelRecord)

	rnd := rand.New(rand.NewPCG(1, 2))
	keys := make([]string, 50)
	for i := range keys {
		keys[i] = fmt.Sprintf("key%02d", i)
	}

	live := func(r modelRecord) bool {
		return r.expiresAt.IsZero() || r.expiresAt.After(clk.Now())
	}

	for step := 0; step < 5000; step++ {
		switch rnd.IntN(7) {
		case 0, 1: // Set
			k := keys[rnd.IntN(len(keys))]
			v := fmt.Sprintf("v%d", step)
			ttl := uint32(rnd.IntN(4))
			s.Set(k, v, ttl)

			var exp time.Time
			if ttl != 0 {
				exp = clk.Now().Add(time.Duration(ttl) * time.Second)
			}
			model[k] = modelRecord{value: v, expiresAt: exp}

		case 2: // Get
			k := keys[rnd.IntN(len(keys))]
			v, ok := s.Get(k)
			r, exists := model[k]
			wantOK := exists && live(r)
			if ok != wantOK {
				t.Fatalf("step %d: Get(%q) ok = %v, want %v", step, k, ok, wantOK)
			}
			if ok && v != r.value {
				t.Fatalf("step %d: Get(%q) = %q, want %q", step, k, v, r.value)
			}

		case 3: // Remove
			k := keys[rnd.IntN(len(keys))]
			_, exists := model[k]
			if got := s.Remove(k); got != exists {
				t.Fatalf("step %d: Remove(%q) = %v, want %v", step, k, got, exists)
			}
			delete(model, k)

		case 4: // GetManySorted
			from := keys[rnd.IntN(len(keys))]
			count := uint32(rnd.IntN(10))
			got := s.GetManySorted(from, count)

			var want []string
			for k, r := range model {
				if k >= from && live(r) {
					want = append(want, k)
				}
			}
			sort.Strings(want)
			if len(want) > int(count) {
				want = want[:count]
			}

			if len(got) != len(want) {
				t.Fatalf("step %d: GetManySorted(%q, %d) returned %d entries, want %d",
					step, from, count, len(got), len(want))
			}
			for i := range want {
				if got[i].Key != want[i] || got[i].Value != model[want[i]].value {
					t.Fatalf("step %d: result %d = %v, want key %q", step, i, got[i], want[i])
				}
			}

		case 5: // RemoveOneExpiredEntry
			e, ok := s.RemoveOneExpiredEntry()
			if ok {
				r, exists := model[e.Key]
				if !exists {
					t.Fatalf("step %d: reclaimed unknown key %q", step, e.Key)
				}
				if live(r) {
					t.Fatalf("step %d: reclaimed live key %q", step, e.Key)
				}
				if e.Value != r.value {
					t.Fatalf("step %d: reclaimed %q with value %q, want %q", step, e.Key, e.Value, r.value)
				}
				delete(model, e.Key)
			} else {
				for k, r := range model {
					if !live(r) {
						t.Fatalf("step %d: %q is expired but reclamation found nothing", step, k)
					}
				}
			}

		case 6: // advance time
			clk.Advance(time.Duration(rnd.IntN(1500)) * time.Millisecond)
		}

		if err := s.invariants(); err != nil {
			t.Fatalf("step %d: invariants violated: %v", step, err)
		}
	}
}

func benchmarkStorage(n int) (*Storage, []string) {
	items := make([]Item, n)
	keys := make([]string, n)
	for i := 0; i < n; i++ {
		keys[i] = fmt.Sprintf("key%06d", i)
		items[i] = Item{Key: keys[i], Value: fmt.Sprintf("value%06d", i)}
	}
	return New(items, clock.System{}), keys
}

func BenchmarkGet(b *testing.B) {
	s, keys := benchmarkStorage(1_000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Get(keys[i%len(keys)])
	}
}

func BenchmarkSet(b *testing.B) {
	s, keys := benchmarkStorage(1_000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Set(keys[i%len(keys)], "updated", uint32(i%60))
	}
}

func BenchmarkGetManySorted(b *testing.B) {
	s, keys := benchmarkStorage(1_000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.GetManySorted(keys[(i*100)%len(keys)], 100)
	}
}

func BenchmarkMixedWorkload(b *testing.B) {
	s, keys := benchmarkStorage(10_000)
	rnd := rand.New(rand.NewPCG(3, 5))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		k := keys[rnd.IntN(len(keys))]
		switch rnd.IntN(4) {
		case 0:
			s.Set(k, "mixed", uint32(rnd.IntN(120)))
		case 1:
			s.Remove(k)
		case 2:
			s.GetManySorted(k, 10)
		default:
			s.Get(k)
		}
	}
}
