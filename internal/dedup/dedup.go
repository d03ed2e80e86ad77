package dedup

import (
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/saviobatista/ais-logger/internal/ais"
)

// Filter drops repeats of a payload heard again within a short window. The
// same AIS payload heard by several receivers, or on both radio channels, is
// only kept once, while a vessel that keeps sending identical reports is
// still recorded once per window.
type Filter struct {
	mu     sync.Mutex
	seen   *lru.Cache
	window time.Duration
}

// New creates a filter remembering up to size payloads for window
func New(size int, window time.Duration) (*Filter, error) {
	if window <= 0 {
		return nil, fmt.Errorf("invalid dedup window: %v", window)
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create dedup cache: %w", err)
	}
	return &Filter{seen: cache, window: window}, nil
}

// Seen reports whether raw was already recorded within the window around at.
// Otherwise it records raw as heard at and returns false.
func (f *Filter) Seen(raw string, at time.Time) bool {
	key := Key(raw)

	f.mu.Lock()
	defer f.mu.Unlock()

	if v, ok := f.seen.Get(key); ok {
		elapsed := at.Sub(v.(time.Time))
		if elapsed < 0 {
			elapsed = -elapsed
		}
		if elapsed <= f.window {
			return true
		}
	}
	f.seen.Add(key, at)
	return false
}

// Len returns the number of remembered payloads
func (f *Filter) Len() int {
	return f.seen.Len()
}

// Key hashes the armored payload and fill bits of a sentence. Sentences
// without a parsable envelope are hashed whole.
func Key(raw string) uint64 {
	h := fnv.New64a()
	if env, err := ais.ParseEnvelope(raw); err == nil {
		fmt.Fprintf(h, "%d/%d,%s,%d", env.FragmentNumber, env.FragmentCount, env.Payload, env.FillBits)
	} else {
		h.Write([]byte(raw))
	}
	return h.Sum64()
}
