package assembler

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/saviobatista/ais-logger/internal/ais"
)

// DefaultFragmentTTL bounds how long a partial message waits for its next fragment
const DefaultFragmentTTL = 10 * time.Second

// maxFragments is the largest fragment count an NMEA0183 sentence can announce
const maxFragments = 9

var (
	// ErrOrphanFragment is returned for a continuation fragment whose
	// predecessors were never seen or have expired.
	ErrOrphanFragment = errors.New("fragment without preceding fragments")
	// ErrInvalidFragment is returned when the fragment count or number is out of range.
	ErrInvalidFragment = errors.New("invalid fragment numbering")
)

type partial struct {
	count    int
	next     int
	payloads []string
}

// Fragments joins multi-sentence AIS messages. Fragments are grouped by
// source, talker, sequence id and channel and must arrive in order.
type Fragments struct {
	mu       sync.Mutex
	partials *cache.Cache
}

// NewFragments creates a joiner whose partial messages expire after ttl.
// Keys are bounded per source, so expired partials are overwritten in place
// and no janitor goroutine runs.
func NewFragments(ttl time.Duration) *Fragments {
	return &Fragments{partials: cache.New(ttl, 0)}
}

func fragmentKey(source string, env *ais.Envelope) string {
	return fmt.Sprintf("%s|%s|%s|%s|%d", source, env.Tag, env.SequenceID, env.Channel, env.FragmentCount)
}

// Add records one sentence envelope. Single-fragment envelopes are returned
// unchanged. For multipart messages Add returns nil until the last fragment
// arrives, then an envelope carrying the joined payload and the fill bits of
// the last fragment.
func (f *Fragments) Add(source string, env *ais.Envelope) (*ais.Envelope, error) {
	if !env.Multipart() {
		return env, nil
	}
	if env.FragmentCount > maxFragments || env.FragmentNumber < 1 || env.FragmentNumber > env.FragmentCount {
		return nil, fmt.Errorf("%w: fragment %d of %d", ErrInvalidFragment, env.FragmentNumber, env.FragmentCount)
	}

	key := fragmentKey(source, env)

	f.mu.Lock()
	defer f.mu.Unlock()

	// A first fragment always starts over, dropping any unfinished message
	// that reused the sequence id.
	if env.FragmentNumber == 1 {
		f.partials.SetDefault(key, &partial{
			count:    env.FragmentCount,
			next:     2,
			payloads: []string{env.Payload},
		})
		return nil, nil
	}

	v, found := f.partials.Get(key)
	if !found {
		return nil, fmt.Errorf("%w: fragment %d of %d, sequence %q", ErrOrphanFragment, env.FragmentNumber, env.FragmentCount, env.SequenceID)
	}
	p := v.(*partial)
	if env.FragmentNumber != p.next {
		f.partials.Delete(key)
		return nil, fmt.Errorf("%w: fragment %d of %d, expected %d", ErrOrphanFragment, env.FragmentNumber, env.FragmentCount, p.next)
	}

	p.payloads = append(p.payloads, env.Payload)
	p.next++
	if env.FragmentNumber < p.count {
		f.partials.SetDefault(key, p)
		return nil, nil
	}

	f.partials.Delete(key)
	joined := *env
	joined.FragmentCount = 1
	joined.FragmentNumber = 1
	joined.Payload = strings.Join(p.payloads, "")
	return &joined, nil
}

// Pending returns the number of unfinished messages, expired ones included
// until they are overwritten
func (f *Fragments) Pending() int {
	return f.partials.ItemCount()
}
