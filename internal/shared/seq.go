package shared

import "sync"

// SeqGuard hands out monotonic sequence numbers per key and rejects
// results from superseded requests. Balance lookups issued for the same
// property can overlap; only the latest issued request may publish its
// result.
type SeqGuard struct {
	mu     sync.Mutex
	latest map[string]uint64
}

// NewSeqGuard constructs a SeqGuard.
func NewSeqGuard() *SeqGuard {
	return &SeqGuard{latest: make(map[string]uint64)}
}

// Begin registers a new request for key and returns its sequence number.
func (g *SeqGuard) Begin(key string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.latest[key]++
	return g.latest[key]
}

// Commit reports whether the request with sequence seq is still the
// latest issued for key. A false return means the caller must discard
// its result.
func (g *SeqGuard) Commit(key string, seq uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.latest[key] == seq
}
