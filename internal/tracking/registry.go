package tracking

import "sync"

// IDRegistry hands out per-class track identities. IDs for a class start at
// 1, increase by one per claim and are never reused. Classes are
// independent of each other.
//
// The zero value is ready to use. An IDRegistry is safe for concurrent use.
type IDRegistry struct {
	mu   sync.Mutex
	last map[string]int
}

// NewIDRegistry returns an empty registry.
func NewIDRegistry() *IDRegistry {
	return &IDRegistry{last: make(map[string]int)}
}

// Next claims the next identity for className.
func (r *IDRegistry) Next(className string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		r.last = make(map[string]int)
	}
	r.last[className]++
	return r.last[className]
}

// Last returns the most recently claimed identity for className, or 0 if
// none has been claimed.
func (r *IDRegistry) Last(className string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last[className]
}

// Snapshot returns a copy of the last claimed identity per class.
func (r *IDRegistry) Snapshot() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]int, len(r.last))
	for k, v := range r.last {
		out[k] = v
	}
	return out
}

// Reset forgets every class, so the next claim for any class returns 1.
// Estimators created before the reset keep their identities.
func (r *IDRegistry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = make(map[string]int)
}
