package spark

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the configured sparks. Safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	sparks map[string]Spark
}

// NewRegistry validates and indexes sparks.
//
// Parameters:
//   - sparks: Definitions, usually from config.yaml
//
// Returns:
//   - *Registry: Registry holding every spark
//   - error: The first invalid or duplicated spark
func NewRegistry(sparks []Spark) (*Registry, error) {
	r := &Registry{sparks: make(map[string]Spark, len(sparks))}
	for _, s := range sparks {
		if err := r.Add(s); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Add validates and registers a spark. An empty Title defaults to the ID.
func (r *Registry) Add(s Spark) error {
	if err := ValidateSpark(s); err != nil {
		return err
	}
	if s.Title == "" {
		s.Title = s.ID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sparks[s.ID]; exists {
		return fmt.Errorf("%w: %s", ErrSparkExists, s.ID)
	}
	r.sparks[s.ID] = s
	return nil
}

// Get returns the spark with the given ID.
func (r *Registry) Get(id string) (Spark, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sparks[id]
	if !ok {
		return Spark{}, ErrSparkNotFound
	}
	return s, nil
}

// List returns every spark ordered by ID.
func (r *Registry) List() []Spark {
	r.mu.RLock()
	out := make([]Spark, 0, len(r.sparks))
	for _, s := range r.sparks {
		out = append(out, s)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Count returns the number of sparks.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sparks)
}
