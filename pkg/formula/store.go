package formula

import (
	"fmt"
	"sort"
	"sync"

	"github.com/jcom-dev/zmanim/pkg/dsl"
)

// Store is a threadsafe catalog of formulas keyed by formula key.
type Store struct {
	mu       sync.RWMutex
	formulas map[string]*Formula
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{formulas: make(map[string]*Formula)}
}

// Add validates and inserts a formula. Re-adding a key replaces it.
func (s *Store) Add(f *Formula) error {
	if err := f.Validate(); err != nil {
		return fmt.Errorf("formula %q: %w", f.Key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.formulas[f.Key] = f
	return nil
}

// Get returns the formula for a key.
func (s *Store) Get(key string) (*Formula, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.formulas[key]
	return f, ok
}

// Len returns the number of formulas.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.formulas)
}

// Keys returns all formula keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.formulas))
	for key := range s.formulas {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// All returns the formulas in key order.
func (s *Store) All() []*Formula {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.formulas))
	for key := range s.formulas {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([]*Formula, 0, len(keys))
	for _, key := range keys {
		out = append(out, s.formulas[key])
	}
	return out
}

// Nodes parses every formula and returns the expressions by key. The first
// parse error aborts the walk.
func (s *Store) Nodes() (map[string]dsl.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	nodes := make(map[string]dsl.Node, len(s.formulas))
	for key, f := range s.formulas {
		node, err := f.AST()
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", key, err)
		}
		nodes[key] = node
	}
	return nodes, nil
}

// NodesFor parses only the named formulas.
func (s *Store) NodesFor(keys []string) (map[string]dsl.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	nodes := make(map[string]dsl.Node, len(keys))
	for _, key := range keys {
		f, ok := s.formulas[key]
		if !ok {
			return nil, fmt.Errorf("unknown formula: %s", key)
		}
		node, err := f.AST()
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", key, err)
		}
		nodes[key] = node
	}
	return nodes, nil
}
