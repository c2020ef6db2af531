// Package modestore holds the process-local, block-scoped cell that tracks
// the current BlockWeightMode. It is the only mutable shared state in the
// controller: set lazily on the first hook invocation of a block, mutated in
// place by every subsequent hook, and reset when the block ends.
package modestore

import (
	"sync"

	"blockweight.dev/parachain/weight"
)

// Kind enumerates the three BlockWeightMode states.
type Kind int

const (
	// FractionOfCore is the default/steady state: the block may only consume
	// its fractional share of the core.
	FractionOfCore Kind = iota
	// PotentialFullCore is set during pre-dispatch when an extrinsic's
	// announced weight exceeds the fractional target; it resolves to either
	// FullCore or FractionOfCore on that same extrinsic's post-dispatch and
	// never survives beyond it.
	PotentialFullCore
	// FullCore is terminal within a block: once entered, no later transition
	// leaves it.
	FullCore
)

func (k Kind) String() string {
	switch k {
	case FractionOfCore:
		return "FractionOfCore"
	case PotentialFullCore:
		return "PotentialFullCore"
	case FullCore:
		return "FullCore"
	default:
		return "Unknown"
	}
}

// BlockWeightMode is the central sum type stored in the Store.
//
// FirstTransactionIndex is set exactly once, on the first non-inherent
// extrinsic, and preserved thereafter. TargetWeight is meaningful only when
// Kind == PotentialFullCore: the target that was exceeded to enter that mode.
type BlockWeightMode struct {
	Kind                  Kind
	FirstTransactionIndex *uint32
	TargetWeight          weight.Weight
}

// Store is a process-wide, per-block cell of Option<BlockWeightMode>. A nil
// current value represents None.
type Store struct {
	mu      sync.Mutex
	current *BlockWeightMode
}

// New returns an empty (None) store.
func New() *Store {
	return &Store{}
}

// Get returns the current mode and whether one is set.
func (s *Store) Get() (BlockWeightMode, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return BlockWeightMode{}, false
	}
	return *s.current, true
}

// Put unconditionally sets the current mode.
func (s *Store) Put(m BlockWeightMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := m
	s.current = &cp
}

// Reset discards the current mode, modeling end-of-block cleanup.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
}

// GetOrInit returns the current mode, initializing it to def first if none is
// set yet.
func (s *Store) GetOrInit(def BlockWeightMode) BlockWeightMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		cp := def
		s.current = &cp
	}
	return *s.current
}

// Mutate runs f against the current mode (the zero value and present=false if
// unset) and stores whatever f returns as the new current mode. It reports
// whether a value was present on entry, which PreValidate uses to detect the
// "PotentialFullCore observed at entry" bug condition.
func (s *Store) Mutate(f func(cur BlockWeightMode, present bool) BlockWeightMode) BlockWeightMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	var cur BlockWeightMode
	present := s.current != nil
	if present {
		cur = *s.current
	}
	next := f(cur, present)
	s.current = &next
	return next
}
