package gc

import "golang.org/x/exp/maps"

// Interner canonicalizes values keyed by their byte content so that two
// equal-content strings share one object, giving O(1) identity comparison
// and hashing (spec.md §4.5). Its entries are deliberately not GC roots:
// the collector prunes an entry by calling Remove once the object it names
// has been swept, so the interner never keeps a freed string's key alive.
type Interner[T any] struct {
	table map[string]T
}

// NewInterner returns an empty Interner.
func NewInterner[T any]() *Interner[T] {
	return &Interner[T]{table: make(map[string]T)}
}

// Intern returns the canonical value for s, calling make to allocate one
// the first time s is seen.
func (in *Interner[T]) Intern(s string, make func(string) T) T {
	if v, ok := in.table[s]; ok {
		return v
	}
	v := make(s)
	in.table[s] = v
	return v
}

// Remove drops the entry for s, if any. The collector calls this for every
// ObjString it sweeps (spec.md §4.5 "during sweep, any string not marked is
// both freed and removed from the interner").
func (in *Interner[T]) Remove(s string) {
	delete(in.table, s)
}

// Len reports the number of interned entries, for diagnostics and tests.
func (in *Interner[T]) Len() int { return len(in.table) }

// Keys returns the byte contents currently interned, for diagnostics and
// tests (e.g. asserting the interner is empty after a full sweep).
func (in *Interner[T]) Keys() []string { return maps.Keys(in.table) }
