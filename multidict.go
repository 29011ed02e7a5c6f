// Package multidict implements an ordered multi-valued map: an associative
// container in which a single key may be bound to several values, and in
// which global insertion order across all entries is preserved and
// observable during iteration. It is intended for collections where
// duplicate keys are legal and order carries meaning, such as HTTP header
// collections (repeated Set-Cookie headers) and URL query parameters.
//
// A MultiDict is a plain in-memory value and is not safe for concurrent
// mutation; callers sharing one across goroutines must supply their own
// synchronization.
package multidict

import (
	"fmt"
	"iter"
	"slices"
	"strings"
)

// Pair is a single (key, value) binding.
type Pair[K comparable, V any] struct {
	Key   K
	Value V
}

type entry[K comparable, V any] struct {
	key   K
	value V
}

// MultiDict is an insertion-ordered map that can contain 1 or more values
// for each key.
//
// Entries live in a single ordered slice which is the source of truth for
// iteration; an auxiliary index maps each folded key to the ascending
// positions of its occurrences, so key lookups avoid a linear scan. Removal
// compacts the entry slice and renumbers the index rather than leaving
// tombstones, keeping Len and iteration trivial at the cost of an O(n)
// shift per removal.
type MultiDict[K comparable, V any] struct {
	entries []entry[K, V]
	index   occurrenceIndex[K]
	fold    Fold[K]
}

// New initializes a new empty MultiDict with exact key equality.
func New[K comparable, V any]() *MultiDict[K, V] {
	return &MultiDict[K, V]{index: occurrenceIndex[K]{}}
}

// NewWithCap initializes with the provided capacity for the entry storage
// and the index.
func NewWithCap[K comparable, V any](capacity uint32) *MultiDict[K, V] {
	return &MultiDict[K, V]{
		entries: make([]entry[K, V], 0, capacity),
		index:   make(occurrenceIndex[K], capacity),
	}
}

// NewFolded initializes a new empty MultiDict whose keys are compared under
// the given folding policy. The policy is fixed for the life of the dict.
func NewFolded[K comparable, V any](fold Fold[K]) *MultiDict[K, V] {
	return &MultiDict[K, V]{index: occurrenceIndex[K]{}, fold: fold}
}

// FromPairs initializes a MultiDict holding the given pairs; the order of
// the input becomes the initial insertion order.
func FromPairs[K comparable, V any](pairs []Pair[K, V]) *MultiDict[K, V] {
	md := NewWithCap[K, V](uint32(len(pairs)))
	md.Extend(pairs)
	return md
}

// FromPairsFolded is FromPairs with a folding policy.
func FromPairsFolded[K comparable, V any](fold Fold[K], pairs []Pair[K, V]) *MultiDict[K, V] {
	md := NewFolded[K, V](fold)
	md.Extend(pairs)
	return md
}

func (md *MultiDict[K, V]) foldKey(key K) K {
	if md.fold == nil {
		return key
	}
	return md.fold(key)
}

// Add binds value to key at the end of the insertion order.
//
// If there exist existing bindings for the key, the value is appended as an
// additional binding *without comparison*; Add never overwrites. This is
// the defining multi-map behavior.
func (md *MultiDict[K, V]) Add(key K, value V) {
	md.entries = append(md.entries, entry[K, V]{key: key, value: value})
	md.index.record(md.foldKey(key), len(md.entries)-1)
}

// Set replaces every existing binding for key with a single binding holding
// value. The new binding is appended at the end of the insertion order; a
// key with no prior bindings behaves exactly like Add. Other keys are
// unaffected.
func (md *MultiDict[K, V]) Set(key K, value V) {
	md.PopAll(key)
	md.Add(key, value)
}

// Get returns the value of the first occurrence of key in insertion order
// and whether the key existed. Later duplicates are a normal state and are
// deliberately ignored here; use GetAll to see them.
func (md *MultiDict[K, V]) Get(key K) (V, bool) {
	pos, ok := md.index.first(md.foldKey(key))
	if !ok {
		var zero V
		return zero, false
	}
	return md.entries[pos].value, true
}

// GetAll returns the values of every occurrence of key in insertion order.
//
// If the key does not exist, an empty slice is returned.
func (md *MultiDict[K, V]) GetAll(key K) []V {
	positions := md.index[md.foldKey(key)]
	values := make([]V, 0, len(positions))
	for _, pos := range positions {
		values = append(values, md.entries[pos].value)
	}
	return values
}

// PopOne removes only the first occurrence of key and returns its value.
// Remaining occurrences stay in place and the next one becomes the new
// first for future lookups.
func (md *MultiDict[K, V]) PopOne(key K) (V, bool) {
	folded := md.foldKey(key)
	pos, ok := md.index.first(folded)
	if !ok {
		var zero V
		return zero, false
	}
	value := md.entries[pos].value
	md.entries = slices.Delete(md.entries, pos, pos+1)
	md.index.unrecord(folded, pos)
	md.index.shiftAfter(pos)
	return value, true
}

// PopAll removes every occurrence of key and returns the removed values in
// insertion order. If the key does not exist, an empty slice is returned.
func (md *MultiDict[K, V]) PopAll(key K) []V {
	folded := md.foldKey(key)
	positions, ok := md.index[folded]
	if !ok {
		return []V{}
	}
	values := make([]V, 0, len(positions))
	for _, pos := range positions {
		values = append(values, md.entries[pos].value)
	}
	md.entries = slices.DeleteFunc(md.entries, func(e entry[K, V]) bool {
		return md.foldKey(e.key) == folded
	})
	md.rebuildIndex()
	return values
}

// Update overwrites the value of every existing binding for key in place,
// preserving each binding's position and stored key casing. It reports
// whether any binding matched; an absent key is left untouched and nothing
// is inserted.
func (md *MultiDict[K, V]) Update(key K, value V) bool {
	positions := md.index[md.foldKey(key)]
	for _, pos := range positions {
		md.entries[pos].value = value
	}
	return len(positions) > 0
}

// Has returns true if the key has at least one binding.
func (md *MultiDict[K, V]) Has(key K) bool {
	_, ok := md.index[md.foldKey(key)]
	return ok
}

// Len returns the number of entries, counting every occurrence rather than
// distinct keys.
func (md *MultiDict[K, V]) Len() int { return len(md.entries) }

// IsEmpty returns true if the dict currently holds no entries.
func (md *MultiDict[K, V]) IsEmpty() bool { return len(md.entries) == 0 }

// Items returns a lazy, restartable sequence of (key, value) pairs in
// insertion order; duplicate keys appear once per occurrence. The sequence
// reads the dict as of the time iteration starts and must not be consumed
// across mutations.
func (md *MultiDict[K, V]) Items() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, e := range md.entries {
			if !yield(e.key, e.value) {
				return
			}
		}
	}
}

// Keys returns a lazy sequence of keys in insertion order, one per
// occurrence.
func (md *MultiDict[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for _, e := range md.entries {
			if !yield(e.key) {
				return
			}
		}
	}
}

// Values returns a lazy sequence of values in insertion order.
func (md *MultiDict[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, e := range md.entries {
			if !yield(e.value) {
				return
			}
		}
	}
}

// KeysSlice returns the keys in insertion order, one per occurrence.
func (md *MultiDict[K, V]) KeysSlice() []K {
	keys := make([]K, len(md.entries))
	for i, e := range md.entries {
		keys[i] = e.key
	}
	return keys
}

// ValuesSlice returns all values in insertion order.
func (md *MultiDict[K, V]) ValuesSlice() []V {
	values := make([]V, len(md.entries))
	for i, e := range md.entries {
		values[i] = e.value
	}
	return values
}

// Pairs returns every (key, value) binding in insertion order.
func (md *MultiDict[K, V]) Pairs() []Pair[K, V] {
	pairs := make([]Pair[K, V], len(md.entries))
	for i, e := range md.entries {
		pairs[i] = Pair[K, V]{Key: e.key, Value: e.value}
	}
	return pairs
}

// Extend appends every given pair in order with Add semantics; existing
// bindings are never overwritten.
func (md *MultiDict[K, V]) Extend(pairs []Pair[K, V]) {
	for _, p := range pairs {
		md.Add(p.Key, p.Value)
	}
}

// ExtendDict appends every entry of other, in other's insertion order, with
// Add semantics. The entries are folded under md's own policy, which may
// merge keys that other kept distinct.
func (md *MultiDict[K, V]) ExtendDict(other *MultiDict[K, V]) {
	for _, e := range other.entries {
		md.Add(e.key, e.value)
	}
}

// Clear removes all entries.
func (md *MultiDict[K, V]) Clear() {
	md.entries = nil
	md.index = occurrenceIndex[K]{}
}

// Clone returns a clone of the dict sharing no storage with the original.
func (md *MultiDict[K, V]) Clone() *MultiDict[K, V] {
	return &MultiDict[K, V]{
		entries: slices.Clone(md.entries),
		index:   md.index.clone(),
		fold:    md.fold,
	}
}

// String renders the dict as `MultiDict < "k":"v", ... >` in insertion
// order.
func (md *MultiDict[K, V]) String() string {
	var b strings.Builder
	b.WriteString("MultiDict < ")
	for i, e := range md.entries {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, `"%v":"%v"`, e.key, e.value)
	}
	b.WriteString(" >")
	return b.String()
}

func (md *MultiDict[K, V]) rebuildIndex() {
	md.index = make(occurrenceIndex[K], len(md.index))
	for pos, e := range md.entries {
		md.index.record(md.foldKey(e.key), pos)
	}
}

// Equal reports whether a and b hold the same multiset of (key, value)
// bindings with keys compared under a's folding policy. Insertion order is
// deliberately not part of this equality; see EqualOrdered for the stricter
// variant. The two dicts are expected to share a folding policy.
func Equal[K comparable, V comparable](a, b *MultiDict[K, V]) bool {
	if len(a.entries) != len(b.entries) {
		return false
	}
	counts := make(map[Pair[K, V]]int, len(a.entries))
	for _, e := range a.entries {
		counts[Pair[K, V]{Key: a.foldKey(e.key), Value: e.value}]++
	}
	for _, e := range b.entries {
		p := Pair[K, V]{Key: a.foldKey(e.key), Value: e.value}
		counts[p]--
		if counts[p] < 0 {
			return false
		}
	}
	return true
}

// EqualOrdered reports whether a and b hold the same bindings at the same
// positions, with keys compared under a's folding policy.
func EqualOrdered[K comparable, V comparable](a, b *MultiDict[K, V]) bool {
	if len(a.entries) != len(b.entries) {
		return false
	}
	for i := range a.entries {
		if a.foldKey(a.entries[i].key) != a.foldKey(b.entries[i].key) {
			return false
		}
		if a.entries[i].value != b.entries[i].value {
			return false
		}
	}
	return true
}
