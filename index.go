package multidict

import (
	"slices"

	"golang.org/x/exp/maps"
)

// occurrenceIndex maps each folded key to the positions of its occurrences
// in the entry slice, kept in ascending order so that per-key iteration
// matches global insertion order.
type occurrenceIndex[K comparable] map[K][]int

// record appends a position to the key's occurrence list. Entries are only
// ever appended at increasing positions, so the list stays ascending
// without sorting.
func (idx occurrenceIndex[K]) record(key K, pos int) {
	idx[key] = append(idx[key], pos)
}

// unrecord removes exactly the given position from the key's occurrence
// list, dropping the key entirely once its list is empty.
func (idx occurrenceIndex[K]) unrecord(key K, pos int) {
	positions := idx[key]
	i := slices.Index(positions, pos)
	if i == -1 {
		return
	}
	positions = slices.Delete(positions, i, i+1)
	if len(positions) == 0 {
		delete(idx, key)
		return
	}
	idx[key] = positions
}

// first returns the earliest recorded position for the key.
func (idx occurrenceIndex[K]) first(key K) (int, bool) {
	positions := idx[key]
	if len(positions) == 0 {
		return 0, false
	}
	return positions[0], true
}

// shiftAfter renumbers every recorded position greater than pos down by
// one, after the entry at pos has been compacted out of the entry slice.
func (idx occurrenceIndex[K]) shiftAfter(pos int) {
	for _, positions := range idx {
		for i, p := range positions {
			if p > pos {
				positions[i] = p - 1
			}
		}
	}
}

// clone deep-copies the index, occurrence lists included.
func (idx occurrenceIndex[K]) clone() occurrenceIndex[K] {
	cloned := maps.Clone(idx)
	for key, positions := range cloned {
		cloned[key] = slices.Clone(positions)
	}
	return cloned
}
