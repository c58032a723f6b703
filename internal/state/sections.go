package state

import (
	"cmp"
	"slices"
)

// SortSections orders sections by (position, zone, id) in place.
func SortSections(sections []Section) {
	slices.SortStableFunc(sections, func(a, b Section) int {
		return cmp.Or(
			cmp.Compare(a.Position, b.Position),
			cmp.Compare(a.Zone, b.Zone),
			cmp.Compare(a.ID, b.ID),
		)
	})
}

// ZoneSections returns the indexes of sections in zone, in position order.
// sections must already be sorted.
func ZoneSections(sections []Section, zone string) []int {
	var idx []int
	for i, s := range sections {
		if s.Zone == zone {
			idx = append(idx, i)
		}
	}
	return idx
}

// DensePositions reports whether every zone's positions are exactly
// 0..n-1 in order.
func DensePositions(sections []Section) bool {
	next := make(map[string]int)
	for _, s := range sections {
		if s.Position != next[s.Zone] {
			return false
		}
		next[s.Zone]++
	}
	return true
}
