package chord

import (
	"fmt"
	"sort"
	"strings"
)

// CreateChordKey builds an order-independent key like "60-64-67".
func CreateChordKey(pitches []int) string {
	sorted := append([]int(nil), pitches...)
	sort.Ints(sorted)
	parts := make([]string, len(sorted))
	for i, p := range sorted {
		parts[i] = fmt.Sprintf("%v", p)
	}
	return strings.Join(parts, "-")
}

// Direction is the order in which the notes of a spread chord were played.
type Direction int

const (
	Irregular Direction = iota
	Ascending
	Descending
)

func (d Direction) String() string {
	switch d {
	case Ascending:
		return "ascending pitch"
	case Descending:
		return "descending pitch"
	default:
		return "irregular"
	}
}

// ClassifyOrder takes pitches in the order they were played. Repeated pitches make
// the order irregular since neither direction is strict.
func ClassifyOrder(pitches []int) Direction {
	if len(pitches) < 2 {
		return Irregular
	}
	ascending, descending := true, true
	for i := 1; i < len(pitches); i++ {
		if pitches[i] <= pitches[i-1] {
			ascending = false
		}
		if pitches[i] >= pitches[i-1] {
			descending = false
		}
	}
	switch {
	case ascending:
		return Ascending
	case descending:
		return Descending
	default:
		return Irregular
	}
}
