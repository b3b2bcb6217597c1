package audit

import (
	"strconv"
	"strings"
)

// absent is the distinguished value an absent Cell contributes for every
// field. Its type is unexported, so it can never compare equal to a real
// field value — a missing file is never grouped with a file that happens to
// share a zero or empty value.
type absent struct{}

// Cell is one snapshot's contribution for a single key value: either a
// Record, or an explicit absence marker when the snapshot has no record for
// that value.
type Cell struct {
	record  *Record
	present bool
}

// Present wraps a Record in a Cell.
func Present(r *Record) Cell { return Cell{record: r, present: true} }

// Absent returns the Cell marking a snapshot that lacks the key value.
func Absent() Cell { return Cell{} }

// Record returns the wrapped Record and whether the Cell is present.
func (c Cell) Record() (*Record, bool) { return c.record, c.present }

func (c Cell) value(f Field) any {
	if !c.present {
		return absent{}
	}
	return c.record.Value(f)
}

// GroupedCell pairs an input Cell with its assigned group ids: one id per
// compared field (in the order the fields were given) and one combined id
// for the whole field tuple.
type GroupedCell struct {
	Cell      Cell
	KeyGroups []int
	Combined  int
}

// GroupDiff assigns diff group ids to an ordered list of Cells.
//
// For each compared field, the first distinct value seen gets id 0, the
// second id 1, and so on: two Cells share a per-field id iff their values for
// that field are equal under native (untyped-coerced) equality. The combined
// id is likewise the first-seen index of the full per-field id tuple.
//
// Ids depend only on the order Cells are supplied: identical ordered input
// reproduces identical ids, and reordering may relabel groups but never
// changes which Cells are grouped together. A single-Cell input yields id 0
// for everything — there is nothing to compare against.
func GroupDiff(fields []Field, cells []Cell) []GroupedCell {
	valueCache := make([]map[any]int, len(fields))
	for i := range valueCache {
		valueCache[i] = make(map[any]int)
	}
	tupleCache := make(map[string]int)

	result := make([]GroupedCell, 0, len(cells))
	for _, c := range cells {
		groups := make([]int, len(fields))
		var tuple strings.Builder
		for i, f := range fields {
			v := c.value(f)
			id, ok := valueCache[i][v]
			if !ok {
				// New id is the cache size at insertion: the count of
				// distinct values seen so far.
				id = len(valueCache[i])
				valueCache[i][v] = id
			}
			groups[i] = id
			if i > 0 {
				tuple.WriteByte(',')
			}
			tuple.WriteString(strconv.Itoa(id))
		}

		combined, ok := tupleCache[tuple.String()]
		if !ok {
			combined = len(tupleCache)
			tupleCache[tuple.String()] = combined
		}

		result = append(result, GroupedCell{Cell: c, KeyGroups: groups, Combined: combined})
	}

	return result
}
