package audit

// KeyValueSuperset returns the ordered union of one key field's values across
// the given snapshots: every value appears exactly once, in the order it was
// first observed processing snapshots left to right (and, within a snapshot,
// in that snapshot's insertion order). Snapshots that do not index the key
// contribute nothing.
//
// Runs in O(total records); snapshots are never compared pairwise.
func KeyValueSuperset(snapshots []*Snapshot, key Field) []any {
	seen := make(map[any]struct{})
	var values []any

	for _, snap := range snapshots {
		ix, ok := snap.IndexFor(key)
		if !ok {
			continue
		}
		for _, v := range ix.Values() {
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			values = append(values, v)
		}
	}

	return values
}
