package audit

// Index maps one field's values to the last Record added with each value,
// preserving the order values were first seen. Duplicate values overwrite the
// stored Record but keep the original position (last-write-wins).
type Index struct {
	order   []any
	byValue map[any]*Record
}

func newIndex() *Index {
	return &Index{byValue: make(map[any]*Record)}
}

func (ix *Index) put(value any, r *Record) {
	if _, ok := ix.byValue[value]; !ok {
		ix.order = append(ix.order, value)
	}
	ix.byValue[value] = r
}

// Get returns the indexed Record for value, or (nil, false) if the value has
// never been added.
func (ix *Index) Get(value any) (*Record, bool) {
	r, ok := ix.byValue[value]
	return r, ok
}

// Values returns the indexed values in first-seen order.
func (ix *Index) Values() []any {
	out := make([]any, len(ix.order))
	copy(out, ix.order)
	return out
}

// Len returns the number of distinct values in the index.
func (ix *Index) Len() int { return len(ix.order) }

// Snapshot is a named, insertion-ordered collection of Records captured in
// one audit run, with secondary indexes for the declared key fields.
// The name is informational only (typically the source file path for loaded
// snapshots) and plays no role in indexing.
type Snapshot struct {
	Name string

	records []*Record
	keys    []Field
	indexes map[Field]*Index
}

// NewSnapshot creates an empty Snapshot indexed by the given key fields.
func NewSnapshot(name string, indexKeys ...Field) *Snapshot {
	s := &Snapshot{
		Name:    name,
		keys:    indexKeys,
		indexes: make(map[Field]*Index, len(indexKeys)),
	}
	for _, k := range indexKeys {
		s.indexes[k] = newIndex()
	}
	return s
}

// Add appends a Record and updates every declared index. If a Record with the
// same key value was already added (e.g. a duplicate path from overlapping
// roots), the later Record silently replaces it in the index; the flat record
// list keeps both.
func (s *Snapshot) Add(r *Record) {
	s.records = append(s.records, r)
	for _, k := range s.keys {
		s.indexes[k].put(r.Value(k), r)
	}
}

// Records returns all Records in insertion order.
func (s *Snapshot) Records() []*Record { return s.records }

// Len returns the number of Records added.
func (s *Snapshot) Len() int { return len(s.records) }

// Get looks up the Record indexed under key with the given value.
// Returns (nil, false) for an unindexed key or an unknown value — a missing
// entry is a normal condition during diffing, not an error.
func (s *Snapshot) Get(key Field, value any) (*Record, bool) {
	ix, ok := s.indexes[key]
	if !ok {
		return nil, false
	}
	return ix.Get(value)
}

// IndexFor returns the full index for a declared key field.
func (s *Snapshot) IndexFor(key Field) (*Index, bool) {
	ix, ok := s.indexes[key]
	return ix, ok
}
