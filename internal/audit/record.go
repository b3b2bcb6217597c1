package audit

import "fmt"

// Field identifies one of the ten attributes captured per audited file.
// It is a closed enumeration: every dispatch over fields is an exhaustive
// switch, and free-form attribute strings (template placeholders, CLI input)
// are parsed into a Field exactly once at the boundary.
type Field int

const (
	FieldName Field = iota
	FieldPath
	FieldMode
	FieldUID
	FieldGID
	FieldSize
	FieldATime
	FieldMTime
	FieldCTime
	FieldHash
)

// Fields lists every record field in serialization order. This order defines
// the persisted JSON key order, the CSV column order, and the template
// placeholder set.
var Fields = []Field{
	FieldName, FieldPath, FieldMode, FieldUID, FieldGID,
	FieldSize, FieldATime, FieldMTime, FieldCTime, FieldHash,
}

// String returns the serialized key for the field (the JSON object key,
// CSV header name, and template placeholder name).
func (f Field) String() string {
	switch f {
	case FieldName:
		return "name"
	case FieldPath:
		return "path"
	case FieldMode:
		return "mode"
	case FieldUID:
		return "uid"
	case FieldGID:
		return "gid"
	case FieldSize:
		return "size"
	case FieldATime:
		return "atime"
	case FieldMTime:
		return "mtime"
	case FieldCTime:
		return "ctime"
	case FieldHash:
		return "hash"
	}
	panic(fmt.Sprintf("audit: unknown field %d", int(f)))
}

// ParseField maps a serialized key to its Field.
func ParseField(name string) (Field, error) {
	for _, f := range Fields {
		if f.String() == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown field: %q", name)
}

// Record is one file's audit result: identity, POSIX metadata, and a content
// hash. Records never mutate once built — they are constructed in full by the
// audit service or a snapshot decoder and then only read.
type Record struct {
	Name  string  // basename
	Path  string  // full path, the cross-snapshot join key
	Mode  string  // octal text of the low 9 permission bits, e.g. "644"
	UID   int64   // owner user id
	GID   int64   // owner group id
	Size  int64   // size in bytes
	ATime float64 // access time, unix seconds
	MTime float64 // content modification time, unix seconds
	CTime float64 // metadata change time on unix, creation time elsewhere
	Hash  string  // lowercase hex content digest
}

// Value returns the record's value for the given field. The returned value
// keeps its native type (string, int64, or float64) so that equality in the
// grouping engine is never type-coerced.
func (r *Record) Value(f Field) any {
	switch f {
	case FieldName:
		return r.Name
	case FieldPath:
		return r.Path
	case FieldMode:
		return r.Mode
	case FieldUID:
		return r.UID
	case FieldGID:
		return r.GID
	case FieldSize:
		return r.Size
	case FieldATime:
		return r.ATime
	case FieldMTime:
		return r.MTime
	case FieldCTime:
		return r.CTime
	case FieldHash:
		return r.Hash
	}
	panic(fmt.Sprintf("audit: unknown field %d", int(f)))
}
