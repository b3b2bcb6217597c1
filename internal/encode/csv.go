package encode

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"fsa-go/internal/audit"
)

// WriteSnapshotCSV writes a header row of the ten field keys followed by one
// row per record, in field serialization order.
func WriteSnapshotCSV(w io.Writer, snap *audit.Snapshot) error {
	cw := csv.NewWriter(w)

	header := make([]string, len(audit.Fields))
	for i, f := range audit.Fields {
		header[i] = f.String()
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, r := range snap.Records() {
		row := make([]string, len(audit.Fields))
		for i, f := range audit.Fields {
			row[i] = fieldText(r, f)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}

// ReadSnapshotCSV hydrates a snapshot (indexed by path) from CSV produced by
// WriteSnapshotCSV. The header must name exactly the ten field keys in
// serialization order; a short or reordered header fails the whole load.
func ReadSnapshotCSV(r io.Reader, name string) (*audit.Snapshot, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}
	if len(header) != len(audit.Fields) {
		return nil, fmt.Errorf("csv header has %d columns, want %d", len(header), len(audit.Fields))
	}
	for i, f := range audit.Fields {
		if header[i] != f.String() {
			return nil, fmt.Errorf("csv header column %d is %q, want %q", i, header[i], f.String())
		}
	}

	snap := audit.NewSnapshot(name, audit.FieldPath)
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv line %d: %w", line, err)
		}
		rec, err := rowToRecord(row)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		snap.Add(rec)
	}
	return snap, nil
}

func rowToRecord(row []string) (*audit.Record, error) {
	uid, err := strconv.ParseInt(row[3], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing uid: %w", err)
	}
	gid, err := strconv.ParseInt(row[4], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing gid: %w", err)
	}
	size, err := strconv.ParseInt(row[5], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing size: %w", err)
	}
	atime, err := strconv.ParseFloat(row[6], 64)
	if err != nil {
		return nil, fmt.Errorf("parsing atime: %w", err)
	}
	mtime, err := strconv.ParseFloat(row[7], 64)
	if err != nil {
		return nil, fmt.Errorf("parsing mtime: %w", err)
	}
	ctime, err := strconv.ParseFloat(row[8], 64)
	if err != nil {
		return nil, fmt.Errorf("parsing ctime: %w", err)
	}

	return &audit.Record{
		Name:  row[0],
		Path:  row[1],
		Mode:  row[2],
		UID:   uid,
		GID:   gid,
		Size:  size,
		ATime: atime,
		MTime: mtime,
		CTime: ctime,
		Hash:  row[9],
	}, nil
}
