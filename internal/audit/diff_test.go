package audit

import (
	"reflect"
	"testing"
)

func hashCell(hash string) Cell {
	return Present(&Record{Path: "/f", Hash: hash, Size: 1})
}

func TestGroupDiff_SharedAndDistinctValues(t *testing.T) {
	t.Parallel()

	cells := []Cell{hashCell("aaa"), hashCell("bbb"), hashCell("aaa")}
	got := GroupDiff([]Field{FieldHash}, cells)

	wantGroups := [][]int{{0}, {1}, {0}}
	for i, g := range got {
		if !reflect.DeepEqual(g.KeyGroups, wantGroups[i]) {
			t.Errorf("cell %d KeyGroups = %v, want %v", i, g.KeyGroups, wantGroups[i])
		}
	}

	wantCombined := []int{0, 1, 0}
	for i, g := range got {
		if g.Combined != wantCombined[i] {
			t.Errorf("cell %d Combined = %d, want %d", i, g.Combined, wantCombined[i])
		}
	}
}

func TestGroupDiff_AbsentIsItsOwnGroup(t *testing.T) {
	t.Parallel()

	cells := []Cell{hashCell("aaa"), Absent(), hashCell("aaa")}
	got := GroupDiff([]Field{FieldHash}, cells)

	if got[0].KeyGroups[0] != 0 || got[2].KeyGroups[0] != 0 {
		t.Errorf("present cells grouped as %d and %d, want both 0",
			got[0].KeyGroups[0], got[2].KeyGroups[0])
	}
	if got[1].KeyGroups[0] != 1 {
		t.Errorf("absent cell group = %d, want 1", got[1].KeyGroups[0])
	}
}

func TestGroupDiff_AbsentNeverEqualsZeroValues(t *testing.T) {
	t.Parallel()

	// A present record whose hash is the empty string must not share a group
	// with an absent cell.
	cells := []Cell{Present(&Record{Path: "/f", Hash: ""}), Absent()}
	got := GroupDiff([]Field{FieldHash}, cells)

	if got[0].KeyGroups[0] == got[1].KeyGroups[0] {
		t.Errorf("empty-hash cell and absent cell share group %d", got[0].KeyGroups[0])
	}
}

func TestGroupDiff_MultipleAbsentsShareAGroup(t *testing.T) {
	t.Parallel()

	cells := []Cell{Absent(), hashCell("aaa"), Absent()}
	got := GroupDiff([]Field{FieldHash}, cells)

	if got[0].KeyGroups[0] != got[2].KeyGroups[0] {
		t.Errorf("absent cells grouped as %d and %d, want equal",
			got[0].KeyGroups[0], got[2].KeyGroups[0])
	}
	if got[0].KeyGroups[0] == got[1].KeyGroups[0] {
		t.Error("absent cell shares a group with a present cell")
	}
}

func TestGroupDiff_CombinedTracksFieldTuple(t *testing.T) {
	t.Parallel()

	fields := []Field{FieldHash, FieldSize}
	cells := []Cell{
		Present(&Record{Hash: "aaa", Size: 1}),
		Present(&Record{Hash: "aaa", Size: 2}),
		Present(&Record{Hash: "bbb", Size: 1}),
		Present(&Record{Hash: "aaa", Size: 1}),
	}
	got := GroupDiff(fields, cells)

	wantGroups := [][]int{{0, 0}, {0, 1}, {1, 0}, {0, 0}}
	wantCombined := []int{0, 1, 2, 0}
	for i, g := range got {
		if !reflect.DeepEqual(g.KeyGroups, wantGroups[i]) {
			t.Errorf("cell %d KeyGroups = %v, want %v", i, g.KeyGroups, wantGroups[i])
		}
		if g.Combined != wantCombined[i] {
			t.Errorf("cell %d Combined = %d, want %d", i, g.Combined, wantCombined[i])
		}
	}
}

func TestGroupDiff_SingleCell(t *testing.T) {
	t.Parallel()

	got := GroupDiff([]Field{FieldHash, FieldSize}, []Cell{hashCell("aaa")})
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if !reflect.DeepEqual(got[0].KeyGroups, []int{0, 0}) || got[0].Combined != 0 {
		t.Errorf("single cell got KeyGroups=%v Combined=%d, want [0 0] 0",
			got[0].KeyGroups, got[0].Combined)
	}
}

func TestGroupDiff_Deterministic(t *testing.T) {
	t.Parallel()

	fields := []Field{FieldHash, FieldSize}
	cells := []Cell{
		Present(&Record{Hash: "x", Size: 9}),
		Absent(),
		Present(&Record{Hash: "y", Size: 9}),
		Present(&Record{Hash: "x", Size: 8}),
	}

	first := GroupDiff(fields, cells)
	second := GroupDiff(fields, cells)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("GroupDiff not deterministic:\nfirst  = %+v\nsecond = %+v", first, second)
	}
}
