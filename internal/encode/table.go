package encode

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"fsa-go/internal/audit"
)

const (
	rowNameWidth = 40
	groupWidth   = 10
)

// WriteDiffTable renders a grouped diff report as a fixed-width table:
// a "PATH @ ARCHIVE" column, one centered column per compared field, and a
// centered "sum" column for the combined group id. Each distinct path's rows
// are followed by a blank line.
func WriteDiffTable(w io.Writer, report *audit.DiffReport) error {
	var b strings.Builder
	b.WriteByte('\n')

	b.WriteString(padRight("File @ Archive", rowNameWidth))
	for _, f := range report.Fields {
		b.WriteString(center(f.String(), groupWidth))
	}
	b.WriteString(center("sum", groupWidth))
	b.WriteByte('\n')

	for _, pd := range report.Paths {
		for _, e := range pd.Entries {
			b.WriteString(padRight(fmt.Sprintf("%v @ %s", pd.Key, e.Archive), rowNameWidth))
			for _, g := range e.KeyGroups {
				b.WriteString(center(strconv.Itoa(g), groupWidth))
			}
			b.WriteString(center(strconv.Itoa(e.Combined), groupWidth))
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("writing diff table: %w", err)
	}
	return nil
}

// Widths count runes, not bytes, so multibyte path names keep the columns
// aligned.
func padRight(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

// center pads s to width with the extra space on the right when the padding
// is odd.
func center(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	left := (width - n) / 2
	right := width - n - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}
