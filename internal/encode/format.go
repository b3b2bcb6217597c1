// Package encode implements the external representations of audit data:
// the persisted JSON snapshot format, CSV export/import, template-based
// per-record rendering, and the fixed-width diff report.
package encode

import (
	"fmt"
	"strconv"

	"fsa-go/internal/audit"
)

// fieldText renders one record field as text, used identically by the CSV
// and template encoders. Integers are plain decimal; timestamps use the
// shortest decimal form that round-trips the float64 exactly.
func fieldText(r *audit.Record, f audit.Field) string {
	switch v := r.Value(f).(type) {
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	panic(fmt.Sprintf("encode: unhandled value type for field %s", f))
}
