package session

import "github.com/quarrylabs/dbcontent/pkg/types"

// Canonical default values. Temporal kinds are fixed strings so the same
// value round-trips byte-identically through both drivers.
const (
	defaultDate     = "2000-01-01"
	defaultTime     = "00:00:00"
	defaultDateTime = "2000-01-01 00:00:00"
	defaultText     = "A"
)

// defaultValue returns the placeholder value for a column kind. The mapping
// is deterministic on purpose: a forgotten uniqueness-constrained column
// collides on every run instead of intermittently, which makes the mistake
// obvious. Callers must always supply such columns themselves.
func defaultValue(kind types.ColumnKind) any {
	switch kind {
	case types.KindBool:
		return false
	case types.KindInt:
		return int64(1)
	case types.KindFloat:
		return float64(1)
	case types.KindDate:
		return defaultDate
	case types.KindTime:
		return defaultTime
	case types.KindDateTime:
		return defaultDateTime
	default:
		return defaultText
	}
}
