package session

import (
	"fmt"
	"time"

	"github.com/quarrylabs/dbcontent/pkg/types"
)

// Canonical formats for temporal values stored as text.
const (
	dateFormat     = "2006-01-02"
	timeFormat     = "15:04:05"
	dateTimeFormat = "2006-01-02 15:04:05"
)

// encodeValue normalizes a caller-supplied value for binding, keyed on the
// column's kind. Booleans become 0/1, integers widen to int64, floats to
// float64, and time.Time values collapse to the canonical string form, so
// every driver stores the same representation.
func encodeValue(kind types.ColumnKind, v any) any {
	if v == nil {
		return nil
	}
	switch kind {
	case types.KindBool:
		if b, ok := v.(bool); ok {
			if b {
				return int64(1)
			}
			return int64(0)
		}
	case types.KindInt:
		switch n := v.(type) {
		case int:
			return int64(n)
		case int32:
			return int64(n)
		case int64:
			return n
		}
	case types.KindFloat:
		switch n := v.(type) {
		case float32:
			return float64(n)
		case float64:
			return n
		case int:
			return float64(n)
		case int64:
			return float64(n)
		}
	case types.KindDate:
		if t, ok := v.(time.Time); ok {
			return t.Format(dateFormat)
		}
	case types.KindTime:
		if t, ok := v.(time.Time); ok {
			return t.Format(timeFormat)
		}
	case types.KindDateTime:
		if t, ok := v.(time.Time); ok {
			return t.Format(dateTimeFormat)
		}
	}
	return v
}

// decodeValue maps a driver scan result back to the kind-typed value the
// caller sees in fetched rows: bool columns yield bool, integer columns
// int64, float columns float64, and everything else a string. The MySQL
// driver hands text back as []byte, which decodes to string here.
func decodeValue(kind types.ColumnKind, v any) any {
	if v == nil {
		return nil
	}
	switch kind {
	case types.KindBool:
		switch n := v.(type) {
		case bool:
			return n
		case int64:
			return n != 0
		case []byte:
			return string(n) == "1"
		}
	case types.KindInt:
		switch n := v.(type) {
		case int64:
			return n
		case []byte:
			var parsed int64
			if _, err := fmt.Sscan(string(n), &parsed); err == nil {
				return parsed
			}
		}
	case types.KindFloat:
		switch n := v.(type) {
		case float64:
			return n
		case int64:
			return float64(n)
		case []byte:
			var parsed float64
			if _, err := fmt.Sscan(string(n), &parsed); err == nil {
				return parsed
			}
		}
	case types.KindDate:
		return decodeTemporal(v, dateFormat)
	case types.KindTime:
		return decodeTemporal(v, timeFormat)
	case types.KindDateTime:
		return decodeTemporal(v, dateTimeFormat)
	default:
		switch s := v.(type) {
		case string:
			return s
		case []byte:
			return string(s)
		}
	}
	return v
}

func decodeTemporal(v any, format string) any {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case time.Time:
		return t.Format(format)
	}
	return v
}
