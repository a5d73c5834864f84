package types

// Row maps column names to values. It is used both for caller-supplied
// column assignments and for fetched rows.
type Row map[string]any

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// RowRef identifies one persisted row by its primary-key values, so the
// row can be deleted later. Keys holds one entry per primary-key column.
type RowRef struct {
	Table string
	Keys  Row
}
