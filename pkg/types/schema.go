package types

import "sort"

// ColumnKind is the semantic type of a column, decided once during schema
// reflection. The enumeration is open but fixed: reflection maps every
// unrecognized declared type to KindText.
type ColumnKind int

const (
	KindText ColumnKind = iota
	KindBool
	KindInt
	KindFloat
	KindDate
	KindTime
	KindDateTime
)

// kindNames maps each kind to its diagnostic name.
var kindNames = map[ColumnKind]string{
	KindText:     "text",
	KindBool:     "bool",
	KindInt:      "int",
	KindFloat:    "float",
	KindDate:     "date",
	KindTime:     "time",
	KindDateTime: "datetime",
}

func (k ColumnKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "text"
}

// Column describes one reflected column.
type Column struct {
	Name       string
	Kind       ColumnKind
	PrimaryKey bool
}

// TableSchema describes one reflected table. Columns keep the declaration
// order reported by the database catalog.
type TableSchema struct {
	Name    string
	Columns []Column
}

// Column returns the descriptor for the named column.
func (t *TableSchema) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnNames returns all column names in declaration order.
func (t *TableSchema) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// PrimaryKeys returns the primary-key column names in declaration order.
// A composite key yields more than one name.
func (t *TableSchema) PrimaryKeys() []string {
	var keys []string
	for _, c := range t.Columns {
		if c.PrimaryKey {
			keys = append(keys, c.Name)
		}
	}
	return keys
}

// Schema maps table names to their descriptors. It is built once per
// session and must not be mutated afterwards.
type Schema map[string]*TableSchema

// Tables returns all table names, sorted.
func (s Schema) Tables() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
