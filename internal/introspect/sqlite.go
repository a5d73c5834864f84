package introspect

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/quarrylabs/dbcontent/pkg/types"
)

// reflectSQLite reads table and column metadata through sqlite_master and
// PRAGMA table_info. Internal sqlite_* tables are skipped.
func reflectSQLite(db *sql.DB) (types.Schema, error) {
	rows, err := db.Query(`SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	schema := make(types.Schema, len(names))
	for _, name := range names {
		table, err := reflectSQLiteTable(db, name)
		if err != nil {
			return nil, err
		}
		schema[name] = table
	}
	return schema, nil
}

// reflectSQLiteTable reads one table's columns. PRAGMA table_info reports,
// per column: cid, name, declared type, notnull, default, and the 1-based
// primary-key ordinal (0 when the column is not part of the key).
func reflectSQLiteTable(db *sql.DB, name string) (*types.TableSchema, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", quoteSQLite(name)))
	if err != nil {
		return nil, fmt.Errorf("table_info for %s: %w", name, err)
	}
	defer rows.Close()

	table := &types.TableSchema{Name: name}
	for rows.Next() {
		var (
			cid      int
			colName  string
			declType string
			notNull  int
			dflt     sql.NullString
			pk       int
		)
		if err := rows.Scan(&cid, &colName, &declType, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("scanning table_info for %s: %w", name, err)
		}
		table.Columns = append(table.Columns, types.Column{
			Name:       colName,
			Kind:       sqliteKind(declType),
			PrimaryKey: pk > 0,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return table, nil
}

// sqliteKind maps a declared column type to a ColumnKind using the same
// substring rules SQLite itself uses for type affinity. DATETIME and
// TIMESTAMP must be checked before DATE and TIME.
func sqliteKind(declType string) types.ColumnKind {
	t := strings.ToUpper(declType)
	switch {
	case strings.Contains(t, "BOOL"):
		return types.KindBool
	case strings.Contains(t, "DATETIME"), strings.Contains(t, "TIMESTAMP"):
		return types.KindDateTime
	case strings.Contains(t, "DATE"):
		return types.KindDate
	case strings.Contains(t, "TIME"):
		return types.KindTime
	case strings.Contains(t, "INT"):
		return types.KindInt
	case strings.Contains(t, "REAL"), strings.Contains(t, "FLOA"),
		strings.Contains(t, "DOUB"), strings.Contains(t, "NUMERIC"),
		strings.Contains(t, "DECIMAL"):
		return types.KindFloat
	default:
		return types.KindText
	}
}

// quoteSQLite wraps an identifier in double quotes, doubling embedded quotes.
func quoteSQLite(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
