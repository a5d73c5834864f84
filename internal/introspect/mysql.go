package introspect

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/quarrylabs/dbcontent/pkg/types"
)

// reflectMySQL reads table and column metadata from information_schema for
// the schema the connection is bound to. Views are excluded; only base
// tables can hold fixture rows.
func reflectMySQL(db *sql.DB) (types.Schema, error) {
	rows, err := db.Query(`SELECT table_name FROM information_schema.tables
		WHERE table_schema = DATABASE() AND table_type = 'BASE TABLE'
		ORDER BY table_name`)
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
		table, err := reflectMySQLTable(db, name)
		if err != nil {
			return nil, err
		}
		schema[name] = table
	}
	return schema, nil
}

// reflectMySQLTable reads one table's columns in ordinal position order.
// column_key = 'PRI' marks primary-key membership, composite keys included.
func reflectMySQLTable(db *sql.DB, name string) (*types.TableSchema, error) {
	rows, err := db.Query(`SELECT column_name, data_type, column_type, column_key
		FROM information_schema.columns
		WHERE table_schema = DATABASE() AND table_name = ?
		ORDER BY ordinal_position`, name)
	if err != nil {
		return nil, fmt.Errorf("listing columns for %s: %w", name, err)
	}
	defer rows.Close()

	table := &types.TableSchema{Name: name}
	for rows.Next() {
		var colName, dataType, columnType, columnKey string
		if err := rows.Scan(&colName, &dataType, &columnType, &columnKey); err != nil {
			return nil, fmt.Errorf("scanning columns for %s: %w", name, err)
		}
		table.Columns = append(table.Columns, types.Column{
			Name:       colName,
			Kind:       mysqlKind(dataType, columnType),
			PrimaryKey: columnKey == "PRI",
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return table, nil
}

// mysqlKind maps an information_schema data_type to a ColumnKind.
// tinyint(1) is MySQL's boolean spelling and must be checked through the
// full column_type, since data_type alone says only "tinyint".
func mysqlKind(dataType, columnType string) types.ColumnKind {
	if strings.EqualFold(columnType, "tinyint(1)") {
		return types.KindBool
	}
	switch strings.ToLower(dataType) {
	case "tinyint", "smallint", "mediumint", "int", "integer", "bigint", "year":
		return types.KindInt
	case "float", "double", "decimal", "numeric":
		return types.KindFloat
	case "date":
		return types.KindDate
	case "time":
		return types.KindTime
	case "datetime", "timestamp":
		return types.KindDateTime
	default:
		return types.KindText
	}
}
