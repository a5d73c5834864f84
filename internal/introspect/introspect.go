// Package introspect reflects a live database's schema into the in-memory
// model defined by pkg/types. It reads the engine's own catalog (the
// sqlite_master/PRAGMA interface for SQLite, information_schema for MySQL)
// and never mutates the database.
package introspect

import (
	"database/sql"
	"fmt"

	"github.com/quarrylabs/dbcontent/pkg/types"
)

// Supported driver names, matching the database/sql registrations of
// modernc.org/sqlite and github.com/go-sql-driver/mysql.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Reflect builds one TableSchema per table found in the connected database.
// Catalog read failures wrap types.ErrConnection: a schema that cannot be
// read at session start is a fatal setup condition, not something to retry.
func Reflect(db *sql.DB, driver string) (types.Schema, error) {
	var (
		schema types.Schema
		err    error
	)
	switch driver {
	case DriverSQLite:
		schema, err = reflectSQLite(db)
	case DriverMySQL:
		schema, err = reflectMySQL(db)
	default:
		return nil, fmt.Errorf("%w: no schema reflection for driver %q", types.ErrConnection, driver)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reflecting schema: %v", types.ErrConnection, err)
	}
	return schema, nil
}
