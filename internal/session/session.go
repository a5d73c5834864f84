// Package session owns the single database connection and the reflected
// schema for the lifetime of one test run. It provides the row mutator,
// whole-table and whole-database cleaning, and row fetching that the
// fixture surface in pkg/dbtest exposes to tests.
package session

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"github.com/quarrylabs/dbcontent/internal/introspect"
	"github.com/quarrylabs/dbcontent/pkg/types"
)

// Session is the run-scoped handle to the test database. It holds the one
// connection and the schema reflected at open time. The schema and the
// live database must agree for the whole run; concurrent schema migration
// is not supported. Operations are synchronous and block until the engine
// acknowledges them.
type Session struct {
	mu     sync.Mutex
	uri    string
	driver string
	db     *sql.DB
	schema types.Schema
	closed bool
}

// Open validates the URI, connects, reflects the schema, and clears every
// table, so each run starts from an empty database no matter what a
// previous run left behind. The safety-marker check runs before any
// connection attempt. Connection failures are returned, never retried: a
// test run without a database is a fatal setup condition.
func Open(uri string) (*Session, error) {
	if err := types.CheckURI(uri); err != nil {
		return nil, err
	}

	driver, dsn, err := parseURI(uri)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s database: %v", types.ErrConnection, driver, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: connecting to %s: %v", types.ErrConnection, uri, err)
	}

	schema, err := introspect.Reflect(db, driver)
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &Session{
		uri:    uri,
		driver: driver,
		db:     db,
		schema: schema,
	}

	if err := s.CleanAll(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// URI returns the URI the session was opened with.
func (s *Session) URI() string {
	return s.uri
}

// Schema returns the schema reflected at open time. Callers must treat the
// returned value as read-only.
func (s *Session) Schema() types.Schema {
	return s.schema
}

// Close releases the database connection. Close is idempotent.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// AddRow validates the input, fills non-key gaps with deterministic
// defaults, and persists a new row in a single committed transaction.
// The returned RowRef carries the primary-key values so the row can be
// deleted later. Checks run in a fixed order and the first failure wins:
// unknown table, unknown column, missing primary keys.
func (s *Session) AddRow(table string, values types.Row) (*types.RowRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, errClosed()
	}
	ts, ok := s.schema[table]
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a valid table name", types.ErrValidation, table)
	}

	// Value keys are visited in sorted order so the reported column is
	// deterministic when several are invalid.
	given := make([]string, 0, len(values))
	for name := range values {
		given = append(given, name)
	}
	sort.Strings(given)
	for _, name := range given {
		if _, ok := ts.Column(name); !ok {
			return nil, fmt.Errorf("%w: There is no column %s in the table %s", types.ErrValidation, name, table)
		}
	}

	merged := values.Clone()
	var missingKeys []string
	for _, col := range ts.Columns {
		if _, ok := merged[col.Name]; ok {
			continue
		}
		if col.PrimaryKey {
			missingKeys = append(missingKeys, col.Name)
			continue
		}
		merged[col.Name] = defaultValue(col.Kind)
	}
	if len(missingKeys) > 0 {
		sort.Strings(missingKeys)
		noun := "column is"
		if len(missingKeys) > 1 {
			noun = "columns are"
		}
		return nil, fmt.Errorf("%w: The following primary key %s missing: %s",
			types.ErrValidation, noun, strings.Join(missingKeys, ", "))
	}

	// Bind in descriptor order so the statement shape is stable.
	columns := make([]string, 0, len(ts.Columns))
	placeholders := make([]string, 0, len(ts.Columns))
	args := make([]any, 0, len(ts.Columns))
	for _, col := range ts.Columns {
		columns = append(columns, s.quote(col.Name))
		placeholders = append(placeholders, "?")
		args = append(args, encodeValue(col.Kind, merged[col.Name]))
	}

	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		s.quote(table), strings.Join(columns, ", "), strings.Join(placeholders, ", "))

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning insert into %s: %w", table, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(stmt, args...); err != nil {
		return nil, fmt.Errorf("inserting into %s: %w", table, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing insert into %s: %w", table, err)
	}

	// Keys are stored in encoded form, so the ref names the row exactly as
	// the database holds it.
	keys := make(types.Row)
	for _, name := range ts.PrimaryKeys() {
		col, _ := ts.Column(name)
		keys[name] = encodeValue(col.Kind, merged[name])
	}
	return &types.RowRef{Table: table, Keys: keys}, nil
}

// DeleteRow removes one previously added row, matched by its primary-key
// values, in a single committed transaction.
func (s *Session) DeleteRow(ref *types.RowRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errClosed()
	}
	ts, ok := s.schema[ref.Table]
	if !ok {
		return fmt.Errorf("%w: %s is not a valid table name", types.ErrValidation, ref.Table)
	}

	var (
		conds []string
		args  []any
	)
	for _, name := range ts.PrimaryKeys() {
		col, _ := ts.Column(name)
		conds = append(conds, s.quote(name)+" = ?")
		args = append(args, encodeValue(col.Kind, ref.Keys[name]))
	}

	stmt := fmt.Sprintf("DELETE FROM %s WHERE %s", s.quote(ref.Table), strings.Join(conds, " AND "))

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning delete from %s: %w", ref.Table, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(stmt, args...); err != nil {
		return fmt.Errorf("deleting from %s: %w", ref.Table, err)
	}
	return tx.Commit()
}

// FetchAll returns every row of a table as column-name-to-value maps, with
// values decoded per column kind. Row order is arbitrary and must not be
// relied on.
func (s *Session) FetchAll(table string) ([]types.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, errClosed()
	}
	ts, ok := s.schema[table]
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a valid table name", types.ErrValidation, table)
	}

	columns := make([]string, len(ts.Columns))
	for i, col := range ts.Columns {
		columns[i] = s.quote(col.Name)
	}

	rows, err := s.db.Query(fmt.Sprintf("SELECT %s FROM %s", strings.Join(columns, ", "), s.quote(table)))
	if err != nil {
		return nil, fmt.Errorf("fetching from %s: %w", table, err)
	}
	defer rows.Close()

	var result []types.Row
	for rows.Next() {
		scanned := make([]any, len(ts.Columns))
		targets := make([]any, len(ts.Columns))
		for i := range scanned {
			targets[i] = &scanned[i]
		}
		if err := rows.Scan(targets...); err != nil {
			return nil, fmt.Errorf("scanning row from %s: %w", table, err)
		}
		row := make(types.Row, len(ts.Columns))
		for i, col := range ts.Columns {
			row[col.Name] = decodeValue(col.Kind, scanned[i])
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// CleanTable deletes all rows of one table.
func (s *Session) CleanTable(table string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errClosed()
	}
	if _, ok := s.schema[table]; !ok {
		return fmt.Errorf("%w: %s is not a valid table name", types.ErrValidation, table)
	}
	return s.cleanLocked([]string{table})
}

// CleanAll deletes all rows of every known table in one transaction.
// Cross-table order is unspecified; callers with foreign-key dependencies
// between tables clean per table in dependency order instead. Databases
// produced by maketestdb have no foreign keys, so any order works there.
func (s *Session) CleanAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errClosed()
	}
	return s.cleanLocked(s.schema.Tables())
}

func errClosed() error {
	return fmt.Errorf("%w: session is closed", types.ErrConnection)
}

func (s *Session) cleanLocked(tables []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning clean: %w", err)
	}
	defer tx.Rollback()

	for _, table := range tables {
		if _, err := tx.Exec("DELETE FROM " + s.quote(table)); err != nil {
			return fmt.Errorf("cleaning %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// quote wraps an identifier in the connected dialect's quoting characters.
func (s *Session) quote(name string) string {
	if s.driver == introspect.DriverMySQL {
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
