package dbtest

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"github.com/quarrylabs/dbcontent/pkg/types"
)

// TestMain provisions a throwaway SQLite database for the suite when no
// -db-uri was passed on the command line, mirroring how a consuming
// project would point the fixtures at its own test database.
func TestMain(m *testing.M) {
	flag.Parse()

	if *dbURI == "" {
		dir, err := os.MkdirTemp("", "dbtest")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		path := filepath.Join(dir, "__TEST__content.sqlite")
		if err := provision(path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if err := flag.Set("db-uri", "sqlite:///"+path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		code := m.Run()
		os.RemoveAll(dir)
		os.Exit(code)
	}

	os.Exit(m.Run())
}

func provision(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE user (
		id INTEGER NOT NULL,
		first_name TEXT,
		LastName TEXT,
		PRIMARY KEY (id)
	)`)
	return err
}

func fetchIDs(t *testing.T, table string) map[int64]bool {
	t.Helper()

	rows, err := Session(t).FetchAll(table)
	require.NoError(t, err)
	ids := make(map[int64]bool, len(rows))
	for _, row := range rows {
		ids[row["id"].(int64)] = true
	}
	return ids
}

func TestSessionIsShared(t *testing.T) {
	assert.Same(t, Session(t), Session(t), "all tests must share one session")
}

// The next two tests are ordered on purpose: the first adds a row through
// the session-scoped accessor, the second observes that it survived.

func TestSessionRowsPersist1Add(t *testing.T) {
	_, err := Session(t).AddRow("user", types.Row{"id": 42, "first_name": "Emmy"})
	require.NoError(t, err)
}

func TestSessionRowsPersist2Observe(t *testing.T) {
	ids := fetchIDs(t, "user")
	assert.True(t, ids[42], "session-scoped row from the previous test should persist")
}

func TestTempRowsDeletedAfterTest(t *testing.T) {
	_, err := Session(t).AddRow("user", types.Row{"id": 100, "first_name": "Ada"})
	require.NoError(t, err)

	t.Run("inner", func(t *testing.T) {
		tr := TempRows(t)
		for id := 1; id <= 3; id++ {
			tr.AddRow("user", types.Row{"id": id})
		}

		ids := fetchIDs(t, "user")
		for id := int64(1); id <= 3; id++ {
			assert.True(t, ids[id], "temporary row %d should exist during the test", id)
		}
	})

	// The subtest is over; its cleanup has run.
	ids := fetchIDs(t, "user")
	for id := int64(1); id <= 3; id++ {
		assert.False(t, ids[id], "temporary row %d should be gone after the test", id)
	}
	assert.True(t, ids[100], "session-scoped row should remain")
}

func TestTempRowsFillDefaults(t *testing.T) {
	tr := TempRows(t)
	tr.AddRow("user", types.Row{"id": 5})

	rows, err := Session(t).FetchAll("user")
	require.NoError(t, err)
	for _, row := range rows {
		if row["id"] == int64(5) {
			assert.Equal(t, "A", row["first_name"])
			assert.Equal(t, "A", row["LastName"])
			return
		}
	}
	t.Fatal("temporary row not found")
}

func TestTempRowsReturnRef(t *testing.T) {
	tr := TempRows(t)
	ref := tr.AddRow("user", types.Row{"id": 6})
	require.NotNil(t, ref)
	assert.Equal(t, "user", ref.Table)
	assert.Equal(t, int64(6), ref.Keys["id"])
}
