// Package dbtest exposes the test-database fixtures to go test binaries.
//
// Importing the package registers the -db-uri flag, so a suite runs as
//
//	go test ./... -db-uri='sqlite:////tmp/__TEST__/observations.sqlite'
//
// Session returns the shared run-scoped accessor, connected and cleaned
// exactly once per test binary. TempRows returns a per-test insertion
// helper whose rows are deleted again when the test finishes, in reverse
// insertion order, whether the test passed or failed. Rows added through
// Session.AddRow persist for the rest of the run.
//
// The URI must contain the safety marker types.TestMarker; this keeps the
// fixtures from ever emptying a production database.
package dbtest

import (
	"flag"
	"sync"
	"testing"

	"github.com/quarrylabs/dbcontent/internal/session"
	"github.com/quarrylabs/dbcontent/pkg/types"
)

// dbURI is the test-runner option for selecting the test database.
var dbURI = flag.String("db-uri", "", "db-content: URI of the test database; must contain "+types.TestMarker)

var (
	openOnce sync.Once
	shared   *session.Session
	openErr  error
)

// Session returns the run-scoped session accessor, opening it on first use
// with the URI from the -db-uri option. Opening connects, reflects the
// schema, and clears every table. Any setup failure (missing option,
// missing safety marker, unreachable database) aborts the calling test
// immediately and is reported again to every later caller; no test body
// runs against a half-configured database.
//
// The session is shared by reference across all tests in the binary, so
// rows added through it are visible to, and mutable by, every other test.
func Session(t testing.TB) *session.Session {
	t.Helper()

	openOnce.Do(func() {
		shared, openErr = session.Open(*dbURI)
	})
	if openErr != nil {
		t.Fatalf("db-content setup: %v", openErr)
	}
	return shared
}

// Temp adds rows that live only as long as one test. Each AddRow records
// the new row, and a cleanup hook registered at construction deletes the
// recorded rows in reverse insertion order after the test completes.
// Reverse order deletes later rows first, so child rows referencing
// earlier parents go before the parents they point at.
type Temp struct {
	t    testing.TB
	sess *session.Session
	refs []*types.RowRef
}

// TempRows returns the per-test mutation entry point. The cleanup hook is
// registered immediately and runs on every exit path, including test
// failure, so temporary rows never leak into the next test.
func TempRows(t testing.TB) *Temp {
	t.Helper()

	tr := &Temp{t: t, sess: Session(t)}
	t.Cleanup(tr.deleteAll)
	return tr
}

// AddRow inserts a row with the same semantics as Session.AddRow and
// schedules it for deletion when the test ends. Validation failures fail
// the calling test.
func (tr *Temp) AddRow(table string, values types.Row) *types.RowRef {
	tr.t.Helper()

	ref, err := tr.sess.AddRow(table, values)
	if err != nil {
		tr.t.Fatalf("adding temporary row to %s: %v", table, err)
	}
	tr.refs = append(tr.refs, ref)
	return ref
}

func (tr *Temp) deleteAll() {
	for i := len(tr.refs) - 1; i >= 0; i-- {
		if err := tr.sess.DeleteRow(tr.refs[i]); err != nil {
			tr.t.Errorf("deleting temporary row from %s: %v", tr.refs[i].Table, err)
		}
	}
	tr.refs = nil
}
