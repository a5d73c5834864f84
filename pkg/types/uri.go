package types

import (
	"fmt"
	"strings"
)

// TestMarker is the substring every test-database URI and every test-database
// name must contain. It guards against pointing the fixtures, or the clone
// tool, at a production database.
const TestMarker = "__TEST__"

// CheckURI validates a database URI before any connection attempt.
// An empty URI and a URI without the safety marker are both ErrConfig.
func CheckURI(uri string) error {
	if uri == "" {
		return fmt.Errorf("%w: a test database URI is required; pass it with the -db-uri command line option", ErrConfig)
	}
	if !strings.Contains(uri, TestMarker) {
		return fmt.Errorf("%w: the database URI must include the string '%s'", ErrConfig, TestMarker)
	}
	return nil
}
