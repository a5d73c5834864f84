// Package main provides the maketestdb CLI, which clones a production
// MySQL database's schema (no data, no foreign keys, no DEFINER clauses)
// into an isolated test database whose name carries the safety marker.
package main

import (
	"fmt"
	"os"
)

// exitCode carries the status of the first failing external step, so the
// process exit mirrors what mysqldump or mysql reported.
var exitCode int

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if exitCode == 0 {
			exitCode = 1
		}
	}
	os.Exit(exitCode)
}
