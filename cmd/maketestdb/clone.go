package main

import (
	"bytes"
	"database/sql"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/quarrylabs/dbcontent/pkg/types"
)

// DEFINER clauses survive a plain mysqldump and fail to import under a
// less-privileged user. Three independent substitutions cover the comment
// form, stored procedures, and stored functions.
var (
	definerComment   = regexp.MustCompile(`DEFINER[ ]*=[ ]*[^*]*\*`)
	definerProcedure = regexp.MustCompile(`DEFINER[ ]*=[ ]*[^*]*PROCEDURE`)
	definerFunction  = regexp.MustCompile(`DEFINER[ ]*=[ ]*[^*]*FUNCTION`)
)

// runClone executes the full pipeline: dump the source schema, clean the
// SQL, (re)create the target database, import, then drop every foreign key
// the import brought along. The returned code is the exit status of the
// first failing external step, or zero.
func runClone(out, errOut io.Writer, opts cloneOptions) (int, error) {
	if opts.UniqueSuffix {
		opts.TargetDB = uniqueTargetName(opts.TargetDB)
		fmt.Fprintf(out, "Target database name: %s\n", opts.TargetDB)
	}

	// The safety check runs before anything touches a database.
	if !strings.Contains(opts.TargetDB, types.TestMarker) {
		return 1, fmt.Errorf("the target database name must contain the string '%s'", types.TestMarker)
	}

	fmt.Fprintln(out, "Export source database...")
	dump, code, err := runStep(errOut, nil, "mysqldump", dumpArgs(opts)...)
	if err != nil {
		return code, err
	}

	fmt.Fprintln(out, "Clean exported SQL...")
	cleaned := stripSourceQualifiers(stripDefiners(string(dump)), opts.SourceDB)

	mysqlArgs := targetMySQLArgs(opts)
	if opts.RemoveExisting {
		fmt.Fprintln(out, "Remove existing test database...")
		stmt := fmt.Sprintf("DROP DATABASE IF EXISTS `%s`", opts.TargetDB)
		if _, code, err := runStep(errOut, []byte(stmt), "mysql", mysqlArgs...); err != nil {
			return code, err
		}
	}

	fmt.Fprintln(out, "Create test database...")
	stmt := fmt.Sprintf("CREATE DATABASE `%s`", opts.TargetDB)
	if _, code, err := runStep(errOut, []byte(stmt), "mysql", mysqlArgs...); err != nil {
		return code, err
	}

	fmt.Fprintln(out, "Import schema into test database...")
	importArgs := append(append([]string{}, mysqlArgs...), opts.TargetDB)
	if _, code, err := runStep(errOut, []byte(cleaned), "mysql", importArgs...); err != nil {
		return code, err
	}

	fmt.Fprintln(out, "Remove foreign keys from test database...")
	if err := dropForeignKeys(opts); err != nil {
		return 1, err
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "The test database %s has been created.\n", opts.TargetDB)
	fmt.Fprintln(out, "All foreign keys have been removed.")
	return 0, nil
}

// runStep invokes one external command, feeding it stdin when given. On
// failure the step's stderr is echoed and its exit status returned.
func runStep(errOut io.Writer, stdin []byte, name string, args ...string) ([]byte, int, error) {
	cmd := exec.Command(name, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		fmt.Fprintln(errOut)
		fmt.Fprintln(errOut, stderr.String())
		code := 1
		if exitErr, ok := err.(*exec.ExitError); ok {
			code = exitErr.ExitCode()
		}
		return nil, code, fmt.Errorf("%s failed: %w", name, err)
	}
	return stdout.Bytes(), 0, nil
}

// dumpArgs builds the mysqldump invocation: schema only, routines included.
func dumpArgs(opts cloneOptions) []string {
	return []string{
		"--routines",
		"--no-data",
		"-h", opts.SourceHost,
		"-P", strconv.Itoa(opts.SourcePort),
		"-u", opts.SourceUser,
		"-p" + opts.SourcePassword,
		opts.SourceDB,
	}
}

// targetMySQLArgs builds the mysql client invocation for the target server,
// without a database argument.
func targetMySQLArgs(opts cloneOptions) []string {
	return []string{
		"-h", opts.TargetHost,
		"-P", strconv.Itoa(opts.TargetPort),
		"-u", opts.TargetUser,
		"-p" + opts.TargetPassword,
	}
}

// stripDefiners removes all DEFINER clauses from dumped SQL.
func stripDefiners(sqlText string) string {
	sqlText = definerComment.ReplaceAllString(sqlText, "*")
	sqlText = definerProcedure.ReplaceAllString(sqlText, "PROCEDURE")
	sqlText = definerFunction.ReplaceAllString(sqlText, "FUNCTION")
	return sqlText
}

// stripSourceQualifiers removes `sourcedb`. prefixes, so imported routines
// and views refer to objects in the target database instead.
func stripSourceQualifiers(sqlText, sourceDB string) string {
	return strings.ReplaceAll(sqlText, "`"+sourceDB+"`.", "")
}

// uniqueTargetName appends a short random suffix, giving each run its own
// throwaway database name.
func uniqueTargetName(name string) string {
	return name + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// dropForeignKeys connects to the freshly imported target database and
// removes every foreign key constraint its catalog reports.
func dropForeignKeys(opts cloneOptions) error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s",
		opts.TargetUser, opts.TargetPassword, opts.TargetHost, opts.TargetPort, opts.TargetDB)
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("connecting to target database: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(`SELECT table_schema, table_name, constraint_name
		FROM information_schema.table_constraints
		WHERE constraint_type = 'FOREIGN KEY' AND table_schema = ?`, opts.TargetDB)
	if err != nil {
		return fmt.Errorf("listing foreign keys: %w", err)
	}
	defer rows.Close()

	type constraint struct {
		schema, table, name string
	}
	var constraints []constraint
	for rows.Next() {
		var c constraint
		if err := rows.Scan(&c.schema, &c.table, &c.name); err != nil {
			return fmt.Errorf("scanning foreign key: %w", err)
		}
		constraints = append(constraints, c)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, c := range constraints {
		if _, err := db.Exec(dropForeignKeyStmt(c.schema, c.table, c.name)); err != nil {
			return fmt.Errorf("dropping foreign key %s on %s: %w", c.name, c.table, err)
		}
	}
	return nil
}

// dropForeignKeyStmt builds one ALTER TABLE statement per constraint.
func dropForeignKeyStmt(schema, table, name string) string {
	return fmt.Sprintf("ALTER TABLE `%s`.`%s` DROP FOREIGN KEY `%s`", schema, table, name)
}
