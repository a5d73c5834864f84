// Package types defines the reflected-schema model, row values, the
// connection-URI safety check, and the standard errors shared by the
// dbcontent session manager, fixture surface, and CLI.
package types
