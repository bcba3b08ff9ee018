// Package diagnostic collects structured errors, warnings and notes found
// while checking marker declarations ahead of time.
//
// Key capabilities:
//   - Unknown or malformed marker specs, with name suggestions
//   - Duplicate markers on one field
//   - Markers attached to fields of a kind they cannot handle
//   - Warnings for markers on fields whose kind is unknown statically
package diagnostic
