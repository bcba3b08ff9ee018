// Package common holds small helpers shared by the internal packages.
package common

import "path"

// UnknownStr is what String methods print for out-of-range enum values.
const UnknownStr = "unknown"

// PkgAlias returns the package alias (last element of path) for a given package path.
// Returns empty string if pkgPath is empty.
func PkgAlias(pkgPath string) string {
	if pkgPath == "" {
		return ""
	}

	return path.Base(pkgPath)
}

// Qualified names a type by its package alias: "store.Order".
func Qualified(pkgPath, name string) string {
	if alias := PkgAlias(pkgPath); alias != "" {
		return alias + "." + name
	}

	return name
}
