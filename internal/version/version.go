// Package version holds the library version, used by the CLI and to check
// the `requires` constraint of definition files.
package version

import (
	"fmt"

	goversion "github.com/hashicorp/go-version"
)

// Version is overridden at link time with -ldflags "-X hintbind/internal/version.Version=...".
var Version = "0.3.0"

// Current parses Version.
func Current() (*goversion.Version, error) {
	v, err := goversion.NewVersion(Version)
	if err != nil {
		return nil, fmt.Errorf("invalid library version %q: %w", Version, err)
	}

	return v, nil
}

// Satisfies reports whether the library version meets constraint, e.g.
// ">= 0.2, < 1.0". An empty constraint is always met.
func Satisfies(constraint string) (bool, error) {
	if constraint == "" {
		return true, nil
	}

	c, err := goversion.NewConstraint(constraint)
	if err != nil {
		return false, fmt.Errorf("invalid version constraint %q: %w", constraint, err)
	}

	v, err := Current()
	if err != nil {
		return false, err
	}

	return c.Check(v), nil
}
