// Package definition reads hint targets from YAML or TOML files, so that
// markers can be declared for data that has no Go type.
//
// # Schema Overview
//
//	version: "1"
//	requires: ">= 0.3"          # optional library version constraint
//	targets:
//	  - name: signup
//	    kind: module              # struct, function or module (default)
//	    fields:
//	      - name: age
//	        type: int
//	        marks: "coerce(int); range(0, 120)"
//	      - name: email
//	        type: string
//	        marks:                # one spec or a list of specs
//	          - trim
//	          - lower
//	          - pattern('[^@ ]+@[^@ ]+')
//	      - name: newsletter
//	        type: bool
//	        default: false        # implies optional
//
// The TOML form uses the same keys with [[targets]] and
// [[targets.fields]] tables. Marker specs use the grammar of the `mark`
// struct tag and are resolved against a marker.Registry.
package definition
