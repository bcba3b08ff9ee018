// Package match ranks known names against a misspelled one so errors can
// carry a "did you mean" suggestion (unknown marker names, unknown value
// keys in strict binders).
package match
