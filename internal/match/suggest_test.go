package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		a        string
		b        string
		expected int
	}{
		{"", "", 0},
		{"range", "range", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"lenght", "length", 1},
		{"nmae", "name", 1},
		{"ab", "ba", 1},
		{"ca", "abc", 3},
		{"patern", "pattern", 1},
		{"ABC", "abc", 3},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.expected, Distance(tt.a, tt.b))
			assert.Equal(t, tt.expected, Distance(tt.b, tt.a), "distance must be symmetric")
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "oneof", Normalize("one_of"))
	assert.Equal(t, "oneof", Normalize("OneOf"))
	assert.Equal(t, "exclusivemin", Normalize("exclusive-min"))
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, Similarity("one_of", "OneOf"), 1e-9)
	assert.InDelta(t, 0.0, Similarity("abc", "xyz"), 1e-9)
	assert.InDelta(t, 1.0-1.0/7.0, Similarity("patern", "pattern"), 1e-9)
}

func TestSuggest(t *testing.T) {
	names := []string{"coerce", "length", "pattern", "range", "trim"}

	got, ok := Suggest("lenght", names)
	assert.True(t, ok)
	assert.Equal(t, "length", got)

	got, ok = Suggest("Range", names)
	assert.True(t, ok)
	assert.Equal(t, "range", got)

	got, ok = Suggest("nmae", []string{"email", "name"})
	assert.True(t, ok)
	assert.Equal(t, "name", got)

	_, ok = Suggest("sanitize", names)
	assert.False(t, ok)

	_, ok = Suggest("x", nil)
	assert.False(t, ok)
}
