package marker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hintbind/failure"
	"hintbind/primitive"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"42", 42},
		{"-3", -3},
		{"1.5", 1.5},
		{"true", true},
		{"false", false},
		{"2024-05-01T00:00:00Z", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
		{"10s", 10 * time.Second},
		{"inf", "inf"},
		{"abc", "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseValue(tt.in))
		})
	}
}

func TestRegistry_Parse(t *testing.T) {
	markers, err := NewRegistry().Parse("coerce(int); range(0, 120)@10")
	require.NoError(t, err)
	require.Len(t, markers, 2)

	c, ok := markers[0].(*CoerceMarker)
	require.True(t, ok)
	assert.Equal(t, primitive.KindInt, c.Target())
	assert.Equal(t, 0, c.Priority())

	assert.Equal(t, 10, markers[1].Priority())
	assert.True(t, Same(markers[1], Range(0, 120)))
}

func TestRegistry_Builtins(t *testing.T) {
	tests := []struct {
		spec    string
		desc    string
		accept  any
		refuse  any
		refCode string
	}{
		{"length(eq=3, unit=bytes)", "length[3 <= ? <= 3] in bytes", "abc", "héé", CodeLengthOutOfRange},
		{"length(min=2)", "length[2 <= ?]", "ab", "a", CodeLengthOutOfRange},
		{"length(1, 3)", "length[1 <= ? <= 3]", "a", "", CodeLengthOutOfRange},
		{"pattern('[a-z]+(,[a-z]+)*')", "pattern[[a-z]+(,[a-z]+)*]", "a,b", "a,", CodeNotMatched},
		{`pattern(\d+)`, `pattern[\d+]`, "12", "x", CodeNotMatched},
		{"oneof(red, green, 3)", "oneof[red, green, 3]", 3, "blue", CodeNotFound},
		{"min(0, exclusive_min=true)", "range[0 < ?]", 1, 0, CodeOutOfRange},
		{"max(10)", "range[? <= 10]", 10, 11, CodeOutOfRange},
		{"range(_, 10)", "range[? <= 10]", -5, 11, CodeOutOfRange},
		{"range(min=1.5)", "range[1.5 <= ?]", 2, 1, CodeOutOfRange},
		{"equal('42')", "equal[42]", "42", 42, CodeNotEqual},
		{"coerce(bool, textual-bool)", "coerce[bool]", "yes", "maybe", CodeNotConvertible},
		{"trim", "trim", " a ", 1, CodeNotString},
		{"normalize", "normalize[nfc]", "a", 1, CodeNotString},
		{"sanitize(ugc)", "sanitize[ugc]", "<i>a</i>", 1, CodeNotString},
	}

	r := NewRegistry()

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			markers, err := r.Parse(tt.spec)
			require.NoError(t, err)
			require.Len(t, markers, 1)

			m := markers[0]
			assert.Equal(t, tt.desc, m.Description())

			_, err = m.Apply(tt.accept)
			require.NoError(t, err)

			_, err = m.Apply(tt.refuse)
			requireRejection(t, err, tt.refCode)
		})
	}
}

func TestRegistry_Errors(t *testing.T) {
	r := NewRegistry()

	_, err := r.Parse("rangee(0, 1)")

	var unknown *UnknownMarkerError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "rangee", unknown.Name)
	assert.Equal(t, "range", unknown.Suggestion)
	assert.ErrorIs(t, err, failure.ErrResolution)
	assert.Contains(t, err.Error(), `did you mean "range"`)

	for _, spec := range []string{
		"range(10, 0)",
		"range",
		"length(unit=parsecs, max=3)",
		"length(min=a)",
		"coerce(int, bogus)",
		"coerce(widget)",
		"coerce",
		"pattern('(')",
		"oneof",
		"min(1, exclusive_min=yes)",
		"range(0, 1",
	} {
		t.Run(spec, func(t *testing.T) {
			_, err := r.Parse(spec)
			require.Error(t, err)
		})
	}
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	even := Check("even", func(n int) bool { return n%2 == 0 })
	require.NoError(t, r.Register("even", func(Args) (Marker, error) { return even, nil }))
	require.Error(t, r.Register("even", func(Args) (Marker, error) { return even, nil }))
	require.Error(t, r.Register("range", buildRange))
	require.Error(t, r.Register("nil", nil))

	markers, err := r.Parse("even@-1")
	require.NoError(t, err)
	require.Len(t, markers, 1)
	assert.Equal(t, -1, markers[0].Priority())

	assert.Contains(t, r.Names(), "even")
	assert.NotContains(t, NewRegistry().Names(), "even", "registries are independent")
	assert.IsIncreasing(t, r.Names())
	assert.Same(t, Default(), Default())
}

func TestArgs(t *testing.T) {
	a := Args{Positional: []any{1, "x"}, Named: map[string]any{"max": 7}}

	v, ok := a.Value(1, "max")
	require.True(t, ok)
	assert.Equal(t, 7, v, "named arguments win")

	s, ok := a.Str(0, "")
	require.True(t, ok)
	assert.Equal(t, "1", s)

	_, ok, err := a.Int(5, "none")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = a.Int(1, "")
	require.Error(t, err)
}
