package binder

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hintbind/failure"
	"hintbind/hint"
	"hintbind/marker"
)

type Level string

type Account struct {
	Age     int8          `json:"age" mark:"coerce(int8); range(0, 120)"`
	Name    string        `json:"name" mark:"trim; length(1, 50)"`
	Level   Level         `json:"level" mark:"oneof(debug, info)"`
	Nick    *string       `json:"nick"`
	Timeout time.Duration `json:"timeout" mark:"coerce(duration)"`
	Skipped string        `mark:"-"`
}

func TestDecode(t *testing.T) {
	b := MustBuild(hint.MustStruct(Account{}))

	var acc Account
	err := b.Decode(map[string]any{
		"age":     "42",
		"name":    "  Ann ",
		"level":   "info",
		"nick":    "annie",
		"timeout": "1m",
	}, &acc)
	require.NoError(t, err)

	assert.Equal(t, int8(42), acc.Age)
	assert.Equal(t, "Ann", acc.Name)
	assert.Equal(t, Level("info"), acc.Level)
	require.NotNil(t, acc.Nick)
	assert.Equal(t, "annie", *acc.Nick)
	assert.Equal(t, time.Minute, acc.Timeout)
}

func TestDecode_Failures(t *testing.T) {
	b := MustBuild(hint.MustStruct(Account{}))

	acc := Account{Name: "keep"}
	err := b.Decode(map[string]any{"age": 300, "name": "", "level": "trace", "timeout": "1m"}, &acc)

	var agg *failure.AggregateFailure
	require.True(t, errors.As(err, &agg))
	assert.Equal(t, []string{"age", "name", "level"}, agg.Fields())
	assert.Equal(t, "keep", acc.Name, "nothing is assigned when binding fails")

	require.Error(t, b.Decode(map[string]any{}, acc), "non pointer destination")

	type Other struct{ Age int }
	require.Error(t, b.Decode(map[string]any{}, &Other{}), "destination of another type")
}

type Audit struct {
	ID int `json:"id" mark:"min(1)"`
}

type Member struct {
	*Audit
	Tags   []string       `json:"tags"`
	Scores map[string]int `json:"scores"`
	Pair   [2]int         `json:"pair"`
}

func TestDecode_EmbeddedPointer(t *testing.T) {
	b := MustBuild(hint.MustStruct(Member{}))

	var m Member
	err := b.Decode(map[string]any{
		"id":     3,
		"tags":   []any{"a", "b"},
		"scores": map[string]any{"x": 1.0},
		"pair":   []any{1, 2},
	}, &m)
	require.NoError(t, err)

	require.NotNil(t, m.Audit)
	assert.Equal(t, 3, m.ID)
	assert.Equal(t, []string{"a", "b"}, m.Tags)
	assert.Equal(t, map[string]int{"x": 1}, m.Scores)
	assert.Equal(t, [2]int{1, 2}, m.Pair)
}

func TestDecode_Collections(t *testing.T) {
	b := MustBuild(hint.MustStruct(Member{}))

	base := func() map[string]any {
		return map[string]any{"id": 1, "tags": []any{}, "scores": map[string]any{}, "pair": []any{1, 2}}
	}

	values := base()
	values["pair"] = []any{1}
	require.ErrorContains(t, b.Decode(values, &Member{}), "cannot assign 1 elements")

	values = base()
	values["tags"] = []any{"a", 3}
	require.ErrorContains(t, b.Decode(values, &Member{}), "tags: [1]")

	values = base()
	values["scores"] = map[string]any{"x": 1.5}
	require.ErrorContains(t, b.Decode(values, &Member{}), "[x]")

	var m Member
	require.NoError(t, b.Decode(base(), &m))
	assert.Empty(t, m.Tags)
	assert.NotNil(t, m.Tags)
}

func TestCall(t *testing.T) {
	greet := func(name string, times int) string { return strings.Repeat(name, times) }

	target, err := hint.Function("greet", greet,
		hint.Param("name", marker.Trim(), marker.Length(1, 10)),
		hint.Param("times", marker.Range(1, 3)).WithDefault(1),
	)
	require.NoError(t, err)

	b := MustBuild(target)

	out, err := b.Call(greet, map[string]any{"name": " ab "})
	require.NoError(t, err)
	assert.Equal(t, []any{"ab"}, out)

	out, err = b.Call(greet, map[string]any{"name": "ab", "times": 3})
	require.NoError(t, err)
	assert.Equal(t, []any{"ababab"}, out)

	_, err = b.Call(greet, map[string]any{"name": "ab", "times": 5})
	assert.ErrorIs(t, err, failure.ErrValidation)

	_, err = b.Call(42, nil)
	require.Error(t, err)

	_, err = b.Call(func() {}, nil)
	require.Error(t, err)
}

func TestCall_Variadic(t *testing.T) {
	join := func(sep string, parts ...string) string { return strings.Join(parts, sep) }

	target, err := hint.Function("join", join,
		hint.Param("sep"),
		hint.Param("parts", marker.Length(1, -1)),
	)
	require.NoError(t, err)

	out, err := MustBuild(target).Call(join, map[string]any{"sep": ",", "parts": []string{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, []any{"a,b"}, out)
}
