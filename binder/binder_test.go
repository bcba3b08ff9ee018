package binder

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"hintbind/failure"
	"hintbind/hint"
	"hintbind/marker"
	"hintbind/primitive"
)

func person(t *testing.T) *hint.Target {
	t.Helper()

	target, err := hint.Module("person",
		hint.Of[int]("age", marker.Range(0, 120)),
		hint.Of[string]("name", marker.Length(1, 50)),
	)
	require.NoError(t, err)

	return target
}

func TestBind_Success(t *testing.T) {
	b, err := Build(person(t))
	require.NoError(t, err)

	got, err := b.Bind(map[string]any{"age": 30, "name": "Ann"})
	require.NoError(t, err)

	if diff := cmp.Diff(Values{"age": 30, "name": "Ann"}, got); diff != "" {
		t.Errorf("bound values mismatch (-want +got):\n%s", diff)
	}
}

func TestBind_AllFailuresReported(t *testing.T) {
	b, err := Build(person(t))
	require.NoError(t, err)

	got, err := b.Bind(map[string]any{"age": 200, "name": ""})
	assert.Nil(t, got)

	var agg *failure.AggregateFailure
	require.True(t, errors.As(err, &agg))
	require.Len(t, agg.Failures, 2)
	assert.Equal(t, []string{"age", "name"}, agg.Fields())
	assert.Equal(t, "person", agg.Target)

	var age *failure.MarkerFailure
	require.True(t, errors.As(agg.Failures[0], &age))
	assert.Equal(t, "person", age.Target)
	assert.Equal(t, "age", age.Field)
	assert.Equal(t, "range[0 <= ? <= 120]", age.Marker)
	assert.Equal(t, 200, age.Value)

	var rej *marker.Rejection
	require.True(t, errors.As(agg.Failures[1], &rej))
	assert.Equal(t, marker.CodeLengthOutOfRange, rej.Code)
}

func TestBind_MissingAndOptional(t *testing.T) {
	target, err := hint.Module("settings",
		hint.Of[string]("host", marker.Length(1, -1)),
		hint.Of[int]("port", marker.Range(1, 65535)).WithDefault(8080),
		hint.Of[string]("user").AsOptional(),
	)
	require.NoError(t, err)

	b := MustBuild(target)

	got, err := b.Bind(map[string]any{"host": "localhost"})
	require.NoError(t, err)
	assert.Equal(t, Values{"host": "localhost", "port": 8080}, got)

	got, err = b.Bind(map[string]any{"host": "localhost", "port": 70000, "user": "root"})
	assert.Nil(t, got)
	assert.Equal(t, []string{"port"}, err.(*failure.AggregateFailure).Fields())

	_, err = b.Bind(nil)

	var missing *failure.MissingValueError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "host", missing.Field)
}

func TestBind_ExplicitNil(t *testing.T) {
	target, err := hint.Module("settings",
		hint.Of[string]("host", marker.Length(1, -1)),
		hint.Of[int]("port", marker.Range(1, 65535)).WithDefault(8080),
		hint.Of[string]("user", marker.Length(1, -1)).AsOptional(),
	)
	require.NoError(t, err)

	b := MustBuild(target)

	got, err := b.Bind(map[string]any{"host": "localhost", "port": nil, "user": nil})
	require.NoError(t, err)
	assert.Equal(t, Values{"host": "localhost", "port": 8080}, got)

	// a required hint still runs its chain on nil
	_, err = b.Bind(map[string]any{"host": nil})
	require.Error(t, err)
	assert.Equal(t, []string{"host"}, err.(*failure.AggregateFailure).Fields())
}

func TestBind_DefaultFunc(t *testing.T) {
	calls := 0

	target, err := hint.Module("post",
		hint.Of[[]string]("tags").WithDefaultFunc(func() any {
			calls++
			return []string{}
		}),
	)
	require.NoError(t, err)

	b := MustBuild(target)

	first, err := b.Bind(nil)
	require.NoError(t, err)

	second, err := b.Bind(map[string]any{"tags": nil})
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	assert.Equal(t, []string{}, first["tags"])

	first["tags"] = append(first["tags"].([]string), "go")
	assert.Empty(t, second["tags"])
}

func TestBind_Strict(t *testing.T) {
	b, err := Build(person(t), WithStrict())
	require.NoError(t, err)

	_, err = b.Bind(map[string]any{"age": 30, "name": "Ann", "nmae": "x", "zzz": 1})

	var agg *failure.AggregateFailure
	require.True(t, errors.As(err, &agg))
	require.Len(t, agg.Failures, 2)

	var unknown *failure.UnknownValueError
	require.True(t, errors.As(agg.Failures[0], &unknown))
	assert.Equal(t, "nmae", unknown.Field)
	assert.Equal(t, "name", unknown.Suggestion)

	lenient := MustBuild(person(t))
	_, err = lenient.Bind(map[string]any{"age": 30, "name": "Ann", "nmae": "x"})
	require.NoError(t, err, "unknown keys are ignored unless strict")
}

func TestBind_Transforms(t *testing.T) {
	target, err := hint.Module("form",
		hint.Of[int]("age", marker.Coerce(primitive.KindInt), marker.Range(0, 120)),
		hint.Of[string]("email", marker.Trim(), marker.Lower(), marker.Pattern(`[^@]+@[^@]+`)),
	)
	require.NoError(t, err)

	got, err := MustBuild(target).Bind(map[string]any{"age": "42", "email": "  Ann@Example.ORG "})
	require.NoError(t, err)
	assert.Equal(t, Values{"age": 42, "email": "ann@example.org"}, got)
}

func TestBuild_ResolutionErrors(t *testing.T) {
	target, err := hint.Module("broken",
		hint.Of[int]("a", marker.Range(0, 10), marker.Range(0, 10)),
		hint.Of[string]("b", marker.Min(1)),
	)
	require.NoError(t, err)

	_, err = Build(target)
	require.Error(t, err)

	var (
		conflict *failure.ConflictError
		mismatch *failure.TypeMismatchError
	)

	assert.True(t, errors.As(err, &conflict))
	assert.True(t, errors.As(err, &mismatch))
	assert.ErrorIs(t, err, failure.ErrResolution)

	_, err = Build(nil)
	require.Error(t, err)
	assert.Panics(t, func() { MustBuild(target) })
}

func TestBinder_Chains(t *testing.T) {
	b := MustBuild(person(t))

	c, ok := b.Chain("age")
	require.True(t, ok)
	assert.Equal(t, 1, c.Len())

	_, ok = b.Chain("nope")
	assert.False(t, ok)
	assert.Len(t, b.Chains(), 2)
	assert.Equal(t, "person", b.Target().Name)
}

func TestBind_Concurrent(t *testing.T) {
	b := MustBuild(person(t))

	var wg sync.WaitGroup

	for i := range 50 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			got, err := b.Bind(map[string]any{"age": i, "name": "Ann"})
			assert.NoError(t, err)
			assert.Equal(t, i, got["age"])
		}()
	}

	wg.Wait()
}

func TestWithLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	b, err := Build(person(t), WithLogger(zap.New(core)))
	require.NoError(t, err)

	_, _ = b.Bind(map[string]any{"age": -1, "name": "Ann"})

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "binder built", entries[0].Message)
	assert.Equal(t, "bind failed", entries[1].Message)
	assert.Equal(t, int64(1), entries[1].ContextMap()["failures"])
}

func TestCache(t *testing.T) {
	cache := NewCache(WithStrict())
	target := person(t)

	var (
		wg      sync.WaitGroup
		binders sync.Map
		count   atomic.Int32
	)

	for range 20 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			b, err := cache.Get(target)
			if assert.NoError(t, err) {
				binders.Store(b, struct{}{})
				count.Add(1)
			}
		}()
	}

	wg.Wait()

	distinct := 0
	binders.Range(func(any, any) bool { distinct++; return true })

	assert.Equal(t, int32(20), count.Load())
	assert.Equal(t, 1, distinct, "every caller gets the same binder")
	assert.Equal(t, 1, cache.Len())

	rebuilt := MustBuild(target)
	cached, _ := cache.Get(target)
	assert.Equal(t, rebuilt.Chains()[0].String(), cached.Chains()[0].String())

	_, err := cache.Get(&hint.Target{Name: "bad", Hints: []hint.Hint{hint.Of[string]("x", marker.Min(1))}})
	require.Error(t, err)
	assert.Equal(t, 1, cache.Len(), "failed builds are not cached")
}

func TestCache_Lookup(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	reg := hint.NewRegistry()
	require.NoError(t, reg.Add(person(t)))

	cache := NewCache()

	b, err := cache.Lookup(ctx, reg, "person")
	require.NoError(t, err)

	again, err := cache.Lookup(ctx, reg, "person")
	require.NoError(t, err)
	assert.Same(t, b, again)

	_, err = cache.Lookup(ctx, reg, "nobody")
	assert.ErrorIs(t, err, hint.ErrTargetNotFound)
}
