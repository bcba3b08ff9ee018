package failure

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hintbind/primitive"
)

func TestSentinels(t *testing.T) {
	resolution := []error{
		&ConflictError{Hint: "age", First: "range[0 <= ? <= 10]", Second: "range[0 <= ? <= 10]", SecondPosition: 1},
		&TypeMismatchError{Hint: "name", Marker: "range[0 <= ?]", Declared: primitive.KindString, Accepts: primitive.NumberKinds},
	}

	for _, err := range resolution {
		assert.ErrorIs(t, err, ErrResolution)
		assert.NotErrorIs(t, err, ErrValidation)
	}

	validation := []error{
		&MissingValueError{Target: "User", Field: "age"},
		&UnknownValueError{Target: "User", Field: "agee"},
		&MarkerFailure{Field: "age", Marker: "range[0 <= ? <= 120]", Value: 200, Err: errors.New("value outside of range")},
	}

	for _, err := range validation {
		assert.ErrorIs(t, err, ErrValidation)
		assert.NotErrorIs(t, err, ErrResolution)
	}
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "User.age: missing required value",
		(&MissingValueError{Target: "User", Field: "age"}).Error())
	assert.Equal(t, `User.agee: no such field, did you mean "age"?`,
		(&UnknownValueError{Target: "User", Field: "agee", Suggestion: "age"}).Error())
	assert.Equal(t, "name: no such field",
		(&UnknownValueError{Field: "name"}).Error())
	assert.Equal(t, `range[0 <= ?]: value outside of range (value -1)`,
		(&MarkerFailure{Marker: "range[0 <= ?]", Value: -1, Err: errors.New("value outside of range")}).Error())
	assert.Contains(t,
		(&ConflictError{Hint: "age", First: "a", Second: "b", FirstPosition: 0, SecondPosition: 2}).Error(),
		"position 2")
	assert.Contains(t,
		(&TypeMismatchError{Hint: "name", Marker: "pattern[x]", Declared: primitive.KindInt, Accepts: primitive.SetOf(primitive.KindString)}).Error(),
		"declared type is int")
}

func TestMarkerFailure_Unwrap(t *testing.T) {
	reason := errors.New("too small")
	mf := &MarkerFailure{Marker: "min", Value: 1, Err: reason}

	assert.ErrorIs(t, mf, reason)

	moved := mf.WithField("User", "age")
	assert.Equal(t, "age", moved.Field)
	assert.Equal(t, "User", moved.Target)
	assert.Empty(t, mf.Field, "WithField must not modify the receiver")
}

func TestAggregateFailure(t *testing.T) {
	ageRange := &MarkerFailure{Target: "User", Field: "age", Marker: "range", Value: 200, Err: errors.New("out")}
	ageMissing := &MissingValueError{Target: "User", Field: "age"}
	name := &MarkerFailure{Target: "User", Field: "name", Marker: "length", Value: "", Err: errors.New("short")}

	agg := &AggregateFailure{Target: "User", Failures: []error{ageRange, name, ageMissing}}

	assert.Equal(t, []string{"age", "name"}, agg.Fields())
	assert.Equal(t, []error{ageRange, ageMissing}, agg.For("age"))
	assert.Empty(t, agg.For("email"))
	assert.Contains(t, agg.Error(), "3 field(s) failed")

	var err error = fmt.Errorf("bind: %w", agg)

	var mf *MarkerFailure
	require.True(t, errors.As(err, &mf))
	assert.Same(t, ageRange, mf)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "age", FieldOf(ageMissing))
	assert.Empty(t, FieldOf(errors.New("plain")))
}
