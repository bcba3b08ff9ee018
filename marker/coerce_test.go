package marker

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hintbind/primitive"
)

type code string

func TestCoerce(t *testing.T) {
	tests := []struct {
		name   string
		marker *CoerceMarker
		value  any
		want   any
		code   string
	}{
		{"text to int", Coerce(primitive.KindInt), "42", 42, ""},
		{"int stays int", Coerce(primitive.KindInt), 42, 42, ""},
		{"padded text", Coerce(primitive.KindInt), " 42 ", 42, ""},
		{"named string type", Coerce(primitive.KindInt), code("7"), 7, ""},
		{"fractional text", Coerce(primitive.KindInt), "4.2", nil, CodeNotConvertible},
		{"integral float", Coerce(primitive.KindInt), 3.0, 3, ""},
		{"fractional float", Coerce(primitive.KindInt), 3.5, nil, CodeNotConvertible},
		{"unsigned to int", Coerce(primitive.KindInt), uint(5), 5, ""},
		{"overflow", Coerce(primitive.KindInt8), int64(300), nil, CodeOverflow},
		{"negative to unsigned", Coerce(primitive.KindUint), -1, nil, CodeOverflow},
		{"text to float", Coerce(primitive.KindFloat64), "1.25", 1.25, ""},
		{"float64 rounds to float32", Coerce(primitive.KindFloat32), 0.1, float32(0.1), ""},
		{"float32 overflow", Coerce(primitive.KindFloat32), 1e300, nil, CodeOverflow},
		{"int to float", Coerce(primitive.KindFloat64), 7, 7.0, ""},
		{"int loses precision as float", Coerce(primitive.KindFloat64), int64(1<<53 + 1), nil, CodeOverflow},
		{"max int64 to uint64", Coerce(primitive.KindUint64), int64(math.MaxInt64), uint64(math.MaxInt64), ""},
		{"max uint64 stays", Coerce(primitive.KindUint64), uint64(math.MaxUint64), uint64(math.MaxUint64), ""},
		{"big float to int", Coerce(primitive.KindInt64), 1e20, nil, CodeOverflow},
		{"int to string", Coerce(primitive.KindString), 42, "42", ""},
		{"float to string", Coerce(primitive.KindString), 1.5, "1.5", ""},
		{"bool to string", Coerce(primitive.KindString), true, "true", ""},
		{"yes", Coerce(primitive.KindBool), "yes", true, ""},
		{"padded off", Coerce(primitive.KindBool), " Off ", false, ""},
		{"maybe", Coerce(primitive.KindBool), "maybe", nil, CodeNotConvertible},
		{"numeric bool not default", Coerce(primitive.KindBool), 1, nil, CodeNotConvertible},
		{"numeric bool", Coerce(primitive.KindBool, primitive.CategoryNumericBool), 1, true, ""},
		{"numeric bool zero", Coerce(primitive.KindBool, primitive.CategoryNumericBool), 0, false, ""},
		{"numeric bool two", Coerce(primitive.KindBool, primitive.CategoryNumericBool), 2, nil, CodeNotConvertible},
		{"date", Coerce(primitive.KindTime), "2024-05-01", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), ""},
		{"datetime", Coerce(primitive.KindTime), "2024-05-01T10:00:00Z", time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), ""},
		{"bad date", Coerce(primitive.KindTime), "May 1st", nil, CodeNotConvertible},
		{"timestamp", Coerce(primitive.KindTime, primitive.CategoryTimestamp), 0, time.Unix(0, 0).UTC(), ""},
		{"duration text", Coerce(primitive.KindDuration), "1m30s", 90 * time.Second, ""},
		{"duration seconds", Coerce(primitive.KindDuration, primitive.CategorySeconds), 1.5, 1500 * time.Millisecond, ""},
		{"duration nanos", Coerce(primitive.KindDuration, primitive.CategoryNanoseconds), 1000, time.Microsecond, ""},
		{"duration to text", Coerce(primitive.KindString), 2 * time.Hour, "2h0m0s", ""},
		{"nil", Coerce(primitive.KindInt), nil, nil, CodeNotConvertible},
		{"slice", Coerce(primitive.KindInt), []int{1}, nil, CodeNotConvertible},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tt.marker.Apply(tt.value)
			if tt.code != "" {
				requireRejection(t, err, tt.code)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestCoerce_Idempotent(t *testing.T) {
	c := Coerce(primitive.KindInt)

	once, err := c.Apply("42")
	require.NoError(t, err)

	twice, err := c.Apply(once)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
	assert.Equal(t, 42, twice)
}

func TestNewCoerce(t *testing.T) {
	_, err := NewCoerce(primitive.KindSlice)
	require.Error(t, err)

	_, err = NewCoerce(primitive.KindAny)
	require.Error(t, err)

	c := Coerce(primitive.KindInt64)
	assert.Equal(t, "coerce[int64]", c.Description())
	assert.Equal(t, primitive.KindInt64, c.Target())
	assert.Equal(t, primitive.SetOf(primitive.KindInt64), c.Accepts())
	assert.True(t, c.Capability().CanTransform())
}
