package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/quarrylabs/dbcontent/pkg/types"
)

func TestEncodeValue(t *testing.T) {
	assert.Equal(t, int64(1), encodeValue(types.KindBool, true))
	assert.Equal(t, int64(0), encodeValue(types.KindBool, false))
	assert.Equal(t, int64(7), encodeValue(types.KindInt, 7))
	assert.Equal(t, int64(7), encodeValue(types.KindInt, int64(7)))
	assert.Equal(t, float64(2.5), encodeValue(types.KindFloat, float32(2.5)))
	assert.Equal(t, float64(3), encodeValue(types.KindFloat, 3))
	assert.Nil(t, encodeValue(types.KindText, nil))

	stamp := time.Date(2021, 6, 15, 13, 45, 30, 0, time.UTC)
	assert.Equal(t, "2021-06-15", encodeValue(types.KindDate, stamp))
	assert.Equal(t, "13:45:30", encodeValue(types.KindTime, stamp))
	assert.Equal(t, "2021-06-15 13:45:30", encodeValue(types.KindDateTime, stamp))

	// Strings pass through untouched for temporal kinds.
	assert.Equal(t, "2021-06-15", encodeValue(types.KindDate, "2021-06-15"))
}

func TestDecodeValue(t *testing.T) {
	assert.Equal(t, true, decodeValue(types.KindBool, int64(1)))
	assert.Equal(t, false, decodeValue(types.KindBool, int64(0)))
	assert.Equal(t, true, decodeValue(types.KindBool, []byte("1")))
	assert.Equal(t, int64(7), decodeValue(types.KindInt, int64(7)))
	assert.Equal(t, int64(7), decodeValue(types.KindInt, []byte("7")))
	assert.Equal(t, float64(2.5), decodeValue(types.KindFloat, 2.5))
	assert.Equal(t, float64(3), decodeValue(types.KindFloat, int64(3)))
	assert.Equal(t, "hello", decodeValue(types.KindText, []byte("hello")))
	assert.Equal(t, "2000-01-01", decodeValue(types.KindDate, []byte("2000-01-01")))
	assert.Nil(t, decodeValue(types.KindInt, nil))

	stamp := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2000-01-01 00:00:00", decodeValue(types.KindDateTime, stamp))
}

// A value encoded for storage decodes back to the same caller-visible
// value for every kind.
func TestValueRoundTrip(t *testing.T) {
	cases := []struct {
		kind types.ColumnKind
		in   any
		want any
	}{
		{types.KindBool, true, true},
		{types.KindBool, false, false},
		{types.KindInt, 42, int64(42)},
		{types.KindFloat, 1.5, 1.5},
		{types.KindDate, "2000-01-01", "2000-01-01"},
		{types.KindTime, "00:00:00", "00:00:00"},
		{types.KindDateTime, "2000-01-01 00:00:00", "2000-01-01 00:00:00"},
		{types.KindText, "A", "A"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, decodeValue(c.kind, encodeValue(c.kind, c.in)), "kind %s", c.kind)
	}
}
