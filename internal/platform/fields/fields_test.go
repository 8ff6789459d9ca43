package fields

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumber_Coercion(t *testing.T) {
	var in struct {
		A Number `json:"a"`
		B Number `json:"b"`
		C Number `json:"c"`
		D Number `json:"d"`
		E Number `json:"e"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 3, "b": " 4.5 ", "c": "abc", "d": null, "e": true}`), &in))

	v, err := in.A.Float64()
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)

	v, err = in.B.Float64()
	require.NoError(t, err)
	assert.Equal(t, 4.5, v)

	_, err = in.C.Float64()
	assert.ErrorIs(t, err, ErrNotANumber)

	assert.False(t, in.D.Present())
	_, err = in.E.Float64()
	assert.ErrorIs(t, err, ErrNotANumber)

	var missing Number
	p, err := missing.OptionalFloat()
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestNumber_RoundTrip(t *testing.T) {
	b, err := json.Marshal(struct {
		W Number `json:"w"`
	}{W: NumberOf(12.25)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"w": 12.25}`, string(b))
}

func TestParseDateTime(t *testing.T) {
	d, dateOnly, err := ParseDateTime("2026-03-01")
	require.NoError(t, err)
	assert.True(t, dateOnly)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), d)

	z, dateOnly, err := ParseDateTime("2026-03-01T10:30:00Z")
	require.NoError(t, err)
	assert.False(t, dateOnly)
	assert.Equal(t, time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC), z)

	off, _, err := ParseDateTime("2026-03-01T10:30:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC), off)

	naive, _, err := ParseDateTime("2026-03-01T10:30")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, naive.Location())

	_, _, err = ParseDateTime("01/03/2026")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestParseClock(t *testing.T) {
	h, m, err := ParseClock("09:45")
	require.NoError(t, err)
	assert.Equal(t, 9, h)
	assert.Equal(t, 45, m)

	_, _, err = ParseClock("25:00")
	assert.ErrorIs(t, err, ErrInvalidTime)

	at := AtClock(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), h, m)
	assert.Equal(t, time.Date(2026, 3, 1, 9, 45, 0, 0, time.UTC), at)
}
