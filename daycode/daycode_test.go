package daycode

import (
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyp0633/blocksched/errs"
	"github.com/cyp0633/blocksched/internal/tzdb"
)

func TestEncode_CanonicalTokens(t *testing.T) {
	tests := []struct {
		name     string
		codes    []DayCode
		expected string
	}{
		{"weekdays", []DayCode{Monday, Tuesday, Wednesday, Thursday, Friday}, "8"},
		{"weekend", []DayCode{Saturday, Sunday}, "9"},
		{"all seven", []DayCode{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}, "89"},
		{"tokens", []DayCode{Weekday, Weekend}, "89"},
		{"empty", nil, ""},
		{"none", []DayCode{None}, ""},
		{"singles sorted", []DayCode{Saturday, Monday, Thursday, Monday}, "257"},
		{"weekdays plus saturday", []DayCode{Weekday, Saturday}, "78"},
		{"weekend plus wednesday", []DayCode{Weekend, Wednesday}, "49"},
		{"monday tuesday", []DayCode{Tuesday, Monday}, "23"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Encode(tt.codes...))
		})
	}
}

func TestDecode(t *testing.T) {
	w, err := Decode("89")
	require.NoError(t, err)
	assert.Equal(t, AllDays, w)
	assert.Equal(t, 7, w.Len())

	w, err = Decode("3322")
	require.NoError(t, err)
	assert.Equal(t, []DayCode{Monday, Tuesday}, w.Codes())

	w, err = Decode("")
	require.NoError(t, err)
	assert.True(t, w.Empty())

	w, err = Decode("0")
	require.NoError(t, err)
	assert.True(t, w.Empty())

	_, err = Decode("2a")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrDecode))
}

func TestDecode_EveryDigitString(t *testing.T) {
	for _, s := range []string{"0123456789", "9876543210", "999", "81", "1234567"} {
		_, err := Decode(s)
		assert.NoError(t, err, s)
	}
}

func TestEncodeDecode_SetIdempotence(t *testing.T) {
	// every subset of the seven days
	for mask := 0; mask < 128; mask++ {
		w := Week(mask)
		decoded, err := Decode(w.Encode())
		require.NoError(t, err)
		assert.Equal(t, w, decoded, "mask %07b encoded %q", mask, w.Encode())
	}
}

func TestExpand_Inputs(t *testing.T) {
	codes, err := Expand(Weekday)
	require.NoError(t, err)
	assert.Equal(t, []DayCode{Monday, Tuesday, Wednesday, Thursday, Friday}, codes)

	codes, err = Expand(Weekend)
	require.NoError(t, err)
	assert.Equal(t, []DayCode{Sunday, Saturday}, codes)

	codes, err = Expand(None)
	require.NoError(t, err)
	assert.Empty(t, codes)

	codes, err = Expand(List{Friday, Weekend, Friday})
	require.NoError(t, err)
	assert.Equal(t, []DayCode{Sunday, Friday, Saturday}, codes)

	codes, err = Expand(Set{Wednesday: {}, Monday: {}})
	require.NoError(t, err)
	assert.Equal(t, []DayCode{Monday, Wednesday}, codes)

	codes, err = Expand(Encoded("892"))
	require.NoError(t, err)
	assert.Len(t, codes, 7)

	_, err = Expand(Encoded("x"))
	assert.True(t, errors.Is(err, errs.ErrDecode))
}

func TestEquivalent(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Input
		expected bool
	}{
		{"encodings of all days", Encoded("89"), Encoded("1234567"), true},
		{"list against encoded", List{Saturday, Sunday}, Encoded("9"), true},
		{"order and repeats", Encoded("3232"), Encoded("23"), true},
		{"token against set", Weekday, Set{Monday: {}, Tuesday: {}, Wednesday: {}, Thursday: {}, Friday: {}}, true},
		{"different", Encoded("2"), Encoded("3"), false},
		{"empty and none", Encoded(""), None, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eq, err := Equivalent(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, eq)
		})
	}

	_, err := Equivalent(Encoded("1"), Encoded("1-"))
	assert.Error(t, err)
}

func TestOf(t *testing.T) {
	n := tzdb.NewNormalizer(nil)

	// 2024-01-07 03:00Z is Saturday evening in Denver but Sunday in UTC
	instant := time.Date(2024, 1, 7, 3, 0, 0, 0, time.UTC)

	code, err := Of(n, instant, "America/Denver")
	require.NoError(t, err)
	assert.Equal(t, Saturday, code)

	code, err = Of(n, instant, "UTC")
	require.NoError(t, err)
	assert.Equal(t, Sunday, code)
	assert.True(t, code.Single())
	assert.Equal(t, "sunday", code.String())
}

func TestFromWeekday(t *testing.T) {
	assert.Equal(t, Sunday, FromWeekday(time.Sunday))
	assert.Equal(t, Saturday, FromWeekday(time.Saturday))
	assert.Equal(t, Wednesday, FromWeekday(time.Wednesday))
}
