package tzdb

import (
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyp0633/blocksched/errs"
)

func TestNormalizer_LocalFields(t *testing.T) {
	n := NewNormalizer(nil)

	// 2024-07-01 17:00Z is 11:00 MDT
	f, err := n.LocalFields(time.Date(2024, 7, 1, 17, 0, 0, 0, time.UTC), "America/Denver")
	require.NoError(t, err)
	assert.Equal(t, LocalFields{Year: 2024, Month: time.July, Day: 1, Hour: 11}, f)

	back, err := n.InstantFromLocalFields(f, "America/Denver")
	require.NoError(t, err)
	assert.True(t, back.Equal(time.Date(2024, 7, 1, 17, 0, 0, 0, time.UTC)))
}

func TestNormalizer_AmbiguousPrefersEarlier(t *testing.T) {
	n := NewNormalizer(nil)

	// 01:30 happens twice in Denver on 2024-11-03: 07:30Z (MDT) and 08:30Z (MST)
	got, err := n.InstantFromLocalFields(LocalFields{Year: 2024, Month: time.November, Day: 3, Hour: 1, Minute: 30}, "America/Denver")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2024, 11, 3, 7, 30, 0, 0, time.UTC)), "got %s", got.UTC())
}

func TestNormalizer_GapMovesForward(t *testing.T) {
	n := NewNormalizer(nil)

	// 02:30 does not exist in Denver on 2024-03-10; read with MST it is 09:30Z, 03:30 MDT
	got, err := n.InstantFromLocalFields(LocalFields{Year: 2024, Month: time.March, Day: 10, Hour: 2, Minute: 30}, "America/Denver")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)), "got %s", got.UTC())

	f, err := n.LocalFields(got, "America/Denver")
	require.NoError(t, err)
	assert.Equal(t, 3, f.Hour)
	assert.Equal(t, 30, f.Minute)
}

func TestNormalizer_StartOfLocalDay(t *testing.T) {
	n := NewNormalizer(nil)

	tests := []struct {
		name     string
		instant  time.Time
		tz       string
		expected time.Time
	}{
		{
			name:     "UTC short circuit",
			instant:  time.Date(2024, 1, 5, 15, 4, 5, 0, time.UTC),
			tz:       "UTC",
			expected: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "local day differs from UTC day",
			instant:  time.Date(2024, 1, 5, 3, 0, 0, 0, time.UTC), // Jan 4 20:00 MST
			tz:       "America/Denver",
			expected: time.Date(2024, 1, 4, 7, 0, 0, 0, time.UTC),
		},
		{
			name:     "spring forward day",
			instant:  time.Date(2024, 3, 10, 20, 0, 0, 0, time.UTC),
			tz:       "America/Denver",
			expected: time.Date(2024, 3, 10, 7, 0, 0, 0, time.UTC),
		},
		{
			name:     "fall back day",
			instant:  time.Date(2024, 11, 3, 20, 0, 0, 0, time.UTC),
			tz:       "America/Denver",
			expected: time.Date(2024, 11, 3, 6, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := n.StartOfLocalDay(tt.instant, tt.tz)
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(got), "expected %s, got %s", tt.expected, got.UTC())
		})
	}
}

func TestNormalizer_DaysBetween(t *testing.T) {
	n := NewNormalizer(nil)

	// Across the fall-back transition the instants are 24h+1h apart but one day
	a := time.Date(2024, 11, 2, 17, 0, 0, 0, time.UTC) // Nov 2 11:00 MDT
	b := time.Date(2024, 11, 3, 18, 0, 0, 0, time.UTC) // Nov 3 11:00 MST
	days, err := n.DaysBetween(a, b, "America/Denver")
	require.NoError(t, err)
	assert.Equal(t, 1, days)

	days, err = n.DaysBetween(b, a, "America/Denver")
	require.NoError(t, err)
	assert.Equal(t, -1, days)
}

func TestNormalizer_WallRoundTrip(t *testing.T) {
	n := NewNormalizer(nil)
	instant := time.Date(2023, 8, 15, 5, 0, 0, 0, time.UTC)

	wall, err := n.ToWall(instant, "America/Chicago")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 8, 15, 0, 0, 0, 0, time.UTC), wall)
	assert.Equal(t, time.Duration(0), TimeOfDay(wall))

	back, err := n.FromWall(wall, "America/Chicago")
	require.NoError(t, err)
	assert.True(t, back.Equal(instant))
}

func TestNormalizer_UnknownZone(t *testing.T) {
	n := NewNormalizer(FixedDatabase{})

	_, err := n.LocalFields(time.Now(), "Europe/Berlin")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrInvalidTiming))

	// UTC never needs the table
	_, err = n.LocalFields(time.Now(), "UTC")
	assert.NoError(t, err)
}

func TestFixedDatabase_Injected(t *testing.T) {
	zone := time.FixedZone("Plus5", 5*60*60)
	n := NewNormalizer(FixedDatabase{"Test/Plus5": zone})

	start, err := n.StartOfLocalDay(time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC), "Test/Plus5")
	require.NoError(t, err)
	assert.True(t, start.Equal(time.Date(2024, 6, 1, 19, 0, 0, 0, time.UTC)), "got %s", start.UTC())
}

func TestSystemDatabase_Caches(t *testing.T) {
	db := NewSystemDatabase()

	first, err := db.Location("Asia/Tokyo")
	require.NoError(t, err)
	second, err := db.Location("Asia/Tokyo")
	require.NoError(t, err)
	assert.Same(t, first, second)

	_, err = db.Location("Not/AZone")
	assert.Error(t, err)
}

func TestNormalizer_SkippedDay(t *testing.T) {
	n := NewNormalizer(nil)
	apia, err := time.LoadLocation("Pacific/Apia")
	require.NoError(t, err)

	// Samoa went from 2011-12-29 23:59 (-10) straight to 2011-12-31 00:00 (+14)
	day, skipped, err := n.SkippedDay(
		time.Date(2011, 12, 28, 9, 0, 0, 0, apia),
		time.Date(2012, 1, 2, 9, 0, 0, 0, apia),
		"Pacific/Apia")
	require.NoError(t, err)
	require.True(t, skipped)
	assert.Equal(t, time.Date(2011, 12, 30, 0, 0, 0, 0, time.UTC), day)

	// after the jump every day exists
	_, skipped, err = n.SkippedDay(
		time.Date(2011, 12, 31, 9, 0, 0, 0, apia),
		time.Date(2012, 12, 31, 9, 0, 0, 0, apia),
		"Pacific/Apia")
	require.NoError(t, err)
	assert.False(t, skipped)

	for _, tz := range []string{"UTC", "America/Denver", "Australia/Sydney"} {
		_, skipped, err := n.SkippedDay(
			time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			tz)
		require.NoError(t, err)
		assert.False(t, skipped, tz)
	}
}
