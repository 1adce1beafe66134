package astro

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLocation(t *testing.T, name string) *time.Location {
	t.Helper()
	tz, err := time.LoadLocation(name)
	require.NoError(t, err)
	return tz
}

func clockMinutes(tm time.Time) float64 {
	return float64(tm.Hour())*60 + float64(tm.Minute()) + float64(tm.Second())/60
}

func TestCalculateNewYorkWinter(t *testing.T) {
	tz := mustLocation(t, "America/New_York")
	date := time.Date(2025, 12, 7, 0, 0, 0, 0, tz)

	st := Calculate(date, 40.7128, -74.006, 0, tz)

	require.False(t, st.Sunrise.IsZero())
	require.False(t, st.Sunset.IsZero())

	// Sunrise ~7:06, sunset ~16:28 EST.
	assert.InDelta(t, 7*60+6, clockMinutes(st.Sunrise), 4)
	assert.InDelta(t, 16*60+28, clockMinutes(st.Sunset), 4)
	assert.Equal(t, tz, st.Sunrise.Location())
	assert.True(t, st.Sunrise.Before(st.SolarNoon))
	assert.True(t, st.SolarNoon.Before(st.Sunset))
	assert.InDelta(t, st.Sunset.Sub(st.Sunrise).Minutes(), st.DayLength.Minutes(), 0.01)
}

func TestCalculateJerusalemSummer(t *testing.T) {
	tz := mustLocation(t, "Asia/Jerusalem")
	date := time.Date(2025, 6, 21, 0, 0, 0, 0, tz)

	st := Calculate(date, 31.778, 35.235, 0, tz)

	require.False(t, st.Sunrise.IsZero())
	require.False(t, st.Sunset.IsZero())

	// Sunrise ~5:34, sunset ~19:47 IDT at sea level.
	assert.InDelta(t, 5*60+34, clockMinutes(st.Sunrise), 4)
	assert.InDelta(t, 19*60+47, clockMinutes(st.Sunset), 4)
	assert.Greater(t, st.DayLength.Hours(), 14.0)
}

func TestElevationWidensDay(t *testing.T) {
	tz := mustLocation(t, "Asia/Jerusalem")
	date := time.Date(2025, 3, 15, 0, 0, 0, 0, tz)

	sea := Calculate(date, 31.778, 35.235, 0, tz)
	hill := Calculate(date, 31.778, 35.235, 800, tz)

	assert.True(t, hill.Sunrise.Before(sea.Sunrise), "elevation should advance sunrise")
	assert.True(t, hill.Sunset.After(sea.Sunset), "elevation should delay sunset")
	assert.Greater(t, hill.DayLength, sea.DayLength)
}

func TestDip(t *testing.T) {
	assert.Zero(t, Dip(0))
	assert.Zero(t, Dip(-50))
	assert.InDelta(t, 0.91, Dip(800), 0.02)
	assert.Greater(t, Dip(2000), Dip(800))
}

func TestAtAngleOrdering(t *testing.T) {
	tz := mustLocation(t, "America/New_York")
	date := time.Date(2025, 9, 10, 0, 0, 0, 0, tz)
	lat, lon := 40.7128, -74.006

	st := Calculate(date, lat, lon, 0, tz)
	dawn16, dusk16 := AtAngle(date, lat, lon, 16.1, tz)
	dawn8, dusk8 := AtAngle(date, lat, lon, 8.5, tz)

	require.False(t, dawn16.IsZero())
	require.False(t, dusk16.IsZero())

	assert.True(t, dawn16.Before(dawn8), "deeper twilight begins earlier")
	assert.True(t, dawn8.Before(st.Sunrise))
	assert.True(t, st.Sunset.Before(dusk8))
	assert.True(t, dusk8.Before(dusk16), "deeper twilight ends later")
}

func TestAtAngleWithElevation(t *testing.T) {
	tz := mustLocation(t, "Asia/Jerusalem")
	date := time.Date(2025, 6, 1, 0, 0, 0, 0, tz)
	lat, lon := 31.778, 35.235

	flat, _ := AtAngle(date, lat, lon, 16.1, tz)
	raised, _ := AtAngleWithElevation(date, lat, lon, 16.1, 800, tz)

	require.False(t, flat.IsZero())
	require.False(t, raised.IsZero())
	assert.True(t, raised.Before(flat), "dip should deepen the effective angle")
}

func TestPolarNightNoCrossing(t *testing.T) {
	tz := mustLocation(t, "Europe/Oslo")
	// Tromso in late December: the sun never rises.
	date := time.Date(2025, 12, 21, 0, 0, 0, 0, tz)

	st := Calculate(date, 69.6492, 18.9553, 0, tz)

	assert.True(t, st.Sunrise.IsZero())
	assert.True(t, st.Sunset.IsZero())
	assert.Zero(t, st.DayLength)
	assert.False(t, st.SolarNoon.IsZero(), "solar noon exists even in polar night")
}

func TestDeepTwilightNeverReachedInHighLatitudeSummer(t *testing.T) {
	tz := mustLocation(t, "Europe/London")
	// London in midsummer: the sun stays above -16.1 degrees all night.
	date := time.Date(2025, 6, 21, 0, 0, 0, 0, tz)

	dawn, dusk := AtAngle(date, 51.5074, -0.1278, 16.1, tz)

	assert.True(t, dawn.IsZero())
	assert.True(t, dusk.IsZero())

	// Visible sunrise still happens.
	st := Calculate(date, 51.5074, -0.1278, 0, tz)
	assert.False(t, st.Sunrise.IsZero())
}

func TestEquatorEquinoxDayLength(t *testing.T) {
	tz := time.UTC
	date := time.Date(2025, 3, 20, 0, 0, 0, 0, tz)

	st := Calculate(date, 0, 0, 0, tz)

	require.False(t, st.Sunrise.IsZero())
	assert.InDelta(t, 12*60, st.DayLength.Minutes(), 10)
}

func TestSolarMidnight(t *testing.T) {
	tz := mustLocation(t, "America/New_York")
	date := time.Date(2025, 12, 7, 0, 0, 0, 0, tz)

	noon := SolarNoon(date, -74.006, tz)
	midnight := SolarMidnight(date, -74.006, tz)

	assert.Equal(t, -12*time.Hour, midnight.Sub(noon))
}
