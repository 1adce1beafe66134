package engine

import (
	"time"

	"github.com/jcom-dev/zmanim/pkg/astro"
)

// Options tweaks how a context resolves astronomical primitives.
type Options struct {
	// IgnoreElevation forces sea-level calculations even when the context
	// carries an observer elevation.
	IgnoreElevation bool
}

// Context carries everything one day's evaluation needs: the civil date, the
// observer's position, and the values already resolved for referenced keys.
// A context is good for exactly one date and location; sun times are computed
// once and cached.
type Context struct {
	Date      time.Time
	Latitude  float64
	Longitude float64
	Elevation float64
	Timezone  *time.Location
	Options   Options

	// Resolved holds the values of formulas evaluated earlier in dependency
	// order, keyed by formula key.
	Resolved map[string]Value

	sunTimes *astro.Times
}

// NewContext creates an evaluation context for one date and location.
func NewContext(date time.Time, latitude, longitude, elevation float64, tz *time.Location) *Context {
	if tz == nil {
		tz = time.UTC
	}
	return &Context{
		Date:      date,
		Latitude:  latitude,
		Longitude: longitude,
		Elevation: elevation,
		Timezone:  tz,
		Resolved:  make(map[string]Value),
	}
}

// EffectiveElevation returns the elevation used for horizon corrections,
// honoring the IgnoreElevation option.
func (c *Context) EffectiveElevation() float64 {
	if c.Options.IgnoreElevation {
		return 0
	}
	return c.Elevation
}

// SunTimes returns the day's visible sun times, computing them on first use.
func (c *Context) SunTimes() astro.Times {
	if c.sunTimes == nil {
		st := astro.Calculate(c.Date, c.Latitude, c.Longitude, c.EffectiveElevation(), c.Timezone)
		c.sunTimes = &st
	}
	return *c.sunTimes
}

// DayLength returns the visible day length. Zero when the sun does not rise.
func (c *Context) DayLength() time.Duration {
	return c.SunTimes().DayLength
}

// Month returns the month number, 1 through 12.
func (c *Context) Month() int {
	return int(c.Date.Month())
}

// Day returns the day of month.
func (c *Context) Day() int {
	return c.Date.Day()
}

// DayOfYear returns the ordinal day of the year, 1 through 366.
func (c *Context) DayOfYear() int {
	return c.Date.YearDay()
}

// Season names the meteorological season for the context's date, flipped for
// the southern hemisphere.
func (c *Context) Season() string {
	month := c.Month()
	northern := c.Latitude >= 0

	switch {
	case month >= 3 && month <= 5:
		if northern {
			return "spring"
		}
		return "autumn"
	case month >= 6 && month <= 8:
		if northern {
			return "summer"
		}
		return "winter"
	case month >= 9 && month <= 11:
		if northern {
			return "autumn"
		}
		return "spring"
	default:
		if northern {
			return "winter"
		}
		return "summer"
	}
}
