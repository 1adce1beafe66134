// Package astro computes solar event times using the NOAA solar position
// equations. All angles are in degrees at the package boundary; latitude is
// positive north and longitude is positive east.
package astro

import (
	"math"
	"time"
)

const (
	// ZenithVisible is the standard zenith for visible sunrise and sunset:
	// 90 degrees plus 50 arcminutes of refraction and solar semi-diameter.
	ZenithVisible = 90.0 + 50.0/60.0

	// ZenithGeometric is the zenith for the geometric (airless) horizon
	// crossing of the solar center.
	ZenithGeometric = 90.0

	// Twilight zeniths.
	ZenithCivil        = 96.0
	ZenithNautical     = 102.0
	ZenithAstronomical = 108.0

	// earthRadiusM is the polar radius used for the horizon dip correction.
	earthRadiusM = 6356900.0
)

// Times holds the solar events of one civil day, in the requested timezone.
// Zero times mean the sun never crossed the zenith that day.
type Times struct {
	Sunrise   time.Time
	Sunset    time.Time
	SolarNoon time.Time
	DayLength time.Duration
}

// Dip returns the horizon depression in degrees for an observer at the given
// elevation in meters above sea level. Non-positive elevations contribute
// nothing.
func Dip(elevationM float64) float64 {
	if elevationM <= 0 {
		return 0
	}
	return radToDeg(math.Acos(earthRadiusM / (earthRadiusM + elevationM)))
}

// Calculate returns the visible sunrise, sunset, solar noon and day length
// for a civil date. Elevation widens the visible horizon via the dip
// correction.
func Calculate(date time.Time, latitude, longitude, elevationM float64, tz *time.Location) Times {
	zenith := ZenithVisible + Dip(elevationM)
	sunrise, sunset := AtZenith(date, latitude, longitude, zenith, tz)

	times := Times{
		Sunrise:   sunrise,
		Sunset:    sunset,
		SolarNoon: SolarNoon(date, longitude, tz),
	}
	if !sunrise.IsZero() && !sunset.IsZero() {
		times.DayLength = sunset.Sub(sunrise)
	}
	return times
}

// AtZenith returns the two times on the given civil date at which the solar
// zenith angle equals zenith degrees: the morning crossing and the evening
// crossing. Either result is the zero time when the sun does not reach that
// zenith (polar day or night, or an angle below the sun's daily minimum).
func AtZenith(date time.Time, latitude, longitude, zenith float64, tz *time.Location) (morning, evening time.Time) {
	morningMin, mok := crossingMinutes(date, latitude, longitude, zenith, true)
	eveningMin, eok := crossingMinutes(date, latitude, longitude, zenith, false)
	if mok {
		morning = utcMinutesToTime(date, morningMin, tz)
	}
	if eok {
		evening = utcMinutesToTime(date, eveningMin, tz)
	}
	return morning, evening
}

// AtAngle returns the morning and evening times at which the solar center is
// the given number of degrees below the geometric horizon. No refraction or
// elevation correction is applied.
func AtAngle(date time.Time, latitude, longitude, degrees float64, tz *time.Location) (morning, evening time.Time) {
	return AtZenith(date, latitude, longitude, ZenithGeometric+degrees, tz)
}

// AtAngleWithElevation is AtAngle with the observer's horizon dip folded into
// the zenith, used by opinions that measure depression angles against the
// visible horizon.
func AtAngleWithElevation(date time.Time, latitude, longitude, degrees, elevationM float64, tz *time.Location) (morning, evening time.Time) {
	return AtZenith(date, latitude, longitude, ZenithGeometric+degrees+Dip(elevationM), tz)
}

// SolarNoon returns the local solar transit time for a civil date.
func SolarNoon(date time.Time, longitude float64, tz *time.Location) time.Time {
	minutes := 720.0 - 4.0*longitude - equationOfTime(fractionalYear(date, 12))
	// One refinement pass with the equation of time at the transit itself.
	minutes = 720.0 - 4.0*longitude - equationOfTime(fractionalYear(date, minutes/60.0))
	return utcMinutesToTime(date, minutes, tz)
}

// SolarMidnight returns the lower transit preceding solar noon.
func SolarMidnight(date time.Time, longitude float64, tz *time.Location) time.Time {
	return SolarNoon(date, longitude, tz).Add(-12 * time.Hour)
}

// crossingMinutes computes the UTC minutes-since-midnight of a zenith
// crossing, iterating the equation of time and declination at the event
// itself until stable. Reports false when the crossing does not occur.
func crossingMinutes(date time.Time, latitude, longitude, zenith float64, morning bool) (float64, bool) {
	hour := 12.0
	minutes := 0.0
	for i := 0; i < 3; i++ {
		gamma := fractionalYear(date, hour)
		decl := declination(gamma)
		ha, ok := hourAngle(latitude, decl, zenith)
		if !ok {
			return 0, false
		}
		if morning {
			minutes = 720.0 - 4.0*(longitude+ha) - equationOfTime(gamma)
		} else {
			minutes = 720.0 - 4.0*(longitude-ha) - equationOfTime(gamma)
		}
		hour = minutes / 60.0
	}
	return minutes, true
}

// fractionalYear returns the NOAA fractional year gamma in radians for the
// given civil date and fractional hour.
func fractionalYear(date time.Time, hour float64) float64 {
	doy := float64(date.YearDay())
	return 2.0 * math.Pi / 365.0 * (doy - 1.0 + (hour-12.0)/24.0)
}

// equationOfTime returns the equation of time in minutes.
func equationOfTime(gamma float64) float64 {
	return 229.18 * (0.000075 +
		0.001868*math.Cos(gamma) -
		0.032077*math.Sin(gamma) -
		0.014615*math.Cos(2*gamma) -
		0.040849*math.Sin(2*gamma))
}

// declination returns the solar declination in radians.
func declination(gamma float64) float64 {
	return 0.006918 -
		0.399912*math.Cos(gamma) +
		0.070257*math.Sin(gamma) -
		0.006758*math.Cos(2*gamma) +
		0.000907*math.Sin(2*gamma) -
		0.002697*math.Cos(3*gamma) +
		0.00148*math.Sin(3*gamma)
}

// hourAngle returns the absolute hour angle in degrees at which the sun sits
// at the given zenith. Reports false when the sun never reaches that zenith
// on this day at this latitude.
func hourAngle(latitude float64, decl, zenith float64) (float64, bool) {
	latRad := degToRad(latitude)
	cosHA := math.Cos(degToRad(zenith))/(math.Cos(latRad)*math.Cos(decl)) -
		math.Tan(latRad)*math.Tan(decl)
	if cosHA < -1 || cosHA > 1 {
		return 0, false
	}
	return radToDeg(math.Acos(cosHA)), true
}

func utcMinutesToTime(date time.Time, minutes float64, tz *time.Location) time.Time {
	midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return midnight.Add(time.Duration(minutes * float64(time.Minute))).In(tz)
}

func degToRad(d float64) float64 { return d * math.Pi / 180.0 }
func radToDeg(r float64) float64 { return r * 180.0 / math.Pi }
