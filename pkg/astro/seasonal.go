package astro

import "time"

// equinoxDay is the civil day used as the seasonal reference point.
const equinoxDay = 20

// SeasonalAtAngle returns the morning and evening times for a depression
// angle using the seasonal proportional method: the offset between the angle
// crossing and the horizon event is measured at the March equinox, then
// scaled by the ratio of today's day length to the 720 minute equinox day.
// baseZenith selects the horizon event the offset is anchored to, typically
// ZenithVisible or ZenithGeometric. Either result is the zero time when the
// needed crossings do not occur.
func SeasonalAtAngle(date time.Time, latitude, longitude, degrees, baseZenith float64, tz *time.Location) (morning, evening time.Time) {
	equinox := time.Date(date.Year(), time.March, equinoxDay, 0, 0, 0, 0, tz)

	eqMorning, eqEvening := AtZenith(equinox, latitude, longitude, ZenithGeometric+degrees, tz)
	eqBaseMorning, eqBaseEvening := AtZenith(equinox, latitude, longitude, baseZenith, tz)
	baseMorning, baseEvening := AtZenith(date, latitude, longitude, baseZenith, tz)

	if baseMorning.IsZero() || baseEvening.IsZero() {
		return time.Time{}, time.Time{}
	}
	scale := baseEvening.Sub(baseMorning).Minutes() / 720.0

	if !eqMorning.IsZero() && !eqBaseMorning.IsZero() {
		offset := eqBaseMorning.Sub(eqMorning).Minutes() * scale
		morning = baseMorning.Add(-time.Duration(offset * float64(time.Minute)))
	}
	if !eqEvening.IsZero() && !eqBaseEvening.IsZero() {
		offset := eqEvening.Sub(eqBaseEvening).Minutes() * scale
		evening = baseEvening.Add(time.Duration(offset * float64(time.Minute)))
	}
	return morning, evening
}
