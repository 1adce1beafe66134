package engine

import (
	"time"

	"github.com/jcom-dev/zmanim/pkg/astro"
)

// baalHatanyaDegrees is the depression angle of the Baal HaTanya's netz and
// shkia amiti.
const baalHatanyaDegrees = 1.583

// baseWindow resolves the day window a proportional-hour base divides into
// twelve. Either bound is the zero time when the window cannot be
// established on this day.
type baseWindow func(ctx *Context) (start, end time.Time)

// baseRegistry maps base names to window resolvers. The registry is built
// once per executor and never mutated, so custom windows stay scoped to the
// formula that declares them.
type baseRegistry map[string]baseWindow

func defaultBases() baseRegistry {
	return baseRegistry{
		"gra":           visibleWindow(0),
		"mga":           visibleWindow(72 * time.Minute),
		"mga_72":        visibleWindow(72 * time.Minute),
		"mga_60":        visibleWindow(60 * time.Minute),
		"mga_90":        visibleWindow(90 * time.Minute),
		"mga_96":        visibleWindow(96 * time.Minute),
		"mga_120":       visibleWindow(120 * time.Minute),
		"mga_72_zmanis": zmanisWindow(10),
		"mga_90_zmanis": zmanisWindow(8),
		"mga_96_zmanis": zmanisWindow(7.5),
		"mga_16_1":      angleWindow(16.1),
		"mga_18":        angleWindow(18.0),
		"mga_19_8":      angleWindow(19.8),
		"mga_26":        angleWindow(26.0),
		"baal_hatanya":  angleWindow(baalHatanyaDegrees),
		"ateret_torah":  ateretTorahWindow,
	}
}

// visibleWindow widens the visible sunrise-to-sunset day by a fixed margin
// on each side. A zero margin is the GRA day itself.
func visibleWindow(margin time.Duration) baseWindow {
	return func(ctx *Context) (time.Time, time.Time) {
		st := ctx.SunTimes()
		if st.Sunrise.IsZero() || st.Sunset.IsZero() {
			return time.Time{}, time.Time{}
		}
		return st.Sunrise.Add(-margin), st.Sunset.Add(margin)
	}
}

// zmanisWindow widens the day by a fraction of its own length on each side:
// a divisor of 10 is 72 proportional minutes, 8 is 90, 7.5 is 96.
func zmanisWindow(divisor float64) baseWindow {
	return func(ctx *Context) (time.Time, time.Time) {
		st := ctx.SunTimes()
		if st.Sunrise.IsZero() || st.Sunset.IsZero() {
			return time.Time{}, time.Time{}
		}
		offset := time.Duration(float64(st.DayLength) / divisor)
		return st.Sunrise.Add(-offset), st.Sunset.Add(offset)
	}
}

// angleWindow spans the morning and evening crossings of a depression
// angle, measured against the observer's horizon.
func angleWindow(degrees float64) baseWindow {
	return func(ctx *Context) (time.Time, time.Time) {
		return astro.AtAngleWithElevation(ctx.Date, ctx.Latitude, ctx.Longitude,
			degrees, ctx.EffectiveElevation(), ctx.Timezone)
	}
}

// ateretTorahWindow spans visible sunrise to forty fixed minutes after
// visible sunset.
func ateretTorahWindow(ctx *Context) (time.Time, time.Time) {
	st := ctx.SunTimes()
	if st.Sunrise.IsZero() || st.Sunset.IsZero() {
		return time.Time{}, time.Time{}
	}
	return st.Sunrise, st.Sunset.Add(40 * time.Minute)
}
