package engine

import (
	"math"
	"strings"
	"time"

	"github.com/jcom-dev/zmanim/pkg/astro"
	"github.com/jcom-dev/zmanim/pkg/dsl"
)

// morningDirections maps direction names to whether they select the morning
// crossing of an angle. All thirteen directions resolve to one of the two
// crossings.
var morningDirections = map[string]bool{
	"before_sunrise":           true,
	"after_sunrise":            true,
	"before_visible_sunrise":   true,
	"after_visible_sunrise":    true,
	"before_geometric_sunrise": true,
	"after_geometric_sunrise":  true,
	"before_noon":              true,
	"after_sunset":             false,
	"before_visible_sunset":    false,
	"after_visible_sunset":     false,
	"before_geometric_sunset":  false,
	"after_geometric_sunset":   false,
	"after_noon":               false,
}

// Executor evaluates parsed formulas against a single day's context.
type Executor struct {
	ctx   *Context
	bases baseRegistry
}

// NewExecutor creates an executor bound to a context.
func NewExecutor(ctx *Context) *Executor {
	return &Executor{ctx: ctx, bases: defaultBases()}
}

// Evaluate runs a parsed formula against a context. Type mismatches and
// unresolved references are returned as errors; days on which the sun never
// reaches the needed position produce a Failure value instead.
func Evaluate(node dsl.Node, ctx *Context) (Value, error) {
	return NewExecutor(ctx).Eval(node)
}

// EvaluateFormula parses and evaluates a formula string.
func EvaluateFormula(formula string, ctx *Context) (Value, error) {
	node, err := dsl.Parse(formula)
	if err != nil {
		return Value{}, err
	}
	return Evaluate(node, ctx)
}

// Eval evaluates a single node.
func (e *Executor) Eval(node dsl.Node) (Value, error) {
	switch n := node.(type) {
	case *dsl.PrimitiveNode:
		return e.evalPrimitive(n)
	case *dsl.CallNode:
		return e.evalCall(n)
	case *dsl.BinaryNode:
		return e.evalBinary(n)
	case *dsl.NumberNode:
		return NumberValue(n.Value), nil
	case *dsl.DurationNode:
		return DurationValue(time.Duration(n.Minutes * float64(time.Minute))), nil
	case *dsl.StringNode:
		return TextValue(n.Value), nil
	case *dsl.DateNode:
		return e.evalDate(n)
	case *dsl.ReferenceNode:
		return e.evalReference(n)
	case *dsl.ConditionalNode:
		return e.evalConditional(n)
	case *dsl.ComparisonNode:
		return e.evalComparison(n)
	case *dsl.LogicalNode:
		return e.evalLogical(n)
	case *dsl.NotNode:
		return e.evalNot(n)
	case *dsl.ConditionVarNode:
		return e.evalConditionVar(n)
	case *dsl.DirectionNode:
		return TextValue(n.Name), nil
	default:
		return Value{}, dsl.Errorf(dsl.ErrEvaluation, node.Pos(), "cannot evaluate %T", node)
	}
}

func (e *Executor) evalPrimitive(n *dsl.PrimitiveNode) (Value, error) {
	ctx := e.ctx
	switch n.Name {
	case "visible_sunrise", "sunrise":
		return TimeValue(ctx.SunTimes().Sunrise), nil
	case "visible_sunset", "sunset":
		return TimeValue(ctx.SunTimes().Sunset), nil
	case "geometric_sunrise":
		morning, _ := astro.AtZenith(ctx.Date, ctx.Latitude, ctx.Longitude, astro.ZenithGeometric, ctx.Timezone)
		return TimeValue(morning), nil
	case "geometric_sunset":
		_, evening := astro.AtZenith(ctx.Date, ctx.Latitude, ctx.Longitude, astro.ZenithGeometric, ctx.Timezone)
		return TimeValue(evening), nil
	case "solar_noon":
		return TimeValue(astro.SolarNoon(ctx.Date, ctx.Longitude, ctx.Timezone)), nil
	case "solar_midnight":
		return TimeValue(astro.SolarMidnight(ctx.Date, ctx.Longitude, ctx.Timezone)), nil
	case "civil_dawn":
		return e.twilight(astro.ZenithCivil, true), nil
	case "civil_dusk":
		return e.twilight(astro.ZenithCivil, false), nil
	case "nautical_dawn":
		return e.twilight(astro.ZenithNautical, true), nil
	case "nautical_dusk":
		return e.twilight(astro.ZenithNautical, false), nil
	case "astronomical_dawn":
		return e.twilight(astro.ZenithAstronomical, true), nil
	case "astronomical_dusk":
		return e.twilight(astro.ZenithAstronomical, false), nil
	default:
		return Value{}, dsl.Errorf(dsl.ErrEvaluation, n.Pos(), "unknown primitive: %s", n.Name)
	}
}

func (e *Executor) twilight(zenith float64, morning bool) Value {
	m, ev := astro.AtZenith(e.ctx.Date, e.ctx.Latitude, e.ctx.Longitude, zenith, e.ctx.Timezone)
	if morning {
		return TimeValue(m)
	}
	return TimeValue(ev)
}

func (e *Executor) evalCall(n *dsl.CallNode) (Value, error) {
	switch n.Name {
	case "solar":
		return e.evalSolar(n)
	case "seasonal_solar":
		return e.evalSeasonalSolar(n)
	case "proportional_hours":
		return e.evalProportionalHours(n)
	case "proportional_minutes":
		return e.evalProportionalMinutes(n)
	case "midpoint":
		return e.evalMidpoint(n)
	case "first_valid":
		return e.evalFirstValid(n)
	case "earlier_of":
		return e.evalPick(n, true)
	case "later_of":
		return e.evalPick(n, false)
	default:
		return Value{}, dsl.Errorf(dsl.ErrEvaluation, n.Pos(), "unknown function: %s", n.Name)
	}
}

// angleArgs evaluates the (degrees, direction) argument pair shared by solar
// and seasonal_solar.
func (e *Executor) angleArgs(n *dsl.CallNode) (float64, string, error) {
	if len(n.Args) != 2 {
		return 0, "", dsl.Errorf(dsl.ErrType, n.Pos(), "%s() requires 2 arguments", n.Name)
	}

	degVal, err := e.Eval(n.Args[0])
	if err != nil {
		return 0, "", err
	}
	if degVal.Kind != KindNumber {
		return 0, "", dsl.Errorf(dsl.ErrType, n.Pos(), "%s() degrees must be a number, got %s", n.Name, degVal.Kind)
	}
	if degVal.Number < 0 || degVal.Number > 90 {
		return 0, "", dsl.Errorf(dsl.ErrType, n.Pos(), "%s() degrees must be between 0 and 90, got %g", n.Name, degVal.Number)
	}

	dir, ok := n.Args[1].(*dsl.DirectionNode)
	if !ok {
		return 0, "", dsl.Errorf(dsl.ErrType, n.Pos(), "%s() second argument must be a direction", n.Name)
	}
	return degVal.Number, dir.Name, nil
}

func (e *Executor) evalSolar(n *dsl.CallNode) (Value, error) {
	degrees, direction, err := e.angleArgs(n)
	if err != nil {
		return Value{}, err
	}

	wantMorning, ok := morningDirections[direction]
	if !ok {
		return Value{}, dsl.Errorf(dsl.ErrType, n.Pos(), "invalid direction: %s", direction)
	}

	morning, evening := astro.AtAngle(e.ctx.Date, e.ctx.Latitude, e.ctx.Longitude, degrees, e.ctx.Timezone)
	t := evening
	if wantMorning {
		t = morning
	}
	if t.IsZero() {
		return Failuref("sun does not reach %g degrees below the horizon on %s",
			degrees, e.ctx.Date.Format("2006-01-02")), nil
	}
	return TimeValue(t), nil
}

func (e *Executor) evalSeasonalSolar(n *dsl.CallNode) (Value, error) {
	degrees, direction, err := e.angleArgs(n)
	if err != nil {
		return Value{}, err
	}

	var wantMorning bool
	baseZenith := astro.ZenithVisible
	switch direction {
	case "before_sunrise", "before_visible_sunrise":
		wantMorning = true
	case "after_sunset", "after_visible_sunset":
	case "before_geometric_sunrise":
		wantMorning, baseZenith = true, astro.ZenithGeometric
	case "after_geometric_sunset":
		baseZenith = astro.ZenithGeometric
	default:
		return Value{}, dsl.Errorf(dsl.ErrType, n.Pos(), "invalid direction for seasonal_solar: %s", direction)
	}

	morning, evening := astro.SeasonalAtAngle(e.ctx.Date, e.ctx.Latitude, e.ctx.Longitude,
		degrees, baseZenith, e.ctx.Timezone)
	t := evening
	if wantMorning {
		t = morning
	}
	if t.IsZero() {
		return Failuref("seasonal offset for %g degrees could not be established on %s",
			degrees, e.ctx.Date.Format("2006-01-02")), nil
	}
	return TimeValue(t), nil
}

func (e *Executor) evalProportionalHours(n *dsl.CallNode) (Value, error) {
	if len(n.Args) != 2 {
		return Value{}, dsl.Errorf(dsl.ErrType, n.Pos(), "proportional_hours() requires 2 arguments")
	}

	hoursVal, err := e.Eval(n.Args[0])
	if err != nil {
		return Value{}, err
	}
	if hoursVal.Kind != KindNumber {
		return Value{}, dsl.Errorf(dsl.ErrType, n.Pos(), "proportional_hours() hours must be a number, got %s", hoursVal.Kind)
	}
	hours := hoursVal.Number
	if hours < 0 || hours > 12 {
		return Value{}, dsl.Errorf(dsl.ErrType, n.Pos(), "proportional_hours() hours must be between 0 and 12, got %g", hours)
	}

	base, ok := n.Args[1].(*dsl.BaseNode)
	if !ok {
		return Value{}, dsl.Errorf(dsl.ErrType, n.Pos(), "proportional_hours() second argument must be a base")
	}

	start, end, err := e.baseWindowOf(base)
	if err != nil {
		return Value{}, err
	}
	if start.IsZero() || end.IsZero() {
		return Failuref("day window for base %s could not be established", base.Name), nil
	}
	if !end.After(start) {
		return Failuref("day window for base %s is empty", base.Name), nil
	}

	hour := time.Duration(float64(end.Sub(start)) / 12.0)
	return TimeValue(start.Add(time.Duration(hours * float64(hour)))), nil
}

func (e *Executor) baseWindowOf(n *dsl.BaseNode) (time.Time, time.Time, error) {
	if n.Name == "custom" {
		if len(n.CustomArgs) != 2 {
			return time.Time{}, time.Time{}, dsl.Errorf(dsl.ErrType, n.Pos(), "custom() requires 2 arguments")
		}
		startVal, err := e.Eval(n.CustomArgs[0])
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		endVal, err := e.Eval(n.CustomArgs[1])
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		if startVal.IsFailure() || endVal.IsFailure() {
			return time.Time{}, time.Time{}, nil
		}
		if startVal.Kind != KindTime || endVal.Kind != KindTime {
			return time.Time{}, time.Time{}, dsl.Errorf(dsl.ErrType, n.Pos(), "custom() arguments must be time values")
		}
		return startVal.Time, endVal.Time, nil
	}

	window, ok := e.bases[n.Name]
	if !ok {
		return time.Time{}, time.Time{}, dsl.Errorf(dsl.ErrType, n.Pos(), "unknown base: %s", n.Name)
	}
	start, end := window(e.ctx)
	return start, end, nil
}

func (e *Executor) evalProportionalMinutes(n *dsl.CallNode) (Value, error) {
	if len(n.Args) != 2 {
		return Value{}, dsl.Errorf(dsl.ErrType, n.Pos(), "proportional_minutes() requires 2 arguments")
	}

	minutesVal, err := e.Eval(n.Args[0])
	if err != nil {
		return Value{}, err
	}
	if minutesVal.Kind != KindNumber {
		return Value{}, dsl.Errorf(dsl.ErrType, n.Pos(), "proportional_minutes() minutes must be a number, got %s", minutesVal.Kind)
	}

	dir, ok := n.Args[1].(*dsl.DirectionNode)
	if !ok {
		return Value{}, dsl.Errorf(dsl.ErrType, n.Pos(), "proportional_minutes() second argument must be a direction")
	}

	st := e.ctx.SunTimes()
	if st.Sunrise.IsZero() || st.Sunset.IsZero() {
		return Failuref("day length could not be established on %s", e.ctx.Date.Format("2006-01-02")), nil
	}

	// A reference value of 72 is a tenth of the 720 minute equinox day; the
	// actual offset stretches and shrinks with the day.
	offset := time.Duration(minutesVal.Number / 720.0 * float64(st.DayLength))

	switch dir.Name {
	case "before_sunrise", "before_visible_sunrise":
		return TimeValue(st.Sunrise.Add(-offset)), nil
	case "after_sunset", "after_visible_sunset":
		return TimeValue(st.Sunset.Add(offset)), nil
	case "before_geometric_sunrise":
		morning, _ := astro.AtZenith(e.ctx.Date, e.ctx.Latitude, e.ctx.Longitude, astro.ZenithGeometric, e.ctx.Timezone)
		if morning.IsZero() {
			return Failuref("geometric sunrise could not be established"), nil
		}
		return TimeValue(morning.Add(-offset)), nil
	case "after_geometric_sunset":
		_, evening := astro.AtZenith(e.ctx.Date, e.ctx.Latitude, e.ctx.Longitude, astro.ZenithGeometric, e.ctx.Timezone)
		if evening.IsZero() {
			return Failuref("geometric sunset could not be established"), nil
		}
		return TimeValue(evening.Add(offset)), nil
	default:
		return Value{}, dsl.Errorf(dsl.ErrType, n.Pos(), "invalid direction for proportional_minutes: %s", dir.Name)
	}
}

func (e *Executor) evalMidpoint(n *dsl.CallNode) (Value, error) {
	if len(n.Args) != 2 {
		return Value{}, dsl.Errorf(dsl.ErrType, n.Pos(), "midpoint() requires 2 arguments")
	}

	first, err := e.Eval(n.Args[0])
	if err != nil {
		return Value{}, err
	}
	second, err := e.Eval(n.Args[1])
	if err != nil {
		return Value{}, err
	}
	if first.IsFailure() {
		return first, nil
	}
	if second.IsFailure() {
		return second, nil
	}
	if first.Kind != KindTime || second.Kind != KindTime {
		return Value{}, dsl.Errorf(dsl.ErrType, n.Pos(), "midpoint() arguments must be time values")
	}

	return TimeValue(first.Time.Add(second.Time.Sub(first.Time) / 2)), nil
}

// evalPick implements earlier_of and later_of. Both operands must succeed:
// a failed side fails the comparison, it never falls back to the other.
// Wrap the call in first_valid to get fallback behavior.
func (e *Executor) evalPick(n *dsl.CallNode, earlier bool) (Value, error) {
	if len(n.Args) != 2 {
		return Value{}, dsl.Errorf(dsl.ErrType, n.Pos(), "%s() requires 2 arguments", n.Name)
	}

	first, err := e.Eval(n.Args[0])
	if err != nil {
		return Value{}, err
	}
	second, err := e.Eval(n.Args[1])
	if err != nil {
		return Value{}, err
	}

	if first.IsFailure() {
		return Failuref("%s: %s", n.Name, first.Reason), nil
	}
	if second.IsFailure() {
		return Failuref("%s: %s", n.Name, second.Reason), nil
	}
	if first.Kind != KindTime || second.Kind != KindTime {
		return Value{}, dsl.Errorf(dsl.ErrType, n.Pos(), "%s() arguments must be time values", n.Name)
	}

	if first.Time.Before(second.Time) == earlier {
		return first, nil
	}
	return second, nil
}

// evalFirstValid tries each alternative in order and returns the first that
// produces a usable value. Failures move on to the next alternative; hard
// errors stop the chain.
func (e *Executor) evalFirstValid(n *dsl.CallNode) (Value, error) {
	if len(n.Args) < 2 {
		return Value{}, dsl.Errorf(dsl.ErrType, n.Pos(), "first_valid() requires at least 2 arguments")
	}

	reasons := make([]string, 0, len(n.Args))
	for _, arg := range n.Args {
		v, err := e.Eval(arg)
		if err != nil {
			return Value{}, err
		}
		if v.IsFailure() {
			reasons = append(reasons, v.Reason)
			continue
		}
		return v, nil
	}
	return Failuref("all alternatives failed: %s", strings.Join(reasons, "; ")), nil
}

func (e *Executor) evalBinary(n *dsl.BinaryNode) (Value, error) {
	left, err := e.Eval(n.Left)
	if err != nil {
		return Value{}, err
	}
	right, err := e.Eval(n.Right)
	if err != nil {
		return Value{}, err
	}
	if left.IsFailure() {
		return left, nil
	}
	if right.IsFailure() {
		return right, nil
	}

	switch n.Op {
	case "+":
		return e.add(n, left, right)
	case "-":
		return e.subtract(n, left, right)
	case "*":
		return e.multiply(n, left, right)
	case "/":
		return e.divide(n, left, right)
	}
	return Value{}, dsl.Errorf(dsl.ErrEvaluation, n.Pos(), "unknown operator: %s", n.Op)
}

func (e *Executor) add(n *dsl.BinaryNode, left, right Value) (Value, error) {
	switch {
	case left.Kind == KindTime && right.Kind == KindDuration:
		return TimeValue(left.Time.Add(right.Duration)), nil
	case left.Kind == KindDuration && right.Kind == KindTime:
		return TimeValue(right.Time.Add(left.Duration)), nil
	case left.Kind == KindDuration && right.Kind == KindDuration:
		return DurationValue(left.Duration + right.Duration), nil
	case left.Kind == KindNumber && right.Kind == KindNumber:
		return NumberValue(left.Number + right.Number), nil
	}
	return Value{}, dsl.Errorf(dsl.ErrType, n.Pos(), "cannot add %s and %s", left.Kind, right.Kind)
}

func (e *Executor) subtract(n *dsl.BinaryNode, left, right Value) (Value, error) {
	switch {
	case left.Kind == KindTime && right.Kind == KindDuration:
		return TimeValue(left.Time.Add(-right.Duration)), nil
	case left.Kind == KindTime && right.Kind == KindTime:
		return DurationValue(left.Time.Sub(right.Time)), nil
	case left.Kind == KindDuration && right.Kind == KindDuration:
		return DurationValue(left.Duration - right.Duration), nil
	case left.Kind == KindNumber && right.Kind == KindNumber:
		return NumberValue(left.Number - right.Number), nil
	}
	return Value{}, dsl.Errorf(dsl.ErrType, n.Pos(), "cannot subtract %s from %s", right.Kind, left.Kind)
}

func (e *Executor) multiply(n *dsl.BinaryNode, left, right Value) (Value, error) {
	switch {
	case left.Kind == KindDuration && right.Kind == KindNumber:
		return scaleDuration(n, left.Duration, right.Number)
	case left.Kind == KindNumber && right.Kind == KindDuration:
		return scaleDuration(n, right.Duration, left.Number)
	case left.Kind == KindNumber && right.Kind == KindNumber:
		return NumberValue(left.Number * right.Number), nil
	}
	return Value{}, dsl.Errorf(dsl.ErrType, n.Pos(), "cannot multiply %s and %s", left.Kind, right.Kind)
}

func scaleDuration(n *dsl.BinaryNode, d time.Duration, factor float64) (Value, error) {
	result := float64(d) * factor
	if result > math.MaxInt64 || result < math.MinInt64 {
		return Value{}, dsl.Errorf(dsl.ErrEvaluation, n.Pos(), "duration overflow")
	}
	return DurationValue(time.Duration(result)), nil
}

func (e *Executor) divide(n *dsl.BinaryNode, left, right Value) (Value, error) {
	switch {
	case left.Kind == KindDuration && right.Kind == KindNumber:
		if right.Number == 0 {
			return Value{}, dsl.Errorf(dsl.ErrEvaluation, n.Pos(), "division by zero")
		}
		return DurationValue(time.Duration(float64(left.Duration) / right.Number)), nil
	case left.Kind == KindNumber && right.Kind == KindNumber:
		if right.Number == 0 {
			return Value{}, dsl.Errorf(dsl.ErrEvaluation, n.Pos(), "division by zero")
		}
		return NumberValue(left.Number / right.Number), nil
	}
	return Value{}, dsl.Errorf(dsl.ErrType, n.Pos(), "cannot divide %s by %s", left.Kind, right.Kind)
}

func (e *Executor) evalReference(n *dsl.ReferenceNode) (Value, error) {
	v, ok := e.ctx.Resolved[n.Key]
	if !ok {
		return Value{}, dsl.Errorf(dsl.ErrReference, n.Pos(), "undefined reference: @%s", n.Key)
	}
	return v, nil
}

func (e *Executor) evalConditional(n *dsl.ConditionalNode) (Value, error) {
	cond, err := e.Eval(n.Cond)
	if err != nil {
		return Value{}, err
	}
	if cond.IsFailure() {
		return Value{}, dsl.Errorf(dsl.ErrEvaluation, n.Pos(), "condition failed: %s", cond.Reason)
	}
	if cond.Kind != KindBoolean {
		return Value{}, dsl.Errorf(dsl.ErrType, n.Pos(), "condition must be boolean, got %s", cond.Kind)
	}
	if cond.Boolean {
		return e.Eval(n.Then)
	}
	return e.Eval(n.Else)
}

func (e *Executor) evalComparison(n *dsl.ComparisonNode) (Value, error) {
	left, err := e.Eval(n.Left)
	if err != nil {
		return Value{}, err
	}
	right, err := e.Eval(n.Right)
	if err != nil {
		return Value{}, err
	}
	if left.IsFailure() {
		return Value{}, dsl.Errorf(dsl.ErrEvaluation, n.Pos(), "comparison failed: %s", left.Reason)
	}
	if right.IsFailure() {
		return Value{}, dsl.Errorf(dsl.ErrEvaluation, n.Pos(), "comparison failed: %s", right.Reason)
	}

	switch {
	case left.Kind == KindNumber && right.Kind == KindNumber:
		return compareOrdered(n, left.Number, right.Number)
	case left.Kind == KindDuration && right.Kind == KindDuration:
		return compareOrdered(n, left.Duration, right.Duration)
	case left.Kind == KindText && right.Kind == KindText:
		switch n.Op {
		case "==":
			return BoolValue(left.Text == right.Text), nil
		case "!=":
			return BoolValue(left.Text != right.Text), nil
		}
		return Value{}, dsl.Errorf(dsl.ErrType, n.Pos(), "text values only support == and !=")
	}
	return Value{}, dsl.Errorf(dsl.ErrType, n.Pos(), "cannot compare %s and %s", left.Kind, right.Kind)
}

func compareOrdered[T float64 | time.Duration](n *dsl.ComparisonNode, left, right T) (Value, error) {
	switch n.Op {
	case ">":
		return BoolValue(left > right), nil
	case "<":
		return BoolValue(left < right), nil
	case ">=":
		return BoolValue(left >= right), nil
	case "<=":
		return BoolValue(left <= right), nil
	case "==":
		return BoolValue(left == right), nil
	case "!=":
		return BoolValue(left != right), nil
	}
	return Value{}, dsl.Errorf(dsl.ErrEvaluation, n.Pos(), "unknown comparison operator: %s", n.Op)
}

func (e *Executor) evalLogical(n *dsl.LogicalNode) (Value, error) {
	left, err := e.Eval(n.Left)
	if err != nil {
		return Value{}, err
	}
	if left.Kind != KindBoolean {
		return Value{}, dsl.Errorf(dsl.ErrType, n.Pos(), "left side of %s must be boolean, got %s", n.Op, left.Kind)
	}

	// Short circuit before touching the right side.
	if n.Op == "&&" && !left.Boolean {
		return BoolValue(false), nil
	}
	if n.Op == "||" && left.Boolean {
		return BoolValue(true), nil
	}

	right, err := e.Eval(n.Right)
	if err != nil {
		return Value{}, err
	}
	if right.Kind != KindBoolean {
		return Value{}, dsl.Errorf(dsl.ErrType, n.Pos(), "right side of %s must be boolean, got %s", n.Op, right.Kind)
	}
	return BoolValue(right.Boolean), nil
}

func (e *Executor) evalNot(n *dsl.NotNode) (Value, error) {
	operand, err := e.Eval(n.Operand)
	if err != nil {
		return Value{}, err
	}
	if operand.Kind != KindBoolean {
		return Value{}, dsl.Errorf(dsl.ErrType, n.Pos(), "operand of ! must be boolean, got %s", operand.Kind)
	}
	return BoolValue(!operand.Boolean), nil
}

func (e *Executor) evalConditionVar(n *dsl.ConditionVarNode) (Value, error) {
	ctx := e.ctx
	switch n.Name {
	case "latitude":
		return NumberValue(ctx.Latitude), nil
	case "longitude":
		return NumberValue(ctx.Longitude), nil
	case "day_length":
		return DurationValue(ctx.DayLength()), nil
	case "month":
		return NumberValue(float64(ctx.Month())), nil
	case "day":
		return NumberValue(float64(ctx.Day())), nil
	case "day_of_year", "date":
		return NumberValue(float64(ctx.DayOfYear())), nil
	case "season":
		return TextValue(ctx.Season()), nil
	default:
		return Value{}, dsl.Errorf(dsl.ErrEvaluation, n.Pos(), "unknown condition variable: %s", n.Name)
	}
}

// evalDate converts a day-month literal to its ordinal day in the context's
// year. A 29-Feb in a non-leap year is an evaluation error.
func (e *Executor) evalDate(n *dsl.DateNode) (Value, error) {
	year := e.ctx.Date.Year()
	date := time.Date(year, time.Month(n.Month), n.Day, 0, 0, 0, 0, time.UTC)
	if int(date.Month()) != n.Month || date.Day() != n.Day {
		return Value{}, dsl.Errorf(dsl.ErrEvaluation, n.Pos(), "date %d-%s does not exist in year %d",
			n.Day, time.Month(n.Month), year)
	}
	return NumberValue(float64(date.YearDay())), nil
}
