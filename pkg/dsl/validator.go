package dsl

import (
	"fmt"
	"sort"
	"strings"
)

// Type is the statically inferred type of an expression.
type Type int

// Inferred expression types.
const (
	TypeUnknown Type = iota
	TypeTime
	TypeDuration
	TypeNumber
	TypeBoolean
	TypeText
)

var typeNames = map[Type]string{
	TypeUnknown:  "unknown",
	TypeTime:     "Time",
	TypeDuration: "Duration",
	TypeNumber:   "Number",
	TypeBoolean:  "Boolean",
	TypeText:     "Text",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("type(%d)", int(t))
}

// InferType infers the value type an expression produces. References and
// function calls always produce times; a conditional produces whatever its
// first branch produces.
func InferType(node Node) Type {
	switch n := node.(type) {
	case *PrimitiveNode, *ReferenceNode, *CallNode:
		return TypeTime
	case *NumberNode, *DateNode:
		return TypeNumber
	case *DurationNode:
		return TypeDuration
	case *StringNode:
		return TypeText
	case *ConditionVarNode:
		switch n.Name {
		case "day_length":
			return TypeDuration
		case "season":
			return TypeText
		default:
			return TypeNumber
		}
	case *ConditionalNode:
		return InferType(n.Then)
	case *ComparisonNode, *LogicalNode, *NotNode:
		return TypeBoolean
	case *BinaryNode:
		return inferBinaryType(n)
	default:
		return TypeUnknown
	}
}

func inferBinaryType(n *BinaryNode) Type {
	left, right := InferType(n.Left), InferType(n.Right)
	switch n.Op {
	case "+":
		if left == TypeTime || right == TypeTime {
			return TypeTime
		}
		if left == TypeDuration || right == TypeDuration {
			return TypeDuration
		}
		return TypeNumber
	case "-":
		if left == TypeTime && right == TypeTime {
			return TypeDuration
		}
		if left == TypeTime {
			return TypeTime
		}
		if left == TypeDuration {
			return TypeDuration
		}
		return TypeNumber
	case "*", "/":
		if left == TypeDuration || right == TypeDuration {
			return TypeDuration
		}
		return TypeNumber
	}
	return TypeUnknown
}

// seasonalDirections is the restricted direction set shared by
// seasonal_solar and proportional_minutes.
var seasonalDirections = map[string]bool{
	"before_sunrise":           true,
	"after_sunset":             true,
	"before_visible_sunrise":   true,
	"after_visible_sunset":     true,
	"before_geometric_sunrise": true,
	"after_geometric_sunset":   true,
}

// Validator performs static checks on a parsed formula: literal argument
// ranges, restricted direction sets, arithmetic type rules and reference
// resolution.
type Validator struct {
	errors     ErrorList
	available  map[string]bool
	currentKey string
}

// NewValidator creates a validator with no reference restrictions.
func NewValidator() *Validator {
	return &Validator{available: make(map[string]bool)}
}

// SetAvailableKeys restricts @references to the given formula keys.
func (v *Validator) SetAvailableKeys(keys []string) {
	for _, k := range keys {
		v.available[k] = true
	}
}

// SetCurrentKey marks the formula being validated, for self-reference
// detection.
func (v *Validator) SetCurrentKey(key string) {
	v.currentKey = key
}

// Errors returns the accumulated validation errors.
func (v *Validator) Errors() ErrorList {
	return v.errors
}

// Run validates a parsed formula against the validator's configuration.
func (v *Validator) Run(node Node) error {
	v.validateNode(node)
	if v.errors.HasErrors() {
		return &v.errors
	}
	return nil
}

// Validate runs static validation over a parsed formula.
func Validate(node Node, availableKeys []string) error {
	v := NewValidator()
	v.SetAvailableKeys(availableKeys)
	v.validateNode(node)
	if v.errors.HasErrors() {
		return &v.errors
	}
	return nil
}

// ValidateFormula parses and validates a formula string.
func ValidateFormula(formula string, availableKeys []string) (Node, error) {
	node, err := Parse(formula)
	if err != nil {
		return nil, err
	}
	if err := Validate(node, availableKeys); err != nil {
		return node, err
	}
	return node, nil
}

func (v *Validator) validateNode(node Node) {
	if node == nil {
		return
	}

	switch n := node.(type) {
	case *PrimitiveNode:
		if !Primitives[n.Name] {
			v.addError(n.Pos(), "unknown primitive: %s", n.Name)
		}
	case *CallNode:
		v.validateCall(n)
	case *BinaryNode:
		v.validateBinary(n)
	case *ReferenceNode:
		v.validateReference(n)
	case *ConditionalNode:
		v.validateConditional(n)
	case *ComparisonNode:
		v.validateComparison(n)
	case *LogicalNode:
		v.validateLogical(n)
	case *NotNode:
		v.validateNode(n.Operand)
		if t := InferType(n.Operand); t != TypeBoolean {
			v.addError(n.Pos(), "operand of ! must be a boolean expression, got %s", t)
		}
	case *DirectionNode:
		if !Directions[n.Name] {
			v.addError(n.Pos(), "unknown direction: %s", n.Name)
		}
	case *BaseNode:
		v.validateBase(n)
	}
}

func (v *Validator) validateCall(n *CallNode) {
	switch n.Name {
	case "solar":
		v.validateAngleCall(n, Directions)
	case "seasonal_solar":
		v.validateAngleCall(n, seasonalDirections)
	case "proportional_hours":
		v.validateProportionalHours(n)
	case "proportional_minutes":
		v.validateProportionalMinutes(n)
	case "midpoint", "earlier_of", "later_of":
		v.validateTimePair(n)
	case "first_valid":
		for _, arg := range n.Args {
			v.validateNode(arg)
		}
	default:
		v.addError(n.Pos(), "unknown function: %s", n.Name)
	}
}

func (v *Validator) validateAngleCall(n *CallNode, valid map[string]bool) {
	if len(n.Args) != 2 {
		return // arity reported by the parser
	}

	if num, ok := n.Args[0].(*NumberNode); ok {
		if num.Value < 0 || num.Value > 90 {
			v.addSuggestion(n.Pos(),
				fmt.Sprintf("%s() degrees must be between 0 and 90, got %g", n.Name, num.Value),
				"common values: 8.5 (tzais), 11.5 (misheyakir), 16.1 (alos)")
		}
	} else {
		v.validateNode(n.Args[0])
	}

	dir, ok := n.Args[1].(*DirectionNode)
	if !ok {
		v.addError(n.Pos(), "second argument to %s() must be a direction", n.Name)
		return
	}
	if !valid[dir.Name] {
		v.addSuggestion(n.Pos(),
			fmt.Sprintf("invalid direction for %s: %s", n.Name, dir.Name),
			"valid directions: "+joinKeys(valid))
	}
}

func (v *Validator) validateProportionalHours(n *CallNode) {
	if len(n.Args) != 2 {
		return
	}

	if num, ok := n.Args[0].(*NumberNode); ok {
		if num.Value < 0.5 || num.Value > 12 {
			v.addSuggestion(n.Pos(),
				fmt.Sprintf("proportional_hours() hours must be between 0.5 and 12, got %g", num.Value),
				"common values: 3 (shma), 4 (tefila), 9.5 (mincha ketana), 10.75 (plag)")
		}
	} else {
		v.validateNode(n.Args[0])
	}

	base, ok := n.Args[1].(*BaseNode)
	if !ok {
		v.addError(n.Pos(), "second argument to proportional_hours() must be a base (gra, mga, ...)")
		return
	}
	v.validateBase(base)
}

func (v *Validator) validateProportionalMinutes(n *CallNode) {
	if len(n.Args) != 2 {
		return
	}

	if num, ok := n.Args[0].(*NumberNode); ok {
		if num.Value <= 0 || num.Value > 200 {
			v.addSuggestion(n.Pos(),
				fmt.Sprintf("proportional_minutes() minutes must be between 1 and 200, got %g", num.Value),
				"common values: 72, 90, 96, 120")
		}
	} else {
		v.validateNode(n.Args[0])
	}

	dir, ok := n.Args[1].(*DirectionNode)
	if !ok {
		v.addError(n.Pos(), "second argument to proportional_minutes() must be a direction")
		return
	}
	if !seasonalDirections[dir.Name] {
		v.addSuggestion(n.Pos(),
			fmt.Sprintf("invalid direction for proportional_minutes: %s", dir.Name),
			"valid directions: "+joinKeys(seasonalDirections))
	}
}

func (v *Validator) validateTimePair(n *CallNode) {
	for i, arg := range n.Args {
		v.validateNode(arg)
		if t := InferType(arg); t != TypeTime {
			v.addError(n.Pos(), "%s() argument %d must produce a Time value, got %s", n.Name, i+1, t)
		}
	}
}

func (v *Validator) validateBase(n *BaseNode) {
	if !Bases[n.Name] {
		v.addSuggestion(n.Pos(),
			fmt.Sprintf("unknown base: %s", n.Name),
			"valid bases: "+joinKeys(Bases))
		return
	}
	if n.Name != "custom" {
		return
	}
	if len(n.CustomArgs) != 2 {
		return // arity reported by the parser
	}
	for i, arg := range n.CustomArgs {
		v.validateNode(arg)
		if t := InferType(arg); t != TypeTime {
			v.addError(n.Pos(), "custom() argument %d must produce a Time value, got %s", i+1, t)
		}
	}
}

func (v *Validator) validateBinary(n *BinaryNode) {
	v.validateNode(n.Left)
	v.validateNode(n.Right)

	left, right := InferType(n.Left), InferType(n.Right)
	switch n.Op {
	case "+":
		if left == TypeTime && right == TypeTime {
			v.addSuggestion(n.Pos(), "cannot add two times",
				"to measure a span, subtract: time2 - time1")
		}
	case "-":
		// Time-Duration, Time-Time, Duration-Duration, Number-Number all legal.
	case "*":
		if left == TypeTime || right == TypeTime {
			v.addError(n.Pos(), "cannot multiply time values")
		}
	case "/":
		if left == TypeTime || right == TypeTime {
			v.addError(n.Pos(), "cannot divide time values")
		}
	}
}

func (v *Validator) validateReference(n *ReferenceNode) {
	if v.currentKey != "" && n.Key == v.currentKey {
		v.addSuggestion(n.Pos(),
			fmt.Sprintf("circular reference: @%s references itself", n.Key),
			"use a primitive or a different reference")
		return
	}
	if len(v.available) > 0 && !v.available[n.Key] {
		keys := make([]string, 0, len(v.available))
		for k := range v.available {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		if len(keys) > 5 {
			keys = keys[:5]
		}
		v.addSuggestion(n.Pos(),
			fmt.Sprintf("undefined reference: @%s", n.Key),
			"available: "+strings.Join(keys, ", "))
	}
}

func (v *Validator) validateConditional(n *ConditionalNode) {
	v.validateNode(n.Cond)
	v.validateNode(n.Then)
	v.validateNode(n.Else)

	thenType, elseType := InferType(n.Then), InferType(n.Else)
	if thenType != elseType {
		v.addError(n.Pos(), "conditional branches must produce the same type: %s vs %s", thenType, elseType)
	}
}

func (v *Validator) validateComparison(n *ComparisonNode) {
	v.validateNode(n.Left)
	v.validateNode(n.Right)

	right := InferType(n.Right)
	cv, ok := n.Left.(*ConditionVarNode)
	if !ok {
		return
	}
	switch cv.Name {
	case "latitude", "longitude", "month", "day", "day_of_year", "date":
		if right != TypeNumber {
			v.addError(n.Pos(), "%s comparison requires a number, got %s", cv.Name, right)
		}
	case "day_length":
		if right != TypeDuration {
			v.addError(n.Pos(), "day_length comparison requires a duration, got %s", right)
		}
	case "season":
		if right != TypeText {
			v.addError(n.Pos(), "season comparison requires a string, got %s", right)
		}
	}
}

func (v *Validator) validateLogical(n *LogicalNode) {
	v.validateNode(n.Left)
	v.validateNode(n.Right)

	if t := InferType(n.Left); t != TypeBoolean {
		v.addError(n.Pos(), "left side of %s must be a boolean expression, got %s", n.Op, t)
	}
	if t := InferType(n.Right); t != TypeBoolean {
		v.addError(n.Pos(), "right side of %s must be a boolean expression, got %s", n.Op, t)
	}
}

func (v *Validator) addError(pos Position, format string, args ...any) {
	v.errors.Add(Errorf(ErrType, pos, format, args...))
}

func (v *Validator) addSuggestion(pos Position, message, suggestion string) {
	err := Errorf(ErrType, pos, "%s", message)
	err.Suggestion = suggestion
	v.errors.Add(err)
}

func joinKeys(set map[string]bool) string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}
