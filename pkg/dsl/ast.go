package dsl

import (
	"fmt"
	"strconv"
	"strings"
)

// Node is a formula AST node. Nodes are immutable once built and serialize
// back to formula text via String; reparsing that text yields a structurally
// equal tree.
type Node interface {
	Pos() Position
	String() string
}

// PrimitiveNode references a built-in astronomical instant by name.
type PrimitiveNode struct {
	Name     string
	Position Position
}

func (n *PrimitiveNode) Pos() Position  { return n.Position }
func (n *PrimitiveNode) String() string { return n.Name }

// NumberNode is a numeric literal.
type NumberNode struct {
	Value    float64
	Position Position
}

func (n *NumberNode) Pos() Position { return n.Position }
func (n *NumberNode) String() string {
	return strconv.FormatFloat(n.Value, 'g', -1, 64)
}

// DurationNode is a span literal, stored in minutes. Raw preserves the
// author's spelling ("1h 30min") when available.
type DurationNode struct {
	Minutes  float64
	Raw      string
	Position Position
}

func (n *DurationNode) Pos() Position { return n.Position }
func (n *DurationNode) String() string {
	if n.Raw != "" {
		return n.Raw
	}
	return strconv.FormatFloat(n.Minutes, 'g', -1, 64) + "min"
}

// DateNode is a DD-Mon literal used in conditionals.
type DateNode struct {
	Day      int
	Month    int
	Raw      string
	Position Position
}

func (n *DateNode) Pos() Position  { return n.Position }
func (n *DateNode) String() string { return n.Raw }

// StringNode is a quoted literal (season labels).
type StringNode struct {
	Value    string
	Position Position
}

func (n *StringNode) Pos() Position  { return n.Position }
func (n *StringNode) String() string { return strconv.Quote(n.Value) }

// BinaryNode is an arithmetic operation.
type BinaryNode struct {
	Op       string // + - * /
	Left     Node
	Right    Node
	Position Position
}

func (n *BinaryNode) Pos() Position { return n.Position }
func (n *BinaryNode) String() string {
	return fmt.Sprintf("%s %s %s", wrapOperand(n.Left, n.Op, false), n.Op, wrapOperand(n.Right, n.Op, true))
}

func precedence(op string) int {
	switch op {
	case "*", "/":
		return 2
	default:
		return 1
	}
}

// wrapOperand parenthesizes a binary child when the serialization would
// otherwise reassociate on reparse.
func wrapOperand(n Node, parentOp string, rightSide bool) string {
	child, ok := n.(*BinaryNode)
	if !ok {
		return n.String()
	}
	pp, cp := precedence(parentOp), precedence(child.Op)
	if cp < pp || (cp == pp && rightSide) {
		return "(" + child.String() + ")"
	}
	return child.String()
}

// CallNode is a function call.
type CallNode struct {
	Name     string
	Args     []Node
	Position Position
}

func (n *CallNode) Pos() Position { return n.Position }
func (n *CallNode) String() string {
	args := make([]string, 0, len(n.Args))
	for _, a := range n.Args {
		args = append(args, a.String())
	}
	return n.Name + "(" + strings.Join(args, ", ") + ")"
}

// ReferenceNode references another formula by key.
type ReferenceNode struct {
	Key      string
	Position Position
}

func (n *ReferenceNode) Pos() Position  { return n.Position }
func (n *ReferenceNode) String() string { return "@" + n.Key }

// ConditionalNode is an if/else expression. Else is never nil: the grammar
// requires every conditional chain to end with an else branch.
type ConditionalNode struct {
	Cond     Node
	Then     Node
	Else     Node
	Position Position
}

func (n *ConditionalNode) Pos() Position { return n.Position }
func (n *ConditionalNode) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "if (%s) { %s }", n.Cond, n.Then)
	if chained, ok := n.Else.(*ConditionalNode); ok {
		b.WriteString(" else ")
		b.WriteString(chained.String())
	} else {
		fmt.Fprintf(&b, " else { %s }", n.Else)
	}
	return b.String()
}

// ComparisonNode compares two expressions.
type ComparisonNode struct {
	Op       string // > < >= <= == !=
	Left     Node
	Right    Node
	Position Position
}

func (n *ComparisonNode) Pos() Position { return n.Position }
func (n *ComparisonNode) String() string {
	return fmt.Sprintf("%s %s %s", n.Left, n.Op, n.Right)
}

// LogicalNode combines boolean expressions with && or ||.
type LogicalNode struct {
	Op       string
	Left     Node
	Right    Node
	Position Position
}

func (n *LogicalNode) Pos() Position { return n.Position }
func (n *LogicalNode) String() string {
	return fmt.Sprintf("%s %s %s", wrapLogical(n.Left, n.Op, false), n.Op, wrapLogical(n.Right, n.Op, true))
}

func logicalPrecedence(op string) int {
	if op == "&&" {
		return 2
	}
	return 1
}

func wrapLogical(n Node, parentOp string, rightSide bool) string {
	child, ok := n.(*LogicalNode)
	if !ok {
		return n.String()
	}
	pp, cp := logicalPrecedence(parentOp), logicalPrecedence(child.Op)
	if cp < pp || (cp == pp && rightSide) {
		return "(" + child.String() + ")"
	}
	return child.String()
}

// NotNode negates a boolean expression.
type NotNode struct {
	Operand  Node
	Position Position
}

func (n *NotNode) Pos() Position { return n.Position }
func (n *NotNode) String() string {
	if _, ok := n.Operand.(*NotNode); ok {
		return "!" + n.Operand.String()
	}
	return "!(" + n.Operand.String() + ")"
}

// ConditionVarNode reads one of the eight condition variables.
type ConditionVarNode struct {
	Name     string
	Position Position
}

func (n *ConditionVarNode) Pos() Position  { return n.Position }
func (n *ConditionVarNode) String() string { return n.Name }

// DirectionNode is a direction keyword argument.
type DirectionNode struct {
	Name     string
	Position Position
}

func (n *DirectionNode) Pos() Position  { return n.Position }
func (n *DirectionNode) String() string { return n.Name }

// BaseNode is a day-boundary policy argument; CustomArgs is non-nil only for
// custom(start, end).
type BaseNode struct {
	Name       string
	CustomArgs []Node
	Position   Position
}

func (n *BaseNode) Pos() Position { return n.Position }
func (n *BaseNode) String() string {
	if n.Name == "custom" {
		args := make([]string, 0, len(n.CustomArgs))
		for _, a := range n.CustomArgs {
			args = append(args, a.String())
		}
		return "custom(" + strings.Join(args, ", ") + ")"
	}
	return n.Name
}

// ExtractReferences collects the distinct formula keys referenced by the
// tree, in first-seen order.
func ExtractReferences(node Node) []string {
	var keys []string
	seen := make(map[string]bool)
	var walk func(Node)
	walk = func(n Node) {
		switch t := n.(type) {
		case *ReferenceNode:
			if !seen[t.Key] {
				seen[t.Key] = true
				keys = append(keys, t.Key)
			}
		case *BinaryNode:
			walk(t.Left)
			walk(t.Right)
		case *CallNode:
			for _, a := range t.Args {
				walk(a)
			}
		case *ConditionalNode:
			walk(t.Cond)
			walk(t.Then)
			walk(t.Else)
		case *ComparisonNode:
			walk(t.Left)
			walk(t.Right)
		case *LogicalNode:
			walk(t.Left)
			walk(t.Right)
		case *NotNode:
			walk(t.Operand)
		case *BaseNode:
			for _, a := range t.CustomArgs {
				walk(a)
			}
		}
	}
	if node != nil {
		walk(node)
	}
	return keys
}
