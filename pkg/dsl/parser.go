package dsl

import (
	"strconv"
	"strings"
)

// Parser converts a token stream into an AST using recursive descent.
// Precedence, lowest to highest: || then && then ! then comparison inside
// conditions; + - then * / in arithmetic.
type Parser struct {
	tokens  []Token
	pos     int
	current Token
	errors  ErrorList
}

// NewParser creates a parser over a token stream.
func NewParser(tokens []Token) *Parser {
	p := &Parser{tokens: tokens}
	if len(tokens) > 0 {
		p.current = tokens[0]
	} else {
		p.current = Token{Kind: TokenEOF}
	}
	return p
}

// Parse tokenizes and parses a complete formula.
func Parse(input string) (Node, error) {
	tokens, err := Tokenize(input)
	if err != nil {
		return nil, err
	}
	return NewParser(tokens).ParseFormula()
}

// ParseFormula parses a whole formula; trailing tokens are an error.
func (p *Parser) ParseFormula() (Node, error) {
	node := p.parseExpression()
	if p.errors.HasErrors() {
		return nil, &p.errors
	}
	if p.current.Kind != TokenEOF {
		p.addError("unexpected token after expression: %q", p.current.Lexeme)
		return nil, &p.errors
	}
	return node, nil
}

func (p *Parser) parseExpression() Node {
	if p.current.Kind == TokenIf {
		return p.parseConditional()
	}

	left := p.parseTerm()
	for p.current.Kind == TokenPlus || p.current.Kind == TokenMinus {
		op := p.current.Lexeme
		pos := p.tokenPos()
		p.advance()
		right := p.parseTerm()
		left = &BinaryNode{Op: op, Left: left, Right: right, Position: pos}
	}
	return left
}

func (p *Parser) parseTerm() Node {
	left := p.parseFactor()
	for p.current.Kind == TokenMultiply || p.current.Kind == TokenDivide {
		op := p.current.Lexeme
		pos := p.tokenPos()
		p.advance()
		right := p.parseFactor()
		left = &BinaryNode{Op: op, Left: left, Right: right, Position: pos}
	}
	return left
}

func (p *Parser) parseFactor() Node {
	pos := p.tokenPos()

	switch p.current.Kind {
	case TokenPrimitive:
		name := p.current.Lexeme
		p.advance()
		return &PrimitiveNode{Name: name, Position: pos}

	case TokenFunction:
		return p.parseCall()

	case TokenReference:
		key := p.current.Lexeme
		p.advance()
		return &ReferenceNode{Key: key, Position: pos}

	case TokenDuration:
		lexeme := p.current.Lexeme
		minutes, err := ParseDuration(lexeme)
		if err != nil {
			p.addError("invalid duration: %s", lexeme)
			return nil
		}
		p.advance()
		return &DurationNode{Minutes: minutes, Raw: lexeme, Position: pos}

	case TokenNumber:
		value, err := strconv.ParseFloat(p.current.Lexeme, 64)
		if err != nil {
			p.addError("invalid number: %s", p.current.Lexeme)
			return nil
		}
		p.advance()
		return &NumberNode{Value: value, Position: pos}

	case TokenDateLiteral:
		lexeme := p.current.Lexeme
		day, month, err := parseDateLiteral(lexeme)
		if err != nil {
			p.addError("invalid date literal: %s", lexeme)
			return nil
		}
		p.advance()
		return &DateNode{Day: day, Month: month, Raw: lexeme, Position: pos}

	case TokenString:
		value := p.current.Lexeme
		p.advance()
		return &StringNode{Value: value, Position: pos}

	case TokenLParen:
		p.advance()
		node := p.parseExpression()
		if p.current.Kind != TokenRParen {
			p.addError("expected ')' but got %q", p.current.Lexeme)
			return nil
		}
		p.advance()
		return node

	case TokenIf:
		return p.parseConditional()

	case TokenDirection:
		name := p.current.Lexeme
		p.advance()
		return &DirectionNode{Name: name, Position: pos}

	case TokenBase:
		return p.parseBase()

	case TokenConditionVar:
		name := p.current.Lexeme
		p.advance()
		return &ConditionVarNode{Name: name, Position: pos}

	case TokenMinus:
		p.advance()
		factor := p.parseFactor()
		switch n := factor.(type) {
		case *NumberNode:
			return &NumberNode{Value: -n.Value, Position: pos}
		case *DurationNode:
			return negateDuration(n, pos)
		}
		p.addError("unary minus applies only to numbers and durations")
		return nil

	case TokenIdent:
		if p.peek().Kind == TokenLParen {
			p.addError("unknown function: %s", p.current.Lexeme)
		} else {
			p.addError("unknown name: %s", p.current.Lexeme)
		}
		return nil

	default:
		p.addError("unexpected token: %q (%s)", p.current.Lexeme, p.current.Kind)
		return nil
	}
}

func negateDuration(n *DurationNode, pos Position) *DurationNode {
	raw := n.Raw
	if strings.HasPrefix(raw, "-") {
		raw = raw[1:]
	} else if raw != "" {
		raw = "-" + raw
	}
	return &DurationNode{Minutes: -n.Minutes, Raw: raw, Position: pos}
}

func (p *Parser) parseCall() Node {
	pos := p.tokenPos()
	name := p.current.Lexeme
	p.advance()

	if p.current.Kind != TokenLParen {
		p.addError("expected '(' after function name %s", name)
		return nil
	}
	p.advance()

	var args []Node
	for p.current.Kind != TokenRParen && p.current.Kind != TokenEOF {
		arg := p.parseExpression()
		if arg != nil {
			args = append(args, arg)
		}
		if p.current.Kind == TokenComma {
			p.advance()
		} else if p.current.Kind != TokenRParen {
			p.addError("expected ',' or ')' in arguments to %s, got %q", name, p.current.Lexeme)
			return nil
		}
	}
	if p.current.Kind != TokenRParen {
		p.addError("expected ')' to close call to %s", name)
		return nil
	}
	p.advance()

	arity := Functions[name]
	switch {
	case arity < 0 && len(args) < -arity:
		p.errors.Add(Errorf(ErrSyntax, pos, "%s() requires at least %d arguments, got %d", name, -arity, len(args)))
	case arity >= 0 && len(args) != arity:
		p.errors.Add(Errorf(ErrSyntax, pos, "%s() requires %d arguments, got %d", name, arity, len(args)))
	}

	return &CallNode{Name: name, Args: args, Position: pos}
}

func (p *Parser) parseBase() Node {
	pos := p.tokenPos()
	name := p.current.Lexeme
	p.advance()

	if name != "custom" {
		return &BaseNode{Name: name, Position: pos}
	}

	if p.current.Kind != TokenLParen {
		p.addError("expected '(' after 'custom'")
		return nil
	}
	p.advance()

	var args []Node
	for p.current.Kind != TokenRParen && p.current.Kind != TokenEOF {
		arg := p.parseExpression()
		if arg != nil {
			args = append(args, arg)
		}
		if p.current.Kind == TokenComma {
			p.advance()
		} else if p.current.Kind != TokenRParen {
			break
		}
	}
	if p.current.Kind != TokenRParen {
		p.addError("expected ')' to close custom base")
		return nil
	}
	p.advance()

	if len(args) != 2 {
		p.errors.Add(Errorf(ErrSyntax, pos, "custom() requires 2 arguments (start, end), got %d", len(args)))
	}
	return &BaseNode{Name: "custom", CustomArgs: args, Position: pos}
}

// parseConditional parses an if/else chain. Every chain ends with a
// mandatory else branch so that a formula always produces a value.
func (p *Parser) parseConditional() Node {
	pos := p.tokenPos()

	p.advance() // 'if'
	if p.current.Kind != TokenLParen {
		p.addError("expected '(' after 'if'")
		return nil
	}
	p.advance()

	cond := p.parseCondition()

	if p.current.Kind != TokenRParen {
		p.addError("expected ')' after condition")
		return nil
	}
	p.advance()

	then := p.parseBlock()
	if then == nil {
		return nil
	}

	if p.current.Kind != TokenElse {
		p.addError("conditional requires an 'else' branch")
		return nil
	}
	p.advance() // 'else'

	var elseBranch Node
	if p.current.Kind == TokenIf {
		elseBranch = p.parseConditional()
	} else {
		elseBranch = p.parseBlock()
	}
	if elseBranch == nil {
		return nil
	}

	return &ConditionalNode{Cond: cond, Then: then, Else: elseBranch, Position: pos}
}

func (p *Parser) parseBlock() Node {
	if p.current.Kind != TokenLBrace {
		p.addError("expected '{' but got %q", p.current.Lexeme)
		return nil
	}
	p.advance()
	node := p.parseExpression()
	if p.current.Kind != TokenRBrace {
		p.addError("expected '}' but got %q", p.current.Lexeme)
		return nil
	}
	p.advance()
	return node
}

func (p *Parser) parseCondition() Node {
	return p.parseLogicalOr()
}

func (p *Parser) parseLogicalOr() Node {
	left := p.parseLogicalAnd()
	for p.current.Kind == TokenOr {
		pos := p.tokenPos()
		p.advance()
		right := p.parseLogicalAnd()
		left = &LogicalNode{Op: "||", Left: left, Right: right, Position: pos}
	}
	return left
}

func (p *Parser) parseLogicalAnd() Node {
	left := p.parseLogicalNot()
	for p.current.Kind == TokenAnd {
		pos := p.tokenPos()
		p.advance()
		right := p.parseLogicalNot()
		left = &LogicalNode{Op: "&&", Left: left, Right: right, Position: pos}
	}
	return left
}

func (p *Parser) parseLogicalNot() Node {
	if p.current.Kind == TokenNot {
		pos := p.tokenPos()
		p.advance()
		operand := p.parseLogicalNot()
		return &NotNode{Operand: operand, Position: pos}
	}
	return p.parseComparison()
}

// parseComparison parses a comparison or a parenthesized condition. Parens
// are ambiguous here: "(a && b)" is a grouped condition while "(x - y) > z"
// is an arithmetic group being compared, so the inner text is parsed with
// the full condition grammar (which nests, so "((a))" groups again) and the
// shape decided by what follows the closing paren.
func (p *Parser) parseComparison() Node {
	if p.current.Kind == TokenLParen {
		p.advance()

		inner := p.parseCondition()

		if p.current.Kind != TokenRParen {
			p.addError("expected ')' after parenthesized condition")
			return nil
		}
		p.advance()

		if isComparisonOp(p.current.Kind) {
			pos := p.tokenPos()
			op := p.current.Lexeme
			p.advance()
			right := p.parseExpression()
			return &ComparisonNode{Op: op, Left: inner, Right: right, Position: pos}
		}
		return inner
	}

	left := p.parseExpression()
	if !isComparisonOp(p.current.Kind) {
		return left
	}

	pos := p.tokenPos()
	op := p.current.Lexeme
	p.advance()
	right := p.parseExpression()
	return &ComparisonNode{Op: op, Left: left, Right: right, Position: pos}
}

func isComparisonOp(k TokenKind) bool {
	switch k {
	case TokenGT, TokenLT, TokenGTE, TokenLTE, TokenEQ, TokenNEQ:
		return true
	default:
		return false
	}
}

func (p *Parser) tokenPos() Position {
	return Position{Line: p.current.Line, Column: p.current.Column}
}

func (p *Parser) advance() {
	p.pos++
	if p.pos < len(p.tokens) {
		p.current = p.tokens[p.pos]
	} else {
		p.current = Token{Kind: TokenEOF}
	}
}

func (p *Parser) peek() Token {
	if p.pos+1 < len(p.tokens) {
		return p.tokens[p.pos+1]
	}
	return Token{Kind: TokenEOF}
}

func (p *Parser) addError(format string, args ...any) {
	p.errors.Add(Errorf(ErrSyntax, p.tokenPos(), format, args...))
}

func parseDateLiteral(literal string) (day, month int, err error) {
	parts := strings.SplitN(literal, "-", 2)
	if len(parts) != 2 {
		return 0, 0, Errorf(ErrSyntax, Position{}, "invalid date format: %s", literal)
	}
	d, convErr := strconv.Atoi(parts[0])
	if convErr != nil || d < 1 || d > 31 {
		return 0, 0, Errorf(ErrSyntax, Position{}, "invalid day: %s", parts[0])
	}
	m, ok := MonthNames[parts[1]]
	if !ok {
		return 0, 0, Errorf(ErrSyntax, Position{}, "invalid month: %s", parts[1])
	}
	return d, m, nil
}
