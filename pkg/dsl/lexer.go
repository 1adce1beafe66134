package dsl

import (
	"fmt"
	"strconv"
	"strings"
)

// Lexer converts formula source text into a token stream.
type Lexer struct {
	input string
	pos   int
	line  int
	col   int
}

// NewLexer creates a lexer over the given source text.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input, line: 1, col: 1}
}

// Tokenize lexes the whole input, appending a trailing EOF token. Comments
// are discarded. The first invalid character aborts lexing.
func Tokenize(input string) ([]Token, error) {
	l := NewLexer(input)
	var tokens []Token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == TokenEOF {
			return tokens, nil
		}
	}
}

type lexerState struct {
	pos, line, col int
}

func (l *Lexer) save() lexerState         { return lexerState{l.pos, l.line, l.col} }
func (l *Lexer) restore(s lexerState)     { l.pos, l.line, l.col = s.pos, s.line, s.col }
func (l *Lexer) position() Position       { return Position{Line: l.line, Column: l.col} }
func (l *Lexer) errorf(format string, args ...any) *Error {
	return Errorf(ErrLex, l.position(), format, args...)
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peekAt(offset int) byte {
	if l.pos+offset >= len(l.input) {
		return 0
	}
	return l.input[l.pos+offset]
}

func (l *Lexer) advance() byte {
	ch := l.input[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch
}

func (l *Lexer) skipSpaceAndComments() error {
	for l.pos < len(l.input) {
		switch ch := l.peek(); {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			l.advance()
		case ch == '/' && l.peekAt(1) == '/':
			for l.pos < len(l.input) && l.peek() != '\n' {
				l.advance()
			}
		case ch == '/' && l.peekAt(1) == '*':
			start := l.position()
			l.advance()
			l.advance()
			closed := false
			for l.pos < len(l.input) {
				if l.peek() == '*' && l.peekAt(1) == '/' {
					l.advance()
					l.advance()
					closed = true
					break
				}
				l.advance()
			}
			if !closed {
				return Errorf(ErrLex, start, "unterminated block comment")
			}
		default:
			return nil
		}
	}
	return nil
}

func (l *Lexer) next() (Token, error) {
	if err := l.skipSpaceAndComments(); err != nil {
		return Token{}, err
	}

	pos := l.position()
	if l.pos >= len(l.input) {
		return Token{Kind: TokenEOF, Line: pos.Line, Column: pos.Column}, nil
	}

	ch := l.peek()
	switch {
	case isDigit(ch):
		return l.lexNumber(pos)
	case isLetter(ch):
		ident := l.lexIdent()
		return Token{Kind: LookupIdent(ident), Lexeme: ident, Line: pos.Line, Column: pos.Column}, nil
	}

	switch ch {
	case '@':
		l.advance()
		if !isLetter(l.peek()) {
			return Token{}, l.errorf("expected identifier after '@'")
		}
		key := l.lexIdent()
		return Token{Kind: TokenReference, Lexeme: key, Line: pos.Line, Column: pos.Column}, nil
	case '"':
		return l.lexString(pos)
	case '+':
		l.advance()
		return Token{Kind: TokenPlus, Lexeme: "+", Line: pos.Line, Column: pos.Column}, nil
	case '-':
		l.advance()
		return Token{Kind: TokenMinus, Lexeme: "-", Line: pos.Line, Column: pos.Column}, nil
	case '*':
		l.advance()
		return Token{Kind: TokenMultiply, Lexeme: "*", Line: pos.Line, Column: pos.Column}, nil
	case '/':
		l.advance()
		return Token{Kind: TokenDivide, Lexeme: "/", Line: pos.Line, Column: pos.Column}, nil
	case '(':
		l.advance()
		return Token{Kind: TokenLParen, Lexeme: "(", Line: pos.Line, Column: pos.Column}, nil
	case ')':
		l.advance()
		return Token{Kind: TokenRParen, Lexeme: ")", Line: pos.Line, Column: pos.Column}, nil
	case '{':
		l.advance()
		return Token{Kind: TokenLBrace, Lexeme: "{", Line: pos.Line, Column: pos.Column}, nil
	case '}':
		l.advance()
		return Token{Kind: TokenRBrace, Lexeme: "}", Line: pos.Line, Column: pos.Column}, nil
	case ',':
		l.advance()
		return Token{Kind: TokenComma, Lexeme: ",", Line: pos.Line, Column: pos.Column}, nil
	case '>':
		l.advance()
		if l.peek() == '=' {
			l.advance()
			return Token{Kind: TokenGTE, Lexeme: ">=", Line: pos.Line, Column: pos.Column}, nil
		}
		return Token{Kind: TokenGT, Lexeme: ">", Line: pos.Line, Column: pos.Column}, nil
	case '<':
		l.advance()
		if l.peek() == '=' {
			l.advance()
			return Token{Kind: TokenLTE, Lexeme: "<=", Line: pos.Line, Column: pos.Column}, nil
		}
		return Token{Kind: TokenLT, Lexeme: "<", Line: pos.Line, Column: pos.Column}, nil
	case '=':
		l.advance()
		if l.peek() == '=' {
			l.advance()
			return Token{Kind: TokenEQ, Lexeme: "==", Line: pos.Line, Column: pos.Column}, nil
		}
		return Token{}, Errorf(ErrLex, pos, "unexpected character '=' (did you mean '=='?)")
	case '!':
		l.advance()
		if l.peek() == '=' {
			l.advance()
			return Token{Kind: TokenNEQ, Lexeme: "!=", Line: pos.Line, Column: pos.Column}, nil
		}
		return Token{Kind: TokenNot, Lexeme: "!", Line: pos.Line, Column: pos.Column}, nil
	case '&':
		l.advance()
		if l.peek() == '&' {
			l.advance()
			return Token{Kind: TokenAnd, Lexeme: "&&", Line: pos.Line, Column: pos.Column}, nil
		}
		return Token{}, Errorf(ErrLex, pos, "unexpected character '&' (did you mean '&&'?)")
	case '|':
		l.advance()
		if l.peek() == '|' {
			l.advance()
			return Token{Kind: TokenOr, Lexeme: "||", Line: pos.Line, Column: pos.Column}, nil
		}
		return Token{}, Errorf(ErrLex, pos, "unexpected character '|' (did you mean '||'?)")
	}

	return Token{}, Errorf(ErrLex, pos, "unexpected character %q", string(ch))
}

func (l *Lexer) lexIdent() string {
	start := l.pos
	for l.pos < len(l.input) && (isLetter(l.peek()) || isDigit(l.peek())) {
		l.advance()
	}
	return l.input[start:l.pos]
}

// lexNumber lexes a number, a duration literal (possibly chained, "1h 30min")
// or a date literal ("21-May"), all of which start with digits.
func (l *Lexer) lexNumber(pos Position) (Token, error) {
	start := l.pos
	for l.pos < len(l.input) && isDigit(l.peek()) {
		l.advance()
	}
	if l.peek() == '.' && isDigit(l.peekAt(1)) {
		l.advance()
		for l.pos < len(l.input) && isDigit(l.peek()) {
			l.advance()
		}
	}
	digits := l.input[start:l.pos]

	// Date literal: digits immediately followed by -MonthName.
	if l.peek() == '-' && isLetter(l.peekAt(1)) {
		saved := l.save()
		l.advance()
		month := l.lexIdent()
		if _, ok := MonthNames[month]; ok {
			return Token{Kind: TokenDateLiteral, Lexeme: digits + "-" + month, Line: pos.Line, Column: pos.Column}, nil
		}
		l.restore(saved)
	}

	// Duration literal: digits immediately followed by a unit.
	if isLetter(l.peek()) {
		unit := l.lexIdent()
		if !validDurationUnit(unit) {
			return Token{}, Errorf(ErrLex, pos, "invalid duration unit %q (use min, hr or h)", unit)
		}
		lexeme := digits + unit
		// Chain further segments separated by whitespace: "1h 30min".
		for {
			saved := l.save()
			for l.peek() == ' ' || l.peek() == '\t' {
				l.advance()
			}
			if !isDigit(l.peek()) {
				l.restore(saved)
				break
			}
			segStart := l.pos
			for l.pos < len(l.input) && isDigit(l.peek()) {
				l.advance()
			}
			segDigits := l.input[segStart:l.pos]
			if !isLetter(l.peek()) {
				l.restore(saved)
				break
			}
			segUnit := l.lexIdent()
			if !validDurationUnit(segUnit) {
				l.restore(saved)
				break
			}
			lexeme += " " + segDigits + segUnit
		}
		return Token{Kind: TokenDuration, Lexeme: lexeme, Line: pos.Line, Column: pos.Column}, nil
	}

	return Token{Kind: TokenNumber, Lexeme: digits, Line: pos.Line, Column: pos.Column}, nil
}

func (l *Lexer) lexString(pos Position) (Token, error) {
	l.advance() // opening quote
	start := l.pos
	for l.pos < len(l.input) && l.peek() != '"' {
		if l.peek() == '\n' {
			return Token{}, Errorf(ErrLex, pos, "unterminated string literal")
		}
		l.advance()
	}
	if l.pos >= len(l.input) {
		return Token{}, Errorf(ErrLex, pos, "unterminated string literal")
	}
	value := l.input[start:l.pos]
	l.advance() // closing quote
	return Token{Kind: TokenString, Lexeme: value, Line: pos.Line, Column: pos.Column}, nil
}

func validDurationUnit(unit string) bool {
	return unit == "min" || unit == "hr" || unit == "h"
}

func isLetter(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// ParseDuration converts a duration lexeme ("72min", "1h 30min") into minutes.
func ParseDuration(literal string) (float64, error) {
	var total float64
	fields := strings.Fields(literal)
	if len(fields) == 0 {
		return 0, fmt.Errorf("empty duration")
	}
	for _, field := range fields {
		i := 0
		for i < len(field) && (isDigit(field[i]) || field[i] == '.') {
			i++
		}
		if i == 0 || i == len(field) {
			return 0, fmt.Errorf("invalid duration segment %q", field)
		}
		value, err := strconv.ParseFloat(field[:i], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration segment %q", field)
		}
		switch field[i:] {
		case "min":
			total += value
		case "hr", "h":
			total += value * 60
		default:
			return 0, fmt.Errorf("invalid duration unit %q", field[i:])
		}
	}
	return total, nil
}
