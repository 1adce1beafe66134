// Package dsl implements the zmanim formula language: lexing, parsing,
// static validation and formula-text serialization of the AST.
package dsl

import "fmt"

// TokenKind classifies a lexical token.
type TokenKind int

// Token kinds produced by the lexer.
const (
	TokenIllegal TokenKind = iota
	TokenEOF
	TokenIdent

	TokenPrimitive    // visible_sunrise, solar_noon, ...
	TokenFunction     // solar, proportional_hours, ...
	TokenDirection    // before_visible_sunrise, after_noon, ...
	TokenBase         // gra, mga_72, baal_hatanya, custom, ...
	TokenConditionVar // latitude, month, season, ...

	TokenIf
	TokenElse

	TokenNumber
	TokenDuration    // 72min, 1h 30min
	TokenDateLiteral // 21-May
	TokenString      // "summer"
	TokenReference   // @alos_hashachar (lexeme holds the key without @)

	TokenPlus
	TokenMinus
	TokenMultiply
	TokenDivide
	TokenLParen
	TokenRParen
	TokenLBrace
	TokenRBrace
	TokenComma

	TokenGT
	TokenLT
	TokenGTE
	TokenLTE
	TokenEQ
	TokenNEQ
	TokenAnd
	TokenOr
	TokenNot
)

var tokenKindNames = map[TokenKind]string{
	TokenIllegal:      "ILLEGAL",
	TokenEOF:          "EOF",
	TokenIdent:        "IDENT",
	TokenPrimitive:    "PRIMITIVE",
	TokenFunction:     "FUNCTION",
	TokenDirection:    "DIRECTION",
	TokenBase:         "BASE",
	TokenConditionVar: "CONDITION_VAR",
	TokenIf:           "IF",
	TokenElse:         "ELSE",
	TokenNumber:       "NUMBER",
	TokenDuration:     "DURATION",
	TokenDateLiteral:  "DATE_LITERAL",
	TokenString:       "STRING",
	TokenReference:    "REFERENCE",
	TokenPlus:         "PLUS",
	TokenMinus:        "MINUS",
	TokenMultiply:     "MULTIPLY",
	TokenDivide:       "DIVIDE",
	TokenLParen:       "LPAREN",
	TokenRParen:       "RPAREN",
	TokenLBrace:       "LBRACE",
	TokenRBrace:       "RBRACE",
	TokenComma:        "COMMA",
	TokenGT:           "GT",
	TokenLT:           "LT",
	TokenGTE:          "GTE",
	TokenLTE:          "LTE",
	TokenEQ:           "EQ",
	TokenNEQ:          "NEQ",
	TokenAnd:          "AND",
	TokenOr:           "OR",
	TokenNot:          "NOT",
}

func (k TokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(k))
}

// Token is a lexical token with its source position.
type Token struct {
	Kind   TokenKind
	Lexeme string
	Line   int
	Column int
}

func (t Token) String() string {
	return fmt.Sprintf("%s %q %d:%d", t.Kind, t.Lexeme, t.Line, t.Column)
}

// Position is a location in formula source, 1-based.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Primitives are the built-in astronomical instants. sunrise and sunset are
// aliases for the visible variants.
var Primitives = map[string]bool{
	"visible_sunrise":   true,
	"visible_sunset":    true,
	"sunrise":           true,
	"sunset":            true,
	"geometric_sunrise": true,
	"geometric_sunset":  true,
	"solar_noon":        true,
	"solar_midnight":    true,
	"civil_dawn":        true,
	"civil_dusk":        true,
	"nautical_dawn":     true,
	"nautical_dusk":     true,
	"astronomical_dawn": true,
	"astronomical_dusk": true,
}

// Functions are the built-in formula functions with their required arity.
// A negative arity means "at least that many" (variadic).
var Functions = map[string]int{
	"solar":                2,
	"seasonal_solar":       2,
	"proportional_hours":   2,
	"proportional_minutes": 2,
	"midpoint":             2,
	"first_valid":          -2,
	"earlier_of":           2,
	"later_of":             2,
}

// Directions are the valid direction arguments for solar().
// before_sunrise, after_sunrise and after_sunset are aliases for the
// visible variants.
var Directions = map[string]bool{
	"before_sunrise": true,
	"after_sunrise":  true,
	"after_sunset":   true,

	"before_visible_sunrise": true,
	"after_visible_sunrise":  true,
	"before_visible_sunset":  true,
	"after_visible_sunset":   true,

	"before_geometric_sunrise": true,
	"after_geometric_sunrise":  true,
	"before_geometric_sunset":  true,
	"after_geometric_sunset":   true,

	"before_noon": true,
	"after_noon":  true,
}

// Bases are the named day-boundary policies accepted by proportional_hours().
var Bases = map[string]bool{
	"gra": true, // sunrise to sunset

	// Fixed-minute MGA variants
	"mga":     true, // 72 minutes before sunrise to 72 after sunset
	"mga_60":  true,
	"mga_72":  true,
	"mga_90":  true,
	"mga_96":  true,
	"mga_120": true,

	// Zmaniyos (day-length proportional) MGA variants
	"mga_72_zmanis": true, // 1/10 of the day
	"mga_90_zmanis": true, // 1/8 of the day
	"mga_96_zmanis": true, // 1/7.5 of the day

	// Solar-angle MGA variants
	"mga_16_1": true,
	"mga_18":   true,
	"mga_19_8": true,
	"mga_26":   true,

	"baal_hatanya": true, // 1.583 degrees below horizon, both boundaries
	"ateret_torah": true, // sunrise to sunset + 40 minutes
	"custom":       true, // custom(start, end)
}

// ConditionVars are the read-only variables usable inside conditionals.
var ConditionVars = map[string]bool{
	"latitude":    true,
	"longitude":   true,
	"day_length":  true,
	"month":       true,
	"day":         true,
	"day_of_year": true,
	"date":        true,
	"season":      true,
}

// MonthNames maps the abbreviations used in date literals to month numbers.
var MonthNames = map[string]int{
	"Jan": 1, "Feb": 2, "Mar": 3, "Apr": 4, "May": 5, "Jun": 6,
	"Jul": 7, "Aug": 8, "Sep": 9, "Oct": 10, "Nov": 11, "Dec": 12,
}

// LookupIdent classifies an identifier against the keyword tables.
func LookupIdent(ident string) TokenKind {
	switch ident {
	case "if":
		return TokenIf
	case "else":
		return TokenElse
	}
	if Primitives[ident] {
		return TokenPrimitive
	}
	if _, ok := Functions[ident]; ok {
		return TokenFunction
	}
	if Directions[ident] {
		return TokenDirection
	}
	if Bases[ident] {
		return TokenBase
	}
	if ConditionVars[ident] {
		return TokenConditionVar
	}
	return TokenIdent
}
