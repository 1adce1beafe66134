package dsl

import (
	"fmt"
	"strings"
)

// ErrorKind classifies a formula error.
type ErrorKind int

// Error kinds, roughly mirroring the pipeline stage that produced them.
const (
	ErrLex ErrorKind = iota
	ErrSyntax
	ErrType
	ErrReference
	ErrEvaluation
)

var errorKindNames = map[ErrorKind]string{
	ErrLex:        "lex error",
	ErrSyntax:     "syntax error",
	ErrType:       "type error",
	ErrReference:  "reference error",
	ErrEvaluation: "evaluation error",
}

func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("error(%d)", int(k))
}

// Error is a formula error carrying its source position. A zero Line means
// the error has no meaningful position (errors raised during evaluation).
type Error struct {
	Kind       ErrorKind
	Message    string
	Line       int
	Column     int
	Suggestion string
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s at %d:%d: %s", e.Kind, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Errorf builds an Error at a position.
func Errorf(kind ErrorKind, pos Position, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Line:    pos.Line,
		Column:  pos.Column,
	}
}

// ErrorList accumulates formula errors; it is itself an error.
type ErrorList []*Error

// Add appends an error to the list.
func (l *ErrorList) Add(err *Error) {
	*l = append(*l, err)
}

// HasErrors reports whether any error was recorded.
func (l *ErrorList) HasErrors() bool {
	return len(*l) > 0
}

func (l *ErrorList) Error() string {
	if len(*l) == 0 {
		return "no errors"
	}
	msgs := make([]string, 0, len(*l))
	for _, e := range *l {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}
