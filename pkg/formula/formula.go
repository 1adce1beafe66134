// Package formula holds the formula catalog: named, tagged formulas loaded
// from set files, their parsed expressions, and the event visibility rules
// that decide which formulas apply on a given day.
package formula

import (
	"errors"
	"sync"

	"github.com/jcom-dev/zmanim/pkg/dsl"
)

var (
	ErrMissingKey     = errors.New("formula key is required")
	ErrMissingFormula = errors.New("formula expression is required")
)

// TagType classifies a tag.
type TagType string

const (
	// TagEvent marks a calendar event the formula is tied to.
	TagEvent TagType = "event"
	// TagJewishDay marks a day classification, matched like an event.
	TagJewishDay TagType = "jewish_day"
	// TagShita attributes the formula to a halachic opinion. Informational
	// only; it never affects visibility.
	TagShita TagType = "shita"
	// TagTiming modifies how the formula's event tags are matched.
	TagTiming TagType = "timing"
)

// Tag attaches event or timing metadata to a formula.
type Tag struct {
	Key     string  `yaml:"key"`
	Type    TagType `yaml:"type"`
	Negated bool    `yaml:"negated"`
}

// Formula is one named calculation: a key, display names, the formula
// source, and the tags controlling when it is shown. The parsed expression
// is cached after the first use.
type Formula struct {
	Key         string `yaml:"key"`
	EnglishName string `yaml:"english_name"`
	HebrewName  string `yaml:"hebrew_name"`
	Source      string `yaml:"formula"`
	Tags        []Tag  `yaml:"tags"`

	parseOnce sync.Once
	node      dsl.Node
	parseErr  error
}

// Validate checks the declaration is usable.
func (f *Formula) Validate() error {
	if f.Key == "" {
		return ErrMissingKey
	}
	if f.Source == "" {
		return ErrMissingFormula
	}
	return nil
}

// AST returns the parsed expression, parsing the source on first call.
func (f *Formula) AST() (dsl.Node, error) {
	f.parseOnce.Do(func() {
		f.node, f.parseErr = dsl.Parse(f.Source)
	})
	return f.node, f.parseErr
}

// References returns the formula keys this formula refers to.
func (f *Formula) References() ([]string, error) {
	node, err := f.AST()
	if err != nil {
		return nil, err
	}
	return dsl.ExtractReferences(node), nil
}
