package engine

import (
	"github.com/creasty/defaults"

	"github.com/jcom-dev/zmanim/pkg/formula"
)

// Config represents the engine configuration
type Config struct {
	Formulas formula.Config `yaml:"formulas"`

	// Validation rejects formula sets with static errors at startup when
	// enabled.
	Validation ValidationConfig `yaml:"validation"`
}

// ValidationConfig controls startup validation of loaded formulas
type ValidationConfig struct {
	// Strict is a pointer so an explicit false survives default
	// application. Use IsStrict.
	Strict *bool `yaml:"strict" default:"true"`
}

// IsStrict reports whether startup validation rejects invalid formulas.
func (c *ValidationConfig) IsStrict() bool {
	return c.Strict == nil || *c.Strict
}

// Validate applies defaults and validates the configuration
func (c *Config) Validate() error {
	if err := defaults.Set(c); err != nil {
		return err
	}
	return c.Formulas.Validate()
}
