package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.Validate())

	// Strict validation is the default however the config was built, not
	// only when it came through the CLI loader.
	assert.True(t, cfg.Validation.IsStrict())
	assert.Equal(t, []string{"formulas"}, cfg.Formulas.Paths)
}

func TestConfigExplicitLenientSurvivesDefaults(t *testing.T) {
	cfg := &Config{Validation: lenient()}
	require.NoError(t, cfg.Validate())
	assert.False(t, cfg.Validation.IsStrict())
}

func TestConfigKeepsConfiguredPaths(t *testing.T) {
	cfg := &Config{}
	cfg.Formulas.Paths = []string{"/etc/zmanim/sets"}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, []string{"/etc/zmanim/sets"}, cfg.Formulas.Paths)
}

func TestValidationConfigZeroValueIsStrict(t *testing.T) {
	var vc ValidationConfig
	assert.True(t, vc.IsStrict())
}
