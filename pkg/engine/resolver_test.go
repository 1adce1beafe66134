package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcom-dev/zmanim/pkg/dsl"
)

func mustNodes(t *testing.T, formulas map[string]string) map[string]dsl.Node {
	t.Helper()
	nodes := make(map[string]dsl.Node, len(formulas))
	for key, src := range formulas {
		node, err := dsl.Parse(src)
		require.NoError(t, err, key)
		nodes[key] = node
	}
	return nodes
}

func TestResolverOrder(t *testing.T) {
	nodes := mustNodes(t, map[string]string{
		"sunset_zman": "sunset",
		"tzais":       "@sunset_zman + 40min",
		"motzei":      "@tzais + 10min",
		"alos":        "sunrise - 72min",
	})

	r, err := NewResolver(nodes)
	require.NoError(t, err)

	order := r.Order()
	require.Len(t, order, 4)

	pos := make(map[string]int, len(order))
	for i, key := range order {
		pos[key] = i
	}
	assert.Less(t, pos["sunset_zman"], pos["tzais"])
	assert.Less(t, pos["tzais"], pos["motzei"])
}

func TestResolverOrderDeterministic(t *testing.T) {
	nodes := mustNodes(t, map[string]string{
		"c": "sunset",
		"a": "sunrise",
		"b": "solar_noon",
	})

	r, err := NewResolver(nodes)
	require.NoError(t, err)

	first := r.Order()
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, r.Order())
	}
	// Independent keys come out sorted.
	assert.Equal(t, []string{"a", "b", "c"}, first)
}

func TestResolverCycle(t *testing.T) {
	nodes := mustNodes(t, map[string]string{
		"zman_a": "@zman_b + 30min",
		"zman_b": "@zman_a - 30min",
	})

	_, err := NewResolver(nodes)
	require.Error(t, err)

	var cycErr *CircularReferenceError
	require.ErrorAs(t, err, &cycErr)
	assert.Contains(t, err.Error(), "zman_a")
	assert.Contains(t, err.Error(), "zman_b")
}

func TestResolverSelfReference(t *testing.T) {
	nodes := mustNodes(t, map[string]string{
		"loop": "@loop + 10min",
	})

	_, err := NewResolver(nodes)
	require.Error(t, err)

	var cycErr *CircularReferenceError
	require.ErrorAs(t, err, &cycErr)
	assert.Contains(t, err.Error(), "loop")
}

func TestResolverLongerCycle(t *testing.T) {
	nodes := mustNodes(t, map[string]string{
		"a": "@c + 10min",
		"b": "@a + 10min",
		"c": "@b + 10min",
	})

	_, err := NewResolver(nodes)
	require.Error(t, err)

	var cycErr *CircularReferenceError
	require.ErrorAs(t, err, &cycErr)
	assert.GreaterOrEqual(t, len(cycErr.Cycle), 3)
}

func TestResolverIgnoresExternalReferences(t *testing.T) {
	// References to keys outside the set are left for evaluation time.
	nodes := mustNodes(t, map[string]string{
		"tzais": "@candle_lighting + 58min",
	})

	r, err := NewResolver(nodes)
	require.NoError(t, err)

	ctx := jerusalemCtx(t, 2025, time.March, 20)
	result := r.EvaluateSet(ctx)
	require.Contains(t, result.Errors, "tzais")

	var dslErr *dsl.Error
	require.ErrorAs(t, result.Errors["tzais"], &dslErr)
	assert.Equal(t, dsl.ErrReference, dslErr.Kind)
}

func TestEvaluateSet(t *testing.T) {
	nodes := mustNodes(t, map[string]string{
		"alos":        "sunrise - 72min",
		"sof_shma":    "proportional_hours(3, gra)",
		"tzais":       "sunset + 40min",
		"tzais_later": "@tzais + 10min",
	})

	r, err := NewResolver(nodes)
	require.NoError(t, err)

	ctx := jerusalemCtx(t, 2025, time.March, 20)
	result := r.EvaluateSet(ctx)

	assert.Empty(t, result.Errors)
	require.Len(t, result.Values, 4)
	assert.Equal(t,
		result.Values["tzais"].Time.Add(10*time.Minute),
		result.Values["tzais_later"].Time)
}

func TestEvaluateSetFailureRecoverableDownstream(t *testing.T) {
	nodes := mustNodes(t, map[string]string{
		"deep_dawn": "solar(40, before_sunrise)",
		"safe_dawn": "first_valid(@deep_dawn, solar_midnight)",
	})

	r, err := NewResolver(nodes)
	require.NoError(t, err)

	tz, err := time.LoadLocation("Europe/Oslo")
	require.NoError(t, err)
	date := time.Date(2025, 6, 21, 0, 0, 0, 0, tz)
	ctx := NewContext(date, 70.0, 19.0, 0, tz)

	result := r.EvaluateSet(ctx)

	// The impossible crossing fails, but the dependent recovers.
	assert.Contains(t, result.Errors, "deep_dawn")
	require.Contains(t, result.Values, "safe_dawn")

	want, err := EvaluateFormula("solar_midnight", ctx)
	require.NoError(t, err)
	assert.Equal(t, want.Time, result.Values["safe_dawn"].Time)
}

func TestEvaluateSetHardErrorDoesNotStopSet(t *testing.T) {
	nodes := mustNodes(t, map[string]string{
		"broken": "sunrise + sunset",
		"fine":   "sunset + 18min",
	})

	r, err := NewResolver(nodes)
	require.NoError(t, err)

	ctx := jerusalemCtx(t, 2025, time.March, 20)
	result := r.EvaluateSet(ctx)

	assert.Contains(t, result.Errors, "broken")
	assert.Contains(t, result.Values, "fine")
}
