package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcom-dev/zmanim/pkg/formula"
)

const testSet = `set: test
formulas:
  - key: alos
    english_name: Dawn
    formula: "solar(16.1, before_sunrise)"
  - key: sunrise_zman
    english_name: Sunrise
    formula: "visible_sunrise"
  - key: candle_lighting
    english_name: Candle Lighting
    formula: "sunset - 18min"
    tags:
      - key: shabbos
        type: event
      - key: day_before
        type: timing
  - key: tzais
    english_name: Nightfall
    formula: "sunset + 40min"
  - key: motzei_shabbos
    english_name: End of Shabbos
    formula: "@tzais + 32min"
    tags:
      - key: shabbos
        type: event
      - key: motzei
        type: timing
`

func lenient() ValidationConfig {
	strict := false
	return ValidationConfig{Strict: &strict}
}

func writeSet(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return dir
}

func newTestService(t *testing.T, content string) *Service {
	t.Helper()
	dir := writeSet(t, content)

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	svc, err := NewService(log, &Config{
		Formulas: formula.Config{Paths: []string{dir}},
	})
	require.NoError(t, err)
	return svc
}

func TestServiceStart(t *testing.T) {
	svc := newTestService(t, testSet)
	require.NoError(t, svc.Start())
	assert.Equal(t, 5, svc.Store().Len())
	require.NoError(t, svc.Stop())
}

func TestServiceStartEmptyCatalog(t *testing.T) {
	svc := newTestService(t, "set: empty\nformulas: []\n")
	assert.ErrorIs(t, svc.Start(), ErrNoFormulas)
}

func TestServiceStartStrictValidation(t *testing.T) {
	bad := `set: bad
formulas:
  - key: broken
    formula: "sunrise + sunset"
`
	svc := newTestService(t, bad)
	err := svc.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed validation")
}

func TestServiceStartLenientValidation(t *testing.T) {
	bad := `set: bad
formulas:
  - key: broken
    formula: "sunrise + sunset"
  - key: fine
    formula: "sunset + 18min"
`
	dir := writeSet(t, bad)
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	svc, err := NewService(log, &Config{
		Formulas:   formula.Config{Paths: []string{dir}},
		Validation: lenient(),
	})
	require.NoError(t, err)
	require.NoError(t, svc.Start())

	errs, err := svc.ValidateAll()
	require.NoError(t, err)
	assert.Contains(t, errs, "broken")
	assert.NotContains(t, errs, "fine")
}

func TestServiceStartRejectsCycles(t *testing.T) {
	cyclic := `set: cyclic
formulas:
  - key: zman_a
    formula: "@zman_b + 30min"
  - key: zman_b
    formula: "@zman_a - 30min"
`
	dir := writeSet(t, cyclic)
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	svc, err := NewService(log, &Config{
		Formulas:   formula.Config{Paths: []string{dir}},
		Validation: lenient(),
	})
	require.NoError(t, err)

	err = svc.Start()
	require.Error(t, err)
	var cycErr *CircularReferenceError
	assert.ErrorAs(t, err, &cycErr)
}

func TestEvaluateDayNotStarted(t *testing.T) {
	svc := newTestService(t, testSet)
	_, err := svc.EvaluateDay(context.Background(), DayRequest{})
	assert.ErrorIs(t, err, ErrNotStarted)
}

func TestEvaluateDay(t *testing.T) {
	svc := newTestService(t, testSet)
	require.NoError(t, svc.Start())

	res, err := svc.EvaluateDay(context.Background(), DayRequest{
		Date:      time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC),
		Latitude:  jerusalemLat,
		Longitude: jerusalemLon,
		Timezone:  "Asia/Jerusalem",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Empty(t, res.Errors)

	// No events active: both shabbos formulas are hidden.
	assert.ElementsMatch(t, []string{"candle_lighting", "motzei_shabbos"}, res.Hidden)
	assert.Contains(t, res.Values, "alos")
	assert.Contains(t, res.Values, "tzais")
	assert.NotContains(t, res.Values, "candle_lighting")
}

func TestEvaluateDayWithEvents(t *testing.T) {
	svc := newTestService(t, testSet)
	require.NoError(t, svc.Start())

	base := DayRequest{
		Date:      time.Date(2025, 3, 21, 0, 0, 0, 0, time.UTC),
		Latitude:  jerusalemLat,
		Longitude: jerusalemLon,
		Timezone:  "Asia/Jerusalem",
	}

	// Friday: erev_shabbos active, candle lighting shows via day_before.
	friday := base
	friday.ActiveEvents = []string{"erev_shabbos"}
	res, err := svc.EvaluateDay(context.Background(), friday)
	require.NoError(t, err)
	assert.Contains(t, res.Values, "candle_lighting")
	assert.NotContains(t, res.Values, "motzei_shabbos")

	// Shabbos itself: motzei shows, candle lighting does not.
	shabbos := base
	shabbos.ActiveEvents = []string{"shabbos"}
	res, err = svc.EvaluateDay(context.Background(), shabbos)
	require.NoError(t, err)
	assert.Contains(t, res.Values, "motzei_shabbos")
	assert.NotContains(t, res.Values, "candle_lighting")

	// The hidden dependency tzais is still computed for motzei_shabbos.
	assert.Equal(t,
		res.Values["tzais"].Time.Add(32*time.Minute),
		res.Values["motzei_shabbos"].Time)
}

func TestEvaluateDayKeySubset(t *testing.T) {
	svc := newTestService(t, testSet)
	require.NoError(t, svc.Start())

	res, err := svc.EvaluateDay(context.Background(), DayRequest{
		Date:      time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC),
		Latitude:  jerusalemLat,
		Longitude: jerusalemLon,
		Timezone:  "Asia/Jerusalem",
		Keys:      []string{"alos"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"alos"}, res.Order)
	assert.Len(t, res.Values, 1)
}

func TestEvaluateDayUnknownTimezone(t *testing.T) {
	svc := newTestService(t, testSet)
	require.NoError(t, svc.Start())

	_, err := svc.EvaluateDay(context.Background(), DayRequest{
		Date:     time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC),
		Timezone: "Mars/Olympus_Mons",
	})
	assert.ErrorIs(t, err, ErrUnknownTimezone)
}

func TestEvaluateDayCancelled(t *testing.T) {
	svc := newTestService(t, testSet)
	require.NoError(t, svc.Start())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.EvaluateDay(ctx, DayRequest{
		Date:      time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC),
		Latitude:  jerusalemLat,
		Longitude: jerusalemLon,
		Timezone:  "Asia/Jerusalem",
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEvaluateDayFailuresSurfacePerKey(t *testing.T) {
	set := `set: polar
formulas:
  - key: deep_dawn
    formula: "solar(40, before_sunrise)"
  - key: safe_dawn
    formula: "first_valid(@deep_dawn, solar_midnight)"
`
	svc := newTestService(t, set)
	require.NoError(t, svc.Start())

	res, err := svc.EvaluateDay(context.Background(), DayRequest{
		Date:      time.Date(2025, 6, 21, 0, 0, 0, 0, time.UTC),
		Latitude:  70.0,
		Longitude: 19.0,
		Timezone:  "Europe/Oslo",
	})
	require.NoError(t, err)

	assert.Contains(t, res.Errors, "deep_dawn")
	assert.Contains(t, res.Values, "safe_dawn")
}
