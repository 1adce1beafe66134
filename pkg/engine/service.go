package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jcom-dev/zmanim/pkg/dsl"
	"github.com/jcom-dev/zmanim/pkg/formula"
	"github.com/jcom-dev/zmanim/pkg/observability"
)

// Service encapsulates the calculation engine: the loaded formula catalog
// and day evaluation over it.
type Service struct {
	config *Config
	log    *logrus.Logger

	store   *formula.Store
	started bool
}

// NewService creates a new engine service
func NewService(log *logrus.Logger, cfg *Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Service{
		config: cfg,
		log:    log,
	}, nil
}

// Start loads the formula catalog, validates it, and rejects reference
// cycles up front so per-day evaluation cannot hit them.
func (s *Service) Start() error {
	store, err := formula.Load(&s.config.Formulas)
	if err != nil {
		return fmt.Errorf("failed to load formulas: %w", err)
	}
	if store.Len() == 0 {
		return ErrNoFormulas
	}
	s.store = store

	if errs := s.validateAll(); len(errs) > 0 {
		for key, verr := range errs {
			observability.RecordParseError(key)
			s.log.WithError(verr).WithField("formula", key).Warn("Formula validation failed")
		}
		if s.config.Validation.IsStrict() {
			return fmt.Errorf("%d formulas failed validation", len(errs))
		}
	}

	nodes, err := store.Nodes()
	if err != nil {
		return err
	}
	if _, err := NewResolver(nodes); err != nil {
		return err
	}

	observability.FormulasLoaded.Set(float64(store.Len()))
	s.log.WithField("formulas", store.Len()).Info("Engine service started successfully")
	s.started = true

	return nil
}

// Stop gracefully shuts down the engine service
func (s *Service) Stop() error {
	return nil
}

// Store exposes the loaded formula catalog.
func (s *Service) Store() *formula.Store {
	return s.store
}

// validateAll runs static validation over every loaded formula.
func (s *Service) validateAll() map[string]error {
	keys := s.store.Keys()
	errs := make(map[string]error)
	for _, key := range keys {
		f, _ := s.store.Get(key)
		node, err := f.AST()
		if err != nil {
			errs[key] = err
			continue
		}
		v := dsl.NewValidator()
		v.SetAvailableKeys(keys)
		v.SetCurrentKey(key)
		if err := v.Run(node); err != nil {
			errs[key] = err
		}
	}
	return errs
}

// ValidateAll validates the loaded catalog and returns per-formula errors.
func (s *Service) ValidateAll() (map[string]error, error) {
	if s.store == nil {
		return nil, ErrNotStarted
	}
	return s.validateAll(), nil
}

// DayRequest describes one day's evaluation: the civil date, the observer's
// position, and the calendar events active that day.
type DayRequest struct {
	Date      time.Time
	Latitude  float64
	Longitude float64
	Elevation float64
	Timezone  string

	// Keys restricts evaluation to the named formulas. Empty means the
	// whole catalog.
	Keys []string

	// ActiveEvents are the day's calendar event codes, used for tag
	// filtering.
	ActiveEvents []string

	// IgnoreElevation forces sea-level horizons.
	IgnoreElevation bool
}

// DayResult is the outcome of one day's evaluation.
type DayResult struct {
	RunID  string
	Date   time.Time
	Order  []string
	Values map[string]Value
	Errors map[string]string
	Hidden []string
}

// EvaluateDay evaluates the catalog for one day. Formulas hidden by event
// tags are skipped but still computed when a visible formula references
// them. Failed formulas surface per key without stopping the rest.
func (s *Service) EvaluateDay(ctx context.Context, req DayRequest) (*DayResult, error) {
	if s.store == nil {
		return nil, ErrNotStarted
	}

	tz := time.UTC
	if req.Timezone != "" {
		loc, err := time.LoadLocation(req.Timezone)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTimezone, req.Timezone)
		}
		tz = loc
	}

	runID := uuid.New().String()
	started := time.Now()
	log := s.log.WithFields(logrus.Fields{
		"run_id": runID,
		"date":   req.Date.Format("2006-01-02"),
	})

	visible, hidden := s.visibleKeys(req)
	needed, err := s.withDependencies(visible)
	if err != nil {
		return nil, err
	}

	nodes, err := s.store.NodesFor(needed)
	if err != nil {
		return nil, err
	}
	resolver, err := NewResolver(nodes)
	if err != nil {
		return nil, err
	}

	evalCtx := NewContext(req.Date, req.Latitude, req.Longitude, req.Elevation, tz)
	evalCtx.Options.IgnoreElevation = req.IgnoreElevation

	result := &DayResult{
		RunID:  runID,
		Date:   req.Date,
		Values: make(map[string]Value),
		Errors: make(map[string]string),
		Hidden: hidden,
	}

	visibleSet := make(map[string]bool, len(visible))
	for _, key := range visible {
		visibleSet[key] = true
	}

	for _, key := range resolver.Order() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		formulaStart := time.Now()
		v, evalErr := Evaluate(nodes[key], evalCtx)
		elapsed := time.Since(formulaStart).Seconds()

		switch {
		case evalErr != nil:
			observability.RecordEvaluation(key, "error", elapsed)
			log.WithError(evalErr).WithField("formula", key).Warn("Formula evaluation failed")
			if visibleSet[key] {
				result.Errors[key] = evalErr.Error()
			}
			continue
		case v.IsFailure():
			observability.RecordEvaluation(key, "failure", elapsed)
			observability.RecordSolverFailure(key)
			evalCtx.Resolved[key] = v
			if visibleSet[key] {
				result.Errors[key] = v.Reason
			}
			continue
		default:
			observability.RecordEvaluation(key, "success", elapsed)
			evalCtx.Resolved[key] = v
		}

		if visibleSet[key] {
			result.Order = append(result.Order, key)
			result.Values[key] = v
		}
	}

	status := "success"
	if len(result.Errors) > 0 {
		status = "partial"
	}
	observability.RecordDayEvaluation(status, time.Since(started).Seconds())
	log.WithFields(logrus.Fields{
		"computed": len(result.Values),
		"errors":   len(result.Errors),
		"hidden":   len(result.Hidden),
	}).Info("Day evaluation complete")

	return result, nil
}

// visibleKeys applies the request's key subset and event tag filtering.
func (s *Service) visibleKeys(req DayRequest) (visible, hidden []string) {
	keys := req.Keys
	if len(keys) == 0 {
		keys = s.store.Keys()
	}

	for _, key := range keys {
		f, ok := s.store.Get(key)
		if !ok {
			continue
		}
		if formula.ShouldShow(f.Tags, req.ActiveEvents) {
			visible = append(visible, key)
		} else {
			observability.RecordFormulaHidden(key)
			hidden = append(hidden, key)
		}
	}
	sort.Strings(visible)
	sort.Strings(hidden)
	return visible, hidden
}

// withDependencies expands a key list with every formula it transitively
// references.
func (s *Service) withDependencies(keys []string) ([]string, error) {
	seen := make(map[string]bool, len(keys))
	queue := append([]string(nil), keys...)
	for len(queue) > 0 {
		key := queue[0]
		queue = queue[1:]
		if seen[key] {
			continue
		}
		seen[key] = true

		f, ok := s.store.Get(key)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrFormulaNotFound, key)
		}
		refs, err := f.References()
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", key, err)
		}
		for _, ref := range refs {
			if _, ok := s.store.Get(ref); ok && !seen[ref] {
				queue = append(queue, ref)
			}
		}
	}

	out := make([]string, 0, len(seen))
	for key := range seen {
		out = append(out, key)
	}
	sort.Strings(out)
	return out, nil
}
