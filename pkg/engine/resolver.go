package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/heimdalr/dag"

	"github.com/jcom-dev/zmanim/pkg/dsl"
)

// CircularReferenceError reports a reference cycle between formulas. Cycle
// holds the keys along the loop, ending where it started.
type CircularReferenceError struct {
	Cycle []string
}

func (e *CircularReferenceError) Error() string {
	return "circular reference: " + strings.Join(e.Cycle, " -> ")
}

// Resolver orders a set of formulas so every formula runs after the
// formulas it references. References to keys outside the set are left for
// the executor to reject.
type Resolver struct {
	formulas map[string]dsl.Node
	refs     map[string][]string
	graph    *dag.DAG
}

// NewResolver builds a resolver for a formula set, rejecting reference
// cycles up front.
func NewResolver(formulas map[string]dsl.Node) (*Resolver, error) {
	r := &Resolver{
		formulas: formulas,
		refs:     make(map[string][]string, len(formulas)),
		graph:    dag.NewDAG(),
	}

	keys := make([]string, 0, len(formulas))
	for key := range formulas {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if err := r.graph.AddVertexByID(key, key); err != nil {
			return nil, fmt.Errorf("adding formula %s: %w", key, err)
		}
	}

	for _, key := range keys {
		for _, ref := range dsl.ExtractReferences(formulas[key]) {
			if ref == key {
				return nil, &CircularReferenceError{Cycle: []string{key, key}}
			}
			if _, ok := formulas[ref]; !ok {
				continue
			}
			r.refs[key] = append(r.refs[key], ref)
			if err := r.graph.AddEdge(ref, key); err != nil {
				if cycle := r.findCycle(ref, key); cycle != nil {
					return nil, &CircularReferenceError{Cycle: cycle}
				}
				return nil, fmt.Errorf("adding dependency %s -> %s: %w", ref, key, err)
			}
		}
	}

	return r, nil
}

// findCycle walks reference edges from start looking for a path back to
// target, returning the loop with the closing key repeated.
func (r *Resolver) findCycle(start, target string) []string {
	var path []string
	var walk func(key string) bool
	walk = func(key string) bool {
		path = append(path, key)
		if key == target {
			return true
		}
		for _, ref := range r.refs[key] {
			if walk(ref) {
				return true
			}
		}
		path = path[:len(path)-1]
		return false
	}
	if walk(start) {
		return append([]string{target}, path...)
	}
	return nil
}

// Order returns the evaluation order. Ties break lexicographically, so the
// order is stable across runs.
func (r *Resolver) Order() []string {
	indegree := make(map[string]int, len(r.formulas))
	dependents := make(map[string][]string, len(r.formulas))
	for key := range r.formulas {
		indegree[key] = 0
	}
	for key, refs := range r.refs {
		indegree[key] = len(refs)
		for _, ref := range refs {
			dependents[ref] = append(dependents[ref], key)
		}
	}

	ready := make([]string, 0, len(indegree))
	for key, deg := range indegree {
		if deg == 0 {
			ready = append(ready, key)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(indegree))
	for len(ready) > 0 {
		key := ready[0]
		ready = ready[1:]
		order = append(order, key)

		released := false
		for _, dep := range dependents[key] {
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = append(ready, dep)
				released = true
			}
		}
		if released {
			sort.Strings(ready)
		}
	}
	return order
}

// SetResult holds the outcome of evaluating a formula set: values for the
// formulas that produced one and per-key errors for the rest.
type SetResult struct {
	Order  []string
	Values map[string]Value
	Errors map[string]error
}

// EvaluateSet evaluates every formula in dependency order against one
// context. A formula that fails does not stop the set: its dependents see
// the failure through their reference and may recover with first_valid.
func (r *Resolver) EvaluateSet(ctx *Context) *SetResult {
	result := &SetResult{
		Order:  r.Order(),
		Values: make(map[string]Value),
		Errors: make(map[string]error),
	}

	for _, key := range result.Order {
		v, err := Evaluate(r.formulas[key], ctx)
		if err != nil {
			result.Errors[key] = err
			continue
		}
		// Failures stay referenceable so alternatives downstream can
		// recover, but surface as errors for the failed key itself.
		ctx.Resolved[key] = v
		if v.IsFailure() {
			result.Errors[key] = fmt.Errorf("%s", v.Reason)
			continue
		}
		result.Values[key] = v
	}
	return result
}
