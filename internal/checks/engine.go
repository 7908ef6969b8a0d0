// Package checks evaluates the fixed battery of tiered QA checks and
// aggregates the results into a blocking verdict.
package checks

import (
	"fmt"
	"log/slog"
	"time"

	"qa-gate/internal/models"
)

// Tier is the severity class of a check
type Tier string

const (
	TierCritical    Tier = "critical"
	TierImportant   Tier = "important"
	TierRecommended Tier = "recommended"
)

// Predicate decides whether a snapshot passes a check and explains why
type Predicate func(s *Snapshot) (passed bool, message string)

// Definition is a code-defined check
type Definition struct {
	ID          string    `json:"id"`
	Name        string    `json:"check_name"`
	Tier        Tier      `json:"tier"`
	TargetTab   string    `json:"target_tab"`
	TargetField string    `json:"target_field"`
	Evaluate    Predicate `json:"-"`
}

// Result is the outcome of one check against one snapshot
type Result struct {
	Definition Definition `json:"definition"`
	Passed     bool       `json:"passed"`
	Message    string     `json:"message"`
}

// UnevaluableMessage is reported for a check whose predicate panicked
const UnevaluableMessage = "check could not be evaluated"

// Engine runs a registered battery of checks
type Engine struct {
	definitions []Definition
}

// NewEngine creates an engine evaluating defs in the given order
func NewEngine(defs ...Definition) *Engine {
	registered := make([]Definition, len(defs))
	copy(registered, defs)
	return &Engine{definitions: registered}
}

// NewEngineFor creates an engine with the battery for an entity table
func NewEngineFor(table models.EntityTable) *Engine {
	return NewEngine(DefinitionsFor(table)...)
}

// Definitions returns the registered checks in registration order
func (e *Engine) Definitions() []Definition {
	out := make([]Definition, len(e.definitions))
	copy(out, e.definitions)
	return out
}

// Evaluate runs every registered check against the snapshot and returns one
// result per check in registration order. A zero EvaluatedOn means today.
// The caller's snapshot is never modified.
func (e *Engine) Evaluate(s *Snapshot) []Result {
	snap := s.Clone()
	if snap.EvaluatedOn.IsZero() {
		snap.EvaluatedOn = time.Now().UTC()
	}
	results := make([]Result, 0, len(e.definitions))
	for _, def := range e.definitions {
		results = append(results, evaluateOne(def, snap))
	}
	return results
}

// evaluateOne runs a single predicate, degrading a panic or a missing
// predicate to a failing recommended-tier result.
func evaluateOne(def Definition, s *Snapshot) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("Check predicate panicked",
				"check_id", def.ID,
				"record_id", s.Record.ID,
				"panic", fmt.Sprint(r),
			)
			result = unevaluable(def)
		}
	}()

	if def.Evaluate == nil {
		return unevaluable(def)
	}

	passed, message := def.Evaluate(s)
	return Result{Definition: def, Passed: passed, Message: message}
}

func unevaluable(def Definition) Result {
	degraded := def
	degraded.Tier = TierRecommended
	return Result{Definition: degraded, Passed: false, Message: UnevaluableMessage}
}
