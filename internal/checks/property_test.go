//go:build property
// +build property

package checks

import (
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

var tiers = []Tier{TierCritical, TierImportant, TierRecommended}

// buildResults turns generated tier indexes and outcomes into results
func buildResults(tierIdx []int, outcomes []bool) []Result {
	n := len(tierIdx)
	if len(outcomes) < n {
		n = len(outcomes)
	}
	results := make([]Result, n)
	for i := 0; i < n; i++ {
		results[i] = result(string(rune('a'+i%26)), tiers[tierIdx[i]], outcomes[i])
	}
	return results
}

// TestSummarizeProperties checks Summarize over arbitrary result sets
func TestSummarizeProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("IsBlocked iff a critical check failed", prop.ForAll(
		func(tierIdx []int, outcomes []bool) bool {
			results := buildResults(tierIdx, outcomes)
			criticalFailed := false
			for _, r := range results {
				if r.Definition.Tier == TierCritical && !r.Passed {
					criticalFailed = true
				}
			}
			return Summarize(results).IsBlocked == criticalFailed
		},
		gen.SliceOf(gen.IntRange(0, 2)),
		gen.SliceOf(gen.Bool()),
	))

	properties.Property("Summarize is idempotent", prop.ForAll(
		func(tierIdx []int, outcomes []bool) bool {
			results := buildResults(tierIdx, outcomes)
			return reflect.DeepEqual(Summarize(results), Summarize(results))
		},
		gen.SliceOf(gen.IntRange(0, 2)),
		gen.SliceOf(gen.Bool()),
	))

	properties.Property("every result lands in exactly one bucket", prop.ForAll(
		func(tierIdx []int, outcomes []bool) bool {
			results := buildResults(tierIdx, outcomes)
			s := Summarize(results)
			total := len(s.CriticalFailures) + len(s.ImportantFailures) + len(s.RecommendedFailures) + len(s.PassedChecks)
			return total == len(results)
		},
		gen.SliceOf(gen.IntRange(0, 2)),
		gen.SliceOf(gen.Bool()),
	))

	properties.TestingRun(t)
}

// TestEvaluateProperties verifies that the engine returns one result per definition in order
func TestEvaluateProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("one result per definition in registration order", prop.ForAll(
		func(tierIdx []int, outcomes []bool, panics []bool) bool {
			n := len(tierIdx)
			if len(outcomes) < n {
				n = len(outcomes)
			}
			if len(panics) < n {
				n = len(panics)
			}

			defs := make([]Definition, n)
			for i := 0; i < n; i++ {
				outcome, explode := outcomes[i], panics[i]
				defs[i] = Definition{
					ID:   string(rune('A' + i%26)),
					Tier: tiers[tierIdx[i]],
					Evaluate: func(*Snapshot) (bool, string) {
						if explode {
							panic("generated failure")
						}
						return outcome, ""
					},
				}
			}

			results := NewEngine(defs...).Evaluate(&Snapshot{})
			if len(results) != n {
				return false
			}
			for i := range results {
				if results[i].Definition.ID != defs[i].ID {
					return false
				}
				if panics[i] && (results[i].Passed || results[i].Definition.Tier != TierRecommended) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 2)),
		gen.SliceOf(gen.Bool()),
		gen.SliceOf(gen.Bool()),
	))

	properties.TestingRun(t)
}
