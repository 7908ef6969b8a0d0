package checks

// Verdict is the coarse reading of a summary
type Verdict string

const (
	VerdictBlocked              Verdict = "blocked"
	VerdictConditionalOnly      Verdict = "conditional_only"
	VerdictFullApprovalEligible Verdict = "full_approval_eligible"
)

// Summary partitions evaluation results by tier and outcome
type Summary struct {
	CriticalFailures    []Result `json:"critical_failures"`
	ImportantFailures   []Result `json:"important_failures"`
	RecommendedFailures []Result `json:"recommended_failures"`
	PassedChecks        []Result `json:"passed_checks"`
	IsBlocked           bool     `json:"is_blocked"`
	CanFullApprove      bool     `json:"can_full_approve"`
}

// Summarize reduces results to a summary. It is a pure function of its input;
// an empty result set is not blocked and eligible for full approval.
func Summarize(results []Result) Summary {
	s := Summary{
		CriticalFailures:    []Result{},
		ImportantFailures:   []Result{},
		RecommendedFailures: []Result{},
		PassedChecks:        []Result{},
	}

	for _, r := range results {
		if r.Passed {
			s.PassedChecks = append(s.PassedChecks, r)
			continue
		}
		switch r.Definition.Tier {
		case TierCritical:
			s.CriticalFailures = append(s.CriticalFailures, r)
		case TierImportant:
			s.ImportantFailures = append(s.ImportantFailures, r)
		default:
			s.RecommendedFailures = append(s.RecommendedFailures, r)
		}
	}

	s.IsBlocked = len(s.CriticalFailures) > 0
	s.CanFullApprove = len(s.CriticalFailures) == 0 && len(s.ImportantFailures) == 0
	return s
}

// FailedChecks returns every failing result, most severe tier first
func (s Summary) FailedChecks() []Result {
	failed := make([]Result, 0, len(s.CriticalFailures)+len(s.ImportantFailures)+len(s.RecommendedFailures))
	failed = append(failed, s.CriticalFailures...)
	failed = append(failed, s.ImportantFailures...)
	failed = append(failed, s.RecommendedFailures...)
	return failed
}

// Verdict classifies the summary as blocked, conditional-only or full-approval eligible
func (s Summary) Verdict() Verdict {
	switch {
	case s.IsBlocked:
		return VerdictBlocked
	case !s.CanFullApprove:
		return VerdictConditionalOnly
	default:
		return VerdictFullApprovalEligible
	}
}
