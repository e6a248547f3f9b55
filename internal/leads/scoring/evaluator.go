// Package scoring implements the lead scoring rule engine: predicate
// evaluation for single rules and full-set score recomputation.
package scoring

import (
	"strings"

	"clientops_backend/internal/leads/repository"
)

// Rule fields and operators recognized by the evaluator.
const (
	FieldSummary = "summary"
	FieldStatus  = "status"

	OperatorContains = "contains"
	OperatorEquals   = "equals"
)

// Outcome classifies the result of evaluating one rule against one lead.
// Unsupported fields and operators do not raise errors: an unrecognized
// field evaluates the empty string and an unrecognized operator never
// matches. The explicit variants let callers and tests distinguish "did not
// match" from "could not have matched".
type Outcome int

const (
	// OutcomeMatched means the predicate held and points were contributed.
	OutcomeMatched Outcome = iota
	// OutcomeUnmatched means the predicate was evaluated and did not hold.
	OutcomeUnmatched
	// OutcomeUnsupportedField means the rule names an unknown lead field.
	// The predicate ran against the empty string and did not hold.
	OutcomeUnsupportedField
	// OutcomeUnsupportedOperator means the rule's operator is unknown.
	// No match is ever produced.
	OutcomeUnsupportedOperator
)

// Evaluation is the result of applying one rule to one lead.
type Evaluation struct {
	Outcome Outcome
	Points  int
}

// Evaluate applies a single rule's predicate to a lead. Comparison is
// case-insensitive on both sides. A matching rule contributes its configured
// points; anything else contributes zero. Never fails.
func Evaluate(lead repository.Lead, rule repository.ScoreRule) Evaluation {
	target, fieldSupported := fieldValue(lead, rule.Field)
	target = strings.ToLower(target)
	value := strings.ToLower(rule.Value)

	var matched bool
	switch rule.Operator {
	case OperatorContains:
		// An empty rule value matches every target, including the empty
		// string an unsupported field evaluates to.
		matched = strings.Contains(target, value)
	case OperatorEquals:
		matched = target == value
	default:
		return Evaluation{Outcome: OutcomeUnsupportedOperator}
	}

	if matched {
		return Evaluation{Outcome: OutcomeMatched, Points: rule.Points}
	}
	if !fieldSupported {
		return Evaluation{Outcome: OutcomeUnsupportedField}
	}
	return Evaluation{Outcome: OutcomeUnmatched}
}

// Score sums the point contributions of all given rules for a lead. A lead
// matched by no rules scores zero; this is a full overwrite value, not a
// delta.
func Score(lead repository.Lead, rules []repository.ScoreRule) int {
	total := 0
	for _, rule := range rules {
		total += Evaluate(lead, rule).Points
	}
	return total
}

func fieldValue(lead repository.Lead, field string) (string, bool) {
	switch field {
	case FieldSummary:
		if lead.Summary == nil {
			return "", true
		}
		return *lead.Summary, true
	case FieldStatus:
		if lead.Status == nil {
			return "", true
		}
		return *lead.Status, true
	default:
		return "", false
	}
}
