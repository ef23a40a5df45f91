package models

import (
	"strings"

	strutil "onboard/pkg/platform/strings"
)

// Question keys for business qualification answers. The keys are fixed wire
// values consumed downstream by plan recommendation; never rename them.
const (
	QuestionActiveCustomers     = "active_customers"
	QuestionFinancialOperations = "financial_operations"
	QuestionWorkingCapital      = "working_capital"
	QuestionBusinessDuration    = "business_duration"
	QuestionBusinessType        = "business_type"
)

// QualificationAnswer is a single business-profile data point. SubjectID is
// the identity ID before finalization and the account ID after; answers are
// re-owned at finalization, never duplicated.
type QualificationAnswer struct {
	SubjectID   string `json:"subjectId"`
	QuestionKey string `json:"questionKey"`
	Answer      string `json:"answer"`
	Score       *int   `json:"score,omitempty"`
}

// AnswerMap indexes answers by question key for step inference.
func AnswerMap(answers []QualificationAnswer) map[string]string {
	m := make(map[string]string, len(answers))
	for _, a := range answers {
		m[a.QuestionKey] = a.Answer
	}
	return m
}

// JoinBusinessOptions encodes a business-option list into the single stored
// answer string. Blank and repeated options are dropped; order is preserved.
func JoinBusinessOptions(options []string) string {
	return strings.Join(strutil.DedupeAndTrim(options), ",")
}

// SplitBusinessOptions parses a stored business-option answer into an ordered
// list. A single stored string yields a one-element list; empty segments are
// dropped.
func SplitBusinessOptions(answer string) []string {
	if answer == "" {
		return nil
	}
	parts := strings.Split(answer, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
