package query

import "strings"

// ResolveMetric returns the column of the first keyword, in declaration
// order, contained anywhere in the folded question
func (v *Vocabulary) ResolveMetric(folded string) (string, bool) {
	for _, rule := range v.Metrics {
		if strings.Contains(folded, rule.Keyword) {
			return rule.Column, true
		}
	}
	return "", false
}

// IsClosureQuestion reports whether the question asks for the closure rate
func (v *Vocabulary) IsClosureQuestion(folded string) bool {
	for _, trigger := range v.ClosureTriggers {
		if strings.Contains(folded, trigger) {
			return true
		}
	}
	return false
}
