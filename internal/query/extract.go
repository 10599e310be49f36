package query

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dennisdiepolder/monti/kpiquery/internal/dataset"
	"github.com/dennisdiepolder/monti/kpiquery/internal/types"
)

var (
	datePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	timePattern = regexp.MustCompile(`\b([0-2]?[0-9]):([0-5][0-9])\b`)
)

// Criteria are the filters read from one question. Any subset may be set.
type Criteria struct {
	Dates    []time.Time
	Times    []types.TimeOfDay
	Campaign string
	Agent    string
}

// HasGlobal reports whether any date, time or campaign filter is set
func (c Criteria) HasGlobal() bool {
	return len(c.Dates) > 0 || len(c.Times) > 0 || c.Campaign != ""
}

// ExtractDates returns every valid YYYY-MM-DD date in the question, left to
// right. Calendar-invalid matches such as 2024-02-30 are skipped.
func ExtractDates(question string) []time.Time {
	var dates []time.Time
	for _, m := range datePattern.FindAllString(question, -1) {
		d, err := time.Parse(types.DateLayout, m)
		if err != nil {
			continue
		}
		dates = append(dates, d)
	}
	return dates
}

// ExtractTimes returns every H:MM or HH:MM clock time in the question, left
// to right. Hours 24 to 29 match the pattern but are not clock times and
// are skipped.
func ExtractTimes(question string) []types.TimeOfDay {
	var times []types.TimeOfDay
	for _, m := range timePattern.FindAllStringSubmatch(question, -1) {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour > 23 {
			continue
		}
		times = append(times, types.NewTimeOfDay(hour, minute, 0))
	}
	return times
}

// ExtractCampaign returns the campaign of the first rule whose fragment is
// contained in the folded question, or "" when none is
func (v *Vocabulary) ExtractCampaign(folded string) string {
	for _, rule := range v.Campaigns {
		if strings.Contains(folded, rule.Fragment) {
			return rule.Campaign
		}
	}
	return ""
}

// ExtractAgent returns the first agent, in table order, whose name appears in
// the folded question as a whole word. Later matches are ignored.
func ExtractAgent(folded string, agents []dataset.Agent) string {
	for _, agent := range agents {
		if containsWord(folded, agent.Key) {
			return agent.Name
		}
	}
	return ""
}

// containsWord reports whether word occurs in text with a word boundary on
// both sides
func containsWord(text, word string) bool {
	if word == "" {
		return false
	}
	for offset := 0; offset <= len(text)-len(word); {
		i := strings.Index(text[offset:], word)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(word)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
	return false
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Extract reads every filter from a question
func (v *Vocabulary) Extract(question, folded string, agents []dataset.Agent) Criteria {
	return Criteria{
		Dates:    ExtractDates(question),
		Times:    ExtractTimes(question),
		Campaign: v.ExtractCampaign(folded),
		Agent:    ExtractAgent(folded, agents),
	}
}
