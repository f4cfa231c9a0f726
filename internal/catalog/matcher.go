package catalog

import (
	"regexp"
	"strings"
)

var (
	setPattern     = regexp.MustCompile(`\b\d{2,7}(?:-\d)?\b`)
	minifigPattern = regexp.MustCompile(`\b[a-z]{1,3}\d{2,4}\b`)
)

// DefaultSetVariant is appended to set numbers typed without a suffix.
const DefaultSetVariant = "-1"

// ConditionToken maps a word found in text to a condition.
type ConditionToken struct {
	Word      string
	Condition Condition
}

// ModeToken maps a word found in text to a guide mode.
type ModeToken struct {
	Word string
	Mode GuideMode
}

// DefaultConditionTokens are checked in order, the first hit wins. With both
// words present NEW is picked only because it comes first.
var DefaultConditionTokens = []ConditionToken{
	{Word: "NEW", Condition: ConditionNew},
	{Word: "USED", Condition: ConditionUsed},
}

// DefaultModeTokens are checked in order, the first hit wins.
var DefaultModeTokens = []ModeToken{
	{Word: "STOCK", Mode: ModeStock},
	{Word: "SOLD", Mode: ModeSold},
}

// Hints are the optional query qualifiers spelled out in the text.
type Hints struct {
	Condition    Condition
	HasCondition bool
	Mode         GuideMode
	HasMode      bool
}

type conditionRule struct {
	re        *regexp.Regexp
	condition Condition
}

type modeRule struct {
	re   *regexp.Regexp
	mode GuideMode
}

// Matcher extracts item references and query hints from free text.
// It holds no mutable state and is safe for concurrent use.
type Matcher struct {
	conditions []conditionRule
	modes      []modeRule
}

// NewMatcher builds a matcher with the given token tables. Nil tables fall
// back to the defaults. Tokens are matched case-sensitively as whole words.
func NewMatcher(conditions []ConditionToken, modes []ModeToken) *Matcher {
	if conditions == nil {
		conditions = DefaultConditionTokens
	}
	if modes == nil {
		modes = DefaultModeTokens
	}
	m := &Matcher{}
	for _, t := range conditions {
		m.conditions = append(m.conditions, conditionRule{re: wordPattern(t.Word), condition: t.Condition})
	}
	for _, t := range modes {
		m.modes = append(m.modes, modeRule{re: wordPattern(t.Word), mode: t.Mode})
	}
	return m
}

func wordPattern(word string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(word) + `\b`)
}

var defaultMatcher = NewMatcher(nil, nil)

// Match finds an item reference in text using the default matcher.
func Match(text string) (ItemRef, bool, error) {
	return defaultMatcher.Match(text)
}

// Match finds the first set number in text, or failing that the first
// minifigure code. Digit runs always win over letter codes.
//
// No match returns ok=false. When the text starts with a command marker the
// miss is reported as an *UnresolvedCommandError instead.
func (m *Matcher) Match(text string) (ItemRef, bool, error) {
	lower := strings.ToLower(text)

	if number := setPattern.FindString(lower); number != "" {
		if !strings.Contains(number, "-") {
			number += DefaultSetVariant
		}
		return ItemRef{Kind: KindSet, Number: number}, true, nil
	}

	if number := minifigPattern.FindString(lower); number != "" {
		return ItemRef{Kind: KindMinifig, Number: number}, true, nil
	}

	if strings.HasPrefix(text, "/") {
		return ItemRef{}, false, &UnresolvedCommandError{Text: text}
	}
	return ItemRef{}, false, nil
}

// Hints searches text for condition and mode tokens independently of item
// matching.
func (m *Matcher) Hints(text string) Hints {
	var h Hints
	for _, rule := range m.conditions {
		if rule.re.MatchString(text) {
			h.Condition = rule.condition
			h.HasCondition = true
			break
		}
	}
	for _, rule := range m.modes {
		if rule.re.MatchString(text) {
			h.Mode = rule.mode
			h.HasMode = true
			break
		}
	}
	return h
}
