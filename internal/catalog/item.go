// Package catalog turns free-text chat input into BrickLink catalog queries
// and decodes the answers into typed results.
package catalog

import "fmt"

// Kind is a BrickLink catalog item type.
type Kind int

const (
	KindSet Kind = iota
	KindMinifig
)

func (k Kind) String() string {
	switch k {
	case KindSet:
		return "SET"
	case KindMinifig:
		return "MINIFIG"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Letter is the single-letter item type used in bricklink.com catalog URLs.
func (k Kind) Letter() string {
	return k.String()[:1]
}

// ParseKind parses the item type as BrickLink spells it.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "SET":
		return KindSet, true
	case "MINIFIG":
		return KindMinifig, true
	}
	return 0, false
}

// ItemRef identifies one catalog item. Set numbers always carry a variant
// suffix, minifigure numbers are bare codes.
type ItemRef struct {
	Kind   Kind
	Number string
}

// Path is the API resource path of the item.
func (r ItemRef) Path() string {
	return "items/" + r.Kind.String() + "/" + r.Number
}

func (r ItemRef) String() string {
	return r.Kind.String() + " " + r.Number
}

// Condition is the new/used qualifier of a price query.
type Condition int

const (
	ConditionNew Condition = iota
	ConditionUsed
)

func (c Condition) String() string {
	if c == ConditionUsed {
		return "USED"
	}
	return "NEW"
}

// Code is the value of the new_or_used request parameter.
func (c Condition) Code() string {
	if c == ConditionUsed {
		return "U"
	}
	return "N"
}

// ParseCondition accepts the payload spelling (NEW, USED) and the API
// spelling (N, U).
func ParseCondition(s string) (Condition, bool) {
	switch s {
	case "NEW", "N":
		return ConditionNew, true
	case "USED", "U":
		return ConditionUsed, true
	}
	return 0, false
}

// GuideMode selects current listings (stock) or past sales (sold).
type GuideMode int

const (
	ModeStock GuideMode = iota
	ModeSold
)

func (m GuideMode) String() string {
	if m == ModeSold {
		return "SOLD"
	}
	return "STOCK"
}

// GuideType is the value of the guide_type request parameter.
func (m GuideMode) GuideType() string {
	if m == ModeSold {
		return "sold"
	}
	return "stock"
}
