package catalog

import "fmt"

// DefaultCurrency is used when no currency is configured.
const DefaultCurrency = "EUR"

// Operation is a concrete catalog lookup.
type Operation int

const (
	OpInfo Operation = iota
	OpPrice
	OpSold
	OpStock
	OpSubsets
	OpSupersets
	OpAvailability
)

var operationNames = [...]string{
	OpInfo:         "info",
	OpPrice:        "price",
	OpSold:         "sold",
	OpStock:        "stock",
	OpSubsets:      "subsets",
	OpSupersets:    "supersets",
	OpAvailability: "availability",
}

func (op Operation) String() string {
	if op >= 0 && int(op) < len(operationNames) {
		return operationNames[op]
	}
	return fmt.Sprintf("Operation(%d)", int(op))
}

// PriceQuery holds everything a price guide request needs.
type PriceQuery struct {
	Item      ItemRef
	Condition Condition
	Mode      GuideMode
	Currency  string
}

// Request is one call to the catalog gateway.
type Request struct {
	Path   string
	Params map[string]string
}

// Query is a resolved lookup. It is built once and never mutated.
type Query struct {
	Op Operation
	PriceQuery
}

// Requests lists the gateway calls the query issues. Availability is the only
// operation that needs two.
func (q Query) Requests() []Request {
	base := q.Item.Path()
	switch q.Op {
	case OpPrice, OpSold, OpStock:
		return []Request{{
			Path: base + "/price",
			Params: map[string]string{
				"guide_type":    q.Mode.GuideType(),
				"new_or_used":   q.Condition.Code(),
				"currency_code": q.Currency,
			},
		}}
	case OpSubsets:
		return []Request{{Path: base + "/subsets"}}
	case OpSupersets:
		return []Request{{Path: base + "/supersets"}}
	case OpAvailability:
		return []Request{
			{Path: base + "/price", Params: availabilityParams(ConditionNew)},
			{Path: base + "/price", Params: availabilityParams(ConditionUsed)},
		}
	default:
		return []Request{{Path: base}}
	}
}

func availabilityParams(c Condition) map[string]string {
	return map[string]string{
		"guide_type":  ModeStock.GuideType(),
		"new_or_used": c.Code(),
	}
}
