package catalog

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxPayloadBytes is Telegram's limit for inline button callback data.
const MaxPayloadBytes = 64

// Action is the keyword heading a callback payload.
type Action string

const (
	ActionPrice         Action = "PRICE"
	ActionSold          Action = "SOLD"
	ActionStock         Action = "STOCK"
	ActionInfo          Action = "INFO"
	ActionSubset        Action = "SUBSET"
	ActionSuperset      Action = "SUPERSET"
	ActionSetSearch     Action = "SETSEARCH"
	ActionMinifigSearch Action = "MINIFIGSEARCH"
	ActionMore          Action = "more"
)

var actions = map[string]Action{
	string(ActionPrice):         ActionPrice,
	string(ActionSold):          ActionSold,
	string(ActionStock):         ActionStock,
	string(ActionInfo):          ActionInfo,
	string(ActionSubset):        ActionSubset,
	string(ActionSuperset):      ActionSuperset,
	string(ActionSetSearch):     ActionSetSearch,
	string(ActionMinifigSearch): ActionMinifigSearch,
	string(ActionMore):          ActionMore,
}

// ErrInvalidPayload is returned by ParsePayload for data it does not know.
var ErrInvalidPayload = errors.New("invalid payload")

// Payload is a parsed callback payload. Arg holds an item number for item
// actions and a free-text query for the search actions.
type Payload struct {
	Action       Action
	Condition    Condition
	HasCondition bool
	Arg          string
}

// ItemPayload builds an unconditioned payload for an item action.
func ItemPayload(action Action, ref ItemRef) Payload {
	return Payload{Action: action, Arg: ref.Number}
}

// ConditionPayload builds a payload carrying an explicit condition.
func ConditionPayload(action Action, c Condition, ref ItemRef) Payload {
	return Payload{Action: action, Condition: c, HasCondition: true, Arg: ref.Number}
}

// SearchPayload builds a payload for a search action.
func SearchPayload(action Action, query string) Payload {
	return Payload{Action: action, Arg: query}
}

// IsSearch reports whether Arg is a free-text query rather than an item number.
func (p Payload) IsSearch() bool {
	return p.Action == ActionSetSearch || p.Action == ActionMinifigSearch
}

// String encodes the payload as "<ACTION> [COND] <ARG>". Search queries are
// shortened to keep the payload within MaxPayloadBytes.
func (p Payload) String() string {
	prefix := string(p.Action) + " "
	if p.HasCondition {
		prefix += p.Condition.String() + " "
	}
	arg := p.Arg
	if room := MaxPayloadBytes - len(prefix); len(arg) > room {
		arg = truncateBytes(arg, room)
	}
	return prefix + arg
}

func truncateBytes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return strings.TrimSpace(s[:n])
}

// ParsePayload decodes callback data produced by Payload.String.
func ParsePayload(data string) (Payload, error) {
	keyword, rest, _ := strings.Cut(strings.TrimSpace(data), " ")
	action, ok := actions[keyword]
	if !ok {
		return Payload{}, fmt.Errorf("%w: %q", ErrInvalidPayload, data)
	}

	p := Payload{Action: action}
	rest = strings.TrimSpace(rest)
	if !p.IsSearch() {
		if word, tail, found := strings.Cut(rest, " "); found {
			if c, ok := ParseCondition(word); ok {
				p.Condition = c
				p.HasCondition = true
				rest = strings.TrimSpace(tail)
			}
		} else if _, ok := ParseCondition(rest); ok {
			rest = ""
		}
	}
	if rest == "" {
		return Payload{}, fmt.Errorf("%w: missing argument in %q", ErrInvalidPayload, data)
	}
	p.Arg = rest
	return p, nil
}

// Operation is the resolver operation an item action triggers.
func (p Payload) Operation() (Operation, bool) {
	switch p.Action {
	case ActionInfo, ActionMore:
		return OpInfo, true
	case ActionPrice:
		return OpPrice, true
	case ActionSold:
		return OpSold, true
	case ActionStock:
		return OpStock, true
	case ActionSubset:
		return OpSubsets, true
	case ActionSuperset:
		return OpSupersets, true
	}
	return 0, false
}

// Button is one inline action. It carries either a payload or a URL.
type Button struct {
	Label   string
	Payload Payload
	URL     string
}

// ActionRow is one row of buttons.
type ActionRow []Button

// ActionSet is the ordered follow-up actions attached to a reply.
type ActionSet []ActionRow
