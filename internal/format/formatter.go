package format

import (
	"fmt"
	"strings"

	"github.com/brickbot/bricklink-telegram-bot/internal/catalog"
)

// One glyph per field.
const (
	GlyphName       = "🅰️"
	GlyphImage      = "🖼"
	GlyphYear       = "📆"
	GlyphWeight     = "⚓️"
	GlyphDimensions = "📐"
	GlyphCurrency   = "💱"
	GlyphMinPrice   = "📉"
	GlyphMaxPrice   = "📈"
	GlyphAvgPrice   = "📊"
	GlyphQuantity   = "🔢"
	GlyphAvailable  = "✅"
	GlyphSoldOut    = "❌"
	GlyphShipping   = "🚚"
)

// MaxEntries caps every list rendered in a single reply.
const MaxEntries = 20

const catalogPageURL = "https://www.bricklink.com/v2/catalog/catalogitem.page?%s=%s"

// Scope is the kind of chat a reply goes to.
type Scope int

const (
	ScopePrivate Scope = iota
	ScopeGroup
)

// Reply is a ready to send message. Text is already escaped.
type Reply struct {
	Text    string
	Actions catalog.ActionSet
}

// Formatter renders catalog results. It is stateless apart from its
// configuration and safe for concurrent use.
type Formatter struct {
	flags map[string]string
}

// New creates a formatter. A nil flag table uses DefaultFlagOverrides.
func New(flagOverrides map[string]string) *Formatter {
	if flagOverrides == nil {
		flagOverrides = DefaultFlagOverrides
	}
	return &Formatter{flags: flagOverrides}
}

// newReply joins plain lines and escapes them once.
func newReply(actions catalog.ActionSet, lines ...string) Reply {
	return Reply{Text: Escape(strings.Join(lines, "\n")), Actions: actions}
}

// Plain escapes free text into a reply without actions.
func Plain(text string) Reply {
	return newReply(nil, text)
}

// CatalogURL links to the item's catalog page.
func CatalogURL(ref catalog.ItemRef) string {
	return fmt.Sprintf(catalogPageURL, ref.Kind.Letter(), ref.Number)
}

// StoreURL links to the item's for-sale tab.
func StoreURL(ref catalog.ItemRef) string {
	return CatalogURL(ref) + "#T=S"
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func conditionWord(c catalog.Condition) string {
	if c == catalog.ConditionUsed {
		return "used"
	}
	return "new"
}

// NothingFound is the reply for input that matched nothing.
func (f *Formatter) NothingFound(text string) Reply {
	return Plain("Can't find anything for " + text)
}

// NoData is the reply for a lookup that returned nothing.
func (f *Formatter) NoData(subject string) Reply {
	return Plain("Cannot find data for " + subject)
}

// Malformed shows the upstream description of a rejected request.
func (f *Formatter) Malformed(err error) Reply {
	return Plain("BrickLink rejected the request: " + err.Error())
}
