package format

import (
	"fmt"
	"strings"

	"github.com/brickbot/bricklink-telegram-bot/internal/catalog"
)

// Info renders an item description followed by its availability, with the
// action menu for scope.
func (f *Formatter) Info(res *catalog.InfoResult, available bool, scope Scope) Reply {
	if res == nil {
		return f.NoData("this item")
	}
	lines := []string{
		fmt.Sprintf("%s Name: %s", GlyphName, unescapeName(res.Name)),
		fmt.Sprintf("%s Image: %s", GlyphImage, absoluteURL(res.ImageURL)),
		fmt.Sprintf("%s Year released: %d", GlyphYear, res.YearReleased),
		fmt.Sprintf("%s Weight: %sg", GlyphWeight, res.Weight),
		fmt.Sprintf("%s Dimensions: %s", GlyphDimensions, strings.Join(res.Dimensions[:], "x")),
	}
	if available {
		lines = append(lines, fmt.Sprintf("%s Available: %s", GlyphAvailable, StoreURL(res.Item)))
	} else {
		lines = append(lines, GlyphSoldOut+" Not available")
	}
	return newReply(InfoActions(res.Item, scope), lines...)
}

// absoluteURL fixes the scheme-relative image links BrickLink returns.
func absoluteURL(u string) string {
	if strings.HasPrefix(u, "//") {
		return "https:" + u
	}
	return u
}

// InfoActions is the follow-up menu of an item. Group chats only get a deep
// link into a private chat so price lookups do not flood the group.
func InfoActions(ref catalog.ItemRef, scope Scope) catalog.ActionSet {
	if scope == ScopeGroup {
		return catalog.ActionSet{
			{{Label: "More info on " + ref.Number, Payload: catalog.ItemPayload(catalog.ActionMore, ref)}},
		}
	}

	related := catalog.Button{Label: "Minifigures of " + ref.Number, Payload: catalog.ItemPayload(catalog.ActionSubset, ref)}
	if ref.Kind == catalog.KindMinifig {
		related = catalog.Button{Label: "Sets containing " + ref.Number, Payload: catalog.ItemPayload(catalog.ActionSuperset, ref)}
	}

	return catalog.ActionSet{
		{
			{Label: "Prices for new " + ref.Number, Payload: catalog.ConditionPayload(catalog.ActionPrice, catalog.ConditionNew, ref)},
			{Label: "Prices for used " + ref.Number, Payload: catalog.ConditionPayload(catalog.ActionPrice, catalog.ConditionUsed, ref)},
		},
		{
			{Label: "Recently sold new", Payload: catalog.ConditionPayload(catalog.ActionSold, catalog.ConditionNew, ref)},
			{Label: "Recently sold used", Payload: catalog.ConditionPayload(catalog.ActionSold, catalog.ConditionUsed, ref)},
		},
		{
			{Label: "For sale new", Payload: catalog.ConditionPayload(catalog.ActionStock, catalog.ConditionNew, ref)},
			{Label: "For sale used", Payload: catalog.ConditionPayload(catalog.ActionStock, catalog.ConditionUsed, ref)},
		},
		{
			{Label: "View on BL", URL: CatalogURL(ref)},
			related,
		},
	}
}
