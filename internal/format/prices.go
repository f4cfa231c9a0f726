package format

import (
	"fmt"

	"github.com/brickbot/bricklink-telegram-bot/internal/catalog"
)

// PriceSummary renders the aggregate of a price guide.
func (f *Formatter) PriceSummary(res *catalog.PriceSummaryResult) Reply {
	if res == nil {
		return f.NoData("this item")
	}
	quantityLabel := "Quantity for sale"
	title := fmt.Sprintf("Prices for %s %s", conditionWord(res.Condition), res.Item.Number)
	if res.Mode == catalog.ModeSold {
		quantityLabel = "Quantity sold"
		title = fmt.Sprintf("Sold prices for %s %s", conditionWord(res.Condition), res.Item.Number)
	}
	return newReply(nil,
		title,
		fmt.Sprintf("%s Currency: %s", GlyphCurrency, res.Currency),
		fmt.Sprintf("%s Minimal price: %s", GlyphMinPrice, money(res.MinPrice)),
		fmt.Sprintf("%s Maximal price: %s", GlyphMaxPrice, money(res.MaxPrice)),
		fmt.Sprintf("%s Average price: %s", GlyphAvgPrice, money(res.AvgPrice)),
		fmt.Sprintf("%s %s: %d", GlyphQuantity, quantityLabel, res.TotalQuantity),
	)
}

// Listings renders up to MaxEntries price guide rows in upstream order.
func (f *Formatter) Listings(res *catalog.ListingResult) Reply {
	sold := res.Mode == catalog.ModeSold
	if len(res.Listings) == 0 {
		if sold {
			return Plain(fmt.Sprintf("Nothing sold recently for %s %s", conditionWord(res.Condition), res.Item.Number))
		}
		return Plain(fmt.Sprintf("Out of stock: %s %s", conditionWord(res.Condition), res.Item.Number))
	}

	title := fmt.Sprintf("For sale %s %s", conditionWord(res.Condition), res.Item.Number)
	if sold {
		title = fmt.Sprintf("Recently sold %s %s", conditionWord(res.Condition), res.Item.Number)
	}
	lines := []string{title}

	shown := res.Listings
	if len(shown) > MaxEntries {
		shown = shown[:MaxEntries]
	}
	for _, l := range shown {
		line := fmt.Sprintf("%d x %s %s", l.Quantity, money(l.UnitPrice), res.Currency)
		if sold {
			line = fmt.Sprintf("%s → %s %s", Flag(l.SellerCountry, f.flags), Flag(l.BuyerCountry, f.flags), line)
		} else if l.ShipsLocally {
			line += " " + GlyphShipping
		}
		lines = append(lines, line)
	}
	if hidden := len(res.Listings) - len(shown); hidden > 0 {
		lines = append(lines, fmt.Sprintf("…and %d more", hidden))
	}
	return newReply(nil, lines...)
}
