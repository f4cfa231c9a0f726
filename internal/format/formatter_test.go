package format

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brickbot/bricklink-telegram-bot/internal/catalog"
)

var (
	set4950  = catalog.ItemRef{Kind: catalog.KindSet, Number: "4950-1"}
	figSW547 = catalog.ItemRef{Kind: catalog.KindMinifig, Number: "sw0547"}
)

func TestEscape(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"75100-1.", `75100\-1\.`},
		{"a_b*c", `a\_b\*c`},
		{"[x](y)", `\[x\]\(y\)`},
		{"!#>", `\!\#\>`},
		{"R&D <3", `R\&D \<3`},
		{`back\slash`, `back\\slash`},
		{"plain text", "plain text"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Escape(tt.in))
		})
	}
}

func sampleInfo(ref catalog.ItemRef) *catalog.InfoResult {
	return &catalog.InfoResult{
		Item:         ref,
		Name:         "Loader &amp; Tipper (Big)",
		ImageURL:     "//img.bricklink.com/SL/4950-1.jpg",
		YearReleased: 2006,
		Weight:       "1520.00",
		Dimensions:   [3]string{"48.00", "37.80", "8.60"},
	}
}

func TestInfo_Private(t *testing.T) {
	f := New(nil)
	r := f.Info(sampleInfo(set4950), true, ScopePrivate)

	assert.Contains(t, r.Text, GlyphName+" Name: Loader \\& Tipper \\(Big\\)")
	assert.Contains(t, r.Text, GlyphImage+" Image: https://img\\.bricklink\\.com/SL/4950\\-1\\.jpg")
	assert.Contains(t, r.Text, GlyphYear+" Year released: 2006")
	assert.Contains(t, r.Text, GlyphWeight+" Weight: 1520\\.00g")
	assert.Contains(t, r.Text, GlyphDimensions+" Dimensions: 48\\.00x37\\.80x8\\.60")
	assert.Contains(t, r.Text, GlyphAvailable+" Available: https://www\\.bricklink\\.com/v2/catalog/catalogitem\\.page?S\\=4950\\-1\\#T\\=S")
	assert.NotContains(t, r.Text, `\\`, "text must be escaped exactly once")

	require.Len(t, r.Actions, 4)
	assert.Equal(t, "PRICE NEW 4950-1", r.Actions[0][0].Payload.String())
	assert.Equal(t, "PRICE USED 4950-1", r.Actions[0][1].Payload.String())
	assert.Equal(t, "SOLD NEW 4950-1", r.Actions[1][0].Payload.String())
	assert.Equal(t, "SOLD USED 4950-1", r.Actions[1][1].Payload.String())
	assert.Equal(t, "STOCK NEW 4950-1", r.Actions[2][0].Payload.String())
	assert.Equal(t, "STOCK USED 4950-1", r.Actions[2][1].Payload.String())
	assert.Equal(t, "https://www.bricklink.com/v2/catalog/catalogitem.page?S=4950-1", r.Actions[3][0].URL)
	assert.Equal(t, "SUBSET 4950-1", r.Actions[3][1].Payload.String())
}

func TestInfo_MinifigLinksToSupersets(t *testing.T) {
	r := New(nil).Info(sampleInfo(figSW547), false, ScopePrivate)

	assert.Contains(t, r.Text, GlyphSoldOut+" Not available")
	require.Len(t, r.Actions, 4)
	assert.Equal(t, "https://www.bricklink.com/v2/catalog/catalogitem.page?M=sw0547", r.Actions[3][0].URL)
	assert.Equal(t, "SUPERSET sw0547", r.Actions[3][1].Payload.String())
}

func TestInfo_GroupOnlyOffersDeepLink(t *testing.T) {
	r := New(nil).Info(sampleInfo(figSW547), true, ScopeGroup)

	require.Len(t, r.Actions, 1)
	require.Len(t, r.Actions[0], 1)
	assert.Equal(t, "More info on sw0547", r.Actions[0][0].Label)
	assert.Equal(t, "more sw0547", r.Actions[0][0].Payload.String())
}

func TestPriceSummary_TwoDecimals(t *testing.T) {
	r := New(nil).PriceSummary(&catalog.PriceSummaryResult{
		Item:          set4950,
		Condition:     catalog.ConditionUsed,
		Currency:      "EUR",
		MinPrice:      8.5,
		MaxPrice:      120,
		AvgPrice:      42.1234,
		TotalQuantity: 17,
	})

	assert.Contains(t, r.Text, "Prices for used 4950\\-1")
	assert.Contains(t, r.Text, GlyphCurrency+" Currency: EUR")
	assert.Contains(t, r.Text, GlyphMinPrice+" Minimal price: 8\\.50")
	assert.Contains(t, r.Text, GlyphMaxPrice+" Maximal price: 120\\.00")
	assert.Contains(t, r.Text, GlyphAvgPrice+" Average price: 42\\.12")
	assert.Contains(t, r.Text, GlyphQuantity+" Quantity for sale: 17")
	assert.Empty(t, r.Actions)
}

func syntheticListings(mode catalog.GuideMode, n int) *catalog.ListingResult {
	res := &catalog.ListingResult{Item: set4950, Mode: mode, Currency: "EUR"}
	for i := 0; i < n; i++ {
		res.Listings = append(res.Listings, catalog.Listing{
			UnitPrice:     float64(10 + i),
			Quantity:      1,
			SellerCountry: "DE",
			BuyerCountry:  "UK",
			ShipsLocally:  i%2 == 0,
		})
	}
	return res
}

func TestListings_CapsAtTwenty(t *testing.T) {
	r := New(nil).Listings(syntheticListings(catalog.ModeStock, 25))

	assert.Equal(t, MaxEntries, strings.Count(r.Text, " x "))
	assert.Contains(t, r.Text, "1 x 10\\.00 EUR "+GlyphShipping)
	assert.Contains(t, r.Text, "1 x 29\\.00 EUR")
	assert.NotContains(t, r.Text, "30\\.00")
	assert.Contains(t, r.Text, "and 5 more")
}

func TestListings_SoldShowsFlags(t *testing.T) {
	r := New(nil).Listings(syntheticListings(catalog.ModeSold, 2))

	assert.Contains(t, r.Text, "Recently sold new 4950\\-1")
	assert.Contains(t, r.Text, "🇩🇪 → 🇬🇧 1 x 10\\.00 EUR")
	assert.Equal(t, 2, strings.Count(r.Text, " x "))
}

func TestListings_Empty(t *testing.T) {
	f := New(nil)

	stock := f.Listings(&catalog.ListingResult{Item: set4950, Mode: catalog.ModeStock, Listings: []catalog.Listing{}})
	assert.Equal(t, "Out of stock: new 4950\\-1", stock.Text)

	sold := f.Listings(&catalog.ListingResult{Item: set4950, Mode: catalog.ModeSold, Condition: catalog.ConditionUsed})
	assert.Equal(t, "Nothing sold recently for used 4950\\-1", sold.Text)
}

func TestSortHits_StableByYearDesc(t *testing.T) {
	hits := []catalog.SearchHit{
		{Number: "a", Year: 2001},
		{Number: "b", Year: 2015},
		{Number: "c", Year: 2015},
		{Number: "d", Year: 1999},
	}

	sorted := SortHits(hits)

	var order []string
	for _, h := range sorted {
		order = append(order, h.Number)
	}
	assert.Equal(t, []string{"b", "c", "a", "d"}, order)
	assert.Equal(t, "a", hits[0].Number, "input must not be reordered")
}

func TestSearchResults(t *testing.T) {
	var hits []catalog.SearchHit
	for i := 0; i < 30; i++ {
		hits = append(hits, catalog.SearchHit{Kind: catalog.KindSet, Number: fmt.Sprintf("%d-1", 1000+i), Name: "Hotel", Year: 1990 + i})
	}

	private := New(nil).SearchResults("hotel", hits, ScopePrivate)
	assert.Equal(t, "Search result for 'hotel'", private.Text)
	require.Len(t, private.Actions, MaxEntries)
	assert.Equal(t, "1029-1 Hotel (2019)", private.Actions[0][0].Label)
	assert.Equal(t, "INFO 1029-1", private.Actions[0][0].Payload.String())

	group := New(nil).SearchResults("hotel", hits[:1], ScopeGroup)
	assert.Equal(t, "more 1000-1", group.Actions[0][0].Payload.String())

	empty := New(nil).SearchResults("nope", nil, ScopePrivate)
	assert.Equal(t, "Nothing found for: nope", empty.Text)
	assert.Empty(t, empty.Actions)
}

func TestSearchDialog(t *testing.T) {
	r := New(nil).SearchDialog("fishing store")

	assert.Equal(t, "Is 'fishing store' Set or Minifigure?", r.Text)
	require.Len(t, r.Actions, 1)
	assert.Equal(t, "SETSEARCH fishing store", r.Actions[0][0].Payload.String())
	assert.Equal(t, "MINIFIGSEARCH fishing store", r.Actions[0][1].Payload.String())
}

func TestSubsetsAndSupersets(t *testing.T) {
	f := New(nil)
	related := []catalog.RelatedItem{
		{Item: figSW547, Name: "Luke Skywalker", Quantity: 1},
		{Item: catalog.ItemRef{Kind: catalog.KindSet, Number: "75100-1"}, Name: "Snowspeeder", Quantity: 2},
	}

	subsets := f.Subsets(&catalog.RelationResult{Item: set4950, Related: related}, ScopePrivate)
	assert.Equal(t, "Minifigures in '4950\\-1'", subsets.Text)
	require.Len(t, subsets.Actions, 1)
	assert.Equal(t, "INFO sw0547", subsets.Actions[0][0].Payload.String())

	supersets := f.Supersets(&catalog.RelationResult{Item: figSW547, Related: related}, ScopePrivate)
	require.Len(t, supersets.Actions, 1)
	assert.Equal(t, "75100-1 Snowspeeder x2", supersets.Actions[0][0].Label)

	none := f.Supersets(&catalog.RelationResult{Item: figSW547}, ScopePrivate)
	assert.Equal(t, "No sets found containing: sw0547", none.Text)
}

func TestMalformed(t *testing.T) {
	r := New(nil).Malformed(errors.New("Invalid URI"))
	assert.Equal(t, "BrickLink rejected the request: Invalid URI", r.Text)
}

func TestFlag(t *testing.T) {
	assert.Equal(t, "🇩🇪", Flag("DE", DefaultFlagOverrides))
	assert.Equal(t, "🇫🇮", Flag("fi", DefaultFlagOverrides))
	assert.Equal(t, "🇬🇧", Flag("UK", DefaultFlagOverrides))
	assert.Equal(t, "🤡", Flag("RU", DefaultFlagOverrides))
	assert.Equal(t, unknownFlag, Flag("", DefaultFlagOverrides))
	assert.Equal(t, unknownFlag, Flag("X1", DefaultFlagOverrides))
}

func TestParseFlagOverrides(t *testing.T) {
	flags := ParseFlagOverrides("RU=; us=🦅")

	assert.Equal(t, "🦅", flags["US"])
	assert.Equal(t, "🇬🇧", flags["UK"])
	_, ok := flags["RU"]
	assert.False(t, ok)
	assert.Equal(t, "🇷🇺", Flag("RU", flags))
	assert.Equal(t, "🤡", DefaultFlagOverrides["RU"], "defaults must not change")
}
