package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// InfoResult describes one catalog item.
type InfoResult struct {
	Item         ItemRef
	Name         string
	ImageURL     string
	YearReleased int
	Weight       string
	Dimensions   [3]string
}

// PriceSummaryResult is the aggregate of a price guide.
type PriceSummaryResult struct {
	Item          ItemRef
	Condition     Condition
	Mode          GuideMode
	Currency      string
	MinPrice      float64
	MaxPrice      float64
	AvgPrice      float64
	QtyAvgPrice   float64
	UnitQuantity  int
	TotalQuantity int
}

// Listing is one row of a price guide. Sold rows carry country codes, stock
// rows carry the shipping flag.
type Listing struct {
	UnitPrice     float64
	Quantity      int
	SellerCountry string
	BuyerCountry  string
	ShipsLocally  bool
}

// ListingResult holds the individual rows of a price guide in upstream order.
type ListingResult struct {
	Item      ItemRef
	Condition Condition
	Mode      GuideMode
	Currency  string
	Listings  []Listing
}

// RelatedItem is an entry of a subset or superset answer.
type RelatedItem struct {
	Item     ItemRef
	Name     string
	Quantity int
}

// RelationResult lists the items related to Item.
type RelationResult struct {
	Item    ItemRef
	Related []RelatedItem
}

// SearchHit is a name search result.
type SearchHit struct {
	Kind   Kind
	Number string
	Name   string
	Year   int
}

// Ref returns the item the hit points at.
func (h SearchHit) Ref() ItemRef {
	return ItemRef{Kind: h.Kind, Number: h.Number}
}

// money decodes prices sent either as JSON numbers or as decimal strings.
type money float64

func (m *money) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*m = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid price %s: %w", b, err)
	}
	*m = money(f)
	return nil
}

type itemWire struct {
	No           string `json:"no"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	ImageURL     string `json:"image_url"`
	YearReleased int    `json:"year_released"`
	Weight       string `json:"weight"`
	DimX         string `json:"dim_x"`
	DimY         string `json:"dim_y"`
	DimZ         string `json:"dim_z"`
}

type priceDetailWire struct {
	Quantity          *int   `json:"quantity"`
	Qunatity          int    `json:"qunatity"`
	UnitPrice         money  `json:"unit_price"`
	SellerCountryCode string `json:"seller_country_code"`
	BuyerCountryCode  string `json:"buyer_country_code"`
	ShippingAvailable bool   `json:"shipping_available"`
}

// quantity reads the stock quantity, which the API sometimes misspells.
func (d priceDetailWire) quantity() int {
	if d.Quantity != nil {
		return *d.Quantity
	}
	return d.Qunatity
}

type priceGuideWire struct {
	Item          itemWire          `json:"item"`
	NewOrUsed     string            `json:"new_or_used"`
	CurrencyCode  string            `json:"currency_code"`
	MinPrice      money             `json:"min_price"`
	MaxPrice      money             `json:"max_price"`
	AvgPrice      money             `json:"avg_price"`
	QtyAvgPrice   money             `json:"qty_avg_price"`
	UnitQuantity  int               `json:"unit_quantity"`
	TotalQuantity int               `json:"total_quantity"`
	PriceDetail   []priceDetailWire `json:"price_detail"`
}

type relationEntryWire struct {
	Item     itemWire `json:"item"`
	Quantity int      `json:"quantity"`
}

type relationGroupWire struct {
	Entries []relationEntryWire `json:"entries"`
}

// isEmptyData reports whether a gateway payload holds nothing to decode.
func isEmptyData(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	switch string(trimmed) {
	case "", "null", "[]", "{}":
		return true
	}
	return false
}

func decodeInfo(ref ItemRef, data json.RawMessage) (*InfoResult, error) {
	var w itemWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("failed to decode item: %w", err)
	}
	if w.No == "" {
		return nil, nil
	}
	item := ref
	item.Number = w.No
	if kind, ok := ParseKind(w.Type); ok {
		item.Kind = kind
	}
	return &InfoResult{
		Item:         item,
		Name:         w.Name,
		ImageURL:     w.ImageURL,
		YearReleased: w.YearReleased,
		Weight:       w.Weight,
		Dimensions:   [3]string{w.DimX, w.DimY, w.DimZ},
	}, nil
}

func decodePriceGuide(data json.RawMessage) (*priceGuideWire, error) {
	var w priceGuideWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("failed to decode price guide: %w", err)
	}
	return &w, nil
}

func (w *priceGuideWire) summary(q PriceQuery) *PriceSummaryResult {
	return &PriceSummaryResult{
		Item:          q.Item,
		Condition:     q.Condition,
		Mode:          q.Mode,
		Currency:      firstNonEmpty(w.CurrencyCode, q.Currency),
		MinPrice:      float64(w.MinPrice),
		MaxPrice:      float64(w.MaxPrice),
		AvgPrice:      float64(w.AvgPrice),
		QtyAvgPrice:   float64(w.QtyAvgPrice),
		UnitQuantity:  w.UnitQuantity,
		TotalQuantity: w.TotalQuantity,
	}
}

func (w *priceGuideWire) listings(q PriceQuery) *ListingResult {
	res := &ListingResult{
		Item:      q.Item,
		Condition: q.Condition,
		Mode:      q.Mode,
		Currency:  firstNonEmpty(w.CurrencyCode, q.Currency),
		Listings:  make([]Listing, 0, len(w.PriceDetail)),
	}
	for _, d := range w.PriceDetail {
		res.Listings = append(res.Listings, Listing{
			UnitPrice:     float64(d.UnitPrice),
			Quantity:      d.quantity(),
			SellerCountry: d.SellerCountryCode,
			BuyerCountry:  d.BuyerCountryCode,
			ShipsLocally:  d.ShippingAvailable,
		})
	}
	return res
}

func decodeRelations(ref ItemRef, data json.RawMessage) (*RelationResult, error) {
	var groups []relationGroupWire
	if err := json.Unmarshal(data, &groups); err != nil {
		return nil, fmt.Errorf("failed to decode related items: %w", err)
	}
	res := &RelationResult{Item: ref}
	for _, g := range groups {
		for _, e := range g.Entries {
			kind, ok := ParseKind(e.Item.Type)
			if !ok || e.Item.No == "" {
				continue
			}
			res.Related = append(res.Related, RelatedItem{
				Item:     ItemRef{Kind: kind, Number: e.Item.No},
				Name:     e.Item.Name,
				Quantity: e.Quantity,
			})
		}
	}
	return res, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
