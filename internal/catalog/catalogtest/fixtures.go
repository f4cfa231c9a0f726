package catalogtest

import (
	"fmt"
	"strings"
)

// ItemJSON is the data payload of an item lookup.
func ItemJSON(no, name, itemType string, year int) string {
	return fmt.Sprintf(`{
		"no": %q,
		"name": %q,
		"type": %q,
		"category_id": 65,
		"image_url": "//img.bricklink.com/SL/%s.jpg",
		"thumbnail_url": "//img.bricklink.com/S/%s.jpg",
		"weight": "1520.00",
		"dim_x": "48.00",
		"dim_y": "37.80",
		"dim_z": "8.60",
		"year_released": %d,
		"is_obsolete": false
	}`, no, name, itemType, no, no, year)
}

// PriceGuideJSON is the data payload of a price guide with n detail rows.
func PriceGuideJSON(no, itemType, newOrUsed string, n int) string {
	rows := make([]string, n)
	for i := range rows {
		rows[i] = fmt.Sprintf(`{"quantity": %d, "unit_price": "%d.5000", "seller_country_code": "DE", "buyer_country_code": "UK", "shipping_available": true, "date_ordered": "2023-01-0%dT00:00:00.000Z"}`, i+1, 10+i, i%9+1)
	}
	return fmt.Sprintf(`{
		"item": {"no": %q, "type": %q},
		"new_or_used": %q,
		"currency_code": "EUR",
		"min_price": "8.5000",
		"max_price": "120.0000",
		"avg_price": "42.1234",
		"qty_avg_price": "40.0000",
		"unit_quantity": %d,
		"total_quantity": %d,
		"price_detail": [%s]
	}`, no, itemType, newOrUsed, n, n*2, strings.Join(rows, ","))
}
