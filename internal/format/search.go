package format

import (
	"fmt"
	"sort"

	"github.com/brickbot/bricklink-telegram-bot/internal/catalog"
)

// SearchDialog asks whether free text names a set or a minifigure.
func (f *Formatter) SearchDialog(query string) Reply {
	return newReply(catalog.ActionSet{{
		{Label: "Set", Payload: catalog.SearchPayload(catalog.ActionSetSearch, query)},
		{Label: "Minifigure", Payload: catalog.SearchPayload(catalog.ActionMinifigSearch, query)},
	}}, fmt.Sprintf("Is '%s' Set or Minifigure?", query))
}

// SortHits orders hits newest first. Hits from the same year keep their
// relative order. The input is not modified.
func SortHits(hits []catalog.SearchHit) []catalog.SearchHit {
	sorted := append([]catalog.SearchHit(nil), hits...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Year > sorted[j].Year
	})
	return sorted
}

// itemAction is the action behind an item button for scope.
func itemAction(scope Scope) catalog.Action {
	if scope == ScopeGroup {
		return catalog.ActionMore
	}
	return catalog.ActionInfo
}

// SearchResults renders name search hits as one button per item, newest
// first and capped at MaxEntries.
func (f *Formatter) SearchResults(query string, hits []catalog.SearchHit, scope Scope) Reply {
	if len(hits) == 0 {
		return Plain("Nothing found for: " + query)
	}
	sorted := SortHits(hits)
	if len(sorted) > MaxEntries {
		sorted = sorted[:MaxEntries]
	}
	action := itemAction(scope)
	rows := make(catalog.ActionSet, 0, len(sorted))
	for _, h := range sorted {
		label := fmt.Sprintf("%s %s", h.Number, unescapeName(h.Name))
		if h.Year > 0 {
			label = fmt.Sprintf("%s (%d)", label, h.Year)
		}
		rows = append(rows, catalog.ActionRow{{Label: label, Payload: catalog.ItemPayload(action, h.Ref())}})
	}
	return newReply(rows, fmt.Sprintf("Search result for '%s'", query))
}

func relatedRows(items []catalog.RelatedItem, kind catalog.Kind, scope Scope) catalog.ActionSet {
	action := itemAction(scope)
	var rows catalog.ActionSet
	for _, it := range items {
		if it.Item.Kind != kind {
			continue
		}
		label := fmt.Sprintf("%s %s", it.Item.Number, unescapeName(it.Name))
		if it.Quantity > 1 {
			label = fmt.Sprintf("%s x%d", label, it.Quantity)
		}
		rows = append(rows, catalog.ActionRow{{Label: label, Payload: catalog.ItemPayload(action, it.Item)}})
		if len(rows) == MaxEntries {
			break
		}
	}
	return rows
}

// Subsets lists the minifigures included in a set.
func (f *Formatter) Subsets(res *catalog.RelationResult, scope Scope) Reply {
	rows := relatedRows(res.Related, catalog.KindMinifig, scope)
	if len(rows) == 0 {
		return Plain("Nothing found in: " + res.Item.Number)
	}
	return newReply(rows, fmt.Sprintf("Minifigures in '%s'", res.Item.Number))
}

// Supersets lists the sets a minifigure appears in.
func (f *Formatter) Supersets(res *catalog.RelationResult, scope Scope) Reply {
	rows := relatedRows(res.Related, catalog.KindSet, scope)
	if len(rows) == 0 {
		return Plain("No sets found containing: " + res.Item.Number)
	}
	return newReply(rows, fmt.Sprintf("Sets containing '%s'", res.Item.Number))
}
