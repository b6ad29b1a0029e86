package catalog

import (
	"fmt"
	"strconv"

	"CatalogSync/internal/domain"
)

const (
	statusEnabled     = "1"
	typeSimple        = "simple"
	visibilityCatalog = "4"

	// ReasonOK is returned for accepted products.
	ReasonOK = "OK"
)

// Check decides whether p is exported. The stock rule only applies when
// requireStock is set and some stock data exists for p; stock comes from rec
// when given, otherwise from the product's embedded stock item.
func Check(p domain.Product, rec *domain.StockRecord, requireStock bool) (bool, string) {
	if p.Status.Value != statusEnabled || !p.Status.Set {
		return false, fmt.Sprintf("Status:Disabled(%s)", p.Status)
	}
	if p.TypeID != typeSimple {
		return false, fmt.Sprintf("Type:%s", p.TypeID)
	}
	if p.Visibility.String() != visibilityCatalog {
		return false, fmt.Sprintf("Vis:%s", p.Visibility)
	}

	if requireStock {
		state := domain.ResolveStock(p, rec)
		if state.Known && (state.Quantity <= 0 || !state.InStock) {
			return false, fmt.Sprintf("NoStock(Qty:%s,Status:%d)", FormatQuantity(state.Quantity), state.Status)
		}
	}

	return true, ReasonOK
}

// FormatQuantity prints a stock quantity without a trailing ".0".
func FormatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}
