package domain

import (
	"github.com/shopspring/decimal"
)

// Code is an enumeration value that upstream may send as a number or a string.
type Code struct {
	Value string
	Set   bool
}

// NewCode builds a present code.
func NewCode(value string) Code {
	return Code{Value: value, Set: true}
}

// String renders the code; absent codes render as "none".
func (c Code) String() string {
	if !c.Set {
		return "none"
	}
	return c.Value
}

// Attributes holds the custom attributes the catalog export cares about,
// resolved once when the product is decoded.
type Attributes struct {
	URLKey           string
	Image            string
	SmallImage       string
	Thumbnail        string
	Description      string
	ShortDescription string
	Ingredients      string
}

// StockItem is the stock sub-record some endpoints embed in the product.
type StockItem struct {
	Qty       float64
	IsInStock bool
}

// Product is a raw catalog record as fetched from the commerce backend.
type Product struct {
	SKU        string
	Name       string
	TypeID     string
	Status     Code
	Visibility Code
	Price      decimal.Decimal
	Attributes Attributes
	Stock      *StockItem
}

// StockRecord is a per-warehouse inventory row keyed by SKU.
type StockRecord struct {
	SKU        string
	Quantity   float64
	Status     int
	SourceCode string
}

// Available reports whether the source marks the item as sellable.
func (s StockRecord) Available() bool {
	return s.Status == 1
}

// StockLevels maps SKU to the stock record retained for it.
type StockLevels map[string]StockRecord

// Lookup returns the record for sku or nil.
func (l StockLevels) Lookup(sku string) *StockRecord {
	if l == nil {
		return nil
	}
	rec, ok := l[sku]
	if !ok {
		return nil
	}
	return &rec
}

// StockState is the resolved availability of one product.
type StockState struct {
	Known    bool
	Quantity float64
	InStock  bool
	Status   int
}

// ResolveStock prefers an external stock record and falls back to the
// embedded stock item.
func ResolveStock(p Product, rec *StockRecord) StockState {
	switch {
	case rec != nil:
		return StockState{Known: true, Quantity: rec.Quantity, InStock: rec.Available(), Status: rec.Status}
	case p.Stock != nil:
		status := 0
		if p.Stock.IsInStock {
			status = 1
		}
		return StockState{Known: true, Quantity: p.Stock.Qty, InStock: p.Stock.IsInStock, Status: status}
	default:
		return StockState{}
	}
}

// CatalogEntry is the export view of an eligible product.
type CatalogEntry struct {
	Name             string
	SKU              string
	Price            decimal.Decimal
	Category         string
	TrackStock       bool
	Stock            StockState
	Link             string
	ImageLink        string
	ShortDescription string
	Description      string
	Ingredients      string
}

// Document is the generated knowledge-base artifact.
type Document struct {
	Filename string
	Text     string
}

// Empty reports whether the document has no content to publish.
func (d Document) Empty() bool {
	return d.Text == ""
}
