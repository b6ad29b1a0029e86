package magento

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"

	"CatalogSync/internal/domain"
)

type productPage struct {
	Items      []productDTO `json:"items"`
	TotalCount *int         `json:"total_count"`
}

type productDTO struct {
	SKU                 string              `json:"sku"`
	Name                string              `json:"name"`
	TypeID              string              `json:"type_id"`
	Status              json.RawMessage     `json:"status"`
	Visibility          json.RawMessage     `json:"visibility"`
	Price               decimal.NullDecimal `json:"price"`
	CustomAttributes    []customAttribute   `json:"custom_attributes"`
	ExtensionAttributes *extensionAttrs     `json:"extension_attributes"`
}

type customAttribute struct {
	Code  string          `json:"attribute_code"`
	Value json.RawMessage `json:"value"`
}

type extensionAttrs struct {
	StockItem *stockItemDTO `json:"stock_item"`
}

type stockItemDTO struct {
	Qty       *float64 `json:"qty"`
	IsInStock bool     `json:"is_in_stock"`
}

type sourceItemPage struct {
	Items []sourceItemDTO `json:"items"`
}

type sourceItemDTO struct {
	SKU        string  `json:"sku"`
	Quantity   float64 `json:"quantity"`
	Status     int     `json:"status"`
	SourceCode string  `json:"source_code"`
}

func (p productDTO) toDomain() domain.Product {
	product := domain.Product{
		SKU:        p.SKU,
		Name:       p.Name,
		TypeID:     p.TypeID,
		Status:     decodeCode(p.Status),
		Visibility: decodeCode(p.Visibility),
		Attributes: p.attributes(),
	}
	if p.Price.Valid {
		product.Price = p.Price.Decimal
	}
	if p.ExtensionAttributes != nil && p.ExtensionAttributes.StockItem != nil {
		item := p.ExtensionAttributes.StockItem
		stock := &domain.StockItem{IsInStock: item.IsInStock}
		if item.Qty != nil {
			stock.Qty = *item.Qty
		}
		product.Stock = stock
	}
	return product
}

func (p productDTO) attributes() domain.Attributes {
	var attrs domain.Attributes
	targets := map[string]*string{
		"url_key":           &attrs.URLKey,
		"image":             &attrs.Image,
		"small_image":       &attrs.SmallImage,
		"thumbnail":         &attrs.Thumbnail,
		"description":       &attrs.Description,
		"short_description": &attrs.ShortDescription,
		"ingredients":       &attrs.Ingredients,
	}
	for _, attr := range p.CustomAttributes {
		dst, ok := targets[attr.Code]
		if !ok || *dst != "" {
			continue
		}
		var value string
		if err := json.Unmarshal(attr.Value, &value); err != nil {
			continue
		}
		*dst = value
	}
	return attrs
}

// decodeCode accepts a JSON number or string; null and absent map to unset.
func decodeCode(raw json.RawMessage) domain.Code {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return domain.Code{}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return domain.NewCode(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return domain.NewCode(n.String())
	}
	return domain.NewCode(string(raw))
}
