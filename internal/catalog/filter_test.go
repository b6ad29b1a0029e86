package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"CatalogSync/internal/domain"
)

func eligibleProduct() domain.Product {
	return domain.Product{
		SKU:        "ABC1",
		Name:       "Eau de Toilette X",
		TypeID:     "simple",
		Status:     domain.NewCode("1"),
		Visibility: domain.NewCode("4"),
	}
}

func TestCheckAcceptsEligibleProduct(t *testing.T) {
	t.Parallel()

	ok, reason := Check(eligibleProduct(), nil, false)
	assert.True(t, ok)
	assert.Equal(t, ReasonOK, reason)
}

func TestCheckRejectionOrder(t *testing.T) {
	t.Parallel()

	p := eligibleProduct()
	p.Status = domain.NewCode("2")
	p.TypeID = "configurable"
	p.Visibility = domain.NewCode("1")

	ok, reason := Check(p, nil, true)
	assert.False(t, ok)
	assert.Equal(t, "Status:Disabled(2)", reason)

	p.Status = domain.NewCode("1")
	ok, reason = Check(p, nil, true)
	assert.False(t, ok)
	assert.Equal(t, "Type:configurable", reason)

	p.TypeID = "simple"
	ok, reason = Check(p, nil, true)
	assert.False(t, ok)
	assert.Equal(t, "Vis:1", reason)
}

func TestCheckMissingStatus(t *testing.T) {
	t.Parallel()

	p := eligibleProduct()
	p.Status = domain.Code{}

	ok, reason := Check(p, nil, false)
	assert.False(t, ok)
	assert.Equal(t, "Status:Disabled(none)", reason)
}

func TestCheckVisibilityComparedAsString(t *testing.T) {
	t.Parallel()

	p := eligibleProduct()
	p.Visibility = domain.NewCode("4")
	ok, _ := Check(p, nil, false)
	assert.True(t, ok)

	p.Visibility = domain.NewCode("04")
	ok, reason := Check(p, nil, false)
	assert.False(t, ok)
	assert.Equal(t, "Vis:04", reason)
}

func TestCheckStock(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		rec     *domain.StockRecord
		stock   *domain.StockItem
		require bool
		wantOK  bool
		reason  string
	}{
		{name: "requirement off ignores stock", rec: &domain.StockRecord{Quantity: 0, Status: 0}, require: false, wantOK: true, reason: ReasonOK},
		{name: "zero quantity rejected even if flagged", rec: &domain.StockRecord{Quantity: 0, Status: 1}, require: true, reason: "NoStock(Qty:0,Status:1)"},
		{name: "quantity without flag rejected", rec: &domain.StockRecord{Quantity: 3, Status: 0}, require: true, reason: "NoStock(Qty:3,Status:0)"},
		{name: "record in stock", rec: &domain.StockRecord{Quantity: 3, Status: 1}, require: true, wantOK: true, reason: ReasonOK},
		{name: "embedded stock used without record", stock: &domain.StockItem{Qty: 2, IsInStock: true}, require: true, wantOK: true, reason: ReasonOK},
		{name: "embedded out of stock", stock: &domain.StockItem{Qty: 0, IsInStock: false}, require: true, reason: "NoStock(Qty:0,Status:0)"},
		{name: "record wins over embedded", rec: &domain.StockRecord{Quantity: 0, Status: 1}, stock: &domain.StockItem{Qty: 9, IsInStock: true}, require: true, reason: "NoStock(Qty:0,Status:1)"},
		{name: "no stock data at all", require: true, wantOK: true, reason: ReasonOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := eligibleProduct()
			p.Stock = tt.stock
			ok, reason := Check(p, tt.rec, tt.require)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestFormatQuantity(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "12", FormatQuantity(12))
	assert.Equal(t, "2.5", FormatQuantity(2.5))
	assert.Equal(t, "0", FormatQuantity(0))
}
