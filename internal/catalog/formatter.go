package catalog

import (
	"net/url"
	"strings"

	"CatalogSync/internal/domain"
	"CatalogSync/internal/textclean"
)

const (
	// DefaultLinkTemplate reproduces the storefront links used by the chatbot.
	DefaultLinkTemplate = "{storefront}{url_key}?sku={sku}&utm_source=chatbot&utm_medium=product_chatbot"
	DefaultCurrency     = "EUR"

	notAvailable     = "N/A"
	imagePlaceholder = "no_selection"

	blockStart = "--- INÍCIO DE PRODUTO ---\n"
	blockEnd   = "--- FIM DE PRODUTO ---\n\n"
)

// Options carries the profile-specific parts of the document format.
type Options struct {
	Currency      string
	StorefrontURL string
	MediaURL      string
	LinkTemplate  string
	RequireStock  bool
	TrackStock    bool
	Labels        Labels
}

// Formatter turns fetched products into the knowledge-base text document.
type Formatter struct {
	opts Options
}

// NewFormatter fills unset options with defaults.
func NewFormatter(opts Options) *Formatter {
	if opts.Currency == "" {
		opts.Currency = DefaultCurrency
	}
	if opts.LinkTemplate == "" {
		opts.LinkTemplate = DefaultLinkTemplate
	}
	return &Formatter{opts: opts}
}

// Format filters every product, renders a block for each accepted one and
// returns the concatenated text with its counters.
func (f *Formatter) Format(products []domain.Product, levels domain.StockLevels) (string, domain.FormatSummary) {
	summary := domain.FormatSummary{Rejections: map[string]int{}}
	var sb strings.Builder

	for _, p := range products {
		rec := levels.Lookup(p.SKU)
		ok, reason := Check(p, rec, f.opts.RequireStock)
		if !ok {
			summary.Reject(reason)
			continue
		}

		entry := f.Entry(p, rec)
		summary.Valid++
		if entry.ImageLink != notAvailable {
			summary.WithImage++
		}
		if entry.Stock.Quantity > 0 {
			summary.WithStock++
		}
		sb.WriteString(RenderBlock(entry, f.opts.Currency))
	}

	return sb.String(), summary
}

// Entry derives the export view of an accepted product.
func (f *Formatter) Entry(p domain.Product, rec *domain.StockRecord) domain.CatalogEntry {
	return domain.CatalogEntry{
		Name:             orNA(p.Name),
		SKU:              orNA(p.SKU),
		Price:            p.Price,
		Category:         f.opts.Labels.Label(Classify(p.Name)),
		TrackStock:       f.opts.TrackStock,
		Stock:            domain.ResolveStock(p, rec),
		Link:             f.Link(p),
		ImageLink:        f.ImageLink(p),
		ShortDescription: textclean.Sanitize(p.Attributes.ShortDescription),
		Description:      textclean.Sanitize(p.Attributes.Description),
		Ingredients:      textclean.Sanitize(p.Attributes.Ingredients),
	}
}

// Link builds the storefront URL, or N/A when the product has no url_key.
func (f *Formatter) Link(p domain.Product) string {
	if strings.TrimSpace(p.Attributes.URLKey) == "" {
		return notAvailable
	}
	r := strings.NewReplacer(
		"{storefront}", f.opts.StorefrontURL,
		"{url_key}", p.Attributes.URLKey,
		"{sku}", url.QueryEscape(p.SKU),
	)
	return r.Replace(f.opts.LinkTemplate)
}

// ImageLink picks the first usable image attribute and joins it to the media base.
func (f *Formatter) ImageLink(p domain.Product) string {
	for _, candidate := range []string{p.Attributes.Image, p.Attributes.SmallImage, p.Attributes.Thumbnail} {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" || candidate == imagePlaceholder {
			continue
		}
		return strings.TrimRight(f.opts.MediaURL, "/") + "/" + strings.TrimLeft(candidate, "/")
	}
	return notAvailable
}

// RenderBlock prints one product in the fixed block format.
func RenderBlock(e domain.CatalogEntry, currency string) string {
	var sb strings.Builder
	sb.WriteString(blockStart)
	sb.WriteString("NOME: " + e.Name + "\n")
	sb.WriteString("SKU: " + e.SKU + "\n")
	sb.WriteString("CATEGORIA_OFICIAL: " + e.Category + "\n")
	sb.WriteString("PREÇO: " + e.Price.String() + " " + currency + "\n")
	if e.TrackStock {
		status := "SEM STOCK"
		if e.Stock.Quantity > 0 {
			status = "EM STOCK"
		}
		sb.WriteString("STOCK: " + status + " (Quantidade: " + FormatQuantity(e.Stock.Quantity) + ")\n")
	}
	sb.WriteString("LINK: " + e.Link + "\n")
	sb.WriteString("IMAGEM: " + e.ImageLink + "\n")
	if e.ShortDescription != "" {
		sb.WriteString("RESUMO: " + e.ShortDescription + "\n")
	}
	if e.Description != "" {
		sb.WriteString("DESCRIÇÃO: " + e.Description + "\n")
	}
	if e.Ingredients != "" {
		sb.WriteString("\n[DADOS_TECNICOS_INGREDIENTES]: " + e.Ingredients + "\n")
	}
	sb.WriteString(blockEnd)
	return sb.String()
}

func orNA(v string) string {
	if v == "" {
		return notAvailable
	}
	return v
}
