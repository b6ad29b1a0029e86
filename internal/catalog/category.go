package catalog

import "strings"

// Category is one of the fixed labels attached to exported products.
type Category string

const (
	CategoryFragrance Category = "Fragrance"
	CategorySoap      Category = "Soap"
	CategoryHome      Category = "Home"
	CategoryBodyCare  Category = "Body Care"
	CategoryGrooming  Category = "Grooming"
	CategoryGeneral   Category = "General"
)

func (c Category) String() string {
	return string(c)
}

type categoryRule struct {
	category Category
	terms    []string
}

// Order matters: the first rule with a matching term wins.
var categoryRules = []categoryRule{
	{CategoryFragrance, []string{"eau de toilette", "eau de cologne", "parfum", "fragrance", "cologne", "scent"}},
	{CategorySoap, []string{"soap", "sabonete", "body wash", "hand wash", "gel"}},
	{CategoryHome, []string{"candle", "diffuser", "vela", "difusor"}},
	{CategoryBodyCare, []string{"cream", "lotion", "oil", "body", "hand cream"}},
	{CategoryGrooming, []string{"shaving", "barbear"}},
}

// Classify tags a product name by case-insensitive keyword containment.
func Classify(name string) Category {
	lower := strings.ToLower(name)
	for _, rule := range categoryRules {
		for _, term := range rule.terms {
			if strings.Contains(lower, term) {
				return rule.category
			}
		}
	}
	return CategoryGeneral
}

// Labels maps categories to the text printed in the document.
type Labels map[Category]string

// Label returns the override for c, or its canonical name.
func (l Labels) Label(c Category) string {
	if v, ok := l[c]; ok && v != "" {
		return v
	}
	return c.String()
}
