// Package classify turns free-text purchase requests into structured
// product/category/quantity tuples by lexical matching against the catalog.
package classify

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/asysta-erp/asysta-erp/internal/catalog"
	"github.com/asysta-erp/asysta-erp/internal/platform/strsim"
	"github.com/asysta-erp/asysta-erp/internal/platform/textfold"
)

const (
	// CatalogConfidence is assigned when a catalog name appears verbatim.
	CatalogConfidence = 0.9
	// KeywordConfidence is assigned to keyword-only category fallbacks.
	KeywordConfidence = 0.3
	// similarityThreshold gates the fuzzy catalog match.
	similarityThreshold = 0.3
	// DefaultUnit is used when neither catalog nor request provides one.
	DefaultUnit = "pieces"
	// FallbackCategory when no keyword list matches.
	FallbackCategory = "Other"
)

// Result is the structured classification of one request.
type Result struct {
	ProductID      string  `json:"product_id,omitempty"`
	ProductName    string  `json:"product_name,omitempty"`
	Category       string  `json:"category"`
	Quantity       int     `json:"quantity"`
	Unit           string  `json:"unit"`
	Confidence     float64 `json:"confidence"`
	FoundInCatalog bool    `json:"found_in_catalog"`
}

// Quantity phrases, tried in order on folded lower-case text: unit-suffixed
// numbers first, then verb-prefixed numbers (English and Polish).
var quantityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d+)\s*szt\.`),
	regexp.MustCompile(`(\d+)\s*op\.`),
	regexp.MustCompile(`(\d+)\s*sztuk`),
	regexp.MustCompile(`(\d+)\s*opakowan`),
	regexp.MustCompile(`need\s*(\d+)`),
	regexp.MustCompile(`potrzebuje\s*(\d+)`),
	regexp.MustCompile(`potrzebujemy\s*(\d+)`),
}

// categoryKeywords is evaluated in declaration order; first hit wins.
var categoryKeywords = []struct {
	name  string
	words []string
}{
	{"IT", []string{"laptop", "monitor", "computer", "software", "hardware", "dell", "hp", "samsung", "siemens"}},
	{"Office", []string{"paper", "papier", "chair", "krzeslo", "biuro", "office", "toner", "drukarka"}},
	{"Production", []string{"motor", "silnik", "sensor", "czujnik", "tool", "narzedzie", "production", "produkcja"}},
	{"Safety", []string{"safety", "bezpieczenstwo", "glasses", "okulary", "workwear", "odziez"}},
}

// Classifier matches request text against a fixed product catalog.
type Classifier struct {
	products []catalog.Product
}

// New builds a Classifier over the given catalog snapshot.
func New(products []catalog.Product) *Classifier {
	return &Classifier{products: products}
}

// Classify extracts quantity and matches a product, falling back to keyword
// category assignment when nothing in the catalog scores above threshold.
func (c *Classifier) Classify(text string) Result {
	folded := textfold.Normalize(text)
	quantity := extractQuantity(folded)
	if quantity == 0 {
		quantity = 1
	}

	if product, confidence, ok := c.matchProduct(folded); ok {
		unit := product.Unit
		if unit == "" {
			unit = DefaultUnit
		}
		return Result{
			ProductID:      product.ID,
			ProductName:    product.Name,
			Category:       product.Category,
			Quantity:       quantity,
			Unit:           unit,
			Confidence:     confidence,
			FoundInCatalog: true,
		}
	}

	return Result{
		Category:   classifyByKeywords(folded),
		Quantity:   quantity,
		Unit:       DefaultUnit,
		Confidence: KeywordConfidence,
	}
}

func extractQuantity(folded string) int {
	for _, pattern := range quantityPatterns {
		if m := pattern.FindStringSubmatch(folded); m != nil {
			if qty, err := strconv.Atoi(m[1]); err == nil {
				return qty
			}
		}
	}
	return 0
}

func (c *Classifier) matchProduct(folded string) (catalog.Product, float64, bool) {
	var best catalog.Product
	bestScore := 0.0
	for _, product := range c.products {
		name := textfold.Normalize(product.Name)
		if name == "" {
			continue
		}
		if strings.Contains(folded, name) {
			return product, CatalogConfidence, true
		}
		if score := strsim.Ratio(folded, name); score > bestScore && score > similarityThreshold {
			bestScore = score
			best = product
		}
	}
	if bestScore > 0 {
		return best, bestScore, true
	}
	return catalog.Product{}, 0, false
}

func classifyByKeywords(folded string) string {
	for _, group := range categoryKeywords {
		for _, word := range group.words {
			if strings.Contains(folded, word) {
				return group.name
			}
		}
	}
	return FallbackCategory
}
