// Package supplier resolves product requests against framework-agreement
// purchase history, with similarity fallbacks.
package supplier

import (
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/asysta-erp/asysta-erp/internal/catalog"
	"github.com/asysta-erp/asysta-erp/internal/platform/strsim"
	"github.com/asysta-erp/asysta-erp/internal/platform/textfold"
)

const (
	// nameSimilarityThreshold gates the fuzzy contract match.
	nameSimilarityThreshold = 0.6
	// similarProductThreshold gates the tf-idf suggestions.
	similarProductThreshold = 0.1
	// fallbackSimilarity is reported by the substring fallback search.
	fallbackSimilarity = 0.5
	// deliveryWindow is the fixed delivery promise on framework contracts.
	deliveryWindow = "2-3 days"
	// DefaultTopN caps similar-product suggestions.
	DefaultTopN = 3
)

// MatchResult is the outcome of a supplier resolution.
type MatchResult struct {
	Found           bool            `json:"found"`
	SupplierName    string          `json:"supplier_name,omitempty"`
	ProductName     string          `json:"product_name,omitempty"`
	Price           decimal.Decimal `json:"price"`
	DeliveryTime    string          `json:"delivery_time,omitempty"`
	ContractType    string          `json:"contract_type,omitempty"`
	MatchConfidence float64         `json:"match_confidence,omitempty"`
	Reason          string          `json:"reason,omitempty"`
}

// SimilarProduct is one similar-name suggestion.
type SimilarProduct struct {
	ProductName     string  `json:"product_name"`
	SimilarityScore float64 `json:"similarity_score"`
}

// HistorySource supplies the purchase-history snapshot.
type HistorySource interface {
	PurchaseHistory() catalog.PurchaseHistory
}

// Resolver maps (product, category) to a contracted supplier line.
type Resolver struct {
	source HistorySource
	logger *slog.Logger
}

// NewResolver builds a Resolver.
func NewResolver(source HistorySource, logger *slog.Logger) *Resolver {
	return &Resolver{source: source, logger: logger}
}

// FindSupplier applies the matching rules in order: verbatim name containment,
// edit-similarity above threshold, then category equality. The first rule to
// hit wins.
func (r *Resolver) FindSupplier(productName, category string) MatchResult {
	history := r.source.PurchaseHistory()
	if !history.Present || len(history.Entries) == 0 {
		return MatchResult{Reason: "no purchase history data"}
	}
	if !history.HasFrameworkColumn {
		return MatchResult{Reason: "framework agreement column missing"}
	}
	var contracts []catalog.HistoryEntry
	for _, entry := range history.Entries {
		if entry.Framework {
			contracts = append(contracts, entry)
		}
	}
	if len(contracts) == 0 {
		return MatchResult{Reason: "no framework agreements"}
	}

	if productName != "" {
		wanted := textfold.Normalize(productName)
		for _, contract := range contracts {
			if strings.Contains(textfold.Normalize(contract.ProductName), wanted) {
				return matched(contract, 0)
			}
		}

		var best *catalog.HistoryEntry
		bestScore := 0.0
		for i, contract := range contracts {
			score := strsim.Ratio(wanted, textfold.Normalize(contract.ProductName))
			if score > bestScore && score > nameSimilarityThreshold {
				bestScore = score
				best = &contracts[i]
			}
		}
		if best != nil {
			return matched(*best, round2(bestScore))
		}
	}

	if category != "" {
		for _, contract := range contracts {
			if contract.Category1 == category || contract.Category2 == category {
				return matched(contract, 0)
			}
		}
	}

	return MatchResult{Reason: "no matching framework agreement"}
}

// FindSimilarProducts suggests up to topN product names from purchase
// history ranked by tf-idf cosine similarity. When the candidate names
// yield no vocabulary at all, it degrades to a substring scan with a fixed
// score; a query that merely shares no tokens with the corpus scores zero
// everywhere and returns nothing.
func (r *Resolver) FindSimilarProducts(productName string, topN int) []SimilarProduct {
	if productName == "" {
		return nil
	}
	if topN <= 0 {
		topN = DefaultTopN
	}
	history := r.source.PurchaseHistory()
	if !history.Present {
		return nil
	}
	seen := make(map[string]bool)
	var candidates []string
	for _, entry := range history.Entries {
		name := strings.TrimSpace(entry.ProductName)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		candidates = append(candidates, name)
	}
	if len(candidates) == 0 {
		return nil
	}

	v := newVectorizer(candidates)
	if len(v.vocab) == 0 {
		return r.substringFallback(productName, candidates, topN)
	}
	query := v.vector(productName)
	if query == nil {
		return nil
	}

	var results []SimilarProduct
	for _, candidate := range candidates {
		vec := v.vector(candidate)
		if vec == nil {
			continue
		}
		if score := cosine(query, vec); score > similarProductThreshold {
			results = append(results, SimilarProduct{ProductName: candidate, SimilarityScore: round2(score)})
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].SimilarityScore != results[j].SimilarityScore {
			return results[i].SimilarityScore > results[j].SimilarityScore
		}
		return results[i].ProductName < results[j].ProductName
	})
	if len(results) > topN {
		results = results[:topN]
	}
	return results
}

func (r *Resolver) substringFallback(productName string, candidates []string, topN int) []SimilarProduct {
	r.logger.Warn("tf-idf vectorization produced an empty vocabulary, using substring fallback",
		slog.String("query", productName))
	wanted := textfold.Normalize(productName)
	var results []SimilarProduct
	for _, candidate := range candidates {
		if strings.Contains(textfold.Normalize(candidate), wanted) {
			results = append(results, SimilarProduct{ProductName: candidate, SimilarityScore: fallbackSimilarity})
			if len(results) == topN {
				break
			}
		}
	}
	return results
}

func matched(entry catalog.HistoryEntry, confidence float64) MatchResult {
	return MatchResult{
		Found:           true,
		SupplierName:    entry.SupplierName,
		ProductName:     entry.ProductName,
		Price:           entry.UnitPrice,
		DeliveryTime:    deliveryWindow,
		ContractType:    catalog.ContractFramework,
		MatchConfidence: confidence,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
