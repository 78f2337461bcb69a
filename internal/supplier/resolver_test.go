package supplier

import (
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/asysta-erp/asysta-erp/internal/catalog"
)

type stubHistory struct {
	history catalog.PurchaseHistory
}

func (s stubHistory) PurchaseHistory() catalog.PurchaseHistory {
	return s.history
}

func testResolver(history catalog.PurchaseHistory) *Resolver {
	return NewResolver(stubHistory{history: history}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func frameworkHistory() catalog.PurchaseHistory {
	return catalog.PurchaseHistory{
		Present:            true,
		HasFrameworkColumn: true,
		Entries: []catalog.HistoryEntry{
			{SupplierName: "Dell Polska", ProductName: "Laptop Dell Latitude", Category1: "IT", UnitPrice: decimal.RequireFromString("3200"), Framework: true},
			{SupplierName: "Biuro Plus", ProductName: "Papier A4", Category1: "Office", Category2: "IT", UnitPrice: decimal.RequireFromString("14.50"), Framework: true},
			{SupplierName: "Szary Rynek", ProductName: "Monitor 24", Category1: "IT", UnitPrice: decimal.RequireFromString("700"), Framework: false},
		},
	}
}

func TestFindSupplierNoData(t *testing.T) {
	r := testResolver(catalog.PurchaseHistory{})
	result := r.FindSupplier("Laptop Dell", "IT")
	require.False(t, result.Found)
	require.Equal(t, "no purchase history data", result.Reason)
}

func TestFindSupplierMissingFrameworkColumn(t *testing.T) {
	r := testResolver(catalog.PurchaseHistory{
		Present: true,
		Entries: []catalog.HistoryEntry{{ProductName: "Laptop Dell"}},
	})
	result := r.FindSupplier("Laptop Dell", "IT")
	require.False(t, result.Found)
	require.Equal(t, "framework agreement column missing", result.Reason)
}

func TestFindSupplierSubstringMatch(t *testing.T) {
	r := testResolver(frameworkHistory())

	result := r.FindSupplier("laptop dell", "")
	require.True(t, result.Found)
	require.Equal(t, "Dell Polska", result.SupplierName)
	require.Equal(t, catalog.ContractFramework, result.ContractType)
	require.Equal(t, "2-3 days", result.DeliveryTime)
	require.Zero(t, result.MatchConfidence)
	require.True(t, result.Price.Equal(decimal.RequireFromString("3200")))
}

func TestFindSupplierSubstringBeatsCategory(t *testing.T) {
	r := testResolver(frameworkHistory())

	// "Papier A4" would also category-match IT via Category2; the name rule
	// must win and return the paper contract, not the first IT row.
	result := r.FindSupplier("papier a4", "IT")
	require.True(t, result.Found)
	require.Equal(t, "Biuro Plus", result.SupplierName)
}

func TestFindSupplierSimilarityFallback(t *testing.T) {
	r := testResolver(frameworkHistory())

	result := r.FindSupplier("Laptop Dell Latitudo", "")
	require.True(t, result.Found)
	require.Equal(t, "Dell Polska", result.SupplierName)
	require.Greater(t, result.MatchConfidence, 0.6)
}

func TestFindSupplierCategoryFallback(t *testing.T) {
	r := testResolver(frameworkHistory())

	result := r.FindSupplier("", "Office")
	require.True(t, result.Found)
	require.Equal(t, "Biuro Plus", result.SupplierName)
	require.Zero(t, result.MatchConfidence)
}

func TestFindSupplierIgnoresNonFrameworkRows(t *testing.T) {
	r := testResolver(frameworkHistory())

	result := r.FindSupplier("Monitor 24", "")
	require.False(t, result.Found)
	require.Equal(t, "no matching framework agreement", result.Reason)
}

func TestFindSimilarProductsRanking(t *testing.T) {
	history := catalog.PurchaseHistory{
		Present:            true,
		HasFrameworkColumn: true,
		Entries: []catalog.HistoryEntry{
			{ProductName: "Laptop Dell XPS"},
			{ProductName: "Laptop Dell Latitude"},
			{ProductName: "Papier A4"},
			{ProductName: "Toner HP"},
		},
	}
	r := testResolver(history)

	similar := r.FindSimilarProducts("Laptop Dell", 3)
	require.NotEmpty(t, similar)
	require.LessOrEqual(t, len(similar), 3)
	for _, s := range similar {
		require.Greater(t, s.SimilarityScore, similarProductThreshold)
	}
	require.Contains(t, []string{"Laptop Dell XPS", "Laptop Dell Latitude"}, similar[0].ProductName)
	for i := 1; i < len(similar); i++ {
		require.GreaterOrEqual(t, similar[i-1].SimilarityScore, similar[i].SimilarityScore)
	}
}

func TestFindSimilarProductsUnseenTokensScoreNothing(t *testing.T) {
	history := catalog.PurchaseHistory{
		Present: true,
		Entries: []catalog.HistoryEntry{
			{ProductName: "Laptop Dell XPS"},
			{ProductName: "Papier A4"},
		},
	}
	r := testResolver(history)

	// "zszywacz" shares no token with the corpus, so every cosine score is
	// zero and nothing clears the threshold.
	require.Empty(t, r.FindSimilarProducts("Zszywacz", 3))
}

func TestFindSimilarProductsSubstringFallbackOnEmptyVocabulary(t *testing.T) {
	// single-character words never become tokens, so the vectorizer ends up
	// with an empty vocabulary and the substring scan takes over
	history := catalog.PurchaseHistory{
		Present: true,
		Entries: []catalog.HistoryEntry{
			{ProductName: "X 9"},
			{ProductName: "Y 7"},
		},
	}
	r := testResolver(history)

	similar := r.FindSimilarProducts("x", 3)
	require.Len(t, similar, 1)
	require.Equal(t, "X 9", similar[0].ProductName)
	require.InDelta(t, fallbackSimilarity, similar[0].SimilarityScore, 0.0001)
}
