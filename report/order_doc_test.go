package report

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/asysta-erp/asysta-erp/internal/catalog"
)

func testOrder() catalog.Order {
	return catalog.Order{
		ID:                "ORD-AB12CD34",
		SourceText:        "Potrzebuję 5 szt. laptopów",
		ProductName:       "Laptop Dell Latitude",
		Quantity:          5,
		Unit:              "szt.",
		SupplierName:      "Dell Polska",
		Price:             decimal.RequireFromString("3200"),
		ContractType:      catalog.ContractFramework,
		EstimatedDelivery: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
	}
}

func testRenderer(t *testing.T) (*Renderer, string) {
	t.Helper()
	dir := t.TempDir()
	r := NewRenderer(dir, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r.SetClock(func() time.Time {
		return time.Date(2024, 1, 3, 10, 30, 0, 0, time.UTC)
	})
	return r, dir
}

func TestRenderWritesHTMLDocument(t *testing.T) {
	r, dir := testRenderer(t)

	path, err := r.Render(context.Background(), testOrder())
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "order_ORD-AB12CD34_20240103.html"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	html := string(content)

	require.Contains(t, html, "ZAMOWIENIE")
	require.Contains(t, html, "Numer: ORD-AB12CD34")
	require.Contains(t, html, "Dell Polska")
	require.Contains(t, html, "Laptop Dell Latitude")
	require.Contains(t, html, "3200.00 PLN")
	require.Contains(t, html, "16000.00 PLN")
	require.Contains(t, html, "Termin dostawy: 10.01.2024")
	// free text is folded to plain ASCII
	require.Contains(t, html, "Potrzebuje 5 szt. laptopow")
}

func TestRenderWithoutSupplierOrDeliveryDate(t *testing.T) {
	r, _ := testRenderer(t)

	order := testOrder()
	order.SupplierName = ""
	order.EstimatedDelivery = time.Time{}
	order.SourceText = ""

	path, err := r.Render(context.Background(), order)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	html := string(content)

	require.Contains(t, html, "Nieznany dostawca")
	require.Contains(t, html, "Termin dostawy: Nieokreslony")
	require.NotContains(t, html, "DODATKOWE INFORMACJE")
}

func TestRenderedDocumentsMatchDeletionGlob(t *testing.T) {
	r, dir := testRenderer(t)

	_, err := r.Render(context.Background(), testOrder())
	require.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join(dir, "order_ORD-AB12CD34_*"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
}
