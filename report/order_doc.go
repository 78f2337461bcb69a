package report

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/asysta-erp/asysta-erp/internal/catalog"
	"github.com/asysta-erp/asysta-erp/internal/platform/textfold"
)

// buyerLines is the fixed ordering-party block printed on every document.
var buyerLines = []string{
	"FIRMA EXAMPLE SP. Z O.O.",
	"ul. Przykladowa 123",
	"00-001 Warszawa",
	"NIP: 1234567890",
	"Tel: +48 22 123 45 67",
}

var orderTemplate = template.Must(template.New("order").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Zamowienie {{.OrderID}}</title>
<style>
body { font-family: Arial, sans-serif; font-size: 12px; margin: 40px; }
h1 { text-align: center; background: #f0f0f0; padding: 12px; }
h2 { border-bottom: 1px solid #000; padding-bottom: 4px; font-size: 14px; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #000; padding: 6px; }
th { background: #c8c8c8; }
.meta { display: flex; justify-content: space-between; font-weight: bold; }
.total { text-align: right; font-weight: bold; margin-top: 8px; }
.parties { display: flex; justify-content: space-between; }
.signatures { display: flex; justify-content: space-between; margin-top: 60px; }
.signatures div { border-top: 1px solid #000; width: 40%; text-align: center; padding-top: 4px; }
.footer { text-align: center; font-style: italic; font-size: 10px; margin-top: 40px; }
</style>
</head>
<body>
<h1>ZAMOWIENIE</h1>
<div class="meta"><span>Numer: {{.OrderID}}</span><span>Data: {{.IssuedOn}}</span></div>

<h2>DANE STRON</h2>
<div class="parties">
<div><strong>ZAMAWIAJACY:</strong><br>{{range .Buyer}}{{.}}<br>{{end}}</div>
<div><strong>DOSTAWCA:</strong><br>{{.SupplierName}}</div>
</div>

<h2>PRODUKTY</h2>
<table>
<tr><th>NAZWA PRODUKTU</th><th>ILOSC</th><th>J.M.</th><th>CENA</th><th>WARTOSC</th></tr>
<tr><td>{{.ProductName}}</td><td>{{.Quantity}}</td><td>{{.Unit}}</td><td>{{.UnitPrice}} PLN</td><td>{{.TotalPrice}} PLN</td></tr>
</table>
<p class="total">RAZEM DO ZAPLATY: {{.TotalPrice}} PLN</p>

<h2>WARUNKI ZAMOWIENIA</h2>
<p>
Termin dostawy: {{.DeliveryDate}}<br>
Forma dostawy: {{.ContractType}}<br>
Warunki platnosci: 14 dni od daty faktury<br>
Miejsce dostawy: siedziba Zamawiajacego<br>
Uwagi: Prosimy o potwierdzenie realizacji zamowienia
</p>
{{if .SourceText}}
<h2>DODATKOWE INFORMACJE</h2>
<p>{{.SourceText}}</p>
{{end}}

<div class="signatures">
<div>Podpis Zamawiajacego</div>
<div>Podpis Dostawcy</div>
</div>

<p class="footer">
Dokument wygenerowany automatycznie<br>
Wygenerowano: {{.GeneratedAt}}
</p>
</body>
</html>
`))

type orderView struct {
	OrderID      string
	IssuedOn     string
	Buyer        []string
	SupplierName string
	ProductName  string
	Quantity     int
	Unit         string
	UnitPrice    string
	TotalPrice   string
	DeliveryDate string
	ContractType string
	SourceText   string
	GeneratedAt  string
}

// Renderer writes one document per order into the output directory. With a
// Gotenberg client it produces a PDF, otherwise the built HTML is written
// directly so the flow keeps working without the converter.
type Renderer struct {
	outputDir string
	client    *Client
	clock     func() time.Time
	logger    *slog.Logger
}

// NewRenderer builds a Renderer. client may be nil.
func NewRenderer(outputDir string, client *Client, logger *slog.Logger) *Renderer {
	return &Renderer{outputDir: outputDir, client: client, clock: time.Now, logger: logger}
}

// SetClock overrides the clock used in file names and footers.
func (r *Renderer) SetClock(now func() time.Time) {
	if now != nil {
		r.clock = now
	}
}

// Render builds the order document and returns the written file path. File
// names follow order_<id>_<yyyymmdd> so documents can be found by order id.
func (r *Renderer) Render(ctx context.Context, order catalog.Order) (string, error) {
	html, err := r.buildHTML(order)
	if err != nil {
		return "", fmt.Errorf("report: build order document: %w", err)
	}
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return "", err
	}

	base := fmt.Sprintf("order_%s_%s", order.ID, r.clock().Format("20060102"))
	if r.client == nil {
		path := filepath.Join(r.outputDir, base+".html")
		if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
			return "", err
		}
		r.logger.Info("order document written", slog.String("path", path))
		return path, nil
	}

	pdf, err := r.client.RenderHTML(ctx, html)
	if err != nil {
		return "", fmt.Errorf("report: convert order document: %w", err)
	}
	path := filepath.Join(r.outputDir, base+".pdf")
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		return "", err
	}
	r.logger.Info("order document written", slog.String("path", path))
	return path, nil
}

func (r *Renderer) buildHTML(order catalog.Order) (string, error) {
	now := r.clock()
	total := order.Price.Mul(decimal.NewFromInt(int64(order.Quantity)))

	supplierName := order.SupplierName
	if supplierName == "" {
		supplierName = "Nieznany dostawca"
	}
	deliveryDate := "Nieokreslony"
	if !order.EstimatedDelivery.IsZero() {
		deliveryDate = order.EstimatedDelivery.Format("02.01.2006")
	}

	view := orderView{
		OrderID:      order.ID,
		IssuedOn:     now.Format("02.01.2006"),
		Buyer:        buyerLines,
		SupplierName: textfold.ASCII(supplierName),
		ProductName:  textfold.ASCII(order.ProductName),
		Quantity:     order.Quantity,
		Unit:         textfold.ASCII(order.Unit),
		UnitPrice:    order.Price.StringFixed(2),
		TotalPrice:   total.StringFixed(2),
		DeliveryDate: deliveryDate,
		ContractType: textfold.ASCII(order.ContractType),
		SourceText:   textfold.ASCII(order.SourceText),
		GeneratedAt:  now.Format("02.01.2006 15:04"),
	}

	var buf bytes.Buffer
	if err := orderTemplate.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}
