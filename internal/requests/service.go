// Package requests orchestrates the manual procurement flow: classify the
// free-text request, resolve a supplier, and turn approved requests into
// orders with generated documents.
package requests

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/asysta-erp/asysta-erp/internal/catalog"
	"github.com/asysta-erp/asysta-erp/internal/classify"
	"github.com/asysta-erp/asysta-erp/internal/supplier"
)

// ErrNoProductName rejects order creation when classification produced no
// product to order.
var ErrNoProductName = errors.New("requests: cannot create order without a product name")

// StorePort describes the catalog store operations the flow needs.
type StorePort interface {
	SaveOrder(order catalog.Order) error
	AppendRequest(req catalog.RequestRecord) error
	RemoveOrderDocument(path string)
}

// ResolverPort resolves suppliers and similar-product suggestions.
type ResolverPort interface {
	FindSupplier(productName, category string) supplier.MatchResult
	FindSimilarProducts(productName string, topN int) []supplier.SimilarProduct
}

// ClassifierPort classifies free-text requests.
type ClassifierPort interface {
	Classify(text string) classify.Result
}

// RendererPort produces the printable order document.
type RendererPort interface {
	Render(ctx context.Context, order catalog.Order) (string, error)
}

// Analysis is the supplier lookup for a classified request, with suggestions
// when no contract matched.
type Analysis struct {
	Classification  classify.Result           `json:"classification"`
	Supplier        supplier.MatchResult      `json:"supplier"`
	SimilarProducts []supplier.SimilarProduct `json:"similar_products,omitempty"`
}

// Outcome is a created order together with its rendered document.
type Outcome struct {
	Order    catalog.Order `json:"order"`
	Document string        `json:"document"`
}

// Service wires the classifier, resolver, renderer and store into the
// request-to-order flow.
type Service struct {
	store      StorePort
	classifier ClassifierPort
	resolver   ResolverPort
	renderer   RendererPort
	clock      func() time.Time
	logger     *slog.Logger
}

// NewService builds a Service.
func NewService(store StorePort, classifier ClassifierPort, resolver ResolverPort, renderer RendererPort, logger *slog.Logger) *Service {
	return &Service{
		store:      store,
		classifier: classifier,
		resolver:   resolver,
		renderer:   renderer,
		clock:      time.Now,
		logger:     logger,
	}
}

// SetClock overrides the clock used for timestamps and the request log.
func (s *Service) SetClock(now func() time.Time) {
	if now != nil {
		s.clock = now
	}
}

// Analyze classifies the request text and resolves a supplier. When no
// supplier matches, up to three similar product names are attached. Every
// analyzed request is appended to the request log.
func (s *Service) Analyze(text string) Analysis {
	classification := s.classifier.Classify(text)
	analysis := Analysis{
		Classification: classification,
		Supplier:       s.resolver.FindSupplier(classification.ProductName, classification.Category),
	}
	if !analysis.Supplier.Found {
		analysis.SimilarProducts = s.resolver.FindSimilarProducts(classification.ProductName, supplier.DefaultTopN)
	}
	s.logRequest(text, classification)
	return analysis
}

// CreateOrder runs the full flow and persists an order for the request. The
// document is rendered before the order is appended; when the append fails
// the orphaned document is removed best effort.
func (s *Service) CreateOrder(ctx context.Context, text string, orderType catalog.OrderType) (Outcome, error) {
	classification := s.classifier.Classify(text)
	if classification.ProductName == "" {
		s.logRequest(text, classification)
		return Outcome{}, ErrNoProductName
	}
	match := s.resolver.FindSupplier(classification.ProductName, classification.Category)

	now := s.clock()
	if orderType == "" {
		orderType = catalog.OrderTypeStandard
	}
	order := catalog.Order{
		ID:                catalog.NewOrderID(catalog.ManualOrderPrefix),
		SourceText:        text,
		ProductID:         classification.ProductID,
		ProductName:       classification.ProductName,
		Category:          classification.Category,
		Quantity:          classification.Quantity,
		Unit:              classification.Unit,
		SupplierName:      match.SupplierName,
		Price:             match.Price,
		ContractType:      match.ContractType,
		Type:              orderType,
		CreatedAt:         now,
		EstimatedDelivery: now.AddDate(0, 0, 7),
		Status:            catalog.StatusOrdered,
	}

	docPath, err := s.renderer.Render(ctx, order)
	if err != nil {
		return Outcome{}, err
	}
	if err := s.store.SaveOrder(order); err != nil {
		s.store.RemoveOrderDocument(docPath)
		return Outcome{}, err
	}
	s.logRequest(text, classification)
	s.logger.Info("manual order created",
		slog.String("order_id", order.ID),
		slog.String("product", order.ProductName))
	return Outcome{Order: order, Document: docPath}, nil
}

func (s *Service) logRequest(text string, classification classify.Result) {
	now := s.clock()
	err := s.store.AppendRequest(catalog.RequestRecord{
		ID:               catalog.NewRequestID(now),
		Text:             text,
		DetectedProduct:  classification.ProductName,
		DetectedCategory: classification.Category,
		Timestamp:        now,
	})
	if err != nil {
		s.logger.Warn("failed to append request log entry", slog.Any("error", err))
	}
}
