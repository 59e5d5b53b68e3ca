package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/minimart/ordering/internal/domain"
	"github.com/minimart/ordering/internal/resilience"
	"go.uber.org/zap"
)

func TestIsInStockSendsMultiValuedQuery(t *testing.T) {
	var gotPath string
	var gotSkus []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotSkus = r.URL.Query()["skuCode"]
		_ = json.NewEncoder(w).Encode([]domain.InventoryResponse{
			{SkuCode: "iPhone_13", Quantity: 100, InStock: true},
			{SkuCode: "pixel_8", Quantity: 0, InStock: false},
		})
	}))
	defer server.Close()

	c := NewInventoryClient(server.URL, zap.NewNop())
	responses, err := c.IsInStock(context.Background(), []string{"iPhone_13", "pixel_8"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/api/inventory" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if !reflect.DeepEqual(gotSkus, []string{"iPhone_13", "pixel_8"}) {
		t.Fatalf("unexpected skuCode params: %v", gotSkus)
	}
	if len(responses) != 2 || !responses[0].InStock || responses[1].InStock {
		t.Fatalf("unexpected responses: %+v", responses)
	}
}

func TestIsInStockClassifiesClientErrorsPermanent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer server.Close()

	c := NewInventoryClient(server.URL, zap.NewNop())
	_, err := c.IsInStock(context.Background(), []string{"iPhone_13"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !resilience.IsPermanent(err) {
		t.Fatalf("4xx must be permanent, got %v", err)
	}
}

func TestIsInStockClassifiesServerErrorsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := NewInventoryClient(server.URL, zap.NewNop())
	_, err := c.IsInStock(context.Background(), []string{"iPhone_13"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if resilience.IsPermanent(err) {
		t.Fatalf("5xx must stay retryable, got %v", err)
	}
}

func TestIsInStockRejectsEmptySkuList(t *testing.T) {
	c := NewInventoryClient("http://localhost:0", zap.NewNop())

	_, err := c.IsInStock(context.Background(), nil)
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if !resilience.IsPermanent(err) {
		t.Fatalf("invalid request must not be retryable")
	}
}

func TestIsInStockRespectsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewInventoryClient(server.URL, zap.NewNop())
	if _, err := c.IsInStock(ctx, []string{"iPhone_13"}); err == nil {
		t.Fatalf("expected context cancellation error")
	}
}
