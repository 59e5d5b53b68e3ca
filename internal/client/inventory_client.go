package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/minimart/ordering/internal/domain"
	"github.com/minimart/ordering/internal/resilience"
	"go.uber.org/zap"
)

// InventoryClient queries the inventory service over HTTP:
// GET {base}/api/inventory?skuCode=a&skuCode=b.
type InventoryClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewInventoryClient uses a client without its own timeout; the caller
// bounds each attempt through the resilience wrapper's context.
func NewInventoryClient(baseURL string, logger *zap.Logger) *InventoryClient {
	return &InventoryClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     logger,
	}
}

func (c *InventoryClient) IsInStock(ctx context.Context, skuCodes []string) ([]domain.InventoryResponse, error) {
	if len(skuCodes) == 0 {
		return nil, resilience.Permanent(domain.ErrInvalidRequest)
	}

	u, err := url.Parse(c.baseURL + "/api/inventory")
	if err != nil {
		return nil, resilience.Permanent(fmt.Errorf("inventory url: %w", err))
	}
	query := url.Values{}
	for _, sku := range skuCodes {
		query.Add("skuCode", sku)
	}
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, resilience.Permanent(fmt.Errorf("build inventory request: %w", err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call inventory service: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var responses []domain.InventoryResponse
		if err := json.NewDecoder(resp.Body).Decode(&responses); err != nil {
			return nil, fmt.Errorf("decode inventory response: %w", err)
		}
		return responses, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.logger.Warn("inventory service rejected request",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body))
		return nil, resilience.Permanent(fmt.Errorf("inventory service rejected request: status %d", resp.StatusCode))
	default:
		return nil, fmt.Errorf("inventory service returned status %d", resp.StatusCode)
	}
}
