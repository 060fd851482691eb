package docgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/roadfile/compliance/internal/models"
	cfgpkg "github.com/roadfile/compliance/pkg/config"
)

// Generator renders the PDF documents that back tariff and arbitration
// filings. Rendering can fail independently of the caller's transaction;
// callers treat regeneration as best-effort.
type Generator interface {
	RenderTariffDocument(ctx context.Context, user *models.User, order *models.TariffOrder) (string, error)
	RenderArbitrationDocument(ctx context.Context, user *models.User, enrollment *models.ArbitrationEnrollment) (string, error)
}

// Client calls the PDF renderer service over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *zap.SugaredLogger
}

func NewClient(cfg *cfgpkg.Config, log *zap.SugaredLogger) Generator {
	return &Client{
		baseURL: cfg.Renderer.BaseURL,
		apiKey:  cfg.Renderer.APIKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		log: log,
	}
}

type renderRequest struct {
	Template string         `json:"template"`
	Data     map[string]any `json:"data"`
}

type renderResponse struct {
	DocumentURL string `json:"document_url"`
	Error       string `json:"error"`
}

func (c *Client) RenderTariffDocument(ctx context.Context, user *models.User, order *models.TariffOrder) (string, error) {
	return c.render(ctx, "tariff", map[string]any{
		"company_name":  user.CompanyName,
		"dot_number":    user.DOTNumber,
		"mc_number":     user.MCNumber,
		"order_id":      order.ID,
		"enrolled_date": order.EnrolledDate,
		"expiry_date":   order.ExpiryDate,
	})
}

func (c *Client) RenderArbitrationDocument(ctx context.Context, user *models.User, enrollment *models.ArbitrationEnrollment) (string, error) {
	return c.render(ctx, "arbitration", map[string]any{
		"company_name":  user.CompanyName,
		"dot_number":    user.DOTNumber,
		"mc_number":     user.MCNumber,
		"enrollment_id": enrollment.ID,
		"enrolled_date": enrollment.EnrolledDate,
		"expiry_date":   enrollment.ExpiryDate,
	})
}

func (c *Client) render(ctx context.Context, template string, data map[string]any) (string, error) {
	if c.baseURL == "" {
		return "", fmt.Errorf("document renderer unconfigured")
	}

	body, err := json.Marshal(renderRequest{Template: template, Data: data})
	if err != nil {
		return "", fmt.Errorf("failed to marshal render request: %w", err)
	}

	url := fmt.Sprintf("%s/render", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build render request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("render request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read render response: %w", err)
	}

	var out renderResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("failed to decode render response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode >= 300 || out.DocumentURL == "" {
		if out.Error != "" {
			return "", fmt.Errorf("renderer error: %s", out.Error)
		}
		return "", fmt.Errorf("renderer returned status %d", resp.StatusCode)
	}
	return out.DocumentURL, nil
}

var Module = fx.Options(
	fx.Provide(NewClient),
)
