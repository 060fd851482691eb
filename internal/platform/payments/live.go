package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/roadfile/compliance/pkg/types"
)

// LiveGateway talks to the card processor's REST API.
type LiveGateway struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *zap.SugaredLogger
}

func NewLiveGateway(baseURL, apiKey string, log *zap.SugaredLogger) *LiveGateway {
	return &LiveGateway{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

type chargePayload struct {
	Customer string `json:"customer"`
	Source   string `json:"source"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Memo     string `json:"description"`
}

type chargeResponse struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	FailureReason string `json:"failure_message"`
}

func (g *LiveGateway) Charge(ctx context.Context, req *types.ChargeRequest) (*types.ChargeResult, error) {
	url := fmt.Sprintf("%s/v1/charges", g.baseURL)

	body, err := json.Marshal(chargePayload{
		Customer: req.CustomerRef,
		Source:   req.CardRef,
		Amount:   req.AmountCents,
		Currency: "usd",
		Memo:     req.Memo,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal charge payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build charge request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	httpReq.Header.Set("Idempotency-Key", req.IdempotencyKey)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("charge request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read charge response: %w", err)
	}

	var out chargeResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode charge response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode >= 300 || out.Status != "succeeded" {
		reason := out.FailureReason
		if reason == "" {
			reason = fmt.Sprintf("gateway returned status %d", resp.StatusCode)
		}
		g.log.Warnw("charge declined", "customer", req.CustomerRef, "amount", req.AmountCents, "reason", reason)
		return &types.ChargeResult{Success: false, FailureReason: reason}, nil
	}

	return &types.ChargeResult{Success: true, PaymentRef: out.ID}, nil
}
