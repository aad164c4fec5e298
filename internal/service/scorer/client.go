package scorer

import (
	"context"
	"fmt"
	"strings"

	"PricePulse/internal/domain/models"
	"PricePulse/pkg/config"
	xhttp "PricePulse/pkg/http"
)

// Client calls the remote scoring service over HTTP. Every call carries
// the configured timeout; callers treat any error as a signal to fall
// back to the local formula.
type Client struct {
	baseURL      string
	client       *xhttp.Client
	healthClient *xhttp.Client
}

// NewClient builds a scoring client from config. Returns nil when no
// endpoint is configured so wiring can skip the remote path entirely.
func NewClient(cfg config.ScorerConfig) *Client {
	if cfg.URL == "" {
		return nil
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.URL, "/"),
		client:       xhttp.NewClient(xhttp.WithTimeout(cfg.Timeout)),
		healthClient: xhttp.NewClient(xhttp.WithTimeout(cfg.HealthTimeout)),
	}
}

// Score posts the pricing inputs and decodes the recommendation.
func (c *Client) Score(ctx context.Context, req *models.ScoreRequest) (*models.ScoreResponse, error) {
	var resp models.ScoreResponse
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    c.baseURL + "/score",
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body: req,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("score request: %w", err)
	}
	return &resp, nil
}

// Health probes the scoring service liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	err := c.healthClient.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/health",
	}, nil)
	if err != nil {
		return fmt.Errorf("scorer health: %w", err)
	}
	return nil
}
