package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopforge/backend/internal/domain/ai"
	"github.com/shopforge/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ErrUnhealthy is returned by Health when the service reports a non-healthy status
var ErrUnhealthy = errors.New("predictor service is unhealthy")

// Client calls the external demand prediction service
type Client struct {
	baseURL    string
	token      string
	batchSize  int
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a predictor client
func NewClient(cfg config.PredictorConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 50
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		batchSize:  batchSize,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.Named("predictor"),
	}
}

type batchRow struct {
	ProductID string             `json:"productId"`
	StoreID   string             `json:"storeId"`
	Features  map[string]float64 `json:"features"`
}

type batchRequest struct {
	Rows []batchRow `json:"rows"`
}

type batchResult struct {
	Index           int      `json:"index"`
	Score           *float64 `json:"score"`
	Label           string   `json:"label"`
	ForecastP50     *float64 `json:"forecast_p50"`
	ForecastP90     *float64 `json:"forecast_p90"`
	ModelConfidence *float64 `json:"model_confidence"`
	Error           string   `json:"error"`
}

type batchResponse struct {
	Results        []batchResult `json:"results"`
	ModelVersion   string        `json:"modelVersion"`
	ProcessedCount int           `json:"processedCount"`
}

type healthResponse struct {
	Status       string `json:"status"`
	ModelType    string `json:"modelType"`
	ModelVersion string `json:"modelVersion"`
}

// PredictBatch scores rows in chunks of the configured batch size.
// A failed chunk or row is logged and skipped; the error is returned only
// when every chunk failed.
func (c *Client) PredictBatch(ctx context.Context, rows []ai.PredictionRow) ([]ai.Prediction, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	out := make([]ai.Prediction, 0, len(rows))
	var lastErr error
	failedChunks, chunks := 0, 0

	for start := 0; start < len(rows); start += c.batchSize {
		end := min(start+c.batchSize, len(rows))
		chunk := rows[start:end]
		chunks++

		preds, err := c.predictChunk(ctx, chunk)
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			failedChunks++
			lastErr = err
			c.logger.Error("Prediction chunk failed",
				zap.Int("offset", start),
				zap.Int("size", len(chunk)),
				zap.Error(err))
			continue
		}
		out = append(out, preds...)
	}

	if failedChunks == chunks {
		return nil, fmt.Errorf("all %d prediction chunks failed: %w", chunks, lastErr)
	}
	return out, nil
}

func (c *Client) predictChunk(ctx context.Context, chunk []ai.PredictionRow) ([]ai.Prediction, error) {
	req := batchRequest{Rows: make([]batchRow, len(chunk))}
	for i, r := range chunk {
		req.Rows[i] = batchRow{
			ProductID: r.ProductID.String(),
			StoreID:   r.StoreID.String(),
			Features:  r.Features,
		}
	}

	var resp batchResponse
	if err := c.do(ctx, http.MethodPost, "/predict_batch", req, &resp); err != nil {
		return nil, err
	}

	preds := make([]ai.Prediction, 0, len(resp.Results))
	for _, res := range resp.Results {
		if res.Index < 0 || res.Index >= len(chunk) {
			c.logger.Warn("Prediction result index out of range", zap.Int("index", res.Index))
			continue
		}
		row := chunk[res.Index]
		if res.Error != "" || res.Score == nil {
			c.logger.Warn("Prediction row failed",
				zap.String("product_id", row.ProductID.String()),
				zap.String("error", res.Error))
			continue
		}
		score := ai.ClampScore(*res.Score)
		preds = append(preds, ai.Prediction{
			ProductID:       row.ProductID,
			StoreID:         row.StoreID,
			Score:           score,
			Label:           ai.LabelFor(score),
			ForecastP50:     res.ForecastP50,
			ForecastP90:     res.ForecastP90,
			ModelConfidence: res.ModelConfidence,
			ModelVersion:    resp.ModelVersion,
		})
	}
	return preds, nil
}

// Health checks GET /health
func (c *Client) Health(ctx context.Context) error {
	var resp healthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return err
	}
	if resp.Status != "healthy" && resp.Status != "ok" {
		return fmt.Errorf("%w: status %q", ErrUnhealthy, resp.Status)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("X-Internal-Token", c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("predictor %s %s: %s - %s", method, path, resp.Status, strings.TrimSpace(string(msg)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Disabled is used when the predictor is switched off
type Disabled struct{}

// ErrDisabled is returned by every Disabled call
var ErrDisabled = errors.New("predictor is disabled")

func (Disabled) PredictBatch(context.Context, []ai.PredictionRow) ([]ai.Prediction, error) {
	return nil, ErrDisabled
}

func (Disabled) Health(context.Context) error { return ErrDisabled }

// New returns the HTTP client when enabled, otherwise Disabled
func New(cfg config.PredictorConfig, logger *zap.Logger) ai.Predictor {
	if !cfg.Enabled {
		return Disabled{}
	}
	return NewClient(cfg, logger)
}

var (
	_ ai.Predictor = (*Client)(nil)
	_ ai.Predictor = Disabled{}
)
