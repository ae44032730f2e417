// ABOUTME: HTTP transport for the generation collaborator using a JSON request/response contract
// ABOUTME: Maps transport errors, non-2xx statuses, rate limits and empty images to generation errors

package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/2389/fitcheck-studio/internal/config"
	"github.com/2389/fitcheck-studio/internal/faults"
	"github.com/2389/fitcheck-studio/internal/scene"
)

// ErrQuota marks a rate-limited generation request.
var ErrQuota = errors.New("generation quota exceeded")

// ErrNoImage marks a response that carried no image.
var ErrNoImage = errors.New("response contained no image")

// APIRequest is the JSON body posted to the generation endpoint.
type APIRequest struct {
	Model     string         `json:"model"`
	Operation Operation      `json:"operation"`
	Prompt    string         `json:"prompt"`
	Images    []Image        `json:"images"`
	Settings  scene.Settings `json:"settings"`
}

// APIResponse is the JSON body returned by the generation endpoint.
// Text explains a refusal when Image is absent.
type APIResponse struct {
	Image *Image `json:"image,omitempty"`
	Text  string `json:"text,omitempty"`
}

// maxResponseBytes bounds the response body read from the endpoint.
const maxResponseBytes = 64 << 20

// HTTPGenerator calls a generation endpoint over HTTP.
type HTTPGenerator struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
	logger   *slog.Logger
}

// NewHTTPGenerator creates a generator from configuration.
func NewHTTPGenerator(cfg config.GenerationConfig, logger *slog.Logger) (*HTTPGenerator, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("generation.endpoint is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &HTTPGenerator{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		client:   &http.Client{Timeout: timeout},
		logger:   logger.With("component", "generation"),
	}, nil
}

// Generate posts req and returns the image as a data URL.
func (g *HTTPGenerator) Generate(ctx context.Context, req *Request) (string, error) {
	op := "generate " + string(req.Operation)

	body, err := json.Marshal(APIRequest{
		Model:     g.model,
		Operation: req.Operation,
		Prompt:    req.Prompt,
		Images:    req.Images,
		Settings:  req.Settings,
	})
	if err != nil {
		return "", faults.Generation(op, fmt.Errorf("encoding request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", faults.Generation(op, fmt.Errorf("creating request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	g.logger.Debug("sending generation request", "operation", req.Operation, "images", len(req.Images), "bytes", len(body))

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", faults.Generation(op, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", faults.Generation(op, fmt.Errorf("reading response: %w", err))
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", faults.Generation(op, ErrQuota)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", faults.Generation(op, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(string(respBody), 200)))
	}

	var out APIResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", faults.Generation(op, fmt.Errorf("decoding response: %w", err))
	}
	if out.Image == nil || out.Image.Data == "" {
		if out.Text != "" {
			return "", faults.Generation(op, fmt.Errorf("%w: %s", ErrNoImage, out.Text))
		}
		return "", faults.Generation(op, ErrNoImage)
	}
	if out.Image.MimeType == "" {
		out.Image.MimeType = DefaultMimeType
	}

	return out.Image.DataURL(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
