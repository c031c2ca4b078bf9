package imaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/shared"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// maxRemoveBgResponse caps how much of the provider response is read
const maxRemoveBgResponse = 64 << 20

// BackgroundRemover sends images to a remove.bg compatible API
type BackgroundRemover struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewBackgroundRemover creates a BackgroundRemover.
// ratePerMin limits outgoing calls; zero or less disables limiting.
func NewBackgroundRemover(endpoint, apiKey string, timeout time.Duration, ratePerMin int, logger *zap.Logger) (*BackgroundRemover, error) {
	if endpoint == "" {
		return nil, errors.New("background removal endpoint is required")
	}
	if apiKey == "" {
		return nil, errors.New("background removal API key is required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if ratePerMin > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(ratePerMin)), 1)
	}

	return &BackgroundRemover{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
		logger:     logger,
	}, nil
}

// Remove returns data with the background removed, always as PNG
func (r *BackgroundRemover) Remove(ctx context.Context, data []byte, filename string) ([]byte, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrExternalService, err)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if filename == "" {
		filename = "upload"
	}
	part, err := writer.CreateFormFile("image_file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	_ = writer.WriteField("size", "auto")
	_ = writer.WriteField("format", "png")
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-Api-Key", r.apiKey)
	req.Header.Set("Accept", "image/png")

	start := time.Now()
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: background removal request failed: %v", shared.ErrExternalService, err)
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoveBgResponse))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read background removal response: %v", shared.ErrExternalService, err)
	}

	r.logger.Debug("Background removal finished",
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
		zap.Int("bytes", len(out)),
	)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: background removal returned status %d", shared.ErrExternalService, resp.StatusCode)
	}
	if !IsPNG(out) {
		return nil, fmt.Errorf("%w: background removal returned a non-PNG body", shared.ErrExternalService)
	}
	return out, nil
}
