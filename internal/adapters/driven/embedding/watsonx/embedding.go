// Package watsonx provides an embedding service adapter for the watsonx.ai
// text embeddings API.
package watsonx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/verity-labs/askdoc/internal/adapters/driven/ratelimit"
	"github.com/verity-labs/askdoc/internal/core/domain"
	"github.com/verity-labs/askdoc/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultAPIVersion     = "2024-02-15"
	DefaultEmbeddingModel = "ibm/granite-embedding-107m-multilingual"
	DefaultTimeout        = 15 * time.Second
)

// Config holds configuration for the watsonx embedding service.
type Config struct {
	// BaseURL is the watsonx.ai endpoint for the region (required).
	BaseURL string

	// ProjectID is the watsonx project id (required).
	ProjectID string

	// Model is the embedding model id (default: granite embedding).
	Model string

	// APIVersion is the API version query parameter.
	APIVersion string

	// Timeout is the request timeout (default: 15s). Calls are never
	// retried; a failure degrades ingestion or retrieval one level instead.
	Timeout time.Duration
}

// EmbeddingService generates embeddings via watsonx.ai.
type EmbeddingService struct {
	client     *http.Client
	baseURL    string
	projectID  string
	model      string
	apiVersion string
	tokens     driven.TokenProvider
	limiter    *ratelimit.Limiter
}

// embeddingRequest is the watsonx /ml/v1/text/embeddings request format.
type embeddingRequest struct {
	ModelID   string   `json:"model_id"`
	ProjectID string   `json:"project_id"`
	Inputs    []string `json:"inputs"`
}

// embeddingResponse is the watsonx /ml/v1/text/embeddings response format.
type embeddingResponse struct {
	Results []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"results"`
}

// New creates a new watsonx embedding service.
func New(cfg Config, tokens driven.TokenProvider) (*EmbeddingService, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("watsonx: base URL is required")
	}
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("watsonx: project id is required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("watsonx: token provider is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultEmbeddingModel
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &EmbeddingService{
		client:     &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		projectID:  cfg.ProjectID,
		model:      cfg.Model,
		apiVersion: cfg.APIVersion,
		tokens:     tokens,
		limiter:    ratelimit.New(ratelimit.DefaultConfig),
	}, nil
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch generates embeddings for multiple texts in one request.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}

	token, err := s.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}

	reqBody := embeddingRequest{
		ModelID:   s.model,
		ProjectID: s.projectID,
		Inputs:    texts,
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("watsonx: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/ml/v1/text/embeddings?version="+s.apiVersion,
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("watsonx: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", domain.ErrEmbeddingUnavailable, err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		s.limiter.RecordRateLimitError(retryAfter)
		return nil, fmt.Errorf("%w: rate limited", domain.ErrEmbeddingUnavailable)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrEmbeddingUnavailable, resp.StatusCode, string(body))
	}

	var er embeddingResponse
	if err := json.Unmarshal(body, &er); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if len(er.Results) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d", domain.ErrEmbeddingUnavailable, len(texts), len(er.Results))
	}

	vectors := make([][]float32, len(er.Results))
	for i, r := range er.Results {
		vectors[i] = r.Embedding
	}
	return vectors, nil
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping validates the service is reachable by embedding a short probe text.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	_, err := s.Embed(ctx, "ping")
	return err
}
