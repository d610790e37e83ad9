// Package watsonx provides an answer generation adapter for the watsonx.ai
// text generation API.
package watsonx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/verity-labs/askdoc/internal/adapters/driven/ratelimit"
	"github.com/verity-labs/askdoc/internal/core/domain"
	"github.com/verity-labs/askdoc/internal/core/ports/driven"
)

// Ensure Generator implements the interface.
var _ driven.AnswerGenerator = (*Generator)(nil)

// Default configuration values.
const (
	DefaultAPIVersion      = "2024-02-15"
	DefaultGenerationModel = "ibm/granite-3-8b-instruct"
	DefaultMaxNewTokens    = 400
	DefaultTimeout         = 30 * time.Second
)

// systemPrompt instructs the model to answer strictly from the supplied
// passages. The exact refusal sentence matters: the pipeline matches it to
// detect a rejected question.
const systemPrompt = `You are a document question answering assistant. Answer the question using ONLY the context passages below. Do not use any outside knowledge. If the context does not contain the information needed to answer, reply with exactly: ` + domain.InsufficientContextSentinel

// Config holds configuration for the watsonx generation backend.
type Config struct {
	// BaseURL is the watsonx.ai endpoint for the region (required).
	BaseURL string

	// ProjectID is the watsonx project id (required).
	ProjectID string

	// Model is the generation model id (default: granite instruct).
	Model string

	// APIVersion is the API version query parameter.
	APIVersion string

	// MaxNewTokens caps the generated answer length.
	MaxNewTokens int

	// Timeout is the request timeout (default: 30s). A single attempt is
	// made per question; failures hand off to the extractive fallback.
	Timeout time.Duration
}

// Generator produces grounded answers via watsonx.ai.
type Generator struct {
	client       *http.Client
	baseURL      string
	projectID    string
	model        string
	apiVersion   string
	maxNewTokens int
	tokens       driven.TokenProvider
	limiter      *ratelimit.Limiter
}

// generationRequest is the watsonx /ml/v1/text/generation request format.
type generationRequest struct {
	ModelID    string               `json:"model_id"`
	ProjectID  string               `json:"project_id"`
	Input      string               `json:"input"`
	Parameters generationParameters `json:"parameters"`
}

type generationParameters struct {
	DecodingMethod string  `json:"decoding_method"`
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
}

// generationResponse matches the completion-style response schema.
type generationResponse struct {
	Results []struct {
		GeneratedText string `json:"generated_text"`
	} `json:"results"`
}

// chatResponse matches the chat-style response schema some deployments
// return instead.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// New creates a new watsonx answer generator.
func New(cfg Config, tokens driven.TokenProvider) (*Generator, error) {
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
		cfg.Model = DefaultGenerationModel
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.MaxNewTokens == 0 {
		cfg.MaxNewTokens = DefaultMaxNewTokens
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Generator{
		client:       &http.Client{Timeout: cfg.Timeout},
		baseURL:      cfg.BaseURL,
		projectID:    cfg.ProjectID,
		model:        cfg.Model,
		apiVersion:   cfg.APIVersion,
		maxNewTokens: cfg.MaxNewTokens,
		tokens:       tokens,
		limiter:      ratelimit.New(ratelimit.DefaultConfig),
	}, nil
}

// GenerateAnswer asks the model to answer the question from the given
// passages. The returned text is trimmed but otherwise unprocessed; sentinel
// detection and grounding checks belong to the caller.
func (g *Generator) GenerateAnswer(ctx context.Context, question string, passages string) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}

	token, err := g.tokens.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}

	reqBody := generationRequest{
		ModelID:   g.model,
		ProjectID: g.projectID,
		Input:     buildPrompt(question, passages),
		Parameters: generationParameters{
			DecodingMethod: "greedy",
			MaxNewTokens:   g.maxNewTokens,
			Temperature:    0,
		},
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("watsonx: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		g.baseURL+"/ml/v1/text/generation?version="+g.apiVersion,
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return "", fmt.Errorf("watsonx: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %w", domain.ErrGenerationFailed, err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		g.limiter.RecordRateLimitError(retryAfter)
		return "", fmt.Errorf("%w: rate limited", domain.ErrGenerationFailed)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", domain.ErrGenerationFailed, resp.StatusCode, string(body))
	}

	text, err := decodeAnswer(body)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}
	return strings.TrimSpace(text), nil
}

// ModelName returns the name of the generation model being used.
func (g *Generator) ModelName() string {
	return g.model
}

// decodeAnswer extracts the generated text, accepting both the
// completion-style and the chat-style response schemas before giving up.
func decodeAnswer(body []byte) (string, error) {
	var gr generationResponse
	if err := json.Unmarshal(body, &gr); err == nil && len(gr.Results) > 0 {
		return gr.Results[0].GeneratedText, nil
	}

	var cr chatResponse
	if err := json.Unmarshal(body, &cr); err == nil && len(cr.Choices) > 0 {
		return cr.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("unrecognised response schema")
}

func buildPrompt(question, passages string) string {
	var b strings.Builder
	b.WriteString(systemPrompt)
	b.WriteString("\n\nContext:\n")
	b.WriteString(passages)
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\n\nAnswer:")
	return b.String()
}
