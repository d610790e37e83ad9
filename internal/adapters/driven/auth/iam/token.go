// Package iam exchanges an API key for a short-lived bearer token via an IAM
// identity endpoint, caching the token until near expiry. Both the embedding
// and the generation backends authenticate through this provider.
package iam

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/verity-labs/askdoc/internal/core/ports/driven"
)

// Default configuration values.
const (
	DefaultTokenURL = "https://iam.cloud.ibm.com/identity/token"
	DefaultTimeout  = 20 * time.Second

	// grantType is the IAM apikey exchange grant.
	grantType = "urn:ibm:params:oauth:grant-type:apikey"

	// expirySlack refreshes tokens this long before they actually expire.
	expirySlack = 60 * time.Second
)

// Ensure TokenProvider implements the interface.
var _ driven.TokenProvider = (*TokenProvider)(nil)

// Config holds configuration for the IAM token provider.
type Config struct {
	// APIKey is the service API key (required).
	APIKey string

	// TokenURL is the identity token endpoint (default: the public IAM
	// endpoint).
	TokenURL string

	// Timeout is the request timeout (default: 20s).
	Timeout time.Duration
}

// TokenProvider caches and refreshes IAM bearer tokens.
type TokenProvider struct {
	client   *http.Client
	tokenURL string
	apiKey   string

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// tokenResponse is the IAM token endpoint response format.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// New creates a new IAM token provider.
func New(cfg Config) (*TokenProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("iam: API key is required")
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &TokenProvider{
		client:   &http.Client{Timeout: cfg.Timeout},
		tokenURL: cfg.TokenURL,
		apiKey:   cfg.APIKey,
	}, nil
}

// Token returns a valid access token, exchanging the API key when the cached
// token is missing or close to expiry.
func (p *TokenProvider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != "" && time.Now().Before(p.expiresAt.Add(-expirySlack)) {
		return p.token, nil
	}

	form := url.Values{}
	form.Set("apikey", p.apiKey)
	form.Set("grant_type", grantType)

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		p.tokenURL,
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return "", fmt.Errorf("iam: create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("iam: token exchange failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("iam: read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("iam: token endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", fmt.Errorf("iam: decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("iam: token response contained no access token")
	}

	p.token = tr.AccessToken
	p.expiresAt = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	return p.token, nil
}
