// Package identity implements the identity.Provider port against the
// development identity endpoints. Credentials live server-side; the provider
// only holds the issued token and the profile claims baked into it.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	domainid "github.com/lodgely/bookingkit/internal/domain/identity"
	"github.com/lodgely/bookingkit/internal/domain/shared"
)

const maxResponseSize = 1 * 1024 * 1024

// Config holds provider settings
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Claims is the token payload the identity endpoints issue. The profile
// travels inside the token so the provider never needs a separate lookup.
type Claims struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL"`
	jwt.RegisteredClaims
}

// Provider implements domainid.Provider over HTTP
type Provider struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger

	mu    sync.Mutex
	token string
}

// NewProvider creates a provider against the given identity base URL
func NewProvider(cfg Config, logger *zap.Logger) (*Provider, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("identity base URL is required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Provider{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.Named("identity"),
	}, nil
}

type credentialsRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName,omitempty"`
}

type profileRequest struct {
	DisplayName *string `json:"displayName,omitempty"`
	PhotoURL    *string `json:"photoURL,omitempty"`
}

type tokenResponse struct {
	Token   string `json:"token"`
	Message string `json:"message,omitempty"`
}

// SignUp registers a new account. Failures come back as ERR_CREDENTIAL with
// the server's message.
func (p *Provider) SignUp(ctx context.Context, email, password string) (domainid.User, error) {
	return p.authenticate(ctx, "/auth/register", shared.ErrCodeCredential, credentialsRequest{
		Email:    email,
		Password: password,
	})
}

// SignIn authenticates an existing account. Failures come back as ERR_AUTH
// with the server's message.
func (p *Provider) SignIn(ctx context.Context, email, password string) (domainid.User, error) {
	return p.authenticate(ctx, "/auth/login", shared.ErrCodeAuth, credentialsRequest{
		Email:    email,
		Password: password,
	})
}

// SignOut drops the held token. The token is bearer-only, so forgetting it
// ends the session; no server call is needed.
func (p *Provider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	p.token = ""
	p.mu.Unlock()
	return nil
}

// UpdateProfile sends the patch and adopts the re-issued token
func (p *Provider) UpdateProfile(ctx context.Context, patch domainid.ProfilePatch) (domainid.User, error) {
	p.mu.Lock()
	token := p.token
	p.mu.Unlock()
	if token == "" {
		return domainid.User{}, shared.ErrAuthRequired
	}

	resp, err := p.post(ctx, "/auth/profile", profileRequest{
		DisplayName: patch.DisplayName,
		PhotoURL:    patch.PhotoURL,
	}, token)
	if err != nil {
		return domainid.User{}, err
	}
	if resp.statusCode >= 400 {
		return domainid.User{}, shared.NewDomainError(shared.ErrCodeAuth, resp.message())
	}
	return p.adoptToken(resp.body.Token)
}

func (p *Provider) authenticate(ctx context.Context, path, failureCode string, payload credentialsRequest) (domainid.User, error) {
	resp, err := p.post(ctx, path, payload, "")
	if err != nil {
		return domainid.User{}, err
	}
	if resp.statusCode >= 400 {
		return domainid.User{}, shared.NewDomainError(failureCode, resp.message())
	}
	return p.adoptToken(resp.body.Token)
}

// adoptToken stores the token and rebuilds the user copy from its claims.
// The signature is the server's concern; the client reads claims as-is.
func (p *Provider) adoptToken(token string) (domainid.User, error) {
	if token == "" {
		return domainid.User{}, shared.NewDomainError(shared.ErrCodeAuth, "identity service returned no token")
	}
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return domainid.User{}, shared.NewDomainError(shared.ErrCodeAuth, "identity service returned a malformed token")
	}
	user, err := domainid.NewUser(claims.Email, claims.DisplayName, claims.PhotoURL)
	if err != nil {
		return domainid.User{}, err
	}

	p.mu.Lock()
	p.token = token
	p.mu.Unlock()
	return user, nil
}

type providerResponse struct {
	statusCode int
	status     string
	body       tokenResponse
}

func (r providerResponse) message() string {
	if r.body.Message != "" {
		return r.body.Message
	}
	return r.status
}

func (p *Provider) post(ctx context.Context, path string, payload any, bearer string) (providerResponse, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return providerResponse{}, fmt.Errorf("failed to encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return providerResponse{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.logger.Warn("identity request failed", zap.String("path", path), zap.Error(err))
		return providerResponse{}, shared.WrapNetworkError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return providerResponse{}, shared.WrapNetworkError(err)
	}
	if resp.StatusCode >= 500 {
		return providerResponse{}, shared.WrapNetworkError(fmt.Errorf("identity service error: %s", resp.Status))
	}

	out := providerResponse{statusCode: resp.StatusCode, status: resp.Status}
	if len(raw) > 0 {
		// A decode failure here only costs the server-authored message.
		_ = json.Unmarshal(raw, &out.body)
	}
	return out, nil
}
