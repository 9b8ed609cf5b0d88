// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jeranaias/authfront/internal/auth"
	"github.com/jeranaias/authfront/internal/logging"
)

// =============================================================================
// CONFIGURATION
// =============================================================================

// HTTPConfig configures the HTTP backend.
type HTTPConfig struct {
	// BaseURL is the service root, e.g. https://auth.example.com/api/v1
	BaseURL string

	// Timeout bounds each request (default: 15s)
	Timeout time.Duration

	// MaxResponseBytes caps response bodies (default: 64 KiB)
	MaxResponseBytes int64

	// UserAgent is sent with every request
	UserAgent string
}

const (
	defaultTimeout          = 15 * time.Second
	defaultMaxResponseBytes = 64 * 1024

	// RequestIDHeader carries a per-request correlation ID.
	RequestIDHeader = "X-Request-ID"

	codeUnsupportedProvider = "unsupported_provider"
)

// =============================================================================
// CLIENT
// =============================================================================

// HTTPClient is an auth.Backend talking JSON over HTTP.
// It is safe for concurrent use.
type HTTPClient struct {
	base       *url.URL
	config     HTTPConfig
	httpClient *http.Client
	log        *zap.Logger
}

var _ auth.Backend = (*HTTPClient)(nil)

// NewHTTPClient validates cfg and builds a client.
func NewHTTPClient(cfg HTTPConfig, log *zap.Logger) (*HTTPClient, error) {
	if log == nil {
		log = logging.Nop()
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("backend: base URL is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("backend: invalid base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("backend: base URL must be http or https, got %q", base.Scheme)
	}
	if base.Host == "" {
		return nil, errors.New("backend: base URL has no host")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxResponseBytes <= 0 {
		cfg.MaxResponseBytes = defaultMaxResponseBytes
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "authfront"
	}

	return &HTTPClient{
		base:       base,
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log.Named("backend.http"),
	}, nil
}

// =============================================================================
// WIRE TYPES
// =============================================================================

type setupRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	CompanyName string `json:"companyName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

type setupResponse struct {
	Message string `json:"message"`
}

type loginResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
	User  *struct {
		Email string `json:"email"`
	} `json:"user,omitempty"`
}

type errorResponse struct {
	Code    string `json:"error"`
	Message string `json:"message"`
}

// =============================================================================
// OPERATIONS
// =============================================================================

// SetupCustomer implements auth.Backend.
func (c *HTTPClient) SetupCustomer(ctx context.Context, in auth.SetupInput) (auth.SetupResult, error) {
	body := setupRequest{
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		CompanyName: in.CompanyName,
		Email:       in.Email,
		Password:    in.Password,
	}
	var out setupResponse
	if err := c.post(ctx, "/customers", body, &out); err != nil {
		return auth.SetupResult{}, err
	}
	return auth.SetupResult{Message: out.Message}, nil
}

// Login implements auth.Backend.
func (c *HTTPClient) Login(ctx context.Context, in auth.LoginInput) (auth.LoginResult, error) {
	var out loginResponse
	if err := c.post(ctx, "/sessions", in, &out); err != nil {
		return auth.LoginResult{}, err
	}
	return out.result()
}

// LoginWithProvider implements auth.Backend. Unknown providers are rejected
// without a request.
func (c *HTTPClient) LoginWithProvider(ctx context.Context, p auth.Provider) (auth.LoginResult, error) {
	if !p.IsFederated() {
		return auth.LoginResult{}, auth.NewUnsupportedProvider(p.String())
	}
	var out loginResponse
	if err := c.post(ctx, "/sessions/"+p.String(), struct{}{}, &out); err != nil {
		return auth.LoginResult{}, err
	}
	return out.result()
}

func (r loginResponse) result() (auth.LoginResult, error) {
	email := r.Email
	if email == "" && r.User != nil {
		email = r.User.Email
	}
	if r.Token == "" || email == "" {
		return auth.LoginResult{}, auth.NewTransport("invalid response from server", errors.New("missing token or email"))
	}
	return auth.LoginResult{Token: r.Token, Email: email}, nil
}

// =============================================================================
// TRANSPORT
// =============================================================================

func (c *HTTPClient) post(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return &auth.Error{Kind: auth.KindUnknown, Message: "failed to marshal request", Cause: err}
	}

	endpoint := c.base.JoinPath(path).String()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return auth.NewTransport("failed to create request", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set(RequestIDHeader, requestID)

	log := c.log.With(zap.String("path", path), zap.String("request_id", requestID))
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("BACKEND_UNREACHABLE", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return auth.NewTransport("request timed out", err)
		}
		return auth.NewTransport("service unreachable", err)
	}
	defer drainAndClose(resp.Body)

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.config.MaxResponseBytes+1))
	if err != nil {
		return auth.NewTransport("failed to read response", err)
	}
	if int64(len(data)) > c.config.MaxResponseBytes {
		log.Error("BACKEND_RESPONSE_TOO_LARGE", zap.Int("status", resp.StatusCode))
		return auth.NewTransport("response too large", nil)
	}

	log.Debug("BACKEND_RESPONSE", zap.Int("status", resp.StatusCode), zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if err := json.Unmarshal(data, out); err != nil {
			return auth.NewTransport("invalid response from server", err)
		}
		return nil
	}

	apiErr := statusError(resp.StatusCode, data)
	if apiErr.Kind == auth.KindTransport {
		log.Error("BACKEND_FAILED", zap.Int("status", resp.StatusCode))
	} else {
		log.Warn("BACKEND_REJECTED", zap.Int("status", resp.StatusCode), zap.String("kind", apiErr.Kind.String()))
	}
	return apiErr
}

// statusError maps a non-2xx response onto the auth error taxonomy.
func statusError(status int, body []byte) *auth.Error {
	var e errorResponse
	_ = json.Unmarshal(body, &e)

	if e.Code == codeUnsupportedProvider {
		return &auth.Error{Kind: auth.KindUnsupportedProvider, Message: e.Message}
	}

	switch {
	case status == http.StatusConflict:
		return auth.NewCredentialConflict(e.Message)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return auth.NewInvalidCredentials(e.Message)
	case status >= 500:
		return auth.NewTransport(e.Message, fmt.Errorf("server returned %d", status))
	default:
		return &auth.Error{Kind: auth.KindUnknown, Message: e.Message, Cause: fmt.Errorf("server returned %d", status)}
	}
}

func drainAndClose(r io.ReadCloser) {
	_, _ = io.Copy(io.Discard, r)
	r.Close()
}
