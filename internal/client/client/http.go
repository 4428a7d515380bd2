package client

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

	"github.com/dmitrijs2005/taskkeeper/internal/common"
)

const DefaultTimeout = 5 * time.Second

// Endpoints holds the request paths relative to the base URL.
type Endpoints struct {
	Health   string
	Register string
	Login    string
	Users    string
}

// DefaultEndpoints are the paths served by the task service.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Health:   "/api/health",
		Register: "/api/register",
		Login:    "/api/login",
		Users:    "/api/users",
	}
}

// HTTPClientConfig configures HTTPClient.
type HTTPClientConfig struct {
	BaseURL   string
	Endpoints Endpoints
	// Timeout bounds every request, including reading the body.
	Timeout time.Duration
}

// HTTPClient implements Client over HTTP/JSON.
type HTTPClient struct {
	httpClient *http.Client
	cfg        HTTPClientConfig
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a client for cfg. If httpClient is nil,
// http.DefaultClient is used. Empty endpoint paths fall back to defaults.
func NewHTTPClient(cfg HTTPClientConfig, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	def := DefaultEndpoints()
	if cfg.Endpoints.Health == "" {
		cfg.Endpoints.Health = def.Health
	}
	if cfg.Endpoints.Register == "" {
		cfg.Endpoints.Register = def.Register
	}
	if cfg.Endpoints.Login == "" {
		cfg.Endpoints.Login = def.Login
	}
	if cfg.Endpoints.Users == "" {
		cfg.Endpoints.Users = def.Users
	}

	return &HTTPClient{httpClient: httpClient, cfg: cfg}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (c *HTTPClient) Register(ctx context.Context, email, password string) (*AuthResponse, error) {
	return c.postCredentials(ctx, c.cfg.Endpoints.Register, email, password)
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	return c.postCredentials(ctx, c.cfg.Endpoints.Login, email, password)
}

func (c *HTTPClient) postCredentials(ctx context.Context, path, email, password string) (*AuthResponse, error) {
	body, err := json.Marshal(credentialsRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, c.cfg.Endpoints.Health, nil, nil)
}

func (c *HTTPClient) ProbeRoot(ctx context.Context) error {
	err := c.do(ctx, http.MethodGet, "/", nil, nil)

	var re *RemoteError
	if errors.As(err, &re) && re.StatusCode == http.StatusNotFound {
		return nil
	}
	return err
}

func (c *HTTPClient) ListUsers(ctx context.Context) ([]RemoteUser, error) {
	var out struct {
		Users []RemoteUser `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, c.cfg.Endpoints.Users, nil, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

// Close releases idle connections.
func (c *HTTPClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// do performs one bounded request. A nil out discards the body.
func (c *HTTPClient) do(ctx context.Context, method, path string, body []byte, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, rd)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	if body != nil {
		req.Header.Set(common.HeaderContentType, common.ContentTypeJSON)
	}
	req.Header.Set("Accept", common.ContentTypeJSON)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		re := &RemoteError{StatusCode: resp.StatusCode}
		var er errorResponse
		if json.Unmarshal(raw, &er) == nil {
			re.Message = er.Message
		}
		return re
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrRejected, err)
	}
	return nil
}
