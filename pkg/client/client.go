package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/minerops/launchspec/internal/spec"
	"github.com/minerops/launchspec/internal/store"
)

// Client provides HTTP client functionality to communicate with a launchspec
// registry server.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// Config holds client configuration
type Config struct {
	BaseURL  string
	Timeout  time.Duration
	Logger   *slog.Logger // Optional logger for client operations
	TLS      *TLSClientConfig
	Insecure bool // Skip TLS verification
}

// TLSClientConfig holds TLS configuration for client
type TLSClientConfig struct {
	Enabled    bool   // Enable TLS
	CACert     string // CA certificate file path
	ClientCert string // Client certificate file
	ClientKey  string // Client private key file
	ServerName string // Server name for verification
	SkipVerify bool   // Skip certificate verification
}

// DefaultConfig returns default client configuration
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:8080/api",
		Timeout: 10 * time.Second,
	}
}

// DefaultTLSConfig returns default TLS client configuration
func DefaultTLSConfig() Config {
	return Config{
		BaseURL: "https://localhost:8080/api",
		Timeout: 10 * time.Second,
		TLS: &TLSClientConfig{
			Enabled: true,
		},
	}
}

// InsecureConfig returns insecure client configuration (skip TLS verification)
func InsecureConfig() Config {
	return Config{
		BaseURL:  "https://localhost:8080/api",
		Timeout:  10 * time.Second,
		Insecure: true,
	}
}

// New creates a new registry API client with TLS support
func New(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:8080/api"
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	transport := &http.Transport{}
	if config.TLS != nil && config.TLS.Enabled || config.Insecure {
		tlsConfig, err := setupClientTLS(config)
		if err != nil {
			config.Logger.Error("TLS setup failed", "error", err)
		} else {
			transport.TLSClientConfig = tlsConfig
		}
	}

	return &Client{
		baseURL: config.BaseURL,
		logger:  config.Logger,
		client: &http.Client{
			Timeout:   config.Timeout,
			Transport: transport,
		},
	}
}

// IsReachable checks if the registry server is running and reachable
func (c *Client) IsReachable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/healthz", nil)
	if err != nil {
		c.logger.Debug("Failed to create request for reachability check", "error", err)
		return false
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("Registry unreachable", "error", err)
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	return resp.StatusCode == http.StatusOK
}

// Validate submits a spec for server-side validation without registering it.
// A non-nil *ValidationResult is returned for both valid and invalid specs;
// the error covers transport and server failures only.
func (c *Client) Validate(ctx context.Context, s spec.Spec) (*ValidationResult, error) {
	c.logger.Debug("Validating spec", "name", s.Name)
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal spec: %w", err)
	}
	body, status, err := c.doRequest(ctx, "POST", c.baseURL+"/validate", data)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK, http.StatusUnprocessableEntity:
		var res ValidationResult
		if err := json.Unmarshal(body, &res); err != nil {
			return nil, fmt.Errorf("decode validation result: %w", err)
		}
		return &res, nil
	default:
		return nil, apiError(body, status)
	}
}

// Register creates or updates the named spec in the registry and returns the
// new revision id.
func (c *Client) Register(ctx context.Context, s spec.Spec) (string, error) {
	c.logger.Debug("Registering spec", "name", s.Name, "script", s.Script, "instances", s.Instances)
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshal spec: %w", err)
	}
	body, status, err := c.doRequest(ctx, "POST", c.baseURL+"/specs", data)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", apiError(body, status)
	}
	var res RegisterResult
	if err := json.Unmarshal(body, &res); err != nil {
		return "", fmt.Errorf("decode register result: %w", err)
	}
	c.logger.Debug("Spec registration completed", "name", s.Name, "revision", res.Revision)
	return res.Revision, nil
}

// Get fetches the head record for a named spec.
func (c *Client) Get(ctx context.Context, name string) (*store.Record, error) {
	body, status, err := c.doRequest(ctx, "GET", c.baseURL+"/specs/"+url.PathEscape(name), nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apiError(body, status)
	}
	var rec store.Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return &rec, nil
}

// List fetches all registered specs.
func (c *Client) List(ctx context.Context) ([]store.Record, error) {
	body, status, err := c.doRequest(ctx, "GET", c.baseURL+"/specs", nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apiError(body, status)
	}
	var recs []store.Record
	if err := json.Unmarshal(body, &recs); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return recs, nil
}

// Revisions fetches the revision history for a named spec.
func (c *Client) Revisions(ctx context.Context, name string) ([]store.Revision, error) {
	body, status, err := c.doRequest(ctx, "GET", c.baseURL+"/specs/"+url.PathEscape(name)+"/revisions", nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apiError(body, status)
	}
	var revs []store.Revision
	if err := json.Unmarshal(body, &revs); err != nil {
		return nil, fmt.Errorf("decode revisions: %w", err)
	}
	return revs, nil
}

// Unregister removes the named spec from the registry. Revision history is
// kept server-side.
func (c *Client) Unregister(ctx context.Context, name string) error {
	c.logger.Debug("Unregistering spec", "name", name)
	body, status, err := c.doRequest(ctx, "DELETE", c.baseURL+"/specs/"+url.PathEscape(name), nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return apiError(body, status)
	}
	return nil
}

// Render asks the server to render the named spec into the given supervisor
// config format ("pm2" or "supervisord") and returns the raw document.
func (c *Client) Render(ctx context.Context, name, format string) ([]byte, error) {
	u := c.baseURL + "/specs/" + url.PathEscape(name) + "/render"
	if format != "" {
		u += "?format=" + url.QueryEscape(format)
	}
	body, status, err := c.doRequest(ctx, "GET", u, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apiError(body, status)
	}
	return body, nil
}

// setupClientTLS configures TLS settings for HTTP client
func setupClientTLS(config Config) (*tls.Config, error) {
	tlsConfig := &tls.Config{}

	if config.Insecure {
		tlsConfig.InsecureSkipVerify = true
		return tlsConfig, nil
	}

	if config.TLS != nil {
		if config.TLS.SkipVerify {
			tlsConfig.InsecureSkipVerify = true
		}
		if config.TLS.ServerName != "" {
			tlsConfig.ServerName = config.TLS.ServerName
		}
		if config.TLS.CACert != "" {
			if err := loadCACert(tlsConfig, config.TLS.CACert); err != nil {
				return nil, fmt.Errorf("failed to load CA certificate: %w", err)
			}
		}
		if config.TLS.ClientCert != "" && config.TLS.ClientKey != "" {
			cert, err := tls.LoadX509KeyPair(config.TLS.ClientCert, config.TLS.ClientKey)
			if err != nil {
				return nil, fmt.Errorf("failed to load client certificate: %w", err)
			}
			tlsConfig.Certificates = []tls.Certificate{cert}
		}
	}

	return tlsConfig, nil
}

// loadCACert loads CA certificate from file and adds it to TLS config
func loadCACert(tlsConfig *tls.Config, caCertPath string) error {
	caCert, err := os.ReadFile(caCertPath)
	if err != nil {
		return fmt.Errorf("failed to read CA certificate file: %w", err)
	}

	caCertPool := x509.NewCertPool()
	if !caCertPool.AppendCertsFromPEM(caCert) {
		return fmt.Errorf("failed to parse CA certificate")
	}

	tlsConfig.RootCAs = caCertPool
	return nil
}

// doRequest performs an HTTP request and returns the full body with status.
func (c *Client) doRequest(ctx context.Context, method, url string, body []byte) ([]byte, int, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("HTTP request failed", "error", err, "url", url)
		return nil, 0, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	return data, resp.StatusCode, nil
}

// apiError converts a non-OK response body into an error.
func apiError(body []byte, status int) error {
	var errorResp ErrorResponse
	if err := json.Unmarshal(body, &errorResp); err != nil || errorResp.Error == "" {
		return fmt.Errorf("HTTP %d", status)
	}
	return fmt.Errorf("API error: %s", errorResp.Error)
}
