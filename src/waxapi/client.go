// Package waxapi is the HTTP client for the WAX lint service.
package waxapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sofmeright/waxlint/src/config"
	"github.com/sofmeright/waxlint/src/lint"
)

// Client posts normalized markup to the lint service.
type Client struct {
	Endpoint string
	Key      string
	Auth     config.AuthMode
	Rules    []string

	http *http.Client
}

// request is the JSON body of a lint call.
type request struct {
	Element  string    `json:"element"`
	IsLinter bool      `json:"isLinter"`
	Rules    *[]string `json:"rules,omitempty"`
}

// New creates a client from the API config. The key is used as given;
// an empty key is sent as is.
func New(cfg config.APIConfig, key string) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30
	}
	return &Client{
		Endpoint: cfg.Endpoint,
		Key:      key,
		Auth:     cfg.Auth,
		Rules:    cfg.Rules,
		http:     &http.Client{Timeout: time.Duration(timeout) * time.Second},
	}
}

// Scope identifies everything besides the markup that shapes a response.
// It keys cached results.
func (c *Client) Scope() string {
	rules, _ := json.Marshal(c.Rules)
	return fmt.Sprintf("%s|%s|%s", c.Endpoint, c.Auth, rules)
}

// Lint implements lint.Linter. It makes a single attempt; every failure is
// returned as *lint.RequestError.
func (c *Client) Lint(ctx context.Context, markup string) ([]lint.Finding, error) {
	body, err := c.encode(markup)
	if err != nil {
		return nil, &lint.RequestError{Kind: lint.KindTransport, Err: fmt.Errorf("encoding request: %w", err)}
	}

	target, err := c.target()
	if err != nil {
		return nil, &lint.RequestError{Kind: lint.KindTransport, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return nil, &lint.RequestError{Kind: lint.KindTransport, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Auth != config.AuthQuery {
		req.Header.Set("Authorization", c.Key)
	}

	httpClient := c.http
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, &lint.RequestError{Kind: lint.KindTransport, Err: fmt.Errorf("POST %s: %w", c.Endpoint, err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &lint.RequestError{Kind: lint.KindTransport, StatusCode: resp.StatusCode, Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &lint.RequestError{
			Kind:       lint.KindTransport,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("POST %s: %d %s", c.Endpoint, resp.StatusCode, truncateBody(respBody, 512)),
		}
	}

	findings, err := decodeFindings(respBody)
	if err != nil {
		return nil, &lint.RequestError{
			Kind:       lint.KindMalformedResponse,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("decoding response: %w", err),
		}
	}
	return findings, nil
}

// decodeFindings accepts only a JSON array; null and other values are
// malformed.
func decodeFindings(body []byte) ([]lint.Finding, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 || raw[0] != '[' {
		return nil, fmt.Errorf("expected a JSON array, got %s", truncateBody(raw, 64))
	}
	findings := []lint.Finding{}
	if err := json.Unmarshal(raw, &findings); err != nil {
		return nil, err
	}
	return findings, nil
}

// encode builds the request body. HTML escaping is off so tags reach the
// service verbatim.
func (c *Client) encode(markup string) ([]byte, error) {
	r := request{Element: markup, IsLinter: true}
	if c.Auth != config.AuthQuery {
		rules := c.Rules
		if rules == nil {
			rules = []string{}
		}
		r.Rules = &rules
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// target returns the endpoint, with the apikey query parameter in query mode.
func (c *Client) target() (string, error) {
	if c.Auth != config.AuthQuery {
		return c.Endpoint, nil
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return "", fmt.Errorf("parsing endpoint: %w", err)
	}
	q := u.Query()
	q.Set("apikey", c.Key)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func truncateBody(b []byte, max int) string {
	if len(b) <= max {
		return string(b)
	}
	return string(b[:max]) + "..."
}
