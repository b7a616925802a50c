// Package documents talks to the external document service that renders
// compliant XRechnung/ZUGFeRD payloads, validates them, and delivers
// mail. The engine never generates these documents itself.
package documents

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rezonia/rechnung/internal/model"
	"github.com/rezonia/rechnung/internal/store"
)

// DefaultTimeout bounds a single render or delivery request.
const DefaultTimeout = 30 * time.Second

// Client implements store.DocumentService against an HTTP renderer.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ store.DocumentService = (*Client)(nil)

// Option configures the client
type Option func(*Client)

// WithTimeout sets a custom HTTP timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a document service client for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RenderXML returns the XRechnung XML for a finalized invoice.
func (c *Client) RenderXML(ctx context.Context, inv *model.Invoice) ([]byte, error) {
	return c.render(ctx, "RenderXML", "/render/xml", inv)
}

// RenderPDF returns the ZUGFeRD PDF for a finalized invoice.
func (c *Client) RenderPDF(ctx context.Context, inv *model.Invoice) ([]byte, error) {
	return c.render(ctx, "RenderPDF", "/render/pdf", inv)
}

func (c *Client) render(ctx context.Context, op, path string, inv *model.Invoice) ([]byte, error) {
	body, err := c.post(ctx, op, path, inv)
	if err != nil {
		return nil, err
	}
	return body, nil
}

// SendEmail asks the document service to deliver the invoice. An empty
// address means the customer's stored address.
func (c *Client) SendEmail(ctx context.Context, inv *model.Invoice, address string) (*store.EmailResult, error) {
	payload := struct {
		Invoice *model.Invoice `json:"invoice"`
		Address string         `json:"address,omitempty"`
	}{Invoice: inv, Address: address}

	body, err := c.post(ctx, "SendEmail", "/email", payload)
	if err != nil {
		return nil, err
	}

	var result store.EmailResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, model.NewUpstreamError("SendEmail", err)
	}
	return &result, nil
}

// Validate runs the compliance validation for the invoice's format.
func (c *Client) Validate(ctx context.Context, inv *model.Invoice) (*store.ValidationResult, error) {
	body, err := c.post(ctx, "Validate", "/validate", inv)
	if err != nil {
		return nil, err
	}

	var result store.ValidationResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, model.NewUpstreamError("Validate", err)
	}
	return &result, nil
}

func (c *Client) post(ctx context.Context, op, path string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, model.NewUpstreamError(op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, model.NewUpstreamError(op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, model.NewUpstreamError(op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, model.NewUpstreamError(op, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, model.NewUpstreamError(op, fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(body)))
	}
	return body, nil
}
