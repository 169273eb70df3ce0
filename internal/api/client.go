// Package api implements the HTTP client for the TrackWise backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/trackwise/trackwise-go/internal/models"
)

// Client talks to the TrackWise backend API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a backend API client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		baseURL: trimmed,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// EntryPayload is the normalized manual-entry submission body.
type EntryPayload struct {
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Vendor      string  `json:"vendor"`
}

// UploadTarget is a scoped write descriptor for one bill file: an opaque
// destination plus the form fields the storage layer demands to authorize
// the write. Key is the unique object name the backend chose.
type UploadTarget struct {
	URL    string            `json:"url"`
	Fields map[string]string `json:"fields"`
	Key    string            `json:"key"`
}

type errorBody struct {
	Error string `json:"error"`
}

type chatRequest struct {
	Query string `json:"query"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// SubmitEntry posts one normalized manual entry. A nil return means the
// backend accepted the record.
func (c *Client) SubmitEntry(ctx context.Context, payload EntryPayload) error {
	resp, err := c.postJSON(ctx, "/manual-entry", payload)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp); err != nil {
		return err
	}
	return nil
}

// GetTransactions fetches the full transaction collection.
func (c *Client) GetTransactions(ctx context.Context) ([]models.Transaction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/get-transactions", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactions request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: ErrTransport, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var transactions []models.Transaction
	if err := json.NewDecoder(resp.Body).Decode(&transactions); err != nil {
		return nil, fmt.Errorf("failed to decode transactions: %w", err)
	}
	return transactions, nil
}

// GetUploadTarget requests a scoped write descriptor for the named file.
func (c *Client) GetUploadTarget(ctx context.Context, filename string) (UploadTarget, error) {
	resp, err := c.postJSON(ctx, "/get-presigned-url", map[string]string{"filename": filename})
	if err != nil {
		return UploadTarget{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp); err != nil {
		return UploadTarget{}, err
	}

	var target UploadTarget
	if err := json.NewDecoder(resp.Body).Decode(&target); err != nil {
		return UploadTarget{}, fmt.Errorf("failed to decode upload target: %w", err)
	}
	if target.URL == "" {
		return UploadTarget{}, fmt.Errorf("upload target response is missing the destination url")
	}
	return target, nil
}

// ChatQuery forwards a free-text finance question and returns the answer
// text. The answer may be empty; callers decide on fallback wording.
func (c *Client) ChatQuery(ctx context.Context, query string) (string, error) {
	resp, err := c.postJSON(ctx, "/chat-query", chatRequest{Query: query})
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp); err != nil {
		return "", err
	}

	var answer chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}
	return answer.Response, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body any) (*http.Response, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body for %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: ErrTransport, Err: err}
	}
	return resp, nil
}

// checkStatus converts a non-2xx response into a tagged error, preferring
// the server-supplied {"error": ...} message when the body carries one.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	apiErr := &Error{Kind: ErrServerRejected, Status: resp.StatusCode}
	if body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16)); err == nil {
		var parsed errorBody
		if err := json.Unmarshal(body, &parsed); err == nil {
			apiErr.Message = parsed.Error
		}
	}
	return apiErr
}
