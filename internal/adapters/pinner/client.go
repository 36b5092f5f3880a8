// Package pinner uploads NFT metadata documents to an IPFS pinning service
// and returns content-addressed URIs.
package pinner

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

	"github.com/ticketmint/ticketmint/internal/domain/model"
	apperrors "github.com/ticketmint/ticketmint/internal/errors"
)

// Config captures the pinning service settings.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	RetryLimit int
	Client     *http.Client
}

// Client pins metadata documents over the pinning service's HTTP API.
//
// Uploads are idempotent: the CID is derived from the document bytes, so
// retrying a failed upload can only ever produce the same URI.
type Client struct {
	baseURL    string
	apiKey     string
	retryLimit int
	client     *http.Client
}

// NewClient builds a pinning client. Callers should pass a validated config.
func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("pinner base url is required")
	}
	if u, err := url.Parse(baseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid pinner base url: %q", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	retries := cfg.RetryLimit
	if retries < 0 {
		retries = 0
	}

	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		retryLimit: retries,
		client:     hc,
	}, nil
}

type pinResponse struct {
	CID string `json:"cid"`
}

// Upload pins a metadata document and returns its ipfs:// URI.
func (c *Client) Upload(ctx context.Context, doc model.NFTMetadata) (string, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode metadata document: %w", err)
	}

	attempts := c.retryLimit + 1
	var lastErr error
	for attempt := range attempts {
		uri, postErr := c.pin(ctx, body)
		if postErr == nil {
			return uri, nil
		}
		lastErr = postErr
		if attempt < attempts-1 {
			// Simple linear backoff to avoid thundering retries.
			delay := time.Duration(attempt+1) * 200 * time.Millisecond
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				if !timer.Stop() {
					<-timer.C
				}
				return "", ctx.Err()
			case <-timer.C:
			}
		}
	}

	return "", apperrors.Wrap(lastErr, apperrors.ErrCodeExternal, "pin metadata document")
}

func (c *Client) pin(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/pins", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create pin request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("pin request failed: %w", err)
	}
	defer func() {
		if _, derr := io.Copy(io.Discard, resp.Body); derr != nil {
			_ = derr
		}
		if cerr := resp.Body.Close(); cerr != nil {
			_ = cerr
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if readErr != nil || len(bytes.TrimSpace(respBody)) == 0 {
			return "", fmt.Errorf("pinning service %s", resp.Status)
		}
		return "", fmt.Errorf("pinning service %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
	}

	var out pinResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&out); decodeErr != nil {
		return "", fmt.Errorf("decode pin response: %w", decodeErr)
	}
	if strings.TrimSpace(out.CID) == "" {
		return "", errors.New("pinning service returned no cid")
	}
	return "ipfs://" + out.CID, nil
}
