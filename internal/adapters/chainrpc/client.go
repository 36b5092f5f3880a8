// Package chainrpc talks to the blockchain gateway that broadcasts mint
// transactions and reports their confirmation status.
package chainrpc

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

	"github.com/ticketmint/ticketmint/internal/core"
	apperrors "github.com/ticketmint/ticketmint/internal/errors"
)

// Transaction status values reported by the gateway.
const (
	txStatusPending   = "pending"
	txStatusConfirmed = "confirmed"
	txStatusReverted  = "reverted"
)

// Config captures the subset of gateway behaviour we need.
type Config struct {
	BaseURL      string
	APIKey       string
	Timeout      time.Duration
	PollInterval time.Duration
	Client       *http.Client
}

// Client submits mint transactions to the gateway over HTTP.
//
// Submissions are never retried here: a broadcast transaction cannot be
// recalled, and re-posting it would risk double minting. Status polls are
// read-only and tolerate transient failures.
type Client struct {
	baseURL      string
	apiKey       string
	pollInterval time.Duration
	client       *http.Client
}

// NewClient builds a gateway client. Callers should pass a validated config.
func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("chain gateway base url is required")
	}
	if u, err := url.Parse(baseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid chain gateway base url: %q", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}

	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:      baseURL,
		apiKey:       strings.TrimSpace(cfg.APIKey),
		pollInterval: pollInterval,
		client:       hc,
	}, nil
}

type batchMintPayload struct {
	Recipient string   `json:"recipient"`
	TokenIDs  []int64  `json:"token_ids"`
	URIs      []string `json:"uris"`
}

type mintPayload struct {
	Recipient string `json:"recipient"`
	TokenID   int64  `json:"token_id"`
	URI       string `json:"uri"`
}

type submitResponse struct {
	TxHash string `json:"tx_hash"`
}

type txStatusResponse struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// BatchMint submits one transaction minting every token in the request.
// TokenIDs[i] is minted with URIs[i]; the gateway preserves that pairing.
func (c *Client) BatchMint(ctx context.Context, req core.BatchMintRequest) (string, error) {
	if len(req.TokenIDs) == 0 {
		return "", errors.New("at least one token is required")
	}
	if len(req.TokenIDs) != len(req.URIs) {
		return "", fmt.Errorf("token id count %d does not match uri count %d", len(req.TokenIDs), len(req.URIs))
	}
	if strings.TrimSpace(req.ContractAddress) == "" {
		return "", errors.New("contract address is required")
	}
	if strings.TrimSpace(req.Recipient) == "" {
		return "", errors.New("recipient is required")
	}

	endpoint := fmt.Sprintf("%s/contracts/%s/batchMint", c.baseURL, url.PathEscape(req.ContractAddress))
	return c.submit(ctx, endpoint, batchMintPayload{
		Recipient: req.Recipient,
		TokenIDs:  req.TokenIDs,
		URIs:      req.URIs,
	})
}

// Mint submits a single-token mint transaction.
func (c *Client) Mint(ctx context.Context, req core.MintRequest) (string, error) {
	if strings.TrimSpace(req.ContractAddress) == "" {
		return "", errors.New("contract address is required")
	}
	if strings.TrimSpace(req.Recipient) == "" {
		return "", errors.New("recipient is required")
	}

	endpoint := fmt.Sprintf("%s/contracts/%s/mint", c.baseURL, url.PathEscape(req.ContractAddress))
	return c.submit(ctx, endpoint, mintPayload{
		Recipient: req.Recipient,
		TokenID:   req.TokenID,
		URI:       req.URI,
	})
}

func (c *Client) submit(ctx context.Context, endpoint string, payload any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode mint payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create mint request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeExternal, "chain gateway request failed")
	}
	defer closeBody(resp)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", readGatewayError(resp)
	}

	var out submitResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&out); decodeErr != nil {
		return "", apperrors.Wrap(decodeErr, apperrors.ErrCodeExternal, "decode chain gateway response")
	}
	if strings.TrimSpace(out.TxHash) == "" {
		return "", apperrors.External("chain gateway returned no transaction hash")
	}
	return out.TxHash, nil
}

// WaitForConfirmation polls the transaction status until the gateway reports
// it confirmed or reverted, or the context deadline expires. Transient poll
// failures are retried on the next tick; the chain is the source of truth and
// a failed read says nothing about the transaction.
func (c *Client) WaitForConfirmation(ctx context.Context, txHash string) error {
	if strings.TrimSpace(txHash) == "" {
		return errors.New("transaction hash is required")
	}

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		status, reason, err := c.txStatus(ctx, txHash)
		if err == nil {
			switch status {
			case txStatusConfirmed:
				return nil
			case txStatusReverted:
				if reason != "" {
					return apperrors.Externalf("transaction %s reverted: %s", txHash, reason)
				}
				return apperrors.Externalf("transaction %s reverted", txHash)
			case txStatusPending:
				// keep polling
			default:
				return apperrors.Externalf("transaction %s has unknown status %q", txHash, status)
			}
		} else if ctx.Err() != nil {
			return confirmationTimeout(ctx, txHash)
		}

		select {
		case <-ctx.Done():
			return confirmationTimeout(ctx, txHash)
		case <-ticker.C:
		}
	}
}

func confirmationTimeout(ctx context.Context, txHash string) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperrors.Wrapf(ctx.Err(), apperrors.ErrCodeTimeout,
			"transaction %s not confirmed before deadline", txHash)
	}
	return apperrors.Wrap(ctx.Err(), apperrors.ErrCodeCanceled, "confirmation wait canceled")
}

func (c *Client) txStatus(ctx context.Context, txHash string) (status, reason string, err error) {
	endpoint := fmt.Sprintf("%s/tx/%s", c.baseURL, url.PathEscape(txHash))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", "", fmt.Errorf("create status request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("poll transaction status: %w", err)
	}
	defer closeBody(resp)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", "", readGatewayError(resp)
	}

	var out txStatusResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&out); decodeErr != nil {
		return "", "", fmt.Errorf("decode status response: %w", decodeErr)
	}
	return out.Status, out.Reason, nil
}

func readGatewayError(resp *http.Response) error {
	respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if readErr != nil {
		return apperrors.Externalf("chain gateway %s", resp.Status)
	}
	msg := strings.TrimSpace(string(respBody))
	if msg == "" {
		return apperrors.Externalf("chain gateway %s", resp.Status)
	}
	return apperrors.Externalf("chain gateway %s: %s", resp.Status, msg)
}

func closeBody(resp *http.Response) {
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		_ = err
	}
	if err := resp.Body.Close(); err != nil {
		_ = err
	}
}
