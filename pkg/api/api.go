// Package api provides HTTP clients for the off-chain services around the
// Calamus contract: the Calamus metadata API (recipient records, token
// records) and the Covalent balances API used to resolve the token a user
// streams.
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

	"github.com/calamus-finance/calamus-sdk-go/pkg/model"
	"go.uber.org/zap"
)

// Paths of the Calamus metadata API.
const (
	RecipientsPath = "/api/recipient/get-recipients"
	TokenPath      = "/api/token/get"
)

// Client talks to the Calamus metadata API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient returns a client for the API rooted at baseURL. timeout bounds
// each request; zero means no client-side timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

type recipientsRequest struct {
	StreamIDs []int64 `json:"stream_ids"`
	Chain     string  `json:"chain"`
}

// Recipients returns the metadata records of streamIDs on chain. The chain
// key is sent lowercased.
func (c *Client) Recipients(ctx context.Context, streamIDs []int64, chain string) ([]model.Recipient, error) {
	if streamIDs == nil {
		streamIDs = []int64{}
	}
	var out []model.Recipient
	req := recipientsRequest{StreamIDs: streamIDs, Chain: strings.ToLower(chain)}
	if err := c.post(ctx, RecipientsPath, req, &out); err != nil {
		return nil, err
	}
	zap.L().Debug("recipients fetched", zap.Int("requested", len(streamIDs)), zap.Int("returned", len(out)))
	return out, nil
}

// TokenRequest is the body of the token endpoint.
type TokenRequest struct {
	ChainID     int64  `json:"chainID"`
	Account     string `json:"account"`
	TokenSymbol string `json:"tokenSymbol"`
	CovalentKey string `json:"covalentKey"`
}

// Token looks up a token record by symbol for account on a chain.
func (c *Client) Token(ctx context.Context, req TokenRequest) (*model.Token, error) {
	var out model.Token
	if err := c.post(ctx, TokenPath, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return doJSON(c.HTTP, req, out)
}

// doJSON executes req and decodes a 200 JSON response into out.
func doJSON(client *http.Client, req *http.Request, out any) error {
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			zap.L().Error("failed to close response body", zap.Error(err))
		}
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s failed with %d: %s", req.Method, req.URL.Path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", req.URL.Path, err)
	}
	return nil
}
