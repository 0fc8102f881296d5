// Package subgraph queries the Calamus indexing subgraph over GraphQL/HTTP
// and converts stream entities into model.Stream values.
package subgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/calamus-finance/calamus-sdk-go/pkg/model"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// ErrNotFound is returned by Stream when the subgraph has no such stream.
var ErrNotFound = errors.New("stream not found in subgraph")

// Client is a GraphQL-over-HTTP client for one subgraph endpoint.
type Client struct {
	URL  string
	HTTP *http.Client
}

// NewClient returns a client for url. timeout bounds each request; zero
// means no client-side timeout.
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		URL:  url,
		HTTP: &http.Client{Timeout: timeout},
	}
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// Query posts query with variables and decodes the "data" member into out.
func (c *Client) Query(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("subgraph request: %w", err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			zap.L().Error("failed to close subgraph response", zap.Error(err))
		}
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("subgraph returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var gr graphQLResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return fmt.Errorf("failed to decode subgraph response: %w", err)
	}
	if len(gr.Errors) > 0 {
		msgs := make([]string, len(gr.Errors))
		for i, e := range gr.Errors {
			msgs[i] = e.Message
		}
		return fmt.Errorf("subgraph errors: %s", strings.Join(msgs, "; "))
	}
	if len(gr.Data) == 0 || string(gr.Data) == "null" {
		return errors.New("subgraph response has no data")
	}
	return json.Unmarshal(gr.Data, out)
}

// IncomingStreams returns the streams whose recipient is recipient.
func (c *Client) IncomingStreams(ctx context.Context, recipient common.Address) ([]*model.Stream, error) {
	return c.streams(ctx, incomingStreamsQuery, map[string]any{"recipient": lowerHex(recipient)})
}

// OutgoingStreams returns the streams whose sender is sender.
func (c *Client) OutgoingStreams(ctx context.Context, sender common.Address) ([]*model.Stream, error) {
	return c.streams(ctx, outgoingStreamsQuery, map[string]any{"owner": lowerHex(sender)})
}

func (c *Client) streams(ctx context.Context, query string, vars map[string]any) ([]*model.Stream, error) {
	var data struct {
		Streams []Record `json:"streams"`
	}
	if err := c.Query(ctx, query, vars, &data); err != nil {
		return nil, err
	}
	zap.L().Debug("subgraph streams", zap.Int("count", len(data.Streams)), zap.Any("variables", vars))
	return ParseRecords(data.Streams)
}

// Stream returns the stream with the given id, or ErrNotFound.
func (c *Client) Stream(ctx context.Context, id *big.Int) (*model.Stream, error) {
	var data struct {
		Stream *Record `json:"stream"`
	}
	if err := c.Query(ctx, streamByIDQuery, map[string]any{"id": id.String()}, &data); err != nil {
		return nil, err
	}
	if data.Stream == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return data.Stream.Stream()
}

// lowerHex renders addr the way the subgraph stores Bytes fields.
func lowerHex(addr common.Address) string {
	return strings.ToLower(addr.Hex())
}

// Meta is the indexing status of the subgraph.
type Meta struct {
	Block struct {
		Number int64 `json:"number"`
	} `json:"block"`
	HasIndexingErrors bool `json:"hasIndexingErrors"`
}

// Meta returns the block the subgraph has indexed up to.
func (c *Client) Meta(ctx context.Context) (*Meta, error) {
	var data struct {
		Meta *Meta `json:"_meta"`
	}
	if err := c.Query(ctx, metaQuery, nil, &data); err != nil {
		return nil, err
	}
	if data.Meta == nil {
		return nil, errors.New("subgraph returned no _meta")
	}
	return data.Meta, nil
}
