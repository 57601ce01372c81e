package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// TokenSource supplies the bearer credential attached to upstream requests.
// The gateway never refreshes or invalidates credentials — it only forwards
// them and surfaces rejection upward.
type TokenSource interface {
	Token() (string, bool)
}

// StaticToken is a TokenSource around a known credential. An empty string
// means no credential (requests go out unauthenticated).
type StaticToken string

func (s StaticToken) Token() (string, bool) {
	return string(s), s != ""
}

// APIError is an error payload returned by the exam API itself, as opposed
// to a transport failure.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Client is a thin typed client for the remote exam API: one endpoint,
// operation selected by a named query/mutation plus a variables payload.
type Client struct {
	endpoint string
	http     *http.Client
	log      zerolog.Logger
}

// NewClient creates an exam API client.
func NewClient(endpoint string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
		log:      log.With().Str("component", "exam_api").Logger(),
	}
}

type gqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type gqlError struct {
	Message string `json:"message"`
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []gqlError      `json:"errors"`
}

// do executes one operation and unmarshals the data payload into out.
func (c *Client) do(ctx context.Context, ts TokenSource, query string, variables map[string]interface{}, out interface{}) error {
	body, err := json.Marshal(gqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token, ok := ts.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("exam api request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.log.Warn().Int("status", resp.StatusCode).Msg("Exam API returned non-200")
		return fmt.Errorf("exam api status %d", resp.StatusCode)
	}

	var envelope gqlResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return &APIError{Message: envelope.Errors[0].Message}
	}
	if envelope.Data == nil {
		return fmt.Errorf("exam api returned no data")
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}
