package insightsclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/angelmondragon/mise-backend/internal/forecast"
	"github.com/angelmondragon/mise-backend/pkg/enums"
	"github.com/angelmondragon/mise-backend/pkg/types"
)

const (
	insightsPath = "/api/v1/ai/inventory-insights"
	baselinePath = "/api/v1/ai/inventory-insights/baseline"
	readBufSize  = 4 << 10
)

// ErrTruncated means the stream ended without clean termination. Text
// received so far is advisory only.
var ErrTruncated = errors.New("insight stream truncated")

// APIError is a non-200 response from the insight endpoints.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Details    any
	RequestID  string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("insights api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("insights api: status %d: %s: %s", e.StatusCode, e.Code, e.Message)
}

// Client calls the insight endpoints with a fixed bearer token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL, token string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("bearer token is required")
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: baseURL, token: token, http: httpClient}, nil
}

// requestIDHeader is echoed by the API on every response.
const requestIDHeader = "X-Request-Id"

// StreamResult is what one insight request produced.
type StreamResult struct {
	Text string
	// Baseline is the server's baseline for the same snapshot the brief was
	// built from. Nil unless the stream completed with the baseline trailer.
	Baseline  []forecast.Suggestion
	RequestID string
}

// Stream requests an insight and calls onChunk for every read as it arrives.
// A connection that closes mid-body returns the partial text together with
// ErrTruncated.
func (c *Client) Stream(ctx context.Context, tenantID string, requestType enums.InsightRequestType, onChunk func(string)) (*StreamResult, error) {
	resp, err := c.post(ctx, insightsPath, map[string]string{
		"tenantId":    tenantID,
		"requestType": requestType.String(),
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp)
	}

	result := &StreamResult{RequestID: resp.Header.Get(requestIDHeader)}
	var full strings.Builder
	buf := make([]byte, readBufSize)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			chunk := string(buf[:n])
			full.WriteString(chunk)
			if onChunk != nil {
				onChunk(chunk)
			}
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			result.Text = full.String()
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, ctxErr
			}
			return result, fmt.Errorf("%w: %v", ErrTruncated, readErr)
		}
	}
	result.Text = full.String()

	// Trailers are populated once the body has been read to EOF.
	if value := resp.Trailer.Get(forecast.BaselineTrailer); value != "" {
		baseline, err := forecast.DecodeBaseline(value)
		if err != nil {
			return result, err
		}
		result.Baseline = baseline
	}
	return result, nil
}

// Baseline fetches the deterministic suggestion list.
func (c *Client) Baseline(ctx context.Context, tenantID string) ([]forecast.Suggestion, error) {
	resp, err := c.post(ctx, baselinePath, map[string]string{"tenantId": tenantID})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp)
	}

	var env struct {
		Data []forecast.Suggestion `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode baseline: %w", err)
	}
	if env.Data == nil {
		env.Data = []forecast.Suggestion{}
	}
	return env.Data, nil
}

func (c *Client) post(ctx context.Context, path string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", path, err)
	}
	return resp, nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, RequestID: resp.Header.Get(requestIDHeader)}
	var env types.ErrorEnvelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&env); err == nil {
		apiErr.Code = env.Error.Code
		apiErr.Message = env.Error.Message
		apiErr.Details = env.Error.Details
	}
	return apiErr
}
