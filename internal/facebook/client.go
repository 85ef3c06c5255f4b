// Package facebook is the Graph API adapter. It knows the four publish call
// shapes (text/photo × now/scheduled) and the permalink read, and nothing
// about how callers decide between them.
package facebook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Sentinel errors for Graph API client failures.
var (
	ErrGraphUnreachable = errors.New("facebook graph unreachable")
	ErrGraphTimeout     = errors.New("facebook graph timeout")
)

// APIError is a rejection from the Graph API (non-2xx response). The
// platform's own error message is preserved for audit records.
type APIError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("facebook graph error (status %d, code %d): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("facebook graph error (status %d)", e.StatusCode)
}

// PublishResult identifies the post the platform created or scheduled.
type PublishResult struct {
	ID string
}

// Client is the interface for publishing to a Facebook page.
type Client interface {
	PostText(ctx context.Context, pageID, accessToken, message string) (PublishResult, error)
	PostPhoto(ctx context.Context, pageID, accessToken, imageURL, caption string) (PublishResult, error)
	ScheduleText(ctx context.Context, pageID, accessToken, message string, at time.Time) (PublishResult, error)
	SchedulePhoto(ctx context.Context, pageID, accessToken, imageURL, caption string, at time.Time) (PublishResult, error)
	Permalink(ctx context.Context, postID, accessToken string) (string, error)
}

// HTTPClient implements Client against the Graph HTTP API.
type HTTPClient struct {
	baseURL string
	version string
	client  *http.Client
}

// NewHTTPClient creates a new Graph HTTP client.
func NewHTTPClient(baseURL, version string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		version: version,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) PostText(ctx context.Context, pageID, accessToken, message string) (PublishResult, error) {
	params := url.Values{
		"message":      {message},
		"access_token": {accessToken},
	}
	resp, err := c.post(ctx, c.nodeURL(pageID, "feed"), params)
	if err != nil {
		return PublishResult{}, err
	}
	return PublishResult{ID: resp.ID}, nil
}

func (c *HTTPClient) PostPhoto(ctx context.Context, pageID, accessToken, imageURL, caption string) (PublishResult, error) {
	params := url.Values{
		"url":          {imageURL},
		"caption":      {caption},
		"published":    {"true"},
		"access_token": {accessToken},
	}
	resp, err := c.post(ctx, c.nodeURL(pageID, "photos"), params)
	if err != nil {
		return PublishResult{}, err
	}
	// The photos edge reports the feed post as post_id; fall back to the
	// photo id when it is absent.
	id := resp.PostID
	if id == "" {
		id = resp.ID
	}
	return PublishResult{ID: id}, nil
}

func (c *HTTPClient) ScheduleText(ctx context.Context, pageID, accessToken, message string, at time.Time) (PublishResult, error) {
	params := url.Values{
		"message":                {message},
		"published":              {"false"},
		"scheduled_publish_time": {epochSeconds(at)},
		"access_token":           {accessToken},
	}
	resp, err := c.post(ctx, c.nodeURL(pageID, "feed"), params)
	if err != nil {
		return PublishResult{}, err
	}
	return PublishResult{ID: resp.ID}, nil
}

func (c *HTTPClient) SchedulePhoto(ctx context.Context, pageID, accessToken, imageURL, caption string, at time.Time) (PublishResult, error) {
	params := url.Values{
		"url":                    {imageURL},
		"caption":                {caption},
		"published":              {"false"},
		"scheduled_publish_time": {epochSeconds(at)},
		"access_token":           {accessToken},
	}
	resp, err := c.post(ctx, c.nodeURL(pageID, "photos"), params)
	if err != nil {
		return PublishResult{}, err
	}
	return PublishResult{ID: resp.ID}, nil
}

func (c *HTTPClient) Permalink(ctx context.Context, postID, accessToken string) (string, error) {
	u := fmt.Sprintf("%s?%s", c.nodeURL(postID, ""), url.Values{
		"fields":       {"permalink_url"},
		"access_token": {accessToken},
	}.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", decodeAPIError(resp)
	}

	var permResp permalinkResponse
	if err := json.NewDecoder(resp.Body).Decode(&permResp); err != nil {
		return "", fmt.Errorf("decoding permalink response: %w", err)
	}
	return permResp.PermalinkURL, nil
}

// post issues one form-encoded Graph write and decodes the id payload.
func (c *HTTPClient) post(ctx context.Context, u string, params url.Values) (*graphIDResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, decodeAPIError(resp)
	}

	var idResp graphIDResponse
	if err := json.NewDecoder(resp.Body).Decode(&idResp); err != nil {
		return nil, fmt.Errorf("decoding graph response: %w", err)
	}
	return &idResp, nil
}

func (c *HTTPClient) nodeURL(node, edge string) string {
	u := fmt.Sprintf("%s/%s/%s", c.baseURL, c.version, url.PathEscape(node))
	if edge != "" {
		u += "/" + edge
	}
	return u
}

// epochSeconds renders a time the way the Graph scheduling API expects it.
func epochSeconds(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 10)
}

// decodeAPIError turns a non-2xx Graph response into an *APIError,
// preserving the platform's message when the body carries one.
func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return apiErr
	}

	var envelope graphErrorResponse
	if err := json.Unmarshal(body, &envelope); err == nil {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
	}
	return apiErr
}

// classifyError maps transport-level errors to sentinel errors.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrGraphTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrGraphTimeout, err)
	}

	return fmt.Errorf("%w: %v", ErrGraphUnreachable, err)
}

// --- Graph response types ---

type graphIDResponse struct {
	ID     string `json:"id"`
	PostID string `json:"post_id"`
}

type permalinkResponse struct {
	ID           string `json:"id"`
	PermalinkURL string `json:"permalink_url"`
}

type graphErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// Compile-time check that HTTPClient implements Client.
var _ Client = (*HTTPClient)(nil)
