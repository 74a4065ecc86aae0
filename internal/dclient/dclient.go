// Package dclient is the Edge's client for the Data Gateway's internal
// msgpack contract. Every call round-trips a snake_case map[string]any,
// mirroring the shapeless request/response style gatewayapi exposes on the
// other end of the wire.
package dclient

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/timel-e/core/internal/apperr"
)

const contentTypeMsgpack = "application/msgpack"

// Client talks to one Data Gateway instance over HTTP+msgpack.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Call issues method to path against the Data Gateway, msgpack-encoding
// body (nil is sent as an empty map) and decoding the response into a map.
// Any non-2xx response is translated into an *apperr.AppError carrying the
// code D reported, so callers never see a raw HTTP status.
func (c *Client) Call(ctx context.Context, method, path string, body map[string]any) (map[string]any, error) {
	if body == nil {
		body = map[string]any{}
	}
	var buf bytes.Buffer
	if err := msgpack.NewEncoder(&buf).Encode(body); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "encoding request failed", err)
	}

	path, rawQuery, _ := strings.Cut(path, "?")
	u, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "building request url failed", err)
	}
	if rawQuery != "" {
		u += "?" + rawQuery
	}

	req, err := http.NewRequestWithContext(ctx, method, u, &buf)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "building request failed", err)
	}
	req.Header.Set("Content-Type", contentTypeMsgpack)
	req.Header.Set("Accept", contentTypeMsgpack)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.UpstreamUnavailable, "data gateway unreachable", err)
	}
	defer resp.Body.Close()

	var out map[string]any
	if err := msgpack.NewDecoder(resp.Body).Decode(&out); err != nil {
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil, apperr.Wrap(apperr.Internal, "decoding data gateway response failed", err)
		}
		return nil, apperr.New(apperr.UpstreamUnavailable, fmt.Sprintf("data gateway returned status %d", resp.StatusCode))
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return out, nil
	}
	return nil, errFromBody(out, resp.StatusCode)
}

func errFromBody(body map[string]any, status int) error {
	errBody, ok := body["error"].(map[string]any)
	if !ok {
		return apperr.New(apperr.UpstreamUnavailable, fmt.Sprintf("data gateway returned status %d", status))
	}
	code, _ := errBody["code"].(string)
	message, _ := errBody["message"].(string)
	if code == "" {
		code = string(apperr.Internal)
	}
	if message == "" {
		message = "data gateway error"
	}
	return apperr.New(apperr.Code(code), message)
}

// Health checks D's internal health endpoint, returning non-nil when the
// gateway is unreachable or unhealthy.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.Call(ctx, http.MethodGet, "/internal/healthz", nil)
	return err
}
