package xsession

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
)

// apiRequest describes one governed API call. The body is kept as bytes so
// every retry replays an identical request.
type apiRequest struct {
	method      string
	endpoint    string
	url         string
	body        []byte
	contentType string
}

// do executes a request under the retry policy: bounded attempts, exponential
// backoff with jitter, rate-limit reset hints honored, terminal errors
// returned as-is. Exhausting all attempts yields OperationFailedError
// wrapping the last failure.
func (c *Client) do(ctx context.Context, req apiRequest) ([]byte, error) {
	// Anti-fingerprint jitter
	if !c.cfg.DisableJitter {
		if err := stealth.DefaultJitter.Sleep(ctx); err != nil {
			return nil, err
		}
	}

	var lastErr error
	for attempt := 0; attempt < c.cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := c.retryDelay(attempt, lastErr)
			slog.Debug("retrying",
				slog.String("endpoint", req.endpoint),
				slog.Int("attempt", attempt+1),
				slog.Duration("delay", delay))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if err := c.awaitEndpoint(ctx, req.endpoint); err != nil {
			return nil, err
		}
		if err := c.throttle.Wait(ctx); err != nil {
			return nil, err
		}

		body, err := c.send(ctx, req)
		if err == nil {
			c.recordAPICall(req.endpoint, true, false)
			return body, nil
		}

		var rle *RateLimitError
		rateLimited := errors.As(err, &rle)
		c.recordAPICall(req.endpoint, false, rateLimited)
		if rateLimited && !rle.Reset.IsZero() {
			c.limiter.MarkRateLimited(req.endpoint, rle.Reset)
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !retryable(err) {
			return nil, err
		}
		lastErr = err
		slog.Warn("request failed",
			slog.String("endpoint", req.endpoint),
			slog.Int("attempt", attempt+1),
			slog.Any("error", err))
	}

	return nil, &OperationFailedError{Endpoint: req.endpoint, Attempts: c.cfg.MaxAttempts, Err: lastErr}
}

// send performs a single transport attempt and classifies the outcome.
// Headers are rebuilt from the immutable credentials on every call so
// attempts never share mutable state.
func (c *Client) send(ctx context.Context, req apiRequest) ([]byte, error) {
	headers := c.creds.Headers(c.cfg.UserAgent)
	if req.contentType != "" {
		headers["content-type"] = req.contentType
	}

	var body io.Reader
	if len(req.body) > 0 {
		body = bytes.NewReader(req.body)
	}

	respBody, respHdrs, status, err := c.dispatch(ctx, req.method, req.url, headers, body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &NetworkError{Endpoint: req.endpoint, Err: err}
	}

	if cerr := classifyResponse(req.endpoint, status, respHdrs, respBody); cerr != nil {
		return nil, cerr
	}
	return respBody, nil
}

// dispatch runs the transport call under the per-request timeout. The
// underlying client has no context support, so the call is raced against the
// deadline; a late result is discarded.
func (c *Client) dispatch(ctx context.Context, method, urlStr string, headers map[string]string, body io.Reader) ([]byte, map[string]string, int, error) {
	type result struct {
		body    []byte
		headers map[string]string
		status  int
		err     error
	}

	tctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	ch := make(chan result, 1)
	go func() {
		b, h, s, err := c.transport.DoWithHeaderOrder(method, urlStr, headers, body, sessionHeaderOrder)
		ch <- result{body: b, headers: h, status: s, err: err}
	}()

	select {
	case r := <-ch:
		return r.body, r.headers, r.status, r.err
	case <-tctx.Done():
		return nil, nil, 0, tctx.Err()
	}
}

// awaitEndpoint blocks while a server-imposed rate-limit window for the
// endpoint is still open. The wait never exceeds RateLimitWait.
func (c *Client) awaitEndpoint(ctx context.Context, endpoint string) error {
	if !c.limiter.IsRateLimited(endpoint) {
		return nil
	}
	wait := time.Until(c.limiter.AvailableAt(endpoint))
	if wait <= 0 {
		return nil
	}
	if wait > c.cfg.RateLimitWait {
		wait = c.cfg.RateLimitWait
	}
	slog.Info("endpoint rate-limited, waiting",
		slog.String("endpoint", endpoint),
		slog.Duration("wait", wait))
	select {
	case <-time.After(wait):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// retryDelay computes the wait before the given attempt. A rate-limit reset
// hint from the previous attempt extends the exponential delay but never
// past RateLimitWait.
func (c *Client) retryDelay(attempt int, lastErr error) time.Duration {
	delay := c.backoff.Duration(attempt)
	var rle *RateLimitError
	if errors.As(lastErr, &rle) && !rle.Reset.IsZero() {
		if hint := time.Until(rle.Reset); hint > delay {
			delay = hint
		}
	}
	if delay > c.cfg.RateLimitWait {
		delay = c.cfg.RateLimitWait
	}
	return delay
}

// doGET executes a governed GET request.
func (c *Client) doGET(ctx context.Context, endpoint, urlStr string) ([]byte, error) {
	return c.do(ctx, apiRequest{method: "GET", endpoint: endpoint, url: urlStr})
}

// doPOST executes a governed POST request with a JSON payload.
func (c *Client) doPOST(ctx context.Context, endpoint, urlStr string, payload []byte) ([]byte, error) {
	return c.do(ctx, apiRequest{method: "POST", endpoint: endpoint, url: urlStr, body: payload})
}

// doForm executes a governed POST request with a form-encoded payload.
func (c *Client) doForm(ctx context.Context, endpoint, urlStr string, form url.Values) ([]byte, error) {
	return c.do(ctx, apiRequest{
		method:      "POST",
		endpoint:    endpoint,
		url:         urlStr,
		body:        []byte(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
	})
}

// gqlURL builds the GET URL for a GraphQL operation.
func gqlURL(op string, variables map[string]any, fieldToggles ...map[string]any) string {
	ep := Endpoints[op]
	return addGraphQLParams(ep.URL(), variables, ep.Features, fieldToggles...)
}

// gqlPayload builds the POST body for a GraphQL mutation.
func gqlPayload(op string, variables map[string]any) []byte {
	ep := Endpoints[op]
	p := map[string]any{
		"variables": variables,
		"queryId":   ep.ID,
	}
	if ep.Features != nil {
		p["features"] = ep.Features
	}
	b, _ := json.Marshal(p)
	return b
}

func truncateBytes(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// hasResponseData returns true if the JSON body contains a non-null "data" field.
func hasResponseData(body []byte) bool {
	var probe struct {
		Data json.RawMessage `json:"data"`
	}
	if json.Unmarshal(body, &probe) != nil {
		return false
	}
	return len(probe.Data) > 0 && string(probe.Data) != "null"
}

// addGraphQLParams builds the full URL with variables, features, and optional fieldToggles.
func addGraphQLParams(urlStr string, variables, features map[string]any, fieldToggles ...map[string]any) string {
	v, _ := json.Marshal(variables)
	f, _ := json.Marshal(features)
	sep := "?"
	if strings.Contains(urlStr, "?") {
		sep = "&"
	}
	result := urlStr + sep + "variables=" + jsonEscape(v) + "&features=" + jsonEscape(f)
	if len(fieldToggles) > 0 && fieldToggles[0] != nil {
		ft, _ := json.Marshal(fieldToggles[0])
		result += "&fieldToggles=" + jsonEscape(ft)
	}
	return result
}

func jsonEscape(b []byte) string {
	s := string(b)
	var result strings.Builder
	for _, ch := range s {
		switch {
		case ch == ' ':
			result.WriteString("%20")
		case ch == '"':
			result.WriteString("%22")
		case ch == '{':
			result.WriteString("%7B")
		case ch == '}':
			result.WriteString("%7D")
		case ch == '[':
			result.WriteString("%5B")
		case ch == ']':
			result.WriteString("%5D")
		case ch == ':':
			result.WriteString("%3A")
		case ch == ',':
			result.WriteString("%2C")
		case ch == '\'':
			result.WriteString("%27")
		case ch == '|':
			result.WriteString("%7C")
		default:
			result.WriteRune(ch)
		}
	}
	return result.String()
}
