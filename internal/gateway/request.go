package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Request is one logical API call. The zero value is not usable; at least
// Method and Path must be set. Exactly one of JSON, Form or Body may carry
// a payload.
type Request struct {
	Method string
	Path   string // relative to the configured base URL
	Query  url.Values

	JSON        any        // marshalled as application/json when non-nil
	Form        url.Values // sent as application/x-www-form-urlencoded when non-nil
	Body        []byte     // raw payload, ContentType required
	ContentType string

	// NoRetry marks calls where a 401 is a final answer rather than an
	// expired token, e.g. login with a wrong password.
	NoRetry bool

	// attempt is the retry bookkeeping: 1 for the first send, 2 for the
	// single re-send after a refresh. It lives on the request value, not
	// on shared state, so the at-most-one-retry rule is a pure data check.
	attempt int
}

// Attempt reports which send this request value represents (1 or 2).
func (r Request) Attempt() int {
	if r.attempt == 0 {
		return 1
	}
	return r.attempt
}

func (r Request) withAttempt(n int) Request {
	r.attempt = n
	return r
}

// payload renders the request body and its content type. It is called per
// send so a retried request gets a fresh reader.
func (r Request) payload() (io.Reader, string, error) {
	switch {
	case r.JSON != nil:
		data, err := json.Marshal(r.JSON)
		if err != nil {
			return nil, "", fmt.Errorf("encoding request body: %w", err)
		}
		return bytes.NewReader(data), "application/json", nil
	case r.Form != nil:
		return strings.NewReader(r.Form.Encode()), "application/x-www-form-urlencoded", nil
	case r.Body != nil:
		return bytes.NewReader(r.Body), r.ContentType, nil
	default:
		return nil, "", nil
	}
}

// Response is the decoded-enough result of a successful call. Body holds
// the full payload; JSON endpoints decode it via Decode.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the response body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decoding response body: %w", err)
	}
	return nil
}

// errorDetail extracts the backend's human-readable message from an error
// payload ({"detail": "..."}), falling back to the raw body.
func errorDetail(body []byte) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		return payload.Detail
	}

	detail := strings.TrimSpace(string(body))
	if len(detail) > 200 {
		detail = detail[:200]
	}
	return detail
}
