package apic

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/newtron-network/acipush/pkg/util"
	"github.com/newtron-network/acipush/pkg/version"
)

// Session is an authenticated controller session. It is read-only after
// login and safe for concurrent Submit calls.
type Session struct {
	client   *Client
	user     string
	token    string
	cookies  []*http.Cookie
	loggedIn time.Time
}

// User returns the user the session was opened for.
func (s *Session) User() string {
	return s.user
}

// Token returns the session token issued at login.
func (s *Session) Token() string {
	return s.token
}

// SubmitResult is the outcome of one submission. Err is nil on success,
// a *util.TransportError when the controller was not reached, or a
// *util.ControllerError carrying the controller's status code.
type SubmitResult struct {
	StatusCode int
	Duration   time.Duration
	Err        error
}

// OK reports whether the controller accepted the request.
func (r SubmitResult) OK() bool {
	return r.Err == nil
}

type errorResponse struct {
	Imdata []struct {
		Error *struct {
			Attributes struct {
				Code string `json:"code"`
				Text string `json:"text"`
			} `json:"attributes"`
		} `json:"error"`
	} `json:"imdata"`
}

// Submit posts body to uri with the session cookies. One attempt only.
func (s *Session) Submit(ctx context.Context, uri string, body []byte) SubmitResult {
	start := time.Now()
	c := s.client

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return SubmitResult{Duration: time.Since(start), Err: &util.TransportError{URI: uri, Err: err}}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uri, bytes.NewReader(body))
	if err != nil {
		return SubmitResult{Duration: time.Since(start), Err: &util.TransportError{URI: uri, Err: err}}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	for _, ck := range s.cookies {
		req.AddCookie(ck)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return SubmitResult{Duration: time.Since(start), Err: &util.TransportError{URI: uri, Err: err}}
	}
	defer resp.Body.Close()

	data, readErr := io.ReadAll(resp.Body)
	result := SubmitResult{StatusCode: resp.StatusCode, Duration: time.Since(start)}

	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		if readErr != nil {
			util.Debugf("reading response from %s: %v", uri, readErr)
		}
		return result
	}

	result.Err = &util.ControllerError{
		URI:        uri,
		StatusCode: resp.StatusCode,
		Text:       errorText(data),
	}
	return result
}

// errorText extracts the controller's error text, if the body carries one.
func errorText(data []byte) string {
	var er errorResponse
	if err := json.Unmarshal(data, &er); err != nil {
		return ""
	}
	for _, item := range er.Imdata {
		if item.Error != nil && item.Error.Attributes.Text != "" {
			return item.Error.Attributes.Text
		}
	}
	return ""
}
