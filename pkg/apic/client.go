// Package apic manages an authenticated session with an ACI policy controller.
//
// A Client logs in once per run. The resulting Session carries the login
// cookies and is shared read-only by every submission of the run; there is
// no re-authentication and no retry.
package apic

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/time/rate"

	"github.com/newtron-network/acipush/pkg/util"
	"github.com/newtron-network/acipush/pkg/version"
)

// DefaultTimeout bounds each login or submission call.
const DefaultTimeout = 5 * time.Second

// CookieName is the session cookie the controller issues on login.
const CookieName = "APIC-cookie"

// Config holds the connection parameters for one controller.
type Config struct {
	Controller string        // host or host:port
	Timeout    time.Duration // per call, connection and read; DefaultTimeout when zero

	// InsecureSkipVerify disables TLS certificate verification. Controllers
	// commonly present self-signed certificates.
	InsecureSkipVerify bool

	// RateLimit caps submissions per second; zero means unlimited.
	RateLimit float64
	RateBurst int

	// Jump, when set, tunnels every connection through an SSH server.
	Jump *JumpHost

	// Transport overrides the HTTP transport (tests).
	Transport http.RoundTripper
}

// State is the client's authentication state.
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticating
	StateAuthenticated
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Client talks to one controller.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	sshClient  *ssh.Client

	mu    sync.Mutex
	state State
}

// NewClient builds a client. It dials the jump host, if configured, but does
// not contact the controller.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Controller == "" {
		return nil, fmt.Errorf("controller address required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	c := &Client{cfg: cfg}

	transport := cfg.Transport
	if transport == nil {
		dialer := &net.Dialer{Timeout: cfg.Timeout, KeepAlive: 30 * time.Second}
		t := &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			DialContext:         dialer.DialContext,
			TLSClientConfig:     &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify},
			TLSHandshakeTimeout: cfg.Timeout,
			MaxIdleConns:        16,
			MaxIdleConnsPerHost: 16,
			IdleConnTimeout:     90 * time.Second,
		}
		if cfg.Jump != nil {
			sshClient, err := cfg.Jump.dial(cfg.Timeout)
			if err != nil {
				return nil, err
			}
			c.sshClient = sshClient
			t.Proxy = nil
			t.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
				return sshClient.Dial(network, addr)
			}
		}
		transport = t
	}

	c.httpClient = &http.Client{
		Timeout:   cfg.Timeout,
		Transport: transport,
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return c, nil
}

// Controller returns the configured controller address.
func (c *Client) Controller() string {
	return c.cfg.Controller
}

// State returns the current authentication state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Close releases idle connections and the SSH tunnel, if any.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	if c.sshClient != nil {
		return c.sshClient.Close()
	}
	return nil
}

// LoginURI returns the controller's login endpoint.
func (c *Client) LoginURI() string {
	return fmt.Sprintf("https://%s/api/mo/aaaLogin.json", c.cfg.Controller)
}

type loginRequest struct {
	AAAUser struct {
		Attributes struct {
			Name string `json:"name"`
			Pwd  string `json:"pwd"`
		} `json:"attributes"`
	} `json:"aaaUser"`
}

type loginResponse struct {
	Imdata []struct {
		AAALogin *struct {
			Attributes struct {
				Token string `json:"token"`
			} `json:"attributes"`
		} `json:"aaaLogin"`
	} `json:"imdata"`
}

// Login authenticates once. A client can log in only from the
// unauthenticated state; a failed login is final.
func (c *Client) Login(ctx context.Context, user, password string) (*Session, error) {
	c.mu.Lock()
	if c.state != StateUnauthenticated {
		state := c.state
		c.mu.Unlock()
		return nil, fmt.Errorf("login not allowed in state %s", state)
	}
	c.state = StateAuthenticating
	c.mu.Unlock()

	session, err := c.login(ctx, user, password)

	c.mu.Lock()
	if err != nil {
		c.state = StateFailed
	} else {
		c.state = StateAuthenticated
	}
	c.mu.Unlock()
	return session, err
}

func (c *Client) login(ctx context.Context, user, password string) (*Session, error) {
	var payload loginRequest
	payload.AAAUser.Attributes.Name = user
	payload.AAAUser.Attributes.Pwd = password
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &AuthError{Kind: AuthMalformed, Controller: c.cfg.Controller, Err: err}
	}

	log := util.WithFields(map[string]interface{}{"controller": c.cfg.Controller, "user": user})
	log.Debug("logging in")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.LoginURI(), bytes.NewReader(body))
	if err != nil {
		return nil, &AuthError{Kind: AuthConnection, Controller: c.cfg.Controller, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		kind := AuthConnection
		if isTimeout(err) {
			kind = AuthTimeout
		}
		return nil, &AuthError{Kind: kind, Controller: c.cfg.Controller, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		kind := AuthConnection
		if isTimeout(err) {
			kind = AuthTimeout
		}
		return nil, &AuthError{Kind: kind, Controller: c.cfg.Controller, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &AuthError{Kind: AuthStatus, Controller: c.cfg.Controller, StatusCode: resp.StatusCode}
	}

	var lr loginResponse
	if err := json.Unmarshal(data, &lr); err != nil {
		return nil, &AuthError{Kind: AuthMalformed, Controller: c.cfg.Controller, StatusCode: resp.StatusCode, Err: err}
	}
	if len(lr.Imdata) == 0 || lr.Imdata[0].AAALogin == nil || lr.Imdata[0].AAALogin.Attributes.Token == "" {
		return nil, &AuthError{
			Kind:       AuthMalformed,
			Controller: c.cfg.Controller,
			StatusCode: resp.StatusCode,
			Err:        errors.New("no aaaLogin token in response"),
		}
	}
	token := lr.Imdata[0].AAALogin.Attributes.Token

	cookies := resp.Cookies()
	hasSessionCookie := false
	for _, ck := range cookies {
		if ck.Name == CookieName {
			hasSessionCookie = true
		}
	}
	if !hasSessionCookie {
		cookies = append(cookies, &http.Cookie{Name: CookieName, Value: token})
	}

	log.Debug("login successful")
	return &Session{
		client:   c,
		user:     user,
		token:    token,
		cookies:  cookies,
		loggedIn: time.Now(),
	}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
