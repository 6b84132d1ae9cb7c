// Package euserv drives the EUserv customer control panel JSON API far enough
// to reset a dedicated server or VPS: acquire a session, log in, reset.
package euserv

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Step names one call of the recovery protocol.
type Step string

const (
	StepAcquireSession Step = "acquire_session"
	StepLogin          Step = "login"
	StepReset          Step = "reset"
)

// Subaction selectors understood by the control panel.
const (
	subactionLogin = "login"
	subactionReset = "kc2_server_reset_do_reset"
)

// State is the position of a Client in the recovery protocol. Transitions
// only move forward; a failed call leaves the state unchanged.
type State int

const (
	StateUnauthenticated State = iota
	StateSessionAcquired
	StateLoggedIn
	StateResetTriggered
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateSessionAcquired:
		return "session_acquired"
	case StateLoggedIn:
		return "logged_in"
	case StateResetTriggered:
		return "reset_triggered"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Client is a stateful control panel session. One Client serves exactly one
// protocol run; its HTTP client (and cookie jar) is shared by all three calls
// so server-side session cookies survive between them. Not safe for
// concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	userAgent  string
	creds      Credentials
	limiter    *rate.Limiter
	logger     *zap.Logger

	state  State
	sessID string
}

// NewClient creates a control panel client in StateUnauthenticated.
func NewClient(cfg Config, creds Credentials, logger *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", cfg.BaseURL, err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	limit := rate.Inf
	if cfg.MinCallInterval > 0 {
		limit = rate.Every(cfg.MinCallInterval)
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout, Jar: jar},
		baseURL:    base,
		userAgent:  cfg.UserAgent,
		creds:      creds,
		limiter:    rate.NewLimiter(limit, 1),
		logger:     logger,
	}, nil
}

// State returns the current protocol state.
func (c *Client) State() State {
	return c.state
}

// AcquireSession obtains a fresh session id. Requires StateUnauthenticated.
func (c *Client) AcquireSession(ctx context.Context) (string, error) {
	if err := c.require(StepAcquireSession, StateUnauthenticated); err != nil {
		return "", err
	}

	env, err := c.get(ctx, StepAcquireSession, url.Values{})
	if err != nil {
		return "", err
	}

	id, err := env.SessionID()
	if err != nil {
		return "", &Error{
			Kind:       KindSession,
			Step:       StepAcquireSession,
			Message:    "failed to obtain session id",
			StatusCode: env.StatusCode,
			Err:        err,
		}
	}

	c.sessID = id
	c.state = StateSessionAcquired
	return id, nil
}

// Login authenticates the session with the account credentials.
// Requires StateSessionAcquired.
func (c *Client) Login(ctx context.Context) (*Envelope, error) {
	if err := c.require(StepLogin, StateSessionAcquired); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("subaction", subactionLogin)
	params.Set("sess_id", c.sessID)
	params.Set("email", c.creds.Email)
	params.Set("password", c.creds.Password)
	params.Set("ord_no", c.creds.OrderNumber)

	env, err := c.get(ctx, StepLogin, params)
	if err != nil {
		return nil, err
	}
	c.state = StateLoggedIn
	return env, nil
}

// ResetServer triggers a hard reset of the server behind the order number.
// Requires StateLoggedIn.
func (c *Client) ResetServer(ctx context.Context) (*Envelope, error) {
	if err := c.require(StepReset, StateLoggedIn); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("subaction", subactionReset)
	params.Set("sess_id", c.sessID)
	params.Set("ord_no", c.creds.OrderNumber)

	env, err := c.get(ctx, StepReset, params)
	if err != nil {
		return nil, err
	}
	c.state = StateResetTriggered
	return env, nil
}

func (c *Client) require(step Step, want State) error {
	if c.state == want {
		return nil
	}
	return &Error{
		Kind:    KindState,
		Step:    step,
		Message: fmt.Sprintf("requires state %s, client is %s", want, c.state),
		Err:     ErrInvalidState,
	}
}

// get issues one GET against the base URL with method=json plus params and
// validates the envelope.
func (c *Client) get(ctx context.Context, step Step, params url.Values) (*Envelope, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &Error{Kind: KindTransport, Step: step, Message: "wait for call slot", Err: err}
	}

	params.Set("method", "json")
	u := *c.baseURL
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Step: step, Message: "create request", Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("calling control panel",
		zap.String("step", string(step)),
		zap.String("state", c.state.String()),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The URL carries credentials; report the step, not the request.
		return nil, &Error{Kind: KindTransport, Step: step, Message: "request failed", Err: unwrapURLError(err)}
	}
	defer resp.Body.Close()

	env, err := decodeEnvelope(step, resp)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("control panel call succeeded",
		zap.String("step", string(step)),
		zap.Int("status_code", env.StatusCode),
		zap.String("message", env.Message),
	)
	return env, nil
}

// unwrapURLError strips the *url.Error wrapper, whose text includes the
// full request URL.
func unwrapURLError(err error) error {
	if ue, ok := err.(*url.Error); ok && ue.Err != nil {
		return ue.Err
	}
	return err
}
