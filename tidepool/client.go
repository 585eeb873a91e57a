package tidepool

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"
	"golang.org/x/net/context/ctxhttp"

	apperr "github.com/diatide/diatide/errors"
)

const (
	API_URL    = "https://api.tidepool.org/"
	UPLOAD_URL = "https://uploads.tidepool.org/"

	SESSION_TOKEN = "x-tidepool-session-token"
)

// TIMEZONE is the zone used to derive the UTC offset of every uploaded reading. The Diasend
// export does not record the device zone.
const TIMEZONE = "Europe/London"

// Session is an authenticated Tidepool session.
type Session struct {
	Token  string
	UserID string
}

// Client implements the Tidepool login/upload/logout protocol. A Client has no session state of
// its own: the Session returned by Login is passed explicitly to every authenticated call.
type Client struct {
	api    string
	upload string
	client *http.Client
	zone   *time.Location
	now    func() time.Time
	log    *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient returns a client for the Tidepool API and upload services. Empty URLs default to
// the production Tidepool services.
func NewClient(api, upload string, options ...Option) (*Client, error) {
	if strings.TrimSpace(api) == "" {
		api = API_URL
	}

	if strings.TrimSpace(upload) == "" {
		upload = UPLOAD_URL
	}

	for _, u := range []string{api, upload} {
		if _, err := url.ParseRequestURI(u); err != nil {
			return nil, apperr.NewConfigError("invalid Tidepool URL '%v' (%v)", u, err)
		}
	}

	zone, err := time.LoadLocation(TIMEZONE)
	if err != nil {
		return nil, fmt.Errorf("unable to load timezone %v (%w)", TIMEZONE, err)
	}

	c := Client{
		api:    strings.TrimSuffix(api, "/"),
		upload: strings.TrimSuffix(upload, "/"),
		client: http.DefaultClient,
		zone:   zone,
		now:    time.Now,
		log:    zap.NewNop(),
	}

	for _, option := range options {
		option(&c)
	}

	return &c, nil
}

// Login authenticates with the account email and password. The session token is returned in the
// x-tidepool-session-token response header and the user ID in the response body.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	rq, err := http.NewRequest(http.MethodPost, c.api+"/auth/login", nil)
	if err != nil {
		return nil, err
	}

	rq.SetBasicAuth(email, password)

	response, body, err := c.do(ctx, rq)
	if err != nil {
		return nil, apperr.NewTransportError(err, "login")
	}

	if !ok(response) {
		return nil, apperr.NewAuthError(nil, "login failed (%v)", response.Status)
	}

	token := response.Header.Get(SESSION_TOKEN)
	if token == "" {
		return nil, apperr.NewAuthError(nil, "login response missing %v header", SESSION_TOKEN)
	}

	var reply struct {
		UserID string `json:"userid"`
	}

	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, apperr.NewAuthError(err, "invalid login response")
	} else if reply.UserID == "" {
		return nil, apperr.NewAuthError(nil, "login response missing 'userid'")
	}

	c.log.Info("logged in", zap.String("userid", reply.UserID))

	return &Session{
		Token:  token,
		UserID: reply.UserID,
	}, nil
}

// Refresh renews the session token. The returned session has the renewed token if the server
// issued one, otherwise it is a copy of the original session.
func (c *Client) Refresh(ctx context.Context, session *Session) (*Session, error) {
	if session == nil {
		return nil, apperr.NewAuthError(nil, "not logged in")
	}

	rq, err := c.authorised(session, http.MethodGet, c.api+"/auth/login", nil)
	if err != nil {
		return nil, err
	}

	response, _, err := c.do(ctx, rq)
	if err != nil {
		return nil, apperr.NewTransportError(err, "refresh")
	}

	if !ok(response) {
		return nil, apperr.NewAuthError(nil, "session refresh failed (%v)", response.Status)
	}

	refreshed := *session
	if token := response.Header.Get(SESSION_TOKEN); token != "" {
		refreshed.Token = token
	}

	return &refreshed, nil
}

// Groups returns the groups the logged in user has access to, keyed by group user ID.
func (c *Client) Groups(ctx context.Context, session *Session) (map[string]map[string]any, error) {
	if session == nil {
		return nil, apperr.NewAuthError(nil, "not logged in")
	}

	rq, err := c.authorised(session, http.MethodGet, c.api+"/access/groups/"+url.PathEscape(session.UserID), nil)
	if err != nil {
		return nil, err
	}

	response, body, err := c.do(ctx, rq)
	if err != nil {
		return nil, apperr.NewTransportError(err, "get groups")
	}

	if !ok(response) {
		return nil, fmt.Errorf("error retrieving groups (%v)", response.Status)
	}

	groups := map[string]map[string]any{}
	if err := json.Unmarshal(body, &groups); err != nil {
		return nil, fmt.Errorf("invalid groups response (%w)", err)
	}

	return groups, nil
}

// Logout invalidates the session token. Only transport errors are returned, an unexpected HTTP
// status is logged.
func (c *Client) Logout(ctx context.Context, session *Session) error {
	if session == nil {
		return nil
	}

	rq, err := c.authorised(session, http.MethodPost, c.api+"/auth/logout", nil)
	if err != nil {
		return err
	}

	response, _, err := c.do(ctx, rq)
	if err != nil {
		return apperr.NewTransportError(err, "logout")
	}

	if !ok(response) {
		c.log.Warn("logout failed", zap.String("status", response.Status))
	} else {
		c.log.Info("logged out")
	}

	return nil
}

func (c *Client) authorised(session *Session, method, url string, body io.Reader) (*http.Request, error) {
	rq, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, err
	}

	rq.Header.Set(SESSION_TOKEN, session.Token)

	return rq, nil
}

func (c *Client) do(ctx context.Context, rq *http.Request) (*http.Response, []byte, error) {
	c.log.Debug("request", zap.String("method", rq.Method), zap.String("url", rq.URL.String()))

	response, err := ctxhttp.Do(ctx, c.client, rq)
	if err != nil {
		return nil, nil, err
	}

	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, nil, err
	}

	c.log.Debug("response", zap.String("url", rq.URL.String()), zap.String("status", response.Status))

	return response, body, nil
}

func ok(response *http.Response) bool {
	return response.StatusCode >= 200 && response.StatusCode < 300
}
