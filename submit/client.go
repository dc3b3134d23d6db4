// Package submit sends finalized rhythm patterns to the verification server.
package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"

	"go-rhythm/debug"
	"go-rhythm/rhythm"
)

// SessionCookie is set by the server on login and signup
const SessionCookie = "token"

// Server routes
const (
	PathSignup         = "/auth/signup"
	PathLogin          = "/auth/login"
	PathChangePassword = "/change-password"
	PathLogout         = "/logout"
)

// Result is a successful server answer
type Result struct {
	Message string
}

// Client talks to the verification server. It keeps the session cookie
// between calls, so ChangePassword works after Login or Signup.
type Client struct {
	base *url.URL
	http *http.Client
}

// New creates a client for baseURL
func New(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url %q: scheme must be http or https", baseURL)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{
		base: u,
		http: &http.Client{Jar: jar, Timeout: timeout},
	}, nil
}

// BaseURL returns the server address
func (c *Client) BaseURL() string { return c.base.String() }

// LoggedIn reports whether a session cookie is held
func (c *Client) LoggedIn() bool {
	for _, ck := range c.http.Jar.Cookies(c.base) {
		if ck.Name == SessionCookie && ck.Value != "" {
			return true
		}
	}
	return false
}

// Signup enrolls a new user with their rhythm
func (c *Client) Signup(ctx context.Context, username, email string, p rhythm.Pattern) (*Result, error) {
	form, err := patternForm(p)
	if err != nil {
		return nil, err
	}
	form.Set("username", username)
	form.Set("email", email)
	return c.postForm(ctx, PathSignup, form, "User created successfully.",
		"Signup failed. The username may already exist.")
}

// Login authenticates with a reproduced rhythm
func (c *Client) Login(ctx context.Context, username string, p rhythm.Pattern) (*Result, error) {
	form, err := patternForm(p)
	if err != nil {
		return nil, err
	}
	form.Set("username", username)
	return c.postForm(ctx, PathLogin, form, "Login successful!",
		"Invalid username or rhythm pattern.")
}

type changeRequest struct {
	Old rhythm.Pattern `json:"old_rhythm_pattern"`
	New rhythm.Pattern `json:"new_rhythm_pattern"`
}

// ChangePassword replaces the rhythm of the logged-in user
func (c *Client) ChangePassword(ctx context.Context, old, next rhythm.Pattern) (*Result, error) {
	body, err := json.Marshal(changeRequest{Old: old, New: next})
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With("encode change request"))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(PathChangePassword), bytes.NewReader(body))
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With("build request"))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, msg, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode/100 != 2 {
		return nil, statusError(PathChangePassword, resp.StatusCode, msg, "")
	}
	return &Result{Message: orDefault(msg, "Password changed successfully!")}, nil
}

// Logout ends the session. The server answers with a redirect, which is not
// followed. The local session cookie is dropped even when the server cannot
// be reached.
func (c *Client) Logout(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(PathLogout), nil)
	if err != nil {
		return fault.Wrap(err, fmsg.With("build request"))
	}
	noFollow := *c.http
	noFollow.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	resp, msg, err := c.send(&noFollow, req)
	c.clearSession()
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return statusError(PathLogout, resp.StatusCode, msg, "")
	}
	return nil
}

// clearSession expires the session cookie in the jar
func (c *Client) clearSession() {
	c.http.Jar.SetCookies(c.base, []*http.Cookie{
		{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1},
	})
}

func patternForm(p rhythm.Pattern) (url.Values, error) {
	if p == nil {
		p = rhythm.Pattern{}
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With("encode pattern"))
	}
	return url.Values{"rhythmPattern": {string(data)}}, nil
}

// postForm submits a form. The server answers these with a page whether or
// not it accepted them; a fresh session cookie is what marks success.
func (c *Client) postForm(ctx context.Context, path string, form url.Values, okMsg, failMsg string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With("build request"))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, msg, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode/100 != 2 {
		return nil, statusError(path, resp.StatusCode, msg, failMsg)
	}
	if !hasSession(resp) {
		debug.Log("submit", "%s: no session issued", path)
		return nil, fault.New(path+": rejected",
			fmsg.WithDesc(path+": rejected", orDefault(msg, failMsg)),
			ftag.With(ftag.Unauthenticated),
		)
	}
	return &Result{Message: orDefault(msg, okMsg)}, nil
}

// do sends req and reads the JSON message of the reply, if any
func (c *Client) do(req *http.Request) (*http.Response, string, error) {
	return c.send(c.http, req)
}

func (c *Client) send(hc *http.Client, req *http.Request) (*http.Response, string, error) {
	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		return nil, "", fault.Wrap(err,
			fmsg.WithDesc(strings.ToLower(req.Method)+" "+req.URL.Path, "Could not reach the server. Please try again."),
			ftag.With(ftag.Internal),
		)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, "", fault.Wrap(err,
			fmsg.WithDesc("read response", "The server response was cut short."),
			ftag.With(ftag.Internal),
		)
	}
	debug.Log("submit", "%s %s -> %d in %s", req.Method, req.URL.Path, resp.StatusCode, time.Since(start))
	return resp, jsonMessage(resp.Header.Get("Content-Type"), body), nil
}

func (c *Client) endpoint(path string) string {
	return c.base.JoinPath(path).String()
}

func hasSession(resp *http.Response) bool {
	for _, ck := range resp.Cookies() {
		if ck.Name == SessionCookie && ck.Value != "" {
			return true
		}
	}
	return false
}

func jsonMessage(contentType string, body []byte) string {
	mt, _, _ := mime.ParseMediaType(contentType)
	if mt != "application/json" {
		return ""
	}
	var reply struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &reply); err != nil {
		return ""
	}
	return reply.Message
}

// statusError tags a non-2xx reply by its status code
func statusError(path string, code int, msg, fallback string) error {
	kind := ftag.Internal
	switch code {
	case http.StatusBadRequest:
		kind = ftag.InvalidArgument
	case http.StatusUnauthorized:
		kind = ftag.Unauthenticated
	case http.StatusForbidden:
		kind = ftag.PermissionDenied
	case http.StatusNotFound:
		kind = ftag.NotFound
	}
	if fallback == "" {
		fallback = fmt.Sprintf("The server could not handle the request (%d %s).", code, http.StatusText(code))
	}
	internal := fmt.Sprintf("%s: status %d", path, code)
	return fault.New(internal,
		fmsg.WithDesc(internal, orDefault(msg, fallback)),
		ftag.With(kind),
	)
}

func orDefault(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
