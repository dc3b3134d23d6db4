package submit

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"

	"go-rhythm/rhythm"
)

var testPattern = rhythm.Pattern{
	{Key: "Q", Note: "C4", Delay: 0},
	{Key: "E", Note: "D4", Delay: 400},
	{Key: "T", Note: "E4", Delay: 250},
}

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, 5*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func writeJSON(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": msg})
}

func TestNewRejectsBadURL(t *testing.T) {
	if _, err := New("localhost:5000", time.Second); err == nil {
		t.Fatal("expected error for url without scheme")
	}
}

func TestLoginThenChangePassword(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		if r.FormValue("username") != "ada" {
			t.Errorf("username = %q", r.FormValue("username"))
		}
		var p rhythm.Pattern
		if err := json.Unmarshal([]byte(r.FormValue("rhythmPattern")), &p); err != nil {
			t.Errorf("rhythmPattern: %v", err)
		}
		if len(p) != 3 || p[1].Note != "D4" || p[1].Delay != 400 {
			t.Errorf("pattern = %v", p)
		}
		http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "jwt", Path: "/"})
		w.Write([]byte("<html>Login successful!</html>"))
	})
	mux.HandleFunc("POST /change-password", func(w http.ResponseWriter, r *http.Request) {
		ck, err := r.Cookie(SessionCookie)
		if err != nil || ck.Value != "jwt" {
			writeJSON(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		var req struct {
			Old []rhythm.Beat `json:"old_rhythm_pattern"`
			New []rhythm.Beat `json:"new_rhythm_pattern"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Old) != 3 || len(req.New) != 3 {
			writeJSON(w, http.StatusBadRequest, "Old and new rhythm patterns are required.")
			return
		}
		writeJSON(w, http.StatusOK, "Password changed successfully!")
	})
	c := newTestClient(t, mux)

	if c.LoggedIn() {
		t.Fatal("fresh client should have no session")
	}
	res, err := c.Login(context.Background(), "ada", testPattern)
	if err != nil {
		t.Fatal(err)
	}
	if res.Message != "Login successful!" || !c.LoggedIn() {
		t.Fatalf("login: %+v loggedIn=%v", res, c.LoggedIn())
	}

	res, err = c.ChangePassword(context.Background(), testPattern, testPattern)
	if err != nil {
		t.Fatal(err)
	}
	if res.Message != "Password changed successfully!" {
		t.Fatalf("message = %q", res.Message)
	}
}

func TestLoginRejectedWithoutSession(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>Invalid username or rhythm pattern.</html>"))
	}))

	_, err := c.Login(context.Background(), "ada", testPattern)
	if err == nil {
		t.Fatal("expected error")
	}
	if ftag.Get(err) != ftag.Unauthenticated {
		t.Fatalf("tag = %s", ftag.Get(err))
	}
	if got := fmsg.GetIssue(err); got != "Invalid username or rhythm pattern." {
		t.Fatalf("issue = %q", got)
	}
}

func TestSignupSendsEmail(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != PathSignup || r.FormValue("email") != "ada@example.com" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "jwt", Path: "/"})
	}))

	res, err := c.Signup(context.Background(), "ada", "ada@example.com", testPattern)
	if err != nil {
		t.Fatal(err)
	}
	if res.Message != "User created successfully." {
		t.Fatalf("message = %q", res.Message)
	}
}

func TestStatusCodesAreTagged(t *testing.T) {
	tests := []struct {
		status int
		msg    string
		kind   ftag.Kind
	}{
		{http.StatusBadRequest, "Invalid old rhythm pattern.", ftag.InvalidArgument},
		{http.StatusUnauthorized, "Token expired. Please log in again.", ftag.Unauthenticated},
		{http.StatusNotFound, "User not found.", ftag.NotFound},
		{http.StatusInternalServerError, "An internal error occurred.", ftag.Internal},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.msg)
			}))
			_, err := c.ChangePassword(context.Background(), testPattern, testPattern)
			if err == nil {
				t.Fatal("expected error")
			}
			if ftag.Get(err) != tt.kind {
				t.Fatalf("tag = %s, want %s", ftag.Get(err), tt.kind)
			}
			if got := fmsg.GetIssue(err); got != tt.msg {
				t.Fatalf("issue = %q", got)
			}
		})
	}
}

func TestStatusWithoutMessage(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	_, err := c.ChangePassword(context.Background(), nil, nil)
	if got := fmsg.GetIssue(err); got != "The server could not handle the request (502 Bad Gateway)." {
		t.Fatalf("issue = %q", got)
	}
}

func TestUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.Login(context.Background(), "ada", testPattern)
	if err == nil {
		t.Fatal("expected error")
	}
	if ftag.Get(err) != ftag.Internal {
		t.Fatalf("tag = %s", ftag.Get(err))
	}
	if fmsg.GetIssue(err) != "Could not reach the server. Please try again." {
		t.Fatalf("issue = %q", fmsg.GetIssue(err))
	}
}

func TestCancelledContext(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Login(ctx, "ada", testPattern)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}

func TestLogoutDropsSession(t *testing.T) {
	var loggedOut bool
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "jwt", Path: "/"})
	})
	mux.HandleFunc("GET /logout", func(w http.ResponseWriter, r *http.Request) {
		if ck, err := r.Cookie(SessionCookie); err != nil || ck.Value != "jwt" {
			t.Errorf("logout sent without the session cookie")
		}
		loggedOut = true
		http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1})
		http.Redirect(w, r, "/", http.StatusFound)
	})
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		t.Error("redirect after logout should not be followed")
	})
	c := newTestClient(t, mux)

	if _, err := c.Login(context.Background(), "ada", testPattern); err != nil {
		t.Fatal(err)
	}
	if !c.LoggedIn() {
		t.Fatal("expected a session after login")
	}
	if err := c.Logout(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !loggedOut {
		t.Fatal("server logout not called")
	}
	if c.LoggedIn() {
		t.Fatal("session cookie kept after logout")
	}
}

func TestLogoutUnreachableStillDropsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "jwt", Path: "/"})
	}))
	c, err := New(srv.URL, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Login(context.Background(), "ada", testPattern); err != nil {
		t.Fatal(err)
	}
	srv.Close()

	err = c.Logout(context.Background())
	if ftag.Get(err) != ftag.Internal {
		t.Fatalf("err = %v", err)
	}
	if c.LoggedIn() {
		t.Fatal("session cookie kept after failed logout")
	}
}
