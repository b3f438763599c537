package reddit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

type fakeReddit struct {
	mu         sync.Mutex
	approved   []string
	submitted  []map[string]string
	submitBody string
	approveErr int
	tokenFail  bool
}

func (f *fakeReddit) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/access_token", func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "newsbot/1.0" {
			t.Errorf("token request user agent = %q", ua)
		}
		id, secret, ok := r.BasicAuth()
		if !ok || id != "cid" || secret != "csecret" {
			t.Errorf("unexpected basic auth: %q %q %v", id, secret, ok)
		}
		r.ParseForm()
		if r.Form.Get("grant_type") != "password" || r.Form.Get("username") != "bot" || r.Form.Get("password") != "pw" {
			t.Errorf("unexpected token form: %v", r.Form)
		}
		if f.tokenFail {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok","token_type":"bearer","expires_in":3600,"scope":"*"}`))
	})
	mux.HandleFunc("POST /api/submit", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("submit authorization = %q", got)
		}
		if ua := r.Header.Get("User-Agent"); ua != "newsbot/1.0" {
			t.Errorf("submit user agent = %q", ua)
		}
		r.ParseForm()
		f.mu.Lock()
		f.submitted = append(f.submitted, map[string]string{
			"sr":    r.Form.Get("sr"),
			"kind":  r.Form.Get("kind"),
			"title": r.Form.Get("title"),
			"url":   r.Form.Get("url"),
		})
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		if f.submitBody != "" {
			w.Write([]byte(f.submitBody))
			return
		}
		w.Write([]byte(`{"json":{"errors":[],"data":{"id":"abc123","name":"t3_abc123","url":"https://www.reddit.com/r/news/comments/abc123/"}}}`))
	})
	mux.HandleFunc("POST /api/approve", func(w http.ResponseWriter, r *http.Request) {
		if f.approveErr != 0 {
			w.WriteHeader(f.approveErr)
			w.Write([]byte(`{"message":"Forbidden","error":403}`))
			return
		}
		r.ParseForm()
		f.mu.Lock()
		f.approved = append(f.approved, r.Form.Get("id"))
		f.mu.Unlock()
		w.Write([]byte(`{}`))
	})
	return mux
}

func testConfig(srv *httptest.Server) Config {
	return Config{
		Credentials: Credentials{
			UserAgent:    "newsbot/1.0",
			ClientID:     "cid",
			ClientSecret: "csecret",
			Username:     "bot",
			Password:     "pw",
		},
		TokenURL: srv.URL + "/api/v1/access_token",
		BaseURL:  srv.URL,
	}
}

func TestSubmitAndApprove(t *testing.T) {
	fake := &fakeReddit{}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	ctx := context.Background()
	session, err := Authenticate(ctx, testConfig(srv))
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	sub, err := session.Subreddit("r/news").SubmitLink(ctx, LinkPost{Title: "Hello | example.com #a #b", URL: "https://example.com/a"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if sub.Name != "t3_abc123" || sub.ID != "abc123" {
		t.Errorf("unexpected submission: %+v", sub)
	}
	if len(fake.submitted) != 1 {
		t.Fatalf("expected 1 submission, got %d", len(fake.submitted))
	}
	got := fake.submitted[0]
	if got["sr"] != "news" || got["kind"] != "link" || got["url"] != "https://example.com/a" {
		t.Errorf("unexpected submit form: %v", got)
	}

	if err := sub.Approve(ctx); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if len(fake.approved) != 1 || fake.approved[0] != "t3_abc123" {
		t.Errorf("unexpected approvals: %v", fake.approved)
	}
}

func TestAuthenticate_Failure(t *testing.T) {
	fake := &fakeReddit{tokenFail: true}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	if _, err := Authenticate(context.Background(), testConfig(srv)); err == nil {
		t.Fatal("expected authentication error")
	}
}

func TestSubmitLink_APIErrors(t *testing.T) {
	fake := &fakeReddit{submitBody: `{"json":{"errors":[["SUBREDDIT_NOEXIST","that subreddit doesn't exist","sr"]]}}`}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	ctx := context.Background()
	session, err := Authenticate(ctx, testConfig(srv))
	if err != nil {
		t.Fatal(err)
	}

	_, err = session.Subreddit("missing").SubmitLink(ctx, LinkPost{Title: "t", URL: "https://example.com"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Op != "submit" || len(apiErr.Errors) != 1 || apiErr.Errors[0][0] != "SUBREDDIT_NOEXIST" {
		t.Errorf("unexpected api error: %+v", apiErr)
	}
}

func TestApprove_Forbidden(t *testing.T) {
	fake := &fakeReddit{approveErr: http.StatusForbidden}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	ctx := context.Background()
	session, err := Authenticate(ctx, testConfig(srv))
	if err != nil {
		t.Fatal(err)
	}
	sub, err := session.Subreddit("news").SubmitLink(ctx, LinkPost{Title: "t", URL: "https://example.com"})
	if err != nil {
		t.Fatal(err)
	}

	err = sub.Approve(ctx)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 APIError, got %v", err)
	}
}
