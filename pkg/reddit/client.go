// Package reddit is a small Reddit API client covering what a moderator bot
// needs: password-grant authentication, link submission and approval.
package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const (
	DefaultTokenURL = "https://www.reddit.com/api/v1/access_token"
	DefaultBaseURL  = "https://oauth.reddit.com"
)

// Credentials identifies a script-type Reddit app and the account it acts as.
type Credentials struct {
	UserAgent    string `yaml:"user_agent" json:"user_agent"`
	ClientID     string `yaml:"client_id" json:"client_id"`
	ClientSecret string `yaml:"client_secret" json:"client_secret"`
	Username     string `yaml:"username" json:"username"`
	Password     string `yaml:"password" json:"password"`
}

// Config holds the client configuration.
type Config struct {
	Credentials
	TokenURL string        `yaml:"token_url" json:"token_url"`
	BaseURL  string        `yaml:"base_url" json:"base_url"`
	Timeout  time.Duration `yaml:"timeout" json:"timeout"`
}

// Session is an authenticated Reddit API session.
type Session struct {
	http    *http.Client
	baseURL string
}

// Authenticate exchanges the account credentials for an access token and
// returns a session that signs every request with it.
func Authenticate(ctx context.Context, cfg Config) (*Session, error) {
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	base := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: &userAgentTransport{userAgent: cfg.UserAgent, inner: http.DefaultTransport},
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)

	oc := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  cfg.TokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}

	token, err := oc.PasswordCredentialsToken(ctx, cfg.Username, cfg.Password)
	if err != nil {
		return nil, fmt.Errorf("reddit token: %w", err)
	}

	client := oc.Client(ctx, token)
	client.Timeout = cfg.Timeout

	return &Session{
		http:    client,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}, nil
}

// Subreddit returns a handle for the named subreddit ("r/" prefix optional).
func (s *Session) Subreddit(name string) *Subreddit {
	return &Subreddit{session: s, name: strings.TrimPrefix(name, "r/")}
}

// Subreddit is a handle for one subreddit.
type Subreddit struct {
	session *Session
	name    string
}

func (sr *Subreddit) Name() string { return sr.name }

// LinkPost is a link submission.
type LinkPost struct {
	Title string
	URL   string
}

// Submission is a post created through the API.
type Submission struct {
	ID   string
	Name string // fullname, e.g. "t3_abc123"
	URL  string

	session *Session
}

type submitResponse struct {
	JSON struct {
		Errors [][]string `json:"errors"`
		Data   struct {
			ID   string `json:"id"`
			Name string `json:"name"`
			URL  string `json:"url"`
		} `json:"data"`
	} `json:"json"`
}

// SubmitLink creates a link post. Reposts of the same URL are allowed.
func (sr *Subreddit) SubmitLink(ctx context.Context, post LinkPost) (*Submission, error) {
	form := url.Values{
		"api_type": {"json"},
		"kind":     {"link"},
		"sr":       {sr.name},
		"title":    {post.Title},
		"url":      {post.URL},
		"resubmit": {"true"},
	}

	var resp submitResponse
	if err := sr.session.postForm(ctx, "submit", "/api/submit", form, &resp); err != nil {
		return nil, err
	}
	if len(resp.JSON.Errors) > 0 {
		return nil, &APIError{Op: "submit", Errors: resp.JSON.Errors}
	}
	if resp.JSON.Data.Name == "" {
		return nil, &APIError{Op: "submit", Message: "response carried no post id"}
	}

	return &Submission{
		ID:      resp.JSON.Data.ID,
		Name:    resp.JSON.Data.Name,
		URL:     resp.JSON.Data.URL,
		session: sr.session,
	}, nil
}

// Approve approves the submission as a moderator of its subreddit.
func (p *Submission) Approve(ctx context.Context) error {
	return p.session.postForm(ctx, "approve", "/api/approve", url.Values{"id": {p.Name}}, nil)
}

func (s *Session) postForm(ctx context.Context, op, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("reddit %s: create request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("reddit %s: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reddit %s: read body: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Op: op, StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("reddit %s: decode response: %w", op, err)
		}
	}
	return nil
}

// userAgentTransport stamps every request with the bot's User-Agent, which
// Reddit requires on both the token and the API hosts.
type userAgentTransport struct {
	userAgent string
	inner     http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.userAgent == "" {
		return t.inner.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", t.userAgent)
	return t.inner.RoundTrip(r)
}
