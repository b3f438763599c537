// Package publisher posts formatted articles to a subreddit and approves them.
package publisher

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/RobinCoderZhao/newsbot/pkg/reddit"
)

// Stage names the step of a publish that failed.
type Stage string

const (
	StageAuthenticate Stage = "authenticate"
	StageSubmit       Stage = "submit"
	StageApprove      Stage = "approve"
)

// PublishError reports which step of a publish failed.
type PublishError struct {
	Stage Stage
	Err   error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish %s: %v", e.Stage, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

// Result describes a submitted post. It is filled in as soon as the submit
// succeeds, so a failed approval still reports the live post.
type Result struct {
	Fullname string
	URL      string
	Approved bool
}

// Publisher submits link posts to a single subreddit.
type Publisher struct {
	config    reddit.Config
	subreddit string
	logger    *slog.Logger
}

// NewPublisher creates a publisher for the given subreddit.
func NewPublisher(cfg reddit.Config, subreddit string) *Publisher {
	return &Publisher{
		config:    cfg,
		subreddit: subreddit,
		logger:    slog.Default(),
	}
}

// Publish authenticates, submits the link post and approves it. Every call
// opens a fresh session. A post whose approval fails stays submitted.
func (p *Publisher) Publish(ctx context.Context, title, url string) (Result, error) {
	p.logger.Info("attempting to post to Reddit 🟡", "subreddit", p.subreddit, "title", title)

	session, err := reddit.Authenticate(ctx, p.config)
	if err != nil {
		return Result{}, &PublishError{Stage: StageAuthenticate, Err: err}
	}

	sub, err := session.Subreddit(p.subreddit).SubmitLink(ctx, reddit.LinkPost{Title: title, URL: url})
	if err != nil {
		return Result{}, &PublishError{Stage: StageSubmit, Err: err}
	}
	res := Result{Fullname: sub.Name, URL: sub.URL}
	p.logger.Info("post published successfully on Reddit 🟢", "post", sub.Name, "url", sub.URL)

	if err := sub.Approve(ctx); err != nil {
		return res, &PublishError{Stage: StageApprove, Err: err}
	}
	res.Approved = true
	p.logger.Info("post approved successfully 🟢", "post", sub.Name)

	return res, nil
}
