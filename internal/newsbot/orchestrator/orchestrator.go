// Package orchestrator runs one tick of the bot: fetch breaking news per
// country, post the first usable article, stop.
package orchestrator

import (
	"context"
	"errors"
	"iter"
	"log/slog"

	"github.com/RobinCoderZhao/newsbot/internal/newsbot/formatter"
	"github.com/RobinCoderZhao/newsbot/internal/newsbot/publisher"
	"github.com/RobinCoderZhao/newsbot/internal/newsbot/sources"
	"github.com/RobinCoderZhao/newsbot/internal/newsbot/store"
	"github.com/RobinCoderZhao/newsbot/pkg/notify"
)

// Publisher posts a formatted link.
type Publisher interface {
	Publish(ctx context.Context, title, url string) (publisher.Result, error)
}

// Recorder keeps the publish history.
type Recorder interface {
	RecordPost(ctx context.Context, p store.Post) error
}

// Announcer tells other channels about a new post.
type Announcer interface {
	SendAll(ctx context.Context, msg notify.Message) error
}

// Outcome summarises a tick.
type Outcome string

const (
	OutcomePosted        Outcome = "posted"
	OutcomePublishFailed Outcome = "publish_failed"
	OutcomeNoArticle     Outcome = "no_article"
)

// Candidate is an article together with the country it was fetched for.
type Candidate struct {
	Country string
	Article sources.Article
}

// Config holds the runner's fixed inputs.
type Config struct {
	Countries []string
	Subreddit string
}

// Runner executes ticks.
type Runner struct {
	config    Config
	source    sources.Source
	publisher Publisher
	recorder  Recorder
	announcer Announcer
	logger    *slog.Logger
}

// Option configures optional collaborators of a Runner.
type Option func(*Runner)

// WithRecorder stores every publish attempt.
func WithRecorder(r Recorder) Option {
	return func(rn *Runner) { rn.recorder = r }
}

// WithAnnouncer announces successful posts.
func WithAnnouncer(a Announcer) Option {
	return func(rn *Runner) { rn.announcer = a }
}

// NewRunner creates a runner over the given source and publisher.
func NewRunner(cfg Config, src sources.Source, pub Publisher, opts ...Option) *Runner {
	r := &Runner{
		config:    cfg,
		source:    src,
		publisher: pub,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Candidates lazily yields articles country by country, in configured order
// and then provider order. A country is only fetched once the consumer has
// asked for more than the previous countries produced. Fetch failures are
// logged and contribute no candidates.
func (r *Runner) Candidates(ctx context.Context) iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		for _, country := range r.config.Countries {
			if ctx.Err() != nil {
				return
			}

			r.logger.Info("fetching breaking news 🟡", "source", r.source.Name(), "country", country)
			articles, err := r.source.Fetch(ctx, country)
			if err != nil {
				r.logger.Error("error fetching breaking news 🔴", "country", country, "error", err)
				continue
			}
			r.logger.Info("breaking news fetched successfully 🟢", "country", country, "count", len(articles))

			for _, a := range articles {
				if !yield(Candidate{Country: country, Article: a}) {
					return
				}
			}
		}
	}
}

// Run executes one tick. At most one article is published. Publish failures
// end the tick and are reported through the Outcome only; the returned error
// is non-nil only when ctx was cancelled before an article was found.
func (r *Runner) Run(ctx context.Context) (Outcome, error) {
	r.logger.Info("fetching and posting breaking news 🟡", "countries", r.config.Countries)

	for c := range r.Candidates(ctx) {
		post, err := formatter.Format(c.Article)
		if err != nil {
			r.logger.Error("skipping article with malformed link 🔴", "country", c.Country, "title", c.Article.Title, "error", err)
			continue
		}
		r.logger.Info("formatted Reddit post 🟡", "title", post.Title, "url", post.URL)

		res, err := r.publisher.Publish(ctx, post.Title, post.URL)
		r.record(ctx, c, post, res, err)
		if err != nil {
			r.logger.Error("error posting to Reddit 🔴", "title", post.Title, "error", err)
			return OutcomePublishFailed, nil
		}

		r.announce(ctx, post, res)
		return OutcomePosted, nil
	}

	if err := ctx.Err(); err != nil {
		return OutcomeNoArticle, err
	}
	r.logger.Info("no new breaking news articles available to post 🟡")
	return OutcomeNoArticle, nil
}

// Tick runs one cycle; it has the scheduler job signature.
func (r *Runner) Tick(ctx context.Context) error {
	outcome, err := r.Run(ctx)
	r.logger.Debug("tick finished", "outcome", outcome)
	return err
}

func (r *Runner) record(ctx context.Context, c Candidate, post formatter.Post, res publisher.Result, pubErr error) {
	if r.recorder == nil {
		return
	}
	entry := store.Post{
		Title:    post.Title,
		URL:      post.URL,
		Country:  c.Country,
		Fullname: res.Fullname,
		Status:   store.StatusPosted,
	}
	if pubErr != nil {
		entry.Error = pubErr.Error()
		entry.Status = store.StatusFailed
		var pe *publisher.PublishError
		if errors.As(pubErr, &pe) && pe.Stage == publisher.StageApprove {
			entry.Status = store.StatusUnapproved
		}
	}
	if err := r.recorder.RecordPost(ctx, entry); err != nil {
		r.logger.Warn("failed to record post history", "error", err)
	}
}

func (r *Runner) announce(ctx context.Context, post formatter.Post, res publisher.Result) {
	if r.announcer == nil {
		return
	}
	msg := notify.PostPublished(r.config.Subreddit, post.Title, post.URL, res.URL)
	if err := r.announcer.SendAll(ctx, msg); err != nil {
		r.logger.Warn("failed to announce post", "error", err)
	}
}
