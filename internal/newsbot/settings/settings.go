// Package settings holds NewsBot's configuration. It is loaded once at
// startup and handed to each component's constructor.
package settings

import (
	"fmt"
	"strings"
	"time"

	"github.com/RobinCoderZhao/newsbot/internal/newsbot/scheduler"
	"github.com/RobinCoderZhao/newsbot/internal/newsbot/sources"
	"github.com/RobinCoderZhao/newsbot/pkg/config"
	"github.com/RobinCoderZhao/newsbot/pkg/notify"
	"github.com/RobinCoderZhao/newsbot/pkg/reddit"
	"github.com/RobinCoderZhao/newsbot/pkg/storage"
)

// NewsConfig configures the newsdata.io source.
type NewsConfig struct {
	APIKey    string        `yaml:"api_key" env:"NEWS_API_KEY"`
	BaseURL   string        `yaml:"base_url" env:"NEWS_API_URL"`
	Countries []string      `yaml:"countries" env:"NEWS_COUNTRIES"`
	Category  string        `yaml:"category"`
	Language  string        `yaml:"language"`
	Timeout   time.Duration `yaml:"timeout"`
}

// RedditConfig configures the Reddit account and target subreddit.
type RedditConfig struct {
	UserAgent    string        `yaml:"user_agent" env:"REDDIT_USER_AGENT"`
	ClientID     string        `yaml:"client_id" env:"REDDIT_CLIENT_ID"`
	ClientSecret string        `yaml:"client_secret" env:"REDDIT_CLIENT_SECRET"`
	Username     string        `yaml:"username" env:"REDDIT_USERNAME"`
	Password     string        `yaml:"password" env:"REDDIT_PASSWORD"`
	Subreddit    string        `yaml:"subreddit" env:"SUBREDDIT"`
	TokenURL     string        `yaml:"token_url"`
	APIBaseURL   string        `yaml:"api_base_url"`
	Timeout      time.Duration `yaml:"timeout"`
}

// NotifyConfig configures optional post announcements.
type NotifyConfig struct {
	Webhook  notify.WebhookConfig  `yaml:"webhook"`
	Telegram notify.TelegramConfig `yaml:"telegram"`
}

// Config holds all configuration for NewsBot.
type Config struct {
	News            NewsConfig     `yaml:"news"`
	Reddit          RedditConfig   `yaml:"reddit"`
	Schedule        string         `yaml:"schedule" env:"NEWSBOT_SCHEDULE"`
	RunOnStart      bool           `yaml:"run_on_start" env:"NEWSBOT_RUN_ON_START"`
	SkipOverlapping bool           `yaml:"skip_overlapping" env:"NEWSBOT_SKIP_OVERLAPPING"`
	History         storage.Config `yaml:"history"`
	Notify          NotifyConfig   `yaml:"notify"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		News: NewsConfig{
			BaseURL:   sources.DefaultNewsDataURL,
			Countries: []string{"us", "int"},
			Category:  "top",
			Language:  "en",
			Timeout:   10 * time.Second,
		},
		Reddit: RedditConfig{
			TokenURL:   reddit.DefaultTokenURL,
			APIBaseURL: reddit.DefaultBaseURL,
			Timeout:    30 * time.Second,
		},
		Schedule:   scheduler.DefaultSchedule,
		RunOnStart: true,
		History:    storage.Config{Driver: storage.SQLite},
	}
}

// Load builds the configuration from defaults, the optional YAML file at path
// and the environment, in that order of precedence.
func Load(path string) (Config, error) {
	cfg := Default()
	if err := config.LoadOrDefault(path, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every missing required setting at once.
func (c Config) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"NEWS_API_KEY", c.News.APIKey},
		{"REDDIT_USER_AGENT", c.Reddit.UserAgent},
		{"REDDIT_CLIENT_ID", c.Reddit.ClientID},
		{"REDDIT_CLIENT_SECRET", c.Reddit.ClientSecret},
		{"REDDIT_USERNAME", c.Reddit.Username},
		{"REDDIT_PASSWORD", c.Reddit.Password},
		{"SUBREDDIT", c.Reddit.Subreddit},
	}
	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	if len(c.News.Countries) == 0 {
		return fmt.Errorf("no news countries configured")
	}
	return nil
}

// NewsData returns the newsdata.io source configuration.
func (c Config) NewsData() sources.NewsDataConfig {
	return sources.NewsDataConfig{
		APIKey:   c.News.APIKey,
		BaseURL:  c.News.BaseURL,
		Category: c.News.Category,
		Language: c.News.Language,
		Timeout:  c.News.Timeout,
	}
}

// RedditClient returns the Reddit client configuration.
func (c Config) RedditClient() reddit.Config {
	return reddit.Config{
		Credentials: reddit.Credentials{
			UserAgent:    c.Reddit.UserAgent,
			ClientID:     c.Reddit.ClientID,
			ClientSecret: c.Reddit.ClientSecret,
			Username:     c.Reddit.Username,
			Password:     c.Reddit.Password,
		},
		TokenURL: c.Reddit.TokenURL,
		BaseURL:  c.Reddit.APIBaseURL,
		Timeout:  c.Reddit.Timeout,
	}
}
