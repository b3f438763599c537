// NewsBot posts one breaking-news article per hour to a subreddit.
//
// Usage:
//
//	newsbot            # run now, then at minute 0 of every hour
//	newsbot once       # single run, then exit
//	newsbot format     # print the post title for an article
//	newsbot history    # list recorded publish attempts
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/RobinCoderZhao/newsbot/internal/newsbot/formatter"
	"github.com/RobinCoderZhao/newsbot/internal/newsbot/orchestrator"
	"github.com/RobinCoderZhao/newsbot/internal/newsbot/publisher"
	"github.com/RobinCoderZhao/newsbot/internal/newsbot/scheduler"
	"github.com/RobinCoderZhao/newsbot/internal/newsbot/settings"
	"github.com/RobinCoderZhao/newsbot/internal/newsbot/sources"
	"github.com/RobinCoderZhao/newsbot/internal/newsbot/store"
	"github.com/RobinCoderZhao/newsbot/pkg/config"
	"github.com/RobinCoderZhao/newsbot/pkg/notify"
	"github.com/RobinCoderZhao/newsbot/pkg/storage"
	"github.com/spf13/cobra"
)

var version = "dev"

type globalOptions struct {
	configPath string
	envFile    string
	verbose    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		slog.Error("newsbot failed 🔴", "error", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "newsbot",
		Short:         "Post breaking news to a subreddit every hour",
		Long:          "NewsBot fetches breaking news from newsdata.io, posts one article as a link post to a subreddit and approves it. It runs immediately and then at minute 0 of every hour until stopped.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(opts.verbose)
			return config.LoadDotEnv(opts.envFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(cmd.Context(), opts)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "newsbot.yaml", "YAML config file (optional)")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(onceCmd(opts))
	rootCmd.AddCommand(formatCmd())
	rootCmd.AddCommand(historyCmd(opts))
	rootCmd.AddCommand(versionCmd())
	return rootCmd
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func onceCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Run a single fetch-and-post cycle and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			bot, err := newBot(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer bot.Close()

			outcome, err := bot.runner.Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), outcome)
			return nil
		},
	}
}

func formatCmd() *cobra.Command {
	var article sources.Article

	cmd := &cobra.Command{
		Use:   "format",
		Short: "Print the Reddit post for an article without posting it",
		RunE: func(cmd *cobra.Command, args []string) error {
			post, err := formatter.Format(article)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), post.Title)
			fmt.Fprintln(cmd.OutOrStdout(), post.URL)
			return nil
		},
	}

	cmd.Flags().StringVar(&article.Title, "title", "", "article title")
	cmd.Flags().StringVar(&article.Link, "link", "", "article URL")
	cmd.Flags().StringVar(&article.Description, "description", "", "article description")
	cmd.MarkFlagRequired("link")
	return cmd
}

func historyCmd(opts *globalOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded publish attempts",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Reading the local log needs no API credentials.
			cfg, err := settings.Load(opts.configPath)
			if err != nil {
				return err
			}
			if cfg.History.DSN == "" {
				return fmt.Errorf("history is disabled: set NEWSBOT_HISTORY_DSN or history.dsn")
			}
			st, err := openHistory(cmd.Context(), cfg.History)
			if err != nil {
				return err
			}
			defer st.Close()

			posts, err := st.RecentPosts(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(posts) == 0 {
				fmt.Fprintln(out, "No posts recorded.")
				return nil
			}
			for _, p := range posts {
				fmt.Fprintf(out, "%s  %-10s  %-4s  %s\n", p.CreatedAt.Format("2006-01-02 15:04"), p.Status, p.Country, p.Title)
				if p.Error != "" {
					fmt.Fprintf(out, "    error: %s\n", p.Error)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to show")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "newsbot %s\n", version)
		},
	}
}

func loadConfig(opts *globalOptions) (settings.Config, error) {
	cfg, err := settings.Load(opts.configPath)
	if err != nil {
		return settings.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return settings.Config{}, err
	}
	return cfg, nil
}

func runDaemon(ctx context.Context, opts *globalOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	bot, err := newBot(ctx, cfg)
	if err != nil {
		return err
	}
	defer bot.Close()

	sched := scheduler.NewScheduler(scheduler.Options{
		RunOnStart:      cfg.RunOnStart,
		SkipOverlapping: cfg.SkipOverlapping,
	})
	if err := sched.Add(scheduler.Job{
		Name:     "breaking-news",
		Schedule: cfg.Schedule,
		Fn:       bot.runner.Tick,
	}); err != nil {
		return err
	}

	slog.Info("Reddit bot is running and scheduled jobs are set 🟢",
		"subreddit", cfg.Reddit.Subreddit, "schedule", cfg.Schedule, "countries", cfg.News.Countries)
	return sched.Start(ctx)
}

// bot bundles the runner with the resources it holds open.
type bot struct {
	runner  *orchestrator.Runner
	history *store.Store
}

func newBot(ctx context.Context, cfg settings.Config) (*bot, error) {
	var opts []orchestrator.Option
	b := &bot{}

	if cfg.History.DSN != "" {
		st, err := openHistory(ctx, cfg.History)
		if err != nil {
			return nil, err
		}
		b.history = st
		opts = append(opts, orchestrator.WithRecorder(st))
	}

	dispatcher := notify.NewDispatcher()
	if cfg.Notify.Webhook.URL != "" {
		dispatcher.Register(notify.NewWebhookNotifier(cfg.Notify.Webhook))
	}
	if cfg.Notify.Telegram.BotToken != "" && cfg.Notify.Telegram.ChannelID != "" {
		dispatcher.Register(notify.NewTelegramNotifier(cfg.Notify.Telegram))
	}
	if dispatcher.Len() > 0 {
		opts = append(opts, orchestrator.WithAnnouncer(dispatcher))
	}

	b.runner = orchestrator.NewRunner(
		orchestrator.Config{Countries: cfg.News.Countries, Subreddit: cfg.Reddit.Subreddit},
		sources.NewNewsDataSource(cfg.NewsData()),
		publisher.NewPublisher(cfg.RedditClient(), cfg.Reddit.Subreddit),
		opts...,
	)
	return b, nil
}

func (b *bot) Close() {
	if b.history != nil {
		if err := b.history.Close(); err != nil {
			slog.Warn("failed to close history store", "error", err)
		}
	}
}

func openHistory(ctx context.Context, cfg storage.Config) (*store.Store, error) {
	db, err := storage.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	st, err := store.New(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return st, nil
}
