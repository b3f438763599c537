// Package notify announces published posts on webhook and Telegram channels.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
)

// Channel represents a notification channel type.
type Channel string

const (
	ChannelTelegram Channel = "telegram"
	ChannelWebhook  Channel = "webhook"
)

// Message represents a notification message.
type Message struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	Format string `json:"format"` // "markdown", "plain"
	URL    string `json:"url,omitempty"`
}

// Notifier defines the interface for sending notifications.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
	Channel() Channel
}

// Dispatcher routes messages to the registered notification channels.
type Dispatcher struct {
	notifiers map[Channel]Notifier
	logger    *slog.Logger
}

// NewDispatcher creates a new notification dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		notifiers: make(map[Channel]Notifier),
		logger:    slog.Default(),
	}
}

// Register adds a notifier to the dispatcher.
func (d *Dispatcher) Register(n Notifier) {
	d.notifiers[n.Channel()] = n
}

// Len reports how many channels are registered.
func (d *Dispatcher) Len() int {
	return len(d.notifiers)
}

// Dispatch sends a message to the specified channels.
func (d *Dispatcher) Dispatch(ctx context.Context, channels []Channel, msg Message) error {
	var errs []error
	for _, ch := range channels {
		notifier, ok := d.notifiers[ch]
		if !ok {
			d.logger.Warn("notifier not registered", "channel", ch)
			continue
		}
		if err := notifier.Send(ctx, msg); err != nil {
			d.logger.Error("notification failed", "channel", ch, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", ch, err))
		} else {
			d.logger.Info("notification sent", "channel", ch, "title", msg.Title)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to send %d/%d notifications: %w", len(errs), len(channels), errs[0])
	}
	return nil
}

// SendAll sends a message to all registered channels.
func (d *Dispatcher) SendAll(ctx context.Context, msg Message) error {
	channels := make([]Channel, 0, len(d.notifiers))
	for ch := range d.notifiers {
		channels = append(channels, ch)
	}
	sort.Slice(channels, func(i, j int) bool { return channels[i] < channels[j] })
	return d.Dispatch(ctx, channels, msg)
}

// PostPublished builds the announcement for a new subreddit post.
func PostPublished(subreddit, title, articleURL, permalink string) Message {
	body := fmt.Sprintf("New post in r/%s\n%s", subreddit, articleURL)
	return Message{
		Title:  title,
		Body:   body,
		Format: "plain",
		URL:    permalink,
	}
}
