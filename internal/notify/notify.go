// Package notify sends run results to shoutrrr notification URLs, such
// as "ntfy://ntfy.sh/topic" or "telegram://token@telegram?chats=123".
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/containrrr/shoutrrr"
	shoutrrrtypes "github.com/containrrr/shoutrrr/pkg/types"
)

// Title is the notification title.
const Title = "mediaqueue"

var ErrInvalidURI = errors.New("invalid URI")

// Notifier fans a message out to every configured URL.
type Notifier struct {
	uris []string
}

// New validates uris and returns a Notifier for them.
func New(uris []string) (*Notifier, error) {
	n := &Notifier{}
	for _, uri := range uris {
		if uri == "" {
			continue
		}
		if _, err := url.Parse(uri); err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidURI, uri)
		}
		n.uris = append(n.uris, uri)
	}
	return n, nil
}

// Enabled reports whether there is anywhere to send to.
func (n *Notifier) Enabled() bool {
	return n != nil && len(n.uris) > 0
}

// Sendf formats and sends a message.
func (n *Notifier) Sendf(ctx context.Context, f string, a ...any) error {
	return n.Send(ctx, fmt.Sprintf(f, a...))
}

// Send delivers message to every URL. Errors from individual services
// are joined.
func (n *Notifier) Send(ctx context.Context, message string) error {
	if !n.Enabled() {
		return nil
	}

	sender, err := shoutrrr.CreateSender(n.uris...)
	if err != nil {
		return fmt.Errorf("create sender: %w", err)
	}

	params := &shoutrrrtypes.Params{}
	params.SetTitle(Title)

	if err := errors.Join(sender.Send(message, params)...); err != nil {
		return fmt.Errorf("send notifications: %w", err)
	}
	slog.DebugContext(ctx, "sent notification", "targets", len(n.uris))
	return nil
}
