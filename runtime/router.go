package runtime

import (
	"log/slog"

	"chat-server/contract"
	"chat-server/domain"
)

// Censor masks forbidden words in a message body. The boolean reports
// whether anything was masked.
type Censor interface {
	Censor(original string) (string, bool)
}

// Router resolves recipients through the registry and writes formatted
// lines to their connection handles. Delivery is fire-and-forget: no ack,
// no retry, no queueing. A recipient whose write fails is logged and
// skipped; the sender is never told, and the remaining recipients still
// get their copy. Only a failed write to the sender's own connection
// surfaces as an error, because that session is the caller's to tear down.
type Router struct {
	log      *slog.Logger
	registry contract.IRegistry
	censor   Censor // nil when moderation is disabled
}

func NewRouter(log *slog.Logger, registry contract.IRegistry, censor Censor) *Router {
	return &Router{log: log, registry: registry, censor: censor}
}

// Broadcast delivers text to every member of the channel except the
// sender. Recipient handles are resolved under the registry lock, the
// writes happen outside it. Silent no-op when the channel doesn't exist.
func (r *Router) Broadcast(senderNick, channel, text string) {
	text = r.moderate(text)
	recipients := r.registry.Recipients(channel, senderNick)
	if len(recipients) == 0 {
		return
	}

	line := domain.FormatChannelMessage(channel, senderNick, text)
	for _, conn := range recipients {
		if err := conn.WriteLine(line); err != nil {
			r.log.Warn("Failed to deliver channel message",
				"channel", channel,
				"conn", conn.ID(),
				"error", err)
		}
	}
}

// SendPrivate delivers text to a single nickname. An unknown target is
// answered with a "not found" line on the sender's own connection; the
// returned error is non-nil only when that write fails.
func (r *Router) SendPrivate(sender contract.Conn, senderNick, targetNick, text string) error {
	target, ok := r.registry.Lookup(targetNick)
	if !ok {
		return sender.WriteLine(domain.ReplyUserNotFound(targetNick))
	}

	text = r.moderate(text)
	if err := target.WriteLine(domain.FormatPrivateMessage(senderNick, text)); err != nil {
		r.log.Warn("Failed to deliver private message",
			"target", targetNick,
			"conn", target.ID(),
			"error", err)
	}
	return nil
}

func (r *Router) moderate(text string) string {
	if r.censor == nil {
		return text
	}
	masked, _ := r.censor.Censor(text)
	return masked
}
