package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/junoathena/gateway-backend/internal/clients/mailer"
	"github.com/junoathena/gateway-backend/internal/platform/logger"
)

// MentorNotifier delivers best-effort notifications to the supervising
// mentor. Notify returns immediately; delivery runs in the background with
// a bounded timeout and failures are logged, never surfaced to the caller.
type MentorNotifier interface {
	Notify(payload map[string]any)
}

type mentorNotifier struct {
	log     *logger.Logger
	mail    mailer.Client
	timeout time.Duration
}

func NewMentorNotifier(baseLog *logger.Logger, mail mailer.Client) MentorNotifier {
	return &mentorNotifier{
		log:     baseLog.With("service", "MentorNotifier"),
		mail:    mail,
		timeout: 15 * time.Second,
	}
}

func (n *mentorNotifier) Notify(payload map[string]any) {
	if n.mail == nil {
		n.log.Debug("mentor mail relay not configured, notification dropped", "payload_type", payload["type"])
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()

		subject := "gateway notification"
		if t, ok := payload["type"].(string); ok && t != "" {
			subject = fmt.Sprintf("gateway notification: %s", t)
		}
		body, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			n.log.Warn("mentor notification payload not serializable", "error", err)
			return
		}
		if err := n.mail.Send(ctx, subject, string(body)); err != nil {
			n.log.Warn("mentor notification undelivered", "subject", subject, "error", err)
		}
	}()
}
