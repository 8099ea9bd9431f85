package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/peopleforge/peopleforge/modules/onboarding/domain/aggregates/session"
	"github.com/peopleforge/peopleforge/pkg/application"
)

// Notifier delivers the welcome message. Delivery outcome and retry policy
// belong to the mail subsystem; this handler only triggers it.
type Notifier interface {
	SendWelcome(email, fullName string) error
}

type logNotifier struct {
	log *logrus.Logger
}

func (n *logNotifier) SendWelcome(email, fullName string) error {
	n.log.WithFields(logrus.Fields{
		"email":     email,
		"full_name": fullName,
	}).Info("welcome notification queued")
	return nil
}

type WelcomeHandler struct {
	notifier Notifier
	log      *logrus.Logger
}

// RegisterWelcomeHandler subscribes to account-provisioned events. A nil
// notifier falls back to log-only delivery.
func RegisterWelcomeHandler(app application.Application, notifier Notifier) *WelcomeHandler {
	if notifier == nil {
		notifier = &logNotifier{log: app.Logger()}
	}
	handler := &WelcomeHandler{notifier: notifier, log: app.Logger()}
	app.EventPublisher().Subscribe(handler.onAccountProvisioned)
	return handler
}

// onAccountProvisioned is fire-and-forget: a notification failure never
// touches the confirm result.
func (h *WelcomeHandler) onAccountProvisioned(event session.AccountProvisionedEvent) {
	if err := h.notifier.SendWelcome(event.Result.Email(), event.Result.FullName()); err != nil {
		h.log.WithError(err).WithFields(logrus.Fields{
			"session_id": event.SessionID,
			"row":        event.Row,
		}).Warn("welcome notification failed")
	}
}
