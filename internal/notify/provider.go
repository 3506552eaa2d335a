package notify

import (
	"errors"

	"github.com/neoforge-dev/synapse-sub010/internal/models"
	"github.com/sirupsen/logrus"
)

// Channel names understood out of the box. Additional providers can be
// passed to NewDispatcher alongside these.
const (
	ChannelWebhook     = "webhook"
	ChannelChatWebhook = "chat-webhook"
	ChannelLog         = "log"
	ChannelEmail       = "email"
)

var ErrUnknownProvider = errors.New("unknown notification provider")

// Provider is one outbound notification transport. ValidateConfig runs
// at rule registration; Send is best effort and must never panic or
// block past its transport timeout — it reports failure by returning
// false.
type Provider interface {
	Name() string
	ValidateConfig(config map[string]string) error
	Send(event models.AlertEvent, target models.NotificationTarget) bool
}

// DefaultProviders builds the built-in provider set.
func DefaultProviders(logger *logrus.Logger) []Provider {
	return []Provider{
		NewWebhookProvider(logger),
		NewChatWebhookProvider(logger),
		NewLogProvider(logger),
		NewEmailProvider(logger),
	}
}
