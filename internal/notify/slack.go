package notify

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/neoforge-dev/synapse-sub010/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/slack-go/slack"
)

const defaultChatDomain = "hooks.slack.com"

// ChatWebhookProvider posts color-coded attachment messages to a
// Slack-style incoming webhook. The webhook host must belong to the
// expected provider domain; override it per target with
// config["domain"] for self-hosted gateways.
type ChatWebhookProvider struct {
	client *http.Client
	log    *logrus.Logger
}

func NewChatWebhookProvider(logger *logrus.Logger) *ChatWebhookProvider {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ChatWebhookProvider{
		client: &http.Client{
			Timeout: webhookTotalTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: webhookConnectTimeout}).DialContext,
			},
		},
		log: logger,
	}
}

func (p *ChatWebhookProvider) Name() string { return ChannelChatWebhook }

func (p *ChatWebhookProvider) ValidateConfig(config map[string]string) error {
	raw, ok := config["url"]
	if !ok || raw == "" {
		return fmt.Errorf("chat-webhook target requires a url")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid chat-webhook url %q: %v", raw, err)
	}
	if u.Scheme != "https" {
		return fmt.Errorf("chat-webhook url %q must use https", raw)
	}
	domain := config["domain"]
	if domain == "" {
		domain = defaultChatDomain
	}
	if u.Host != domain && !strings.HasSuffix(u.Host, "."+domain) {
		return fmt.Errorf("chat-webhook host %q does not match expected domain %q", u.Host, domain)
	}
	return nil
}

func (p *ChatWebhookProvider) Send(event models.AlertEvent, target models.NotificationTarget) bool {
	fields := make([]slack.AttachmentField, 0, len(event.MetricValues)+2)

	names := make([]string, 0, len(event.MetricValues))
	for name := range event.MetricValues {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fields = append(fields, slack.AttachmentField{
			Title: name,
			Value: fmt.Sprintf("%.2f", event.MetricValues[name]),
			Short: true,
		})
	}
	fields = append(fields, slack.AttachmentField{
		Title: "Severity",
		Value: string(event.Severity),
		Short: true,
	})
	if len(event.Tags) > 0 {
		fields = append(fields, slack.AttachmentField{
			Title: "Tags",
			Value: strings.Join(event.Tags, ", "),
			Short: true,
		})
	}

	msg := &slack.WebhookMessage{
		IconEmoji: severityEmoji(event),
		Attachments: []slack.Attachment{
			{
				Color:  severityColor(event),
				Title:  fmt.Sprintf("%s: %s", event.State, event.AlertName),
				Text:   event.Description,
				Fields: fields,
				Footer: "Synapse Monitoring",
				Ts:     json.Number(strconv.FormatInt(event.Timestamp.Unix(), 10)),
			},
		},
	}

	if err := slack.PostWebhookCustomHTTP(target.Config["url"], p.client, msg); err != nil {
		p.log.WithError(err).WithField("alert", event.AlertName).Warn("chat-webhook delivery failed")
		return false
	}
	return true
}

func severityColor(event models.AlertEvent) string {
	if event.State == models.AlertStateResolved {
		return "#36a64f"
	}
	switch event.Severity {
	case models.SeverityCritical:
		return "#ff0000"
	case models.SeverityHigh:
		return "#ffa500"
	case models.SeverityMedium:
		return "#ffcc00"
	default:
		return "#36a64f"
	}
}

func severityEmoji(event models.AlertEvent) string {
	if event.State == models.AlertStateResolved {
		return ":white_check_mark:"
	}
	switch event.Severity {
	case models.SeverityCritical:
		return ":red_circle:"
	case models.SeverityHigh, models.SeverityMedium:
		return ":warning:"
	default:
		return ":information_source:"
	}
}
