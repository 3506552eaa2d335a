package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/neoforge-dev/synapse-sub010/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	webhookTotalTimeout   = 30 * time.Second
	webhookConnectTimeout = 10 * time.Second
	payloadSource         = "synapse-monitor"
)

// WebhookProvider POSTs a JSON payload to an arbitrary HTTP endpoint.
// Any non-2xx response is a delivery failure; there are no retries.
type WebhookProvider struct {
	client *http.Client
	log    *logrus.Logger
}

type webhookPayload struct {
	AlertName    string             `json:"alert_name"`
	Timestamp    time.Time          `json:"timestamp"`
	State        models.AlertState  `json:"state"`
	Severity     models.Severity    `json:"severity"`
	Description  string             `json:"description"`
	MetricValues map[string]float64 `json:"metric_values"`
	Tags         []string           `json:"tags"`
	Source       string             `json:"source"`
}

func NewWebhookProvider(logger *logrus.Logger) *WebhookProvider {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &WebhookProvider{
		client: &http.Client{
			Timeout: webhookTotalTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: webhookConnectTimeout}).DialContext,
			},
		},
		log: logger,
	}
}

func (p *WebhookProvider) Name() string { return ChannelWebhook }

func (p *WebhookProvider) ValidateConfig(config map[string]string) error {
	raw, ok := config["url"]
	if !ok || raw == "" {
		return fmt.Errorf("webhook target requires a url")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid webhook url %q: %v", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("webhook url %q must use http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("webhook url %q has no host", raw)
	}
	return nil
}

func (p *WebhookProvider) Send(event models.AlertEvent, target models.NotificationTarget) bool {
	payload := webhookPayload{
		AlertName:    event.AlertName,
		Timestamp:    event.Timestamp,
		State:        event.State,
		Severity:     event.Severity,
		Description:  event.Description,
		MetricValues: event.MetricValues,
		Tags:         event.Tags,
		Source:       payloadSource,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		p.log.WithError(err).WithField("alert", event.AlertName).Error("failed to marshal webhook payload")
		return false
	}

	resp, err := p.client.Post(target.Config["url"], "application/json", bytes.NewReader(body))
	if err != nil {
		p.log.WithError(err).WithField("alert", event.AlertName).Warn("webhook delivery failed")
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		p.log.WithFields(logrus.Fields{"alert": event.AlertName, "status": resp.StatusCode}).Warn("webhook endpoint returned error status")
		return false
	}
	return true
}
