package notify

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/neoforge-dev/synapse-sub010/internal/models"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// EmailProvider delivers alert transitions over SMTP. Target config
// keys: host, port, from, password, to (comma-separated recipients).
type EmailProvider struct {
	log *logrus.Logger
}

func NewEmailProvider(logger *logrus.Logger) *EmailProvider {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &EmailProvider{log: logger}
}

func (p *EmailProvider) Name() string { return ChannelEmail }

func (p *EmailProvider) ValidateConfig(config map[string]string) error {
	if config["host"] == "" {
		return fmt.Errorf("email target requires an smtp host")
	}
	if port := config["port"]; port != "" {
		if _, err := strconv.Atoi(port); err != nil {
			return fmt.Errorf("invalid smtp port %q", port)
		}
	}
	if config["from"] == "" {
		return fmt.Errorf("email target requires a from address")
	}
	if recipients(config) == nil {
		return fmt.Errorf("email target requires at least one recipient")
	}
	return nil
}

func (p *EmailProvider) Send(event models.AlertEvent, target models.NotificationTarget) bool {
	port := 587
	if raw := target.Config["port"]; raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			port = parsed
		}
	}
	dialer := gomail.NewDialer(target.Config["host"], port, target.Config["from"], target.Config["password"])

	m := gomail.NewMessage()
	m.SetHeader("From", target.Config["from"])
	m.SetHeader("To", recipients(target.Config)...)
	m.SetHeader("Subject", fmt.Sprintf("[%s] %s: %s", event.Severity, event.State, event.AlertName))
	m.SetBody("text/plain", emailBody(event))

	if err := dialer.DialAndSend(m); err != nil {
		p.log.WithError(err).WithField("alert", event.AlertName).Warn("email delivery failed")
		return false
	}
	return true
}

func recipients(config map[string]string) []string {
	var out []string
	for _, addr := range strings.Split(config["to"], ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

func emailBody(event models.AlertEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Alert: %s\nState: %s\nSeverity: %s\nTime: %s\n\n%s\n",
		event.AlertName, event.State, event.Severity,
		event.Timestamp.Format(time.RFC3339), event.Description)
	if len(event.MetricValues) > 0 {
		b.WriteString("\nMetric values:\n")
		for name, value := range event.MetricValues {
			fmt.Fprintf(&b, "  %s = %.2f\n", name, value)
		}
	}
	if len(event.Tags) > 0 {
		fmt.Fprintf(&b, "\nTags: %s\n", strings.Join(event.Tags, ", "))
	}
	return b.String()
}
