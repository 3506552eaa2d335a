package notify

import (
	"fmt"

	"github.com/neoforge-dev/synapse-sub010/internal/models"
	"github.com/sirupsen/logrus"
)

// LogProvider writes alert transitions as structured log lines. The
// level defaults to warning and can be set per target with
// config["level"]; delivery always succeeds.
type LogProvider struct {
	log *logrus.Logger
}

func NewLogProvider(logger *logrus.Logger) *LogProvider {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LogProvider{log: logger}
}

func (p *LogProvider) Name() string { return ChannelLog }

func (p *LogProvider) ValidateConfig(config map[string]string) error {
	if name, ok := config["level"]; ok && name != "" {
		if _, err := logrus.ParseLevel(name); err != nil {
			return fmt.Errorf("invalid log level %q", name)
		}
	}
	return nil
}

func (p *LogProvider) Send(event models.AlertEvent, target models.NotificationTarget) bool {
	level := logrus.WarnLevel
	if name := target.Config["level"]; name != "" {
		if parsed, err := logrus.ParseLevel(name); err == nil {
			level = parsed
		}
	}

	p.log.WithFields(logrus.Fields{
		"alert":         event.AlertName,
		"state":         event.State,
		"severity":      event.Severity,
		"tags":          event.Tags,
		"metric_values": event.MetricValues,
	}).Log(level, event.Description)
	return true
}
