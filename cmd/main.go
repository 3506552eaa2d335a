package main

import (
	"github.com/sirupsen/logrus"

	"github.com/neoforge-dev/synapse-sub010/internal/alert"
	"github.com/neoforge-dev/synapse-sub010/internal/api"
	"github.com/neoforge-dev/synapse-sub010/internal/config"
	"github.com/neoforge-dev/synapse-sub010/internal/database"
	"github.com/neoforge-dev/synapse-sub010/internal/metrics"
	"github.com/neoforge-dev/synapse-sub010/internal/notify"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load("")
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// A broken database leaves alerting and recording functional; only
	// persistence is lost.
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		logger.WithError(err).Warn("Running without persistence")
		db = nil
	} else {
		defer database.Close(db)
	}

	registry := metrics.NewRegistry(cfg.Monitoring.MaxMetricHistoryPerSeries, logger)
	history := alert.NewHistory(cfg.Monitoring.MaxAlertHistorySize, db, logger)

	dispatcher := notify.NewDispatcher(notify.DefaultProviders(logger), notify.Config{
		MaxPerHour:  cfg.Monitoring.MaxNotificationsPerHour,
		SuppressFor: cfg.SuppressDuplicateDuration(),
	}, logger)

	engine := alert.NewEngine(registry, history, dispatcher, db, alert.Config{
		EvaluationInterval: cfg.EvaluationInterval(),
		AutoResolveEnabled: cfg.Monitoring.AutoResolveEnabled,
	}, logger)

	for _, rule := range alert.DefaultRules(registry) {
		if err := engine.RegisterRule(rule); err != nil {
			logger.WithError(err).WithField("rule", rule.Name()).Warn("Failed to register default rule")
		}
	}
	if cfg.Monitoring.RulesFile != "" {
		if err := engine.ImportRulesFromFile(cfg.Monitoring.RulesFile); err != nil {
			logger.WithError(err).Warn("Failed to import rules file")
		}
	}

	// Metric recording and health queries keep working even if the
	// evaluation loop cannot start; only alerting is disabled.
	if err := engine.Start(); err != nil {
		logger.WithError(err).Error("Alert engine failed to start, alerting disabled")
	} else {
		defer engine.Stop()
	}

	health := metrics.NewHealth(registry, metrics.HealthThresholds{
		MaxErrorRatePercent:  cfg.Monitoring.HealthMaxErrorRatePercent,
		MaxAvgLatencySeconds: cfg.Monitoring.HealthMaxAvgLatencySeconds,
	}, engine.ActiveAlertCount)

	server := api.NewServer(registry, health, engine, cfg.Server.AuthSecret)
	if err := server.Start(cfg.Server.Port); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
