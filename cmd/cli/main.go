package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/neoforge-dev/synapse-sub010/cmd/cli/client"
)

var (
	serverURL string
	apiClient *client.APIClient
)

var rootCmd = &cobra.Command{
	Use:   "synapse-monitor",
	Short: "Synapse monitoring CLI",
	Long: `Command-line client for the Synapse monitoring service.
Query health, active alerts, alert history, and manage alert rules.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		apiClient = client.NewAPIClient(serverURL)
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Show the current health summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := apiClient.Health()
		if err != nil {
			return err
		}
		fmt.Printf("Status:        %s\n", summary.Status)
		fmt.Printf("Uptime:        %s\n", (time.Duration(summary.UptimeSeconds) * time.Second).String())
		fmt.Printf("Requests:      %d (%d errors, %.2f%%)\n", summary.TotalRequests, summary.ErrorCount, summary.ErrorRatePercent)
		fmt.Printf("Active alerts: %d\n", summary.ActiveAlertCount)
		for name, avg := range summary.AverageLatencies {
			fmt.Printf("  avg %-32s %.3fs\n", name, avg)
		}
		return nil
	},
}

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "List currently firing alerts",
	RunE: func(cmd *cobra.Command, args []string) error {
		rules, err := apiClient.ActiveAlerts()
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.TabIndent)
		fmt.Fprintln(w, "NAME\tSEVERITY\tTRIGGERED\tCOUNT\t")
		for _, r := range rules {
			triggered := ""
			if r.LastTriggeredAt != nil {
				triggered = r.LastTriggeredAt.Format(time.RFC3339)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t\n", r.Name(), r.Severity, triggered, r.TriggerCount)
		}
		return w.Flush()
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent alert events",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		events, err := apiClient.AlertHistory(limit)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.TabIndent)
		fmt.Fprintln(w, "TIME\tNAME\tSTATE\tSEVERITY\t")
		for _, e := range events {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n", e.Timestamp.Format(time.RFC3339), e.AlertName, e.State, e.Severity)
		}
		return w.Flush()
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show alert statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := apiClient.Statistics()
		if err != nil {
			return err
		}
		fmt.Printf("Rules:          %d\n", stats.TotalRules)
		fmt.Printf("Active alerts:  %d\n", stats.ActiveAlertCount)
		fmt.Printf("Events (24h):   %d\n", stats.EventsLast24h)
		fmt.Printf("Events (total): %d\n", stats.TotalEvents)
		for severity, count := range stats.SeverityDistribution {
			fmt.Printf("  %-10s %d\n", severity, count)
		}
		return nil
	},
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List registered alert rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		rules, err := apiClient.ListRules()
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.TabIndent)
		fmt.Fprintln(w, "NAME\tKIND\tSEVERITY\tSTATE\tTRIGGERS\t")
		for _, r := range rules {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t\n", r.Name(), r.Condition.Kind, r.Severity, r.State, r.TriggerCount)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "monitoring service URL")
	historyCmd.Flags().Int("limit", 20, "number of events to show")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(alertsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(rulesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
