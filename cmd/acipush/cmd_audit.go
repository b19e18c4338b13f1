package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/newtron-network/acipush/pkg/audit"
	"github.com/newtron-network/acipush/pkg/cli"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "View audit logs",
	Long: `View the log of push runs.

Every preview and execution is logged with the user, controller, command,
row counts and result.

Examples:
  acipush audit list --last 24h
  acipush audit list --command push_bd --failures`,
}

var (
	auditController string
	auditUser       string
	auditCommand    string
	auditLast       time.Duration
	auditLimit      int
	auditFailures   bool
)

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List audit events, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := audit.Filter{
			Controller:  auditController,
			User:        auditUser,
			Command:     auditCommand,
			Limit:       auditLimit,
			FailureOnly: auditFailures,
			NewestFirst: true,
		}
		if auditLast > 0 {
			filter.StartTime = time.Now().Add(-auditLast)
		}

		events, err := audit.Query(filter)
		if err != nil {
			return fmt.Errorf("querying audit log: %w", err)
		}

		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(events)
		}

		if len(events) == 0 {
			fmt.Println("No audit events found")
			return nil
		}

		t := cli.NewTable("TIMESTAMP", "USER", "CONTROLLER", "COMMAND", "ROWS", "STATUS")
		for _, event := range events {
			var status string
			switch {
			case event.DryRun:
				status = cli.Yellow("dry-run")
			case event.Success:
				status = cli.Green("ok")
			case event.Severity() == audit.SeverityWarning:
				status = cli.Yellow("partial")
			default:
				status = cli.Red("failed")
			}
			rows := fmt.Sprintf("%d/%d/%d", event.Succeeded, event.Failed, event.Skipped)
			t.Row(
				event.Timestamp.Format("2006-01-02 15:04:05"),
				event.User,
				event.Controller,
				event.Command,
				rows,
				status,
			)
		}
		t.Flush()
		return nil
	},
}

func init() {
	auditListCmd.Flags().StringVar(&auditController, "controller-filter", "", "Filter by controller")
	auditListCmd.Flags().StringVar(&auditUser, "user-filter", "", "Filter by user")
	auditListCmd.Flags().StringVar(&auditCommand, "command", "", "Filter by push command")
	auditListCmd.Flags().DurationVar(&auditLast, "last", 0, "Show events from last duration (e.g., 24h)")
	auditListCmd.Flags().IntVar(&auditLimit, "limit", 100, "Maximum events to show")
	auditListCmd.Flags().BoolVar(&auditFailures, "failures", false, "Show only failed runs")

	auditCmd.AddCommand(auditListCmd)
}
