package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/newtron-network/acipush/pkg/apic"
	"github.com/newtron-network/acipush/pkg/cli"
	"github.com/newtron-network/acipush/pkg/push"
	"github.com/newtron-network/acipush/pkg/report"
	"github.com/newtron-network/acipush/pkg/util"
)

var (
	executeMode  bool
	showPayloads bool
	reportMD     string
	reportJUnit  string
	reportJSON   string
)

var pushCmd = &cobra.Command{
	Use:   "push <command>[,<command>...]",
	Short: "Push tables to the controller",
	Long: `Push every row of the command's table to the APIC.

Several commands run in the order given, each with its own login. A
failed login stops the remaining commands.

Without -x the rows are validated and rendered and the payloads shown,
but nothing is sent. With -x the tool logs in once and posts each valid
row; rows missing a mandatory field are skipped and reported.

Examples:
  acipush push push_tenant --tables ./tables
  acipush push push_bd_subnet --tables book.yaml --payloads
  acipush push push_epg -c apic1.example.net -u admin -x
  acipush push push_vrf -x -w 4 --junit out/vrf.xml
  acipush push push_tenant,push_vrf,push_bd -x --report out/run.md`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		commands := parseCommands(args)
		if len(commands) == 0 {
			return fmt.Errorf("no command given")
		}

		registry, err := loadRegistry()
		if err != nil {
			return err
		}
		for _, command := range commands {
			if _, err := registry.Lookup(command); err != nil {
				return err
			}
		}
		tables, err := openTables(tablesPath, infoRows)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg := push.Config{
			User:    user,
			Workers: workers,
			APIC: apic.Config{
				Controller:         controller,
				Timeout:            timeout,
				InsecureSkipVerify: insecure,
				RateLimit:          rateLimit,
			},
		}

		if !executeMode {
			if cfg.APIC.Controller == "" {
				cfg.APIC.Controller = "<controller>"
			}
			p := push.New(cfg, registry, tables, nil)
			for _, command := range commands {
				if err := runPreview(ctx, p, command); err != nil {
					return err
				}
			}
			if !jsonOutput {
				printDryRunNotice()
			}
			return nil
		}

		if controller == "" {
			return fmt.Errorf("controller required: use -c <apic> or 'acipush settings set controller <apic>'")
		}
		if user == "" {
			return fmt.Errorf("user required: use -u <user> or 'acipush settings set user <user>'")
		}
		if cfg.Password, err = resolvePassword(); err != nil {
			return err
		}
		if cfg.APIC.Jump, err = parseJumpHost(jumpHost); err != nil {
			return err
		}

		out, closeSinks, err := openSinks(ctx)
		if err != nil {
			return err
		}
		defer closeSinks()

		p := push.New(cfg, registry, tables, out)
		var reports []*report.Report
		for _, command := range commands {
			r, err := p.Run(ctx, command)
			if err != nil {
				return err
			}
			reports = append(reports, r)
			if r.Aborted || ctx.Err() != nil {
				break
			}
		}
		return printReports(reports)
	},
}

func init() {
	pushCmd.Flags().BoolVarP(&executeMode, "execute", "x", false, "Execute (default is dry-run)")
	pushCmd.Flags().BoolVar(&showPayloads, "payloads", false, "Show rendered payloads in dry-run")
	pushCmd.Flags().StringVar(&reportMD, "report", "", "Write a markdown report to this file")
	pushCmd.Flags().StringVar(&reportJUnit, "junit", "", "Write a JUnit XML report to this file")
	pushCmd.Flags().StringVar(&reportJSON, "report-json", "", "Write a JSON report to this file")
}

func runPreview(ctx context.Context, p *push.Pusher, command string) error {
	previews, err := p.Preview(ctx, command)
	if err != nil {
		return err
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(previews)
	}

	fmt.Printf("%s %s (%d rows)\n\n", cli.Bold("Preview:"), command, len(previews))
	t := cli.NewTable("ROW", "LINE", "STATUS", "TARGET").WithPrefix("  ")
	for _, pv := range previews {
		status, target := cli.Green("ok"), pv.URI
		if !pv.Valid {
			status, target = cli.Yellow("skip"), pv.Reason
		}
		t.Row(fmt.Sprint(pv.Index), fmt.Sprint(pv.Line), status, target)
	}
	t.Flush()

	if showPayloads {
		for _, pv := range previews {
			if pv.Valid {
				fmt.Printf("\n%s\n%s\n", cli.Bold(pv.URI), pv.Body)
			}
		}
	}

	return nil
}

// parseCommands accepts commands as separate arguments, comma-separated, or both.
func parseCommands(args []string) []string {
	var commands []string
	for _, arg := range args {
		commands = append(commands, util.SplitCommaSeparated(arg)...)
	}
	return commands
}

func printReports(reports []*report.Report) error {
	if jsonOutput {
		if err := json.NewEncoder(os.Stdout).Encode(reports); err != nil {
			return err
		}
	} else {
		for _, r := range reports {
			fmt.Println()
			fmt.Print(r.String())
		}
	}

	g := &report.Generator{Reports: reports}
	if reportMD != "" {
		if err := g.WriteMarkdown(reportMD); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
	}
	if reportJUnit != "" {
		if err := g.WriteJUnit(reportJUnit); err != nil {
			return fmt.Errorf("writing JUnit report: %w", err)
		}
	}
	if reportJSON != "" {
		if err := g.WriteJSON(reportJSON); err != nil {
			return fmt.Errorf("writing JSON report: %w", err)
		}
	}

	failed := false
	for _, r := range reports {
		if r.Aborted {
			if headline, advice, ok := authHint(r); ok {
				fmt.Fprintf(os.Stderr, "%s\n  %s\n", cli.Red(headline), advice)
			}
		}
		if r.Aggregate != report.AllSucceeded {
			failed = true
		}
	}
	if failed {
		return errRunFailed
	}
	return nil
}

func authHint(r *report.Report) (headline, advice string, ok bool) {
	var ae *apic.AuthError
	if !errors.As(r.AuthError, &ae) {
		return "", "", false
	}
	headline, advice = ae.Hint()
	return headline, advice, true
}
