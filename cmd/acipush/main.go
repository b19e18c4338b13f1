// acipush - ACI configuration push tool
//
// Reads configuration tables (CSV directory or YAML workbook), validates
// every row against the command schema, renders the controller payload
// and posts it to the APIC through one authenticated session:
//
//	acipush push <command> [-x]
//	              └──┬───┘  └┬┘
//	      Table + template    Execute (dry-run otherwise)
//
// Examples:
//
//	acipush list                                      # Commands and their tables
//	acipush push push_tenant --tables ./tables        # Preview tenant payloads
//	acipush push push_bd -c apic1 -u admin -x         # Push bridge domains
//	acipush audit list --last 24h                     # Recent runs
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/newtron-network/acipush/pkg/audit"
	"github.com/newtron-network/acipush/pkg/settings"
	"github.com/newtron-network/acipush/pkg/util"
	"github.com/newtron-network/acipush/pkg/version"
)

var (
	// Controller flags
	controller string
	user       string
	password   string
	insecure   bool
	timeout    time.Duration
	rateLimit  float64
	jumpHost   string

	// Input flags
	schemaPath string
	tablesPath string
	infoRows   int

	// Global option flags
	workers    int
	redisAddr  string
	redisTTL   time.Duration
	verbose    bool
	logFormat  string
	jsonOutput bool

	// Global state
	userSettings *settings.Settings
)

// errRunFailed makes the process exit non-zero after the report was printed.
var errRunFailed = errors.New("run did not fully succeed")

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errRunFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "acipush",
	Short:             "ACI Configuration Push Tool",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `acipush pushes tenant, VRF, application profile, bridge domain, subnet and
EPG configuration from tables to a Cisco APIC.

Push commands preview payloads by default. Use -x to execute.

  acipush push <command> [-x]`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Quiet by default, verbose on -v
		level := "warn"
		if verbose {
			level = "debug"
		}
		if err := util.Configure(level, logFormat); err != nil {
			return err
		}

		if isSettingsOrHelp(cmd) {
			return nil
		}

		var err error
		userSettings, err = settings.Load()
		if err != nil {
			util.Warnf("Could not load settings: %v", err)
			userSettings = &settings.Settings{}
		}
		applySettings(cmd)

		auditLogger, err := audit.NewFileLogger(userSettings.GetAuditLogPath(), audit.RotationConfig{
			MaxSize:    10 * 1024 * 1024, // 10MB
			MaxBackups: 10,
		})
		if err != nil {
			util.Warnf("Could not initialize audit logging: %v", err)
		} else {
			audit.SetDefaultLogger(auditLogger)
		}
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&controller, "controller", "c", "", "APIC address (host or host:port)")
	pf.StringVarP(&user, "user", "u", "", "APIC user")
	pf.StringVarP(&password, "password", "p", "", "APIC password (or ACIPUSH_PASSWORD, or prompt)")
	pf.BoolVar(&insecure, "insecure", false, "Skip TLS certificate verification")
	pf.DurationVar(&timeout, "timeout", settings.DefaultTimeout, "Per-request timeout")
	pf.Float64Var(&rateLimit, "rate", 0, "Maximum submissions per second (0 = unlimited)")
	pf.StringVar(&jumpHost, "ssh-jump", "", "Reach the APIC through an SSH jump host (user@host:port)")

	pf.StringVarP(&schemaPath, "schema", "S", "", "Command schema file (default: built-in)")
	pf.StringVarP(&tablesPath, "tables", "t", "", "Table CSV directory or YAML workbook")
	pf.IntVar(&infoRows, "info-rows", settings.DefaultInfoRows, "Descriptive CSV rows after each header")

	pf.IntVarP(&workers, "workers", "w", settings.DefaultWorkers, "Concurrent submissions")
	pf.StringVar(&redisAddr, "redis", "", "Also write row status to this Redis (host:port)")
	pf.DurationVar(&redisTTL, "redis-ttl", 0, "Expire Redis status entries after this long (0 = never)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	pf.StringVar(&logFormat, "log-format", "text", "Diagnostic log format on stderr (text, json)")
	pf.BoolVar(&jsonOutput, "json", false, "JSON output")

	rootCmd.AddGroup(
		&cobra.Group{ID: "push", Title: "Push Operations:"},
		&cobra.Group{ID: "meta", Title: "Configuration & Meta:"},
	)

	for _, cmd := range []*cobra.Command{pushCmd, listCmd} {
		cmd.GroupID = "push"
		rootCmd.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{settingsCmd, auditCmd, versionCmd} {
		cmd.GroupID = "meta"
		rootCmd.AddCommand(cmd)
	}
}

// applySettings fills flags the operator did not give from stored settings.
func applySettings(cmd *cobra.Command) {
	s := userSettings
	changed := func(name string) bool { return cmd.Flags().Changed(name) }

	if !changed("controller") {
		controller = s.Controller
	}
	if !changed("user") {
		user = s.User
	}
	if !changed("schema") {
		schemaPath = s.SchemaPath
	}
	if !changed("tables") {
		tablesPath = s.TablesPath
	}
	if !changed("info-rows") {
		infoRows = s.GetInfoRows()
	}
	if !changed("workers") {
		workers = s.GetWorkers()
	}
	if !changed("timeout") {
		timeout = s.GetTimeout()
	}
	if !changed("rate") {
		rateLimit = s.RateLimit
	}
	if !changed("insecure") {
		insecure = s.Insecure
	}
	if !changed("redis") {
		redisAddr = s.RedisAddr
	}
	if !changed("redis-ttl") {
		redisTTL = s.GetRedisTTL()
	}
	if !changed("ssh-jump") && s.JumpHost != "" {
		jumpHost = s.JumpHost
		if s.JumpUser != "" {
			jumpHost = s.JumpUser + "@" + s.JumpHost
		}
	}
}

func isSettingsOrHelp(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "settings", "help", "version":
			return true
		}
	}
	return false
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		if version.Version == "dev" {
			fmt.Println("acipush dev build (set version info with -ldflags \"-X github.com/newtron-network/acipush/pkg/version.Version=...\")")
		} else {
			fmt.Printf("acipush %s\n", version.Info())
		}
	},
}
