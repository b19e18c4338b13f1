package main

import (
	"context"
	"fmt"
	"io"
	"os"
	osuser "os/user"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"github.com/newtron-network/acipush/pkg/apic"
	"github.com/newtron-network/acipush/pkg/cli"
	"github.com/newtron-network/acipush/pkg/schema"
	"github.com/newtron-network/acipush/pkg/sink"
	"github.com/newtron-network/acipush/pkg/table"
)

// loadRegistry loads the --schema file, or the built-in schema.
func loadRegistry() (*schema.Registry, error) {
	if schemaPath == "" {
		return schema.LoadDefault()
	}
	return schema.Load(schemaPath)
}

// openTables picks the table source for --tables: a directory is read as
// one CSV file per table, a .yaml/.yml file as a workbook.
func openTables(path string, infoRows int) (table.Source, error) {
	if path == "" {
		return nil, fmt.Errorf("tables required: use --tables <dir|workbook.yaml> or 'acipush settings set tables_path <path>'")
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("opening tables: %w", err)
	}
	if info.IsDir() {
		return &table.CSVDir{Dir: path, InfoRows: infoRows}, nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return &table.YAMLBook{Path: path}, nil
	}
	return nil, fmt.Errorf("unsupported tables path %s: want a CSV directory or a YAML workbook", path)
}

// resolvePassword returns the APIC password from: flag > ACIPUSH_PASSWORD > prompt.
func resolvePassword() (string, error) {
	if password != "" {
		return password, nil
	}
	if v := os.Getenv("ACIPUSH_PASSWORD"); v != "" {
		return v, nil
	}
	return prompt(fmt.Sprintf("Password for %s@%s: ", user, controller))
}

// prompt reads a secret from the terminal without echo.
func prompt(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("password required: use --password or ACIPUSH_PASSWORD when stdin is not a terminal")
	}
	fmt.Fprint(os.Stderr, label)
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(pw), nil
}

// parseJumpHost parses --ssh-jump "[user@]host[:port]". Without a user the
// local login name is used, as ssh does. The SSH password comes from
// ACIPUSH_JUMP_PASSWORD or a prompt.
func parseJumpHost(spec string) (*apic.JumpHost, error) {
	if spec == "" {
		return nil, nil
	}
	jumpUser, addr := "", spec
	if at := strings.LastIndex(spec, "@"); at >= 0 {
		jumpUser, addr = spec[:at], spec[at+1:]
		if jumpUser == "" {
			return nil, fmt.Errorf("invalid --ssh-jump %q: want [user@]host[:port]", spec)
		}
	}
	if addr == "" {
		return nil, fmt.Errorf("invalid --ssh-jump %q: want [user@]host[:port]", spec)
	}
	if jumpUser == "" {
		u, err := osuser.Current()
		if err != nil {
			return nil, fmt.Errorf("--ssh-jump %q has no user and the local user is unknown: %w", spec, err)
		}
		jumpUser = u.Username
	}
	j := &apic.JumpHost{
		User:           jumpUser,
		Addr:           addr,
		KnownHostsFile: userSettings.JumpKnownHosts,
	}
	j.Password = os.Getenv("ACIPUSH_JUMP_PASSWORD")
	if j.Password == "" {
		pw, err := prompt(fmt.Sprintf("SSH password for %s: ", spec))
		if err != nil {
			return nil, err
		}
		j.Password = pw
	}
	return j, nil
}

// consoleOut is where per-row status lines go. With --json, stdout carries
// only the JSON reports and status lines move to stderr.
func consoleOut() io.Writer {
	if jsonOutput {
		return os.Stderr
	}
	return os.Stdout
}

// openSinks returns the console sink plus the Redis sink when --redis is
// set. The returned close function releases the Redis connection.
func openSinks(ctx context.Context) (sink.Sink, func(), error) {
	console := sink.NewConsole(consoleOut())
	if redisAddr == "" {
		return console, func() {}, nil
	}
	r := sink.NewRedis(redisAddr, userSettings.RedisDB, redisTTL)
	if err := r.Connect(ctx); err != nil {
		r.Close()
		return nil, nil, err
	}
	return sink.Multi{console, r}, func() { r.Close() }, nil
}

// Helper to print dry-run notice
func printDryRunNotice() {
	fmt.Println("\n" + cli.Yellow("DRY-RUN: Nothing was sent. Use -x to execute."))
}
