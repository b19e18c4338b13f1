// Package settings manages persistent operator defaults for the acipush CLI.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Fallbacks used when a setting is not stored.
const (
	DefaultWorkers  = 1
	DefaultTimeout  = 5 * time.Second
	DefaultInfoRows = 1
)

// Settings holds persistent user preferences
type Settings struct {
	// Controller is the APIC address used when --controller is not given
	Controller string `json:"controller,omitempty"`

	// User is the APIC login user
	User string `json:"user,omitempty"`

	// SchemaPath overrides the embedded command schema
	SchemaPath string `json:"schema_path,omitempty"`

	// TablesPath is a CSV directory or a YAML workbook file
	TablesPath string `json:"tables_path,omitempty"`

	// InfoRows is the number of descriptive rows after each CSV header
	InfoRows *int `json:"info_rows,omitempty"`

	Workers        int     `json:"workers,omitempty"`
	TimeoutSeconds int     `json:"timeout_seconds,omitempty"`
	RateLimit      float64 `json:"rate_limit,omitempty"`
	Insecure       bool    `json:"insecure,omitempty"`

	// RedisAddr enables the Redis status sink
	RedisAddr string `json:"redis_addr,omitempty"`
	RedisDB   int    `json:"redis_db,omitempty"`

	// RedisTTLSeconds expires status entries; zero keeps them
	RedisTTLSeconds int `json:"redis_ttl_seconds,omitempty"`

	AuditLogPath string `json:"audit_log_path,omitempty"`

	// SSH jump host for controllers only reachable from a bastion
	JumpHost       string `json:"jump_host,omitempty"`
	JumpUser       string `json:"jump_user,omitempty"`
	JumpKnownHosts string `json:"jump_known_hosts,omitempty"`
}

// DefaultSettingsPath returns the default path for the settings file
func DefaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "acipush_settings.json"
	}
	return filepath.Join(home, ".acipush", "settings.json")
}

// Load reads settings from the default location
func Load() (*Settings, error) {
	return LoadFrom(DefaultSettingsPath())
}

// LoadFrom reads settings from a specific path
func LoadFrom(path string) (*Settings, error) {
	s := &Settings{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return empty settings if file doesn't exist
			return s, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return s, nil
}

// Save writes settings to the default location
func (s *Settings) Save() error {
	return s.SaveTo(DefaultSettingsPath())
}

// SaveTo writes settings to a specific path. The file may hold a jump host
// user, so it is only readable by its owner.
func (s *Settings) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// GetWorkers returns the submission concurrency (with fallback)
func (s *Settings) GetWorkers() int {
	if s.Workers > 0 {
		return s.Workers
	}
	return DefaultWorkers
}

// GetTimeout returns the per-call controller timeout (with fallback)
func (s *Settings) GetTimeout() time.Duration {
	if s.TimeoutSeconds > 0 {
		return time.Duration(s.TimeoutSeconds) * time.Second
	}
	return DefaultTimeout
}

// GetRedisTTL returns the lifetime of Redis status entries; zero means no expiry
func (s *Settings) GetRedisTTL() time.Duration {
	return time.Duration(s.RedisTTLSeconds) * time.Second
}

// GetInfoRows returns the CSV descriptive row count (with fallback)
func (s *Settings) GetInfoRows() int {
	if s.InfoRows != nil {
		return *s.InfoRows
	}
	return DefaultInfoRows
}

// GetAuditLogPath returns the audit log location (with fallback)
func (s *Settings) GetAuditLogPath() string {
	if s.AuditLogPath != "" {
		return s.AuditLogPath
	}
	return filepath.Join(filepath.Dir(DefaultSettingsPath()), "audit.log")
}

// Clear resets all settings to defaults
func (s *Settings) Clear() {
	*s = Settings{}
}

// field binds a setting name to its accessors.
type field struct {
	name string
	get  func(s *Settings) string
	set  func(s *Settings, v string) error
}

func stringField(name string, p func(s *Settings) *string) field {
	return field{
		name: name,
		get:  func(s *Settings) string { return *p(s) },
		set:  func(s *Settings, v string) error { *p(s) = v; return nil },
	}
}

func intField(name string, p func(s *Settings) *int) field {
	return field{
		name: name,
		get: func(s *Settings) string {
			if *p(s) == 0 {
				return ""
			}
			return strconv.Itoa(*p(s))
		},
		set: func(s *Settings, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return fmt.Errorf("%s must be a non-negative integer", name)
			}
			*p(s) = n
			return nil
		},
	}
}

var fields = []field{
	stringField("controller", func(s *Settings) *string { return &s.Controller }),
	stringField("user", func(s *Settings) *string { return &s.User }),
	stringField("schema_path", func(s *Settings) *string { return &s.SchemaPath }),
	stringField("tables_path", func(s *Settings) *string { return &s.TablesPath }),
	{
		name: "info_rows",
		get: func(s *Settings) string {
			if s.InfoRows == nil {
				return ""
			}
			return strconv.Itoa(*s.InfoRows)
		},
		set: func(s *Settings, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return fmt.Errorf("info_rows must be a non-negative integer")
			}
			s.InfoRows = &n
			return nil
		},
	},
	intField("workers", func(s *Settings) *int { return &s.Workers }),
	intField("timeout_seconds", func(s *Settings) *int { return &s.TimeoutSeconds }),
	{
		name: "rate_limit",
		get: func(s *Settings) string {
			if s.RateLimit == 0 {
				return ""
			}
			return strconv.FormatFloat(s.RateLimit, 'f', -1, 64)
		},
		set: func(s *Settings, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil || f < 0 {
				return fmt.Errorf("rate_limit must be a non-negative number")
			}
			s.RateLimit = f
			return nil
		},
	},
	{
		name: "insecure",
		get: func(s *Settings) string {
			if !s.Insecure {
				return ""
			}
			return "true"
		},
		set: func(s *Settings, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("insecure must be true or false")
			}
			s.Insecure = b
			return nil
		},
	},
	stringField("redis_addr", func(s *Settings) *string { return &s.RedisAddr }),
	intField("redis_db", func(s *Settings) *int { return &s.RedisDB }),
	intField("redis_ttl_seconds", func(s *Settings) *int { return &s.RedisTTLSeconds }),
	stringField("audit_log_path", func(s *Settings) *string { return &s.AuditLogPath }),
	stringField("jump_host", func(s *Settings) *string { return &s.JumpHost }),
	stringField("jump_user", func(s *Settings) *string { return &s.JumpUser }),
	stringField("jump_known_hosts", func(s *Settings) *string { return &s.JumpKnownHosts }),
}

// Names lists the settings accepted by Get and Set, in display order.
func Names() []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.name
	}
	return names
}

func lookup(name string) (field, error) {
	for _, f := range fields {
		if f.name == name {
			return f, nil
		}
	}
	return field{}, fmt.Errorf("unknown setting: %s (valid: %s)", name, strings.Join(Names(), ", "))
}

// Get returns a setting as text; unset settings are "".
func (s *Settings) Get(name string) (string, error) {
	f, err := lookup(name)
	if err != nil {
		return "", err
	}
	return f.get(s), nil
}

// Set parses and stores a setting.
func (s *Settings) Set(name, value string) error {
	f, err := lookup(name)
	if err != nil {
		return err
	}
	return f.set(s, value)
}
