package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/newtron-network/acipush/pkg/cli"
)

type commandInfo struct {
	Command    string   `json:"command"`
	Table      string   `json:"table"`
	EntityType string   `json:"entity_type"`
	Mandatory  []string `json:"mandatory"`
	Path       string   `json:"path"`
	Action     string   `json:"action"`
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List push commands and their tables",
	Long: `List every command in the schema with the table it reads, its entity type
and mandatory fields.

Examples:
  acipush list
  acipush list --schema ./launcher.yaml --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := loadRegistry()
		if err != nil {
			return err
		}

		var infos []commandInfo
		for _, name := range registry.Commands() {
			s, err := registry.Lookup(name)
			if err != nil {
				return err
			}
			infos = append(infos, commandInfo{
				Command:    s.Command,
				Table:      s.Table,
				EntityType: string(s.EntityType),
				Mandatory:  s.MandatoryFields,
				Path:       s.PathTemplate,
				Action:     s.ActionMessage,
			})
		}

		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(infos)
		}

		fmt.Printf("Schema: %s\n\n", registry.Source())
		t := cli.NewTable("COMMAND", "TABLE", "ENTITY", "MANDATORY", "ACTION")
		for _, i := range infos {
			t.Row(i.Command, i.Table, i.EntityType, strings.Join(i.Mandatory, ","), i.Action)
		}
		t.Flush()
		return nil
	},
}
