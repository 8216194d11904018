package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the supported instruction types and their fields",
	Args:  cobra.NoArgs,
	RunE:  runTypes,
}

func runTypes(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	registry := newRegistry(cfg)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, kind := range registry.Kinds() {
		builder, err := registry.Get(kind)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\n", kind)
		for _, rule := range builder.Schema().Rules {
			var notes []string
			if rule.Required {
				notes = append(notes, "required")
			}
			if len(rule.AllowedValues) > 0 {
				notes = append(notes, "one of "+strings.Join(rule.AllowedValues, "|"))
			}
			fmt.Fprintf(w, "  %s\t%s\t%s\n", rule.Field, rule.Type, strings.Join(notes, ", "))
		}
	}
	return w.Flush()
}
