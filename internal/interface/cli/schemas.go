package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gradebook/importer/internal/domain/gradebook"
)

var schemasCmd = &cobra.Command{
	Use:   "schemas",
	Short: "List registered export schemas and allowed settings",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		for _, name := range registry.Names() {
			marker := " "
			if name == cfg.Import.Schema {
				marker = "*"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, name)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "settings: %s\n", strings.Join(gradebook.KnownSettings(), ", "))
	},
}

func init() {
	rootCmd.AddCommand(schemasCmd)
}
