package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gradebook/importer/internal/application/importer"
)

var validateCmd = &cobra.Command{
	Use:   "validate [FILE|-]",
	Short: "Check an export without generating queries",
	Long: `Parses an export, checks it against the configured schema and verifies the
user's settings. Prints "valid" on success.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	data, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	export, err := imp.Validate(data)
	if err != nil {
		return err
	}
	if err := importer.ValidateUser(export.User(), imp.Now()); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "valid")
	return nil
}
