package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gradebook/importer/internal/application/command"
)

var lowerFlags limitFlags

var lowerCmd = &cobra.Command{
	Use:   "lower [FILE|-]",
	Short: "Print the write queries for an export",
	Long: `Validates an export and prints the queries that would store it, as a JSON
array of [kind, attributes] pairs. Reads stdin when FILE is omitted or "-".`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLower,
}

func init() {
	lowerFlags.register(lowerCmd)
	rootCmd.AddCommand(lowerCmd)
}

func runLower(cmd *cobra.Command, args []string) error {
	data, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	result, err := newHandler(nil).Handle(cmd.Context(), command.ImportExportCommand{
		Payload: data,
		Options: lowerFlags.options(cmd),
	})
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(result.Queries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal queries: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
