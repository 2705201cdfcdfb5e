// Package cli implements the importer command line.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gradebook/importer/config"
	"github.com/gradebook/importer/internal/application/command"
	"github.com/gradebook/importer/internal/application/importer"
	"github.com/gradebook/importer/internal/domain/shared"
	"github.com/gradebook/importer/internal/infrastructure/idgen"
	"github.com/gradebook/importer/internal/infrastructure/schema"
	"github.com/gradebook/importer/pkg/logger"
)

// Exit codes returned by Execute.
const (
	ExitOK         = 0
	ExitFailure    = 1
	ExitValidation = 2
)

// version is set at build time with -ldflags "-X ...cli.version=1.2.3".
var version = "dev"

var (
	configPath string
	logLevel   string
)

// Services built by bootstrap before any subcommand runs.
var (
	cfg      *config.Config
	log      *logger.Logger
	registry *schema.Registry
	imp      *importer.Importer
)

var rootCmd = &cobra.Command{
	Use:   "importer",
	Short: "Import Gradebook exports",
	Long: `Validates Gradebook v0 exports and lowers them into ordered write queries
for a user, their courses, categories and grades.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: bootstrap,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "TOML config file (environment variables still win)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error)")
}

// bootstrap loads configuration and wires the pipeline.
func bootstrap(cmd *cobra.Command, _ []string) error {
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	if logLevel != "" {
		if _, ok := logger.LookupLevel(logLevel); !ok {
			return fmt.Errorf("unknown log level %q", logLevel)
		}
		cfg.Observability.LogLevel = logLevel
	}

	log = logger.New(logger.Options{
		Output: cmd.ErrOrStderr(),
		Level:  logger.ParseLevel(cfg.Observability.LogLevel),
		Format: logger.ParseFormat(cfg.Observability.LogFormat),
	}).With(logger.F("app", cfg.App.Name))

	registry, err = schema.Load()
	if err != nil {
		return fmt.Errorf("load schemas: %w", err)
	}
	if !registry.Has(cfg.Import.Schema) {
		return fmt.Errorf("%w: %q", shared.ErrUnknownSchema, cfg.Import.Schema)
	}

	imp = importer.New(registry, idgen.New(), importer.WithSchemaName(cfg.Import.Schema))
	log.Debug("importer ready", logger.Schema(imp.SchemaName()))
	return nil
}

// newHandler builds the import handler around exec, which may be nil.
func newHandler(exec command.QueryExecutor) *command.ImportExportHandler {
	return command.NewImportExportHandler(imp, exec, log)
}

// Execute runs the root command and maps the outcome to an exit code.
// Validation failures exit with ExitValidation.
func Execute(ctx context.Context) int {
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}

	rootCmd.PrintErrln("Error:", err)
	if shared.IsValidation(err) {
		return ExitValidation
	}
	return ExitFailure
}

// isContextDone reports whether err came from cancellation.
func isContextDone(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
