package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gradebook/importer/config"
	"github.com/gradebook/importer/internal/application/command"
	"github.com/gradebook/importer/internal/infrastructure/persistence/postgres"
	"github.com/gradebook/importer/pkg/logger"
)

// store is the database side of the apply command.
type store interface {
	command.QueryExecutor
	Migrate(ctx context.Context) (int, error)
	Close()
}

// openStore connects to the configured database. Tests replace it.
var openStore = openPostgres

type postgresStore struct {
	*postgres.Executor
	conn *postgres.Connection
}

func (s *postgresStore) Migrate(ctx context.Context) (int, error) {
	return postgres.NewMigrator(s.conn).Migrate(ctx)
}

func (s *postgresStore) Close() {
	s.conn.Close()
}

func openPostgres(ctx context.Context, db config.DatabaseConfig, log *logger.Logger) (store, error) {
	conn, err := postgres.Connect(ctx, postgres.Config{
		URL:             db.URL,
		MaxConns:        db.MaxConns,
		ConnectAttempts: db.ConnectAttempts,
		ConnectDelay:    db.ConnectDelay.Duration,
	}, log)
	if err != nil {
		return nil, err
	}
	return &postgresStore{
		Executor: postgres.NewExecutor(conn, db.QueryTimeout.Duration),
		conn:     conn,
	}, nil
}

var (
	applyFlags   limitFlags
	applyMigrate bool
)

var applyCmd = &cobra.Command{
	Use:   "apply [FILE|-]",
	Short: "Import an export into PostgreSQL",
	Long: `Validates an export, lowers it and stores every query in one transaction.
Requires DATABASE_URL (or [database] url in the config file).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runApply,
}

func init() {
	applyFlags.register(applyCmd)
	applyCmd.Flags().BoolVar(&applyMigrate, "migrate", false, "create or upgrade the gradebook tables first")
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL is required for apply")
	}

	data, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	db, err := openStore(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer db.Close()

	if applyMigrate {
		ran, err := db.Migrate(ctx)
		if err != nil {
			return err
		}
		log.Info("migrations applied", logger.Int("count", ran))
	}

	result, err := newHandler(db).Handle(ctx, command.ImportExportCommand{
		Payload: data,
		Options: applyFlags.options(cmd),
		Apply:   true,
	})
	if err != nil {
		if isContextDone(err) {
			log.Warn("import interrupted", logger.Err(err))
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "imported user %s (%d queries)\n", result.UserID, len(result.Queries))
	return nil
}
