// Package command contains write operations (CQRS - Commands).
package command

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gradebook/importer/internal/domain/gradebook"
	"github.com/gradebook/importer/internal/domain/shared"
	"github.com/gradebook/importer/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// IMPORT EXPORT COMMAND
// Lowers a Gradebook export into write queries and, when asked, stores them.
// ══════════════════════════════════════════════════════════════════════════════

// ImportExportCommand contains the data to import one export.
type ImportExportCommand struct {
	// Payload is the export: a JSON string, bytes, json.RawMessage or an
	// already-decoded value.
	Payload any

	// Options carries the target gid and the structural limits.
	Options gradebook.ImportOptions

	// Apply hands the generated queries to the executor.
	Apply bool

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c ImportExportCommand) Validate() error {
	switch p := c.Payload.(type) {
	case nil:
		return shared.ErrEmptyPayload
	case string:
		if strings.TrimSpace(p) == "" {
			return shared.ErrEmptyPayload
		}
	case []byte:
		if len(bytes.TrimSpace(p)) == 0 {
			return shared.ErrEmptyPayload
		}
	case json.RawMessage:
		if len(bytes.TrimSpace(p)) == 0 {
			return shared.ErrEmptyPayload
		}
	}

	return c.Options.Validate()
}

// ImportExportResult contains the result of an import.
type ImportExportResult struct {
	// UserID is the id generated for the imported user.
	UserID string

	// Queries in execution order.
	Queries []gradebook.Query

	// Counts holds the number of queries per entity kind.
	Counts map[gradebook.EntityKind]int

	// Applied is true when the queries were stored.
	Applied bool

	// Duration of the whole command.
	Duration time.Duration
}

// ══════════════════════════════════════════════════════════════════════════════
// PORTS
// ══════════════════════════════════════════════════════════════════════════════

// QueryGenerator lowers an export into queries.
type QueryGenerator interface {
	GenerateQueries(input any, opts gradebook.ImportOptions) ([]gradebook.Query, error)
}

// QueryExecutor stores generated queries atomically.
type QueryExecutor interface {
	Apply(ctx context.Context, queries []gradebook.Query) error
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// ImportExportHandler handles the ImportExportCommand.
type ImportExportHandler struct {
	generator QueryGenerator
	executor  QueryExecutor // Optional, required only when cmd.Apply is set
	log       *logger.Logger
	now       func() time.Time
}

// NewImportExportHandler creates a new ImportExportHandler.
func NewImportExportHandler(
	generator QueryGenerator,
	executor QueryExecutor,
	log *logger.Logger,
) *ImportExportHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ImportExportHandler{
		generator: generator,
		executor:  executor,
		log:       log.With(logger.Component("import_export")),
		now:       time.Now,
	}
}

// Handle executes the import command. Validation failures are returned
// unwrapped so callers can show their message as is.
func (h *ImportExportHandler) Handle(
	ctx context.Context,
	cmd ImportExportCommand,
) (*ImportExportResult, error) {
	start := h.now()
	log := h.log.With(logger.CorrelationID(cmd.CorrelationID), logger.GID(cmd.Options.GID))

	if err := cmd.Validate(); err != nil {
		log.Warn("import rejected", logger.Err(err))
		return nil, err
	}
	if cmd.Apply && h.executor == nil {
		return nil, shared.ErrExecutorMissing
	}

	queries, err := h.generator.GenerateQueries(cmd.Payload, cmd.Options)
	if err != nil {
		log.Warn("export failed validation", logger.Err(err))
		return nil, err
	}
	if len(queries) == 0 {
		return nil, shared.ErrNoQueries
	}

	result := &ImportExportResult{
		UserID:  queries[0].ID(),
		Queries: queries,
		Counts:  gradebook.CountByKind(queries),
	}
	log = log.With(logger.UserID(result.UserID), logger.QueryCount(len(queries)))

	if cmd.Apply {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := h.executor.Apply(ctx, queries); err != nil {
			log.Error("failed to apply queries", logger.Err(err))
			return nil, fmt.Errorf("%w: %w", shared.ErrApplyFailed, err)
		}
		result.Applied = true
	}

	result.Duration = h.now().Sub(start)
	log.Info("export imported",
		logger.Counts(countsByName(result.Counts)),
		logger.Bool("applied", result.Applied),
		logger.Latency(result.Duration),
	)

	return result, nil
}

func countsByName(counts map[gradebook.EntityKind]int) map[string]int {
	named := make(map[string]int, len(counts))
	for kind, n := range counts {
		named[kind.String()] = n
	}
	return named
}
