package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gradebook/importer/internal/domain/gradebook"
	"github.com/gradebook/importer/pkg/logger"
)

// maxInputSize bounds how much of an export is read.
const maxInputSize = 64 << 20

// readInput reads the export named by args[0], or stdin for "-" or no args.
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	var (
		r    io.Reader
		name = "stdin"
	)

	if len(args) == 0 || args[0] == "-" {
		r = cmd.InOrStdin()
	} else {
		name = args[0]
		f, err := os.Open(name)
		if err != nil {
			return nil, fmt.Errorf("open export: %w", err)
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(io.LimitReader(r, maxInputSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if len(data) > maxInputSize {
		return nil, fmt.Errorf("%s is larger than %d bytes", name, maxInputSize)
	}

	log.Debug("export read", logger.String("source", name), logger.Int("bytes", len(data)))
	return data, nil
}

// limitFlags holds the per-invocation overrides of the configured limits.
type limitFlags struct {
	gid         string
	maxCourses  int
	maxCategory int
	maxGrades   int
}

func (f *limitFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.gid, "gid", "", "external account id of the importing user (required)")
	cmd.Flags().IntVar(&f.maxCourses, "max-courses-per-semester", 0, "override the configured course limit per semester")
	cmd.Flags().IntVar(&f.maxCategory, "max-categories-per-course", 0, "override the configured category limit per course")
	cmd.Flags().IntVar(&f.maxGrades, "max-grades-per-category", 0, "override the configured grade limit per category")
	_ = cmd.MarkFlagRequired("gid")
}

// options merges the flags over the configured limits. Only flags given on
// the command line take effect.
func (f *limitFlags) options(cmd *cobra.Command) gradebook.ImportOptions {
	opts := cfg.Import.Options(f.gid)
	if cmd.Flags().Changed("max-courses-per-semester") {
		opts.MaxCoursesPerSemester = f.maxCourses
	}
	if cmd.Flags().Changed("max-categories-per-course") {
		opts.MaxCategoriesPerCourse = f.maxCategory
	}
	if cmd.Flags().Changed("max-grades-per-category") {
		opts.MaxGradesPerCategory = f.maxGrades
	}
	return opts
}
