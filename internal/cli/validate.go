package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/commonid/internal/logger"
	"github.com/roach88/commonid/internal/pipeline"
)

// ValidationReport is the validate result for one input file.
type ValidationReport struct {
	Path        string      `json:"path"`
	Document    string      `json:"document"`
	Valid       bool        `json:"valid"`
	MappingOnly bool        `json:"mapping_only"`
	Rows        int         `json:"rows"`
	ErrorRows   int         `json:"error_rows"`
	Failures    []RowReport `json:"failures,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <input.csv>...",
		Short: "Validate documents without writing any output",
		Long: `Check CSV documents against the validation rules of a verified
configuration. Nothing is hashed or written; failing rows are listed with
their line numbers.

Example:
  commonid validate --config ./config.json --region TST people.csv`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, inputs []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	log := logger.Named("validate")

	cfg, err := loadConfig(opts, formatter)
	if err != nil {
		return err
	}
	p, err := pipeline.New(cfg, nil)
	if err != nil {
		return fail(formatter, ExitCommandError, err)
	}

	reports := make([]ValidationReport, 0, len(inputs))
	for _, input := range inputs {
		doc, err := readDocument(input, cfg.Source)
		if err != nil {
			e := describe(err)
			e.Code = ErrCodeInput
			_ = formatter.Error(e)
			return WrapExitError(ExitCommandError, ErrCodeInput, err)
		}
		formatter.VerboseLog("Validating %s (%s)", input, plural(len(doc.Rows), "row"))

		out, err := p.Process(doc)
		if err != nil {
			return fail(formatter, ExitCommandError, err)
		}
		report := ValidationReport{
			Path:        input,
			Document:    doc.Name,
			Valid:       out.Valid,
			MappingOnly: out.MappingOnly,
			Rows:        len(doc.Rows),
			ErrorRows:   out.Result.ErrorRows(),
			Failures:    rowReports(cfg.Source, out.Result),
		}
		log.Infow("document validated",
			logger.FieldDocument, doc.Name,
			logger.FieldRows, report.Rows,
			logger.FieldErrorRows, report.ErrorRows,
			logger.FieldMapping, report.MappingOnly,
		)
		reports = append(reports, report)
	}

	if formatter.Format == "json" {
		if err := formatter.Success(reports); err != nil {
			return err
		}
	} else {
		for _, r := range reports {
			printValidationReport(formatter, r)
		}
	}

	if invalid := countInvalid(reports); invalid > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%s failed validation", plural(invalid, "document")))
	}
	return nil
}

func printValidationReport(f *OutputFormatter, r ValidationReport) {
	kind := "full"
	if r.MappingOnly {
		kind = "mapping"
	}
	if r.Valid {
		fmt.Fprintf(f.Writer, "✓ %s: %s valid (%s document)\n", r.Path, plural(r.Rows, "row"), kind)
		return
	}
	fmt.Fprintf(f.Writer, "✗ %s: %s of %d invalid (%s document)\n", r.Path, plural(r.ErrorRows, "row"), r.Rows, kind)
	for _, row := range r.Failures {
		names := make([]string, 0, len(row.Errors))
		for name := range row.Errors {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			fmt.Fprintf(f.Writer, "  line %d: %s %s\n", row.Line, name, strings.Join(row.Errors[name], ", "))
		}
	}
}

func countInvalid(reports []ValidationReport) int {
	n := 0
	for _, r := range reports {
		if !r.Valid {
			n++
		}
	}
	return n
}
