package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/commonid/internal/config"
	"github.com/roach88/commonid/internal/document"
	"github.com/roach88/commonid/internal/ledger"
	"github.com/roach88/commonid/internal/logger"
	"github.com/roach88/commonid/internal/pipeline"
)

// ProcessOptions holds flags for the process command.
type ProcessOptions struct {
	*RootOptions
	OutDir string
}

// ProcessReport is the process result for one input file.
type ProcessReport struct {
	Path        string   `json:"path"`
	Document    string   `json:"document"`
	Valid       bool     `json:"valid"`
	MappingOnly bool     `json:"mapping_only"`
	Rows        int      `json:"rows"`
	ErrorRows   int      `json:"error_rows"`
	Outputs     []string `json:"outputs"`
	RunID       string   `json:"run_id,omitempty"`
}

// NewProcessCommand creates the process command.
func NewProcessCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProcessOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "process <input.csv>...",
		Short: "Validate documents and write identifiers or error reports",
		Long: `Process CSV documents with a verified configuration.

A valid document is hashed and written with the destination columns, plus a
mapping file when the configuration defines one. A document carrying only
the identifier inputs yields the mapping file alone. An invalid document
yields an error report with one line per input row and nothing else.

Example:
  commonid process --config ./config.json --region TST --out ./out people.csv
  commonid process --ledger ./runs.db people.csv households.csv`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.OutDir, "out", "o", ".", "directory for output files")

	return cmd
}

func runProcess(opts *ProcessOptions, inputs []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	log := logger.Named("process")

	cfg, err := loadConfig(opts.RootOptions, formatter)
	if err != nil {
		return err
	}
	p, err := pipeline.New(cfg, nil)
	if err != nil {
		return fail(formatter, ExitCommandError, err)
	}

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return failWith(formatter, ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("creating output directory: %v", err))
	}

	var runs *ledger.Ledger
	if path := opts.LedgerPath(); path != "" {
		runs, err = ledger.Open(path)
		if err != nil {
			return failWith(formatter, ExitCommandError, ErrCodeLedger, fmt.Sprintf("opening ledger: %v", err))
		}
		defer func() {
			if closeErr := runs.Close(); closeErr != nil {
				log.Errorw("error closing ledger", logger.FieldError, closeErr)
			}
		}()
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	reports := make([]ProcessReport, 0, len(inputs))
	for _, input := range inputs {
		report, err := processOne(ctx, p, cfg, runs, input, opts.OutDir, formatter)
		if err != nil {
			return err
		}
		log.Infow("document processed",
			logger.FieldDocument, report.Document,
			logger.FieldRows, report.Rows,
			logger.FieldErrorRows, report.ErrorRows,
			logger.FieldMapping, report.MappingOnly,
			logger.FieldRunID, report.RunID,
		)
		reports = append(reports, report)
	}

	if formatter.Format == "json" {
		if err := formatter.Success(reports); err != nil {
			return err
		}
	} else {
		for _, r := range reports {
			mark := "✓"
			if !r.Valid {
				mark = "✗"
			}
			fmt.Fprintf(formatter.Writer, "%s %s: %s, %s failed\n", mark, r.Path, plural(r.Rows, "row"), plural(r.ErrorRows, "row"))
			for _, out := range r.Outputs {
				fmt.Fprintf(formatter.Writer, "    wrote %s\n", out)
			}
		}
	}

	invalid := 0
	for _, r := range reports {
		if !r.Valid {
			invalid++
		}
	}
	if invalid > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%s failed validation", plural(invalid, "document")))
	}
	return nil
}

func processOne(ctx context.Context, p *pipeline.Pipeline, cfg *config.Config, runs *ledger.Ledger, input, outDir string, formatter *OutputFormatter) (ProcessReport, error) {
	doc, err := readDocument(input, cfg.Source)
	if err != nil {
		e := describe(err)
		e.Code = ErrCodeInput
		_ = formatter.Error(e)
		return ProcessReport{}, WrapExitError(ExitCommandError, ErrCodeInput, err)
	}
	formatter.VerboseLog("Processing %s (%s)", input, plural(len(doc.Rows), "row"))

	out, err := p.Process(doc)
	if err != nil {
		return ProcessReport{}, fail(formatter, ExitCommandError, err)
	}

	report := ProcessReport{
		Path:        input,
		Document:    doc.Name,
		Valid:       out.Valid,
		MappingOnly: out.MappingOnly,
		Rows:        len(doc.Rows),
		ErrorRows:   out.Result.ErrorRows(),
	}

	written, err := writeDocument(outDir, input, out.Output, out.Columns, out.Postfix)
	if err != nil {
		return report, failWith(formatter, ExitCommandError, ErrCodeWriteFailed, err.Error())
	}
	report.Outputs = append(report.Outputs, written)

	if out.Mapping != nil {
		written, err := writeDocument(outDir, input, out.Output, out.Mapping.Columns, out.Mapping.Postfix)
		if err != nil {
			return report, failWith(formatter, ExitCommandError, ErrCodeWriteFailed, err.Error())
		}
		report.Outputs = append(report.Outputs, written)
	}

	if runs != nil {
		run, err := runs.Record(ctx, ledger.Run{
			Region:          cfg.Meta.Region,
			ConfigSignature: cfg.Meta.Signature,
			Document:        doc.Name,
			Rows:            report.Rows,
			ErrorRows:       report.ErrorRows,
			Valid:           report.Valid,
			MappingOnly:     report.MappingOnly,
			OutputFile:      document.OutputName(input, out.Postfix),
		})
		if err != nil {
			return report, failWith(formatter, ExitCommandError, ErrCodeLedger, fmt.Sprintf("recording run: %v", err))
		}
		report.RunID = run.ID
	}
	return report, nil
}
