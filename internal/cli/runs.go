package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/commonid/internal/ledger"
)

// RunsOptions holds flags for the runs command.
type RunsOptions struct {
	*RootOptions
	Limit int
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded processing runs",
		Long: `List the runs recorded in the ledger named by --ledger, newest first.
The ledger holds run metadata only, never row data.

Example:
  commonid runs --ledger ./runs.db --limit 10`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(opts, cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "maximum number of runs to list (0 for all)")

	return cmd
}

func runRuns(opts *RunsOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	path := opts.LedgerPath()
	if path == "" {
		return failWith(formatter, ExitCommandError, ErrCodeUsage, "no ledger given (--ledger or COMMONID_LEDGER)")
	}
	l, err := ledger.Open(path)
	if err != nil {
		return failWith(formatter, ExitCommandError, ErrCodeLedger, fmt.Sprintf("opening ledger: %v", err))
	}
	defer l.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	list, err := l.List(ctx, opts.Limit)
	if err != nil {
		return failWith(formatter, ExitCommandError, ErrCodeLedger, fmt.Sprintf("listing runs: %v", err))
	}

	if formatter.Format == "json" {
		return formatter.Success(list)
	}
	if len(list) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RECORDED\tREGION\tDOCUMENT\tROWS\tERRORS\tRESULT\tOUTPUT")
	for _, r := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			r.RecordedAt.Format(time.DateTime), r.Region, r.Document, r.Rows, r.ErrorRows, runResult(r), r.OutputFile)
	}
	return tw.Flush()
}

func runResult(r ledger.Run) string {
	switch {
	case !r.Valid:
		return "invalid"
	case r.MappingOnly:
		return "mapping"
	default:
		return "valid"
	}
}
