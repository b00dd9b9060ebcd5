package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/commonid/internal/config"
	"github.com/roach88/commonid/internal/integrity"
)

// VerifyResult is the data printed by verify.
type VerifyResult struct {
	Path      string   `json:"path"`
	Region    string   `json:"region"`
	Version   string   `json:"version"`
	Signature string   `json:"signature"`
	Strategy  string   `json:"strategy"`
	Columns   []string `json:"columns"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check a configuration's structure, signature and salt",
		Long: `Load the configuration named by --config and run every integrity check:
structure, region, rule definitions, signature and salt file.

Example:
  commonid verify --config ./config.json --region TST`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(rootOpts, cmd)
		},
	}

	return cmd
}

func runVerify(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	cfg, err := loadConfig(opts, formatter)
	if err != nil {
		return err
	}

	result := VerifyResult{
		Path:      opts.ConfigPath(),
		Region:    cfg.Meta.Region,
		Version:   cfg.Meta.Version,
		Signature: cfg.Meta.Signature,
		Strategy:  cfg.Algorithm.Hash.Strategy,
		Columns:   cfg.Source.Aliases(),
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Configuration verified: %s\n", result.Path)
	fmt.Fprintf(formatter.Writer, "  region:    %s\n", result.Region)
	fmt.Fprintf(formatter.Writer, "  version:   %s\n", result.Version)
	fmt.Fprintf(formatter.Writer, "  signature: %s\n", result.Signature)
	fmt.Fprintf(formatter.Writer, "  strategy:  %s\n", result.Strategy)
	return nil
}

// loadConfig verifies the configuration named by the global settings and
// reports any failure through formatter.
func loadConfig(opts *RootOptions, formatter *OutputFormatter) (*config.Config, error) {
	path, region := opts.ConfigPath(), opts.Region()
	if path == "" {
		return nil, failWith(formatter, ExitCommandError, ErrCodeUsage, "no configuration file given (--config or COMMONID_CONFIG)")
	}
	if region == "" {
		return nil, failWith(formatter, ExitCommandError, ErrCodeUsage, "no region given (--region or COMMONID_REGION)")
	}

	formatter.VerboseLog("Loading configuration %s for region %s", path, region)
	cfg, err := integrity.LoadAndVerify(path, region)
	if err != nil {
		return nil, fail(formatter, ExitCommandError, err)
	}
	return cfg, nil
}
