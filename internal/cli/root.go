package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roach88/commonid/internal/logger"
)

// EnvPrefix prefixes the environment variables that stand in for the
// global flags: COMMONID_CONFIG, COMMONID_REGION, COMMONID_LEDGER.
const EnvPrefix = "COMMONID"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	settings *viper.Viper
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// ConfigPath is the processing configuration file.
func (o *RootOptions) ConfigPath() string { return o.settings.GetString("config") }

// Region is the region the configuration must be signed for.
func (o *RootOptions) Region() string { return o.settings.GetString("region") }

// LedgerPath is the run ledger database, empty when runs are not recorded.
func (o *RootOptions) LedgerPath() string { return o.settings.GetString("ledger") }

// NewRootCommand creates the root command for the commonid CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{settings: newSettings()}

	cmd := &cobra.Command{
		Use:   "commonid",
		Short: "commonid - salted common identifiers for tabular records",
		Long: `Validate tabular documents against a signed configuration and derive
salted, one-way common identifiers from their columns.

Global settings can also come from the environment:
  COMMONID_CONFIG   configuration file (--config)
  COMMONID_REGION   expected region (--region)
  COMMONID_LEDGER   run ledger database (--ledger)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return logger.Initialize(opts.Format == "json", opts.Verbose)
		},
	}

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.StringP("config", "c", "", "configuration file (.json, .toml, .yaml)")
	flags.StringP("region", "r", "", "region the configuration must be signed for")
	flags.String("ledger", "", "SQLite run ledger; runs are not recorded when empty")

	for _, name := range []string{"config", "region", "ledger"} {
		_ = opts.settings.BindPFlag(name, flags.Lookup(name))
	}

	cmd.AddCommand(NewSignCommand(opts))
	cmd.AddCommand(NewVerifyCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewProcessCommand(opts))
	cmd.AddCommand(NewRunsCommand(opts))

	return cmd
}

// newSettings builds the viper instance backing the global flags. A flag
// set on the command line wins over the environment.
func newSettings() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}
