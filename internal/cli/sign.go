package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/commonid/internal/config"
	"github.com/roach88/commonid/internal/integrity"
)

// SignOptions holds flags for the sign command.
type SignOptions struct {
	*RootOptions
	Algorithm string
}

// SignResult is the data printed by sign.
type SignResult struct {
	Path      string `json:"path"`
	Algorithm string `json:"algorithm"`
	Signature string `json:"signature"`
	Embedded  string `json:"embedded"`
}

// NewSignCommand creates the sign command.
func NewSignCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SignOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sign [config-file]",
		Short: "Compute the signature to embed in a configuration",
		Long: `Compute the signature of a configuration file after normalization.

Copy the printed value into meta.signature after every edit. The salt
value, the messages section and the current signature do not take part,
so editing them never changes the signature.

Example:
  commonid sign ./config.json
  COMMONID_CONFIG=./config.toml commonid sign`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.ConfigPath()
			if len(args) == 1 {
				path = args[0]
			}
			return runSign(opts, path, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Algorithm, "algorithm", integrity.DefaultHashAlgorithm, "signature digest (md5|sha1|sha256|sha512)")

	return cmd
}

func runSign(opts *SignOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	if path == "" {
		return failWith(formatter, ExitCommandError, ErrCodeUsage, "no configuration file given (argument, --config or COMMONID_CONFIG)")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fail(formatter, ExitCommandError, &config.LoadError{Path: path, Err: err})
	}
	tree, err := config.DecodeTree(data, config.DetectFormat(path))
	if err != nil {
		return fail(formatter, ExitCommandError, &config.LoadError{Path: path, Err: err})
	}

	sig, err := integrity.Sign(tree, opts.Algorithm)
	if err != nil {
		return fail(formatter, ExitCommandError, err)
	}

	result := SignResult{Path: path, Algorithm: opts.Algorithm, Signature: sig}
	if meta, ok := tree["meta"].(map[string]any); ok {
		result.Embedded, _ = meta["signature"].(string)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintln(formatter.Writer, sig)
	if result.Embedded != "" && result.Embedded != sig {
		formatter.VerboseLog("embedded signature %s differs", result.Embedded)
	}
	return nil
}
