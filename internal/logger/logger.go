// Package logger holds the process-wide structured logger.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Field names shared by every package that logs.
const (
	FieldPath      = "path"
	FieldRegion    = "region"
	FieldSignature = "signature"
	FieldDocument  = "document"
	FieldRows      = "rows"
	FieldErrorRows = "error_rows"
	FieldMapping   = "mapping_only"
	FieldRunID     = "run_id"
	FieldStrategy  = "strategy"
	FieldError     = "error"
)

var (
	// Logger is the global logger. It discards everything until Initialize
	// is called, so library code and tests can log freely.
	Logger *zap.SugaredLogger
	// JSONOutput records the format chosen by Initialize.
	JSONOutput bool
)

func init() {
	Logger = zap.NewNop().Sugar()
}

// Initialize replaces the global logger. Output goes to stderr so it never
// mixes with command results on stdout. verbose lowers the level to debug.
func Initialize(jsonOutput, verbose bool) error {
	JSONOutput = jsonOutput

	level := zap.InfoLevel
	if verbose {
		level = zap.DebugLevel
	}

	if jsonOutput {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(level)
		cfg.OutputPaths = []string{"stderr"}
		cfg.ErrorOutputPaths = []string{"stderr"}
		zl, err := cfg.Build()
		if err != nil {
			return err
		}
		Logger = zl.Sugar()
		return nil
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encCfg.TimeKey = ""
	Logger = zap.New(zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.AddSync(os.Stderr),
		level,
	)).Sugar()
	return nil
}

// Named returns a child of the global logger for one component.
func Named(component string) *zap.SugaredLogger {
	return Logger.Named(component)
}
