package integrity

import (
	"fmt"
	"os"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/roach88/commonid/internal/config"
	"github.com/roach88/commonid/internal/logger"
	"github.com/roach88/commonid/internal/validation"
)

// Option configures LoadAndVerify and Verify.
type Option func(*options)

type options struct {
	env  Environment
	algo string
}

// WithEnvironment replaces the host lookups used to resolve salt files.
func WithEnvironment(env Environment) Option {
	return func(o *options) { o.env = env }
}

// WithHashAlgorithm selects the signature digest. The default is md5.
func WithHashAlgorithm(algo string) Option {
	return func(o *options) { o.algo = algo }
}

func newOptions(opts []Option) *options {
	o := &options{env: SystemEnvironment(), algo: DefaultHashAlgorithm}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// LoadAndVerify reads a configuration file (.json, .toml, .yaml or .yml),
// verifies it for region and returns it with an inline salt.
//
// Failures, in the order they are checked:
//   - *config.LoadError: unreadable or unparsable file
//   - *config.SchemaError: every structural violation found
//   - *SignatureError: content does not match meta.signature
//   - *SaltFileError: the salt file is missing, unreadable or malformed
func LoadAndVerify(path, region string, opts ...Option) (*config.Config, error) {
	log := logger.Named("integrity")
	log.Debugw("loading configuration", logger.FieldPath, path, logger.FieldRegion, region)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &config.LoadError{Path: path, Err: err}
	}
	tree, err := config.DecodeTree(data, config.DetectFormat(path))
	if err != nil {
		return nil, &config.LoadError{Path: path, Err: err}
	}

	cfg, err := Verify(tree, region, opts...)
	if err != nil {
		log.Infow("configuration rejected", logger.FieldPath, path, logger.FieldError, err)
		return cfg, err
	}
	log.Infow("configuration verified",
		logger.FieldPath, path,
		logger.FieldRegion, cfg.Meta.Region,
		logger.FieldSignature, cfg.Meta.Signature,
	)
	return cfg, nil
}

// Verify runs every check LoadAndVerify does on an already decoded tree.
// On a salt failure the verified configuration is returned alongside the
// error.
func Verify(tree map[string]any, region string, opts ...Option) (*config.Config, error) {
	o := newOptions(opts)

	cfg, violations := Check(tree, region)
	if len(violations) > 0 {
		return nil, &config.SchemaError{Violations: violations}
	}
	cfg = cfg.Normalize()

	actual, err := ComputeHash(cfg.Tree(), o.algo)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(actual, cfg.Meta.Signature) {
		return nil, errors.WithHint(
			&SignatureError{Expected: cfg.Meta.Signature, Actual: actual},
			"the configuration changed after it was signed; restore it or sign it again",
		)
	}

	if cfg.Algorithm.Salt.Source != config.SaltFile {
		return cfg, nil
	}
	path, err := SaltPath(cfg.Algorithm.Salt, o.env)
	if err != nil {
		return cfg, &SaltFileError{Config: cfg, Err: err}
	}
	content, err := readSalt(path, cfg.Algorithm.Salt.ValidatorRegex, o.env)
	if err != nil {
		return cfg, &SaltFileError{Config: cfg, Path: path, Err: err}
	}
	return cfg.WithInlineSalt(content), nil
}

// Check collects every structural violation of a decoded tree: the schema,
// cross references between sections, the region, each validation rule and
// the salt pattern. The returned config is a best-effort typed view and may
// be nil when the tree could not be mapped at all.
func Check(tree map[string]any, region string) (*config.Config, []config.Violation) {
	violations := config.CheckSchema(tree)

	cfg, err := config.FromTree(tree)
	if err != nil {
		violations = append(violations, config.Violation{
			Code:    config.ErrTypeMismatch,
			Message: err.Error(),
		})
	}
	if cfg == nil {
		return nil, violations
	}
	violations = append(violations, cfg.CrossCheck(region)...)

	if _, err := validation.Compile(cfg.Validations, cfg.Source.Aliases()); err != nil {
		var ce *validation.CompileError
		if errors.As(err, &ce) {
			for _, re := range ce.Errors {
				violations = append(violations, config.Violation{
					Code:    config.ErrInvalidRule,
					Path:    re.Path(),
					Message: fmt.Sprintf("%s: %s", re.Op, re.Reason),
				})
			}
		} else {
			violations = append(violations, config.Violation{Code: config.ErrInvalidRule, Path: "validations", Message: err.Error()})
		}
	}

	if pattern := cfg.Algorithm.Salt.ValidatorRegex; pattern != "" {
		if _, err := compileSaltPattern(pattern); err != nil {
			violations = append(violations, config.Violation{
				Code:    config.ErrInvalidSaltRegex,
				Path:    "algorithm.salt.validator_regex",
				Message: err.Error(),
			})
		}
	}
	return cfg, violations
}
