package pipeline

import (
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/roach88/commonid/internal/clock"
	"github.com/roach88/commonid/internal/config"
	"github.com/roach88/commonid/internal/document"
	"github.com/roach88/commonid/internal/hashing"
	"github.com/roach88/commonid/internal/logger"
	"github.com/roach88/commonid/internal/mapping"
	"github.com/roach88/commonid/internal/validation"
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock sets the clock validators read "today" and the live year and
// month tokens from.
func WithClock(c clock.Clock) Option {
	return func(p *Pipeline) { p.clock = c }
}

// Pipeline processes documents for one verified configuration.
type Pipeline struct {
	cfg        *config.Config
	clock      clock.Clock
	validators validation.Set
	hasher     hashing.Hasher
	required   mapping.Set
}

// Selection names the columns written to one output file and the suffix
// appended to its name.
type Selection struct {
	Columns []config.Column
	Postfix string
}

// Outcome is the result of processing one document.
type Outcome struct {
	Valid       bool
	MappingOnly bool
	Result      validation.DocumentResult
	// Output is the hashed document when Valid, the error document
	// otherwise.
	Output  document.Document
	Columns []config.Column
	Postfix string
	// Mapping is the mapping file selection written next to the output of
	// a valid full document. It is nil for mapping documents, invalid
	// documents and configurations without mapping columns.
	Mapping *Selection
}

// New prepares a pipeline. factory may be nil, in which case the hasher is
// chosen by the configuration's hash strategy.
func New(cfg *config.Config, factory hashing.Factory, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{cfg: cfg, clock: clock.System{}}
	for _, opt := range opts {
		opt(p)
	}
	if factory == nil {
		factory = hashing.DefaultFactory
	}

	if !cfg.Algorithm.Salt.Resolved() {
		return nil, &RuntimeError{
			Code:    ErrCodeUnresolvedSalt,
			Message: "configuration salt must be resolved before processing",
		}
	}

	set, err := validation.Compile(cfg.Validations, cfg.Source.Aliases(), validation.WithClock(p.clock))
	if err != nil {
		return nil, &RuntimeError{Code: ErrCodeInvalidRules, Message: "build validators", Err: err}
	}
	p.validators = set

	h, err := factory(cfg.Algorithm)
	if err != nil {
		code := ErrCodeHashFailed
		if errors.Is(err, hashing.ErrUnresolvedSalt) {
			code = ErrCodeUnresolvedSalt
		}
		return nil, &RuntimeError{Code: code, Message: "build hasher", Err: err}
	}
	p.hasher = h

	p.required = mapping.RequiredColumns(cfg.Algorithm.Columns, cfg.Source, cfg.DestinationMap)
	return p, nil
}

// Required returns the columns a mapping document carries.
func (p *Pipeline) Required() mapping.Set {
	return p.required
}

// Process runs doc through classification, validation and either hashing
// or error rendering. doc is not modified. An error is returned only when
// hashing fails; invalid rows are reported in the Outcome.
func (p *Pipeline) Process(doc document.Document) (*Outcome, error) {
	log := logger.Named("pipeline")

	out := &Outcome{MappingOnly: mapping.IsMappingOnly(doc, p.required)}

	set := p.validators
	if out.MappingOnly {
		set = set.Restrict(p.required.Sorted())
	}
	out.Result = validation.ValidateDocument(set, doc)
	out.Valid = out.Result.OK

	if !out.Valid {
		out.Output = validation.RenderErrorDocument(p.cfg.Source, doc, out.Result)
		out.Columns = p.cfg.DestinationErrors.Columns
		out.Postfix = p.cfg.DestinationErrors.Postfix
		log.Infow("document failed validation",
			logger.FieldDocument, doc.Name,
			logger.FieldRows, len(doc.Rows),
			logger.FieldErrorRows, out.Result.ErrorRows(),
			logger.FieldMapping, out.MappingOnly,
		)
		return out, nil
	}

	hashed, err := hashing.Apply(p.hasher, doc)
	if err != nil {
		return nil, &RuntimeError{Code: ErrCodeHashFailed, Message: "hash document " + doc.Name, Err: err}
	}
	out.Output = hashed

	mappingCols := p.mappingColumns()
	if out.MappingOnly {
		out.Columns = mappingCols
		out.Postfix = p.cfg.DestinationMap.Postfix
	} else {
		out.Columns = p.cfg.Destination.Columns
		out.Postfix = p.cfg.Destination.Postfix
		if len(mappingCols) > 0 {
			out.Mapping = &Selection{Columns: mappingCols, Postfix: p.cfg.DestinationMap.Postfix}
		}
	}

	log.Infow("document processed",
		logger.FieldDocument, doc.Name,
		logger.FieldRows, len(doc.Rows),
		logger.FieldMapping, out.MappingOnly,
	)
	return out, nil
}

// mappingColumns is destination_map limited to the required columns and
// the hash outputs, in destination_map order.
func (p *Pipeline) mappingColumns() []config.Column {
	outputs := p.hasher.Outputs()
	var cols []config.Column
	for _, col := range p.cfg.DestinationMap.Columns {
		if p.required.Has(col.Alias) || slices.Contains(outputs, col.Alias) {
			cols = append(cols, col)
		}
	}
	return cols
}
