// Package engine drives formatting: it parses the source, walks the tree,
// dispatches nodes to formatters and keeps tree and text in sync while
// edits are applied.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/oxhq/ablfmt/core"
	"github.com/oxhq/ablfmt/formatter"
	"github.com/oxhq/ablfmt/formatters"
	"github.com/oxhq/ablfmt/internal/logging"
	"github.com/oxhq/ablfmt/syntax"
)

// ErrNoParser is returned when the engine was built without a parser.
var ErrNoParser = errors.New("engine: no parser configured")

// Config is the configuration an engine formats with. Overrides found in a
// document apply to that document only.
type Config interface {
	formatter.Configuration
	WithOverrides(overrides map[string]any) formatter.Configuration
}

// Engine formats documents. It is not safe for concurrent use; give every
// goroutine its own engine.
type Engine struct {
	parser  syntax.Parser
	config  Config
	catalog []formatter.Constructor
	logger  *log.Logger

	edits int
}

// Option customizes an Engine.
type Option func(*Engine)

// WithLogger sets the logger passes are reported to.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithCatalog replaces the formatter catalog.
func WithCatalog(ctors []formatter.Constructor) Option {
	return func(e *Engine) { e.catalog = ctors }
}

// New returns an engine that parses with parser and formats with the
// formatters cfg enables.
func New(parser syntax.Parser, cfg Config, opts ...Option) *Engine {
	e := &Engine{
		parser:  parser,
		config:  cfg,
		catalog: formatters.Catalog(),
		logger:  logging.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Edits reports how many edits the last FormatText call applied.
func (e *Engine) Edits() int { return e.edits }

// FormatText formats source, whose lines end with eol.
func (e *Engine) FormatText(source string, eol core.EOL) (string, error) {
	return e.FormatTextContext(context.Background(), source, eol)
}

// FormatTextContext is FormatText with a context that bounds every parse.
func (e *Engine) FormatTextContext(ctx context.Context, source string, eol core.EOL) (string, error) {
	if e.parser == nil {
		return "", ErrNoParser
	}
	e.edits = 0
	start := time.Now()

	result, err := e.parser.Parse(ctx, source, nil)
	if err != nil {
		return "", fmt.Errorf("parse: %w", err)
	}
	r := &run{
		engine: e,
		ctx:    ctx,
		tree:   result.Tree,
		ft:     core.NewFullText(source, eol),
	}
	defer func() { e.release(r.tree) }()
	r.formatters = formatter.Build(e.configFor(r.tree, r.ft), e.catalog)

	flagged := Detect(r.tree)
	if len(flagged) > 0 {
		e.logger.Debug("two-phase statements", "indices", len(flagged))
		if err := r.twoPhase(flagged); err != nil {
			return "", err
		}
	}
	if err := r.generic(flagged); err != nil {
		return "", err
	}
	if err := r.reparse(); err != nil {
		return "", err
	}
	if err := r.blocks(); err != nil {
		return "", err
	}

	e.logger.Debug("formatted", logging.FieldEdits, e.edits, logging.FieldDuration, time.Since(start))
	return r.ft.Text, nil
}

// release hands a finished tree back to parsers that keep per-tree state.
func (e *Engine) release(t *syntax.Tree) {
	if rel, ok := e.parser.(syntax.Releaser); ok && t != nil {
		rel.Release(t)
	}
}

// configFor applies the document's settings override comment, if any.
func (e *Engine) configFor(tree *syntax.Tree, ft *core.FullText) formatter.Configuration {
	overrides, err := Overrides(tree.Root(), ft)
	switch {
	case err != nil:
		e.logger.Warn("ignoring settings override", logging.FieldError, err)
	case overrides != nil:
		e.logger.Debug("settings override", "keys", len(overrides))
		return e.config.WithOverrides(overrides)
	}
	return e.config
}
