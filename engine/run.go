package engine

import (
	"context"
	"fmt"

	"github.com/oxhq/ablfmt/core"
	"github.com/oxhq/ablfmt/formatter"
	"github.com/oxhq/ablfmt/internal/logging"
	"github.com/oxhq/ablfmt/syntax"
)

// run is the state of one FormatText call.
type run struct {
	engine     *Engine
	ctx        context.Context
	tree       *syntax.Tree
	ft         *core.FullText
	formatters []formatter.Formatter
	err        error
}

// parse runs f on n, turning a panic into a FormatError.
func (r *run) parse(f formatter.Formatter, n *syntax.Node) (edits []core.Edit, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = newFormatError(f, n, p)
		}
	}()
	return f.Parse(n, r.ft), nil
}

// format dispatches n to its formatter and applies the edits at once.
func (r *run) format(n *syntax.Node) {
	f := formatter.First(r.formatters, n)
	if f == nil {
		return
	}
	edits, err := r.parse(f, n)
	if err != nil {
		r.err = err
		return
	}
	if len(edits) == 0 {
		return
	}
	r.engine.edits += core.ApplyAll(r.tree, r.ft, edits)
	r.engine.logger.Debug("edit", logging.FieldLabel, f.Label(), logging.FieldNodeType, n.Type(),
		logging.FieldOffset, n.StartIndex(), logging.FieldEdits, len(edits))
}

// reparse replaces the tree with a fresh parse of the current text, seeded
// with the edited tree.
func (r *run) reparse() error {
	result, err := r.engine.parser.Parse(r.ctx, r.ft.Text, r.tree)
	if err != nil {
		return fmt.Errorf("reparse: %w", err)
	}
	r.tree = result.Tree
	r.ft.Forget()
	r.engine.logger.Debug("reparsed", "changed", len(result.ChangedRanges))
	return nil
}

// generic formats every node outside exclusion regions, block bodies and
// the statements handled by the two-phase protocol.
func (r *run) generic(flagged map[int]bool) error {
	markers := collectMarkers(r.tree.Root(), r.ft)
	skip := false
	before := r.engine.edits
	syntax.PostOrder(r.tree.Root(), func(n *syntax.Node) {
		if r.err != nil {
			return
		}
		if start, end := formatter.ExclusionMarker(n, r.ft); start || end {
			skip = start
			return
		}
		if skip || n.IsStale() || formatter.IsBlockContainer(n.Type()) {
			return
		}
		if flagged[syntax.RootChildIndex(n)] || markers.overlaps(n) {
			return
		}
		r.format(n)
	})
	r.engine.logger.Debug("pass", logging.FieldPass, "generic", logging.FieldEdits, r.engine.edits-before)
	return r.err
}

// blocks runs the block formatter over every block body. Only leading
// whitespace changes, so line numbers stay put.
func (r *run) blocks() error {
	before := r.engine.edits
	syntax.PostOrder(r.tree.Root(), func(n *syntax.Node) {
		if r.err != nil || n.IsStale() || !formatter.IsBlockContainer(n.Type()) {
			return
		}
		r.format(n)
	})
	r.engine.logger.Debug("pass", logging.FieldPass, "blocks", logging.FieldEdits, r.engine.edits-before)
	return r.err
}

// markers are the exclusion annotations of a tree. Their positions follow
// the edits applied to the tree, so the regions they span stay accurate
// during a pass.
type markers struct {
	nodes []*syntax.Node
	ft    *core.FullText
}

func collectMarkers(root *syntax.Node, ft *core.FullText) markers {
	return markers{nodes: formatter.ExclusionMarkers(root, ft), ft: ft}
}

// overlaps reports whether n shares a row with an exclusion region. It
// keeps enclosing statements from reflowing excluded lines.
func (m markers) overlaps(n *syntax.Node) bool {
	if len(m.nodes) == 0 {
		return false
	}
	start, end := n.StartPosition().Row, n.EndPosition().Row
	last := n.Tree().Root().EndPosition().Row
	for _, r := range formatter.ExclusionRegions(m.nodes, m.ft, last) {
		if r.Start <= end && start <= r.End {
			return true
		}
	}
	return false
}
