package engine

import (
	"github.com/oxhq/ablfmt/abl"
	"github.com/oxhq/ablfmt/core"
	"github.com/oxhq/ablfmt/formatter"
	"github.com/oxhq/ablfmt/internal/logging"
	"github.com/oxhq/ablfmt/syntax"
)

// twoPhaseColumn is the column the '=' of an assignment must pass before
// the statement is formatted in two phases.
const twoPhaseColumn = 30

// Detect returns the indices of the top-level statements that must be
// formatted leaves first and parents second: assignments whose '=' lies
// past column 30 and whose right side adds a one-line parenthesized
// expression holding both a comparison and an IF function.
func Detect(tree *syntax.Tree) map[int]bool {
	flagged := make(map[int]bool)
	syntax.PostOrder(tree.Root(), func(n *syntax.Node) {
		if n.Type() != abl.Assignment || !isAssignmentOwner(n.Parent()) {
			return
		}
		var eq *syntax.Node
		for _, c := range n.Children() {
			if c.Type() == "=" {
				eq = c
				break
			}
		}
		if eq == nil || eq.StartPosition().Column <= twoPhaseColumn {
			return
		}
		if needsTwoPhase(n) {
			flagged[syntax.RootChildIndex(n)] = true
		}
	})
	return flagged
}

func isAssignmentOwner(n *syntax.Node) bool {
	return n != nil && (n.Type() == abl.VariableAssignment || n.Type() == abl.AssignStatement)
}

func needsTwoPhase(assignment *syntax.Node) bool {
	found := false
	syntax.PostOrder(assignment, func(n *syntax.Node) {
		if found || n.Type() != abl.ParenthesizedExpression {
			return
		}
		parent := n.Parent()
		if parent == nil || parent.Type() != abl.AdditiveExpression {
			return
		}
		if !singleLine(n) || !singleLine(parent) {
			return
		}
		found = contains(n, abl.ComparisonExpression) && contains(n, abl.TernaryExpression)
	})
	return found
}

func singleLine(n *syntax.Node) bool {
	return n.StartPosition().Row == n.EndPosition().Row
}

func contains(n *syntax.Node, kind string) bool {
	found := false
	syntax.PostOrder(n, func(c *syntax.Node) {
		if c != n && c.Type() == kind {
			found = true
		}
	})
	return found
}

// isAssignmentContainer reports nodes that own a whole assignment.
func isAssignmentContainer(n *syntax.Node) bool {
	if n.Type() == abl.AssignStatement {
		return true
	}
	return n.Type() == abl.Assignment && n.Parent() != nil && n.Parent().Type() == abl.VariableAssignment
}

func (r *run) hasFormattableChildren(n *syntax.Node) bool {
	for _, c := range n.Children() {
		if formatter.First(r.formatters, c) != nil {
			return true
		}
	}
	return false
}

// flaggedStatements returns the top-level statements at the flagged indices.
func (r *run) flaggedStatements(flagged map[int]bool) []*syntax.Node {
	var out []*syntax.Node
	for i, c := range r.tree.Root().Children() {
		if flagged[i] {
			out = append(out, c)
		}
	}
	return out
}

// twoPhase formats the flagged statements. Leaves and assignment containers
// are formatted and applied first. After a reparse the remaining nodes are
// formatted without applying anything: each result is remembered so the
// parent builds on it, and only the outermost edits are applied at the end.
func (r *run) twoPhase(flagged map[int]bool) error {
	for _, stmt := range r.flaggedStatements(flagged) {
		syntax.PostOrder(stmt, func(n *syntax.Node) {
			if r.err != nil || n.IsStale() || formatter.IsBlockContainer(n.Type()) {
				return
			}
			if !r.hasFormattableChildren(n) || isAssignmentContainer(n) {
				r.format(n)
			}
		})
		if r.err != nil {
			return r.err
		}
	}
	if err := r.reparse(); err != nil {
		return err
	}

	var collected []core.Edit
	for _, stmt := range r.flaggedStatements(flagged) {
		syntax.PostOrder(stmt, func(n *syntax.Node) {
			if r.err != nil || formatter.IsBlockContainer(n.Type()) {
				return
			}
			if !r.hasFormattableChildren(n) || isAssignmentContainer(n) {
				return
			}
			f := formatter.First(r.formatters, n)
			if f == nil {
				return
			}
			edits, err := r.parse(f, n)
			if err != nil {
				r.err = err
				return
			}
			for _, e := range edits {
				if e.StartIndex == n.StartIndex() && e.OldEndIndex == n.EndIndex() {
					r.ft.Remember(n, e.Text)
				}
			}
			collected = append(collected, edits...)
		})
		if r.err != nil {
			return r.err
		}
	}
	collected = core.Dedupe(collected)
	applied := core.ApplyAll(r.tree, r.ft, collected)
	r.engine.edits += applied
	r.engine.logger.Debug("pass", logging.FieldPass, "two-phase", logging.FieldEdits, applied)
	return r.reparse()
}
