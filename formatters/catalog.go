// Package formatters contains the concrete ABL formatting rules.
package formatters

import (
	"github.com/oxhq/ablfmt/config"
	"github.com/oxhq/ablfmt/formatter"
)

// Catalog lists every formatter in dispatch priority order. Variable
// assignments come first so they win over the generic expression rules.
func Catalog() []formatter.Constructor {
	return []formatter.Constructor{
		{Label: config.VariableAssignmentFormatting, New: NewVariableAssignment},
		{Label: config.AssignFormatting, New: NewAssign},
		{Label: config.IfFormatting, New: NewIf},
		{Label: config.IfFunctionFormatting, New: NewIfFunction},
		{Label: config.ExpressionFormatting, New: NewExpression},
		{Label: config.StatementFormatting, New: NewStatement},
		{Label: config.UsingFormatting, New: NewUsing},
		{Label: config.BlockFormatting, New: NewBlock},
	}
}
