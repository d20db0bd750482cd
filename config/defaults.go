package config

// Formatter labels and their options.
const (
	VariableAssignmentFormatting = "variableAssignmentFormatting"
	AssignFormatting             = "assignFormatting"
	AssignLocation               = "assignFormattingAssignLocation"
	AssignAlignRightExpression   = "assignFormattingAlignRightExpression"
	AssignEndDotLocation         = "assignFormattingEndDotLocation"
	IfFormatting                 = "ifFormatting"
	IfThenLocation               = "ifFormattingThenLocation"
	IfDoLocation                 = "ifFormattingDoLocation"
	IfStatementLocation          = "ifFormattingStatementLocation"
	IfFunctionFormatting         = "ifFunctionFormatting"
	IfFunctionElseLocation       = "ifFunctionFormattingElseLocation"
	ExpressionFormatting         = "expressionFormatting"
	ExpressionLogicalLocation    = "expressionFormattingLogicalLocation"
	StatementFormatting          = "statementFormatting"
	UsingFormatting              = "usingFormatting"
	BlockFormatting              = "blockFormatting"
)

// DefaultSettings enables every formatter with conservative layout options.
func DefaultSettings() map[string]any {
	return map[string]any{
		KeyTabSize: DefaultTabSize,
		KeyCasing:  "preserve",

		VariableAssignmentFormatting: true,

		AssignFormatting:           true,
		AssignLocation:             "Same",
		AssignAlignRightExpression: "Yes",
		AssignEndDotLocation:       "Same",

		IfFormatting:        true,
		IfThenLocation:      "Same",
		IfDoLocation:        "Same",
		IfStatementLocation: "Same",

		IfFunctionFormatting:   true,
		IfFunctionElseLocation: "Same",

		ExpressionFormatting:      true,
		ExpressionLogicalLocation: "Same",

		StatementFormatting: true,
		UsingFormatting:     true,
		BlockFormatting:     true,
	}
}
