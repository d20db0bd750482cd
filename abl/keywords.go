package abl

import "strings"

// Node types produced by the parser. Names follow tree-sitter-abl.
const (
	SourceCode               = "source_code"
	Comment                  = "comment"
	Annotation               = "annotation"
	AnnotationName           = "annotation_name"
	IfStatement              = "if_statement"
	ElseIfStatement          = "else_if_statement"
	ElseStatement            = "else_statement"
	DoBlock                  = "do_block"
	RepeatStatement          = "repeat_statement"
	ForStatement             = "for_statement"
	ProcedureStatement       = "procedure_statement"
	Body                     = "body"
	AssignStatement          = "assign_statement"
	VariableAssignment       = "variable_assignment"
	Assignment               = "assignment"
	ReturnStatement          = "return_statement"
	UsingStatement           = "using_statement"
	AblStatement             = "abl_statement"
	QualifiedName            = "qualified_name"
	Identifier               = "identifier"
	NumberLiteral            = "number_literal"
	StringLiteral            = "string_literal"
	BooleanLiteral           = "boolean_literal"
	NullLiteral              = "null_literal"
	LogicalExpression        = "logical_expression"
	ComparisonExpression     = "comparison_expression"
	AdditiveExpression       = "additive_expression"
	MultiplicativeExpression = "multiplicative_expression"
	UnaryExpression          = "unary_expression"
	TernaryExpression        = "ternary_expression"
	ParenthesizedExpression  = "parenthesized_expression"
	FunctionCall             = "function_call"
	Arguments                = "arguments"
	ArrayAccess              = "array_access"
)

var blockKeywords = map[string]string{
	"DO":        DoBlock,
	"REPEAT":    RepeatStatement,
	"FOR":       ForStatement,
	"PROCEDURE": ProcedureStatement,
}

var comparisonOperators = map[string]bool{
	"=": true, "<>": true, "<": true, ">": true, "<=": true, ">=": true,
	"EQ": true, "NE": true, "LT": true, "GT": true, "LE": true, "GE": true,
	"BEGINS": true, "MATCHES": true, "CONTAINS": true,
}

var booleanWords = map[string]bool{
	"TRUE": true, "FALSE": true, "YES": true, "NO": true,
}

func upper(s string) string { return strings.ToUpper(s) }

// wordIs reports whether t is the given keyword, ignoring case.
func (t token) wordIs(keyword string) bool {
	return t.kind == tokWord && strings.EqualFold(t.text, keyword)
}
