package engine

import (
	"fmt"

	"github.com/oxhq/ablfmt/formatter"
	"github.com/oxhq/ablfmt/syntax"
)

// FormatError reports a formatter that failed on a node. No output is
// produced when one occurs.
type FormatError struct {
	Label    string
	NodeType string
	Offset   uint32
	Cause    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s failed on %s at offset %d: %v", e.Label, e.NodeType, e.Offset, e.Cause)
}

func (e *FormatError) Unwrap() error { return e.Cause }

func newFormatError(f formatter.Formatter, n *syntax.Node, cause any) *FormatError {
	err, ok := cause.(error)
	if !ok {
		err = fmt.Errorf("%v", cause)
	}
	return &FormatError{
		Label:    f.Label(),
		NodeType: n.Type(),
		Offset:   n.StartIndex(),
		Cause:    err,
	}
}
