// Package worker runs the formatter as a subprocess speaking JSON lines
// over stdin and stdout, and provides the client that drives it.
package worker

import "github.com/oxhq/ablfmt/syntax"

// Message types.
const (
	TypeFormat   = "format"
	TypeParse    = "parse"
	TypeCompare  = "compare"
	TypePing     = "ping"
	TypeShutdown = "shutdown"

	TypeReady         = "ready"
	TypeFormatResult  = "formatResult"
	TypeParseResult   = "parseResult"
	TypeCompareResult = "compareResult"
	TypePong          = "pong"
	TypeError         = "error"
)

// Request is one message sent to the worker.
type Request struct {
	Type    string   `json:"type"`
	ID      int64    `json:"id,omitempty"`
	Text    string   `json:"text,omitempty"`
	Text1   string   `json:"text1,omitempty"`
	Text2   string   `json:"text2,omitempty"`
	FileID  string   `json:"fileId,omitempty"`
	Options *Options `json:"options,omitempty"`
}

// Options travel with a request. Settings are layered over the worker's
// own settings for that request only.
type Options struct {
	EOL      string         `json:"eol,omitempty"`
	Settings map[string]any `json:"settings,omitempty"`
}

// Response is one message sent by the worker.
type Response struct {
	Type          string         `json:"type"`
	ID            int64          `json:"id,omitempty"`
	FileID        string         `json:"fileId,omitempty"`
	Success       bool           `json:"success"`
	Error         string         `json:"error,omitempty"`
	FormattedText string         `json:"formattedText,omitempty"`
	Tree          *Tree          `json:"tree,omitempty"`
	ErrorRanges   []syntax.Range `json:"errorRanges,omitempty"`
	EOL           string         `json:"eol,omitempty"`
	Result        bool           `json:"result,omitempty"`
	Mismatch      string         `json:"mismatch,omitempty"`
	Timestamp     int64          `json:"timestamp,omitempty"`
}

// Tree is the serialized form of a syntax tree.
type Tree struct {
	RootNode  *Node `json:"rootNode"`
	HasErrors bool  `json:"hasErrors"`
}

// Node is the serialized form of a syntax node.
type Node struct {
	ID              uint64       `json:"id"`
	Type            string       `json:"type"`
	Text            string       `json:"text"`
	StartPosition   syntax.Point `json:"startPosition"`
	EndPosition     syntax.Point `json:"endPosition"`
	StartIndex      uint32       `json:"startIndex"`
	EndIndex        uint32       `json:"endIndex"`
	HasError        bool         `json:"hasError"`
	ChildCount      int          `json:"childCount"`
	NamedChildCount int          `json:"namedChildCount"`
	IsNamed         bool         `json:"isNamed"`
	IsMissing       bool         `json:"isMissing"`
	Children        []*Node      `json:"children"`
}

// SerializeTree converts tree into its wire form.
func SerializeTree(tree *syntax.Tree) *Tree {
	root := tree.Root()
	return &Tree{RootNode: serializeNode(root), HasErrors: root.HasError()}
}

func serializeNode(n *syntax.Node) *Node {
	out := &Node{
		ID:              n.ID(),
		Type:            n.Type(),
		Text:            n.Text(),
		StartPosition:   n.StartPosition(),
		EndPosition:     n.EndPosition(),
		StartIndex:      n.StartIndex(),
		EndIndex:        n.EndIndex(),
		HasError:        n.HasError(),
		ChildCount:      n.ChildCount(),
		NamedChildCount: n.NamedChildCount(),
		IsNamed:         n.IsNamed(),
		IsMissing:       n.IsMissing(),
		Children:        make([]*Node, 0, n.ChildCount()),
	}
	for _, c := range n.Children() {
		out.Children = append(out.Children, serializeNode(c))
	}
	return out
}

