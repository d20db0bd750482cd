package engine

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/oxhq/ablfmt/abl"
	"github.com/oxhq/ablfmt/core"
	"github.com/oxhq/ablfmt/syntax"
)

// OverrideMarker announces a settings override comment at the top of a
// document:
//
//	/* formatterSettingsOverride */
//	/* { "AblFormatter.ifFormattingThenLocation": "New" } */
const OverrideMarker = "formatterSettingsOverride"

// Overrides returns the settings carried by the override comment of root,
// nil when there is none, or an error when the comment is not valid JSON.
func Overrides(root *syntax.Node, ft *core.FullText) (map[string]any, error) {
	if root.ChildCount() < 2 {
		return nil, nil
	}
	if !strings.Contains(ft.CurrentText(root.Child(0)), OverrideMarker) {
		return nil, nil
	}
	second := root.Child(1)
	text := ft.CurrentText(second)
	if second.Type() != abl.Comment || !strings.HasPrefix(text, "/*") || !strings.HasSuffix(text, "*/") || len(text) < 4 {
		return nil, nil
	}
	var overrides map[string]any
	if err := json.Unmarshal([]byte(text[2:len(text)-2]), &overrides); err != nil {
		return nil, fmt.Errorf("settings override: %w", err)
	}
	return overrides, nil
}
