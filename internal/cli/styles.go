package cli

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// styles renders report output.
type styles struct {
	Path    lipgloss.Style
	Success lipgloss.Style
	Failure lipgloss.Style
	Detail  lipgloss.Style
	Header  lipgloss.Style
	Dim     lipgloss.Style

	DiffAdd    lipgloss.Style
	DiffRemove lipgloss.Style
	DiffHunk   lipgloss.Style
}

func newStyles(color bool) *styles {
	if !color {
		plain := lipgloss.NewStyle()
		return &styles{
			Path:       plain,
			Success:    plain,
			Failure:    plain,
			Detail:     plain,
			Header:     plain,
			Dim:        plain,
			DiffAdd:    plain,
			DiffRemove: plain,
			DiffHunk:   plain,
		}
	}
	return &styles{
		Path:       lipgloss.NewStyle().Bold(true),
		Success:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		Failure:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Detail:     lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Header:     lipgloss.NewStyle().Bold(true).Underline(true),
		Dim:        lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		DiffAdd:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		DiffRemove: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		DiffHunk:   lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
	}
}

// colorEnabled resolves --color. In auto mode color needs a terminal and
// an unset NO_COLOR.
func colorEnabled(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// diff colors a unified diff line by line.
func (s *styles) diff(text string) string {
	lines := strings.SplitAfter(text, "\n")
	var b strings.Builder
	for _, line := range lines {
		body := strings.TrimSuffix(line, "\n")
		switch {
		case strings.HasPrefix(body, "---"), strings.HasPrefix(body, "+++"):
			body = s.Path.Render(body)
		case strings.HasPrefix(body, "@@"):
			body = s.DiffHunk.Render(body)
		case strings.HasPrefix(body, "+"):
			body = s.DiffAdd.Render(body)
		case strings.HasPrefix(body, "-"):
			body = s.DiffRemove.Render(body)
		}
		b.WriteString(body)
		if strings.HasSuffix(line, "\n") {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
