package formatter

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TreeItem is one line of a tree: a title at some depth with an optional
// badge aligned to the right of the widest title.
type TreeItem struct {
	Title  string
	Level  int
	IsLast bool
	Detail string
}

// RenderTree renders items with box-drawing connectors, one per line.
func RenderTree(items []TreeItem) string {
	if len(items) == 0 {
		return ""
	}

	contents := make([]string, len(items))
	width := 0
	for i, it := range items {
		contents[i] = StyleDim.Render(connector(it)) + it.Title
		width = max(width, lipgloss.Width(contents[i]))
	}

	var b strings.Builder
	for i, it := range items {
		b.WriteString(contents[i])
		if it.Detail != "" {
			b.WriteString(strings.Repeat(" ", width-lipgloss.Width(contents[i])+2))
			b.WriteString(StyleBlue.Render("[ " + it.Detail + " ]"))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func connector(it TreeItem) string {
	if it.Level <= 0 {
		return ""
	}
	tail := "├─ "
	if it.IsLast {
		tail = "└─ "
	}
	return strings.Repeat("│  ", it.Level-1) + tail
}
