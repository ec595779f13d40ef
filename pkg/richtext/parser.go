package richtext

import (
	"encoding/json"
	"strings"
	"unicode"
)

// PlainText flattens serialized editor content into plain text. Content that
// is not the expected JSON shape is returned as-is, so plain-string entries
// written by older clients still preview correctly.
func PlainText(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, `{"root":`) {
		return content
	}

	var root Root
	if err := json.Unmarshal([]byte(trimmed), &root); err != nil {
		return content
	}

	var sb strings.Builder
	walk(root.Root, &sb)
	return strings.TrimRight(sb.String(), "\n")
}

// Excerpt returns the first maxLen runes of the flattened content, cut at a
// word boundary with an ellipsis. Used for entry list previews and for naming
// an entry inside conflict notices.
func Excerpt(content string, maxLen int) string {
	text := strings.Join(strings.Fields(PlainText(content)), " ")
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}

	cut := maxLen
	for cut > 0 && !unicode.IsSpace(runes[cut]) {
		cut--
	}
	if cut == 0 {
		cut = maxLen
	}
	return strings.TrimSpace(string(runes[:cut])) + "…"
}

func walk(node Node, sb *strings.Builder) {
	switch node.Type {
	case "text":
		sb.WriteString(node.Text)

	case "linebreak":
		sb.WriteString("\n")

	case "list":
		for _, child := range node.Children {
			walkListItem(child, sb, node.ListType)
		}

	case "link":
		for _, child := range node.Children {
			walk(child, sb)
		}

	default:
		// root, paragraph, heading, quote and anything unrecognized: recurse
		// and terminate block-level nodes with a newline.
		for _, child := range node.Children {
			walk(child, sb)
		}
		if isBlock(node.Type) {
			sb.WriteString("\n")
		}
	}
}

func walkListItem(node Node, sb *strings.Builder, listType string) {
	switch listType {
	case "check":
		if node.Checked {
			sb.WriteString("[x] ")
		} else {
			sb.WriteString("[ ] ")
		}
	default:
		sb.WriteString("- ")
	}
	for _, child := range node.Children {
		walk(child, sb)
	}
	sb.WriteString("\n")
}

func isBlock(nodeType string) bool {
	switch nodeType {
	case "paragraph", "heading", "quote":
		return true
	}
	return false
}
