package richtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlainTextParagraphs(t *testing.T) {
	content := `{"root":{"type":"root","children":[
		{"type":"paragraph","children":[{"type":"text","text":"First line."}]},
		{"type":"paragraph","children":[{"type":"text","text":"Second line."}]}
	]}}`

	assert.Equal(t, "First line.\nSecond line.", PlainText(content))
}

func TestPlainTextChecklist(t *testing.T) {
	content := `{"root":{"type":"root","children":[
		{"type":"list","listType":"check","children":[
			{"type":"listitem","checked":true,"children":[{"type":"text","text":"pack bags"}]},
			{"type":"listitem","children":[{"type":"text","text":"book taxi"}]}
		]}
	]}}`

	assert.Equal(t, "[x] pack bags\n[ ] book taxi", PlainText(content))
}

func TestPlainTextBulletListAndLink(t *testing.T) {
	content := `{"root":{"type":"root","children":[
		{"type":"list","listType":"bullet","children":[
			{"type":"listitem","children":[{"type":"link","url":"https://example.com","children":[{"type":"text","text":"a link"}]}]}
		]}
	]}}`

	assert.Equal(t, "- a link", PlainText(content))
}

func TestPlainTextLinebreak(t *testing.T) {
	content := `{"root":{"type":"root","children":[
		{"type":"paragraph","children":[
			{"type":"text","text":"above"},
			{"type":"linebreak"},
			{"type":"text","text":"below"}
		]}
	]}}`

	assert.Equal(t, "above\nbelow", PlainText(content))
}

func TestPlainTextPassesThroughNonJSON(t *testing.T) {
	assert.Equal(t, "just a plain string", PlainText("just a plain string"))
	assert.Equal(t, `{"root": broken`, PlainText(`{"root": broken`))
}

func TestExcerptShortContentUntouched(t *testing.T) {
	content := `{"root":{"type":"root","children":[{"type":"paragraph","children":[{"type":"text","text":"short note"}]}]}}`

	assert.Equal(t, "short note", Excerpt(content, 50))
}

func TestExcerptCutsAtWordBoundary(t *testing.T) {
	got := Excerpt("the quick brown fox jumps over the lazy dog", 15)

	assert.Equal(t, "the quick brown…", got)
}

func TestExcerptCollapsesWhitespace(t *testing.T) {
	content := `{"root":{"type":"root","children":[
		{"type":"paragraph","children":[{"type":"text","text":"one"}]},
		{"type":"paragraph","children":[{"type":"text","text":"two"}]}
	]}}`

	assert.Equal(t, "one two", Excerpt(content, 50))
}

func TestExcerptUnbreakableWordHardCut(t *testing.T) {
	got := Excerpt("supercalifragilistic", 5)

	assert.Equal(t, "super…", got)
}
