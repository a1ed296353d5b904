package docs

import (
	"fmt"
	"strings"

	docs "google.golang.org/api/docs/v1"
)

// orderedGlyphTypes are the list glyph types rendered with numeric
// markers; everything else renders as a bullet.
var orderedGlyphTypes = map[string]bool{
	"DECIMAL":      true,
	"ZERO_DECIMAL": true,
	"ALPHA":        true,
	"UPPER_ALPHA":  true,
	"ROMAN":        true,
	"UPPER_ROMAN":  true,
}

// markdownRenderer walks a document's structural elements and emits
// Markdown. It carries the document's list definitions so bullets and
// numbered items render with the right marker, and per-list ordinal
// counters for numbered lists.
type markdownRenderer struct {
	md       strings.Builder
	lists    map[string]docs.List
	ordinals map[string]map[int64]int64
}

func newMarkdownRenderer(doc *docs.Document) *markdownRenderer {
	return &markdownRenderer{
		lists:    doc.Lists,
		ordinals: make(map[string]map[int64]int64),
	}
}

// DocumentToMarkdown converts a document to Markdown. Supports both
// legacy documents (doc.Body) and tabbed documents (doc.Tabs).
func DocumentToMarkdown(doc *docs.Document) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("document is nil")
	}

	r := newMarkdownRenderer(doc)

	if doc.Title != "" {
		r.md.WriteString("# ")
		r.md.WriteString(doc.Title)
		r.md.WriteString("\n\n")
	}

	if len(doc.Tabs) > 0 {
		for tabIndex, tab := range doc.Tabs {
			r.renderTab(tab, tabIndex, 2)
		}
	} else if doc.Body != nil {
		for _, element := range doc.Body.Content {
			r.renderStructuralElement(element)
		}
	}

	return r.md.String(), nil
}

// renderTab renders one tab, its content and its child tabs, with tab
// titles at the given heading level.
func (r *markdownRenderer) renderTab(tab *docs.Tab, tabIndex, headingLevel int) {
	if tab == nil {
		return
	}

	if tab.TabProperties != nil && tab.TabProperties.Title != "" {
		r.md.WriteString(strings.Repeat("#", headingLevel))
		r.md.WriteString(" ")
		r.md.WriteString(tab.TabProperties.Title)
		r.md.WriteString("\n\n")
	} else if tabIndex > 0 || headingLevel > 2 {
		r.md.WriteString(strings.Repeat("#", headingLevel))
		r.md.WriteString(fmt.Sprintf(" Tab %d\n\n", tabIndex+1))
	}

	// Tab bodies carry their own list definitions, scoped to the tab.
	// Restore the document-level lists afterwards so sibling tabs do
	// not see a previous tab's definitions.
	saved := r.lists
	if tab.DocumentTab != nil && len(tab.DocumentTab.Lists) > 0 {
		r.lists = tab.DocumentTab.Lists
	}

	if tab.DocumentTab != nil && tab.DocumentTab.Body != nil {
		for _, element := range tab.DocumentTab.Body.Content {
			r.renderStructuralElement(element)
		}
	}
	r.lists = saved

	for childIndex, child := range tab.ChildTabs {
		r.renderTab(child, childIndex, headingLevel+1)
	}
}

func (r *markdownRenderer) renderStructuralElement(element *docs.StructuralElement) {
	if element == nil {
		return
	}

	switch {
	case element.Paragraph != nil:
		r.renderParagraph(element.Paragraph)
	case element.Table != nil:
		r.renderTable(element.Table)
	case element.SectionBreak != nil:
		r.md.WriteString("\n---\n\n")
	}
}

func (r *markdownRenderer) renderParagraph(para *docs.Paragraph) {
	if para == nil || para.Elements == nil {
		return
	}

	headingLevel := headingLevelFor(para.ParagraphStyle)
	isListItem := para.Bullet != nil

	if headingLevel > 0 {
		r.md.WriteString(strings.Repeat("#", headingLevel))
		r.md.WriteString(" ")
	}

	if isListItem {
		nesting := para.Bullet.NestingLevel
		r.md.WriteString(strings.Repeat("  ", int(nesting)))
		if r.isOrderedList(para.Bullet.ListId, nesting) {
			r.md.WriteString(fmt.Sprintf("%d. ", r.nextOrdinal(para.Bullet.ListId, nesting)))
		} else {
			r.md.WriteString("- ")
		}
	}

	for _, elem := range para.Elements {
		if elem.TextRun != nil {
			r.renderTextRun(elem.TextRun)
		} else if elem.InlineObjectElement != nil {
			r.md.WriteString("[inline object]")
		}
	}

	r.md.WriteString("\n")

	// Extra blank line after headings and normal paragraphs; list
	// items stay compact.
	if headingLevel > 0 || !isListItem {
		r.md.WriteString("\n")
	}
}

// isOrderedList reports whether the list renders the given nesting
// level with numeric glyphs.
func (r *markdownRenderer) isOrderedList(listID string, nesting int64) bool {
	list, ok := r.lists[listID]
	if !ok || list.ListProperties == nil {
		return false
	}
	levels := list.ListProperties.NestingLevels
	if nesting < 0 || int(nesting) >= len(levels) || levels[nesting] == nil {
		return false
	}
	return orderedGlyphTypes[levels[nesting].GlyphType]
}

// nextOrdinal returns the next item number for a numbered list level.
func (r *markdownRenderer) nextOrdinal(listID string, nesting int64) int64 {
	levels, ok := r.ordinals[listID]
	if !ok {
		levels = make(map[int64]int64)
		r.ordinals[listID] = levels
	}
	levels[nesting]++
	return levels[nesting]
}

func (r *markdownRenderer) renderTextRun(textRun *docs.TextRun) {
	if textRun.Content == "" {
		return
	}

	content := textRun.Content
	style := textRun.TextStyle
	if style == nil {
		r.md.WriteString(content)
		return
	}

	if style.Link != nil && style.Link.Url != "" {
		r.md.WriteString("[")
		r.md.WriteString(strings.TrimSpace(content))
		r.md.WriteString("](")
		r.md.WriteString(style.Link.Url)
		r.md.WriteString(")")
		return
	}

	if isCodeFont(style) {
		r.md.WriteString("`")
		r.md.WriteString(strings.TrimSpace(content))
		r.md.WriteString("`")
		return
	}

	switch {
	case style.Bold && style.Italic:
		r.md.WriteString("***")
		r.md.WriteString(content)
		r.md.WriteString("***")
	case style.Bold:
		r.md.WriteString("**")
		r.md.WriteString(content)
		r.md.WriteString("**")
	case style.Italic:
		r.md.WriteString("*")
		r.md.WriteString(content)
		r.md.WriteString("*")
	default:
		r.md.WriteString(content)
	}
}

func (r *markdownRenderer) renderTable(table *docs.Table) {
	if table == nil || len(table.TableRows) == 0 {
		return
	}

	for rowIndex, row := range table.TableRows {
		if row.TableCells == nil {
			continue
		}

		r.md.WriteString("|")
		for _, cell := range row.TableCells {
			r.md.WriteString(" ")
			r.md.WriteString(cellText(cell))
			r.md.WriteString(" |")
		}
		r.md.WriteString("\n")

		if rowIndex == 0 {
			r.md.WriteString("|")
			for range row.TableCells {
				r.md.WriteString(" --- |")
			}
			r.md.WriteString("\n")
		}
	}

	r.md.WriteString("\n")
}

// cellText extracts the flattened text of a table cell, with newlines
// collapsed so the cell fits a single pipe row.
func cellText(cell *docs.TableCell) string {
	if cell == nil {
		return ""
	}

	var text strings.Builder
	for _, element := range cell.Content {
		if element.Paragraph == nil {
			continue
		}
		for _, elem := range element.Paragraph.Elements {
			if elem.TextRun != nil {
				content := strings.TrimSpace(elem.TextRun.Content)
				content = strings.ReplaceAll(content, "\n", " ")
				text.WriteString(content)
			}
		}
	}
	return text.String()
}

// headingLevelFor maps a named paragraph style to a Markdown heading
// level; 0 means plain text.
func headingLevelFor(style *docs.ParagraphStyle) int {
	if style == nil {
		return 0
	}
	switch style.NamedStyleType {
	case "HEADING_1":
		return 1
	case "HEADING_2":
		return 2
	case "HEADING_3":
		return 3
	case "HEADING_4":
		return 4
	case "HEADING_5":
		return 5
	case "HEADING_6":
		return 6
	default:
		return 0
	}
}

// DocumentToPlainText extracts plain text from a document, without any
// formatting markers. Supports both legacy and tabbed documents.
func DocumentToPlainText(doc *docs.Document) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("document is nil")
	}

	var text strings.Builder

	if doc.Title != "" {
		text.WriteString(doc.Title)
		text.WriteString("\n\n")
	}

	if len(doc.Tabs) > 0 {
		for tabIndex, tab := range doc.Tabs {
			extractTabText(&text, tab, tabIndex, 0)
		}
	} else if doc.Body != nil {
		for _, element := range doc.Body.Content {
			extractPlainText(&text, element)
		}
	}

	return text.String(), nil
}

func extractTabText(text *strings.Builder, tab *docs.Tab, tabIndex, level int) {
	if tab == nil {
		return
	}

	if tab.TabProperties != nil && tab.TabProperties.Title != "" {
		text.WriteString(strings.Repeat("  ", level))
		text.WriteString("=== ")
		text.WriteString(tab.TabProperties.Title)
		text.WriteString(" ===\n\n")
	} else if tabIndex > 0 {
		text.WriteString(strings.Repeat("  ", level))
		text.WriteString(fmt.Sprintf("=== Tab %d ===\n\n", tabIndex+1))
	}

	if tab.DocumentTab != nil && tab.DocumentTab.Body != nil {
		for _, element := range tab.DocumentTab.Body.Content {
			extractPlainText(text, element)
		}
	}

	for childIndex, child := range tab.ChildTabs {
		extractTabText(text, child, childIndex, level+1)
	}

	text.WriteString("\n")
}

func extractPlainText(text *strings.Builder, element *docs.StructuralElement) {
	if element == nil {
		return
	}

	if element.Paragraph != nil {
		extractParagraphText(text, element.Paragraph)
	} else if element.Table != nil {
		extractTableText(text, element.Table)
	}
}

func extractParagraphText(text *strings.Builder, para *docs.Paragraph) {
	if para == nil {
		return
	}
	for _, elem := range para.Elements {
		if elem.TextRun != nil && elem.TextRun.Content != "" {
			text.WriteString(elem.TextRun.Content)
		}
	}
}

func extractTableText(text *strings.Builder, table *docs.Table) {
	if table == nil {
		return
	}

	for _, row := range table.TableRows {
		for _, cell := range row.TableCells {
			for _, element := range cell.Content {
				if element.Paragraph != nil {
					extractParagraphText(text, element.Paragraph)
				}
			}
			text.WriteString("\t")
		}
		text.WriteString("\n")
	}
}

// isCodeFont reports whether a run uses a monospace (Courier-family)
// font, rendered as inline code.
func isCodeFont(style *docs.TextStyle) bool {
	return style.WeightedFontFamily != nil &&
		strings.Contains(style.WeightedFontFamily.FontFamily, "Courier")
}
