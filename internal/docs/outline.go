package docs

import (
	docs "google.golang.org/api/docs/v1"
)

// Outline is a compact JSON projection of a document. It keeps the
// structure an editing client needs (element indexes, paragraph
// styles, list membership, run formatting) while dropping the layout
// detail of the full API resource. A document reconstructed from its
// outline renders to the same Markdown as the original.
type Outline struct {
	DocumentID string                 `json:"document_id"`
	Title      string                 `json:"title,omitempty"`
	RevisionID string                 `json:"revision_id,omitempty"`
	Body       []OutlineElement       `json:"body,omitempty"`
	Lists      map[string]OutlineList `json:"lists,omitempty"`
	Tabs       []OutlineTab           `json:"tabs,omitempty"`
}

// OutlineElement is one structural element of a body. Exactly one of
// Paragraph, Table or SectionBreak is set.
type OutlineElement struct {
	StartIndex   int64             `json:"start_index,omitempty"`
	EndIndex     int64             `json:"end_index,omitempty"`
	Paragraph    *OutlineParagraph `json:"paragraph,omitempty"`
	Table        *OutlineTable     `json:"table,omitempty"`
	SectionBreak bool              `json:"section_break,omitempty"`
}

// OutlineParagraph carries a paragraph's named style, list membership
// and its styled text runs.
type OutlineParagraph struct {
	Style   string       `json:"style,omitempty"`
	ListID  string       `json:"list_id,omitempty"`
	Nesting int64        `json:"nesting,omitempty"`
	Runs    []OutlineRun `json:"runs,omitempty"`
}

// OutlineRun is a contiguous run of text with uniform formatting.
type OutlineRun struct {
	Text    string `json:"text"`
	Bold    bool   `json:"bold,omitempty"`
	Italic  bool   `json:"italic,omitempty"`
	Code    bool   `json:"code,omitempty"`
	LinkURL string `json:"link_url,omitempty"`
}

// OutlineTable is a table flattened to a grid of cell text.
type OutlineTable struct {
	Rows [][]string `json:"rows"`
}

// OutlineList records, per nesting level, whether a list renders with
// numeric markers.
type OutlineList struct {
	OrderedLevels []bool `json:"ordered_levels,omitempty"`
}

// OutlineTab is one document tab with its own body, list definitions
// and child tabs. List definitions are scoped to the tab, matching the
// API resource.
type OutlineTab struct {
	Title    string                 `json:"title,omitempty"`
	Body     []OutlineElement       `json:"body,omitempty"`
	Lists    map[string]OutlineList `json:"lists,omitempty"`
	Children []OutlineTab           `json:"children,omitempty"`
}

// DocumentToOutline projects a document onto its outline form.
func DocumentToOutline(doc *docs.Document) *Outline {
	if doc == nil {
		return nil
	}

	outline := &Outline{
		DocumentID: doc.DocumentId,
		Title:      doc.Title,
		RevisionID: doc.RevisionId,
		Lists:      outlineLists(doc.Lists),
	}

	if len(doc.Tabs) > 0 {
		outline.Tabs = outlineTabs(doc.Tabs)
		return outline
	}

	if doc.Body != nil {
		outline.Body = outlineElements(doc.Body.Content)
	}
	return outline
}

func outlineTabs(tabs []*docs.Tab) []OutlineTab {
	var out []OutlineTab
	for _, tab := range tabs {
		if tab == nil {
			continue
		}
		ot := OutlineTab{}
		if tab.TabProperties != nil {
			ot.Title = tab.TabProperties.Title
		}
		if tab.DocumentTab != nil {
			ot.Lists = outlineLists(tab.DocumentTab.Lists)
			if tab.DocumentTab.Body != nil {
				ot.Body = outlineElements(tab.DocumentTab.Body.Content)
			}
		}
		ot.Children = outlineTabs(tab.ChildTabs)
		out = append(out, ot)
	}
	return out
}

func outlineLists(lists map[string]docs.List) map[string]OutlineList {
	if len(lists) == 0 {
		return nil
	}
	out := make(map[string]OutlineList, len(lists))
	for id, list := range lists {
		var ol OutlineList
		if list.ListProperties != nil {
			for _, level := range list.ListProperties.NestingLevels {
				ordered := level != nil && orderedGlyphTypes[level.GlyphType]
				ol.OrderedLevels = append(ol.OrderedLevels, ordered)
			}
		}
		out[id] = ol
	}
	return out
}

func outlineElements(content []*docs.StructuralElement) []OutlineElement {
	var out []OutlineElement
	for _, element := range content {
		if element == nil {
			continue
		}
		oe := OutlineElement{
			StartIndex: element.StartIndex,
			EndIndex:   element.EndIndex,
		}
		switch {
		case element.Paragraph != nil:
			oe.Paragraph = outlineParagraph(element.Paragraph)
		case element.Table != nil:
			oe.Table = outlineTable(element.Table)
		case element.SectionBreak != nil:
			oe.SectionBreak = true
		default:
			continue
		}
		out = append(out, oe)
	}
	return out
}

func outlineParagraph(para *docs.Paragraph) *OutlineParagraph {
	op := &OutlineParagraph{}
	if para.ParagraphStyle != nil {
		op.Style = para.ParagraphStyle.NamedStyleType
	}
	if para.Bullet != nil {
		op.ListID = para.Bullet.ListId
		op.Nesting = para.Bullet.NestingLevel
	}
	for _, elem := range para.Elements {
		if elem.TextRun == nil || elem.TextRun.Content == "" {
			continue
		}
		run := OutlineRun{Text: elem.TextRun.Content}
		if style := elem.TextRun.TextStyle; style != nil {
			run.Bold = style.Bold
			run.Italic = style.Italic
			run.Code = isCodeFont(style)
			if style.Link != nil {
				run.LinkURL = style.Link.Url
			}
		}
		op.Runs = append(op.Runs, run)
	}
	return op
}

func outlineTable(table *docs.Table) *OutlineTable {
	ot := &OutlineTable{}
	for _, row := range table.TableRows {
		var cells []string
		for _, cell := range row.TableCells {
			cells = append(cells, cellText(cell))
		}
		ot.Rows = append(ot.Rows, cells)
	}
	return ot
}

// FromOutline rebuilds a document resource from its outline form. The
// result carries enough structure that DocumentToMarkdown renders it
// identically to the document the outline was projected from.
func FromOutline(outline *Outline) *docs.Document {
	if outline == nil {
		return nil
	}

	doc := &docs.Document{
		DocumentId: outline.DocumentID,
		Title:      outline.Title,
		RevisionId: outline.RevisionID,
		Lists:      listsFromOutline(outline.Lists),
	}

	if len(outline.Tabs) > 0 {
		doc.Tabs = tabsFromOutline(outline.Tabs)
		return doc
	}

	doc.Body = &docs.Body{Content: elementsFromOutline(outline.Body)}
	return doc
}

func tabsFromOutline(tabs []OutlineTab) []*docs.Tab {
	var out []*docs.Tab
	for _, ot := range tabs {
		tab := &docs.Tab{
			TabProperties: &docs.TabProperties{Title: ot.Title},
			DocumentTab: &docs.DocumentTab{
				Body:  &docs.Body{Content: elementsFromOutline(ot.Body)},
				Lists: listsFromOutline(ot.Lists),
			},
		}
		tab.ChildTabs = tabsFromOutline(ot.Children)
		out = append(out, tab)
	}
	return out
}

func listsFromOutline(lists map[string]OutlineList) map[string]docs.List {
	if len(lists) == 0 {
		return nil
	}
	out := make(map[string]docs.List, len(lists))
	for id, ol := range lists {
		var levels []*docs.NestingLevel
		for _, ordered := range ol.OrderedLevels {
			glyph := "GLYPH_TYPE_UNSPECIFIED"
			if ordered {
				glyph = "DECIMAL"
			}
			levels = append(levels, &docs.NestingLevel{GlyphType: glyph})
		}
		out[id] = docs.List{ListProperties: &docs.ListProperties{NestingLevels: levels}}
	}
	return out
}

func elementsFromOutline(elements []OutlineElement) []*docs.StructuralElement {
	var out []*docs.StructuralElement
	for _, oe := range elements {
		element := &docs.StructuralElement{
			StartIndex: oe.StartIndex,
			EndIndex:   oe.EndIndex,
		}
		switch {
		case oe.Paragraph != nil:
			element.Paragraph = paragraphFromOutline(oe.Paragraph)
		case oe.Table != nil:
			element.Table = tableFromOutline(oe.Table)
		case oe.SectionBreak:
			element.SectionBreak = &docs.SectionBreak{}
		default:
			continue
		}
		out = append(out, element)
	}
	return out
}

func paragraphFromOutline(op *OutlineParagraph) *docs.Paragraph {
	para := &docs.Paragraph{}
	if op.Style != "" {
		para.ParagraphStyle = &docs.ParagraphStyle{NamedStyleType: op.Style}
	}
	if op.ListID != "" {
		para.Bullet = &docs.Bullet{ListId: op.ListID, NestingLevel: op.Nesting}
	}
	for _, run := range op.Runs {
		textRun := &docs.TextRun{Content: run.Text}
		if run.Bold || run.Italic || run.Code || run.LinkURL != "" {
			style := &docs.TextStyle{Bold: run.Bold, Italic: run.Italic}
			if run.Code {
				style.WeightedFontFamily = &docs.WeightedFontFamily{FontFamily: "Courier New"}
			}
			if run.LinkURL != "" {
				style.Link = &docs.Link{Url: run.LinkURL}
			}
			textRun.TextStyle = style
		}
		para.Elements = append(para.Elements, &docs.ParagraphElement{TextRun: textRun})
	}
	return para
}

func tableFromOutline(ot *OutlineTable) *docs.Table {
	table := &docs.Table{}
	for _, cells := range ot.Rows {
		row := &docs.TableRow{}
		for _, text := range cells {
			cell := &docs.TableCell{
				Content: []*docs.StructuralElement{{
					Paragraph: &docs.Paragraph{
						Elements: []*docs.ParagraphElement{{
							TextRun: &docs.TextRun{Content: text},
						}},
					},
				}},
			}
			row.TableCells = append(row.TableCells, cell)
		}
		table.TableRows = append(table.TableRows, row)
	}
	return table
}
