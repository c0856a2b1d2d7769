// Package render produces output from a fully assembled schema.Result.
package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dshills/cfrscore/internal/schema"
)

// Output formats accepted by Render.
const (
	FormatJSON     = "json"
	FormatMarkdown = "md"
	FormatHTML     = "html"
	FormatText     = "text"
)

// ErrUnknownFormat is returned by Render for an unrecognised format name.
var ErrUnknownFormat = errors.New("render: unknown format")

// Render dispatches to the renderer for format.
func Render(res *schema.Result, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case FormatJSON, "":
		return RenderJSON(res)
	case FormatMarkdown, "markdown":
		if res == nil {
			return nil, fmt.Errorf("render: nil result")
		}
		return []byte(RenderMarkdown(res)), nil
	case FormatHTML:
		return RenderHTML(res)
	case FormatText, "txt":
		if res == nil {
			return nil, fmt.Errorf("render: nil result")
		}
		return []byte(RenderText(res)), nil
	default:
		return nil, fmt.Errorf("%w %q (want json, md, html or text)", ErrUnknownFormat, format)
	}
}

// RenderJSON produces a pretty-printed JSON representation of the result.
// The output round-trips through json.Unmarshal back to an equal Result.
func RenderJSON(res *schema.Result) ([]byte, error) {
	if res == nil {
		return nil, fmt.Errorf("render: nil result")
	}
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render: json marshal: %w", err)
	}
	return append(b, '\n'), nil
}

// SectionTitle turns a section key into a display name ("inter_se_priorities"
// becomes "Inter Se Priorities").
func SectionTitle(sec schema.Section) string {
	return cases.Title(language.English).String(strings.ReplaceAll(string(sec), "_", " "))
}

// RenderMarkdown produces a GitHub-flavoured Markdown report. Every section
// present in the evaluation appears in the table, in rubric order.
func RenderMarkdown(res *schema.Result) string {
	if res == nil {
		return ""
	}
	ev := &res.Evaluation
	var sb strings.Builder

	title := "CFR Evaluation"
	if res.Heading != "" {
		title += ": " + res.Heading
	}
	fmt.Fprintf(&sb, "## %s\n\n", mdEscape(title))
	fmt.Fprintf(&sb, "**Overall:** %d/100 (%s)  \n", ev.OverallScore, ev.OverallRating)
	fmt.Fprintf(&sb, "**Suggestion impact factor:** %.2f\n\n", ev.SuggestionImpactFactor)
	if ev.IsFallback() {
		sb.WriteString("> Automatic evaluation: the document could not be scored, default scores are shown.\n\n")
	}

	if len(res.Summary) > 0 {
		sb.WriteString("### Summary\n\n")
		for _, line := range res.Summary {
			fmt.Fprintf(&sb, "%s\n", mdEscape(line))
		}
		sb.WriteString("\n")
	}

	if len(ev.SectionScores) > 0 {
		sb.WriteString("### Section Scores\n\n")
		sb.WriteString("| Section | Weight | Original | Adjusted | Rating | Justification |\n")
		sb.WriteString("|---|---:|---:|---:|---|---|\n")
		for _, row := range sectionRows(ev) {
			fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s | %s |\n",
				row.title, row.weight, row.original, row.adjusted, row.rating, mdEscape(row.justification))
		}
		sb.WriteString("\n")
	}

	if lines := nonBlank(res.Suggestions); len(lines) > 0 {
		sb.WriteString("### Enhancement Suggestions\n\n")
		for _, s := range lines {
			fmt.Fprintf(&sb, "- %s\n", mdEscape(strings.TrimLeft(s, "-*• ")))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// RenderHTML converts the Markdown report into a standalone HTML page.
func RenderHTML(res *schema.Result) ([]byte, error) {
	if res == nil {
		return nil, fmt.Errorf("render: nil result")
	}
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var body bytes.Buffer
	if err := md.Convert([]byte(RenderMarkdown(res)), &body); err != nil {
		return nil, fmt.Errorf("render: html convert: %w", err)
	}

	title := "CFR Evaluation"
	if res.Heading != "" {
		title = res.Heading
	}
	var out bytes.Buffer
	out.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&out, "<title>%s</title>\n", html.EscapeString(title))
	out.WriteString("</head>\n<body>\n")
	out.Write(body.Bytes())
	out.WriteString("</body>\n</html>\n")
	return out.Bytes(), nil
}

// justificationWidth caps the justification column of the text table.
const justificationWidth = 60

// RenderText produces a plain-text table for terminals. Columns are aligned by
// display width so wide runes in justifications do not break the layout.
func RenderText(res *schema.Result) string {
	if res == nil {
		return ""
	}
	ev := &res.Evaluation
	var sb strings.Builder

	if res.Heading != "" {
		fmt.Fprintf(&sb, "%s\n\n", res.Heading)
	}
	fmt.Fprintf(&sb, "Overall: %d/100 (%s)   suggestion impact factor %.2f\n", ev.OverallScore, ev.OverallRating, ev.SuggestionImpactFactor)
	if ev.IsFallback() {
		sb.WriteString("(automatic evaluation)\n")
	}
	sb.WriteString("\n")

	header := []string{"SECTION", "WEIGHT", "ORIG", "ADJ", "RATING", "JUSTIFICATION"}
	rows := [][]string{header}
	for _, r := range sectionRows(ev) {
		rows = append(rows, []string{
			r.title, r.weight, r.original, r.adjusted, r.rating,
			runewidth.Truncate(oneLine(r.justification), justificationWidth, "..."),
		})
	}

	widths := make([]int, len(header))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			if i == len(row)-1 {
				cells[i] = cell
				continue
			}
			cells[i] = runewidth.FillRight(cell, widths[i])
		}
		sb.WriteString(strings.TrimRight(strings.Join(cells, "  "), " "))
		sb.WriteString("\n")
	}

	if lines := nonBlank(res.Suggestions); len(lines) > 0 {
		sb.WriteString("\nSuggestions:\n")
		for _, s := range lines {
			fmt.Fprintf(&sb, "  %s\n", s)
		}
	}
	return sb.String()
}

type sectionRow struct {
	title, weight, original, adjusted, rating, justification string
}

// sectionRows lists the evaluated sections in rubric order. Sections absent
// from the evaluation are skipped; unscored ones show "n/a".
func sectionRows(ev *schema.Report) []sectionRow {
	var rows []sectionRow
	for _, sec := range schema.Sections() {
		adj, ok := ev.SectionScores[sec]
		if !ok {
			continue
		}
		w, _ := schema.Weight(sec)
		row := sectionRow{
			title:    SectionTitle(sec),
			weight:   fmt.Sprintf("%.0f%%", w*100),
			original: "n/a",
			adjusted: "n/a",
			rating:   "n/a",
		}
		if orig, ok := ev.OriginalScores[sec]; ok {
			row.original = fmt.Sprintf("%d", orig)
		}
		if adj.Scored() {
			row.adjusted = fmt.Sprintf("%d", adj.Score)
			row.rating = string(adj.Rating)
		}
		if adj != nil {
			row.justification = adj.Justification
		}
		rows = append(rows, row)
	}
	return rows
}

func nonBlank(lines []string) []string {
	var out []string
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			out = append(out, strings.TrimSpace(l))
		}
	}
	return out
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// mdEscape replaces characters that would break Markdown table cells.
func mdEscape(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	return s
}
