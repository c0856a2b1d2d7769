// Package document loads the Markdown or plain-text document under
// evaluation and segments it into numbered blocks for prompting.
package document

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// ErrEmpty is returned by Load when the document has no text blocks.
var ErrEmpty = errors.New("document has no text")

// Block is one segment of the document: a paragraph, list item text or code
// block. Heading is the nearest preceding heading, if any.
type Block struct {
	ID        string
	Heading   string
	LineStart int
	LineEnd   int
	Text      string
}

// Document is a parsed source document.
type Document struct {
	Path   string
	Title  string // first level-1 heading, or the first heading of any level
	Hash   string // hex sha256 of the raw bytes
	Size   int
	Blocks []Block
}

// Load reads and segments the file at path.
func Load(path string) (*Document, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("document: read %s: %w", path, err)
	}
	doc := Parse(src)
	doc.Path = path
	if len(doc.Blocks) == 0 {
		return nil, fmt.Errorf("document: %s: %w", path, ErrEmpty)
	}
	return doc, nil
}

// Parse segments src. Plain text parses as a sequence of paragraphs.
func Parse(src []byte) *Document {
	sum := sha256.Sum256(src)
	d := &Document{Hash: hex.EncodeToString(sum[:]), Size: len(src)}

	root := goldmark.New().Parser().Parse(text.NewReader(src))
	lines := newLineIndex(src)

	var heading string
	firstLevel := 0
	// The walker never returns an error, so neither does Walk.
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			heading = joinSegments(node.Lines(), src, " ")
			if heading != "" && (firstLevel == 0 || (node.Level == 1 && firstLevel != 1)) {
				d.Title, firstLevel = heading, node.Level
			}
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph, *ast.TextBlock, *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock:
			segs := n.Lines()
			body := joinSegments(segs, src, "\n")
			if body == "" {
				return ast.WalkSkipChildren, nil
			}
			first, last := segs.At(0), segs.At(segs.Len()-1)
			d.Blocks = append(d.Blocks, Block{
				ID:        fmt.Sprintf("DOC-%03d", len(d.Blocks)+1),
				Heading:   heading,
				LineStart: lines.lineOf(first.Start),
				LineEnd:   lines.lineOf(max(last.Stop-1, last.Start)),
				Text:      body,
			})
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return d
}

func joinSegments(segs *text.Segments, src []byte, sep string) string {
	parts := make([]string, 0, segs.Len())
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		parts = append(parts, strings.TrimRight(string(seg.Value(src)), "\r\n"))
	}
	return strings.TrimSpace(strings.Join(parts, sep))
}

// lineIndex maps byte offsets to 1-indexed line numbers.
type lineIndex []int

func newLineIndex(src []byte) lineIndex {
	starts := lineIndex{0}
	for i, b := range src {
		if b == '\n' && i+1 < len(src) {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func (li lineIndex) lineOf(offset int) int {
	return sort.Search(len(li), func(i int) bool { return li[i] > offset })
}

// truncationMarker closes a context that did not fit the byte budget.
const truncationMarker = "[... %d of %d blocks omitted ...]\n"

// Context renders the blocks as numbered prompt context. When the rendering
// would exceed maxBytes, whole blocks are dropped from the end and a marker
// line is appended. maxBytes <= 0 means no limit.
func (d *Document) Context(maxBytes int) string {
	var b strings.Builder
	for i, blk := range d.Blocks {
		entry := formatBlock(blk)
		if maxBytes > 0 && b.Len()+len(entry) > maxBytes {
			fmt.Fprintf(&b, truncationMarker, len(d.Blocks)-i, len(d.Blocks))
			break
		}
		b.WriteString(entry)
	}
	return b.String()
}

func formatBlock(blk Block) string {
	loc := fmt.Sprintf("lines %d-%d", blk.LineStart, blk.LineEnd)
	if blk.LineStart == blk.LineEnd {
		loc = fmt.Sprintf("line %d", blk.LineStart)
	}
	if blk.Heading != "" {
		loc += ", under " + blk.Heading
	}
	return fmt.Sprintf("[%s] (%s)\n%s\n\n", blk.ID, loc, blk.Text)
}

// Text returns the block texts joined by blank lines.
func (d *Document) Text() string {
	parts := make([]string, len(d.Blocks))
	for i, blk := range d.Blocks {
		parts[i] = blk.Text
	}
	return strings.Join(parts, "\n\n")
}
