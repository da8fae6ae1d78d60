// Package extract converts uploaded documents into plain text plus
// structural metadata. It plays the "document converter" role in front of
// the chunk splitter: PDF via ledongthuc/pdf, markdown via a goldmark AST
// walk, HTML via an x/net tokenizer, plain text as-is.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
	"golang.org/x/net/html"
)

// ErrUnsupportedType marks uploads whose format has no converter.
var ErrUnsupportedType = errors.New("unsupported document type")

// ErrNoContent marks documents that converted successfully but yielded no
// usable text.
var ErrNoContent = errors.New("no text content extracted")

// Metadata carries structural facts about the converted document.
type Metadata struct {
	PageCount    int
	HeadingCount int
	Method       string
}

// Result is the converter output handed to the chunking stage.
type Result struct {
	Text string
	Type DocumentType
	Meta Metadata
}

// Convert extracts plain text and metadata from an uploaded file. The
// document type is taken from the filename extension.
func Convert(filename string, content []byte) (Result, error) {
	docType := TypeFromFilename(filename)
	switch docType {
	case TypePDF:
		return convertPDF(content)
	case TypeMarkdown:
		return convertMarkdown(content)
	case TypeHTML:
		return convertHTML(content)
	case TypeText:
		return convertText(content)
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnsupportedType, docType)
	}
}

func convertText(content []byte) (Result, error) {
	text := strings.TrimSpace(string(content))
	if text == "" {
		return Result{}, ErrNoContent
	}
	return Result{
		Text: text,
		Type: TypeText,
		Meta: Metadata{Method: "plain"},
	}, nil
}

func convertPDF(content []byte) (Result, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return Result{}, fmt.Errorf("open pdf: %w", err)
	}

	var builder strings.Builder
	numPages := reader.NumPage()
	for pageNum := 1; pageNum <= numPages; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() || page.V.Key("Contents").Kind() == pdf.Null {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Pages that fail to extract are skipped, not fatal.
			continue
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}

	text := strings.TrimSpace(builder.String())
	if text == "" {
		return Result{}, ErrNoContent
	}
	return Result{
		Text: text,
		Type: TypePDF,
		Meta: Metadata{PageCount: numPages, Method: "pdf"},
	}, nil
}

// convertMarkdown walks the goldmark AST, emitting block contents separated
// by blank lines so the splitter's paragraph pass sees real boundaries.
func convertMarkdown(content []byte) (Result, error) {
	root := goldmark.New().Parser().Parse(gmtext.NewReader(content))

	var builder strings.Builder
	headings := 0

	blockBreak := func() {
		if builder.Len() > 0 {
			builder.WriteString("\n\n")
		}
	}

	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			headings++
			blockBreak()
		case *ast.Paragraph, *ast.TextBlock:
			blockBreak()
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			blockBreak()
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				builder.Write(seg.Value(content))
			}
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			builder.Write(node.Segment.Value(content))
			if node.SoftLineBreak() || node.HardLineBreak() {
				builder.WriteByte(' ')
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("parse markdown: %w", err)
	}

	text := strings.TrimSpace(builder.String())
	if text == "" {
		return Result{}, ErrNoContent
	}
	return Result{
		Text: text,
		Type: TypeMarkdown,
		Meta: Metadata{HeadingCount: headings, Method: "markdown"},
	}, nil
}

// htmlBlockTags start a new output block; everything else flows inline.
var htmlBlockTags = map[string]bool{
	"p": true, "div": true, "li": true, "tr": true, "br": true,
	"section": true, "article": true, "blockquote": true, "pre": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// convertHTML tokenizes the document, drops script/style subtrees, and joins
// block-level text with blank lines so the splitter's paragraph pass sees
// real boundaries.
func convertHTML(content []byte) (Result, error) {
	tok := html.NewTokenizer(bytes.NewReader(content))

	var blocks []string
	var current strings.Builder
	headings := 0
	skip := ""

	flush := func() {
		if text := strings.Join(strings.Fields(current.String()), " "); text != "" {
			blocks = append(blocks, text)
		}
		current.Reset()
	}

	for {
		tt := tok.Next()
		if tt == html.ErrorToken {
			if err := tok.Err(); !errors.Is(err, io.EOF) {
				return Result{}, fmt.Errorf("parse html: %w", err)
			}
			break
		}
		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := tok.TagName()
			tag := string(name)
			if tag == "script" || tag == "style" {
				if tt == html.StartTagToken {
					skip = tag
				}
				continue
			}
			if htmlBlockTags[tag] {
				if strings.HasPrefix(tag, "h") && len(tag) == 2 {
					headings++
				}
				flush()
			}
		case html.EndTagToken:
			name, _ := tok.TagName()
			if tag := string(name); tag == skip {
				skip = ""
			}
		case html.TextToken:
			if skip != "" {
				continue
			}
			current.Write(tok.Text())
			current.WriteByte(' ')
		}
	}
	flush()

	text := strings.Join(blocks, "\n\n")
	if text == "" {
		return Result{}, ErrNoContent
	}
	return Result{
		Text: text,
		Type: TypeHTML,
		Meta: Metadata{HeadingCount: headings, Method: "html"},
	}, nil
}
