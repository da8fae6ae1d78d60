package extract

import (
	"errors"
	"strings"
	"testing"
)

func TestTypeFromFilename(t *testing.T) {
	tests := []struct {
		filename string
		expected DocumentType
	}{
		{"report.pdf", TypePDF},
		{"REPORT.PDF", TypePDF},
		{"notes.md", TypeMarkdown},
		{"notes.markdown", TypeMarkdown},
		{"page.html", TypeHTML},
		{"page.htm", TypeHTML},
		{"letter.docx", TypeDOCX},
		{"letter.doc", TypeDOC},
		{"readme.txt", TypeText},
		{"archive.zip", TypeUnknown},
		{"noextension", TypeUnknown},
	}

	for _, tt := range tests {
		if got := TypeFromFilename(tt.filename); got != tt.expected {
			t.Errorf("TypeFromFilename(%q) = %q, want %q", tt.filename, got, tt.expected)
		}
	}
}

func TestTypeFromMIME(t *testing.T) {
	tests := []struct {
		mime     string
		expected DocumentType
	}{
		{"application/pdf", TypePDF},
		{"text/plain", TypeText},
		{"text/plain; charset=utf-8", TypeText},
		{"text/markdown", TypeMarkdown},
		{"image/png", TypeUnknown},
	}

	for _, tt := range tests {
		if got := TypeFromMIME(tt.mime); got != tt.expected {
			t.Errorf("TypeFromMIME(%q) = %q, want %q", tt.mime, got, tt.expected)
		}
	}
}

func TestConvertText(t *testing.T) {
	res, err := Convert("doc.txt", []byte("  hello world  "))
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if res.Text != "hello world" {
		t.Errorf("expected trimmed text, got %q", res.Text)
	}
	if res.Type != TypeText {
		t.Errorf("expected type txt, got %q", res.Type)
	}
}

func TestConvertEmptyText(t *testing.T) {
	if _, err := Convert("doc.txt", []byte("   \n  ")); !errors.Is(err, ErrNoContent) {
		t.Errorf("expected ErrNoContent, got %v", err)
	}
}

func TestConvertUnsupported(t *testing.T) {
	for _, filename := range []string{"slides.pptx", "letter.docx", "image.png"} {
		if _, err := Convert(filename, []byte("data")); !errors.Is(err, ErrUnsupportedType) {
			t.Errorf("Convert(%q): expected ErrUnsupportedType, got %v", filename, err)
		}
	}
}

// Every convertible type must have a Convert case, and every type Convert
// rejects must report itself unconvertible, so upload validation and
// conversion can never disagree.
func TestConvertibleMatchesConvert(t *testing.T) {
	tests := []struct {
		docType     DocumentType
		convertible bool
	}{
		{TypePDF, true},
		{TypeMarkdown, true},
		{TypeHTML, true},
		{TypeText, true},
		{TypeDOCX, false},
		{TypeDOC, false},
		{TypeUnknown, false},
	}

	for _, tt := range tests {
		if got := tt.docType.Convertible(); got != tt.convertible {
			t.Errorf("Convertible(%q) = %v, want %v", tt.docType, got, tt.convertible)
		}
		_, err := Convert("file."+string(tt.docType), []byte("Some plain content."))
		if tt.convertible && errors.Is(err, ErrUnsupportedType) {
			t.Errorf("Convert rejected convertible type %q", tt.docType)
		}
		if !tt.convertible && !errors.Is(err, ErrUnsupportedType) {
			t.Errorf("Convert(%q): expected ErrUnsupportedType, got %v", tt.docType, err)
		}
	}
}

func TestConvertMarkdown(t *testing.T) {
	src := "# Title\n\nFirst paragraph with some text.\n\n## Section\n\nSecond paragraph here.\n"

	res, err := Convert("doc.md", []byte(src))
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	if res.Meta.HeadingCount != 2 {
		t.Errorf("expected 2 headings, got %d", res.Meta.HeadingCount)
	}
	// Blocks must be separated by blank lines so the splitter sees
	// paragraph boundaries.
	blocks := strings.Split(res.Text, "\n\n")
	if len(blocks) != 4 {
		t.Fatalf("expected 4 blocks, got %d: %q", len(blocks), res.Text)
	}
	if blocks[0] != "Title" {
		t.Errorf("expected heading text first, got %q", blocks[0])
	}
	if blocks[1] != "First paragraph with some text." {
		t.Errorf("unexpected paragraph text: %q", blocks[1])
	}
}

func TestConvertMarkdownSoftBreaks(t *testing.T) {
	src := "line one\nline two\n"

	res, err := Convert("doc.md", []byte(src))
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if res.Text != "line one line two" {
		t.Errorf("expected soft line break joined with space, got %q", res.Text)
	}
}

func TestConvertMarkdownCodeBlock(t *testing.T) {
	src := "Intro paragraph.\n\n```\nfunc main() {}\nreturn nil\n```\n\nAfter the code.\n"

	res, err := Convert("doc.md", []byte(src))
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	for _, want := range []string{"Intro paragraph.", "func main() {}", "return nil", "After the code."} {
		if !strings.Contains(res.Text, want) {
			t.Errorf("expected %q in output, got %q", want, res.Text)
		}
	}
	if strings.Index(res.Text, "func main() {}") > strings.Index(res.Text, "After the code.") {
		t.Errorf("code block out of order: %q", res.Text)
	}
}

func TestConvertHTML(t *testing.T) {
	src := `<html><head><style>p{color:red}</style></head><body>` +
		`<h1>Title</h1><p>First paragraph.</p>` +
		`<script>var x = 1;</script>` +
		`<p>Second paragraph.</p><ul><li>One</li><li>Two</li></ul>` +
		`</body></html>`

	res, err := Convert("page.html", []byte(src))
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	want := "Title\n\nFirst paragraph.\n\nSecond paragraph.\n\nOne\n\nTwo"
	if res.Text != want {
		t.Errorf("expected %q, got %q", want, res.Text)
	}
	if res.Type != TypeHTML {
		t.Errorf("expected type html, got %q", res.Type)
	}
	if res.Meta.HeadingCount != 1 {
		t.Errorf("expected 1 heading, got %d", res.Meta.HeadingCount)
	}
	if res.Meta.Method != "html" {
		t.Errorf("expected method html, got %q", res.Meta.Method)
	}
}

func TestConvertHTMLNoContent(t *testing.T) {
	src := `<html><body><script>var x = 1;</script><style>p{}</style></body></html>`
	if _, err := Convert("page.html", []byte(src)); !errors.Is(err, ErrNoContent) {
		t.Errorf("expected ErrNoContent, got %v", err)
	}
}
