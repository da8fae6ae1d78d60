package extract

import (
	"path/filepath"
	"strings"
)

// DocumentType identifies an upload's format, derived from the filename
// extension or the declared MIME type.
type DocumentType string

const (
	TypePDF      DocumentType = "pdf"
	TypeDOCX     DocumentType = "docx"
	TypeDOC      DocumentType = "doc"
	TypeMarkdown DocumentType = "md"
	TypeHTML     DocumentType = "html"
	TypeText     DocumentType = "txt"
	TypeUnknown  DocumentType = "unknown"
)

var filenameTypes = map[string]DocumentType{
	"pdf":      TypePDF,
	"docx":     TypeDOCX,
	"doc":      TypeDOC,
	"md":       TypeMarkdown,
	"markdown": TypeMarkdown,
	"html":     TypeHTML,
	"htm":      TypeHTML,
	"txt":      TypeText,
	"text":     TypeText,
}

var mimeTypes = map[string]DocumentType{
	"application/pdf": TypePDF,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": TypeDOCX,
	"application/msword": TypeDOC,
	"text/markdown":      TypeMarkdown,
	"text/html":          TypeHTML,
	"text/plain":         TypeText,
}

var inverseMimeTypes = map[DocumentType]string{
	TypePDF:      "application/pdf",
	TypeDOCX:     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	TypeDOC:      "application/msword",
	TypeMarkdown: "text/markdown",
	TypeHTML:     "text/html",
	TypeText:     "text/plain",
}

// TypeFromFilename derives the document type from the file extension.
func TypeFromFilename(filename string) DocumentType {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if t, ok := filenameTypes[ext]; ok {
		return t
	}
	return TypeUnknown
}

// TypeFromMIME derives the document type from a MIME type, ignoring any
// parameters (e.g. "text/plain; charset=utf-8").
func TypeFromMIME(mimeType string) DocumentType {
	base := strings.ToLower(strings.TrimSpace(mimeType))
	if idx := strings.Index(base, ";"); idx >= 0 {
		base = strings.TrimSpace(base[:idx])
	}
	if t, ok := mimeTypes[base]; ok {
		return t
	}
	return TypeUnknown
}

// Convertible reports whether Convert has a text extractor for the type.
// Detection covers more formats than conversion: docx/doc are recognized so
// uploads get a precise rejection, but no converter exists for them.
func (t DocumentType) Convertible() bool {
	switch t {
	case TypePDF, TypeMarkdown, TypeHTML, TypeText:
		return true
	}
	return false
}

// MIMEType returns the canonical MIME type for the document type, defaulting
// to octet-stream for unknown types.
func (t DocumentType) MIMEType() string {
	if m, ok := inverseMimeTypes[t]; ok {
		return m
	}
	return "application/octet-stream"
}
