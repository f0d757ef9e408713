// Package extract converts uploaded documents into plain text.
package extract

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	docx "github.com/fumiama/go-docx"
	"github.com/ledongthuc/pdf"

	"github.com/pttwnz/elie/internal/store"
)

// KindFromFilename maps a file extension to the ingestion kind.
// Unknown extensions return an invalid kind; callers reject those uploads.
func KindFromFilename(name string) store.FileKind {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt":
		return store.KindText
	case ".pdf":
		return store.KindPDF
	case ".docx":
		return store.KindDocx
	default:
		return store.FileKind("")
	}
}

// Text extracts the plain text of a document of the given kind.
func Text(kind store.FileKind, data []byte) (string, error) {
	switch kind {
	case store.KindText:
		return string(data), nil
	case store.KindPDF:
		return pdfText(data)
	case store.KindDocx:
		return docxText(data)
	default:
		return "", fmt.Errorf("unknown file kind %q", kind)
	}
}

func pdfText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	content, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return string(content), nil
}

func docxText(data []byte) (string, error) {
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	var paragraphs []string
	for _, item := range doc.Document.Body.Items {
		if p, ok := item.(*docx.Paragraph); ok {
			paragraphs = append(paragraphs, p.String())
		}
	}
	return strings.Join(paragraphs, "\n"), nil
}
