package importer

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractText pulls plain text out of document bytes by file type.
func ExtractText(data []byte, fileType string) (string, error) {
	switch fileType {
	case FileTypePDF:
		return extractPDF(data)
	case FileTypeMarkdown:
		return stripMarkdown(string(data)), nil
	default:
		return "", fmt.Errorf("unsupported file type: %s", fileType)
	}
}

func extractPDF(data []byte) (string, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to read pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("failed to copy pdf text: %w", err)
	}
	return buf.String(), nil
}

var (
	mdHeadingRe  = regexp.MustCompile(`(?m)^#{1,6}\s*`)
	mdEmphasisRe = regexp.MustCompile(`[*_]{1,3}([^*_]+)[*_]{1,3}`)
	mdLinkRe     = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	mdCodeRe     = regexp.MustCompile("`{1,3}")
)

// stripMarkdown removes common markdown syntax, leaving readable text
// for the extraction prompt. The LLM tolerates leftovers, so this is
// best-effort, not a full parser.
func stripMarkdown(text string) string {
	text = mdHeadingRe.ReplaceAllString(text, "")
	text = mdEmphasisRe.ReplaceAllString(text, "$1")
	text = mdLinkRe.ReplaceAllString(text, "$1")
	text = mdCodeRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
