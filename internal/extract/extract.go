package extract

import (
	"bytes"
	"fmt"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// Text extracts plain text from an uploaded source document, keyed on the
// file extension of name. PDF and DOCX payloads are decoded with their
// respective readers; everything else is treated as plain text, with a
// Latin-1 reinterpretation when the bytes are not valid UTF-8.
func Text(name string, content []byte) (string, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".pdf":
		return fromPDF(content)
	case ".docx":
		return fromDOCX(content)
	default:
		return fromPlain(content), nil
	}
}

func fromPDF(content []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}
	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extract pdf page %d: %w", i, err)
		}
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}
	return sb.String(), nil
}

func fromDOCX(content []byte) (string, error) {
	r, err := docx.ReadDocxFromMemory(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("read docx: %w", err)
	}
	defer r.Close()
	return docxText(r.Editable().GetContent()), nil
}

var docxEntities = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
)

// docxText walks the word/document.xml markup and collects the text runs,
// turning paragraph closes into line breaks.
func docxText(markup string) string {
	var sb strings.Builder
	for len(markup) > 0 {
		lt := strings.IndexByte(markup, '<')
		if lt < 0 {
			break
		}
		markup = markup[lt:]
		switch {
		case strings.HasPrefix(markup, "</w:p>"):
			sb.WriteByte('\n')
			markup = markup[len("</w:p>"):]
		case strings.HasPrefix(markup, "<w:t>") || strings.HasPrefix(markup, "<w:t "):
			gt := strings.IndexByte(markup, '>')
			if gt < 0 {
				return sb.String()
			}
			if markup[gt-1] == '/' { // self-closing run, no text
				markup = markup[gt+1:]
				continue
			}
			markup = markup[gt+1:]
			end := strings.Index(markup, "</w:t>")
			if end < 0 {
				sb.WriteString(docxEntities.Replace(markup))
				return sb.String()
			}
			sb.WriteString(docxEntities.Replace(markup[:end]))
			markup = markup[end+len("</w:t>"):]
		default:
			gt := strings.IndexByte(markup, '>')
			if gt < 0 {
				return sb.String()
			}
			markup = markup[gt+1:]
		}
	}
	return sb.String()
}

// fromPlain returns the bytes as-is when they are valid UTF-8 and falls back
// to a Latin-1 reinterpretation otherwise, so legacy exports still chunk.
func fromPlain(content []byte) string {
	if utf8.Valid(content) {
		return string(content)
	}
	runes := make([]rune, len(content))
	for i, b := range content {
		runes[i] = rune(b)
	}
	return string(runes)
}
