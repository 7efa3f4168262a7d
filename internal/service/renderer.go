package service

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/docforge-ai/docforge/internal/model"
)

// ArtifactRenderer converts markdown artifacts to HTML for in-browser
// previews. Non-markdown artifacts are wrapped in a preformatted block.
type ArtifactRenderer struct {
	md goldmark.Markdown
}

func NewArtifactRenderer() *ArtifactRenderer {
	return &ArtifactRenderer{
		md: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

func (r *ArtifactRenderer) Render(artifact model.FileArtifact) (string, error) {
	if strings.HasSuffix(strings.ToLower(artifact.Filename), ".md") || artifact.Section.IsDocumentation() {
		var buf bytes.Buffer
		if err := r.md.Convert([]byte(artifact.Content), &buf); err != nil {
			return "", fmt.Errorf("render markdown: %w", err)
		}
		return buf.String(), nil
	}
	return "<pre>" + html.EscapeString(artifact.Content) + "</pre>", nil
}
