package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docforge-ai/docforge/internal/model"
)

func TestRenderMarkdownArtifact(t *testing.T) {
	r := NewArtifactRenderer()
	html, err := r.Render(model.FileArtifact{
		Filename: "README.md",
		Section:  model.SectionReadme,
		Content:  "# Title\n\nSome *emphasis* and a [link](https://example.com).\n",
	})
	require.NoError(t, err)
	require.Contains(t, html, "<h1")
	require.Contains(t, html, "<em>emphasis</em>")
}

func TestRenderCodeArtifactAsPre(t *testing.T) {
	r := NewArtifactRenderer()
	html, err := r.Render(model.FileArtifact{
		Filename: "handler.py",
		Section:  model.SectionLambdaFunctions,
		Content:  "if a < b:\n    print(\"<tag> & more\")",
	})
	require.NoError(t, err)
	require.Contains(t, html, "<pre>")
	require.Contains(t, html, "a &lt; b")
	require.Contains(t, html, "&#34;&lt;tag&gt; &amp; more&#34;")
	require.NotContains(t, html, "<tag>")
}
