package engine

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docforge-ai/docforge/internal/model"
)

const lambdaBody = `import json

def lambda_handler(event, context):
    return {"statusCode": 200, "body": json.dumps("ok")}`

func feedAll(p *StreamParser, text string) []model.FileArtifact {
	p.Feed(text)
	return p.Finalize()
}

func TestStreamParserNoSectionsYieldsCatchAll(t *testing.T) {
	text := "The model ignored the requested structure entirely.\n" +
		"It produced free prose instead, spread over several lines,\n" +
		"none of which match any known section heading.\n"

	artifacts := feedAll(NewStreamParser(), text)
	require.Len(t, artifacts, 1)
	require.Equal(t, model.SectionOtherServices, artifacts[0].Section)
	require.Equal(t, "other_services.txt", artifacts[0].Filename)
	require.Contains(t, artifacts[0].Content, "free prose")
}

func TestStreamParserDocumentationSectionImplicitFile(t *testing.T) {
	text := "## README\n" +
		"This project replaces a batch COBOL settlement system with a\n" +
		"set of Lambda functions orchestrated by Step Functions.\n" +
		"## IAM_ROLES\n"

	artifacts := feedAll(NewStreamParser(), text)
	require.Len(t, artifacts, 1)
	require.Equal(t, model.SectionReadme, artifacts[0].Section)
	require.Equal(t, "README.md", artifacts[0].Filename)
	require.Contains(t, artifacts[0].Content, "settlement system")
	require.Equal(t, "text/markdown", artifacts[0].ContentType)
}

func TestStreamParserFencedFileArtifact(t *testing.T) {
	text := "## LAMBDA_FUNCTIONS\n" +
		"### handler.py\n" +
		"```python\n" +
		lambdaBody + "\n" +
		"```\n"

	artifacts := feedAll(NewStreamParser(), text)
	require.Len(t, artifacts, 1)
	got := artifacts[0]
	require.Equal(t, "handler.py", got.Filename)
	require.Equal(t, model.SectionLambdaFunctions, got.Section)
	require.Equal(t, lambdaBody, got.Content)
	require.NotContains(t, got.Content, "```")
	require.Equal(t, "text/x-python", got.ContentType)
	require.Equal(t, len(got.Content), got.SizeBytes)
}

func TestStreamParserFragmentBoundaryIndependence(t *testing.T) {
	text := "## LAMBDA_FUNCTIONS\n" +
		"### first.py\n```python\n" + lambdaBody + "\n```\n" +
		"## IAM_ROLES\n" +
		"### policy.json\n```json\n" +
		"{\"Version\": \"2012-10-17\", \"Statement\": [{\"Effect\": \"Allow\"}]}\n" +
		"```\n" +
		"## README\nA short but sufficiently long narrative body for testing.\n"

	whole := feedAll(NewStreamParser(), text)

	byChar := NewStreamParser()
	for _, r := range text {
		byChar.Feed(string(r))
	}
	require.Equal(t, whole, byChar.Finalize())

	irregular := NewStreamParser()
	for i := 0; i < len(text); i += 7 {
		end := i + 7
		if end > len(text) {
			end = len(text)
		}
		irregular.Feed(text[i:end])
	}
	require.Equal(t, whole, irregular.Finalize())
}

func TestStreamParserSubThresholdContentDiscarded(t *testing.T) {
	text := "## LAMBDA_FUNCTIONS\n" +
		"### tiny.py\n" +
		"```python\nx = 1\ny = 2\n```\n"

	artifacts := feedAll(NewStreamParser(), text)
	require.Empty(t, artifacts)
}

func TestStreamParserMultipleFilesInSection(t *testing.T) {
	text := "## LAMBDA_FUNCTIONS\n" +
		"### ingest.py\n```python\n" + lambdaBody + "\n```\n" +
		"### transform.py\n```python\n" + lambdaBody + "\n```\n"

	artifacts := feedAll(NewStreamParser(), text)
	require.Len(t, artifacts, 2)
	require.Equal(t, "ingest.py", artifacts[0].Filename)
	require.Equal(t, "transform.py", artifacts[1].Filename)
}

func TestStreamParserFileHeaderWithoutFenceFlushesOnNextHeader(t *testing.T) {
	body := strings.Repeat("Resources:\n  Table:\n    Type: AWS::DynamoDB::Table\n", 4)
	text := "## DYNAMODB\n" +
		"### tables.yaml\n" +
		body +
		"## README\nTrailing documentation content that is long enough to keep.\n"

	artifacts := feedAll(NewStreamParser(), text)
	require.Len(t, artifacts, 2)
	require.Equal(t, "tables.yaml", artifacts[0].Filename)
	require.Equal(t, model.SectionDynamoDB, artifacts[0].Section)
	require.Equal(t, strings.TrimRight(body, "\n"), artifacts[0].Content)
	require.Equal(t, "application/x-yaml", artifacts[0].ContentType)
}

func TestStreamParserUnterminatedTrailingLine(t *testing.T) {
	// No trailing newline: the last partial line is processed at Finalize.
	text := "## README\nDocumentation body line one of the generated overview.\nAnd a final line without a newline"

	artifacts := feedAll(NewStreamParser(), text)
	require.Len(t, artifacts, 1)
	require.True(t, strings.HasSuffix(artifacts[0].Content, "without a newline"))
}

func TestStreamParserContentBeforeFileMarkerIgnoredInArtifactSection(t *testing.T) {
	text := "## IAM_ROLES\n" +
		"Some prose the model emitted before any file marker, long enough to pass the filter on its own.\n" +
		"### role.json\n```json\n" +
		"{\"Version\": \"2012-10-17\", \"Statement\": [{\"Action\": \"s3:GetObject\", \"Effect\": \"Allow\"}]}\n" +
		"```\n"

	artifacts := feedAll(NewStreamParser(), text)
	require.Len(t, artifacts, 1)
	require.Equal(t, "role.json", artifacts[0].Filename)
	require.NotContains(t, artifacts[0].Content, "prose")
}

func TestStreamParserFeedAfterFinalizeIsNoOp(t *testing.T) {
	p := NewStreamParser()
	p.Feed("## README\nEnough narrative content to clear the minimum size filter here.\n")
	first := p.Finalize()
	p.Feed("## IAM_ROLES\n### extra.json\nmore\n")
	require.Equal(t, first, p.Finalize())
}

func TestStreamParserOversizedDocumentationFlushesAtBlankLine(t *testing.T) {
	// 16 blocks of 10 long lines plus a blank line each; the buffer crosses
	// docFlushBytes inside block 13, so the blank line closing that block
	// flushes README.md and the canonical file reopens for the rest.
	var b strings.Builder
	b.WriteString("## README\n")
	b.WriteString("Opening overview.\n")
	row := strings.Repeat("x", 127) + "\n"
	for block := 0; block < 16; block++ {
		for i := 0; i < 10; i++ {
			b.WriteString(row)
		}
		b.WriteString("\n")
	}
	b.WriteString("Closing summary.\n")

	artifacts := feedAll(NewStreamParser(), b.String())
	require.Len(t, artifacts, 2)
	for _, a := range artifacts {
		require.Equal(t, "README.md", a.Filename)
		require.Equal(t, model.SectionReadme, a.Section)
	}
	require.Contains(t, artifacts[0].Content, "Opening overview.")
	require.GreaterOrEqual(t, artifacts[0].SizeBytes, docFlushBytes/2)
	require.Contains(t, artifacts[1].Content, "Closing summary.")
	require.NotContains(t, artifacts[1].Content, "Opening overview.")
}

func TestStreamParserLineCapBoundsImplicitBuffer(t *testing.T) {
	// Unfenced narrative with no blank lines never triggers the blank-line
	// flush; the line cap must bound the buffer and reopen the file.
	p := NewStreamParser()
	p.Feed("## ANALYSIS\n")
	total := maxBufferedLines + 500
	for i := 0; i < total; i++ {
		p.Feed(fmt.Sprintf("finding-%04d: the batch job writes to a shared dataset\n", i))
	}
	require.Less(t, len(p.buf), maxBufferedLines)

	artifacts := p.Finalize()
	require.Len(t, artifacts, 2)
	require.Equal(t, "analysis.md", artifacts[0].Filename)
	require.Equal(t, maxBufferedLines, strings.Count(artifacts[0].Content, "\n")+1)
	require.Contains(t, artifacts[0].Content, "finding-0000")
	require.Equal(t, "analysis.md", artifacts[1].Filename)
	require.Contains(t, artifacts[1].Content, fmt.Sprintf("finding-%04d", total-1))
	require.NotContains(t, artifacts[1].Content, "finding-0000:")
}

func TestStreamParserLineCapInArtifactSectionDropsUntilNextHeader(t *testing.T) {
	var b strings.Builder
	b.WriteString("## LAMBDA_FUNCTIONS\n### runaway.py\n")
	total := maxBufferedLines + 200
	for i := 0; i < total; i++ {
		fmt.Fprintf(&b, "print(%d)  # emitted without any closing fence\n", i)
	}
	b.WriteString("### after.py\nimport json\nprint(json.dumps({\"ok\": True}))\n")

	artifacts := feedAll(NewStreamParser(), b.String())
	require.Len(t, artifacts, 2)
	require.Equal(t, "runaway.py", artifacts[0].Filename)
	require.Equal(t, maxBufferedLines, strings.Count(artifacts[0].Content, "\n")+1)
	// Lines past the cap have no open file and are dropped; parsing resumes
	// at the next file header.
	require.Equal(t, "after.py", artifacts[1].Filename)
	require.Contains(t, artifacts[1].Content, "json.dumps")
}
