package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docforge-ai/docforge/internal/model"
)

func lambdaArtifact(filename, content string) model.FileArtifact {
	return model.FileArtifact{
		Filename:    filename,
		Section:     model.SectionLambdaFunctions,
		SizeBytes:   len(content),
		Content:     content,
		ContentType: "text/x-python",
	}
}

func TestAggregateMergesSameSectionAcrossChunks(t *testing.T) {
	results := []model.ChunkResult{
		{ChunkIndex: 1, Artifacts: []model.FileArtifact{lambdaArtifact("ingest.py", "def ingest(): pass")}},
		{ChunkIndex: 2, Artifacts: []model.FileArtifact{lambdaArtifact("report.py", "def report(): pass")}},
	}

	aggregated := Aggregate(context.Background(), results)
	require.Len(t, aggregated, 1)
	content := aggregated[model.SectionLambdaFunctions]
	require.Contains(t, content, "def ingest(): pass")
	require.Contains(t, content, "def report(): pass")
	require.Contains(t, content, "Additional Analysis from Chunk 2")
	require.Less(t,
		strings.Index(content, "def ingest(): pass"),
		strings.Index(content, "def report(): pass"),
		"chunk order must be preserved")
}

func TestAggregateSkipsFailedChunks(t *testing.T) {
	results := []model.ChunkResult{
		{ChunkIndex: 1, Err: errors.New("stream error")},
		{ChunkIndex: 2, Artifacts: []model.FileArtifact{lambdaArtifact("ok.py", "def ok(): pass")}},
	}

	aggregated := Aggregate(context.Background(), results)
	require.Len(t, aggregated, 1)
	require.NotContains(t, aggregated[model.SectionLambdaFunctions], "Additional Analysis")
}

func TestAggregateZeroSuccessfulChunksYieldsEmptyMapping(t *testing.T) {
	results := []model.ChunkResult{
		{ChunkIndex: 1, Err: errors.New("stream error")},
		{ChunkIndex: 2, Err: errors.New("stream error")},
	}
	require.Empty(t, Aggregate(context.Background(), results))
	require.Empty(t, Aggregate(context.Background(), nil))
}

func TestMergeArtifactsDisambiguatesRepeatedFilenames(t *testing.T) {
	results := []model.ChunkResult{
		{ChunkIndex: 1, Artifacts: []model.FileArtifact{lambdaArtifact("handler.py", "one")}},
		{ChunkIndex: 2, Artifacts: []model.FileArtifact{lambdaArtifact("handler.py", "two")}},
	}

	merged := MergeArtifacts(results)
	require.Len(t, merged, 2)
	require.Equal(t, "handler.py", merged[0].Filename)
	require.Equal(t, "chunk2_handler.py", merged[1].Filename)
	require.Equal(t, "two", merged[1].Content)
}
