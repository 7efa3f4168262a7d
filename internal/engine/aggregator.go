package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/docforge-ai/docforge/internal/model"
)

// chunkDelimiter separates same-section content contributed by different
// chunks, naming the originating chunk so nothing is silently overwritten.
const chunkDelimiter = "### Additional Analysis from Chunk %d"

// Aggregate merges per-chunk parser outputs into a single per-section
// content mapping. Failed chunks are skipped (logged, not fatal); for each
// section the first chunk's content is the base and later chunks append
// behind a chunk-index delimiter, in chunk order. An empty mapping means no
// chunk produced content and the caller must treat the whole run as failed.
func Aggregate(ctx context.Context, results []model.ChunkResult) map[model.SectionID]string {
	logger := logutil.GetLogger(ctx)
	aggregated := make(map[model.SectionID]string)

	for _, result := range results {
		if result.Failed() {
			logger.Warn("skipping failed chunk",
				zap.Int("chunk_index", result.ChunkIndex),
				zap.Error(result.Err),
			)
			continue
		}
		sections := sectionContent(result.Artifacts)
		for _, id := range model.AllSections {
			content, ok := sections[id]
			if !ok {
				continue
			}
			if existing, ok := aggregated[id]; ok {
				delimiter := fmt.Sprintf(chunkDelimiter, result.ChunkIndex)
				aggregated[id] = existing + "\n\n" + delimiter + "\n\n" + content
			} else {
				aggregated[id] = content
			}
		}
	}
	return aggregated
}

// MergeArtifacts flattens the per-chunk artifact lists into one set for the
// sink, disambiguating filenames that repeat across chunks: a later chunk's
// duplicate is renamed with a chunk prefix instead of clobbering the first.
func MergeArtifacts(results []model.ChunkResult) []model.FileArtifact {
	seen := make(map[string]bool)
	var merged []model.FileArtifact
	for _, result := range results {
		if result.Failed() {
			continue
		}
		for _, artifact := range result.Artifacts {
			key := string(artifact.Section) + "/" + artifact.Filename
			if seen[key] {
				artifact.Filename = fmt.Sprintf("chunk%d_%s", result.ChunkIndex, artifact.Filename)
				key = string(artifact.Section) + "/" + artifact.Filename
				if seen[key] {
					continue
				}
			}
			seen[key] = true
			merged = append(merged, artifact)
		}
	}
	return merged
}

// sectionContent folds one chunk's artifacts into per-section text, keeping
// emission order and reinstating file markers so the consolidated output
// remains navigable.
func sectionContent(artifacts []model.FileArtifact) map[model.SectionID]string {
	sections := make(map[model.SectionID]string)
	for _, artifact := range artifacts {
		var sb strings.Builder
		if existing, ok := sections[artifact.Section]; ok {
			sb.WriteString(existing)
			sb.WriteString("\n\n")
		}
		sb.WriteString("### ")
		sb.WriteString(artifact.Filename)
		sb.WriteString("\n\n")
		sb.WriteString(artifact.Content)
		sections[artifact.Section] = sb.String()
	}
	return sections
}
