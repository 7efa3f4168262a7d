package engine

import (
	"context"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/docforge-ai/docforge/internal/model"
)

const (
	// DefaultMaxTokensPerChunk matches the model invocation budget.
	DefaultMaxTokensPerChunk = 15000

	// promptReserveTokens is held back from every chunk so the per-chunk
	// prompt template prepended later still fits the budget.
	promptReserveTokens = 500

	charsPerToken = 4
)

// boundaries are tried backward from the target cut offset, coarsest first:
// paragraph break, sentence end, line break, word break. A chunk that fits
// none of them degrades to a hard character cut.
var boundaries = []string{"\n\n", ". ", "\n", " "}

// SplitChunks divides text into an ordered sequence of chunks, each under
// maxTokens. Splitting is pure and deterministic: re-splitting identical
// input yields identical chunks, which retries rely on.
func SplitChunks(ctx context.Context, text string, maxTokens int) []model.Chunk {
	logger := logutil.GetLogger(ctx)
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokensPerChunk
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if EstimateTokens(text) <= maxTokens {
		chunk := model.Chunk{Index: 1, Total: 1, Text: text, EstimatedTokens: EstimateTokens(text)}
		return []model.Chunk{chunk}
	}

	maxChars := (maxTokens - promptReserveTokens) * charsPerToken
	if maxChars < charsPerToken {
		maxChars = charsPerToken
	}

	var parts []string
	for start := 0; start < len(text); {
		end := start + maxChars
		if end >= len(text) {
			end = len(text)
		} else {
			end = cutOffset(text, start, end)
		}
		part := strings.TrimSpace(text[start:end])
		if part != "" {
			parts = append(parts, part)
		}
		start = end
	}

	chunks := make([]model.Chunk, 0, len(parts))
	for i, part := range parts {
		chunks = append(chunks, model.Chunk{
			Index:           i + 1,
			Total:           len(parts),
			Text:            part,
			EstimatedTokens: EstimateTokens(part),
		})
	}
	logger.Info("text split into chunks",
		zap.Int("input_chars", len(text)),
		zap.Int("max_tokens", maxTokens),
		zap.Int("chunks", len(chunks)),
	)
	return chunks
}

// cutOffset searches backward from end for the nearest safe boundary after
// start. No boundary at all means a hard cut at end; a single oversized
// word cannot stall progress.
func cutOffset(text string, start, end int) int {
	window := text[start:end]
	for _, boundary := range boundaries {
		idx := strings.LastIndex(window, boundary)
		if idx > 0 {
			return start + idx + len(boundary)
		}
	}
	return end
}
