package engine

import (
	"context"
	"reflect"
	"strings"
	"testing"
)

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "empty", text: "", want: 0},
		{name: "short", text: "abc", want: 0},
		{name: "exact", text: "abcdefgh", want: 2},
		{name: "rounds down", text: "abcdefghi", want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EstimateTokens(tt.text); got != tt.want {
				t.Errorf("EstimateTokens() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSplitChunksEmptyInput(t *testing.T) {
	if got := SplitChunks(context.Background(), "", 1000); got != nil {
		t.Errorf("expected no chunks for empty input, got %d", len(got))
	}
	if got := SplitChunks(context.Background(), "   \n\t ", 1000); got != nil {
		t.Errorf("expected no chunks for blank input, got %d", len(got))
	}
}

func TestSplitChunksSingleChunkFastPath(t *testing.T) {
	text := "a small document that fits in one chunk"
	chunks := SplitChunks(context.Background(), text, 1000)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Index != 1 || chunks[0].Total != 1 {
		t.Errorf("index/total = %d/%d, want 1/1", chunks[0].Index, chunks[0].Total)
	}
	if chunks[0].Text != text {
		t.Errorf("single chunk must contain the whole text")
	}
}

func TestSplitChunksRespectsBudget(t *testing.T) {
	paragraph := strings.Repeat("some words in a sentence. ", 40)
	text := strings.Repeat(paragraph+"\n\n", 30)
	maxTokens := 700

	chunks := SplitChunks(context.Background(), text, maxTokens)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for _, chunk := range chunks {
		if chunk.EstimatedTokens > maxTokens {
			t.Errorf("chunk %d exceeds budget: %d > %d", chunk.Index, chunk.EstimatedTokens, maxTokens)
		}
		if chunk.Total != len(chunks) {
			t.Errorf("chunk %d total = %d, want %d", chunk.Index, chunk.Total, len(chunks))
		}
	}
}

func TestSplitChunksLosesNoContent(t *testing.T) {
	text := strings.Repeat("alpha beta gamma delta. ", 600)
	chunks := SplitChunks(context.Background(), text, 600)

	var joined strings.Builder
	for _, chunk := range chunks {
		joined.WriteString(chunk.Text)
		joined.WriteString(" ")
	}
	got := strings.Join(strings.Fields(joined.String()), " ")
	want := strings.Join(strings.Fields(text), " ")
	if got != want {
		t.Errorf("reassembled chunks differ from input outside boundary whitespace")
	}
}

func TestSplitChunksDeterministic(t *testing.T) {
	text := strings.Repeat("determinism matters for retries.\n\n", 500)
	first := SplitChunks(context.Background(), text, 800)
	second := SplitChunks(context.Background(), text, 800)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("splitting the same input twice produced different chunks")
	}
}

func TestSplitChunksHardCutOnUnbreakableInput(t *testing.T) {
	// A single giant token with no boundaries at all.
	text := strings.Repeat("x", 30000)
	maxTokens := 600

	chunks := SplitChunks(context.Background(), text, maxTokens)
	if len(chunks) < 2 {
		t.Fatalf("expected hard-cut chunks, got %d", len(chunks))
	}
	var total int
	for _, chunk := range chunks {
		if chunk.EstimatedTokens > maxTokens {
			t.Errorf("chunk %d exceeds budget after hard cut", chunk.Index)
		}
		total += len(chunk.Text)
	}
	if total != len(text) {
		t.Errorf("hard cut lost characters: got %d, want %d", total, len(text))
	}
}

func TestSplitChunksPrefersParagraphBoundary(t *testing.T) {
	paragraph := strings.Repeat("w", 1500)
	text := paragraph + "\n\n" + paragraph + "\n\n" + paragraph
	chunks := SplitChunks(context.Background(), text, 1000)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks[:len(chunks)-1] {
		if strings.Contains(chunk.Text, "\n\n") && !strings.HasSuffix(chunk.Text, paragraph) {
			t.Errorf("chunk %d did not cut at a paragraph boundary", i+1)
		}
	}
}
