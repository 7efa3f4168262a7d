package model

// Chunk is one bounded slice of oversized input text, sized to fit the
// model's context budget. Immutable once created; Index is 1-based.
type Chunk struct {
	Index           int    `json:"index"`
	Total           int    `json:"total"`
	Text            string `json:"text"`
	EstimatedTokens int    `json:"estimated_tokens"`
}

// ChunkResult carries the parse outcome of a single chunk. Err is non-nil
// when the chunk's completion stream failed; failed chunks are skipped
// during aggregation, never retried here.
type ChunkResult struct {
	ChunkIndex int
	Err        error
	Artifacts  []FileArtifact
}

// Failed reports whether the chunk must be excluded from aggregation.
func (r ChunkResult) Failed() bool {
	return r.Err != nil
}
