package model

// Job status values follow the processing pipeline end to end.
const (
	JobStatusPending          = "PENDING"
	JobStatusProcessing       = "PROCESSING"
	JobStatusChunking         = "CHUNKING"
	JobStatusProcessingChunks = "PROCESSING_CHUNKS"
	JobStatusAggregating      = "AGGREGATING"
	JobStatusValidating       = "VALIDATING"
	JobStatusCompleted        = "COMPLETED"
	JobStatusError            = "ERROR"
)

// Job is one generation run: a source document key, an output prefix and
// the tracked progress of its chunk fan-out.
type Job struct {
	ID            string        `json:"id" db:"id"`
	SourceKey     string        `json:"source_key" db:"source_key"`
	OutputPrefix  string        `json:"output_prefix" db:"output_prefix"`
	Status        string        `json:"status" db:"status"`
	StatusMessage string        `json:"status_message" db:"status_message"`
	Processed     int           `json:"processed" db:"processed"`
	Total         int           `json:"total" db:"total"`
	Artifacts     []ArtifactRef `json:"artifacts,omitempty" db:"-"`
	Ctime         int64         `json:"ctime" db:"ctime"`
	Mtime         int64         `json:"mtime" db:"mtime"`
}
