package model

// FileArtifact is one discrete generated file attributed to a section.
// Created exactly once when a flush condition fires; immutable thereafter.
type FileArtifact struct {
	Filename    string    `json:"filename"`
	Section     SectionID `json:"section"`
	SizeBytes   int       `json:"size_bytes"`
	Content     string    `json:"content"`
	ContentType string    `json:"content_type"`
}

// ArtifactRef describes one uploaded artifact in job listings.
type ArtifactRef struct {
	Filename    string    `json:"filename"`
	Section     SectionID `json:"section"`
	Key         string    `json:"key"`
	SizeBytes   int       `json:"size_bytes"`
	ContentType string    `json:"content_type"`
}
