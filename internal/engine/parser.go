package engine

import (
	"strings"

	"github.com/docforge-ai/docforge/internal/model"
)

const (
	// minArtifactBytes suppresses spurious artifacts: cleaned content below
	// this size is silently discarded.
	minArtifactBytes = 40

	// minFenceLines is the least number of buffered lines before a closing
	// code fence is trusted as a completion signal.
	minFenceLines = 3

	// docFlushBytes triggers an early flush of a documentation buffer at
	// the next blank line, keeping narrative artifacts reasonably sized.
	docFlushBytes = 16 * 1024

	// maxBufferedLines bounds memory regardless of how malformed the
	// incoming stream is.
	maxBufferedLines = 4000
)

// StreamParser incrementally extracts file artifacts from one completion
// stream. Fragments of arbitrary size are appended via Feed; complete lines
// are dispatched as they form and any trailing partial line waits for the
// next fragment or Finalize. The final artifact set is identical no matter
// how the stream is sliced into fragments.
//
// A parser instance owns its buffers exclusively: it is not safe for
// concurrent Feed calls and must not be shared across goroutines.
type StreamParser struct {
	section    model.SectionID
	hasSection bool
	file       string
	implicit   bool
	buf        []string
	partial    string

	catchAll  []string
	artifacts []model.FileArtifact
	finalized bool
}

func NewStreamParser() *StreamParser {
	return &StreamParser{}
}

// Feed appends one fragment of stream text. May be called any number of
// times; fragment boundaries carry no meaning.
func (p *StreamParser) Feed(fragment string) {
	if p.finalized || fragment == "" {
		return
	}
	p.partial += fragment
	for {
		idx := strings.IndexByte(p.partial, '\n')
		if idx < 0 {
			break
		}
		line := p.partial[:idx]
		p.partial = p.partial[idx+1:]
		p.processLine(strings.TrimRight(line, "\r"))
	}
}

// Finalize flushes any still-open file, processes an unterminated trailing
// line, and returns every artifact emitted over the parser's lifetime in
// emission order. Must be called exactly once.
func (p *StreamParser) Finalize() []model.FileArtifact {
	if p.finalized {
		return p.artifacts
	}
	if p.partial != "" {
		p.processLine(strings.TrimRight(p.partial, "\r"))
		p.partial = ""
	}
	p.flush()
	if !p.hasSection && len(p.catchAll) > 0 {
		p.emit(model.SectionOtherServices, catchAllFilename, p.catchAll)
		p.catchAll = nil
	}
	p.finalized = true
	return p.artifacts
}

// processLine dispatches one complete line in strict priority order:
// section header, file header, content accumulation, completion check.
func (p *StreamParser) processLine(line string) {
	if id, ok := matchSection(line); ok {
		p.enterSection(id)
		return
	}
	if p.hasSection {
		if filename, ok := matchFileHeader(line); ok {
			p.flush()
			p.file = filename
			p.implicit = false
			return
		}
	}
	if !p.hasSection {
		// No section seen yet: remember everything so an unstructured
		// stream still yields a single catch-all artifact.
		p.catchAll = append(p.catchAll, line)
		return
	}
	if p.file == "" {
		// Artifact sections attribute content only after an explicit file
		// marker; stray prose between headers is dropped.
		return
	}
	p.buf = append(p.buf, line)
	p.checkCompletion(line)
}

func (p *StreamParser) enterSection(id model.SectionID) {
	p.flush()
	p.section = id
	p.hasSection = true
	if name, ok := docFilenames[id]; ok {
		p.file = name
		p.implicit = true
	} else {
		p.file = ""
		p.implicit = false
	}
}

// checkCompletion applies the flush heuristics after a line has been
// buffered. Header-driven flushes are handled earlier by processLine, which
// always flushes before switching files or sections.
func (p *StreamParser) checkCompletion(line string) {
	trimmed := strings.TrimSpace(line)

	// Closing fence: a bare ``` with enough buffered context means the
	// fenced body that started earlier is complete.
	if trimmed == "```" && len(p.buf) >= minFenceLines && !p.implicit {
		p.flush()
		return
	}

	if p.implicit {
		// Oversized narrative buffers flush at the next blank line; the
		// canonical file reopens so later content is still captured.
		if trimmed == "" && bufferedBytes(p.buf) >= docFlushBytes {
			section := p.section
			p.flush()
			p.file = docFilenames[section]
			p.implicit = true
			return
		}
	}

	if len(p.buf) >= maxBufferedLines {
		section, implicit := p.section, p.implicit
		p.flush()
		if implicit {
			p.file = docFilenames[section]
			p.implicit = true
		}
	}
}

// flush finalizes the currently-buffered content as an artifact, when a file
// is open and the cleaned content clears the minimum-size filter. The open
// file and buffer are reset either way.
func (p *StreamParser) flush() {
	if p.file != "" && len(p.buf) > 0 {
		p.emit(p.section, p.file, p.buf)
	}
	p.file = ""
	p.implicit = false
	p.buf = nil
}

func (p *StreamParser) emit(section model.SectionID, filename string, lines []string) {
	content := cleanContent(lines)
	if len(content) < minArtifactBytes {
		return
	}
	p.artifacts = append(p.artifacts, model.FileArtifact{
		Filename:    filename,
		Section:     section,
		SizeBytes:   len(content),
		Content:     content,
		ContentType: ContentTypeFor(filename),
	})
}

// cleanContent trims leading/trailing blank lines and strips residual code
// fence delimiter lines from a buffered file body.
func cleanContent(lines []string) string {
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	start := 0
	for start < len(kept) && strings.TrimSpace(kept[start]) == "" {
		start++
	}
	end := len(kept)
	for end > start && strings.TrimSpace(kept[end-1]) == "" {
		end--
	}
	return strings.Join(kept[start:end], "\n")
}

func bufferedBytes(lines []string) int {
	total := 0
	for _, line := range lines {
		total += len(line) + 1
	}
	return total
}
