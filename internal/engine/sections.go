package engine

import (
	"regexp"

	"github.com/docforge-ai/docforge/internal/model"
)

// The parser is driven by two configuration tables: one header pattern per
// section and one file-header pattern per recognized artifact extension.
// Keeping the patterns in a single table avoids the drifting per-category
// copies this replaces.

type sectionPattern struct {
	ID model.SectionID
	re *regexp.Regexp
}

// sectionPatterns is ordered; the first match wins. Patterns accept the
// marker forms the model is prompted to emit (## LAMBDA_FUNCTIONS) plus the
// looser heading variants observed in practice (## AWS Lambda).
var sectionPatterns = []sectionPattern{
	{model.SectionLambdaFunctions, regexp.MustCompile(`(?i)^#{1,4}\s*(?:LAMBDA[_ ]FUNCTIONS|AWS Lambda|Lambda)\s*:?\s*$`)},
	{model.SectionIAMRoles, regexp.MustCompile(`(?i)^#{1,4}\s*(?:IAM[_ ]ROLES|IAM)\s*:?\s*$`)},
	{model.SectionDynamoDB, regexp.MustCompile(`(?i)^#{1,4}\s*DYNAMODB\s*:?\s*$`)},
	{model.SectionS3, regexp.MustCompile(`(?i)^#{1,4}\s*S3\s*:?\s*$`)},
	{model.SectionMessaging, regexp.MustCompile(`(?i)^#{1,4}\s*(?:SQS[_ ]SNS[_ ]EVENTBRIDGE|SQS|SNS|EventBridge)\s*:?\s*$`)},
	{model.SectionStepFunctions, regexp.MustCompile(`(?i)^#{1,4}\s*STEP[_ ]FUNCTIONS\s*:?\s*$`)},
	{model.SectionRDS, regexp.MustCompile(`(?i)^#{1,4}\s*RDS\s*:?\s*$`)},
	{model.SectionAPIGateway, regexp.MustCompile(`(?i)^#{1,4}\s*API[_ ]GATEWAY\s*:?\s*$`)},
	{model.SectionCloudFormation, regexp.MustCompile(`(?i)^#{1,4}\s*CLOUDFORMATION\s*:?\s*$`)},
	{model.SectionReadme, regexp.MustCompile(`(?i)^#{1,4}\s*README\s*:?\s*$`)},
	{model.SectionAnalysis, regexp.MustCompile(`(?i)^#{1,4}\s*(?:ANALYSIS|DESIGN[_ ]RATIONALE)\s*:?\s*$`)},
	{model.SectionArchitecture, regexp.MustCompile(`(?i)^#{1,4}\s*(?:ARCHITECTURE|ARCHITECTURE[_ ]OVERVIEW)\s*:?\s*$`)},
	{model.SectionOtherServices, regexp.MustCompile(`(?i)^#{1,4}\s*OTHER[_ ]SERVICES\s*:?\s*$`)},
}

// artifactExtensions maps each recognized extension to its content type.
// One file-header pattern is derived per extension.
var artifactExtensions = []struct {
	Ext         string
	ContentType string
}{
	{"py", "text/x-python"},
	{"js", "application/javascript"},
	{"ts", "application/typescript"},
	{"java", "text/x-java-source"},
	{"go", "text/x-go"},
	{"json", "application/json"},
	{"yaml", "application/x-yaml"},
	{"yml", "application/x-yaml"},
	{"tf", "text/plain"},
	{"sql", "application/sql"},
	{"sh", "application/x-sh"},
	{"md", "text/markdown"},
	{"txt", "text/plain"},
}

var filePatterns []*regexp.Regexp

func init() {
	for _, entry := range artifactExtensions {
		// matches "### name.ext", "#### `name.ext`" and "**name.ext**"
		pattern := `(?i)^(?:#{2,5}\s+|\*\*)\x60?([\w.\-/]+\.` + entry.Ext + `)\x60?(?:\*\*)?\s*:?\s*$`
		filePatterns = append(filePatterns, regexp.MustCompile(pattern))
	}
}

// docFilenames are the fixed canonical filenames opened implicitly when a
// documentation section starts, so narrative content is captured even
// without a per-file marker.
var docFilenames = map[model.SectionID]string{
	model.SectionReadme:       "README.md",
	model.SectionAnalysis:     "analysis.md",
	model.SectionArchitecture: "architecture.md",
}

// catchAllFilename names the single artifact emitted when a stream contains
// no recognizable section markers at all.
const catchAllFilename = "other_services.txt"

func matchSection(line string) (model.SectionID, bool) {
	for _, entry := range sectionPatterns {
		if entry.re.MatchString(line) {
			return entry.ID, true
		}
	}
	return "", false
}

func matchFileHeader(line string) (string, bool) {
	for _, re := range filePatterns {
		if m := re.FindStringSubmatch(line); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// ContentTypeFor resolves the content type of a generated filename from the
// artifact extension table; unknown extensions default to plain text.
func ContentTypeFor(filename string) string {
	for _, entry := range artifactExtensions {
		if hasExt(filename, entry.Ext) {
			return entry.ContentType
		}
	}
	return "text/plain"
}

func hasExt(filename, ext string) bool {
	suffix := "." + ext
	if len(filename) <= len(suffix) {
		return false
	}
	tail := filename[len(filename)-len(suffix):]
	for i := 0; i < len(suffix); i++ {
		c := tail[i]
		if 'A' <= c && c <= 'Z' {
			c += 'a' - 'A'
		}
		if c != suffix[i] {
			return false
		}
	}
	return true
}
