package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/docforge-ai/docforge/internal/ai"
	"github.com/docforge-ai/docforge/internal/engine"
	"github.com/docforge-ai/docforge/internal/model"
	"github.com/docforge-ai/docforge/internal/prompt"
)

// TemplateValidator checks generated CloudFormation templates and asks the
// model to repair invalid ones, up to a bounded number of attempts. A
// template that still fails after the last attempt is kept as-is so the user
// sees what the model produced.
type TemplateValidator struct {
	streamer ai.IStreamer
	prompts  *prompt.Manager
	attempts int
}

func NewTemplateValidator(streamer ai.IStreamer, prompts *prompt.Manager, attempts int) *TemplateValidator {
	if attempts <= 0 {
		attempts = 3
	}
	return &TemplateValidator{streamer: streamer, prompts: prompts, attempts: attempts}
}

func (v *TemplateValidator) ValidateArtifacts(ctx context.Context, artifacts []model.FileArtifact) []model.FileArtifact {
	out := make([]model.FileArtifact, 0, len(artifacts))
	for _, artifact := range artifacts {
		if artifact.Section == model.SectionCloudFormation {
			artifact = v.repair(ctx, artifact)
		}
		out = append(out, artifact)
	}
	return out
}

func (v *TemplateValidator) repair(ctx context.Context, artifact model.FileArtifact) model.FileArtifact {
	logger := logutil.GetLogger(ctx).With(zap.String("filename", artifact.Filename))
	content := artifact.Content
	for attempt := 1; attempt <= v.attempts; attempt++ {
		problems := ValidateTemplate(content)
		if len(problems) == 0 {
			if attempt > 1 {
				logger.Info("template repaired", zap.Int("attempt", attempt))
			}
			artifact.Content = content
			artifact.SizeBytes = len(content)
			return artifact
		}
		if attempt == v.attempts {
			logger.Warn("template still invalid, keeping last version",
				zap.Strings("problems", problems))
			break
		}
		logger.Warn("template invalid, requesting fix",
			zap.Int("attempt", attempt), zap.Strings("problems", problems))
		fixed, err := v.requestFix(ctx, content, problems)
		if err != nil {
			logger.Warn("fix request failed", zap.Error(err))
			break
		}
		content = fixed
	}
	artifact.Content = content
	artifact.SizeBytes = len(content)
	return artifact
}

func (v *TemplateValidator) requestFix(ctx context.Context, content string, problems []string) (string, error) {
	input := fmt.Sprintf("Validation errors:\n%s\n\nTemplate:\n%s",
		strings.Join(problems, "\n"), content)
	rendered, err := v.prompts.Render(ctx, prompt.AgentCFNFix, input)
	if err != nil {
		return "", err
	}
	response, err := v.streamer.Generate(ctx, rendered)
	if err != nil {
		return "", err
	}
	return extractTemplate(response), nil
}

// extractTemplate pulls the template body out of a model response, which may
// wrap it in section and file markers or a bare code fence.
func extractTemplate(response string) string {
	parser := engine.NewStreamParser()
	parser.Feed(response)
	for _, artifact := range parser.Finalize() {
		if artifact.Section == model.SectionCloudFormation {
			return artifact.Content
		}
	}
	return stripFence(response)
}

func stripFence(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// ValidateTemplate performs structural validation of a CloudFormation
// template in YAML and returns a list of problems, empty when valid.
func ValidateTemplate(content string) []string {
	var problems []string
	var doc map[string]interface{}
	if err := yaml.Unmarshal([]byte(content), &doc); err != nil {
		return []string{fmt.Sprintf("not valid YAML: %v", err)}
	}
	if len(doc) == 0 {
		return []string{"template is empty"}
	}
	resources, ok := doc["Resources"]
	if !ok {
		return append(problems, "missing Resources section")
	}
	resourceMap, ok := resources.(map[string]interface{})
	if !ok || len(resourceMap) == 0 {
		return append(problems, "Resources section is empty")
	}
	for name, raw := range resourceMap {
		resource, ok := raw.(map[string]interface{})
		if !ok {
			problems = append(problems, fmt.Sprintf("resource %s is not a mapping", name))
			continue
		}
		if _, ok := resource["Type"]; !ok {
			problems = append(problems, fmt.Sprintf("resource %s has no Type", name))
		}
	}
	return problems
}
