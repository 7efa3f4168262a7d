package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/docforge-ai/docforge/internal/model"
	"github.com/docforge-ai/docforge/internal/prompt"
)

const validTemplate = `AWSTemplateFormatVersion: "2010-09-09"
Description: payment stack
Resources:
  PaymentsTable:
    Type: AWS::DynamoDB::Table
    Properties:
      BillingMode: PAY_PER_REQUEST
`

const brokenTemplate = `Description: payment stack
Outputs:
  Nothing: {}
`

func cfnArtifact(content string) model.FileArtifact {
	return model.FileArtifact{
		Filename:    "template.yaml",
		Section:     model.SectionCloudFormation,
		Content:     content,
		SizeBytes:   len(content),
		ContentType: "application/x-yaml",
	}
}

func TestValidateTemplateAcceptsValid(t *testing.T) {
	require.Empty(t, ValidateTemplate(validTemplate))
}

func TestValidateTemplateRejectsMissingResources(t *testing.T) {
	problems := ValidateTemplate(brokenTemplate)
	require.NotEmpty(t, problems)
	require.Contains(t, problems[0], "Resources")
}

func TestValidateTemplateRejectsResourceWithoutType(t *testing.T) {
	problems := ValidateTemplate("Resources:\n  Broken:\n    Properties: {}\n")
	require.Len(t, problems, 1)
	require.Contains(t, problems[0], "Broken")
}

func TestValidateTemplateRejectsBadYAML(t *testing.T) {
	problems := ValidateTemplate("Resources:\n\t- bad")
	require.NotEmpty(t, problems)
	require.Contains(t, problems[0], "YAML")
}

func newTestValidator(response string, attempts int) *TemplateValidator {
	prompts := prompt.NewManager(newMemStore(), "python", time.Minute)
	return NewTemplateValidator(&scriptStreamer{response: response}, prompts, attempts)
}

func TestValidatorKeepsValidTemplate(t *testing.T) {
	v := newTestValidator("unused", 3)
	out := v.ValidateArtifacts(context.Background(), []model.FileArtifact{cfnArtifact(validTemplate)})
	require.Len(t, out, 1)
	require.Equal(t, validTemplate, out[0].Content)
}

func TestValidatorRepairsBrokenTemplate(t *testing.T) {
	fix := "## CLOUDFORMATION\n\n### template.yaml\n\n```yaml\n" + validTemplate + "```\n"
	v := newTestValidator(fix, 3)
	out := v.ValidateArtifacts(context.Background(), []model.FileArtifact{cfnArtifact(brokenTemplate)})
	require.Len(t, out, 1)
	require.Empty(t, ValidateTemplate(out[0].Content))
	require.Contains(t, out[0].Content, "PaymentsTable")
}

func TestValidatorGivesUpAfterAttempts(t *testing.T) {
	v := newTestValidator("still not yaml: [", 2)
	out := v.ValidateArtifacts(context.Background(), []model.FileArtifact{cfnArtifact(brokenTemplate)})
	require.Len(t, out, 1)
	require.NotEmpty(t, ValidateTemplate(out[0].Content))
}

func TestValidatorIgnoresOtherSections(t *testing.T) {
	artifact := model.FileArtifact{
		Filename: "handler.py",
		Section:  model.SectionLambdaFunctions,
		Content:  "def handler(): pass",
	}
	v := newTestValidator("unused", 3)
	out := v.ValidateArtifacts(context.Background(), []model.FileArtifact{artifact})
	require.Equal(t, artifact.Content, out[0].Content)
}
