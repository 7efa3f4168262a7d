package prompt

// Agent names used across the pipeline.
const (
	AgentAnalysis = "analysis"
	AgentCFN      = "cfn"
	AgentCFNFix   = "cfn-fix"
)

var defaultTemplates = map[string]string{
	AgentAnalysis: defaultAnalysisTemplate,
	AgentCFN:      defaultCFNTemplate,
	AgentCFNFix:   defaultCFNFixTemplate,
}

const defaultAnalysisTemplate = `You are a cloud migration expert. Analyze the following legacy codebase and produce modernized AWS artifacts.

Structure your answer with these exact section markers, each on its own line:

## LAMBDA_FUNCTIONS
## IAM_ROLES
## DYNAMODB
## S3
## SQS_SNS_EVENTBRIDGE
## STEP_FUNCTIONS
## RDS
## API_GATEWAY
## README
## ANALYSIS
## ARCHITECTURE

Inside code sections, introduce every generated file with a marker line like:

### handler.py

followed by the file content in a fenced code block. Keep README, ANALYSIS and ARCHITECTURE as plain markdown prose without file markers.

Source code to analyze:

{content}`

const defaultCFNTemplate = `You are an AWS infrastructure expert. Generate a complete CloudFormation template in YAML for the system described below.

Answer with this exact section marker on its own line:

## CLOUDFORMATION

then a file marker line:

### template.yaml

followed by the template in a fenced code block. The template must be valid YAML with AWSTemplateFormatVersion, Description and Resources.

System description:

{content}`

const defaultCFNFixTemplate = `The CloudFormation template below failed validation. Fix the reported problems and return the corrected template.

Answer with the section marker ## CLOUDFORMATION, a ### template.yaml file marker, and the fixed template in a fenced code block. Do not change resources that are unrelated to the errors.

{content}`
