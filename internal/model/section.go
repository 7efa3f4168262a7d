package model

// SectionID is the category tag attached to every generated artifact. The
// set is closed: content that matches no known section header is attributed
// to SectionOtherServices instead of being dropped.
type SectionID string

const (
	SectionLambdaFunctions SectionID = "LAMBDA_FUNCTIONS"
	SectionIAMRoles        SectionID = "IAM_ROLES"
	SectionDynamoDB        SectionID = "DYNAMODB"
	SectionS3              SectionID = "S3"
	SectionMessaging       SectionID = "SQS_SNS_EVENTBRIDGE"
	SectionStepFunctions   SectionID = "STEP_FUNCTIONS"
	SectionRDS             SectionID = "RDS"
	SectionAPIGateway      SectionID = "API_GATEWAY"
	SectionCloudFormation  SectionID = "CLOUDFORMATION"
	SectionReadme          SectionID = "README"
	SectionAnalysis        SectionID = "ANALYSIS"
	SectionArchitecture    SectionID = "ARCHITECTURE"
	SectionOtherServices   SectionID = "OTHER_SERVICES"
)

// AllSections lists every section in canonical order. Aggregation iterates
// this list so merged output is deterministic regardless of map ordering.
var AllSections = []SectionID{
	SectionLambdaFunctions,
	SectionIAMRoles,
	SectionDynamoDB,
	SectionS3,
	SectionMessaging,
	SectionStepFunctions,
	SectionRDS,
	SectionAPIGateway,
	SectionCloudFormation,
	SectionReadme,
	SectionAnalysis,
	SectionArchitecture,
	SectionOtherServices,
}

// IsDocumentation reports whether the section accumulates narrative content
// without requiring an explicit per-file marker.
func (s SectionID) IsDocumentation() bool {
	switch s {
	case SectionReadme, SectionAnalysis, SectionArchitecture:
		return true
	}
	return false
}

// Folder returns the output folder for a section in lowercase hyphenated
// form. Documentation sections share a single fixed folder.
func (s SectionID) Folder() string {
	if s.IsDocumentation() {
		return "documentation"
	}
	switch s {
	case SectionLambdaFunctions:
		return "lambda-functions"
	case SectionIAMRoles:
		return "iam-roles"
	case SectionDynamoDB:
		return "dynamodb"
	case SectionS3:
		return "s3"
	case SectionMessaging:
		return "sqs-sns-eventbridge"
	case SectionStepFunctions:
		return "step-functions"
	case SectionRDS:
		return "rds"
	case SectionAPIGateway:
		return "api-gateway"
	case SectionCloudFormation:
		return "cloudformation"
	default:
		return "other-services"
	}
}

// Valid reports whether s belongs to the closed section set.
func (s SectionID) Valid() bool {
	for _, known := range AllSections {
		if s == known {
			return true
		}
	}
	return false
}
