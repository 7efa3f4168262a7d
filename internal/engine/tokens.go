package engine

// EstimateTokens approximates the token count of text. A rough ratio of one
// token per four characters is close enough for budgeting decisions; it is
// never used for correctness-critical logic.
func EstimateTokens(text string) int {
	return len(text) / 4
}
