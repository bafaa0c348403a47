package service

import "strings"

// estimateTokens approximates the token count of text for budget
// accounting. Whitespace-delimited words scaled by 4/3, which tracks
// OpenAI tokenizers closely enough for chunk sizing. The same estimator
// is used at chunking time and at context-budget time so the two never
// drift apart.
func estimateTokens(text string) int {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	return (words*4 + 2) / 3
}
