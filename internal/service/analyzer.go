package service

import (
	"strings"
	"unicode"
)

// QueryComplexity buckets questions by how much supporting context they
// need.
type QueryComplexity string

const (
	ComplexitySimple   QueryComplexity = "simple"
	ComplexityModerate QueryComplexity = "moderate"
	ComplexityComplex  QueryComplexity = "complex"
)

// Chunk budgets per complexity class. The budget is a maximum, not a
// guarantee; similarity filtering may leave fewer candidates.
const (
	budgetSimple   = 2
	budgetModerate = 3
	budgetComplex  = 5
)

// QueryClassification is the analyzer's verdict for one question.
type QueryClassification struct {
	Complexity  QueryComplexity
	ChunkBudget int
}

var comparisonMarkers = []string{
	"compare", "comparison", "versus", " vs ", " vs.", "difference between",
	"differences between", "pros and cons", "better than", "worse than",
}

var enumerationMarkers = []string{
	"list", "enumerate", "what are", "which are", "name all", "examples of",
}

// ClassifyQuery classifies a question's complexity to pick a retrieval
// budget. Pure function over token and pattern counts so it is
// independently testable against a fixed table of queries. Short
// factual questions get a tight budget for precision; comparative and
// multi-part questions get breadth.
func ClassifyQuery(query string) QueryClassification {
	clean := strings.TrimSpace(query)
	if clean == "" {
		return QueryClassification{Complexity: ComplexitySimple, ChunkBudget: budgetSimple}
	}
	lower := " " + strings.ToLower(clean) + " "

	score := 0

	tokens := estimateTokens(clean)
	switch {
	case tokens > 24:
		score += 2
	case tokens > 12:
		score++
	}

	for _, marker := range comparisonMarkers {
		if strings.Contains(lower, marker) {
			score += 2
			break
		}
	}

	for _, marker := range enumerationMarkers {
		if strings.Contains(lower, marker) {
			score++
			break
		}
	}

	if strings.Count(clean, "?") > 1 {
		score += 2
	}

	switch entities := countNamedEntities(clean); {
	case entities >= 3:
		score += 2
	case entities == 2:
		score++
	}

	switch {
	case score >= 4:
		return QueryClassification{Complexity: ComplexityComplex, ChunkBudget: budgetComplex}
	case score >= 2:
		return QueryClassification{Complexity: ComplexityModerate, ChunkBudget: budgetModerate}
	default:
		return QueryClassification{Complexity: ComplexitySimple, ChunkBudget: budgetSimple}
	}
}

// countNamedEntities counts capitalized words that do not start a
// sentence. A crude proxy for distinct referenced entities, not NLP.
func countNamedEntities(query string) int {
	words := strings.Fields(query)
	count := 0
	sentenceStart := true
	for _, word := range words {
		trimmed := strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if trimmed == "" {
			continue
		}
		first := []rune(trimmed)[0]
		if unicode.IsUpper(first) && !sentenceStart {
			count++
		}
		last := []rune(word)[len([]rune(word))-1]
		sentenceStart = last == '.' || last == '!' || last == '?'
	}
	return count
}
