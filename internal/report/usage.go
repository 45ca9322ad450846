package report

import (
	"encoding/json"

	"github.com/rahul4469/toplane-guide/internal/models"
)

// TokenUsage is the LLM token accounting the service attaches to a result.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Usage returns the extraction token usage from result metadata. ok is false
// when the metadata is absent or not shaped as expected.
func Usage(result *models.AnalysisResult) (usage TokenUsage, ok bool) {
	if result == nil || len(result.Metadata) == 0 {
		return TokenUsage{}, false
	}

	var metadata struct {
		ExtractorTokens *TokenUsage `json:"extractor_tokens"`
	}
	if err := json.Unmarshal(result.Metadata, &metadata); err != nil || metadata.ExtractorTokens == nil {
		return TokenUsage{}, false
	}

	usage = *metadata.ExtractorTokens
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
	}
	return usage, true
}
