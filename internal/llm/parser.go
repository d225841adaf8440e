package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kzcompliance/offshore-radar/internal/common"
	"github.com/kzcompliance/offshore-radar/internal/model"
)

// cleanMarkdownWrapper strips markdown code fences some models wrap around
// JSON responses.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)

	if idx := strings.Index(content, "```json"); idx >= 0 {
		content = content[idx+len("```json"):]
		if end := strings.Index(content, "```"); end >= 0 {
			content = content[:end]
		}
		return strings.TrimSpace(content)
	}

	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		if end := strings.Index(content, "```"); end >= 0 {
			content = content[:end]
		}
		return strings.TrimSpace(content)
	}

	return content
}

// parseClassification extracts and validates the verdict JSON from a raw
// model response. Parse and validation failures are malformed-response
// errors, which the retry policy treats as transient.
func parseClassification(content string) (ClassificationResponse, error) {
	content = cleanMarkdownWrapper(content)
	if content == "" {
		return ClassificationResponse{}, common.ErrEmptyResponse
	}

	var resp struct {
		Label         string   `json:"label"`
		Confidence    float64  `json:"confidence"`
		Explanation   string   `json:"explanation"`
		MatchedFields []string `json:"matched_fields"`
		Sources       []string `json:"sources"`
	}
	if err := json.Unmarshal([]byte(content), &resp); err != nil {
		return ClassificationResponse{}, fmt.Errorf("%w: %v", common.ErrMalformedResponse, err)
	}

	if !model.Label(resp.Label).Valid() {
		return ClassificationResponse{}, fmt.Errorf("%w: unknown label %q", common.ErrMalformedResponse, resp.Label)
	}
	if resp.Confidence < 0 || resp.Confidence > 1 {
		return ClassificationResponse{}, fmt.Errorf("%w: confidence %v out of range", common.ErrMalformedResponse, resp.Confidence)
	}

	sources := make([]string, 0, len(resp.Sources))
	for _, s := range resp.Sources {
		if s = strings.TrimSpace(s); s != "" {
			sources = append(sources, s)
		}
	}

	return ClassificationResponse{
		Label:         resp.Label,
		Confidence:    resp.Confidence,
		Explanation:   resp.Explanation,
		MatchedFields: resp.MatchedFields,
		Sources:       sources,
	}, nil
}
