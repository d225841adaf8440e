package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kzcompliance/offshore-radar/internal/model"
	"github.com/kzcompliance/offshore-radar/internal/registry"
	"github.com/kzcompliance/offshore-radar/internal/service"
)

// buildSystemPrompt embeds the offshore jurisdiction list, the analysis
// rules and the strict output schema.
func buildSystemPrompt(reg *registry.Registry) string {
	var list strings.Builder
	for _, e := range reg.Entries() {
		fmt.Fprintf(&list, "  - %s - %s\n", e.Code2, e.NameEN)
	}

	return fmt.Sprintf(`You are assessing whether a banking transaction involves an offshore jurisdiction for a Kazakhstani bank.

OFFSHORE JURISDICTIONS LIST:
The following jurisdictions are considered offshore for compliance purposes. Any match should be flagged:

%s
ANALYSIS RULES:
1. The SWIFT/BIC country code (two letters at positions 5-6 of the SWIFT code) is the strongest signal.
2. Treat the precomputed local signals as evidence, not as a verdict.
3. Do not overgeneralize. When evidence is weak or circumstantial, use OFFSHORE_SUSPECT.
4. When evidence is strong and direct, use OFFSHORE_YES.
5. When there is no credible offshore signal, use OFFSHORE_NO.

OUTPUT FORMAT:
You MUST respond with ONLY a valid JSON object matching this exact schema. Start with { and end with }:
{
  "label": "OFFSHORE_YES or OFFSHORE_SUSPECT or OFFSHORE_NO",
  "confidence": 0.0-1.0,
  "explanation": "1-2 sentences in Russian explaining the decision",
  "matched_fields": ["field names that carried the offshore evidence"],
  "sources": ["URLs you actually used, or an empty array"]
}

Be precise, conservative, and always output valid JSON.`, list.String())
}

// citationPrompt instructs the model on source discipline.
const citationPrompt = `CITATION REQUIREMENTS:
- Every URL in 'sources' must be a resource you actually consulted.
- Prefer authoritative sources (bank websites, regulators, SWIFT databases).
- Do not fabricate sources. If you used none, return an empty array.`

// userPayload is the JSON body presented to the model for one transaction.
type userPayload struct {
	Transaction map[string]any `json:"transaction"`
	Signals     map[string]any `json:"local_signals"`
	Enrichment  map[string]any `json:"enrichment,omitempty"`
	Instruction string         `json:"instruction"`
}

// buildUserPrompt serializes the transaction, the preliminary analysis and
// any enrichment context into the user message.
func buildUserPrompt(txn model.Transaction, analysis model.PreliminaryAnalysis, enrichment *service.EnrichmentContext) (string, error) {
	transaction := map[string]any{
		"id":              txn.ID,
		"direction":       string(txn.Direction),
		"amount_kzt":      txn.Amount,
		"counterparty":    txn.Counterparty,
		"bank_name":       txn.BankName,
		"bank_identifier": txn.BankIdentifier,
		"country_code":    txn.CountryCode,
		"country_name":    txn.CountryName,
		"city":            txn.City,
	}
	for k, v := range txn.Extra {
		if _, exists := transaction[k]; !exists {
			transaction[k] = v
		}
	}

	matches := make([]map[string]any, 0, len(analysis.Matches))
	for _, m := range analysis.Matches {
		matches = append(matches, map[string]any{
			"field":        m.Field,
			"jurisdiction": m.Jurisdiction,
			"similarity":   m.Similarity,
		})
	}
	signals := map[string]any{
		"matches":        matches,
		"matched_fields": analysis.MatchedFields,
		"confidence":     analysis.Confidence,
		"scenario":       string(analysis.Scenario),
	}
	if analysis.Swift != nil {
		signals["swift_country_code"] = analysis.Swift.Code
		signals["swift_country_name"] = analysis.Swift.Name
		signals["is_offshore_by_swift"] = analysis.Swift.IsOffshore
	}

	payload := userPayload{
		Transaction: transaction,
		Signals:     signals,
		Instruction: "Analyze this transaction for offshore jurisdiction involvement. Return valid JSON only, matching the schema exactly.",
	}
	if enrichment != nil {
		geocode := make([]map[string]string, 0, len(enrichment.Geocode))
		for _, g := range enrichment.Geocode {
			geocode = append(geocode, map[string]string{
				"display_name": g.DisplayName,
				"lat":          g.Lat,
				"lon":          g.Lon,
			})
		}
		payload.Enrichment = map[string]any{
			"geocoding": geocode,
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal user prompt: %w", err)
	}
	return string(body), nil
}
