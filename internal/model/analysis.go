package model

// CountrySignal is the result of extracting a country from a bank identifier.
type CountrySignal struct {
	Code       string
	Name       string // empty when the code is not in the offshore registry
	IsOffshore bool
}

// MatchSignal is a single fuzzy match of a transaction field against the
// jurisdiction registry.
type MatchSignal struct {
	Field        string  // source field name (e.g. "counterparty", "city")
	Jurisdiction string  // matched registry name, as listed
	Similarity   float64 // in [0,1]
}

// Scenario is a coarse categorical tag describing the direction-of-flow
// context of a flagged transaction.
type Scenario string

// Scenario tags.
const (
	ScenarioNone             Scenario = "NONE"
	ScenarioIncomingOffshore Scenario = "INCOMING_OFFSHORE"
	ScenarioOutgoingOffshore Scenario = "OUTGOING_OFFSHORE"
	ScenarioGenericOffshore  Scenario = "GENERIC_OFFSHORE"
)

// Number maps a scenario tag to the regulatory scenario number used in
// operator-facing output. NONE has no number and maps to 0.
func (s Scenario) Number() int {
	switch s {
	case ScenarioIncomingOffshore:
		return 1
	case ScenarioOutgoingOffshore:
		return 2
	case ScenarioGenericOffshore:
		return 3
	default:
		return 0
	}
}

// PreliminaryAnalysis aggregates all deterministic signals computed for a
// transaction before the external classifier is consulted. It is computed
// once and passed by value.
type PreliminaryAnalysis struct {
	Swift         *CountrySignal // nil when the identifier yields no signal
	Matches       []MatchSignal  // ordered by similarity descending, capped
	MatchedFields []string
	Scenario      Scenario
	Confidence    float64 // in [0,1]
}

// HasDictionaryHit reports whether any fuzzy match cleared the threshold.
func (p PreliminaryAnalysis) HasDictionaryHit() bool {
	return len(p.Matches) > 0
}

// SwiftIsOffshore reports whether the bank identifier resolved to an
// offshore jurisdiction.
func (p PreliminaryAnalysis) SwiftIsOffshore() bool {
	return p.Swift != nil && p.Swift.IsOffshore
}
