package detect

import (
	"sort"

	"github.com/kzcompliance/offshore-radar/internal/model"
	"github.com/kzcompliance/offshore-radar/internal/registry"
)

// Analyzer computes the preliminary analysis for a transaction from the
// read-only jurisdiction registry. It holds no per-transaction state.
type Analyzer struct {
	registry        *registry.Registry
	matcher         *Matcher
	incomingWeights FieldWeights
	outgoingWeights FieldWeights
}

// AnalyzerOption customizes an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithThreshold overrides the similarity threshold.
func WithThreshold(threshold float64) AnalyzerOption {
	return func(a *Analyzer) {
		a.matcher = NewMatcher(threshold)
	}
}

// WithWeights overrides the direction-specific field-weight tables.
func WithWeights(incoming, outgoing FieldWeights) AnalyzerOption {
	return func(a *Analyzer) {
		if incoming != nil {
			a.incomingWeights = incoming
		}
		if outgoing != nil {
			a.outgoingWeights = outgoing
		}
	}
}

// NewAnalyzer creates an analyzer over the given registry.
func NewAnalyzer(reg *registry.Registry, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		registry:        reg,
		matcher:         NewMatcher(DefaultThreshold),
		incomingWeights: DefaultIncomingWeights(),
		outgoingWeights: DefaultOutgoingWeights(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// weightsFor returns the weight table for a transaction's direction.
func (a *Analyzer) weightsFor(direction model.Direction) FieldWeights {
	if direction == model.DirectionIncoming {
		return a.incomingWeights
	}
	return a.outgoingWeights
}

// Analyze runs the full deterministic pipeline for one transaction:
// SWIFT extraction, fuzzy matching of each weighted field, confidence
// aggregation and scenario tagging. It is pure and never fails.
func (a *Analyzer) Analyze(txn model.Transaction) model.PreliminaryAnalysis {
	swift := ExtractBankCountry(txn.BankIdentifier, a.registry)

	names := a.registry.Names(registry.LangEN)
	names = append(names, a.registry.Names(registry.LangRU)...)
	codes := a.registry.Codes()

	fields := []struct {
		name       string
		value      string
		candidates []string
	}{
		{FieldCounterparty, txn.Counterparty, names},
		{FieldBankName, txn.BankName, names},
		{FieldCountryCode, txn.CountryCode, codes},
		{FieldCountryName, txn.CountryName, names},
		{FieldCity, txn.City, names},
	}

	var allMatches []model.MatchSignal
	var matchedFields []string
	for _, f := range fields {
		matches := a.matcher.Match(f.name, f.value, f.candidates)
		if len(matches) == 0 {
			continue
		}
		allMatches = append(allMatches, matches...)
		matchedFields = append(matchedFields, f.name)
	}

	hitCount := len(allMatches)

	// Highest similarity first across all fields, capped.
	sort.SliceStable(allMatches, func(i, j int) bool {
		return allMatches[i].Similarity > allMatches[j].Similarity
	})
	if len(allMatches) > MaxMatches {
		allMatches = allMatches[:MaxMatches]
	}

	swiftOffshore := swift != nil && swift.IsOffshore
	confidence := Aggregate(Signals{
		Weights:            a.weightsFor(txn.Direction),
		Matches:            allMatches,
		MatchedFields:      matchedFields,
		DictionaryHitCount: hitCount,
		SwiftIsOffshore:    swiftOffshore,
	})

	return model.PreliminaryAnalysis{
		Swift:         swift,
		Matches:       allMatches,
		MatchedFields: matchedFields,
		Confidence:    confidence,
		Scenario:      ClassifyScenario(txn.Direction, hitCount > 0, swiftOffshore),
	}
}
