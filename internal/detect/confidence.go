package detect

import (
	"github.com/kzcompliance/offshore-radar/internal/model"
)

// Aggregation weights. Empirically chosen in the original scoring model;
// tunable via configuration, not invariants.
const (
	weightDictionaryHit = 0.30
	weightSwiftOffshore = 0.20
	weightMatchedFields = 0.30
	weightMultipleHits  = 0.05
	weightManyFields    = 0.05
	weightAvgSimilarity = 0.10
	multipleHitsMin     = 1
	manyFieldsMin       = 2
)

// Canonical field names used by the weight tables and match signals.
const (
	FieldCounterparty = "counterparty"
	FieldBankName     = "bank_name"
	FieldCountryCode  = "country_code"
	FieldCountryName  = "country_name"
	FieldCity         = "city"
)

// FieldWeights maps a field name to its contribution weight.
type FieldWeights map[string]float64

// DefaultIncomingWeights weights payer-side fields for incoming transfers.
func DefaultIncomingWeights() FieldWeights {
	return FieldWeights{
		FieldCounterparty: 0.4,
		FieldBankName:     0.3,
		FieldCountryCode:  0.3,
		FieldCountryName:  0.3,
		FieldCity:         0.2,
	}
}

// DefaultOutgoingWeights weights beneficiary-side fields for outgoing
// transfers. The beneficiary city is a weaker signal than the payer bank.
func DefaultOutgoingWeights() FieldWeights {
	return FieldWeights{
		FieldCounterparty: 0.35,
		FieldBankName:     0.3,
		FieldCountryCode:  0.3,
		FieldCountryName:  0.3,
		FieldCity:         0.15,
	}
}

// WeightsFor selects the weight table for a direction.
func WeightsFor(direction model.Direction) FieldWeights {
	if direction == model.DirectionIncoming {
		return DefaultIncomingWeights()
	}
	return DefaultOutgoingWeights()
}

// Signals is the input to the confidence aggregation.
type Signals struct {
	Weights            FieldWeights
	Matches            []model.MatchSignal
	MatchedFields      []string
	DictionaryHitCount int
	SwiftIsOffshore    bool
}

// Aggregate combines the deterministic signals into a confidence score in
// [0,1]. Identical inputs always produce the identical score.
func Aggregate(s Signals) float64 {
	confidence := 0.0

	if s.DictionaryHitCount > 0 {
		confidence += weightDictionaryHit
	}
	if s.SwiftIsOffshore {
		confidence += weightSwiftOffshore
	}

	fieldScore := 0.0
	for _, field := range s.MatchedFields {
		fieldScore += s.Weights[field]
	}
	if fieldScore > 1.0 {
		fieldScore = 1.0
	}
	confidence += fieldScore * weightMatchedFields

	if s.DictionaryHitCount > multipleHitsMin {
		confidence += weightMultipleHits
	}
	if len(s.MatchedFields) > manyFieldsMin {
		confidence += weightManyFields
	}

	if len(s.Matches) > 0 {
		total := 0.0
		for _, m := range s.Matches {
			total += m.Similarity
		}
		confidence += (total / float64(len(s.Matches))) * weightAvgSimilarity
	}

	if confidence > 1.0 {
		confidence = 1.0
	}
	if confidence < 0.0 {
		confidence = 0.0
	}
	return confidence
}
