package detect

import (
	"math"
	"testing"

	"github.com/kzcompliance/offshore-radar/internal/model"
)

func TestAggregate(t *testing.T) {
	weights := DefaultIncomingWeights()

	tests := []struct {
		name    string
		signals Signals
		want    float64
	}{
		{
			name:    "no signals",
			signals: Signals{Weights: weights},
			want:    0.0,
		},
		{
			name: "swift only",
			signals: Signals{
				Weights:         weights,
				SwiftIsOffshore: true,
			},
			want: 0.20,
		},
		{
			name: "single dictionary hit on counterparty",
			signals: Signals{
				Weights: weights,
				Matches: []model.MatchSignal{
					{Field: FieldCounterparty, Jurisdiction: "PANAMA", Similarity: 1.0},
				},
				MatchedFields:      []string{FieldCounterparty},
				DictionaryHitCount: 1,
			},
			// dict 0.30 + fields 0.4*0.30 + avg 1.0*0.10
			want: 0.52,
		},
		{
			name: "everything fires",
			signals: Signals{
				Weights: weights,
				Matches: []model.MatchSignal{
					{Field: FieldCounterparty, Similarity: 1.0},
					{Field: FieldBankName, Similarity: 1.0},
					{Field: FieldCountryCode, Similarity: 1.0},
					{Field: FieldCountryName, Similarity: 1.0},
				},
				MatchedFields: []string{
					FieldCounterparty, FieldBankName, FieldCountryCode, FieldCountryName,
				},
				DictionaryHitCount: 4,
				SwiftIsOffshore:    true,
			},
			// dict 0.30 + swift 0.20 + fields capped at 1.0 * 0.30 +
			// multi 0.05 + many 0.05 + avg 0.10
			want: 1.0,
		},
		{
			name: "field score caps at one before scaling",
			signals: Signals{
				Weights: FieldWeights{FieldCounterparty: 2.5},
				Matches: []model.MatchSignal{
					{Field: FieldCounterparty, Similarity: 0.8},
				},
				MatchedFields:      []string{FieldCounterparty},
				DictionaryHitCount: 1,
			},
			// dict 0.30 + fields min(2.5,1)*0.30 + avg 0.8*0.10
			want: 0.68,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate(tt.signals)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Aggregate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAggregateBounds(t *testing.T) {
	// Pile on every bonus with inflated weights; the result must stay in [0,1].
	signals := Signals{
		Weights: FieldWeights{
			FieldCounterparty: 5,
			FieldBankName:     5,
			FieldCountryCode:  5,
			FieldCountryName:  5,
			FieldCity:         5,
		},
		Matches: []model.MatchSignal{
			{Field: FieldCounterparty, Similarity: 1.0},
			{Field: FieldBankName, Similarity: 1.0},
			{Field: FieldCountryCode, Similarity: 1.0},
			{Field: FieldCountryName, Similarity: 1.0},
			{Field: FieldCity, Similarity: 1.0},
		},
		MatchedFields: []string{
			FieldCounterparty, FieldBankName, FieldCountryCode, FieldCountryName, FieldCity,
		},
		DictionaryHitCount: 5,
		SwiftIsOffshore:    true,
	}

	got := Aggregate(signals)
	if got < 0 || got > 1 {
		t.Errorf("Aggregate() = %v, want within [0,1]", got)
	}
}

func TestAggregateDeterministic(t *testing.T) {
	signals := Signals{
		Weights: DefaultOutgoingWeights(),
		Matches: []model.MatchSignal{
			{Field: FieldCountryName, Similarity: 0.83},
		},
		MatchedFields:      []string{FieldCountryName},
		DictionaryHitCount: 1,
		SwiftIsOffshore:    true,
	}

	first := Aggregate(signals)
	for i := 0; i < 100; i++ {
		if got := Aggregate(signals); got != first {
			t.Fatalf("Aggregate() not deterministic: %v != %v", got, first)
		}
	}
}
