package detect

import (
	"fmt"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Cayman   Islands ", "cayman islands"},
		{"CAYMAN ISLANDS (THE)", "cayman islands the"},
		{"Büro für Bänken", "buro fur banken"},
		{"ООО «Рога и Копыта»", "ооо рога и копыта"},
		{"St. Kitts-Nevis", "st kitts nevis"},
		{"", ""},
		{"!!!", ""},
	}

	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMatcherCascade(t *testing.T) {
	m := NewMatcher(DefaultThreshold)

	t.Run("substring containment scores 1.0", func(t *testing.T) {
		matches := m.Match("counterparty", "Bank of Panama", []string{"PANAMA"})
		if len(matches) != 1 {
			t.Fatalf("got %d matches, want 1", len(matches))
		}
		if matches[0].Similarity != 1.0 {
			t.Errorf("similarity = %v, want 1.0", matches[0].Similarity)
		}
		if matches[0].Field != "counterparty" {
			t.Errorf("field = %q, want counterparty", matches[0].Field)
		}
	})

	t.Run("shared token scores 0.95", func(t *testing.T) {
		matches := m.Match("bank_name", "First Bermuda Bank", []string{"BERMUDA ISLANDS"})
		if len(matches) != 1 {
			t.Fatalf("got %d matches, want 1", len(matches))
		}
		if matches[0].Similarity != 0.95 {
			t.Errorf("similarity = %v, want 0.95", matches[0].Similarity)
		}
	})

	t.Run("edit distance catches misspellings", func(t *testing.T) {
		matches := m.Match("country_name", "Panma", []string{"PANAMA"})
		if len(matches) != 1 {
			t.Fatalf("got %d matches, want 1", len(matches))
		}
		if matches[0].Similarity < DefaultThreshold || matches[0].Similarity >= 0.95 {
			t.Errorf("similarity = %v, want in [0.80, 0.95)", matches[0].Similarity)
		}
	})

	t.Run("below threshold is dropped", func(t *testing.T) {
		matches := m.Match("country_name", "Germany", []string{"PANAMA"})
		if len(matches) != 0 {
			t.Errorf("got %d matches, want 0", len(matches))
		}
	})

	t.Run("long free text matches tokenwise", func(t *testing.T) {
		value := "payments via Cayman Islnds Trust for services"
		matches := m.Match("counterparty", value, []string{"CAYMAN ISLANDS (THE)"})
		if len(matches) != 1 {
			t.Fatalf("got %d matches, want 1", len(matches))
		}
		if matches[0].Similarity < DefaultThreshold {
			t.Errorf("similarity = %v, want >= %v", matches[0].Similarity, DefaultThreshold)
		}
	})

	t.Run("empty input yields no matches", func(t *testing.T) {
		if matches := m.Match("city", "   ", []string{"PANAMA"}); matches != nil {
			t.Errorf("got %v, want nil", matches)
		}
	})
}

func TestMatcherCapsResults(t *testing.T) {
	m := NewMatcher(DefaultThreshold)

	candidates := make([]string, 8)
	for i := range candidates {
		candidates[i] = fmt.Sprintf("PANAMA ZONE %d", i)
	}

	matches := m.Match("counterparty", "Panama", candidates)
	if len(matches) != MaxMatches {
		t.Errorf("got %d matches, want %d", len(matches), MaxMatches)
	}
}

func TestMatcherOrdersBySimilarity(t *testing.T) {
	m := NewMatcher(DefaultThreshold)

	matches := m.Match("counterparty", "Panma", []string{"PANAMA", "PANMA"})
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	if matches[0].Jurisdiction != "PANMA" {
		t.Errorf("first match = %s, want PANMA", matches[0].Jurisdiction)
	}
	if matches[0].Similarity < matches[1].Similarity {
		t.Error("matches not sorted by similarity descending")
	}
}
