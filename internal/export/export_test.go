package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kzcompliance/offshore-radar/internal/model"
)

func TestFormatResult(t *testing.T) {
	result := model.ClassificationResult{
		Label:       model.LabelOffshoreYes,
		Source:      model.SourceClassifier,
		Explanation: "Контрагент зарегистрирован на Каймановых островах",
		Sources:     []string{"https://example.com/ky", "https://example.com/registry"},
		Confidence:  0.92,
	}
	analysis := model.PreliminaryAnalysis{
		Swift: &model.CountrySignal{Code: "KY", Name: "CAYMAN ISLANDS (THE)", IsOffshore: true},
		Matches: []model.MatchSignal{
			{Field: "country_name", Jurisdiction: "CAYMAN ISLANDS (THE)", Similarity: 1.0},
			{Field: "city", Jurisdiction: "CAYMAN ISLANDS (THE)", Similarity: 0.95},
		},
	}

	got := FormatResult(result, analysis)

	assert.True(t, strings.HasPrefix(got, "Итог: ОФШОР: ДА | "), got)
	assert.Contains(t, got, "Уверенность: 92%")
	assert.Contains(t, got, "Объяснение: Контрагент зарегистрирован на Каймановых островах")
	assert.Contains(t, got, "Совпадения: SWIFT:CAYMAN ISLANDS (THE), Страна:CAYMAN ISLANDS (THE), Город:CAYMAN ISLANDS (THE)")
	assert.Contains(t, got, "Источники: https://example.com/ky; https://example.com/registry")
	assert.NotContains(t, got, "ОШИБКА")
}

func TestFormatResultNoSignals(t *testing.T) {
	result := model.ClassificationResult{
		Label:       model.LabelOffshoreNo,
		Source:      model.SourceFallback,
		Explanation: "Признаков не обнаружено",
		Confidence:  0.05,
	}

	got := FormatResult(result, model.PreliminaryAnalysis{})

	assert.Contains(t, got, "Итог: ОФШОР: НЕТ")
	assert.Contains(t, got, "Уверенность: 5%")
	assert.Contains(t, got, "Совпадения: нет")
	assert.Contains(t, got, "Источники: нет")
}

func TestFormatResultError(t *testing.T) {
	result := model.ClassificationResult{
		Label:       model.LabelError,
		Source:      model.SourceError,
		Explanation: "Ошибка обработки: panic: boom",
		IsError:     true,
	}

	got := FormatResult(result, model.PreliminaryAnalysis{})

	assert.Contains(t, got, "Итог: ОШИБКА")
	assert.Contains(t, got, "| ОШИБКА: Ошибка обработки: panic: boom")
}

func TestCSVWriterRoundTripsExtraColumns(t *testing.T) {
	results := []model.ClassifiedTransaction{
		{
			Transaction: model.Transaction{
				ID:             "incoming-1",
				Counterparty:   "Cayman Trust Ltd",
				BankName:       "First Caribbean Bank",
				BankIdentifier: "ABCAKYXX",
				CountryCode:    "KY",
				CountryName:    "Cayman Islands",
				City:           "George Town",
				Direction:      model.DirectionIncoming,
				Amount:         7_500_000,
				Extra: map[string]string{
					"Назначение платежа": "Оплата услуг",
				},
			},
			Result: model.ClassificationResult{
				Label:       model.LabelOffshoreYes,
				Source:      model.SourceClassifier,
				Explanation: "совпадение по реестру",
				Confidence:  0.9,
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, NewCSVWriter(&buf).Write(results))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	header := records[0]
	assert.Equal(t, "Назначение платежа", header[len(header)-2])
	assert.Equal(t, ResultColumn, header[len(header)-1])

	row := records[1]
	assert.Equal(t, "1", row[0])
	assert.Equal(t, "Cayman Trust Ltd", row[1])
	assert.Equal(t, "7500000", row[7])
	assert.Equal(t, "Оплата услуг", row[len(row)-2])
	assert.Contains(t, row[len(row)-1], "Итог: ОФШОР: ДА")
}
