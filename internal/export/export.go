// Package export writes classified transactions back out as CSV reports.
// The report reproduces the original statement columns and appends a
// "Результат" column holding the human-readable verdict.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/kzcompliance/offshore-radar/internal/model"
)

// ResultColumn is the header of the appended verdict column.
const ResultColumn = "Результат"

// FormatResult renders a classification result as the single-cell verdict
// string used in reports.
func FormatResult(r model.ClassificationResult, analysis model.PreliminaryAnalysis) string {
	labelRU, ok := model.RussianLabels[r.Label]
	if !ok {
		labelRU = string(r.Label)
	}

	confPct := int(r.Confidence * 100)

	var signals []string
	if analysis.Swift != nil && analysis.Swift.IsOffshore && analysis.Swift.Name != "" {
		signals = append(signals, "SWIFT:"+analysis.Swift.Name)
	}
	for _, m := range analysis.Matches {
		switch m.Field {
		case "country_name":
			signals = append(signals, "Страна:"+m.Jurisdiction)
		case "city":
			signals = append(signals, "Город:"+m.Jurisdiction)
		}
	}
	signalsStr := "нет"
	if len(signals) > 0 {
		signalsStr = strings.Join(signals, ", ")
	}

	sourcesStr := "нет"
	if len(r.Sources) > 0 {
		sourcesStr = strings.Join(r.Sources, "; ")
	}

	result := fmt.Sprintf("Итог: %s | Уверенность: %d%% | Объяснение: %s | Совпадения: %s | Источники: %s",
		labelRU, confPct, r.Explanation, signalsStr, sourcesStr)

	if r.IsError {
		result += fmt.Sprintf(" | ОШИБКА: %s", r.Explanation)
	}
	return result
}

// CSVWriter writes classified transactions as a CSV report.
type CSVWriter struct {
	w io.Writer
}

// NewCSVWriter creates a report writer targeting w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: w}
}

// WriteFile writes the report to path, creating or truncating the file.
func WriteFile(path string, results []model.ClassifiedTransaction) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	defer f.Close()

	if err := NewCSVWriter(f).Write(results); err != nil {
		return fmt.Errorf("writing report %s: %w", path, err)
	}
	return f.Close()
}

// Write emits the report. The column set is the union of the modeled
// fields, every Extra column seen in the batch and the verdict column.
func (c *CSVWriter) Write(results []model.ClassifiedTransaction) error {
	header := buildHeader(results)

	w := csv.NewWriter(c.w)
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range results {
		row := make([]string, 0, len(header))
		for _, col := range header {
			row = append(row, cellValue(r, col))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// Modeled report columns, in output order.
var modeledColumns = []string{
	"№п/п",
	"Контрагент",
	"Банк",
	"SWIFT",
	"Код страны",
	"Страна",
	"Город",
	"Сумма в тенге",
	"Направление",
}

func buildHeader(results []model.ClassifiedTransaction) []string {
	seen := make(map[string]bool)
	var extras []string
	for _, r := range results {
		for name := range r.Transaction.Extra {
			if !seen[name] {
				seen[name] = true
				extras = append(extras, name)
			}
		}
	}
	sort.Strings(extras)

	header := make([]string, 0, len(modeledColumns)+len(extras)+1)
	header = append(header, modeledColumns...)
	header = append(header, extras...)
	header = append(header, ResultColumn)
	return header
}

func cellValue(r model.ClassifiedTransaction, col string) string {
	txn := r.Transaction
	switch col {
	case "№п/п":
		return strings.TrimPrefix(strings.TrimPrefix(txn.ID, string(txn.Direction)), "-")
	case "Контрагент":
		return txn.Counterparty
	case "Банк":
		return txn.BankName
	case "SWIFT":
		return txn.BankIdentifier
	case "Код страны":
		return txn.CountryCode
	case "Страна":
		return txn.CountryName
	case "Город":
		return txn.City
	case "Сумма в тенге":
		return formatAmount(txn.Amount)
	case "Направление":
		return string(txn.Direction)
	case ResultColumn:
		return FormatResult(r.Result, r.Analysis)
	default:
		return txn.Extra[col]
	}
}

func formatAmount(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}
