// Package importer reads bank transaction statements from CSV files. The
// statements arrive with a variable number of preamble rows above the real
// header, so parsing probes for the header row instead of assuming a fixed
// offset. Columns that the pipeline does not model are preserved verbatim
// and round-tripped to the export.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/kzcompliance/offshore-radar/internal/common"
	"github.com/kzcompliance/offshore-radar/internal/model"
)

// DefaultThresholdKZT is the minimum transaction amount retained for
// analysis. Smaller transfers are excluded from monitoring.
const DefaultThresholdKZT = 5_000_000

// Known statement column headers.
const (
	colAmountKZT        = "Сумма в тенге"
	colAmount           = "Сумма"
	colRowNumber        = "№п/п"
	colCountryCode      = "Код страны"
	colCountryName      = "Страна получателя"
	colCity             = "Город"
	colPayerName        = "Наименование плательщика"
	colPayerBank        = "Банк плательщика"
	colPayerSWIFT       = "SWIFT Банка плательщика"
	colBeneficiaryName  = "Наименование получателя"
	colBeneficiaryBank  = "Банк получателя"
	colBeneficiarySWIFT = "SWIFT Банка получателя"
)

// layout maps statement columns to transaction fields for one direction.
type layout struct {
	counterparty string
	bankName     string
	swift        string
}

var layouts = map[model.Direction]layout{
	model.DirectionIncoming: {
		counterparty: colPayerName,
		bankName:     colPayerBank,
		swift:        colPayerSWIFT,
	},
	model.DirectionOutgoing: {
		counterparty: colBeneficiaryName,
		bankName:     colBeneficiaryBank,
		swift:        colBeneficiarySWIFT,
	},
}

// Importer parses statement CSV files into transactions.
type Importer struct {
	logger       *slog.Logger
	thresholdKZT float64
}

// Option configures an Importer.
type Option func(*Importer)

// WithThreshold overrides the minimum amount filter. A zero or negative
// value disables filtering.
func WithThreshold(kzt float64) Option {
	return func(i *Importer) {
		i.thresholdKZT = kzt
	}
}

// New creates an importer with the default amount threshold.
func New(logger *slog.Logger, opts ...Option) *Importer {
	imp := &Importer{
		logger:       logger,
		thresholdKZT: DefaultThresholdKZT,
	}
	for _, opt := range opts {
		opt(imp)
	}
	return imp
}

// ImportFile reads one statement file for the given direction.
func (i *Importer) ImportFile(path string, direction model.Direction) ([]model.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening statement file: %w", err)
	}
	defer f.Close()

	txns, err := i.Import(f, direction)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return txns, nil
}

// Import parses statement rows from r. The header row is located by probing
// for a known amount column; rows above it are treated as preamble and
// skipped. Rows below the threshold are filtered out.
func (i *Importer) Import(r io.Reader, direction model.Direction) ([]model.Transaction, error) {
	if !direction.Valid() {
		return nil, fmt.Errorf("%w: direction %q", common.ErrInvalidConfig, direction)
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := findHeader(reader)
	if err != nil {
		return nil, err
	}

	lay := layouts[direction]
	amountCol := slices.Index(header, colAmountKZT)
	if amountCol < 0 {
		amountCol = slices.Index(header, colAmount)
	}

	now := time.Now()
	var txns []model.Transaction
	total := 0

	for rowIdx := 0; ; rowIdx++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", rowIdx, err)
		}
		if isEmptyRow(record) {
			continue
		}
		total++

		row := zip(header, record)
		amount := NormalizeAmount(row[colAmountKZT])
		if amount == 0 {
			amount = NormalizeAmount(row[colAmount])
		}
		if i.thresholdKZT > 0 && amount < i.thresholdKZT {
			continue
		}

		txn := model.Transaction{
			ID:             rowID(row, direction, rowIdx),
			Counterparty:   strings.TrimSpace(row[lay.counterparty]),
			BankName:       strings.TrimSpace(row[lay.bankName]),
			BankIdentifier: strings.TrimSpace(row[lay.swift]),
			CountryCode:    strings.TrimSpace(row[colCountryCode]),
			CountryName:    strings.TrimSpace(row[colCountryName]),
			City:           strings.TrimSpace(row[colCity]),
			Direction:      direction,
			Amount:         amount,
			RowIndex:       rowIdx,
			ProcessedAt:    now,
			Extra:          extraColumns(header, record, lay, amountCol),
		}
		txns = append(txns, txn)
	}

	i.logger.Info("statement imported",
		"direction", direction,
		"total_rows", total,
		"retained", len(txns),
		"threshold_kzt", i.thresholdKZT)

	if total == 0 {
		return nil, common.ErrNoTransactions
	}
	return txns, nil
}

// NormalizeAmount parses an amount string that may use spaces, commas or
// periods as thousands or decimal separators. Returns 0 when the value
// cannot be parsed.
func NormalizeAmount(value string) float64 {
	s := strings.TrimSpace(value)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0
	}

	commas := strings.Count(s, ",")
	periods := strings.Count(s, ".")

	switch {
	case commas > 1 || periods > 1:
		// Repeated separators are thousands separators.
		s = strings.ReplaceAll(s, ",", "")
		s = strings.ReplaceAll(s, ".", "")
	case commas == 1 && periods == 1:
		// The rightmost separator is the decimal point.
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case commas == 1:
		parts := strings.SplitN(s, ",", 2)
		if len(parts[1]) <= 2 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// findHeader reads rows until one contains a known amount column.
func findHeader(reader *csv.Reader) ([]string, error) {
	const maxPreambleRows = 10
	for n := 0; n < maxPreambleRows; n++ {
		record, err := reader.Read()
		if err == io.EOF {
			return nil, common.ErrUnknownLayout
		}
		if err != nil {
			return nil, fmt.Errorf("probing for header: %w", err)
		}
		for _, cell := range record {
			c := strings.TrimSpace(cell)
			if c == colAmountKZT || c == colAmount {
				header := make([]string, len(record))
				for j, h := range record {
					header[j] = strings.TrimSpace(h)
				}
				return header, nil
			}
		}
	}
	return nil, common.ErrUnknownLayout
}

// rowID derives a stable identifier for a row, preferring the statement's
// own row number column.
func rowID(row map[string]string, direction model.Direction, rowIdx int) string {
	if n := strings.TrimSpace(row[colRowNumber]); n != "" {
		return fmt.Sprintf("%s-%s", direction, n)
	}
	return fmt.Sprintf("%s-%d", direction, rowIdx+1)
}

// extraColumns collects every column not consumed by the transaction model
// so the export can reproduce the original statement.
func extraColumns(header, record []string, lay layout, amountCol int) map[string]string {
	modeled := map[string]bool{
		lay.counterparty: true,
		lay.bankName:     true,
		lay.swift:        true,
		colCountryCode:   true,
		colCountryName:   true,
		colCity:          true,
		colRowNumber:     true,
	}
	if amountCol >= 0 && amountCol < len(header) {
		modeled[header[amountCol]] = true
	}

	extra := make(map[string]string)
	for j, name := range header {
		if name == "" || modeled[name] || j >= len(record) {
			continue
		}
		extra[name] = record[j]
	}
	if len(extra) == 0 {
		return nil
	}
	return extra
}

func zip(header, record []string) map[string]string {
	row := make(map[string]string, len(header))
	for j, name := range header {
		if name == "" || j >= len(record) {
			continue
		}
		row[name] = record[j]
	}
	return row
}

func isEmptyRow(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
