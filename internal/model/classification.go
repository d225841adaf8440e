package model

import "time"

// Label is the final risk verdict for a transaction.
type Label string

// Classification labels.
const (
	LabelOffshoreYes     Label = "OFFSHORE_YES"
	LabelOffshoreSuspect Label = "OFFSHORE_SUSPECT"
	LabelOffshoreNo      Label = "OFFSHORE_NO"
	LabelError           Label = "ERROR"
)

// Valid reports whether l is a label the external classifier may return.
// ERROR is produced only by the orchestrator, never accepted from outside.
func (l Label) Valid() bool {
	switch l {
	case LabelOffshoreYes, LabelOffshoreSuspect, LabelOffshoreNo:
		return true
	default:
		return false
	}
}

// RussianLabels maps taxonomy labels to the operator-facing Russian strings
// used in exported reports.
var RussianLabels = map[Label]string{
	LabelOffshoreYes:     "ОФШОР: ДА",
	LabelOffshoreSuspect: "ОФШОР: ПОДОЗРЕНИЕ",
	LabelOffshoreNo:      "ОФШОР: НЕТ",
	LabelError:           "ОШИБКА",
}

// ResultSource records which branch of the orchestrator produced a result.
type ResultSource string

// Result sources.
const (
	SourceClassifier ResultSource = "classifier"
	SourceFallback   ResultSource = "fallback"
	SourceError      ResultSource = "error"
)

// ClassificationResult is the final output attached to a transaction.
// The pipeline produces exactly one per transaction, always.
type ClassificationResult struct {
	ClassifiedAt  time.Time
	Label         Label
	Source        ResultSource
	Explanation   string // short free text in the operator's working language
	MatchedFields []string
	Sources       []string // citation URLs, possibly empty
	Scenario      Scenario
	Confidence    float64
	IsError       bool
}

// ClassifiedTransaction pairs a transaction with its preliminary analysis
// and final result for export.
type ClassifiedTransaction struct {
	Transaction Transaction
	Analysis    PreliminaryAnalysis
	Result      ClassificationResult
}
