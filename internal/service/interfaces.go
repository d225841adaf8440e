// Package service defines the interfaces shared between the engine and its
// collaborators.
package service

import (
	"context"
	"time"

	"github.com/kzcompliance/offshore-radar/internal/model"
)

// Classifier is the external classification collaborator. Implementations
// must return either a validated result or an error; the engine decides on
// retry versus fallback by inspecting the error.
type Classifier interface {
	Classify(ctx context.Context, txn model.Transaction, analysis model.PreliminaryAnalysis, enrichment *EnrichmentContext) (model.ClassificationResult, error)
	Close() error
}

// Enricher is the enrichment collaborator (geocoding / search). Failures are
// non-fatal: callers treat a nil context as "no enrichment available".
type Enricher interface {
	Lookup(ctx context.Context, counterpartyName, bankName, bankIdentifier string) (*EnrichmentContext, error)
}

// ReportWriter consumes classified transactions and produces an operator
// report (CSV file, Google Sheets document).
type ReportWriter interface {
	Write(ctx context.Context, classified []model.ClassifiedTransaction) error
}

// GeocodeResult is one geocoding hit for a bank query.
type GeocodeResult struct {
	DisplayName string
	Lat         string
	Lon         string
}

// EnrichmentContext carries supplementary signals gathered for a
// transaction. It augments the classifier prompt but never alters the
// preliminary analysis.
type EnrichmentContext struct {
	Geocode []GeocodeResult
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// CompletionStats shows the results of a processing run.
type CompletionStats struct {
	Duration          time.Duration
	TotalTransactions int
	ByClassifier      int
	ByFallback        int
	Errors            int
	Flagged           int
}
