// Package engine implements the classification orchestrator. It sequences
// the deterministic analysis, the optional enrichment call and the external
// classifier, and guarantees exactly one result per transaction no matter
// what fails underneath.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kzcompliance/offshore-radar/internal/detect"
	"github.com/kzcompliance/offshore-radar/internal/model"
	"github.com/kzcompliance/offshore-radar/internal/service"
)

// Config holds configuration options for the engine.
type Config struct {
	Workers              int
	EnrichmentThreshold  float64
	FallbackYesAbove     float64
	FallbackSuspectAbove float64
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Workers:              5,
		EnrichmentThreshold:  0.2,
		FallbackYesAbove:     0.7,
		FallbackSuspectAbove: 0.3,
	}
}

// Engine orchestrates the analysis and classification of transactions.
// A nil classifier or enricher disables that collaborator; the engine then
// degrades to the rule-based fallback.
type Engine struct {
	analyzer   *detect.Analyzer
	classifier service.Classifier
	enricher   service.Enricher
	logger     *slog.Logger
	now        func() time.Time
	config     Config
}

// New creates an engine with default configuration.
func New(analyzer *detect.Analyzer, classifier service.Classifier, enricher service.Enricher, logger *slog.Logger) *Engine {
	return NewWithConfig(analyzer, classifier, enricher, logger, DefaultConfig())
}

// NewWithConfig creates an engine with custom configuration.
func NewWithConfig(analyzer *detect.Analyzer, classifier service.Classifier, enricher service.Enricher, logger *slog.Logger, config Config) *Engine {
	if config.Workers <= 0 {
		config.Workers = DefaultConfig().Workers
	}
	return &Engine{
		analyzer:   analyzer,
		classifier: classifier,
		enricher:   enricher,
		logger:     logger,
		now:        time.Now,
		config:     config,
	}
}

// Classify runs the full pipeline for one transaction. It never returns an
// error: every failure mode degrades to the fallback rule or, for
// unexpected ones, to an ERROR-labeled result.
func (e *Engine) Classify(ctx context.Context, txn model.Transaction) (out model.ClassifiedTransaction) {
	out = model.ClassifiedTransaction{Transaction: txn}

	// Installed before the analysis stage runs: a panic anywhere in the
	// pipeline, deterministic signals included, must become an ERROR result.
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("panic during classification",
				"transaction_id", txn.ID,
				"panic", r)
			out.Result = e.errorResult(out.Analysis, fmt.Errorf("panic: %v", r))
		}
	}()

	analysis := e.analyzer.Analyze(txn)
	out.Analysis = analysis

	enrichment := e.enrich(ctx, txn, analysis)

	if e.classifier == nil {
		e.logger.Debug("classifier disabled, using fallback", "transaction_id", txn.ID)
		out.Result = e.fallbackResult(analysis)
		return out
	}

	result, err := e.classifier.Classify(ctx, txn, analysis, enrichment)
	if err != nil {
		// Context cancellation is the caller's decision, not a classifier
		// verdict; surface it as an explicit error result.
		if ctx.Err() != nil {
			out.Result = e.errorResult(analysis, ctx.Err())
			return out
		}
		e.logger.Warn("classifier unavailable, using fallback",
			"transaction_id", txn.ID,
			"error", err)
		out.Result = e.fallbackResult(analysis)
		return out
	}

	result.Scenario = analysis.Scenario
	if len(result.MatchedFields) == 0 {
		result.MatchedFields = analysis.MatchedFields
	}
	out.Result = result
	return out
}

// ProcessBatch classifies a batch concurrently with a bounded worker pool.
// Results keep the input order regardless of completion order. onProgress,
// when non-nil, is invoked once per completed transaction.
func (e *Engine) ProcessBatch(ctx context.Context, txns []model.Transaction, onProgress func()) []model.ClassifiedTransaction {
	results := make([]model.ClassifiedTransaction, len(txns))

	sem := make(chan struct{}, e.config.Workers)
	var wg sync.WaitGroup
	var progressMu sync.Mutex

	for i, txn := range txns {
		wg.Add(1)
		go func(idx int, t model.Transaction) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[idx] = e.abortResult(t, ctx.Err())
				return
			}

			results[idx] = e.Classify(ctx, t)

			if onProgress != nil {
				progressMu.Lock()
				onProgress()
				progressMu.Unlock()
			}
		}(i, txn)
	}

	wg.Wait()
	return results
}

// Stats summarizes a batch of results.
func (e *Engine) Stats(results []model.ClassifiedTransaction, duration time.Duration) service.CompletionStats {
	stats := service.CompletionStats{
		TotalTransactions: len(results),
		Duration:          duration,
	}
	for _, r := range results {
		switch r.Result.Source {
		case model.SourceClassifier:
			stats.ByClassifier++
		case model.SourceFallback:
			stats.ByFallback++
		case model.SourceError:
			stats.Errors++
		}
		if r.Result.Label == model.LabelOffshoreYes || r.Result.Label == model.LabelOffshoreSuspect {
			stats.Flagged++
		}
	}
	return stats
}

// enrich calls the enrichment collaborator when the preliminary confidence
// warrants it. Enrichment failures are logged and swallowed.
func (e *Engine) enrich(ctx context.Context, txn model.Transaction, analysis model.PreliminaryAnalysis) *service.EnrichmentContext {
	if e.enricher == nil || analysis.Confidence <= e.config.EnrichmentThreshold {
		return nil
	}

	enrichment, err := e.enricher.Lookup(ctx, txn.Counterparty, txn.BankName, txn.BankIdentifier)
	if err != nil {
		e.logger.Warn("enrichment lookup failed",
			"transaction_id", txn.ID,
			"error", err)
		return nil
	}
	return enrichment
}

// abortResult produces the error result for a transaction whose worker slot
// was never acquired. Analysis still runs so the report keeps the
// deterministic signals, under the same panic containment as Classify.
func (e *Engine) abortResult(txn model.Transaction, cause error) (out model.ClassifiedTransaction) {
	out = model.ClassifiedTransaction{Transaction: txn}
	defer func() {
		if r := recover(); r != nil {
			out.Result = e.errorResult(out.Analysis, fmt.Errorf("panic: %v", r))
		}
	}()
	out.Analysis = e.analyzer.Analyze(txn)
	out.Result = e.errorResult(out.Analysis, cause)
	return out
}

// fallbackResult applies the deterministic rule when the external
// classifier is unavailable or exhausted. The confidence used is the
// preliminary score, never a value from the failed call.
func (e *Engine) fallbackResult(analysis model.PreliminaryAnalysis) model.ClassificationResult {
	var label model.Label
	switch {
	case analysis.Confidence > e.config.FallbackYesAbove:
		label = model.LabelOffshoreYes
	case analysis.Confidence > e.config.FallbackSuspectAbove:
		label = model.LabelOffshoreSuspect
	default:
		label = model.LabelOffshoreNo
	}

	return model.ClassificationResult{
		ClassifiedAt:  e.now(),
		Label:         label,
		Source:        model.SourceFallback,
		Explanation:   "Классификация на основе предварительного анализа (внешний классификатор недоступен).",
		MatchedFields: analysis.MatchedFields,
		Scenario:      analysis.Scenario,
		Confidence:    analysis.Confidence,
	}
}

// errorResult converts an unexpected failure into an ERROR-labeled result.
func (e *Engine) errorResult(analysis model.PreliminaryAnalysis, cause error) model.ClassificationResult {
	return model.ClassificationResult{
		ClassifiedAt:  e.now(),
		Label:         model.LabelError,
		Source:        model.SourceError,
		Explanation:   fmt.Sprintf("Ошибка обработки: %v", cause),
		MatchedFields: analysis.MatchedFields,
		Scenario:      analysis.Scenario,
		Confidence:    0.0,
		IsError:       true,
	}
}
