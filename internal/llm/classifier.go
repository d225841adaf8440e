package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kzcompliance/offshore-radar/internal/common"
	"github.com/kzcompliance/offshore-radar/internal/model"
	"github.com/kzcompliance/offshore-radar/internal/registry"
	"github.com/kzcompliance/offshore-radar/internal/service"
)

// Config holds configuration for the LLM classifier.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	MaxRetries  int
	RetryDelay  time.Duration
	CacheTTL    time.Duration
	RateLimit   int
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// Classifier implements service.Classifier using an LLM API. It owns the
// prompt construction, retry policy, rate limiter and result cache.
type Classifier struct {
	client       Client
	cache        *resultCache
	rateLimiter  *rateLimiter
	logger       *slog.Logger
	now          func() time.Time
	systemPrompt string
	retryOpts    service.RetryOptions
}

// NewClassifier creates a new LLM-based classifier over the given registry.
func NewClassifier(cfg Config, reg *registry.Registry, logger *slog.Logger) (*Classifier, error) {
	var client Client
	var err error

	switch strings.ToLower(cfg.Provider) {
	case "", "openai":
		client, err = newOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	retryOpts := service.RetryOptions{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 3
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = time.Second
	}

	return &Classifier{
		client:       client,
		cache:        newResultCache(cfg.CacheTTL),
		rateLimiter:  newRateLimiter(cfg.RateLimit),
		logger:       logger,
		now:          time.Now,
		systemPrompt: buildSystemPrompt(reg) + "\n\n" + citationPrompt,
		retryOpts:    retryOpts,
	}, nil
}

// Classify produces a classification for one transaction. Transient API
// failures are retried with backoff; permanent ones fail immediately so the
// engine can fall back without burning attempts.
func (c *Classifier) Classify(ctx context.Context, txn model.Transaction, analysis model.PreliminaryAnalysis, enrichment *service.EnrichmentContext) (model.ClassificationResult, error) {
	hash := txn.GenerateHash()
	if result, found := c.cache.get(hash); found {
		c.logger.Debug("cache hit for transaction",
			"transaction_id", txn.ID,
			"counterparty", txn.Counterparty)
		return result, nil
	}

	if err := c.rateLimiter.wait(ctx); err != nil {
		return model.ClassificationResult{}, fmt.Errorf("rate limit error: %w", err)
	}

	userPrompt, err := buildUserPrompt(txn, analysis, enrichment)
	if err != nil {
		return model.ClassificationResult{}, err
	}

	var response ClassificationResponse
	err = common.WithRetry(ctx, func() error {
		c.logger.Debug("attempting LLM classification", "transaction_id", txn.ID)

		resp, classifyErr := c.client.Classify(ctx, c.systemPrompt, userPrompt)
		if classifyErr != nil {
			c.logger.Warn("LLM classification attempt failed",
				"error", classifyErr,
				"transaction_id", txn.ID)
			return &common.RetryableError{
				Err:       classifyErr,
				Retryable: common.IsRetryable(classifyErr),
			}
		}

		response = resp
		return nil
	}, c.retryOpts)
	if err != nil {
		return model.ClassificationResult{}, fmt.Errorf("%w: %v", common.ErrClassificationFailed, err)
	}

	result := model.ClassificationResult{
		ClassifiedAt:  c.now(),
		Label:         model.Label(response.Label),
		Source:        model.SourceClassifier,
		Explanation:   response.Explanation,
		MatchedFields: response.MatchedFields,
		Sources:       response.Sources,
		Scenario:      analysis.Scenario,
		Confidence:    response.Confidence,
	}
	c.cache.set(hash, result)

	c.logger.Info("transaction classified",
		"transaction_id", txn.ID,
		"label", result.Label,
		"confidence", result.Confidence)

	return result, nil
}

// Close stops background goroutines and cleans up resources.
func (c *Classifier) Close() error {
	if c.cache != nil {
		c.cache.Close()
	}
	if c.rateLimiter != nil {
		c.rateLimiter.Close()
	}
	return nil
}
