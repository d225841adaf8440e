package main

import (
	"errors"
	"log/slog"

	"github.com/kzcompliance/offshore-radar/internal/common"
	"github.com/kzcompliance/offshore-radar/internal/config"
	"github.com/kzcompliance/offshore-radar/internal/llm"
	"github.com/kzcompliance/offshore-radar/internal/registry"
	"github.com/kzcompliance/offshore-radar/internal/service"
)

// createClassifier builds the LLM classifier from configuration. A missing
// API key is not fatal: the caller gets a nil classifier and the engine
// degrades to the rule-based fallback.
func createClassifier(reg *registry.Registry, logger *slog.Logger) (service.Classifier, error) {
	cfg := config.LoadLLMConfig()

	classifier, err := llm.NewClassifier(cfg, reg, logger)
	if err != nil {
		if errors.Is(err, common.ErrMissingAPIKey) {
			logger.Warn("no LLM API key configured, classification will use the rule-based fallback")
			return nil, nil
		}
		return nil, err
	}
	return classifier, nil
}
