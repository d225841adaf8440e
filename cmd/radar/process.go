package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kzcompliance/offshore-radar/internal/cli"
	"github.com/kzcompliance/offshore-radar/internal/config"
	"github.com/kzcompliance/offshore-radar/internal/detect"
	"github.com/kzcompliance/offshore-radar/internal/engine"
	"github.com/kzcompliance/offshore-radar/internal/enrich"
	"github.com/kzcompliance/offshore-radar/internal/export"
	"github.com/kzcompliance/offshore-radar/internal/importer"
	"github.com/kzcompliance/offshore-radar/internal/model"
	"github.com/kzcompliance/offshore-radar/internal/registry"
	"github.com/kzcompliance/offshore-radar/internal/service"
	"github.com/kzcompliance/offshore-radar/internal/sheets"
)

func processCmd() *cobra.Command {
	var (
		incomingFile string
		outgoingFile string
		outputDir    string
		threshold    float64
		noLLM        bool
		noEnrich     bool
		toSheets     bool
	)

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Analyze transaction statements for offshore exposure",
		Long: `Parse incoming and outgoing statement CSV files, score each
transaction against the offshore jurisdiction registry, classify it, and
write the results with an appended verdict column.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if incomingFile == "" && outgoingFile == "" {
				return fmt.Errorf("at least one of --incoming or --outgoing is required")
			}

			ctx := cmd.Context()
			logger := slog.Default()

			reg, err := loadRegistry()
			if err != nil {
				return err
			}

			imp := importer.New(logger, importer.WithThreshold(threshold))

			var txns struct {
				incoming []model.Transaction
				outgoing []model.Transaction
			}
			if incomingFile != "" {
				txns.incoming, err = imp.ImportFile(config.ExpandPath(incomingFile), model.DirectionIncoming)
				if err != nil {
					return err
				}
			}
			if outgoingFile != "" {
				txns.outgoing, err = imp.ImportFile(config.ExpandPath(outgoingFile), model.DirectionOutgoing)
				if err != nil {
					return err
				}
			}

			eng, err := buildEngine(reg, logger, noLLM, noEnrich)
			if err != nil {
				return err
			}

			all := make([]model.Transaction, 0, len(txns.incoming)+len(txns.outgoing))
			all = append(all, txns.incoming...)
			all = append(all, txns.outgoing...)

			bar := cli.NewProgressBar(len(all), os.Stderr)
			start := time.Now()
			results := eng.ProcessBatch(ctx, all, func() { _ = bar.Add(1) })
			stats := eng.Stats(results, time.Since(start))

			incomingResults := results[:len(txns.incoming)]
			outgoingResults := results[len(txns.incoming):]

			now := time.Now().Format("2006-01-02T15-04-05")
			if len(incomingResults) > 0 {
				path := filepath.Join(outputDir, fmt.Sprintf("incoming_transactions_processed_%s.csv", now))
				if err := export.WriteFile(path, incomingResults); err != nil {
					return err
				}
				logger.Info("report written", "path", path)
			}
			if len(outgoingResults) > 0 {
				path := filepath.Join(outputDir, fmt.Sprintf("outgoing_transactions_processed_%s.csv", now))
				if err := export.WriteFile(path, outgoingResults); err != nil {
					return err
				}
				logger.Info("report written", "path", path)
			}

			if toSheets {
				if err := uploadToSheets(ctx, results, logger); err != nil {
					return err
				}
			}

			fmt.Fprintln(os.Stdout, cli.RenderSummary(results, stats))
			return nil
		},
	}

	cmd.Flags().StringVar(&incomingFile, "incoming", "", "incoming transactions CSV file")
	cmd.Flags().StringVar(&outgoingFile, "outgoing", "", "outgoing transactions CSV file")
	cmd.Flags().StringVar(&outputDir, "output", ".", "directory for processed reports")
	cmd.Flags().Float64Var(&threshold, "threshold", importer.DefaultThresholdKZT, "minimum transaction amount in KZT")
	cmd.Flags().BoolVar(&noLLM, "no-llm", false, "skip the LLM classifier and use the rule-based fallback")
	cmd.Flags().BoolVar(&noEnrich, "no-enrich", false, "skip geocoding enrichment")
	cmd.Flags().BoolVar(&toSheets, "sheets", false, "also upload the report to Google Sheets")

	return cmd
}

func loadRegistry() (*registry.Registry, error) {
	if path := viper.GetString("registry.path"); path != "" {
		return registry.LoadFile(config.ExpandPath(path))
	}
	return registry.Default()
}

func buildEngine(reg *registry.Registry, logger *slog.Logger, noLLM, noEnrich bool) (*engine.Engine, error) {
	var analyzerOpts []detect.AnalyzerOption
	if t := viper.GetFloat64("detect.fuzzy_threshold"); t > 0 {
		analyzerOpts = append(analyzerOpts, detect.WithThreshold(t))
	}
	analyzer := detect.NewAnalyzer(reg, analyzerOpts...)

	var classifier service.Classifier
	if !noLLM {
		var err error
		classifier, err = createClassifier(reg, logger)
		if err != nil {
			return nil, err
		}
	}

	var enricher service.Enricher
	if !noEnrich {
		enricher = enrich.NewGeocoder(config.LoadEnrichConfig(), logger)
	}

	engCfg := engine.DefaultConfig()
	if v := viper.GetInt("engine.workers"); v > 0 {
		engCfg.Workers = v
	}

	return engine.NewWithConfig(analyzer, classifier, enricher, logger, engCfg), nil
}

func uploadToSheets(ctx context.Context, results []model.ClassifiedTransaction, logger *slog.Logger) error {
	sheetsCfg, err := config.LoadSheetsConfig()
	if err != nil {
		return fmt.Errorf("sheets config: %w", err)
	}

	writer, err := sheets.NewWriter(ctx, *sheetsCfg, logger)
	if err != nil {
		return err
	}
	return writer.Write(ctx, results)
}
