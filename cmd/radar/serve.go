package main

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kzcompliance/offshore-radar/internal/config"
	"github.com/kzcompliance/offshore-radar/internal/importer"
	"github.com/kzcompliance/offshore-radar/internal/server"
)

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the analysis HTTP server",
		Long: `Start an HTTP server that accepts statement uploads, runs the
offshore analysis pipeline asynchronously, and serves the classified
reports back as CSV. Prometheus metrics are exposed on /metrics.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := slog.Default()

			reg, err := loadRegistry()
			if err != nil {
				return err
			}

			eng, err := buildEngine(reg, logger, false, false)
			if err != nil {
				return err
			}

			threshold := float64(importer.DefaultThresholdKZT)
			if v := viper.GetFloat64("importer.threshold_kzt"); v > 0 {
				threshold = v
			}
			imp := importer.New(logger, importer.WithThreshold(threshold))

			srvConfig := config.LoadServerConfig()
			if addr != "" {
				srvConfig.Addr = addr
			}

			srv := server.New(eng, imp, logger, prometheus.DefaultRegisterer, srvConfig)
			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :8080)")

	return cmd
}
