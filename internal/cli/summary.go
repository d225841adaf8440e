package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/schollz/progressbar/v3"

	"github.com/kzcompliance/offshore-radar/internal/model"
	"github.com/kzcompliance/offshore-radar/internal/service"
)

// NewProgressBar builds the classification progress bar.
func NewProgressBar(total int, w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Analyzing transactions...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}

// RenderSummary formats batch completion statistics as a styled box.
func RenderSummary(results []model.ClassifiedTransaction, stats service.CompletionStats) string {
	byLabel := make(map[model.Label]int)
	for _, r := range results {
		byLabel[r.Result.Label]++
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Offshore Analysis Summary"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Transactions analyzed: %d\n", stats.TotalTransactions))
	b.WriteString(fmt.Sprintf("Duration: %s\n\n", stats.Duration.Round(stats.Duration/100)))

	b.WriteString(AlertStyle.Render(fmt.Sprintf("  %s: %d", model.RussianLabels[model.LabelOffshoreYes], byLabel[model.LabelOffshoreYes])))
	b.WriteString("\n")
	b.WriteString(WarningStyle.Render(fmt.Sprintf("  %s: %d", model.RussianLabels[model.LabelOffshoreSuspect], byLabel[model.LabelOffshoreSuspect])))
	b.WriteString("\n")
	b.WriteString(SuccessStyle.Render(fmt.Sprintf("  %s: %d", model.RussianLabels[model.LabelOffshoreNo], byLabel[model.LabelOffshoreNo])))
	b.WriteString("\n")
	if stats.Errors > 0 {
		b.WriteString(AlertStyle.Render(fmt.Sprintf("  %s: %d", model.RussianLabels[model.LabelError], stats.Errors)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(SubtleStyle.Render(fmt.Sprintf("classifier: %d  fallback: %d  errors: %d",
		stats.ByClassifier, stats.ByFallback, stats.Errors)))

	return BoxStyle.Render(b.String())
}
