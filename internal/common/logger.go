package common

import (
	"log/slog"
	"os"
	"regexp"
)

// Fields represents structured logging fields.
type Fields map[string]any

// accountNumberRe matches long numeric sequences that look like account
// numbers; everything but the last four digits is masked.
var accountNumberRe = regexp.MustCompile(`\b(\d{6,})(\d{4})\b`)

// RedactAccountNumbers masks account-number-like sequences in s, keeping
// only the last four digits.
func RedactAccountNumbers(s string) string {
	return accountNumberRe.ReplaceAllString(s, "****$2")
}

// SetupLogger configures the global logger with appropriate settings.
// String attributes are passed through the account-number redactor so
// counterparty details never reach the logs in full.
func SetupLogger(level slog.Level, format string) error {
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Value.Kind() == slog.KindString {
				a.Value = slog.StringValue(RedactAccountNumbers(a.Value.String()))
			}
			return a
		},
	}

	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	case "console":
		handler = slog.NewTextHandler(os.Stderr, opts)
	default:
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
	return nil
}
