// Package detect implements the deterministic signal-extraction pipeline:
// SWIFT country extraction, fuzzy registry matching, confidence aggregation
// and scenario tagging. Everything in this package is pure and safe for
// concurrent use.
package detect

import (
	"strings"

	"github.com/kzcompliance/offshore-radar/internal/model"
	"github.com/kzcompliance/offshore-radar/internal/registry"
)

// SWIFT/BIC layout is AAAA BB CC DDD: bank code, country code, location
// code, optional branch code. The country code sits at positions [4,6).
const (
	swiftLenShort     = 8
	swiftLenLong      = 11
	swiftCountryStart = 4
	swiftCountryEnd   = 6
)

// ExtractBankCountry maps a raw SWIFT/BIC identifier to a country signal.
// Only length invalidates the identifier; a malformed country substring
// simply misses the registry and yields a non-offshore signal. Never fails.
func ExtractBankCountry(raw string, reg *registry.Registry) *model.CountrySignal {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if len(code) != swiftLenShort && len(code) != swiftLenLong {
		return nil
	}

	country := code[swiftCountryStart:swiftCountryEnd]
	if entry, ok := reg.LookupCode2(country); ok {
		return &model.CountrySignal{
			Code:       country,
			Name:       entry.NameEN,
			IsOffshore: true,
		}
	}

	// Not offshore; the code is still useful for enrichment and logging.
	return &model.CountrySignal{Code: country}
}
