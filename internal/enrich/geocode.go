// Package enrich provides the enrichment collaborator: bank geocoding via
// the OpenStreetMap Nominatim API with per-service rate gating and caching.
// Failures here are non-fatal; callers simply proceed without enrichment.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/kzcompliance/offshore-radar/internal/service"
)

const (
	defaultBaseURL     = "https://nominatim.openstreetmap.org"
	defaultUserAgent   = "offshore-radar/1.0"
	defaultMinInterval = 1100 * time.Millisecond // Nominatim usage policy: at most 1 req/s
	defaultTimeout     = 10 * time.Second
	defaultCacheSize   = 512
	maxResponseBytes   = 1 << 20
	maxQueryLen        = 100
)

// Config holds geocoder configuration.
type Config struct {
	BaseURL     string
	UserAgent   string
	MinInterval time.Duration
	Timeout     time.Duration
	CacheSize   int
}

// Geocoder implements service.Enricher against Nominatim.
type Geocoder struct {
	httpClient *http.Client
	logger     *slog.Logger
	gate       *intervalGate
	cache      *lookupCache
	baseURL    string
	userAgent  string
}

// NewGeocoder creates a geocoder with the given configuration.
func NewGeocoder(cfg Config, logger *slog.Logger) *Geocoder {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.MinInterval == 0 {
		cfg.MinInterval = defaultMinInterval
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.CacheSize == 0 {
		cfg.CacheSize = defaultCacheSize
	}

	return &Geocoder{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
		gate:       newIntervalGate(cfg.MinInterval),
		cache:      newLookupCache(cfg.CacheSize),
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
	}
}

// Lookup geocodes the bank name, optionally constrained to the country
// encoded in the bank identifier. A nil enrichment with nil error means the
// inputs carried nothing usable.
func (g *Geocoder) Lookup(ctx context.Context, counterpartyName, bankName, bankIdentifier string) (*service.EnrichmentContext, error) {
	query := NormalizeBankQuery(bankName)
	if query == "" {
		g.logger.Debug("no usable bank name for enrichment", "counterparty", counterpartyName)
		return nil, nil
	}

	countryCode := countryCodeFromIdentifier(bankIdentifier)

	cacheKey := query + "|" + countryCode
	if cached, ok := g.cache.get(cacheKey); ok {
		g.logger.Debug("geocode cache hit", "query", query, "country", countryCode)
		return cached, nil
	}

	// Respect the shared per-service interval before touching the network.
	if err := g.gate.wait(ctx, "geocode"); err != nil {
		return nil, err
	}

	results, err := g.search(ctx, query, countryCode)
	if err != nil {
		return nil, fmt.Errorf("geocoding %q failed: %w", query, err)
	}

	enrichment := &service.EnrichmentContext{Geocode: results}
	g.cache.set(cacheKey, enrichment)

	g.logger.Info("geocoding completed",
		"query", query,
		"country", countryCode,
		"results", len(results))

	return enrichment, nil
}

func (g *Geocoder) search(ctx context.Context, query, countryCode string) ([]service.GeocodeResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "2")
	if countryCode != "" {
		params.Set("countrycodes", strings.ToLower(countryCode))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var raw []struct {
		DisplayName string `json:"display_name"`
		Lat         string `json:"lat"`
		Lon         string `json:"lon"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	results := make([]service.GeocodeResult, 0, len(raw))
	for _, r := range raw {
		results = append(results, service.GeocodeResult{
			DisplayName: r.DisplayName,
			Lat:         r.Lat,
			Lon:         r.Lon,
		})
	}
	return results, nil
}

// countryCodeFromIdentifier pulls a validated alpha-2 country code out of a
// SWIFT/BIC identifier, or returns "".
func countryCodeFromIdentifier(identifier string) string {
	id := strings.ToUpper(strings.TrimSpace(identifier))
	if len(id) != 8 && len(id) != 11 {
		return ""
	}
	code := id[4:6]
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return ""
		}
	}
	return code
}

var (
	addressTailRe = regexp.MustCompile(`(?i)\b(floor|fl|avenue|ave|road|rd|street|st|bldg|building|no\.?|№|suite|ste|unit)\b.*$`)
	trailingNumRe = regexp.MustCompile(`\s+\d+$`)
	parenTailRe   = regexp.MustCompile(`\(([^)]*)\)$`)
	leadJunkRe    = regexp.MustCompile(`^[\W_]+`)
	multiSpaceRe  = regexp.MustCompile(`\s+`)
)

// Plain substring match; Go's regexp \b is ASCII-only and misses Cyrillic.
var bankKeywords = []string{"bank", "банк", "credit", "union"}

func hasBankKeyword(s string) bool {
	low := strings.ToLower(s)
	for _, kw := range bankKeywords {
		if strings.Contains(low, kw) {
			return true
		}
	}
	return false
}

// NormalizeBankQuery reduces a raw bank-name cell (which often carries
// addresses and line noise) to a short geocodable query.
func NormalizeBankQuery(name string) string {
	raw := strings.NewReplacer("/", " ", "\\", " ").Replace(name)

	var lines []string
	for _, ln := range strings.Split(raw, "\n") {
		if ln = strings.TrimSpace(ln); ln != "" {
			lines = append(lines, ln)
		}
	}
	if len(lines) == 0 {
		return ""
	}

	// Prefer a line that mentions a bank keyword, else the most alphabetic one.
	candidate := ""
	for _, ln := range lines {
		if hasBankKeyword(ln) {
			candidate = ln
			break
		}
	}
	if candidate == "" {
		best := -1.0
		for _, ln := range lines {
			letters, total := 0, 0
			for _, r := range ln {
				if unicode.IsLetter(r) {
					letters++
				}
				total++
			}
			ratio := float64(letters) / float64(total)
			if ratio > best {
				best = ratio
				candidate = ln
			}
		}
	}

	s := candidate
	if idx := strings.Index(s, ","); idx >= 0 {
		s = s[:idx]
	}
	s = strings.TrimSpace(addressTailRe.ReplaceAllString(s, ""))

	if m := parenTailRe.FindStringSubmatch(s); m != nil && !hasBankKeyword(m[1]) {
		s = strings.TrimSpace(parenTailRe.ReplaceAllString(s, ""))
	}

	s = strings.TrimSpace(trailingNumRe.ReplaceAllString(s, ""))
	s = multiSpaceRe.ReplaceAllString(s, " ")
	s = leadJunkRe.ReplaceAllString(s, "")

	if s == "" {
		s = lines[0]
	}
	if len(s) > maxQueryLen {
		s = s[:maxQueryLen]
	}
	return strings.TrimSpace(s)
}
