package enrich

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBankQuery(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain bank name",
			in:   "First Caribbean Bank",
			want: "First Caribbean Bank",
		},
		{
			name: "address after comma dropped",
			in:   "Atlantic Bank, 12 Marine Parade, Belize City",
			want: "Atlantic Bank",
		},
		{
			name: "street tail dropped",
			in:   "Halyk Bank Avenue Abaya 109",
			want: "Halyk Bank",
		},
		{
			name: "multiline picks the bank line",
			in:   "Corr. account 12345\nБанк ЦентрКредит\nAlmaty",
			want: "Банк ЦентрКредит",
		},
		{
			name: "trailing numbers dropped",
			in:   "Banco Nacional 00123",
			want: "Banco Nacional",
		},
		{
			name: "parenthetical tail dropped",
			in:   "Deutsche Bank (Frankfurt)",
			want: "Deutsche Bank",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
		{
			name: "whitespace only",
			in:   "  \n  ",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeBankQuery(tt.in))
		})
	}
}

func TestCountryCodeFromIdentifier(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ABCAKYXX", "KY"},
		{"abcakyxx", "KY"},
		{"ABCAKYXXBR1", "KY"},
		{"ABCAKY", ""},
		{"ABCA12XX", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, countryCodeFromIdentifier(tt.in), "input %q", tt.in)
	}
}

func TestIntervalGate(t *testing.T) {
	gate := newIntervalGate(50 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	require.NoError(t, gate.wait(ctx, "geocode"))
	require.NoError(t, gate.wait(ctx, "geocode"))
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond, "second call must wait out the interval")

	// Different service names do not share the interval.
	start = time.Now()
	require.NoError(t, gate.wait(ctx, "search"))
	assert.Less(t, time.Since(start), 40*time.Millisecond)
}

func TestIntervalGateContextCancel(t *testing.T) {
	gate := newIntervalGate(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, gate.wait(ctx, "geocode"))

	cancel()
	err := gate.wait(ctx, "geocode")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLookupCacheEviction(t *testing.T) {
	cache := newLookupCache(2)

	cache.set("a", nil)
	cache.set("b", nil)
	cache.set("c", nil)

	_, ok := cache.get("a")
	assert.False(t, ok, "oldest entry should be evicted")
	_, ok = cache.get("b")
	assert.True(t, ok)
	_, ok = cache.get("c")
	assert.True(t, ok)
}

func TestGeocoderLookup(t *testing.T) {
	var gotQuery, gotCountry string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotCountry = r.URL.Query().Get("countrycodes")
		_ = json.NewEncoder(w).Encode([]map[string]string{
			{"display_name": "George Town, Cayman Islands", "lat": "19.28", "lon": "-81.37"},
		})
	}))
	defer srv.Close()

	g := NewGeocoder(Config{
		BaseURL:     srv.URL,
		MinInterval: time.Millisecond,
	}, slog.Default())

	enrichment, err := g.Lookup(context.Background(), "Cayman Trust Ltd", "First Caribbean Bank", "ABCAKYXX")
	require.NoError(t, err)
	require.NotNil(t, enrichment)
	require.Len(t, enrichment.Geocode, 1)

	assert.Equal(t, "George Town, Cayman Islands", enrichment.Geocode[0].DisplayName)
	assert.Equal(t, "First Caribbean Bank", gotQuery)
	assert.Equal(t, "ky", gotCountry)
}

func TestGeocoderLookupCaches(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		_, _ = w.Write([]byte("[]"))
	}))
	defer srv.Close()

	g := NewGeocoder(Config{BaseURL: srv.URL, MinInterval: time.Millisecond}, slog.Default())

	_, err := g.Lookup(context.Background(), "", "Atlantic Bank", "ATLBBZXX")
	require.NoError(t, err)
	_, err = g.Lookup(context.Background(), "", "Atlantic Bank", "ATLBBZXX")
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
}

func TestGeocoderLookupNoBankName(t *testing.T) {
	g := NewGeocoder(Config{}, slog.Default())

	enrichment, err := g.Lookup(context.Background(), "Someone", "", "")
	require.NoError(t, err)
	assert.Nil(t, enrichment)
}
