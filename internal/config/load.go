package config

import (
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/kzcompliance/offshore-radar/internal/enrich"
	"github.com/kzcompliance/offshore-radar/internal/llm"
	"github.com/kzcompliance/offshore-radar/internal/server"
	"github.com/kzcompliance/offshore-radar/internal/sheets"
)

// LoadLLMConfig builds the classifier configuration from Viper and
// environment variables.
func LoadLLMConfig() llm.Config {
	cfg := llm.Config{
		Provider:    viper.GetString("llm.provider"),
		APIKey:      viper.GetString("llm.api_key"),
		Model:       viper.GetString("llm.model"),
		BaseURL:     viper.GetString("llm.base_url"),
		Temperature: viper.GetFloat64("llm.temperature"),
		MaxTokens:   viper.GetInt("llm.max_tokens"),
		MaxRetries:  viper.GetInt("llm.max_retries"),
		RetryDelay:  viper.GetDuration("llm.retry_delay"),
		CacheTTL:    viper.GetDuration("llm.cache_ttl"),
		RateLimit:   viper.GetInt("llm.rate_limit"),
		Timeout:     viper.GetDuration("llm.timeout"),
	}

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 24 * time.Hour
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 60
	}

	return cfg
}

// LoadEnrichConfig builds the geocoding enrichment configuration.
func LoadEnrichConfig() enrich.Config {
	cfg := enrich.Config{
		BaseURL:   viper.GetString("enrich.base_url"),
		UserAgent: viper.GetString("enrich.user_agent"),
		Timeout:   viper.GetDuration("enrich.timeout"),
		CacheSize: viper.GetInt("enrich.cache_size"),
	}
	if v := viper.GetDuration("enrich.min_interval"); v > 0 {
		cfg.MinInterval = v
	}
	return cfg
}

// LoadServerConfig builds the HTTP server configuration.
func LoadServerConfig() server.Config {
	cfg := server.DefaultConfig()
	if v := viper.GetString("server.addr"); v != "" {
		cfg.Addr = v
	}
	if v := viper.GetDuration("server.read_timeout"); v > 0 {
		cfg.ReadTimeout = v
	}
	if v := viper.GetDuration("server.write_timeout"); v > 0 {
		cfg.WriteTimeout = v
	}
	if v := viper.GetDuration("server.shutdown_timeout"); v > 0 {
		cfg.ShutdownTimeout = v
	}
	return cfg
}

// LoadSheetsConfig loads Google Sheets configuration from Viper and
// environment variables. Precedence:
// 1. Viper configuration (from config file or OFFSHORE_ env vars)
// 2. Direct environment variables (GOOGLE_SHEETS_*)
// 3. Default values
func LoadSheetsConfig() (*sheets.Config, error) {
	config := sheets.DefaultConfig()

	if v := viper.GetString("sheets.service_account_path"); v != "" {
		config.ServiceAccountPath = ExpandPath(v)
	}
	if v := viper.GetString("sheets.client_id"); v != "" {
		config.ClientID = v
	}
	if v := viper.GetString("sheets.client_secret"); v != "" {
		config.ClientSecret = v
	}
	if v := viper.GetString("sheets.refresh_token"); v != "" {
		config.RefreshToken = v
	}
	if v := viper.GetString("sheets.spreadsheet_id"); v != "" {
		config.SpreadsheetID = v
	}
	if v := viper.GetString("sheets.spreadsheet_name"); v != "" {
		config.SpreadsheetName = v
	}

	if config.ServiceAccountPath == "" {
		if v := os.Getenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH"); v != "" {
			config.ServiceAccountPath = ExpandPath(v)
		}
	}
	if config.ClientID == "" {
		config.ClientID = os.Getenv("GOOGLE_SHEETS_CLIENT_ID")
	}
	if config.ClientSecret == "" {
		config.ClientSecret = os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET")
	}
	if config.RefreshToken == "" {
		config.RefreshToken = os.Getenv("GOOGLE_SHEETS_REFRESH_TOKEN")
	}
	if config.SpreadsheetID == "" {
		config.SpreadsheetID = os.Getenv("GOOGLE_SHEETS_SPREADSHEET_ID")
	}
	if config.SpreadsheetName == "" {
		if v := os.Getenv("GOOGLE_SHEETS_SPREADSHEET_NAME"); v != "" {
			config.SpreadsheetName = v
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}
