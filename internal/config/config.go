// Package config handles loading and validating configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the sniper.
type Config struct {
	// Solana RPC
	RPCEndpoint string
	WSEndpoint  string

	// Trading
	SimulateOnly       bool
	BuySOLAmount       float64 // 0 means use the per-status default size
	SafeVolatilityRate float64 // max volatility a non-GREEN token may show
	SafeBuysCount      int     // min buys in the first minute for non-GREEN tokens

	// Safety thresholds
	SOLPriceUSD         float64
	LiquidityLowUSD     float64
	LiquidityHighUSD    float64
	MinPoolPercent      float64 // below this share of supply in pool -> RED
	MintableYellowBand  float64 // mintable tokens need at least this share for YELLOW
	AllInPoolPercent    float64 // at or above this share the pool holds ~all supply
	BurnWaitPercent     float64 // enter the burn wait at or above this share
	BurnSupplyThreshold float64 // ui supply at or below this counts as burned
	BurnWaitTimeout     time.Duration

	// Postponement
	PostponeCeiling time.Duration
	PostponeGrace   time.Duration

	// Trend analysis
	TrendWindow       time.Duration
	DumpThresholdPct  float64
	LargeBetSOL       float64
	GrowthEpsilon     float64
	DumpTradeHistory  bool

	// Pipeline concurrency
	ParseConcurrency    int
	SafetyConcurrency   int
	BurnWaitConcurrency int
	SeenSignatureCap    int

	// Wallet
	WalletID            int64
	WalletStartValueSOL float64

	// BlacklistedCreators is a comma-separated list of creator addresses
	// whose pools are skipped outright.
	BlacklistedCreators []string

	// Storage
	PostgresDSN   string
	ClickHouseDSN string

	// HTTP
	AppPort     int
	MetricsAddr string
}

// Load reads configuration from environment variables with fallback to .env file.
// Priority order: environment variables > .env file > defaults.
func Load() (*Config, error) {
	// Attempt to load .env file (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		RPCEndpoint: getEnv("RPC_URL", ""),
		WSEndpoint:  getEnv("WS_URL", ""),

		SimulateOnly:       getEnvBool("SIMULATION_ONLY", true),
		BuySOLAmount:       getEnvFloat("BUY_SOL_AMOUNT", 0),
		SafeVolatilityRate: getEnvFloat("SAFE_PRICE_VOLATILITY_RATE", 1.0),
		SafeBuysCount:      getEnvInt("SAFE_BUYS_COUNT_IN_FIRST_MINUTE", 40),

		SOLPriceUSD:         getEnvFloat("SOL_PRICE_USD", 150),
		LiquidityLowUSD:     getEnvFloat("LIQUIDITY_LOW_USD", 500),
		LiquidityHighUSD:    getEnvFloat("LIQUIDITY_HIGH_USD", 100_000_000),
		MinPoolPercent:      getEnvFloat("MIN_POOL_PERCENT", 0.1),
		MintableYellowBand:  getEnvFloat("MINTABLE_YELLOW_BAND", 0.95),
		AllInPoolPercent:    getEnvFloat("ALL_IN_POOL_PERCENT", 0.99),
		BurnWaitPercent:     getEnvFloat("BURN_WAIT_PERCENT", 0.5),
		BurnSupplyThreshold: getEnvFloat("BURN_SUPPLY_THRESHOLD", 100),
		BurnWaitTimeout:     time.Duration(getEnvInt("BURN_WAIT_TIMEOUT_MINUTES", 120)) * time.Minute,

		PostponeCeiling: time.Duration(getEnvInt("POSTPONE_CEILING_HOURS", 24)) * time.Hour,
		PostponeGrace:   time.Duration(getEnvInt("POSTPONE_GRACE_MS", 300)) * time.Millisecond,

		TrendWindow:      time.Duration(getEnvInt("TREND_WINDOW_SECONDS", 60)) * time.Second,
		DumpThresholdPct: getEnvFloat("DUMP_THRESHOLD_PERCENT", 50),
		LargeBetSOL:      getEnvFloat("LARGE_BET_SOL", 2),
		GrowthEpsilon:    getEnvFloat("GROWTH_EPSILON", 0.001),
		DumpTradeHistory: getEnvBool("DUMP_HISTORY_TRADING_RECORDS", false),

		ParseConcurrency:    getEnvInt("PARSE_CONCURRENCY", 5),
		SafetyConcurrency:   getEnvInt("SAFETY_CONCURRENCY", 3),
		BurnWaitConcurrency: getEnvInt("BURN_WAIT_CONCURRENCY", 10),
		SeenSignatureCap:    getEnvInt("SEEN_SIGNATURE_CAP", 100_000),

		WalletID:            int64(getEnvInt("WALLET_ID", 1)),
		WalletStartValueSOL: getEnvFloat("WALLET_START_VALUE_SOL", 1),

		BlacklistedCreators: splitList(getEnv("BLACKLISTED_CREATORS", "")),

		PostgresDSN:   getEnv("POSTGRES_DSN", ""),
		ClickHouseDSN: getEnv("CLICKHOUSE_DSN", ""),

		AppPort:     getEnvInt("APP_PORT", 3000),
		MetricsAddr: getEnv("METRICS_ADDR", ":9090"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set and valid.
func (c *Config) Validate() error {
	if c.RPCEndpoint == "" {
		return fmt.Errorf("RPC_URL is required")
	}
	if c.WSEndpoint == "" {
		return fmt.Errorf("WS_URL is required")
	}
	if c.LiquidityLowUSD >= c.LiquidityHighUSD {
		return fmt.Errorf("LIQUIDITY_LOW_USD must be below LIQUIDITY_HIGH_USD")
	}
	if c.ParseConcurrency < 1 || c.SafetyConcurrency < 1 || c.BurnWaitConcurrency < 1 {
		return fmt.Errorf("concurrency limits must be at least 1")
	}
	if c.SeenSignatureCap < 1 {
		return fmt.Errorf("SEEN_SIGNATURE_CAP must be positive")
	}
	if c.AppPort < 1 || c.AppPort > 65535 {
		return fmt.Errorf("APP_PORT must be between 1 and 65535")
	}
	return nil
}

// splitList splits a comma-separated value, dropping empty entries.
func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an environment variable as an integer or returns a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat retrieves an environment variable as a float64 or returns a default.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

// getEnvBool retrieves an environment variable as a boolean or returns a default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
