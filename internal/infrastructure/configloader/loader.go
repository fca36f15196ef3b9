package configloader

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string `yaml:"port"`
	ReadTimeout  int    `yaml:"readTimeout"`
	WriteTimeout int    `yaml:"writeTimeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ChainConfig holds settings for the chain the pool is read from and written
// to. The deployment table supplies addresses; this selects the chain and
// tunes the RPC client.
type ChainConfig struct {
	ChainID                  uint64 `yaml:"chainID"`
	RPCURLOverride           string `yaml:"rpcURLOverride"`
	ConnectionTimeoutSeconds int    `yaml:"connectionTimeoutSeconds"`
	RPCCallTimeoutSeconds    int    `yaml:"rpcCallTimeoutSeconds"`
	MaxRetries               int    `yaml:"maxRetries"`
	RetryDelayMs             int64  `yaml:"retryDelayMs"`
	RateLimit                int    `yaml:"rateLimit"`
	BurstLimit               int    `yaml:"burstLimit"`
	SignerPrivateKey         string `yaml:"-"` // env only, never YAML
}

// CoinGeckoConfig holds CoinGecko API settings.
type CoinGeckoConfig struct {
	BaseURL              string `yaml:"baseURL"`
	APIKey               string `yaml:"apiKey"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
	MaxSymbolsPerRequest int    `yaml:"maxSymbolsPerRequest"`
	CacheTTLMinutes      int    `yaml:"cacheTTLMinutes"`
}

// RefreshConfig holds the periodic pipeline refresh settings.
type RefreshConfig struct {
	IntervalSeconds int `yaml:"intervalSeconds"`
}

// TransactionsConfig holds transaction submission settings.
type TransactionsConfig struct {
	ConfirmTimeoutSeconds int `yaml:"confirmTimeoutSeconds"`
}

// PerformanceConfig holds concurrency limits.
type PerformanceConfig struct {
	MaxConcurrentRoutines int `yaml:"max_concurrent_routines"`
}

// SwaggerConfig holds configuration for the Swagger UI.
type SwaggerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	SpecPath string `yaml:"specPath"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Logging      LoggingConfig      `yaml:"logging"`
	Chain        ChainConfig        `yaml:"chain"`
	CoinGecko    CoinGeckoConfig    `yaml:"coingecko"`
	Refresh      RefreshConfig      `yaml:"refresh"`
	Transactions TransactionsConfig `yaml:"transactions"`
	Performance  PerformanceConfig  `yaml:"performance"`
	Swagger      SwaggerConfig      `yaml:"swagger"`
}

// Load reads the YAML configuration file, applies defaults, then overlays
// secrets and endpoint overrides from the environment (a .env file is loaded
// first when present).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}

	applyDefaults(&cfg)
	applyEnv(&cfg)

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Chain.ConnectionTimeoutSeconds <= 0 {
		cfg.Chain.ConnectionTimeoutSeconds = 10
	}
	if cfg.Chain.RPCCallTimeoutSeconds <= 0 {
		cfg.Chain.RPCCallTimeoutSeconds = 10
	}
	if cfg.Chain.MaxRetries <= 0 {
		cfg.Chain.MaxRetries = 3
	}
	if cfg.Chain.RetryDelayMs <= 0 {
		cfg.Chain.RetryDelayMs = 1000
	}
	if cfg.Chain.RateLimit <= 0 {
		cfg.Chain.RateLimit = 10
	}
	if cfg.Chain.BurstLimit <= 0 {
		cfg.Chain.BurstLimit = 20
	}
	if cfg.CoinGecko.BaseURL == "" {
		cfg.CoinGecko.BaseURL = "https://api.coingecko.com/api/v3"
	}
	if cfg.CoinGecko.RequestTimeoutMillis <= 0 {
		cfg.CoinGecko.RequestTimeoutMillis = 10000
	}
	if cfg.CoinGecko.MaxSymbolsPerRequest <= 0 {
		cfg.CoinGecko.MaxSymbolsPerRequest = 30
	}
	if cfg.CoinGecko.CacheTTLMinutes <= 0 {
		cfg.CoinGecko.CacheTTLMinutes = 5
	}
	if cfg.Refresh.IntervalSeconds <= 0 {
		cfg.Refresh.IntervalSeconds = 60
	}
	if cfg.Transactions.ConfirmTimeoutSeconds <= 0 {
		cfg.Transactions.ConfirmTimeoutSeconds = 300
	}
	if cfg.Performance.MaxConcurrentRoutines <= 0 {
		cfg.Performance.MaxConcurrentRoutines = 10
	}
}

// applyEnv overlays values that should not live in the YAML file. .env load
// errors are ignored; a missing file is the normal production case.
func applyEnv(cfg *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("COINGECKO_API_KEY"); v != "" {
		cfg.CoinGecko.APIKey = v
	}
	if v := os.Getenv("RPC_URL"); v != "" {
		cfg.Chain.RPCURLOverride = v
	}
	if v := os.Getenv("SIGNER_PRIVATE_KEY"); v != "" {
		cfg.Chain.SignerPrivateKey = v
	}
	if v := os.Getenv("CHAIN_ID"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Chain.ChainID = id
		}
	}
}
