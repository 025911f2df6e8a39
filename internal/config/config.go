// Package config loads service configuration from a yaml file and
// environment variables via cleanenv. Environment values override file
// values; the file path comes from CONFIG_PATH when set.
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the root service configuration.
type Config struct {
	Env       string          `yaml:"env" env:"ENV" env-default:"local"`
	LogLevel  string          `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	HTTP      HTTPConfig      `yaml:"http"`
	Auth      AuthConfig      `yaml:"auth"`
	SIWE      SIWEConfig      `yaml:"siwe"`
	Redis     RedisConfig     `yaml:"redis"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Ledger    LedgerConfig    `yaml:"ledger"`
}

// HTTPConfig holds the HTTP listener settings.
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"9000"`
}

// Addr returns the listen address in host:port form.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// AuthConfig holds session token issuance parameters.
type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
	SessionTTL time.Duration `yaml:"session_ttl" env:"SESSION_TTL" env-default:"24h"`
	Issuer     string        `yaml:"issuer" env:"JWT_ISSUER" env-default:"faucet-api"`
	Audience   string        `yaml:"audience" env:"JWT_AUDIENCE" env-default:"faucet-app"`
}

// SIWEConfig holds the static fields of issued challenge messages.
type SIWEConfig struct {
	Domain        string        `yaml:"domain" env:"SIWE_DOMAIN" env-default:"localhost:3000"`
	URI           string        `yaml:"uri" env:"SIWE_URI" env-default:"http://localhost:3000"`
	Statement     string        `yaml:"statement" env:"SIWE_STATEMENT" env-default:"Sign in to claim your faucet tokens."`
	ChainID       int           `yaml:"chain_id" env:"SIWE_CHAIN_ID" env-default:"31337"`
	ChallengeTTL  time.Duration `yaml:"challenge_ttl" env:"CHALLENGE_TTL" env-default:"10m"`
	SweepInterval time.Duration `yaml:"sweep_interval" env:"SWEEP_INTERVAL" env-default:"10m"`
}

// RedisConfig holds the optional Redis connection. When the URL is empty
// the service runs on in-memory adapters.
type RedisConfig struct {
	URL string `yaml:"url" env:"REDIS_URL"`
}

// RateLimitConfig holds per-scope request quotas within the window.
type RateLimitConfig struct {
	Window    time.Duration `yaml:"window" env:"RATE_LIMIT_WINDOW" env-default:"1m"`
	Challenge int           `yaml:"challenge" env:"RATE_LIMIT_CHALLENGE" env-default:"10"`
	SignIn    int           `yaml:"signin" env:"RATE_LIMIT_SIGNIN" env-default:"10"`
	Claim     int           `yaml:"claim" env:"RATE_LIMIT_CLAIM" env-default:"5"`
}

// LedgerConfig selects and parameterizes the ledger backend.
type LedgerConfig struct {
	Mode          string `yaml:"mode" env:"LEDGER_MODE" env-default:"memory"`
	FaucetAmount  string `yaml:"faucet_amount" env:"FAUCET_AMOUNT" env-default:"100"`
	PoolBalance   string `yaml:"pool_balance" env:"POOL_BALANCE" env-default:"1000000"`
	RPCURL        string `yaml:"rpc_url" env:"RPC_URL"`
	FaucetAddress string `yaml:"faucet_address" env:"FAUCET_ADDRESS"`
	TokenAddress  string `yaml:"token_address" env:"TOKEN_ADDRESS"`
	OwnerKey      string `yaml:"owner_key" env:"OWNER_KEY"`
	ChainID       int64  `yaml:"chain_id" env:"LEDGER_CHAIN_ID" env-default:"31337"`
	TokenDecimals int32  `yaml:"token_decimals" env:"TOKEN_DECIMALS" env-default:"18"`
}

// Ledger backend modes.
const (
	LedgerModeMemory = "memory"
	LedgerModeChain  = "chain"
)

// Load reads configuration from CONFIG_PATH (when set) and the environment.
func Load() (*Config, error) {
	var cfg Config

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read config from env: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad is Load with panic on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c *Config) validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 bytes, got %d", len(c.Auth.JWTSecret))
	}

	switch c.Ledger.Mode {
	case LedgerModeMemory:
	case LedgerModeChain:
		if c.Ledger.RPCURL == "" || c.Ledger.FaucetAddress == "" || c.Ledger.TokenAddress == "" || c.Ledger.OwnerKey == "" {
			return fmt.Errorf("chain ledger requires RPC_URL, FAUCET_ADDRESS, TOKEN_ADDRESS and OWNER_KEY")
		}
	default:
		return fmt.Errorf("unknown ledger mode %q", c.Ledger.Mode)
	}

	return nil
}
