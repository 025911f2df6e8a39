package main

import (
	"context"
	"log"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/layer-3/faucet/adapters/events"
	"github.com/layer-3/faucet/adapters/ledger"
	"github.com/layer-3/faucet/adapters/limiter"
	"github.com/layer-3/faucet/adapters/store"
	"github.com/layer-3/faucet/adapters/tokenizer"
	"github.com/layer-3/faucet/internal/config"
	"github.com/layer-3/faucet/internal/logging"
	"github.com/layer-3/faucet/ports"
	"github.com/layer-3/faucet/service"
	"github.com/layer-3/faucet/transport/http"
)

func main() {
	cfg := config.MustLoad()
	logger := logging.New(cfg.LogLevel)

	ctx := context.Background()

	quotas := limiter.Quotas{
		ports.ScopeChallenge: cfg.RateLimit.Challenge,
		ports.ScopeSignIn:    cfg.RateLimit.SignIn,
		ports.ScopeClaim:     cfg.RateLimit.Claim,
	}

	var (
		nonceStore ports.NonceStore
		rateLimit  ports.RateLimiter
		eventPub   ports.EventPublisher
	)

	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}

		redisClient := redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to ping Redis: %v", err)
		}

		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{
				Client: redisClient,
			},
			watermill.NewStdLogger(false, false),
		)
		if err != nil {
			log.Fatalf("Failed to create Redis publisher: %v", err)
		}

		nonceStore = store.NewRedisStore(redisClient, cfg.SIWE.ChallengeTTL)
		rateLimit = limiter.NewRedisLimiter(redisClient, cfg.RateLimit.Window, quotas)
		eventPub = events.NewWatermillPublisher(publisher)
	} else {
		nonceStore = store.NewMemoryStore()
		rateLimit = limiter.NewMemoryLimiter(cfg.RateLimit.Window, quotas)
	}

	// Background sweep deletes stale challenges even when nobody looks
	// them up again.
	go func() {
		ticker := time.NewTicker(cfg.SIWE.SweepInterval)
		defer ticker.Stop()
		for range ticker.C {
			if err := nonceStore.Sweep(ctx, cfg.SIWE.ChallengeTTL); err != nil {
				logger.Warn("nonce sweep failed", "err", err)
			}
		}
	}()

	jwtTokenizer, err := tokenizer.NewJWTTokenizer([]byte(cfg.Auth.JWTSecret), cfg.Auth.Issuer, cfg.Auth.Audience)
	if err != nil {
		log.Fatalf("Failed to create tokenizer: %v", err)
	}

	var ledgerProvider ports.Ledger
	switch cfg.Ledger.Mode {
	case config.LedgerModeChain:
		ledgerProvider, err = ledger.NewChainLedger(ctx, ledger.ChainConfig{
			RPCURL:        cfg.Ledger.RPCURL,
			FaucetAddress: cfg.Ledger.FaucetAddress,
			TokenAddress:  cfg.Ledger.TokenAddress,
			OwnerKey:      cfg.Ledger.OwnerKey,
			ChainID:       cfg.Ledger.ChainID,
			TokenDecimals: cfg.Ledger.TokenDecimals,
		})
		if err != nil {
			log.Fatalf("Failed to create chain ledger: %v", err)
		}
	default:
		pool, err := decimal.NewFromString(cfg.Ledger.PoolBalance)
		if err != nil {
			log.Fatalf("Invalid pool balance: %v", err)
		}
		amount, err := decimal.NewFromString(cfg.Ledger.FaucetAmount)
		if err != nil {
			log.Fatalf("Invalid faucet amount: %v", err)
		}
		ledgerProvider = ledger.NewMemoryLedger(pool, amount)
	}

	authService := service.NewAuthService(nonceStore, jwtTokenizer, service.ChallengeConfig{
		Domain:       cfg.SIWE.Domain,
		URI:          cfg.SIWE.URI,
		Statement:    cfg.SIWE.Statement,
		ChainID:      cfg.SIWE.ChainID,
		ChallengeTTL: cfg.SIWE.ChallengeTTL,
		SessionTTL:   cfg.Auth.SessionTTL,
	}, logger)

	faucetService := service.NewFaucetService(ledgerProvider, eventPub, logger)

	router := http.SetupRouter(authService, faucetService, jwtTokenizer, rateLimit)

	logger.Info("starting faucet backend", "addr", cfg.HTTP.Addr(), "ledger_mode", cfg.Ledger.Mode)
	if err := router.Run(cfg.HTTP.Addr()); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
