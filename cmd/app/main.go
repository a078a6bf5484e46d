// File: cmd/app/main.go
package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"tutor-onboarding/internal/config"
	"tutor-onboarding/internal/domain/ports/adapter"
	"tutor-onboarding/internal/infra/adapters/account"
	"tutor-onboarding/internal/infra/api"
	"tutor-onboarding/internal/infra/catalog"
	pg "tutor-onboarding/internal/infra/db/postgres"
	"tutor-onboarding/internal/infra/i18n"
	"tutor-onboarding/internal/infra/logging"
	"tutor-onboarding/internal/infra/metrics"
	red "tutor-onboarding/internal/infra/redis"
	"tutor-onboarding/internal/infra/scheduler"
	"tutor-onboarding/internal/infra/security"
	"tutor-onboarding/internal/usecase"
)

func main() {
	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, insecure fallbacks)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] enabled")
	}
	metrics.MustRegister()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()

	// ---- Secrets ----
	encKey := cfg.Security.EncryptionKey
	if len(encKey) != 32 {
		logger.Warn().Msg("security.encryption_key not set or not 32 bytes; using dev key (INSECURE)")
		encKey = devSecret("encryption")[:32]
	}
	sealer, err := security.NewSealer(encKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("sealer")
	}
	jwtSecret := cfg.Security.JWTSecret
	if jwtSecret == "" {
		logger.Warn().Msg("security.jwt_secret not set; using dev secret (INSECURE)")
		jwtSecret = devSecret("jwt")
	}
	signer, err := security.NewJWTSigner(jwtSecret)
	if err != nil {
		logger.Fatal().Err(err).Msg("jwt signer")
	}

	// ---- Repositories ----
	states := red.NewSignupStateRepo(redisClient, sealer, cfg.Redis.TTL)
	authSessions := red.NewAuthSessionRepo(redisClient)
	locker := red.NewLocker(redisClient, cfg.Account.Timeout+5*time.Second)
	limiter := red.NewRateLimiter(redisClient)

	// ---- Account provider ----
	accounts, closeAccounts := buildAccountService(ctx, cfg, redisClient, logger)
	defer closeAccounts()
	accounts = account.NewInstrumented(accounts)
	logger.Info().Str("provider", accounts.Name()).Msg("account service ready")

	// ---- Catalog & translations ----
	cat, err := catalog.Default()
	if err != nil {
		logger.Fatal().Err(err).Msg("catalog")
	}
	tr := i18n.MustDefault()

	// ---- Use cases ----
	sessionUC := usecase.NewSessionUseCase(authSessions, signer, accounts, cfg.Security.SessionTTL, logger)
	signupUC := usecase.NewSignupUseCase(
		states, locker, limiter, accounts, sessionUC, tr,
		usecase.SignupLimits{Starts: cfg.RateLimit.SignupStarts, Window: cfg.RateLimit.Window},
		cfg.Account.Timeout, logger, cfg.Runtime.Dev,
	)
	accountUC := usecase.NewAccountUseCase(accounts, cat, logger)
	planUC := usecase.NewPlanUseCase(cat)

	// ---- HTTP ----
	srv := api.NewServer(signupUC, sessionUC, accountUC, planUC, tr, api.Options{
		Cookie:         api.CookieConfig{Domain: cfg.Security.CookieDomain, Secure: cfg.Security.SecureCookie},
		AllowedOrigin:  cfg.HTTP.AllowedOrigin,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		Health:         redisClient.Ping,
	}, logger)

	if err := api.Run(ctx, cfg.HTTP.Port, srv.Routes(), logger); err != nil {
		logger.Error().Err(err).Msg("http server stopped")
	}
	logger.Info().Msg("shutdown complete")
}

// buildAccountService selects the configured provider. The returned func
// releases provider resources.
func buildAccountService(ctx context.Context, cfg *config.Config, cache red.RedisClient, logger *zerolog.Logger) (adapter.AccountService, func()) {
	noop := func() {}
	switch cfg.Account.Provider {
	case config.ProviderHTTP:
		svc, err := account.NewHTTPAccountService(cfg.Account.BaseURL, cfg.Account.APIKey, cfg.Account.Timeout)
		if err != nil {
			logger.Fatal().Err(err).Msg("http account service")
		}
		return svc, noop

	case config.ProviderPostgres:
		pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres")
		}
		if err := pg.Migrate(ctx, pool); err != nil {
			logger.Fatal().Err(err).Msg("postgres migrate")
		}
		users := pg.NewUserRepoCacheDecorator(pg.NewPostgresUserRepo(pool), cache)
		stats := scheduler.NewScheduler(time.Minute, usecase.NewStatsJob(users, logger), logger)
		stats.Start(ctx)
		return account.NewLocalAccountService(users, pg.NewTxManager(pool)), func() {
			stats.Stop()
			pool.Close()
		}

	case config.ProviderMemory:
		logger.Warn().Msg("memory account provider: accounts are lost on restart")
		return account.NewMemoryAccountService(), noop
	}
	logger.Warn().Msg("no account provider configured; submissions will fail as service unavailable")
	return account.Unconfigured{}, noop
}

// devSecret derives a stable per-host secret for dev runs.
func devSecret(purpose string) string {
	host, _ := os.Hostname()
	sum := sha256.Sum256([]byte("tutor-onboarding:" + purpose + ":" + host))
	return hex.EncodeToString(sum[:])
}
