// Command twofactord serves the two-factor enrollment API.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dmitrymomot/twofactor/modules/security"
	"github.com/dmitrymomot/twofactor/pkg/clientip"
	"github.com/dmitrymomot/twofactor/pkg/config"
	"github.com/dmitrymomot/twofactor/pkg/httpserver"
	"github.com/dmitrymomot/twofactor/pkg/logger"
	"github.com/dmitrymomot/twofactor/pkg/metrics"
	"github.com/dmitrymomot/twofactor/pkg/pg"
	"github.com/dmitrymomot/twofactor/pkg/ratelimiter"
	"github.com/dmitrymomot/twofactor/pkg/redis"
	"github.com/dmitrymomot/twofactor/pkg/requestid"
	"github.com/dmitrymomot/twofactor/pkg/totp"
	"github.com/dmitrymomot/twofactor/svc/twofactor"
	"github.com/dmitrymomot/twofactor/svc/twofactor/pgstore"
)

const serviceName = "twofactord"

type appConfig struct {
	Env           string     `env:"APP_ENV" envDefault:"development"`
	LogLevel      slog.Level `env:"LOG_LEVEL" envDefault:"info"`
	AccountHeader string     `env:"TWOFACTOR_ACCOUNT_HEADER" envDefault:"X-Account-ID"`
	NameHeader    string     `env:"TWOFACTOR_ACCOUNT_NAME_HEADER" envDefault:"X-Account-Email"`
	IPHeaders     []string   `env:"HTTP_TRUSTED_IP_HEADERS" envSeparator:"," envDefault:"X-Forwarded-For,X-Real-IP"`

	HTTP      httpserver.Config
	Postgres  pg.Config
	Redis     redis.Config
	TOTP      totp.Config
	TwoFactor twofactor.Config
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("twofactord stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load[appConfig]()
	if err != nil {
		return err
	}

	log := logger.New(
		logger.WithEnvironment(cfg.Env, serviceName),
		logger.WithLevel(cfg.LogLevel),
		logger.WithContextExtractors(requestid.LoggerExtractor(), clientip.LoggerExtractor()),
	)
	slog.SetDefault(log)

	key, err := totp.LoadEncryptionKey(cfg.TOTP)
	if err != nil {
		return err
	}
	cipher, err := totp.NewCipher(key)
	if err != nil {
		return err
	}

	pool, err := pg.Connect(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := pgstore.Migrate(ctx, pool, cfg.Postgres, log); err != nil {
		return err
	}

	rdb, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer func() { _ = rdb.Close() }()

	limiter, err := ratelimiter.NewBucket(
		ratelimiter.NewRedisStore(rdb, ratelimiter.WithKeyPrefix("twofactord:ratelimit:")),
		cfg.TwoFactor.RateLimit,
	)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(serviceName)
	if err := m.Register(reg); err != nil {
		return err
	}

	svc := twofactor.NewService(
		pgstore.New(pool),
		twofactor.NewRedisSessionStore(rdb),
		cipher,
		twofactor.WithLogger(log),
		twofactor.WithTOTPConfig(cfg.TOTP),
		twofactor.WithConfig(cfg.TwoFactor),
		twofactor.WithRateLimiter(limiter),
		twofactor.WithObserver(m),
	)

	r := chi.NewRouter()
	r.Use(requestid.Middleware, clientip.NewResolver(cfg.IPHeaders...).Middleware, m.Middleware)
	r.Get("/health/live", httpserver.LivenessHandler())
	r.Get("/health/ready", httpserver.ReadinessHandler(log, map[string]httpserver.Check{
		"postgres": pg.Healthcheck(pool),
		"redis":    redis.Healthcheck(rdb),
	}))
	r.Method(http.MethodGet, "/metrics", metrics.Handler(reg))
	r.Mount("/", security.Router(security.RouterOptions{
		TwoFactor: security.NewTwoFactorHandler(svc,
			headerResolver(cfg.AccountHeader, cfg.NameHeader),
			security.WithErrorLogger(log),
		),
	}))

	return httpserver.New(cfg.HTTP, httpserver.WithLogger(log)).Run(ctx, r)
}

// headerResolver trusts identity headers set by the authenticating gateway.
func headerResolver(idHeader, nameHeader string) security.AccountResolver {
	return func(r *http.Request) (security.Account, error) {
		id := r.Header.Get(idHeader)
		if id == "" {
			return security.Account{}, twofactor.ErrMissingAccountID
		}
		return security.Account{ID: id, Name: r.Header.Get(nameHeader)}, nil
	}
}
