package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cafe-frontdesk/internal/cafeapi"
	"cafe-frontdesk/internal/config"
	"cafe-frontdesk/internal/logger"
	"cafe-frontdesk/internal/mailer"
	"cafe-frontdesk/internal/modules/checkout"
	"cafe-frontdesk/internal/modules/session"
	"cafe-frontdesk/internal/server"
	"cafe-frontdesk/pkg/payment"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/oauth2"
)

const janitorInterval = 5 * time.Minute

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}
	lg := logger.New("cafe-web", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api, err := cafeapi.NewClient(cfg.APIBaseURL, &http.Client{Timeout: cfg.APITimeout}, nil)
	if err != nil {
		lg.Error("startup", "invalid backend url", err)
		os.Exit(1)
	}

	sessions, closeStore, err := openSessions(ctx, cfg, lg)
	if err != nil {
		lg.Error("startup", "cannot open session store", err)
		os.Exit(1)
	}
	defer closeStore()

	deps := server.Deps{
		Config:   cfg,
		Log:      lg,
		API:      api,
		Sessions: sessions,
	}
	if cfg.StripeAPIKey != "" {
		deps.Payments = payment.NewStripeService(cfg.StripeAPIKey, cfg.StripeCurrency)
	}
	if cfg.BackendServiceToken != "" {
		deps.Recorder = recorder(api, cfg.BackendServiceToken)
	}
	if cfg.ReceiptFromEmail != "" {
		m, err := mailer.NewSESMailer(ctx, cfg.AWSRegion, cfg.ReceiptFromEmail)
		if err != nil {
			lg.Warn("startup", "receipt e-mail disabled", slog.String("error", err.Error()))
		} else {
			deps.Mailer = m
		}
	}
	lg.Info("startup", "features configured",
		slog.Bool("online_payment", deps.Payments != nil && deps.Recorder != nil),
		slog.Bool("receipt_email", deps.Mailer != nil),
		slog.Bool("postgres_sessions", cfg.DatabaseURL != ""))

	srv := server.New(deps)
	go srv.RunJanitor(ctx, janitorInterval)

	go func() {
		if err := srv.Echo.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("startup", "server stopped", err)
			stop()
		}
	}()
	lg.Info("startup", "listening", slog.String("port", cfg.ServerPort))

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Echo.Shutdown(shutdownCtx); err != nil {
		lg.Error("shutdown", "graceful shutdown failed", err)
	}
	lg.Info("shutdown", "bye")
}

// openSessions uses Postgres when DATABASE_URL is set and memory otherwise.
func openSessions(ctx context.Context, cfg *config.Config, lg *logger.Logger) (session.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		lg.Warn("startup", "DATABASE_URL not set, staff sessions are kept in memory")
		return session.NewMemoryStore(), func() {}, nil
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	sealer, err := session.NewSealer(cfg.JWTSecret)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	store := session.NewPostgresStore(pool, sealer)
	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return store, pool.Close, nil
}

// recorder records online payments with a service credential since
// customers never hold a backend token.
func recorder(api *cafeapi.Client, token string) checkout.PaymentRecorder {
	return api.WithCredentials(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}))
}
