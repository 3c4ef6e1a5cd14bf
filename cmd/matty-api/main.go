package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mattyapp/matty-api/internal/bootstrap"
	"github.com/mattyapp/matty-api/internal/config"
	httpx "github.com/mattyapp/matty-api/internal/http"
	"github.com/mattyapp/matty-api/internal/observability/logger"
	"github.com/mattyapp/matty-api/internal/rate"
	"github.com/mattyapp/matty-api/internal/store"
	"github.com/mattyapp/matty-api/internal/store/pg"
	"github.com/mattyapp/matty-api/internal/token"
	"github.com/mattyapp/matty-api/internal/verification"
	"github.com/mattyapp/matty-api/internal/verification/sender"
	"github.com/mattyapp/matty-api/migrations"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

func main() {
	// .env opcional, las env vars del sistema pisan el archivo
	_ = godotenv.Load()

	var configPath string

	root := &cobra.Command{
		Use:   "matty-api",
		Short: "Servicio de verificación de destinos y emisión de tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "ruta del config YAML")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Levanta el servidor HTTP (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones de postgres y termina",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(configPath)
		},
	}
	root.AddCommand(serve, migrate)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runMigrate(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, ServiceName: "matty-api"})
	defer func() { _ = logger.Sync() }()

	if cfg.Storage.Driver != "postgres" {
		return fmt.Errorf("migrate requiere storage.driver=postgres (actual: %s)", cfg.Storage.Driver)
	}

	ctx := context.Background()
	pgStore, err := pg.New(ctx, cfg.Storage.DSN, pg.Options{
		MaxConns:        cfg.Storage.Postgres.MaxConns,
		ConnMaxLifetime: cfg.Storage.Postgres.ConnMaxLifetime,
	})
	if err != nil {
		return err
	}
	defer pgStore.Close()

	return pgStore.Migrate(ctx, migrations.PostgresFS, migrations.PostgresDir)
}

func runServe(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, ServiceName: "matty-api"})
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := bootstrap.SeedInterests(ctx, st.Interests); err != nil {
		return err
	}
	bootstrap.StartCodeGC(ctx, st.Codes, config.Dur(cfg.Verification.GCInterval))

	// Tokens: dos generadores con secretos independientes.
	accessGen := token.NewGenerator(cfg.JWT.AccessSecret, config.Dur(cfg.JWT.AccessTTL))
	refreshGen := token.NewGenerator(cfg.JWT.RefreshSecret, config.Dur(cfg.JWT.RefreshTTL))
	accessDecoder := token.NewDecoder(cfg.JWT.AccessSecret)
	refreshDecoder := token.NewDecoder(cfg.JWT.RefreshSecret)

	tokenSvc := token.NewService(token.Deps{
		AccessTokens:   accessGen,
		RefreshTokens:  refreshGen,
		RefreshDecoder: refreshDecoder,
		Store:          st.Tokens,
		Users:          st.Users,
	})

	// Verificación: issuer + dispatcher de entrega.
	issuer := verification.NewIssuer(config.Dur(cfg.Verification.TTL), st.Codes)
	codeSender, err := buildSender(ctx, cfg)
	if err != nil {
		return err
	}
	dispatcher := sender.NewDispatcher(codeSender, cfg.Delivery.Workers, cfg.Delivery.QueueSize)
	defer dispatcher.Close()
	verifSvc := verification.NewService(issuer, st.Codes, dispatcher)

	metricsHandler, err := httpx.RegisterMetrics(httpx.MetricsConfig{Pool: st.PgPool})
	if err != nil {
		return err
	}

	deps := &httpx.Deps{
		Verification:  verifSvc,
		Tokens:        tokenSvc,
		Users:         st.Users,
		Interests:     st.Interests,
		AccessDecoder: accessDecoder,
		Ready:         st.Ping,
	}

	sendLimiter, acceptLimiter := buildLimiters(cfg)
	router := httpx.NewRouter(deps, httpx.RouterOptions{
		SendLimiter:        sendLimiter,
		AcceptLimiter:      acceptLimiter,
		Metrics:            metricsHandler,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
	})

	srv := httpx.NewServer(cfg.Server.Addr, router)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.L().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildSender arma el sender según delivery.mode: "real" usa SMTP para
// email y SNS para SMS; "log" solo escribe el código al log (dev).
func buildSender(ctx context.Context, cfg *config.Config) (sender.Sender, error) {
	if cfg.Delivery.Mode == "log" {
		return sender.LogSender{}, nil
	}

	smtp := sender.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From, cfg.SMTP.Username, cfg.SMTP.Password)
	smtp.TLSMode = cfg.SMTP.TLS
	smtp.InsecureSkipVerify = cfg.SMTP.InsecureSkipVerify
	sms, err := sender.NewSNSSender(ctx, cfg.SNS.Region)
	if err != nil {
		return nil, err
	}
	return sender.ChannelDelegate{Email: smtp, SMS: sms}, nil
}

func buildLimiters(cfg *config.Config) (rate.Limiter, rate.Limiter) {
	if !cfg.Rate.Enabled {
		return nil, nil
	}
	sendWindow := config.Dur(cfg.Rate.Send.Window)
	acceptWindow := config.Dur(cfg.Rate.Accept.Window)

	if cfg.Rate.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Rate.Redis.Addr, DB: cfg.Rate.Redis.DB})
		return rate.NewRedisLimiter(client, "rl:send:", cfg.Rate.Send.Limit, sendWindow),
			rate.NewRedisLimiter(client, "rl:accept:", cfg.Rate.Accept.Limit, acceptWindow)
	}
	return rate.NewMemoryLimiter(cfg.Rate.Send.Limit, sendWindow),
		rate.NewMemoryLimiter(cfg.Rate.Accept.Limit, acceptWindow)
}
