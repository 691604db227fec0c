package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sevagan-backend/internal/config"
	"sevagan-backend/internal/notify"
	"sevagan-backend/internal/profilesink"
	"sevagan-backend/internal/repository"
	"sevagan-backend/internal/server"
	"sevagan-backend/internal/services"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	profileExportTimeout = 10 * time.Second
	otpJanitorInterval   = time.Minute
)

func Run() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Profile export
	sink, closeSinks, err := buildProfileSink(ctx, cfg.ProfileSink)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up profile sinks")
	}
	defer closeSinks()
	profiles := profilesink.NewAsync(sink, profileExportTimeout)

	// Initialize repositories
	donorRepo := repository.NewDonorRepository()
	needRepo := repository.NewNeedRepository()
	accountRepo := repository.NewAccountRepository()
	otpRepo := repository.NewOTPRepository()
	notificationRepo := repository.NewNotificationRepository()

	// Initialize services
	tokens := newTokenIssuer(cfg.Auth)
	channel := notify.NewLogChannel()
	hub := services.NewFeedHub(cfg.Feed.BufferSize)

	donorService := services.NewDonorService(donorRepo)
	needService := services.NewNeedService(needRepo, accountRepo, hub)
	accountService := services.NewAccountService(accountRepo, donorRepo, tokens)
	otpService := services.NewOTPService(otpRepo, accountRepo, tokens, channel, profiles, services.OTPOptions{
		TTL:         cfg.OTP.TTL,
		MaxAttempts: cfg.OTP.MaxAttempts,
		ExposeCode:  !cfg.IsProduction(),
	})
	relayService := services.NewRelayService(needRepo, accountRepo, notificationRepo, channel)
	adminService := services.NewAdminService(donorRepo, needRepo, accountRepo, otpRepo, notificationRepo, donorService, needService)

	go otpService.RunJanitor(ctx, otpJanitorInterval)

	router := server.NewRouter(cfg, server.Services{
		Donors:   donorService,
		Needs:    needService,
		OTP:      otpService,
		Accounts: accountService,
		Relay:    relayService,
		Admin:    adminService,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Str("environment", cfg.Environment).
			Str("token_mode", cfg.Auth.TokenMode).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	// End live feeds first; Shutdown does not wait for hijacked or streaming connections
	hub.Close()
	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	profiles.Wait()

	log.Info().Msg("Server exited")
}

func newTokenIssuer(cfg config.AuthConfig) services.TokenIssuer {
	if cfg.TokenMode == config.TokenModeJWT {
		return services.NewJWTTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	}
	return services.NewDevTokenIssuer(cfg.TokenPrefix)
}

// buildProfileSink assembles the configured sinks. The returned func releases
// their connections.
func buildProfileSink(ctx context.Context, cfg config.ProfileSinkConfig) (profilesink.Sink, func(), error) {
	var sinks profilesink.Multi
	closers := []func(){}
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	if cfg.CSVPath != "" {
		sinks = append(sinks, profilesink.NewCSVSink(cfg.CSVPath))
		log.Info().Str("path", cfg.CSVPath).Msg("CSV profile sink enabled")
	}

	if cfg.Postgres.Enabled {
		db, err := pgxpool.New(ctx, cfg.Postgres.DSN())
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		closers = append(closers, db.Close)

		if err := db.Ping(ctx); err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("failed to ping database: %w", err)
		}

		pg := profilesink.NewPostgresSink(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			closeAll()
			return nil, nil, err
		}
		sinks = append(sinks, pg)
		log.Info().Str("host", cfg.Postgres.Host).Msg("Postgres profile sink enabled")
	}

	if cfg.S3.Enabled {
		s3Sink, err := profilesink.NewS3Sink(ctx, profilesink.S3Options{
			Region:    cfg.S3.Region,
			Bucket:    cfg.S3.Bucket,
			Prefix:    cfg.S3.Prefix,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Endpoint:  cfg.S3.Endpoint,
		})
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		sinks = append(sinks, s3Sink)
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("S3 profile sink enabled")
	}

	if len(sinks) == 0 {
		return profilesink.Discard{}, closeAll, nil
	}
	return sinks, closeAll, nil
}

// setupLogger configures zerolog logger
func setupLogger(level, format string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if format != "json" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
