package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/igrejacanaa/louvores/internal/config"
	"github.com/igrejacanaa/louvores/internal/convite"
	"github.com/igrejacanaa/louvores/internal/cron"
	"github.com/igrejacanaa/louvores/internal/db"
	internalhttp "github.com/igrejacanaa/louvores/internal/http"
	"github.com/igrejacanaa/louvores/internal/mailer"
	"github.com/igrejacanaa/louvores/internal/storage"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("api encerrada com erro")
	}
}

func run() error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if err := db.RunMigrations(cfg.DBDSN, "internal/db/migrations"); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	ctx := context.Background()

	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer pool.Close()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis parse: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	uploader := buildUploader(cfg)
	conviteMailer := mailer.FromConfig(cfg.SMTP, log.Logger)

	handler := internalhttp.NewRouter(cfg, pool, redisClient, conviteMailer, uploader)

	conviteRepo := convite.NewRepository(pool)
	runner, err := cron.NewRunner(conviteRepo, log.Logger)
	if err != nil {
		return fmt.Errorf("cron: %w", err)
	}
	runner.Start()
	defer runner.Stop()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("API ouvindo em :%d", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("encerrando...")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func buildUploader(cfg *config.Config) storage.Uploader {
	if cfg.Storage.Provider != "s3" {
		return storage.NoopUploader{}
	}

	s3cfg := storage.S3Config{
		Endpoint:     cfg.Storage.S3Endpoint,
		Region:       cfg.Storage.S3Region,
		Bucket:       cfg.Storage.S3Bucket,
		AccessKey:    cfg.Storage.S3AccessKey,
		SecretKey:    cfg.Storage.S3SecretKey,
		PublicDomain: cfg.Storage.S3PublicURL,
	}
	if !s3cfg.Configurado() {
		log.Warn().Msg("storage s3 incompleto, uploads de cifra desativados")
		return storage.NoopUploader{}
	}

	uploader, err := storage.NewS3Uploader(s3cfg)
	if err != nil {
		log.Warn().Err(err).Msg("storage s3 inválido, uploads de cifra desativados")
		return storage.NoopUploader{}
	}
	return uploader
}
