package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"backoffice/cache"
	"backoffice/config"
	"backoffice/controllers"
	"backoffice/db"
	"backoffice/router"
	"backoffice/tools"
	"backoffice/workers"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env not found, using process environment")
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.json"
	}
	cfg := config.Get(configPath)

	logFile := setupLogger(cfg.LogPath)
	if logFile != nil {
		defer logFile.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("db: connect failed")
	}
	defer database.Close()

	var deliveries *cache.DeliveryCache
	if cfg.Redis.Addr != "" {
		client, err := cache.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Warn().Err(err).Msg("cache: redis unavailable, recent deliveries disabled")
		} else {
			defer client.Close()
			deliveries = cache.NewDeliveryCache(client)
		}
	}

	timeout := time.Duration(cfg.Evolution.TimeoutSeconds) * time.Second
	transport := tools.Transport{
		Evolution: tools.NewEvolutionClient(tools.EvolutionOptions{
			BaseURL:         cfg.Evolution.BaseURL,
			ApiKey:          cfg.Evolution.ApiKey,
			Timeout:         timeout,
			RatePerMinute:   cfg.Evolution.RatePerMinute,
			BreakerFailures: cfg.Evolution.BreakerFailures,
			BreakerOpen:     time.Duration(cfg.Evolution.BreakerOpenSecond) * time.Second,
		}),
		Cloud: tools.NewWhatsAppClient(timeout),
	}
	if err := transport.Configured(); err != nil {
		log.Warn().Err(err).Msg("transport not configured: sweeps will fail until EVOLUTION_API_URL and EVOLUTION_API_KEY are set")
	}

	handlers := &controllers.Handlers{
		Config:     cfg,
		Transport:  transport,
		Deliveries: deliveries,
	}

	if cfg.Sweeper.SchedulerEnabled {
		store := db.NewStore(database)
		workers.StartSchedulers(ctx,
			workers.Job{
				Name:  "scheduled_messages",
				Every: time.Duration(cfg.Sweeper.MessagesEverySecond) * time.Second,
				Run: func(ctx context.Context) error {
					_, err := handlers.MessageSweeper(store).Run(ctx)
					return err
				},
			},
			workers.Job{
				Name:  "auto_close",
				Every: time.Duration(cfg.Sweeper.AutoCloseEverySec) * time.Second,
				Run: func(ctx context.Context) error {
					_, err := handlers.AutoCloseSweeper(store).Run(ctx)
					return err
				},
			},
		)
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(db.SetDBtoContext(database))
	router.Initialize(r, cfg, handlers)

	srv := &http.Server{
		Addr:              ":" + cfg.ApiPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.ApiPort).Msg("backoffice listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown")
	}
}

// setupLogger escreve no console e, se possível, também no arquivo de log.
func setupLogger(path string) *os.File {
	zerolog.TimeFieldFormat = time.RFC3339
	console := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}

	var writer io.Writer = console
	var file *os.File
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err == nil {
			if f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
				file = f
				writer = zerolog.MultiLevelWriter(console, f)
			}
		}
	}

	log.Logger = zerolog.New(writer).With().Timestamp().Logger()
	if os.Getenv("DEBUG") == "1" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	return file
}
