package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"footybot/backend/internal/api/handler"
	"footybot/backend/internal/config"
	"footybot/backend/internal/localization"
	"footybot/backend/internal/logging"
	"footybot/backend/internal/roster"
	"footybot/backend/internal/storage"
	"footybot/backend/internal/telegram"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// setupDependencies connects to PostgreSQL and Redis when they are
// configured. Either return value may be nil.
func setupDependencies(ctx context.Context, cfg *config.Config) (*gorm.DB, *redis.Client) {
	log := logging.L()

	var db *gorm.DB
	if cfg.ArchiveEnabled() {
		var err error
		db, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect PostgreSQL")
		}
		if err := storage.NewStorageService(db, nil).Migrate(); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
		log.Info().Msg("match archive enabled")
	}

	var rdb *redis.Client
	if cfg.RedisEnabled() {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("failed to connect Redis")
		}
		log.Info().Str("addr", cfg.RedisAddr).Msg("redis enabled")
	}

	return db, rdb
}

func main() {
	log := logging.L()
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("error loading .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty, ServiceName: "footybot"})
	log = logging.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Optional backends
	db, rdb := setupDependencies(ctx, cfg)
	store := storage.NewStorageService(db, rdb)

	// 2. Telegram client
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start Telegram bot")
	}
	bot.Debug = false
	log.Info().Str("account", bot.Self.UserName).Msg("authorized on Telegram")

	// 3. Roster core
	var roles roster.RoleLookup = telegram.NewMemberRoleLookup(bot)
	opts := []roster.Option{}
	var history telegram.HistoryReader
	var feed handler.FeedSubscriber
	if rdb != nil {
		roles = storage.NewCachedRoleLookup(roles, rdb, cfg.RoleCacheTTL)
		opts = append(opts, roster.WithPublisher(store))
		feed = store
	}
	if db != nil {
		var archive storage.Archive = store
		opts = append(opts, roster.WithArchiver(archive))
		history = archive
	}
	opts = append(opts, roster.WithRoleLookup(roles, cfg.RoleLookupTimeout))

	coordinator := roster.NewCoordinator(
		roster.NewStore(cfg.AdminIDs),
		roster.NewPartitioner(cfg.GroupSize, nil),
		opts...,
	)

	localizer, err := localization.NewLocalizer()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create localizer")
	}
	botService := telegram.NewBotService(bot, coordinator, localizer, history)

	// 4. Update delivery
	var webhookBot handler.UpdateHandler
	pollingDone := make(chan struct{})
	if cfg.WebhookEnabled() {
		close(pollingDone)
		if err := telegram.RegisterWebhook(bot, cfg.WebhookURL, cfg.WebhookSecret); err != nil {
			log.Fatal().Err(err).Msg("failed to register webhook")
		}
		webhookBot = botService
		log.Info().Str("url", cfg.WebhookURL).Msg("webhook mode")
	} else {
		if err := telegram.DeleteWebhook(bot); err != nil {
			log.Warn().Err(err).Msg("failed to clear webhook before polling")
		}
		u := tgbotapi.NewUpdate(0)
		u.Timeout = 60
		updates := bot.GetUpdatesChan(u)
		go func() {
			defer close(pollingDone)
			botService.Run(ctx, updates)
			bot.StopReceivingUpdates()
		}()
		log.Info().Msg("long polling mode")
	}

	// 5. HTTP surface
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), logging.GinMiddleware(log))
	var jwtSecret string
	if cfg.APIEnabled() {
		jwtSecret = cfg.JWTSecret
		log.Info().Msg("chat API enabled")
	}
	h := handler.NewHandler(webhookBot, coordinator, feed, jwtSecret, cfg.WebhookSecret)
	h.RegisterRoutes(r)

	server := &http.Server{
		Addr:           ":" + strconv.Itoa(cfg.Port),
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Info().Int("port", cfg.Port).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown")
	}
	<-pollingDone
	if rdb != nil {
		rdb.Close()
	}
}
