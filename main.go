package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/brickbot/bricklink-telegram-bot/config"
	"github.com/brickbot/bricklink-telegram-bot/internal/bot"
	"github.com/brickbot/bricklink-telegram-bot/internal/bricklink"
	"github.com/brickbot/bricklink-telegram-bot/internal/catalog"
	"github.com/brickbot/bricklink-telegram-bot/internal/format"
	"github.com/brickbot/bricklink-telegram-bot/internal/housekeeping"
	"github.com/brickbot/bricklink-telegram-bot/internal/metrics"
	"github.com/brickbot/bricklink-telegram-bot/internal/minifigs"
	"github.com/brickbot/bricklink-telegram-bot/internal/rebrickable"
	"github.com/brickbot/bricklink-telegram-bot/internal/server"
	"github.com/brickbot/bricklink-telegram-bot/internal/storage"
)

const logFileName = "bricklink-telegram-bot.log"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	// Try to load existing .env file
	config.LoadEnvFile()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	missing, err := cfg.Validate()
	if len(missing) > 0 {
		log.Fatal().Msgf("missing required config: %s", strings.Join(missing, ", "))
	}
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	// JOURNAL_STREAM is set by systemd when running as a service.
	// Skip file logging under systemd (journald handles it).
	if _, underSystemd := os.LookupEnv("JOURNAL_STREAM"); underSystemd {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		// Local development: log to both stderr and file
		logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open log file")
		}
		defer logFile.Close()

		consoleWriter := zerolog.ConsoleWriter{Out: os.Stderr}
		fileWriter := zerolog.ConsoleWriter{Out: logFile, NoColor: true}
		log.Logger = log.Output(io.MultiWriter(consoleWriter, fileWriter))

		log.Info().Str("logFile", logFileName).Msg("logging to file")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	} else {
		log.Warn().Str("level", cfg.LogLevel).Msg("unknown log level, using info")
	}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			AttachStacktrace: true,
		}); err != nil {
			log.Error().Err(err).Msg("failed to initialize sentry")
		} else {
			defer sentry.Flush(2 * time.Second)
			log.Info().Str("environment", cfg.Environment).Msg("sentry initialized")
		}
	}

	tg, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telegram bot")
	}
	tg.Debug = false
	log.Info().Str("username", tg.Self.UserName).Msg("authorized on account")
	botName := cfg.BotName
	if botName == "" {
		botName = tg.Self.UserName
	}

	// Register bot commands for Telegram's command menu
	bot.RegisterCommands(tg)

	// Create context that cancels on SIGINT or SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// The SQLite store keeps the upload log and, with the sqlite backend, the
	// lookup cache.
	store, err := storage.NewSQLiteStore(cfg.Cache.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize sqlite store")
	}
	defer store.Close()
	log.Info().Str("dbPath", cfg.Cache.DBPath).Msg("sqlite store initialized")

	var cache storage.Cache
	switch cfg.Cache.Backend {
	case config.CacheSQLite:
		cache = store
	case config.CacheRedis:
		redisCache, err := storage.NewRedisCache(ctx, cfg.Cache.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisCache.Close()
		cache = redisCache
	default:
		cache = storage.NopCache{}
	}
	log.Info().Str("backend", cfg.Cache.Backend).Dur("ttl", cfg.Cache.TTL).Msg("lookup cache configured")

	blClient := bricklink.NewClient(bricklink.ClientOpts{
		BaseURL: cfg.BrickLink.BaseURL,
		Credentials: bricklink.Credentials{
			ConsumerKey:    cfg.BrickLink.ConsumerKey,
			ConsumerSecret: cfg.BrickLink.ConsumerSecret,
			AccessToken:    cfg.BrickLink.AccessToken,
			TokenSecret:    cfg.BrickLink.TokenSecret,
		},
		RatePerSecond: cfg.BrickLink.RatePerSecond,
		Burst:         cfg.BrickLink.Burst,
		Metrics:       m,
	})
	resolver := catalog.NewResolver(
		bricklink.NewCachedGateway(blClient, cache, cfg.Cache.TTL, m),
		catalog.WithCurrency(cfg.DefaultCurrency),
	)

	objectStore, err := minifigs.NewS3Store(ctx, minifigs.S3Config{
		Region:      cfg.Storage.Region,
		Endpoint:    cfg.Storage.Endpoint,
		Bucket:      cfg.Storage.Bucket,
		AccessKeyID: cfg.Storage.AccessKeyID,
		SecretKey:   cfg.Storage.SecretKey,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize object storage")
	}

	b := bot.NewBot(tg, bot.Opts{
		Resolver:  resolver,
		Formatter: format.New(format.ParseFlagOverrides(cfg.FlagOverrides)),
		Sets: rebrickable.NewClient(rebrickable.ClientOpts{
			BaseURL: cfg.Rebrickable.BaseURL,
			Key:     cfg.Rebrickable.Key,
			Metrics: m,
		}),
		Minifigs:     minifigs.NewIndex(objectStore, cfg.Storage.ObjectKey, m),
		Uploads:      store,
		Admins:       config.ParseAdmins(cfg.AdminUsers),
		BotName:      botName,
		CacheBackend: cfg.Cache.Backend,
		Metrics:      m,
	})
	defer b.Shutdown()

	srvOpts := server.Opts{
		Addr:     cfg.HTTPAddr,
		Registry: registry,
		Sentry:   cfg.SentryDSN != "",
	}
	if cfg.WebhookURL != "" {
		srvOpts.Parser = tg
		srvOpts.Handler = b
	}
	srv := server.New(srvOpts)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Run(ctx)
	})

	if cfg.WebhookURL != "" {
		if err := setWebhook(tg, cfg.WebhookURL); err != nil {
			log.Fatal().Err(err).Msg("failed to set webhook")
		}
	} else {
		g.Go(func() error {
			return runBot(ctx, tg, b)
		})
	}

	if cfg.Cache.Backend == config.CacheSQLite {
		g.Go(func() error {
			housekeeping.NewService(store, m).Run(ctx)
			return nil
		})
	}

	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Error().Err(err).Msg("shutdown with error")
	} else {
		log.Info().Msg("shutdown complete")
	}
}

func setWebhook(tg *tgbotapi.BotAPI, baseURL string) error {
	wh, err := tgbotapi.NewWebhook(strings.TrimSuffix(baseURL, "/") + server.WebhookPath)
	if err != nil {
		return err
	}
	if _, err := tg.Request(wh); err != nil {
		return err
	}
	log.Info().Str("url", wh.URL.String()).Msg("webhook registered")
	return nil
}

func runBot(ctx context.Context, tg *tgbotapi.BotAPI, b *bot.Bot) error {
	// Long polling does not work while a webhook is set
	if _, err := tg.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		log.Warn().Err(err).Msg("failed to delete webhook")
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := tg.GetUpdatesChan(updateConfig)

	var wg sync.WaitGroup

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("stopping bot update loop")
			tg.StopReceivingUpdates()
			log.Info().Msg("waiting for active handlers to finish")
			wg.Wait()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				log.Warn().Msg("updates channel closed")
				wg.Wait()
				return nil
			}
			wg.Add(1)
			go func(u tgbotapi.Update) {
				defer wg.Done()
				b.HandleUpdate(ctx, u)
			}(update)
		}
	}
}
