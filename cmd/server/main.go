package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"benessere-booking/internal/app"
	"benessere-booking/internal/availability"
	"benessere-booking/internal/config"
	"benessere-booking/internal/gallery"
	"benessere-booking/internal/invite"
	"benessere-booking/internal/logging"
	"benessere-booking/internal/metrics"
	"benessere-booking/internal/notify"
	"benessere-booking/internal/server"
	"benessere-booking/internal/slots"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(nil)

	var busy availability.BusySource
	if cfg.CalendarConfigured() {
		gc, err := availability.NewGoogleCalendar(ctx, cfg.GoogleCalendarID, cfg.GoogleServiceAccountKey)
		if err != nil {
			logger.Warn("google calendar unavailable, serving mock slots", zap.Error(err))
		} else {
			busy = gc
		}
	}
	resolver := availability.NewResolver(availability.Options{
		Window: slots.Window{
			StartHour:       cfg.WorkStartHour,
			EndHour:         cfg.WorkEndHour,
			IntervalMinutes: cfg.SlotIntervalMinutes,
		},
		Location: cfg.Location(),
		Source:   busy,
		Timeout:  cfg.CalendarTimeout,
		Logger:   logger,
		Metrics:  m,
	})

	sender := notify.NewSender(notify.SenderConfig{
		Provider:           cfg.EmailProvider,
		FromName:           cfg.EmailFromName,
		ZeptoMailToken:     cfg.ZeptoMailToken,
		ZeptoMailFromEmail: cfg.ZeptoMailFromEmail,
		ZeptoMailAPIURL:    cfg.ZeptoMailAPIURL,
		SendGridAPIKey:     cfg.SendGridAPIKey,
		SendGridFromEmail:  cfg.SendGridFromEmail,
	}, logger)
	dispatcher := notify.NewDispatcher(notify.DispatcherOptions{
		Sender:        sender,
		Renderer:      notify.Renderer{BusinessName: cfg.BusinessName, TherapistName: cfg.TherapistName},
		OperatorEmail: cfg.TherapistEmail,
		Timeout:       cfg.EmailTimeout,
		Logger:        logger,
		Metrics:       m,
	})

	var cache gallery.Cache = gallery.NopCache{}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		cache = gallery.NewRedisCache(rdb, "", cfg.GalleryCacheTTL)
	}
	feed := gallery.NewService(gallery.Options{
		Username: cfg.InstagramUsername,
		Fetcher:  gallery.NewScraper(cfg.InstagramUsername, cfg.GalleryTimeout),
		Cache:    cache,
		Logger:   logger,
		Metrics:  m,
	})

	appInstance := &app.App{
		Slots:    resolver,
		Notifier: dispatcher,
		Invites:  invite.Generator{Domain: "benessere"},
		Studio: invite.Studio{
			BusinessName:  cfg.BusinessName,
			TherapistName: cfg.TherapistName,
			Location:      cfg.StudioLocation,
		},
		Gallery: feed,
		Logger:  logger,
		Metrics: m,
	}

	router := appInstance.Router(app.RouterConfig{
		AllowedOrigins: cfg.AllowedOrigins(),
		BookingLimiter: app.NewRateLimiter(cfg.BookingRatePerMinute, cfg.BookingRateBurst, logger),
	})

	if err := server.Run(ctx, server.Addr(cfg.Port), router, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
