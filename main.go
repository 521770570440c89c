package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parkwatch/auth"
	"parkwatch/config"
	"parkwatch/db"
	"parkwatch/logging"
	"parkwatch/middleware"
	"parkwatch/mq"
	"parkwatch/ratelim"
	"parkwatch/routes"
	"parkwatch/slots"
	"parkwatch/websock"

	"github.com/rs/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	cfg, err := config.Load()
	if err == nil {
		err = cfg.ValidateServer()
	}
	if err != nil {
		// the logger needs cfg.Environment, so fall back to a production one
		zap.Must(zap.NewProduction()).Fatal("load config", zap.Error(err))
	}

	logger := logging.New(cfg.Environment)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// initialize database
	store, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Fatal("connect mongo", zap.Error(err))
	}
	logger.Info("connected to MongoDB", zap.String("database", store.DB.Name()))
	if err := store.EnsureIndexes(ctx); err != nil {
		logger.Fatal("ensure indexes", zap.Error(err))
	}

	// initialize viewer hub
	hubCtx, stopHub := context.WithCancel(context.Background())
	hub := websock.NewHub(logger.Named("websock"))
	go hub.Run(hubCtx)

	// with Redis every instance relays through the channel, otherwise the
	// hub is notified directly
	var publisher slots.Publisher = hub
	if cfg.RedisAddr != "" {
		rdb, err := mq.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			logger.Fatal("connect redis", zap.Error(err))
		}
		defer rdb.Close()
		relay := mq.NewRelay(rdb, mq.DefaultChannel, hub, logger.Named("mq"))
		publisher = relay
		go func() {
			if err := relay.Run(hubCtx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("redis relay stopped", zap.Error(err))
			}
		}()
	}

	jwt := middleware.NewJWT(cfg.JWTSecret)
	slotSvc := slots.NewService(slots.NewMongoStore(store.Slots), publisher, logger.Named("slots"))
	authSvc := auth.NewService(auth.NewMongoUserStore(store.Users), jwt, logger.Named("auth"))

	router := routes.New(routes.Deps{
		Slots:       slots.NewHandlers(slotSvc, logger.Named("slots"), cfg.PublicBaseURL),
		Auth:        auth.NewHandlers(authSvc, logger.Named("auth")),
		JWT:         jwt,
		RateLimiter: ratelim.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst),
		Hub:         hub,
		Upgrader:    websock.NewUpgrader(cfg.CORSOrigins),
		ImageDir:    cfg.ImageDir,
		Log:         logger,
	})

	// apply middleware: CORS → security headers → logging → router
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(router)

	handler := middleware.Logging(logger.Named("http"))(middleware.SecurityHeaders(corsHandler))

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	server.RegisterOnShutdown(func() {
		logger.Info("shutting down viewer hub")
		stopHub()
	})

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Addr()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received; shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	stopHub()
	if err := store.Close(shutdownCtx); err != nil {
		logger.Error("disconnect mongo", zap.Error(err))
	}

	logger.Info("server stopped cleanly")
}
