package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomz197/balanceball/internal/config"
	"github.com/tomz197/balanceball/internal/leaderboard"
	"github.com/tomz197/balanceball/internal/loop"
	"github.com/tomz197/balanceball/internal/middleware"
	"github.com/tomz197/balanceball/internal/sim"
	"github.com/tomz197/balanceball/internal/stream"
)

const (
	defaultHost = "0.0.0.0"
	defaultPort = "8080"
)

func main() {
	logger := config.NewLogger("web")
	if err := config.LoadDotEnv(); err != nil {
		logger.Fatal("load .env", "err", err)
	}

	host := config.GetEnv("WEB_HOST", defaultHost)
	port := config.GetEnv("WEB_PORT", defaultPort)
	dbPath := config.GetEnv("LEADERBOARD_DB", "")
	origins := middleware.DefaultOrigins
	if list := config.GetEnv("ALLOWED_ORIGINS", ""); list != "" {
		origins = middleware.ParseOrigins(list)
	}
	submitRate, err := config.GetEnvInt("SUBMIT_RATE_PER_MINUTE", 10)
	if err != nil {
		logger.Fatal("bad rate limit", "err", err)
	}
	logger.Info("web config", "host", host, "port", port, "db", dbPath, "origins", origins, "submit_rate", submitRate)

	cfg, err := config.LoadGame()
	if err != nil {
		logger.Fatal("game config", "err", err)
	}

	var store leaderboard.Store
	if dbPath != "" {
		store, err = leaderboard.OpenBoltStore(dbPath, nil)
		if err != nil {
			logger.Fatal("open leaderboard", "err", err)
		}
	} else {
		store = leaderboard.NewMemoryStore(nil)
		logger.Warn("LEADERBOARD_DB not set, scores are kept in memory")
	}
	defer store.Close()

	// Score submissions per IP per minute; websocket connections per IP
	submitLimiter := middleware.NewIPRateLimiter(0, submitRate, time.Minute)
	defer submitLimiter.Stop()
	wsLimiter := middleware.NewIPRateLimiter(4, 120, time.Second)
	defer wsLimiter.Stop()

	hub := loop.NewHub()
	mux := http.NewServeMux()
	leaderboard.NewHandler(leaderboard.NewService(store, logger), logger).Register(mux)
	mux.Handle("GET /ws", stream.NewServer(stream.Options{
		Game:    sim.Options{Config: cfg},
		Origins: origins,
		OnGameOver: func(score int) {
			logger.Debug("websocket run finished", "score", score)
		},
	}, wsLimiter, hub, logger))

	server := &http.Server{
		Addr: net.JoinHostPort(host, port),
		Handler: middleware.Chain(mux,
			middleware.SecurityHeaders,
			middleware.CORS(origins),
			submitLimiter.Middleware(http.MethodPost),
		),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64KB
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("starting web server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", "err", err)
		}
	}()

	<-done
	logger.Info("shutting down", "sessions", hub.Len())
	hub.Shutdown(5 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "err", err)
	}
	logger.Info("server stopped")
}
