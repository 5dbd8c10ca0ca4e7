package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"marca-checker/internal/api"
	"marca-checker/internal/check"
	"marca-checker/internal/config"
)

func main() {
	settings := config.FromEnv()
	settings.ConfigureLogging()

	ctx := context.Background()

	memo, backend, closeCache := settings.BuildCache(ctx)
	defer closeCache()

	advisor, err := settings.BuildAdvisor(ctx, memo)
	if err != nil {
		logrus.Fatalf("create advisor: %v", err)
	}

	db, err := settings.OpenStore()
	if err != nil {
		logrus.Fatalf("open consultation log: %v", err)
	}
	if db != nil {
		defer db.Close()
	}

	notifier := api.NewConsultationNotifier(advisor.Enabled())
	primary, secondary := settings.BuildProbers()
	checkCfg := check.Config{
		Advisor:       advisor,
		Prober:        primary,
		Fallback:      secondary,
		FallbackDelay: settings.FallbackDelay,
		OnResult:      notifier.Publish,
	}
	if db != nil {
		checkCfg.Recorder = db
	}
	checker, err := check.New(checkCfg)
	if err != nil {
		logrus.Fatalf("create checker: %v", err)
	}

	server, err := api.NewServer(api.Config{
		Checker:        checker,
		Store:          db,
		Notifier:       notifier,
		AllowedOrigins: settings.AllowedOrigins,
		Models:         advisor.Models(),
		CacheBackend:   backend,
	})
	if err != nil {
		logrus.Fatalf("create server: %v", err)
	}

	router, err := server.Router()
	if err != nil {
		logrus.Fatalf("configure router: %v", err)
	}

	httpServer := &http.Server{
		Addr:              ":" + settings.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logrus.WithFields(logrus.Fields{
			"port":          settings.Port,
			"ai_configured": advisor.Enabled(),
			"cache":         backend,
			"fallback":      settings.Fallback,
		}).Info("starting marca-checker")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		logrus.Errorf("server exited: %v", err)
		return
	case <-quit:
		logrus.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("server shutdown")
	}
	logrus.Info("server exited")
}
