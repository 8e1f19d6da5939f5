package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"scamwatch/internal/alert"
	"scamwatch/internal/api"
	"scamwatch/internal/classify"
	"scamwatch/internal/classify/local"
	"scamwatch/internal/classify/remote"
	"scamwatch/internal/config"
	"scamwatch/internal/ingest"
	"scamwatch/internal/notify"
	"scamwatch/internal/pipeline"
	"scamwatch/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0o755); err != nil {
		logrus.Fatalf("create data directory: %v", err)
	}
	db, err := store.Open(cfg.Store.Path, cfg.Store.Silent)
	if err != nil {
		logrus.Fatalf("open alert store: %v", err)
	}
	defer db.Close()

	backend := selectBackend(cfg)
	if backend == nil {
		logrus.Warn("no classifier backend bound; events will be skipped")
	}

	var notifier notify.Notifier = notify.LogNotifier{}
	if cfg.Telegram.Enabled {
		notifier = notify.NewTelegramNotifier(notify.TelegramConfig{
			Enabled:  cfg.Telegram.Enabled,
			BotToken: cfg.Telegram.BotToken,
			ChatID:   cfg.Telegram.ChatID,
			APIBase:  cfg.Telegram.APIBase,
		})
	}

	feed := api.NewAlertFeed()
	manager := alert.NewManager(feed, notifier, alert.Config{
		Expiry:   cfg.Expiry(),
		DeepLink: cfg.Alert.DeepLink,
	})
	defer manager.Close()

	pipe := pipeline.New(backend, manager, db, feed, cfg.Alert.DeepLink)

	if cfg.Ingest.NATSEnabled {
		subscriber, err := ingest.NewNATSSubscriber(ingest.Config{
			URL:     cfg.Ingest.URL,
			Subject: cfg.Ingest.Subject,
			Queue:   cfg.Ingest.Queue,
		}, pipe)
		if err != nil {
			logrus.Fatalf("start nats ingest: %v", err)
		}
		defer subscriber.Close()
		logrus.WithField("subject", cfg.Ingest.Subject).Info("nats ingest started")
	}

	server := api.NewServer(db, pipe, manager, feed, api.Config{
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})
	httpServer := &http.Server{
		Addr:    cfg.Server.Listen,
		Handler: server.Router(),
	}

	go func() {
		logrus.WithField("listen", cfg.Server.Listen).Info("http server started")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("http server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logrus.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("http shutdown")
	}
	pipe.Wait()
}

// selectBackend performs the one-time eligibility check and binds exactly
// one classifier backend for the process lifetime.
func selectBackend(cfg config.Config) classify.Backend {
	var localBackend classify.Backend
	if cfg.Classifier.Local.Eligible {
		dataDir := cfg.Classifier.Local.DataDir
		if dataDir == "" {
			dataDir = filepath.Join(filepath.Dir(cfg.Store.Path), "models")
		}
		localBackend = local.New(local.Config{
			BundlePath:     cfg.Classifier.Local.BundlePath,
			DataDir:        dataDir,
			Timeout:        cfg.LocalTimeout(),
			EngineEndpoint: cfg.Classifier.Local.EngineEndpoint,
		})
	}

	var remoteBackend classify.Backend
	client, err := remote.New(remote.Config{
		APIKey:      cfg.Classifier.Remote.APIKey,
		Model:       cfg.Classifier.Remote.Model,
		BaseURL:     cfg.Classifier.Remote.BaseURL,
		Temperature: cfg.Classifier.Remote.Temperature,
		MaxTokens:   cfg.Classifier.Remote.MaxTokens,
		Timeout:     cfg.RemoteTimeout(),
	})
	if err != nil {
		if !errors.Is(err, remote.ErrDisabled) {
			logrus.WithError(err).Warn("remote classifier init failed")
		}
	} else {
		remoteBackend = client
	}

	return classify.Select(localBackend, remoteBackend, cfg.Classifier.Local.Eligible)
}
