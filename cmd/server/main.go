package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/NikamRenuka/cabadmin/internal/audit"
	"github.com/NikamRenuka/cabadmin/internal/bookings"
	"github.com/NikamRenuka/cabadmin/internal/config"
	"github.com/NikamRenuka/cabadmin/internal/dispatch"
	"github.com/NikamRenuka/cabadmin/internal/httpapi"
	"github.com/NikamRenuka/cabadmin/internal/logging"
	"github.com/NikamRenuka/cabadmin/internal/notify"
	"github.com/NikamRenuka/cabadmin/internal/payments"
	"github.com/NikamRenuka/cabadmin/internal/rates"
	"github.com/NikamRenuka/cabadmin/internal/session"
	"github.com/NikamRenuka/cabadmin/internal/storage"
	"github.com/NikamRenuka/cabadmin/internal/upstream"
)

func main() {
	cfg, err := config.LoadServerConfig()
	logger := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		logger.Error("bad configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := upstream.NewClient(cfg.UpstreamBaseURL, cfg.UpstreamTimeout)
	wsreg := dispatch.NewWSRegistry(logging.ForComponent(logger, "ws"))

	var producer *audit.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = audit.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer producer.Close()
	}

	sync := bookings.NewSynchronizer(client)
	sync.Dispatch = wsreg
	if producer != nil {
		sync.Audit = producer
	}
	go func() {
		if err := sync.Load(ctx); err != nil {
			logger.Error("initial booking load failed", "error", err)
		}
	}()

	editor := rates.NewEditor(client, rates.Options{
		QuietPeriod: cfg.SaveQuietPeriod,
		ResetDelay:  cfg.StatusResetDelay,
		Logger:      logging.ForComponent(logger, "rates"),
	})
	defer editor.Close()
	go func() {
		if err := editor.Load(ctx); err != nil {
			logger.Error("initial rates load failed", "error", err)
		}
	}()

	poller := notify.NewPoller(client, cfg.PollInterval, logging.ForComponent(logger, "notify"))
	poller.Broadcast = wsreg
	go poller.Run(ctx)

	var sessions session.Store
	if cfg.RedisAddr != "" {
		sessions = session.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.SessionTTL)
	} else {
		sessions = session.NewMemoryStore(cfg.SessionTTL)
	}

	var payStore storage.PaymentStore
	switch {
	case cfg.StripeKey != "":
		payStore = payments.NewStripeLister(cfg.StripeKey)
	case cfg.PGDSN != "":
		ps, err := storage.NewPostgresStore(cfg.PGDSN)
		if err != nil {
			logger.Error("postgres unavailable, using memory payments", "error", err)
			payStore = storage.NewMemoryStore()
		} else {
			defer ps.Close()
			payStore = ps
		}
	default:
		payStore = storage.NewMemoryStore()
	}

	srv := httpapi.NewServer(httpapi.Deps{
		Bookings:      sync,
		Rates:         editor,
		Notifications: poller,
		Upstream:      client,
		Sessions:      sessions,
		Payments:      payStore,
		WSReg:         wsreg,
		Logger:        logger,
	})

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      srv,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	go func() {
		logger.Info("cabadmin gateway listening", "addr", cfg.HTTPAddr, "upstream", cfg.UpstreamBaseURL)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}
