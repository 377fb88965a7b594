package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/quickbites/orderhub/internal/adapter/auth"
	"github.com/quickbites/orderhub/internal/adapter/config"
	"github.com/quickbites/orderhub/internal/adapter/consumer"
	"github.com/quickbites/orderhub/internal/adapter/handler/http"
	"github.com/quickbites/orderhub/internal/adapter/logger"
	"github.com/quickbites/orderhub/internal/adapter/notifier"
	"github.com/quickbites/orderhub/internal/adapter/storage"
	"github.com/quickbites/orderhub/internal/adapter/storage/memory"
	"github.com/quickbites/orderhub/internal/adapter/storage/repository"
	"github.com/quickbites/orderhub/internal/core/port"
	"github.com/quickbites/orderhub/internal/core/service"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	conf, err := config.NewConfig()
	if err != nil {
		fmt.Printf("config error:%s", err)
		return
	}

	log := logger.NewLogger(conf.App)
	if log == nil {
		fmt.Printf("error creating log")
		return
	}
	defer func() {
		err := log.Sync()
		if err != nil {
			fmt.Printf("log error: %s", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var repo port.Repository
	if conf.Database.DSN == "" {
		log.Warn("no database configured, using in-memory storage")
		repo = memory.NewRepository()
	} else {
		db, err := storage.NewDBStorage(ctx, conf.Database)
		if err != nil {
			log.Error("database error", zap.Error(err))
			return
		}
		err = db.RunMigrations()
		if err != nil {
			log.Error("database migration error", zap.Error(err))
			return
		}
		repo, err = repository.NewRepository(db)
		if err != nil {
			log.Error("repository creating error", zap.Error(err))
			return
		}
	}

	hub := notifier.NewHub(log.Named("Hub"))

	svc, err := service.NewService(repo, hub, log.Named("Service"))
	if err != nil {
		log.Error("service creating error", zap.Error(err))
		return
	}

	if conf.Auth.TokenKey == "" {
		log.Warn("no token key configured, minting an ephemeral key")
	}
	tokenService, err := auth.New(conf.Auth.TokenKey)
	if err != nil {
		log.Error("token service creating error", zap.Error(err))
		return
	}

	orderHandler, err := http.NewOrderHandler(svc, log.Named("Order handler"))
	if err != nil {
		log.Error("order handler creating error", zap.Error(err))
		return
	}
	walletHandler, err := http.NewWalletHandler(svc, log.Named("Wallet handler"))
	if err != nil {
		log.Error("wallet handler creating error", zap.Error(err))
		return
	}

	r, err := http.NewRouter(conf.HTTP, tokenService, orderHandler, walletHandler,
		hub, http.NewHandler(log.Named("Router")))
	if err != nil {
		log.Error("router creating error", zap.Error(err))
		return
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return hub.Run(ctx)
	})

	if conf.AMQP.URL == "" {
		log.Warn("no AMQP broker configured, payment events will not be consumed")
	} else {
		payments, err := consumer.NewPaymentConsumer(conf.AMQP, svc, log.Named("Payments"))
		if err != nil {
			log.Error("payment consumer creating error", zap.Error(err))
			return
		}
		defer func() { _ = payments.Close() }()

		g.Go(func() error {
			return payments.Start(ctx)
		})
	}

	g.Go(func() error {
		return r.Serve(ctx, conf.HTTP.HostString)
	})

	if err := g.Wait(); err != nil {
		log.Error("shutdown with error", zap.Error(err))
	}
}
