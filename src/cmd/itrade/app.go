package main

import (
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/SmooSenseAI/itrade/src/broker"
	"github.com/SmooSenseAI/itrade/src/config"
	"github.com/SmooSenseAI/itrade/src/credentials"
	"github.com/SmooSenseAI/itrade/src/eventmodels"
	"github.com/SmooSenseAI/itrade/src/eventpubsub"
	"github.com/SmooSenseAI/itrade/src/gateway"
	"github.com/SmooSenseAI/itrade/src/logger"
	"github.com/SmooSenseAI/itrade/src/session"
	"github.com/SmooSenseAI/itrade/src/utils"
)

type App struct {
	Config   *config.Config
	Store    *credentials.Store
	Registry *session.Registry
	Bus      *eventpubsub.Bus
	Service  *gateway.Service
}

// loadApp reads the environment files and configuration named by the root
// flags and wires the gateway together.
func loadApp(cmd *cobra.Command) (*App, error) {
	envDir, _ := cmd.Flags().GetString("env-dir")
	goEnv, _ := cmd.Flags().GetString("go-env")
	configPath, _ := cmd.Flags().GetString("config")

	if err := utils.InitEnvironmentVariables(envDir, goEnv); err != nil {
		return nil, err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if err := logger.Setup(cfg.Logging.Level, cfg.Logging.Format, nil); err != nil {
		return nil, err
	}

	authFile := cfg.Auth.File
	if authFile == "" {
		if authFile, err = credentials.DefaultPath(); err != nil {
			return nil, err
		}
	}

	httpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   time.Duration(cfg.ETrade.HTTPTimeoutSeconds) * time.Second,
	}

	store := credentials.NewStore(authFile)
	registry := session.NewRegistry(store)
	bus := eventpubsub.NewBus()
	client := broker.NewETradeClient(cfg.ETrade.BaseURL(), httpClient)
	if cfg.ETrade.AuthorizeURL != "" {
		client = client.WithAuthorizeURL(cfg.ETrade.AuthorizeURL)
	}

	if err := subscribeAuditLog(bus); err != nil {
		return nil, err
	}

	service := gateway.NewService(registry, store, client, cfg.APIKeys, gateway.WithEventBus(bus))

	log.Debugf("broker %s, credential cache %s", cfg.ETrade.BaseURL(), authFile)

	return &App{
		Config:   cfg,
		Store:    store,
		Registry: registry,
		Bus:      bus,
		Service:  service,
	}, nil
}

func subscribeAuditLog(bus *eventpubsub.Bus) error {
	const name = "audit"

	subscriptions := map[eventmodels.EventName]interface{}{
		eventpubsub.SessionAuthenticated: func(ev eventmodels.SessionAuthenticatedEvent) {
			log.WithFields(log.Fields{"sessionId": ev.SessionID, "restored": ev.Restored}).Info("session authenticated")
		},
		eventpubsub.SessionInvalidated: func(ev eventmodels.SessionInvalidatedEvent) {
			log.WithFields(log.Fields{"sessionId": ev.SessionID, "reason": ev.Reason}).Warn("session invalidated")
		},
		eventpubsub.OrderPlaced: func(ev eventmodels.OrderPlacedEvent) {
			log.WithFields(log.Fields{"account": ev.AccountKey, "spread": ev.Spread, "legs": ev.Legs}).Info("order placed")
		},
		eventpubsub.OrderCancelled: func(ev eventmodels.OrderCancelledEvent) {
			log.WithFields(log.Fields{"account": ev.AccountKey, "orderId": ev.OrderID}).Info("order cancelled")
		},
	}

	for topic, fn := range subscriptions {
		if err := bus.Subscribe(name, topic, fn); err != nil {
			return fmt.Errorf("subscribeAuditLog: %w", err)
		}
	}

	return nil
}
