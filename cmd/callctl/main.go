package main

import (
	"context"

	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/chatlite/callkit/call"
	"github.com/chatlite/callkit/client"
	"github.com/chatlite/callkit/internal/config"
	"github.com/chatlite/callkit/internal/log"
	"github.com/chatlite/callkit/internal/validation"
	"github.com/chatlite/callkit/internal/workflow"
	"github.com/chatlite/callkit/permission"
	"github.com/chatlite/callkit/rtc/ws"
	"github.com/chatlite/callkit/token"
)

type Config struct {
	App       config.App    `mapstructure:"app"`
	Client    client.Config `mapstructure:"client"`
	Signaling ws.Config     `mapstructure:"signaling"`

	TokenURL    string `mapstructure:"token_url" validate:"required,url"`
	TokenAPIKey string `mapstructure:"token_api_key"`

	UserID      string   `mapstructure:"user_id" validate:"userid"`
	DisplayName string   `mapstructure:"display_name"`
	CallID      string   `mapstructure:"call_id" validate:"callid"`
	Members     []string `mapstructure:"members"`
}

func loadConfig() (*Config, error) {
	cfg, err := config.Load(&Config{}, func(v *viper.Viper) {
		v.SetDefault("token_url", "http://localhost:8080/token")
		v.SetDefault("display_name", "")

		config.Setup(v, "app")
		client.Setup(v, "client")
		ws.Setup(v, "signaling")

		// override default addr to ease testing
		v.SetDefault("signaling.url", "ws://localhost:8081/ws")
	})
	if err != nil {
		return nil, err
	}
	if err := validation.Struct(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		if fields := validation.FormatValidationError(err); len(fields) > 0 {
			log.Fatal("Invalid configuration: ", fields[0].Message)
		}
		log.Fatal("Failed to load configuration: ", err)
	}

	logger := log.New()
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting callctl...")

	backend := ws.New(cfg.Signaling, logger.Module("Signaling"))
	provider := token.NewHTTPProvider(cfg.TokenURL, cfg.TokenAPIKey, logger.Module("Token"))
	c := client.New(cfg.Client, provider, permission.AllGranted(), backend, logger.Module("Client"))

	ctx := context.Background()
	if err := c.Start(ctx, cfg.UserID, cfg.DisplayName); err != nil {
		logger.Fatal("Failed to start session", log.Error(err))
	}

	events, stopEvents := c.Snapshots(32)
	consumerCtx, stopConsumer := context.WithCancel(ctx)

	g, gctx := errgroup.WithContext(consumerCtx)
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case ev := <-events:
				logger.Info("Session update",
					log.String("kind", ev.Kind.String()),
					log.String("callId", ev.Session.CallID),
					log.String("status", ev.Session.Status.String()),
					log.Strings("members", ev.Session.Members),
					log.String("camera", ev.Session.Tracks.Camera.String()),
					log.String("microphone", ev.Session.Tracks.Microphone.String()),
				)
				if ev.Kind == call.EventStatusChange && ev.Session.Status.Terminal() {
					return nil
				}
			}
		}
	})

	if err := c.StartCall(ctx, cfg.CallID, cfg.Members); err != nil {
		logger.Fatal("Failed to start call", log.Error(err))
	}

	cleanup := func(ctx context.Context) {
		stopEvents()
		stopConsumer()
		if err := c.Shutdown(ctx); err != nil {
			logger.Warn("Shutdown incomplete", log.Error(err))
		}
		_ = g.Wait()
	}
	workflow.WaitGracefulShutdown(ctx, logger.Module("Shutdown"), cleanup, cfg.App.ShutdownTimeout)
}
