package app

import (
	"context"
	"fmt"

	"github.com/aquamarinepk/aqm"
	aqmevents "github.com/aquamarinepk/aqm/events"
	"github.com/aquamarinepk/aqm/middleware"

	"github.com/voicedesk/voicedesk/internal/events"
	"github.com/voicedesk/voicedesk/internal/gateway"
	"github.com/voicedesk/voicedesk/internal/store"
	"github.com/voicedesk/voicedesk/pkg"
)

const (
	AppName    = "voicedesk"
	AppVersion = "0.1.0"
)

// App encapsulates the function-tool gateway service.
type App struct {
	config *aqm.Config
	logger aqm.Logger
	micro  *aqm.Micro
	store  *store.Store
}

func New(config *aqm.Config, logger aqm.Logger) *App {
	return &App{
		config: config,
		logger: logger,
	}
}

// Initialize sets up all dependencies and components. The order dataset is
// loaded here; failure aborts startup before any listener is opened.
func (a *App) Initialize(ctx context.Context) error {
	a.store = store.New(a.logger)

	datasetPath := a.config.GetStringOrDef("dataset.path", "data/orders.json")
	if err := a.store.Load(datasetPath); err != nil {
		return fmt.Errorf("cannot load order dataset: %w", err)
	}

	natsURL, _ := a.config.GetString("nats.url")

	var publisher aqmevents.Publisher
	var lifecycles []interface{}

	if natsURL != "" {
		pub, err := pkg.NewNATSPublisher(natsURL)
		if err != nil {
			return err
		}
		publisher = pub
		lifecycles = append(lifecycles, aqm.LifecycleHooks{
			OnStop: func(context.Context) error { return pub.Close() },
		})
	}

	tools := gateway.NewTools(a.store, publisher, a.logger)

	// The NATS call channel mirrors the HTTP dispatch surface; it is only
	// wired when a broker is configured.
	if natsURL != "" {
		responder, err := pkg.NewNATSResponder(natsURL)
		if err != nil {
			return err
		}
		callSubscriber := events.NewCallSubscriber(responder, tools, a.logger)
		lifecycles = append(lifecycles, callSubscriber, aqm.LifecycleHooks{
			OnStop: func(context.Context) error { return responder.Close() },
		})
	}

	handler := gateway.NewHandler(tools, a.store, a.config, a.logger)

	// The agent platform calls from another origin, so CORS stays enabled.
	stack := middleware.DefaultStack(middleware.StackOptions{
		Logger: a.logger,
	})

	options := []aqm.Option{
		aqm.WithConfig(a.config),
		aqm.WithLogger(a.logger),
		aqm.WithHTTPMiddleware(stack...),
		aqm.WithHTTPServerModules("web.port", handler),
		aqm.WithLifecycle(lifecycles...),
		aqm.WithHealthChecks(AppName),
	}

	a.micro = aqm.NewMicro(options...)
	return nil
}

// Run starts the service and blocks until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.logger.Infof("Starting %s(%s)", AppName, AppVersion)
	if err := a.micro.Run(ctx); err != nil {
		return err
	}
	a.logger.Infof("%s(%s) stopped", AppName, AppVersion)
	return nil
}
