package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aquamarinepk/aqm"

	"github.com/voicedesk/voicedesk/internal/app"
)

const (
	appNamespace = "VOICEDESK"
	appName      = "voicedesk"
	appVersion   = "0.1.0"
)

func main() {
	config, err := aqm.LoadConfig(appNamespace, os.Args[1:])
	if err != nil {
		log.Fatalf("Cannot setup %s(%s): %v", appName, appVersion, err)
	}

	logLevel, _ := config.GetString("log.level")
	logger := aqm.NewLogger(logLevel)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer stop()

	a := app.New(config, logger)

	// A gateway with no order dataset cannot serve any tool call, so a
	// load failure aborts startup instead of serving empty state.
	if err := a.Initialize(ctx); err != nil {
		log.Fatalf("%s(%s) cannot start: %v", appName, appVersion, err)
	}

	if err := a.Run(ctx); err != nil {
		log.Fatalf("%s(%s) stopped with error: %v", appName, appVersion, err)
	}
}
