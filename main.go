package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"gostudio/api"
	"gostudio/auth"
	"gostudio/cache"
	"gostudio/config"
	"gostudio/logger"
	"gostudio/notify"
	"gostudio/stream"
	"gostudio/token"
)

func main() {
	log := logger.GetLogger()

	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load config
	cfg := config.GetConfig()
	if cfg.Debug {
		log.EnableDebug()
	}

	// Token file is the only persisted state
	tokenStore, err := token.NewFileStore(cfg.Studio.TokenFile)
	if err != nil {
		log.Fatal("Failed to initialize token store", map[string]interface{}{
			"error": err.Error(),
			"path":  cfg.Studio.TokenFile,
		})
	}

	authClient := auth.NewClient(cfg.Studio.BaseURL)
	gameState := cache.NewGameState()

	dispatcher := notify.NewDispatcher(cfg.Notify.NoticeList, map[string]notify.Sender{
		"telegram": notify.NewTelegramNotifier(cfg.Telegram.BotToken),
		"console":  notify.NewConsoleNotifier(),
	})

	controller := stream.NewController(stream.Options{
		BaseURL:  cfg.Studio.BaseURL,
		Email:    cfg.Studio.Email,
		Password: cfg.Studio.Password,
		Auth:     authClient,
		Tokens:   tokenStore,
		State:    gameState,
		Notifier: dispatcher,
	})

	// Status query surface
	var apiServer *api.Server
	if cfg.API.Enabled {
		apiServer = api.NewServer(cfg.API.Port, gameState, controller)
		if err := apiServer.Start(ctx); err != nil {
			log.Fatal("Failed to start API server", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	// Run the reconnect loop in the background
	done := make(chan struct{})
	go func() {
		controller.Run(ctx)
		close(done)
	}()

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	log.Info("Received shutdown signal", map[string]interface{}{
		"signal": sig.String(),
	})

	// Cancel context to initiate shutdown and wait for the stream to
	// wind down
	cancel()
	<-done

	if apiServer != nil {
		apiServer.Shutdown()
	}

	log.Info("Shutdown complete", nil)
}
