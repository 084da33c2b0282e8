package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/muingY/gif-compressor-backend/api"
	"github.com/muingY/gif-compressor-backend/api/models"
	"github.com/muingY/gif-compressor-backend/api/notifyhub"
	"github.com/muingY/gif-compressor-backend/notify"
	"github.com/muingY/gif-compressor-backend/tool"
)

func main() {
	flags := tool.SetFlags()

	// initialize logger
	tool.InitLogger()
	tool.SetLogMode(flags.Log)

	appCfg, err := tool.LoadConfig(flags.UseConfigPath)
	if err != nil {
		tool.DefaultLogger.Fatalf("%v", err)
	}
	tool.ApplyFlags(&appCfg, flags)
	if err := tool.ValidateConfig(&appCfg); err != nil {
		tool.DefaultLogger.Fatalf("Invalid config: %v", err)
	}

	// sessions do not survive a restart, neither do their files
	if err := tool.ResetFolder(appCfg.GifFolder); err != nil {
		tool.DefaultLogger.Fatalf("Failed to prepare gif folder %s: %v", appCfg.GifFolder, err)
	}

	ttl := tool.SessionTTL(&appCfg)
	models.SetResultTTL(ttl)
	registry := models.NewSessionRegistry()

	var hub *notifyhub.Hub
	if appCfg.NotifyWebsocket {
		hub = notifyhub.New()
		notify.SetHub(hub)
	} else {
		notify.SetUseNotify(false)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go models.StartSessionCleanupTask(ctx, registry, appCfg.GifFolder, ttl, tool.CleanupInterval(&appCfg))

	handler := api.NewHandler(appCfg, registry)
	apiServer := api.NewServer(appCfg, handler, hub)
	go func() {
		if err := apiServer.Start(); err != nil {
			tool.DefaultLogger.Fatalf("API server startup failed: %v", err)
		}
	}()

	<-ctx.Done()
	tool.DefaultLogger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		tool.DefaultLogger.Errorf("Failed to shutdown server: %v", err)
	}
}
