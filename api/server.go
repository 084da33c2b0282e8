package api

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/muingY/gif-compressor-backend/api/controllers"
	"github.com/muingY/gif-compressor-backend/api/middlewares"
	"github.com/muingY/gif-compressor-backend/api/notifyhub"
	"github.com/muingY/gif-compressor-backend/notify"
	"github.com/muingY/gif-compressor-backend/tool"
	"github.com/muingY/gif-compressor-backend/types"
)

// RoutePrefix is where every endpoint of the service is mounted.
const RoutePrefix = "/api/gif-compressor"

// Server represents the HTTP API server of the compressor
type Server struct {
	cfg     types.AppConfig
	handler types.HandlerInterface
	hub     *notifyhub.Hub
	engine  *gin.Engine
	server  *http.Server
	mu      sync.RWMutex
}

// NewServer creates a new API server instance. hub may be nil to disable the notify websocket.
func NewServer(cfg types.AppConfig, handler types.HandlerInterface, hub *notifyhub.Hub) *Server {
	return &Server{
		cfg:     cfg,
		handler: handler,
		hub:     hub,
	}
}

// Routes builds the gin engine with every endpoint registered.
func (s *Server) Routes() *gin.Engine {
	if tool.DefaultLogger.GetLevel() == log.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery())

	// Initialize controllers
	compressCtrl := controllers.NewCompressController(s.handler)
	sessionCtrl := controllers.NewSessionController(s.handler)
	downloadCtrl := controllers.NewDownloadController(s.handler)

	group := engine.Group(RoutePrefix)
	{
		group.GET("/check-session", sessionCtrl.HandleCheckSession)
		group.POST("/compress", middlewares.RateLimit(s.cfg.RateLimitPerSec, s.cfg.RateLimitBurst), compressCtrl.HandleCompress)
		group.GET("/download", downloadCtrl.HandleDownload)
		group.GET("/analytics", downloadCtrl.HandleAnalytics)
		group.GET("/status", sessionCtrl.HandleStatus)
		if s.hub != nil && s.cfg.NotifyWebsocket && notify.UseNotify {
			group.GET("/notify-ws", middlewares.OnlyAllowLocal, notifyhub.HandleNotifyWS(s.hub))
		}
	}
	return engine
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	engine := s.Routes()
	address := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))

	s.mu.Lock()
	s.engine = engine
	s.server = &http.Server{
		Addr:              address,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	server := s.server
	s.mu.Unlock()

	tool.DefaultLogger.Infof("Starting API server on %s://%s", s.cfg.Protocol, address)

	var err error
	if s.cfg.Protocol == "https" {
		cert, generated, certErr := tool.GetOrCreateTLSCert(&s.cfg)
		if certErr != nil {
			return fmt.Errorf("failed to get TLS certificate: %w", certErr)
		}
		if generated {
			if saveErr := tool.SaveConfig(s.cfg); saveErr != nil {
				tool.DefaultLogger.Warnf("Generated certificate not persisted: %v", saveErr)
			}
		}
		s.mu.Lock()
		server.TLSConfig = &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		}
		s.mu.Unlock()
		err = server.ListenAndServeTLS("", "")
	} else {
		err = server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen on %s: %w", address, err)
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	server := s.server
	s.mu.RUnlock()
	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}
