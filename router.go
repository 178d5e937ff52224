package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mnemon/mnemon/pkg/config"
	"github.com/mnemon/mnemon/pkg/handler"
	"github.com/mnemon/mnemon/pkg/history"
	"github.com/mnemon/mnemon/pkg/service"
	"github.com/mnemon/mnemon/pkg/utils"
)

type Server struct {
	ginEngine *gin.Engine
	logger    *slog.Logger
	cfg       *config.AppConfig
	store     *history.Store
	port      int
	serveErr  chan error
}

func NewServer(cfg *config.AppConfig) (*Server, error) {
	ginEngine := gin.New()
	ginEngine.Use(gin.Recovery())

	server := &Server{
		ginEngine: ginEngine,
		logger:    utils.GetLogger(),
		cfg:       cfg,
		serveErr:  make(chan error, 1),
	}
	if err := server.setupRoutes(); err != nil {
		return nil, err
	}
	return server, nil
}

func (s *Server) setupRoutes() error {
	dataDir := s.cfg.DataDir()

	store, err := history.Open(filepath.Join(dataDir, "conversations"), s.cfg.CountdownPeriod(), s.cfg.KeepRecent())
	if err != nil {
		return fmt.Errorf("failed to open conversation store: %w", err)
	}
	s.store = store

	promptService := service.NewPromptService(filepath.Join(dataDir, "prompts.json"))
	providerService := service.NewProviderService(filepath.Join(dataDir, "providers.json"))
	keyService, err := service.NewAPIKeyService(filepath.Join(dataDir, "api_key"))
	if err != nil {
		return fmt.Errorf("failed to initialize api key: %w", err)
	}

	relayService := service.NewRelayService(providerService, s.cfg.RelayTimeout())
	store.SetCompactor(service.NewCompactService(relayService, s.cfg.KeepRecent()))

	assembler := service.NewContextAssembler(store, promptService, s.cfg.MemoryWindow())
	chatService := service.NewChatService(store, assembler, relayService)

	s.ginEngine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// All functional routes live under /v1 behind the access key.
	v1 := s.ginEngine.Group("/v1")
	v1.Use(handler.RequireAPIKey(keyService))

	handler.NewPromptHandler(promptService).RegisterRoutes(v1)
	handler.NewProviderHandler(providerService).RegisterRoutes(v1)
	handler.NewChatHandler(store, chatService).RegisterRoutes(v1)

	return nil
}

func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host(), s.cfg.Port())
	srv := &http.Server{Addr: addr, Handler: s.ginEngine}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return err
	}
	if tcpAddr, ok := ln.Addr().(*net.TCPAddr); ok {
		s.port = tcpAddr.Port
	}
	s.logger.Info("listening", "addr", ln.Addr().String())

	go func() {
		err := srv.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.serveErr <- err
		}
		close(s.serveErr)
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	return nil
}

// Err reports a serve failure after a successful Start. The channel closes
// when the listener stops, with the error first if there was one.
func (s *Server) Err() <-chan error {
	return s.serveErr
}

func (s *Server) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
