package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"mcp-chatbot/internal/config"
	"mcp-chatbot/internal/features/chat/application"
	"mcp-chatbot/internal/features/chat/infrastructure"
	chat_http "mcp-chatbot/internal/features/chat/presentation/http"
	config_http "mcp-chatbot/internal/features/config/presentation/http"
	tools_application "mcp-chatbot/internal/features/tools/application"
	tools_http "mcp-chatbot/internal/features/tools/presentation/http"
	"mcp-chatbot/internal/logger"
	"mcp-chatbot/internal/mcp"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	zlog := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to the MCP server before serving. A chatbot without its tool
	// server is useless, so a failed connect aborts startup.
	session, err := mcp.Connect(ctx, cfg.MCP, zlog)
	if err != nil {
		zlog.Fatal("Failed to connect to MCP server", zap.Error(err))
	}
	defer session.Close()

	provider, err := infrastructure.NewProvider(&cfg.LLM)
	if err != nil {
		zlog.Fatal("Failed to create LLM provider", zap.Error(err))
	}

	transcript := infrastructure.NewTranscriptWriter(cfg.ConversationDir)

	// Initialize services
	chatService := application.NewChatService(session, provider, transcript, zlog)
	toolsService := tools_application.NewToolsService(session)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"*"},
	}))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	toolsHandler := tools_http.NewToolsHandler(toolsService)
	r.GET("/tools", toolsHandler.ListToolsHandler)
	r.POST("/tool", toolsHandler.CallToolHandler)

	chatHandler := chat_http.NewChatHandler(chatService)
	r.POST("/query", chatHandler.ProcessQueryHandler)

	r.GET("/config", config_http.NewAppConfigHandler(cfg).GetAppConfigHandler)

	srv := &http.Server{
		Addr:    cfg.BackendAddr,
		Handler: r,
	}

	go func() {
		zlog.Info("Backend listening", zap.String("addr", cfg.BackendAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("Server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Warn("Graceful shutdown failed", zap.Error(err))
	}
}
