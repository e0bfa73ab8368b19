/*
Copyright © 2025 nishcheyk
*/
package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/nishcheyk/infinity-workspace/config"
	"github.com/nishcheyk/infinity-workspace/database"
	"github.com/nishcheyk/infinity-workspace/handler"
	"github.com/nishcheyk/infinity-workspace/middleware"
	"github.com/nishcheyk/infinity-workspace/repository"
	"github.com/nishcheyk/infinity-workspace/service"
)

// startServerCmd represents the startServer command
var startServerCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the document intelligence server",
	Long:  `Starts the HTTP and websocket server and the ingestion workers`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		if cfg.UploadDir == "" {
			cfg.UploadDir = filepath.Join(os.TempDir(), "infinity_uploads")
		}

		mongoClient, err := database.NewMongoClient(context.Background(), cfg.MongoURI)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		mongoDb := mongoClient.Database(cfg.DatabaseName)

		// Chat and embedding clients are built once here and injected;
		// nothing below constructs its own. The vector store takes its
		// dimension from the embedder so the two can never diverge.
		embedder := service.NewOpenAIEmbedder(
			cfg.EmbeddingConfig.Endpoint,
			cfg.AIConfig.APIKey,
			cfg.EmbeddingConfig.Model,
			cfg.EmbeddingConfig.Dimension,
		)

		weaviateDb, err := database.NewWeaviateStore(cfg.WeaviateStoreConfig, embedder.Dimension())
		if err != nil {
			log.Fatalf("Failed to connect to Weaviate database: %v", err)
		}
		if err := weaviateDb.EnsureCollection(context.Background()); err != nil {
			log.Fatalf("Failed to prepare vector collection: %v", err)
		}

		// init repos
		userRepo := repository.NewUserRepo(mongoDb.Collection("users"))
		documentRepo := repository.NewDocumentRepo(mongoDb)
		chatRepo := repository.NewChatRepo(mongoDb)
		var aiService service.AIService
		switch cfg.AIConfig.Provider {
		case "gemini":
			aiService, err = service.NewGeminiService(cfg.AIConfig.GeminiAPIKeys, cfg.AIConfig.Model)
			if err != nil {
				log.Fatalf("Failed to create Gemini client: %v", err)
			}
		default:
			aiService = service.NewOpenAIService(cfg.AIConfig.Endpoint, cfg.AIConfig.APIKey, cfg.AIConfig.Model)
		}

		// init services
		hub := service.NewHub()
		userService := service.NewUserService(userRepo)
		extractor := service.NewUnstructuredExtractor(cfg.IngestConfig.UnstructuredURL)
		scraper := service.NewChromeScraper(time.Duration(cfg.IngestConfig.ScrapeTimeout) * time.Second)
		ingestService, err := service.NewIngestService(
			documentRepo, weaviateDb, embedder, extractor, scraper, hub,
			cfg.IngestConfig.Workers,
		)
		if err != nil {
			log.Fatalf("Failed to create ingestion workers: %v", err)
		}
		defer ingestService.Close()
		retrievalService := service.NewRetrievalService(weaviateDb, embedder, documentRepo)
		chatService := service.NewChatService(retrievalService, aiService, chatRepo)

		if err := ingestService.Recover(context.Background()); err != nil {
			log.Fatalf("Failed to recover interrupted documents: %v", err)
		}

		// Initialize handlers
		corsHandler := handler.NewCorsHandler()
		authHandler := handler.NewAuthHandler(userService)
		documentHandler := handler.NewDocumentHandler(documentRepo, ingestService, cfg.UploadDir)
		sessionHandler := handler.NewSessionHandler(chatRepo)
		wsHandler := handler.NewWSHandler(hub, chatService)

		// Setup Gin router
		router := gin.Default()
		router.Use(corsHandler.CorsMiddleware)

		router.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
		router.GET("/ws", wsHandler.ServeWS)

		apiV1 := router.Group("/api/v1")
		apiV1.POST("/auth/signup", authHandler.SignupHandler)
		apiV1.POST("/auth/login", authHandler.LoginHandler)
		apiV1.POST("/auth/refresh", authHandler.RefreshHandler)

		// Protected routes
		authed := apiV1.Group("/")
		authed.Use(middleware.AuthMiddleware())
		{
			authed.GET("/auth/me", authHandler.MeHandler)

			authed.POST("/ingestion/upload", documentHandler.UploadHandler)
			authed.POST("/ingestion/scrape", documentHandler.ScrapeHandler)
			authed.GET("/documents", documentHandler.ListDocumentsHandler)
			authed.DELETE("/documents/:id", documentHandler.DeleteDocumentHandler)

			authed.POST("/chats", sessionHandler.CreateSessionHandler)
			authed.GET("/chats", sessionHandler.ListSessionsHandler)
			authed.GET("/chats/:id/history", sessionHandler.HistoryHandler)
			authed.DELETE("/chats/:id", sessionHandler.DeleteSessionHandler)
		}

		fmt.Printf("Starting server on port %s...\n", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("Server error:", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(startServerCmd)
	startServerCmd.Flags().StringP("config", "c", "config/config.yaml", "config file")
}
