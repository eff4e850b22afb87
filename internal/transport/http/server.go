package http

import (
	"time"

	"github.com/gin-gonic/gin"

	appsvc "docuchat/internal/app"
	"docuchat/internal/bootstrap"
	"docuchat/internal/cache"
	"docuchat/internal/extract"
	"docuchat/internal/pkg/textproc"
	"docuchat/internal/repository"
	"docuchat/internal/transport/http/handler"
	"docuchat/internal/transport/http/middleware"
	"docuchat/internal/vector"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	userRepo := repository.NewUserRepository(app.MySQL)
	docRepo := repository.NewDocumentRepository(app.MySQL)
	fragRepo := repository.NewFragmentRepository(app.MySQL)
	turnRepo := repository.NewConversationTurnRepository(app.MySQL)

	authService := appsvc.NewAuthService(
		userRepo,
		app.Config.Auth.JWTSecret,
		time.Duration(app.Config.Auth.JWTExpireMinute)*time.Minute,
	)

	splitter := textproc.Splitter{
		ChunkSize:      app.Config.RAG.ChunkSize,
		Overlap:        app.Config.RAG.ChunkOverlap,
		MinChunkSize:   app.Config.RAG.MinChunkSize,
		MaxChunkSize:   app.Config.RAG.MaxChunkSize,
		KeepSeparators: true,
	}
	ingestService := appsvc.NewIngestService(
		app.MySQL,
		userRepo,
		docRepo,
		fragRepo,
		extract.NewExtractor(),
		app.Blobs,
		app.Embedder,
		app.CleanupPub,
		splitter,
		app.Config.LLM.EmbeddingDimension,
		app.Logger,
	)

	historyCache := cache.NewHistoryCache(
		app.Redis,
		time.Duration(app.Config.Redis.HistoryTTLSeconds)*time.Second,
		time.Duration(app.Config.Redis.HistoryDirtyTTLSeconds)*time.Second,
	)
	chatService := appsvc.NewChatService(
		app.MySQL,
		userRepo,
		docRepo,
		turnRepo,
		vector.NewStore(fragRepo),
		historyCache,
		app.Embedder,
		app.Generator,
		app.Config.RAG.TopK,
		app.Config.RAG.HistoryWindow,
		app.Logger,
	)

	authHandler := handler.NewAuthHandler(authService)
	documentHandler := handler.NewDocumentHandler(ingestService)
	chatHandler := handler.NewChatHandler(chatService)

	v1 := router.Group("/api/v1")
	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", middleware.AuthJWT(app.Config.Auth.JWTSecret), authHandler.Me)

	docGroup := v1.Group("/documents")
	docGroup.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))
	docGroup.POST("", documentHandler.Upload)
	docGroup.GET("", documentHandler.List)
	docGroup.DELETE("/:id", documentHandler.Delete)

	chatGroup := v1.Group("/chat")
	chatGroup.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))
	chatGroup.POST("/ask", chatHandler.Ask)
	chatGroup.GET("/history", chatHandler.GetHistory)

	return router
}
