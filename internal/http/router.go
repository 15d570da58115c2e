package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/learnsphere-backend/internal/http/handlers"
	httpMW "github.com/yungbote/learnsphere-backend/internal/http/middleware"
	"github.com/yungbote/learnsphere-backend/internal/observability"
	"github.com/yungbote/learnsphere-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Verbose        bool
	ServiceName    string
	AllowedOrigins []string
	Metrics        *observability.Metrics

	AuthHandler    *httpH.AuthHandler
	AuthMiddleware *httpMW.AuthMiddleware

	DocumentHandler *httpH.DocumentHandler
	QuizHandler     *httpH.QuizHandler
	TodoHandler     *httpH.TodoHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))
	r.Use(httpMW.ErrorHandler(cfg.Log, cfg.Verbose))

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	// The SPA calls both the bare and the /api prefixed paths.
	mount(r.Group("/"), cfg)
	mount(r.Group("/api"), cfg)
	return r
}

func mount(g *gin.RouterGroup, cfg RouterConfig) {
	// Auth (public)
	if cfg.AuthHandler != nil {
		g.POST("/auth/register", cfg.AuthHandler.Register)
		g.POST("/auth/login", cfg.AuthHandler.Login)
		// refresh is authenticated by the refresh token itself
		g.POST("/auth/refresh", cfg.AuthHandler.Refresh)
	}

	protected := g.Group("/")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.RequireAuth())
	}

	if cfg.AuthHandler != nil {
		protected.GET("/auth/me", cfg.AuthHandler.Me)
		protected.POST("/auth/logout", cfg.AuthHandler.Logout)
	}

	if h := cfg.DocumentHandler; h != nil {
		protected.POST("/documents/upload", h.Upload)
		protected.GET("/documents", h.List)
		protected.GET("/documents/:id", h.Get)
		protected.DELETE("/documents/:id", h.Delete)
		protected.POST("/documents/process", h.Process)
		protected.POST("/documents/mindmap/:id", h.GenerateMindMap)
		protected.PUT("/documents/mindmap/:id", h.SaveMindMap)
		protected.GET("/documents/mindmap/:id/image", h.MindMapImage)
		protected.POST("/documents/quiz/submit", h.SubmitQuiz)
		protected.GET("/documents/:id/roadmap/progress", h.RoadmapProgress)
		protected.PUT("/documents/:id/roadmap/progress", h.ToggleLesson)
		protected.GET("/documents/:id/roadmap/export", h.ExportRoadmap)
	}

	if h := cfg.QuizHandler; h != nil {
		protected.POST("/quizzes/phase", h.CreatePhase)
		protected.POST("/quizzes/final", h.CreateFinal)
		protected.POST("/quizzes/:id/submit", h.Submit)
		protected.GET("/quizzes/tracker/:documentId", h.Tracker)
	}

	if h := cfg.TodoHandler; h != nil {
		protected.POST("/todos", h.Create)
		protected.GET("/todos", h.List)
		protected.GET("/todos/stats", h.Stats)
		protected.PUT("/todos/:id", h.Update)
		protected.PATCH("/todos/:id/done", h.MarkDone)
		protected.DELETE("/todos/:id", h.Delete)
	}
}
