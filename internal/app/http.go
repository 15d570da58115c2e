package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/learnsphere-backend/internal/http"
	httpH "github.com/yungbote/learnsphere-backend/internal/http/handlers"
	httpMW "github.com/yungbote/learnsphere-backend/internal/http/middleware"
	"github.com/yungbote/learnsphere-backend/internal/observability"
	"github.com/yungbote/learnsphere-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health   *httpH.HealthHandler
	Auth     *httpH.AuthHandler
	Document *httpH.DocumentHandler
	Quiz     *httpH.QuizHandler
	Todo     *httpH.TodoHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, cfg Config, s Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(db),
		Auth:     httpH.NewAuthHandler(s.Auth, s.User),
		Document: httpH.NewDocumentHandler(log, s.Documents, s.Processing, s.Roadmap, cfg.MaxUploadBytes),
		Quiz:     httpH.NewQuizHandler(s.Assessment),
		Todo:     httpH.NewTodoHandler(s.Todo),
	}
}

func wireMiddleware(log *logger.Logger, s Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, s.Auth),
	}
}

func wireServer(log *logger.Logger, cfg Config, metrics *observability.Metrics, h Handlers, mw Middleware) *http.Server {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return http.NewServer(http.RouterConfig{
		Log:             log,
		Verbose:         !cfg.Production(),
		ServiceName:     serviceName,
		AllowedOrigins:  cfg.AllowedOrigins,
		Metrics:         metrics,
		AuthHandler:     h.Auth,
		AuthMiddleware:  mw.Auth,
		DocumentHandler: h.Document,
		QuizHandler:     h.Quiz,
		TodoHandler:     h.Todo,
		HealthHandler:   h.Health,
	})
}
