package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/learnsphere-backend/internal/platform/logger"
	"github.com/yungbote/learnsphere-backend/internal/services"
)

type Services struct {
	Auth       services.AuthService
	User       services.UserService
	Documents  services.DocumentService
	Processing services.ProcessingService
	Roadmap    services.RoadmapService
	Assessment services.AssessmentService
	Todo       services.TodoService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, c Clients) Services {
	log.Info("Wiring services...")

	text := services.NewTextSource(log, r.Document, c.Store, c.Extractor)
	generator := services.NewArtifactGenerator(log, c.LLM, cfg.PromptBudget)

	return Services{
		Auth: services.NewAuthService(
			db, log, r.User, r.UserToken,
			cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, cfg.DefaultCredits,
		),
		User: services.NewUserService(log, r.User),
		Documents: services.NewDocumentService(
			db, log, r.Document, r.AssessmentQuiz, r.QuizAttempt,
			c.Store, text, generator, cfg.MaxUploadBytes,
		),
		Processing: services.NewProcessingService(log, r.Document, r.User, text, generator, c.Lease, cfg.LeaseTTL),
		Roadmap:    services.NewRoadmapService(log, r.Document),
		Assessment: services.NewAssessmentService(
			log, r.Document, r.AssessmentQuiz, r.QuizAttempt, r.User,
			generator, c.Lease, cfg.LeaseTTL,
		),
		Todo: services.NewTodoService(log, r.Todo),
	}
}
