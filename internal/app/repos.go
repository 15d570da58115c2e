package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/learnsphere-backend/internal/data/repos"
	"github.com/yungbote/learnsphere-backend/internal/platform/logger"
)

type Repos struct {
	User           repos.UserRepo
	UserToken      repos.UserTokenRepo
	Document       repos.DocumentRepo
	AssessmentQuiz repos.AssessmentQuizRepo
	QuizAttempt    repos.QuizAttemptRepo
	Todo           repos.TodoRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:           repos.NewUserRepo(db, log),
		UserToken:      repos.NewUserTokenRepo(db, log),
		Document:       repos.NewDocumentRepo(db, log),
		AssessmentQuiz: repos.NewAssessmentQuizRepo(db, log),
		QuizAttempt:    repos.NewQuizAttemptRepo(db, log),
		Todo:           repos.NewTodoRepo(db, log),
	}
}
