package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/learnsphere-backend/internal/data/repos/auth"
	"github.com/yungbote/learnsphere-backend/internal/data/repos/documents"
	"github.com/yungbote/learnsphere-backend/internal/data/repos/todos"
	"github.com/yungbote/learnsphere-backend/internal/data/repos/user"
	"github.com/yungbote/learnsphere-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type UserTokenRepo = auth.UserTokenRepo

type DocumentRepo = documents.DocumentRepo
type AssessmentQuizRepo = documents.AssessmentQuizRepo
type QuizAttemptRepo = documents.QuizAttemptRepo

type TodoRepo = todos.TodoRepo
type TodoFilter = todos.Filter

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }
func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return auth.NewUserTokenRepo(db, baseLog)
}

func NewDocumentRepo(db *gorm.DB, baseLog *logger.Logger) DocumentRepo {
	return documents.NewDocumentRepo(db, baseLog)
}
func NewAssessmentQuizRepo(db *gorm.DB, baseLog *logger.Logger) AssessmentQuizRepo {
	return documents.NewAssessmentQuizRepo(db, baseLog)
}
func NewQuizAttemptRepo(db *gorm.DB, baseLog *logger.Logger) QuizAttemptRepo {
	return documents.NewQuizAttemptRepo(db, baseLog)
}

func NewTodoRepo(db *gorm.DB, baseLog *logger.Logger) TodoRepo { return todos.NewTodoRepo(db, baseLog) }
