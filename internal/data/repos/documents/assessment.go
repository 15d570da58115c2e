package documents

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/learnsphere-backend/internal/domain"
	"github.com/yungbote/learnsphere-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/learnsphere-backend/internal/pkg/errors"
	"github.com/yungbote/learnsphere-backend/internal/platform/logger"
)

type AssessmentQuizRepo interface {
	Create(dbc dbctx.Context, quizzes []*types.AssessmentQuiz) ([]*types.AssessmentQuiz, error)
	GetOwned(dbc dbctx.Context, userID, quizID uuid.UUID) (*types.AssessmentQuiz, error)
	ListByDocument(dbc dbctx.Context, documentID uuid.UUID) ([]*types.AssessmentQuiz, error)
	DeleteByDocument(dbc dbctx.Context, documentID uuid.UUID) error
}

type assessmentQuizRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssessmentQuizRepo(db *gorm.DB, baseLog *logger.Logger) AssessmentQuizRepo {
	repoLog := baseLog.With("repo", "AssessmentQuizRepo")
	return &assessmentQuizRepo{db: db, log: repoLog}
}

func (r *assessmentQuizRepo) Create(dbc dbctx.Context, quizzes []*types.AssessmentQuiz) ([]*types.AssessmentQuiz, error) {
	transaction := dbc.Conn(r.db)

	if len(quizzes) == 0 {
		return []*types.AssessmentQuiz{}, nil
	}
	if err := transaction.Create(&quizzes).Error; err != nil {
		return nil, err
	}
	return quizzes, nil
}

func (r *assessmentQuizRepo) GetOwned(dbc dbctx.Context, userID, quizID uuid.UUID) (*types.AssessmentQuiz, error) {
	transaction := dbc.Conn(r.db)

	var q types.AssessmentQuiz
	err := transaction.
		Where("id = ? AND user_id = ?", quizID, userID).
		First(&q).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *assessmentQuizRepo) ListByDocument(dbc dbctx.Context, documentID uuid.UUID) ([]*types.AssessmentQuiz, error) {
	transaction := dbc.Conn(r.db)

	var results []*types.AssessmentQuiz
	if err := transaction.
		Where("document_id = ?", documentID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *assessmentQuizRepo) DeleteByDocument(dbc dbctx.Context, documentID uuid.UUID) error {
	transaction := dbc.Conn(r.db)

	return transaction.
		Where("document_id = ?", documentID).
		Delete(&types.AssessmentQuiz{}).Error
}

type QuizAttemptRepo interface {
	Create(dbc dbctx.Context, attempts []*types.QuizAttempt) ([]*types.QuizAttempt, error)
	ListByDocument(dbc dbctx.Context, userID, documentID uuid.UUID) ([]*types.QuizAttempt, error)
	DeleteByDocument(dbc dbctx.Context, documentID uuid.UUID) error
}

type quizAttemptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizAttemptRepo(db *gorm.DB, baseLog *logger.Logger) QuizAttemptRepo {
	repoLog := baseLog.With("repo", "QuizAttemptRepo")
	return &quizAttemptRepo{db: db, log: repoLog}
}

func (r *quizAttemptRepo) Create(dbc dbctx.Context, attempts []*types.QuizAttempt) ([]*types.QuizAttempt, error) {
	transaction := dbc.Conn(r.db)

	if len(attempts) == 0 {
		return []*types.QuizAttempt{}, nil
	}
	if err := transaction.Create(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}

func (r *quizAttemptRepo) ListByDocument(dbc dbctx.Context, userID, documentID uuid.UUID) ([]*types.QuizAttempt, error) {
	transaction := dbc.Conn(r.db)

	var results []*types.QuizAttempt
	if err := transaction.
		Where("user_id = ? AND document_id = ?", userID, documentID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *quizAttemptRepo) DeleteByDocument(dbc dbctx.Context, documentID uuid.UUID) error {
	transaction := dbc.Conn(r.db)

	return transaction.
		Where("document_id = ?", documentID).
		Delete(&types.QuizAttempt{}).Error
}
