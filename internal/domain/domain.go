package domain

import (
	"github.com/yungbote/learnsphere-backend/internal/domain/auth"
	"github.com/yungbote/learnsphere-backend/internal/domain/documents"
	"github.com/yungbote/learnsphere-backend/internal/domain/learning"
	"github.com/yungbote/learnsphere-backend/internal/domain/todos"
	"github.com/yungbote/learnsphere-backend/internal/domain/user"
)

type (
	User      = user.User
	UserToken = auth.UserToken

	Document       = documents.Document
	AssessmentQuiz = documents.AssessmentQuiz
	AssessmentKind = documents.AssessmentKind
	QuizAttempt    = documents.QuizAttempt

	Todo             = todos.Todo
	TodoPriority     = todos.Priority
	TodoStatus       = todos.Status
	LinkedEntityType = todos.LinkedEntityType
	TodoStats        = todos.Stats

	ArtifactType    = learning.ArtifactType
	SummaryType     = learning.SummaryType
	LearnerLevel    = learning.LearnerLevel
	Summary         = learning.Summary
	KeyTerm         = learning.KeyTerm
	Quiz            = learning.Quiz
	Question        = learning.Question
	PublicQuestion  = learning.PublicQuestion
	Difficulty      = learning.Difficulty
	MindMap         = learning.MindMap
	MindMapNode     = learning.MindMapNode
	MindMapEdge     = learning.MindMapEdge
	Position        = learning.Position
	Roadmap         = learning.Roadmap
	Phase           = learning.Phase
	Module          = learning.Module
	Lesson          = learning.Lesson
	Resource        = learning.Resource
	RoadmapProgress = learning.RoadmapProgress
)

const (
	AssessmentPhase = documents.AssessmentPhase
	AssessmentFinal = documents.AssessmentFinal

	ArtifactSummary = learning.ArtifactSummary
	ArtifactQuiz    = learning.ArtifactQuiz
	ArtifactMindMap = learning.ArtifactMindMap
	ArtifactRoadmap = learning.ArtifactRoadmap
)

// Models lists every persisted model in migration order.
func Models() []any {
	return []any{
		&User{},
		&UserToken{},
		&Document{},
		&AssessmentQuiz{},
		&QuizAttempt{},
		&Todo{},
	}
}
