package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/learnsphere-backend/internal/http/response"
	"github.com/yungbote/learnsphere-backend/internal/learning/scoring"
	"github.com/yungbote/learnsphere-backend/internal/services"
)

type QuizHandler struct {
	assessments services.AssessmentService
}

func NewQuizHandler(assessments services.AssessmentService) *QuizHandler {
	return &QuizHandler{assessments: assessments}
}

// POST /quizzes/phase
func (h *QuizHandler) CreatePhase(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req struct {
		DocumentID    string `json:"documentId"`
		PhaseID       string `json:"phaseId"`
		QuestionCount int    `json:"questionCount"`
	}
	if !bindJSON(c, &req) {
		return
	}
	docID, ok := parseUUID(c, "documentId", req.DocumentID)
	if !ok {
		return
	}
	quiz, err := h.assessments.CreatePhaseQuiz(c.Request.Context(), userID, docID, req.PhaseID, req.QuestionCount)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"quiz": quiz})
}

// POST /quizzes/final
func (h *QuizHandler) CreateFinal(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req struct {
		DocumentID    string `json:"documentId"`
		QuestionCount int    `json:"questionCount"`
	}
	if !bindJSON(c, &req) {
		return
	}
	docID, ok := parseUUID(c, "documentId", req.DocumentID)
	if !ok {
		return
	}
	quiz, err := h.assessments.CreateFinalQuiz(c.Request.Context(), userID, docID, req.QuestionCount)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"quiz": quiz})
}

// POST /quizzes/:id/submit
func (h *QuizHandler) Submit(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	quizID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Answers []scoring.SubmittedAnswer `json:"answers"`
	}
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.assessments.Submit(c.Request.Context(), userID, quizID, req.Answers)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /quizzes/tracker/:documentId
func (h *QuizHandler) Tracker(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	docID, ok := pathUUID(c, "documentId")
	if !ok {
		return
	}
	tr, err := h.assessments.Tracker(c.Request.Context(), userID, docID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, tr)
}
