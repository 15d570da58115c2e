package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/learnsphere-backend/internal/domain/learning"
	"github.com/yungbote/learnsphere-backend/internal/http/response"
	"github.com/yungbote/learnsphere-backend/internal/learning/scoring"
	"github.com/yungbote/learnsphere-backend/internal/platform/apierr"
	"github.com/yungbote/learnsphere-backend/internal/platform/logger"
	"github.com/yungbote/learnsphere-backend/internal/services"
)

const multipartOverhead = 1 << 20

type DocumentHandler struct {
	log            *logger.Logger
	documents      services.DocumentService
	processing     services.ProcessingService
	roadmaps       services.RoadmapService
	maxUploadBytes int64
}

func NewDocumentHandler(
	log *logger.Logger,
	documents services.DocumentService,
	processing services.ProcessingService,
	roadmaps services.RoadmapService,
	maxUploadBytes int64,
) *DocumentHandler {
	return &DocumentHandler{
		log:            log.With("handler", "DocumentHandler"),
		documents:      documents,
		processing:     processing,
		roadmaps:       roadmaps,
		maxUploadBytes: maxUploadBytes,
	}
}

// POST /documents/upload (multipart field "pdf")
func (h *DocumentHandler) Upload(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)
	}
	fh, err := c.FormFile("pdf")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Fail(c, apierr.Validation("file_too_large", fmt.Sprintf("file exceeds %d MB", h.maxUploadBytes>>20)))
			return
		}
		response.Fail(c, apierr.Validation("missing_file", "multipart field \"pdf\" is required"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Fail(c, apierr.Validation("invalid_multipart_form", err.Error()))
		return
	}
	defer f.Close()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, f); err != nil {
		response.Fail(c, apierr.Validation("invalid_multipart_form", err.Error()))
		return
	}

	doc, err := h.documents.Upload(c.Request.Context(), userID, services.UploadedFile{FileName: fh.Filename, Data: buf.Bytes()})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondCreated(c, doc)
}

// GET /documents
func (h *DocumentHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	docs, err := h.documents.List(c.Request.Context(), userID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"documents": docs})
}

// GET /documents/:id
func (h *DocumentHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	docID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	doc, err := h.documents.Get(c.Request.Context(), userID, docID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, doc)
}

// DELETE /documents/:id
func (h *DocumentHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	docID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.documents.Delete(c.Request.Context(), userID, docID); err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true})
}

// POST /documents/process
func (h *DocumentHandler) Process(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req struct {
		DocumentID     string `json:"documentId"`
		ProcessingType string `json:"processingType"`
		SummaryType    string `json:"summaryType"`
		LearnerLevel   string `json:"learnerLevel"`
		QuestionCount  *int   `json:"questionCount"`
	}
	if !bindJSON(c, &req) {
		return
	}
	docID, ok := parseUUID(c, "documentId", req.DocumentID)
	if !ok {
		return
	}
	res, err := h.processing.Process(c.Request.Context(), userID, docID, services.ProcessingType(req.ProcessingType), services.ProcessOptions{
		SummaryType:   req.SummaryType,
		LearnerLevel:  req.LearnerLevel,
		QuestionCount: req.QuestionCount,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /documents/mindmap/:id
func (h *DocumentHandler) GenerateMindMap(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	docID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	mm, err := h.documents.GenerateMindMap(c.Request.Context(), userID, docID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "mindMap": mm})
}

// PUT /documents/mindmap/:id
func (h *DocumentHandler) SaveMindMap(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	docID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Nodes []learning.MindMapNode `json:"nodes"`
		Edges []learning.MindMapEdge `json:"edges"`
	}
	if !bindJSON(c, &req) {
		return
	}
	mm, err := h.documents.SaveMindMap(c.Request.Context(), userID, docID, req.Nodes, req.Edges)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "mindMap": mm})
}

// GET /documents/mindmap/:id/image
func (h *DocumentHandler) MindMapImage(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	docID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := h.documents.RenderMindMap(c.Request.Context(), userID, docID, &buf); err != nil {
		response.Fail(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// POST /documents/quiz/submit
func (h *DocumentHandler) SubmitQuiz(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req struct {
		DocumentID string                    `json:"documentId"`
		Answers    []scoring.SubmittedAnswer `json:"answers"`
	}
	if !bindJSON(c, &req) {
		return
	}
	docID, ok := parseUUID(c, "documentId", req.DocumentID)
	if !ok {
		return
	}
	res, err := h.documents.SubmitQuiz(c.Request.Context(), userID, docID, req.Answers)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"analysis": res})
}

// GET /documents/:id/roadmap/progress
func (h *DocumentHandler) RoadmapProgress(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	docID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	view, err := h.roadmaps.GetProgress(c.Request.Context(), userID, docID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, view)
}

// PUT /documents/:id/roadmap/progress
func (h *DocumentHandler) ToggleLesson(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	docID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req struct {
		PhaseID  string `json:"phaseId"`
		ModuleID string `json:"moduleId"`
		LessonID string `json:"lessonId"`
	}
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.roadmaps.ToggleLesson(c.Request.Context(), userID, docID, req.PhaseID, req.ModuleID, req.LessonID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, view)
}

// GET /documents/:id/roadmap/export?format=markdown|pdf
func (h *DocumentHandler) ExportRoadmap(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	docID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	file, err := h.roadmaps.Export(c.Request.Context(), userID, docID, c.Query("format"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
	c.Data(http.StatusOK, file.ContentType, file.Body)
}
