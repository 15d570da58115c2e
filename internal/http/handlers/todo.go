package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/learnsphere-backend/internal/data/repos"
	"github.com/yungbote/learnsphere-backend/internal/domain/todos"
	"github.com/yungbote/learnsphere-backend/internal/http/response"
	"github.com/yungbote/learnsphere-backend/internal/services"
)

type TodoHandler struct {
	todos services.TodoService
}

func NewTodoHandler(todoService services.TodoService) *TodoHandler {
	return &TodoHandler{todos: todoService}
}

func (h *TodoHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req services.TodoInput
	if !bindJSON(c, &req) {
		return
	}
	t, err := h.todos.Create(c.Request.Context(), userID, req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondCreated(c, t)
}

// GET /todos?status=&priority=&linkedType=
func (h *TodoHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	f := repos.TodoFilter{
		Status:     todos.Status(strings.ToLower(c.Query("status"))),
		Priority:   todos.Priority(strings.ToLower(c.Query("priority"))),
		LinkedType: todos.LinkedEntityType(strings.ToLower(c.Query("linkedType"))),
	}
	list, err := h.todos.List(c.Request.Context(), userID, f)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"todos": list})
}

func (h *TodoHandler) Stats(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	st, err := h.todos.Stats(c.Request.Context(), userID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, st)
}

func (h *TodoHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	todoID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req services.TodoPatch
	if !bindJSON(c, &req) {
		return
	}
	t, err := h.todos.Update(c.Request.Context(), userID, todoID, req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, t)
}

func (h *TodoHandler) MarkDone(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	todoID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	t, err := h.todos.MarkDone(c.Request.Context(), userID, todoID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, t)
}

func (h *TodoHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	todoID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.todos.Delete(c.Request.Context(), userID, todoID); err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true})
}
