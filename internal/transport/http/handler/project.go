package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"chatbot-platform/internal/app"
	"chatbot-platform/internal/transport/http/middleware"
	"chatbot-platform/internal/transport/http/response"
)

type ProjectHandler struct {
	projectService *app.ProjectService
}

type ProjectRequest struct {
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	SystemPrompt *string `json:"system_prompt"`
}

func NewProjectHandler(projectService *app.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

func (h *ProjectHandler) Create(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found in context")
		return
	}

	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	project, err := h.projectService.Create(c.Request.Context(), user.ID, req.input())
	if err != nil {
		writeProjectError(c, err, "create project failed")
		return
	}
	response.Created(c, project)
}

func (h *ProjectHandler) List(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found in context")
		return
	}

	projects, err := h.projectService.List(c.Request.Context(), user.ID)
	if err != nil {
		writeProjectError(c, err, "list projects failed")
		return
	}
	response.OK(c, projects)
}

func (h *ProjectHandler) Get(c *gin.Context) {
	user, project, ok := scope(c)
	if !ok {
		return
	}

	out, err := h.projectService.Get(c.Request.Context(), user.ID, project.ID)
	if err != nil {
		writeProjectError(c, err, "get project failed")
		return
	}
	response.OK(c, out)
}

func (h *ProjectHandler) Update(c *gin.Context) {
	user, project, ok := scope(c)
	if !ok {
		return
	}

	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	out, err := h.projectService.Update(c.Request.Context(), user.ID, project.ID, req.input())
	if err != nil {
		writeProjectError(c, err, "update project failed")
		return
	}
	response.OK(c, out)
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	user, project, ok := scope(c)
	if !ok {
		return
	}

	if err := h.projectService.Delete(c.Request.Context(), user.ID, project.ID); err != nil {
		writeProjectError(c, err, "delete project failed")
		return
	}
	response.NoContent(c)
}

func (r ProjectRequest) input() app.ProjectInput {
	return app.ProjectInput{
		Name:         r.Name,
		Description:  r.Description,
		SystemPrompt: r.SystemPrompt,
	}
}

func writeProjectError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, app.ErrInvalidProjectName):
		response.Error(c, http.StatusBadRequest, response.CodeInvalidProjectName, err.Error())
	case errors.Is(err, app.ErrProjectNotFound):
		response.Error(c, http.StatusNotFound, response.CodeProjectNotFound, err.Error())
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, fallback)
	}
}
