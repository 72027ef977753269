package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chatbot-platform/internal/model"
	"chatbot-platform/internal/transport/http/middleware"
	"chatbot-platform/internal/transport/http/response"
)

// scope returns the user and project placed on the context by the auth and
// project middlewares, writing an error when either is missing.
func scope(c *gin.Context) (*model.User, *model.Project, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found in context")
		return nil, nil, false
	}
	project, ok := middleware.CurrentProject(c)
	if !ok {
		response.Error(c, http.StatusNotFound, response.CodeProjectNotFound, "project not found")
		return nil, nil, false
	}
	return user, project, true
}
