package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"chatbot-platform/internal/app"
	"chatbot-platform/internal/model"
	"chatbot-platform/internal/transport/http/response"
)

const ContextProjectKey = "current_project"

type ProjectLoader interface {
	GetOwned(ctx context.Context, userID, projectID uint) (*model.Project, error)
}

// ProjectScope loads :project_id for the current user. Projects owned by
// someone else look exactly like missing ones.
func ProjectScope(projects ProjectLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found in context")
			return
		}

		projectID, err := ParseID(c.Param("project_id"))
		if err != nil {
			response.Abort(c, http.StatusBadRequest, response.CodeBadRequest, "invalid project id")
			return
		}

		project, err := projects.GetOwned(c.Request.Context(), user.ID, projectID)
		if err != nil {
			if errors.Is(err, app.ErrProjectNotFound) {
				response.Abort(c, http.StatusNotFound, response.CodeProjectNotFound, err.Error())
				return
			}
			response.Abort(c, http.StatusInternalServerError, response.CodeInternalServer, "load project failed")
			return
		}

		c.Set(ContextProjectKey, project)
		c.Next()
	}
}

func CurrentProject(c *gin.Context) (*model.Project, bool) {
	v, ok := c.Get(ContextProjectKey)
	if !ok {
		return nil, false
	}
	project, ok := v.(*model.Project)
	return project, ok && project != nil
}

func ParseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}
