package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"chatbot-platform/internal/app"
	"chatbot-platform/internal/transport/http/middleware"
	"chatbot-platform/internal/transport/http/response"
)

type FileHandler struct {
	fileService *app.FileService
}

func NewFileHandler(fileService *app.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

func (h *FileHandler) Upload(c *gin.Context) {
	_, project, ok := scope(c)
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "multipart field \"file\" is required")
		return
	}
	maxSize := h.fileService.MaxSize()
	if header.Size > maxSize {
		writeFileError(c, app.ErrFileTooLarge)
		return
	}

	src, err := header.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "read uploaded file failed")
		return
	}
	defer src.Close()

	// One byte past the limit is enough to tell the upload is too large.
	data, err := io.ReadAll(io.LimitReader(src, maxSize+1))
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "read uploaded file failed")
		return
	}

	file, err := h.fileService.Upload(c.Request.Context(), project, header.Filename, data)
	if err != nil {
		writeFileError(c, err)
		return
	}
	response.Created(c, file)
}

func (h *FileHandler) List(c *gin.Context) {
	_, project, ok := scope(c)
	if !ok {
		return
	}

	list, err := h.fileService.List(c.Request.Context(), project)
	if err != nil {
		writeFileError(c, err)
		return
	}
	response.OK(c, list)
}

func (h *FileHandler) Delete(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found in context")
		return
	}
	fileID, err := middleware.ParseID(c.Param("file_id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid file id")
		return
	}

	if err := h.fileService.Delete(c.Request.Context(), user.ID, fileID); err != nil {
		writeFileError(c, err)
		return
	}
	response.NoContent(c)
}

func writeFileError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, app.ErrEmptyFile):
		response.Error(c, http.StatusBadRequest, response.CodeEmptyFile, err.Error())
	case errors.Is(err, app.ErrFileTooLarge):
		response.Error(c, http.StatusRequestEntityTooLarge, response.CodeFileTooLarge, err.Error())
	case errors.Is(err, app.ErrUnsupportedMediaType):
		response.Error(c, http.StatusUnsupportedMediaType, response.CodeUnsupportedMediaType, err.Error())
	case errors.Is(err, app.ErrFileNotFound):
		response.Error(c, http.StatusNotFound, response.CodeFileNotFound, err.Error())
	case errors.Is(err, app.ErrStorage):
		response.Error(c, http.StatusInternalServerError, response.CodeStorage, err.Error())
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "file operation failed")
	}
}
