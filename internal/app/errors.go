package app

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrEmailExists       = errors.New("email already registered")
	ErrInvalidCredential = errors.New("incorrect email or password")
	ErrUnauthorized      = errors.New("could not validate credentials")
	ErrInactiveUser      = errors.New("inactive user")

	ErrInvalidProjectName = errors.New("project name must be 1-200 characters")
	ErrProjectNotFound    = errors.New("project not found")

	ErrInvalidMessage   = errors.New("message must be 1-5000 characters")
	ErrLLMNotConfigured = errors.New("llm api key is not configured")

	ErrEmptyFile            = errors.New("uploaded file is empty")
	ErrFileTooLarge         = errors.New("file too large")
	ErrUnsupportedMediaType = errors.New("file type not allowed")
	ErrFileNotFound         = errors.New("file not found")
	ErrStorage              = errors.New("file storage failed")
)
