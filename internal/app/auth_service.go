package app

import (
	"context"
	"net/mail"
	"strings"
	"unicode/utf8"

	"chatbot-platform/internal/model"
	"chatbot-platform/internal/pkg/jwtutil"
	"chatbot-platform/internal/pkg/password"
	"chatbot-platform/internal/repository"
)

const (
	minPasswordLength = 6
	// bcrypt only accepts up to 72 bytes of input
	maxPasswordBytes = 72
	maxFullNameLength = 255
)

type AuthService struct {
	userRepo    *repository.UserRepository
	projectRepo *repository.ProjectRepository
	tokenOpts   jwtutil.Options
}

type RegisterInput struct {
	Email    string
	FullName string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	Token string
	User  *model.User
}

// Profile is the current user as returned by /auth/me.
type Profile struct {
	*model.User
	ProjectsCount int64 `json:"projects_count"`
}

func NewAuthService(userRepo *repository.UserRepository, projectRepo *repository.ProjectRepository, tokenOpts jwtutil.Options) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		projectRepo: projectRepo,
		tokenOpts:   tokenOpts,
	}
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email, ok := normalizeEmail(input.Email)
	fullName := strings.TrimSpace(input.FullName)
	if !ok || fullName == "" || utf8.RuneCountInString(fullName) > maxFullNameLength {
		return nil, ErrInvalidInput
	}
	if utf8.RuneCountInString(input.Password) < minPasswordLength || len(input.Password) > maxPasswordBytes {
		return nil, ErrInvalidInput
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	hash, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        email,
		FullName:     fullName,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	email, ok := normalizeEmail(input.Email)
	if !ok || input.Password == "" {
		return nil, ErrInvalidCredential
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !password.Verify(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredential
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}
	return s.issue(user)
}

// Authenticate resolves a bearer token to an active user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	claims, err := jwtutil.ParseToken(s.tokenOpts, token)
	if err != nil {
		return nil, ErrUnauthorized
	}
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthorized
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}
	return user, nil
}

func (s *AuthService) Me(ctx context.Context, user *model.User) (*Profile, error) {
	count, err := s.projectRepo.CountByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &Profile{User: user, ProjectsCount: count}, nil
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, err := jwtutil.GenerateToken(s.tokenOpts, user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

func normalizeEmail(raw string) (string, bool) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return "", false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", false
	}
	return email, true
}
