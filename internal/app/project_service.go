package app

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"chatbot-platform/internal/model"
	"chatbot-platform/internal/repository"
)

const maxProjectNameLength = 200

type ProjectService struct {
	projectRepo *repository.ProjectRepository
	purger      ArtifactPurger
	log         *zap.Logger
}

// ArtifactPurger removes stored blobs and provider mirrors of deleted file rows.
type ArtifactPurger interface {
	PurgeArtifacts(ctx context.Context, files []model.File)
}

type ProjectInput struct {
	Name         string
	Description  *string
	SystemPrompt *string
}

func NewProjectService(projectRepo *repository.ProjectRepository, purger ArtifactPurger, log *zap.Logger) *ProjectService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProjectService{
		projectRepo: projectRepo,
		purger:      purger,
		log:         log.Named("project"),
	}
}

func (s *ProjectService) Create(ctx context.Context, userID uint, input ProjectInput) (*model.ProjectWithCounts, error) {
	name, err := validateProjectName(input.Name)
	if err != nil {
		return nil, err
	}

	project := &model.Project{
		UserID:       userID,
		Name:         name,
		Description:  input.Description,
		SystemPrompt: input.SystemPrompt,
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}
	return &model.ProjectWithCounts{Project: *project}, nil
}

func (s *ProjectService) List(ctx context.Context, userID uint) ([]model.ProjectWithCounts, error) {
	projects, err := s.projectRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.withCounts(ctx, projects)
}

func (s *ProjectService) Get(ctx context.Context, userID, projectID uint) (*model.ProjectWithCounts, error) {
	project, err := s.GetOwned(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	out, err := s.withCounts(ctx, []model.Project{*project})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// GetOwned returns the project only when userID owns it.
func (s *ProjectService) GetOwned(ctx context.Context, userID, projectID uint) (*model.Project, error) {
	if projectID == 0 {
		return nil, ErrProjectNotFound
	}
	project, err := s.projectRepo.GetByIDAndUserID(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}
	return project, nil
}

// Update replaces name, description and system prompt.
func (s *ProjectService) Update(ctx context.Context, userID, projectID uint, input ProjectInput) (*model.ProjectWithCounts, error) {
	name, err := validateProjectName(input.Name)
	if err != nil {
		return nil, err
	}
	project, err := s.GetOwned(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	project.Name = name
	project.Description = input.Description
	project.SystemPrompt = input.SystemPrompt
	if err := s.projectRepo.Save(ctx, project); err != nil {
		return nil, err
	}

	out, err := s.withCounts(ctx, []model.Project{*project})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (s *ProjectService) Delete(ctx context.Context, userID, projectID uint) error {
	project, err := s.GetOwned(ctx, userID, projectID)
	if err != nil {
		return err
	}
	files, err := s.projectRepo.Delete(ctx, project.ID)
	if err != nil {
		return err
	}
	if s.purger != nil && len(files) > 0 {
		s.purger.PurgeArtifacts(ctx, files)
	}
	s.log.Info("project deleted", zap.Uint("project_id", project.ID), zap.Int("files", len(files)))
	return nil
}

func (s *ProjectService) withCounts(ctx context.Context, projects []model.Project) ([]model.ProjectWithCounts, error) {
	ids := make([]uint, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
	}
	messages, files, err := s.projectRepo.ChildCounts(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]model.ProjectWithCounts, 0, len(projects))
	for _, p := range projects {
		out = append(out, model.ProjectWithCounts{
			Project:       p,
			MessagesCount: messages[p.ID],
			FilesCount:    files[p.ID],
		})
	}
	return out, nil
}

func validateProjectName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" || utf8.RuneCountInString(name) > maxProjectNameLength {
		return "", ErrInvalidProjectName
	}
	return name, nil
}
