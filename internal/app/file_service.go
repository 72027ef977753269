package app

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"chatbot-platform/internal/model"
	"chatbot-platform/internal/repository"
	"chatbot-platform/internal/storage"
)

const maxExtensionLength = 16

// FileMirror copies uploads into the provider's file storage.
type FileMirror interface {
	Configured() bool
	UploadFile(ctx context.Context, filename string, data []byte) (string, error)
	DeleteFile(ctx context.Context, fileID string) error
}

type FileService struct {
	fileRepo     *repository.FileRepository
	projectRepo  *repository.ProjectRepository
	blobs        storage.BlobStore
	mirror       FileMirror
	activity     ActivityPublisher
	maxSize      int64
	allowedTypes map[string]struct{}
	mirrorTypes  map[string]struct{}
	log          *zap.Logger
}

type FileServiceOptions struct {
	MaxSize      int64
	AllowedTypes []string
	MirrorTypes  []string
}

type FileList struct {
	Files []model.File `json:"files"`
	Total int64        `json:"total"`
}

func NewFileService(
	fileRepo *repository.FileRepository,
	projectRepo *repository.ProjectRepository,
	blobs storage.BlobStore,
	mirror FileMirror,
	activity ActivityPublisher,
	opts FileServiceOptions,
	log *zap.Logger,
) *FileService {
	if activity == nil {
		activity = NoopActivityPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &FileService{
		fileRepo:     fileRepo,
		projectRepo:  projectRepo,
		blobs:        blobs,
		mirror:       mirror,
		activity:     activity,
		maxSize:      opts.MaxSize,
		allowedTypes: toSet(opts.AllowedTypes),
		mirrorTypes:  toSet(opts.MirrorTypes),
		log:          log.Named("file"),
	}
}

// MaxSize is the largest accepted upload in bytes.
func (s *FileService) MaxSize() int64 {
	return s.maxSize
}

func (s *FileService) Upload(ctx context.Context, project *model.Project, declaredName string, data []byte) (*model.File, error) {
	if int64(len(data)) > s.maxSize {
		return nil, ErrFileTooLarge
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	contentType := sniffContentType(data)
	if _, ok := s.allowedTypes[contentType]; !ok {
		return nil, ErrUnsupportedMediaType
	}

	originalName := cleanOriginalName(declaredName)
	storedName := uuid.New().String() + sanitizeExtension(originalName)

	if err := s.blobs.Save(ctx, storedName, data, contentType); err != nil {
		s.log.Error("save blob failed", zap.String("filename", storedName), zap.Error(err))
		return nil, ErrStorage
	}

	var providerID *string
	if _, ok := s.mirrorTypes[contentType]; ok && s.mirror != nil && s.mirror.Configured() {
		id, err := s.mirror.UploadFile(ctx, originalName, data)
		if err != nil {
			s.log.Warn("mirror upload failed", zap.String("filename", storedName), zap.Error(err))
		} else {
			providerID = &id
		}
	}

	file := &model.File{
		ProjectID:      project.ID,
		Filename:       storedName,
		OriginalName:   originalName,
		ContentType:    contentType,
		Size:           int64(len(data)),
		ProviderFileID: providerID,
	}
	if err := s.fileRepo.Create(ctx, file); err != nil {
		s.log.Error("persist file row failed", zap.String("filename", storedName), zap.Error(err))
		s.purge(context.WithoutCancel(ctx), *file)
		return nil, ErrStorage
	}

	s.publish(ctx, model.ActivityEvent{
		Type:       model.ActivityFileUploaded,
		UserID:     project.UserID,
		ProjectID:  project.ID,
		ResourceID: file.ID,
	})
	return file, nil
}

func (s *FileService) List(ctx context.Context, project *model.Project) (*FileList, error) {
	files, err := s.fileRepo.ListByProjectID(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	total, err := s.fileRepo.CountByProjectID(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	if files == nil {
		files = []model.File{}
	}
	return &FileList{Files: files, Total: total}, nil
}

// Delete removes a file owned through its project by userID. A file in
// someone else's project is reported as missing.
func (s *FileService) Delete(ctx context.Context, userID, fileID uint) error {
	if fileID == 0 {
		return ErrFileNotFound
	}
	file, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return err
	}
	if file == nil {
		return ErrFileNotFound
	}
	project, err := s.projectRepo.GetByIDAndUserID(ctx, file.ProjectID, userID)
	if err != nil {
		return err
	}
	if project == nil {
		return ErrFileNotFound
	}

	s.deleteMirror(ctx, *file)

	if err := s.blobs.Delete(ctx, file.Filename); err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.log.Error("delete blob failed", zap.String("filename", file.Filename), zap.Error(err))
		return ErrStorage
	}
	if err := s.fileRepo.Delete(ctx, file.ID); err != nil {
		return err
	}

	s.publish(ctx, model.ActivityEvent{
		Type:       model.ActivityFileDeleted,
		UserID:     userID,
		ProjectID:  file.ProjectID,
		ResourceID: file.ID,
	})
	return nil
}

// PurgeArtifacts removes blobs and mirrors of rows that are already gone.
func (s *FileService) PurgeArtifacts(ctx context.Context, files []model.File) {
	for _, f := range files {
		s.purge(ctx, f)
	}
}

func (s *FileService) purge(ctx context.Context, file model.File) {
	s.deleteMirror(ctx, file)
	if err := s.blobs.Delete(ctx, file.Filename); err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.log.Warn("purge blob failed", zap.String("filename", file.Filename), zap.Error(err))
	}
}

func (s *FileService) deleteMirror(ctx context.Context, file model.File) {
	if file.ProviderFileID == nil || s.mirror == nil || !s.mirror.Configured() {
		return
	}
	if err := s.mirror.DeleteFile(ctx, *file.ProviderFileID); err != nil {
		s.log.Warn("mirror delete failed", zap.String("provider_file_id", *file.ProviderFileID), zap.Error(err))
	}
}

func (s *FileService) publish(ctx context.Context, event model.ActivityEvent) {
	event.OccurredAt = time.Now().UTC()
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := s.activity.Publish(ctx, event); err != nil {
		s.log.Warn("publish activity event failed", zap.String("type", event.Type), zap.Error(err))
	}
}

// sniffContentType detects the media type from content, without parameters.
func sniffContentType(data []byte) string {
	mediaType, _, _ := strings.Cut(mimetype.Detect(data).String(), ";")
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func cleanOriginalName(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), "\\", "/")
	name = filepath.Base(name)
	if name == "." || name == "/" || name == "" {
		return "upload"
	}
	return name
}

// sanitizeExtension keeps a short lowercase alphanumeric extension, or nothing.
func sanitizeExtension(name string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if ext == "" || len(ext) > maxExtensionLength {
		return ""
	}
	for _, r := range ext {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return "." + ext
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		item = strings.ToLower(strings.TrimSpace(item))
		if item != "" {
			set[item] = struct{}{}
		}
	}
	return set
}
