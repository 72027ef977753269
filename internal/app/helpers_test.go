package app

import (
	"context"
	"errors"
	"sync"
	"testing"

	"gorm.io/gorm"

	"chatbot-platform/internal/ai"
	"chatbot-platform/internal/model"
	"chatbot-platform/internal/platform/database"
	"chatbot-platform/internal/repository"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.New(context.Background(), "sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()
	user := &model.User{Email: email, PasswordHash: "x", FullName: "Test User", IsActive: true}
	if err := repository.NewUserRepository(db).Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func seedProject(t *testing.T, db *gorm.DB, owner *model.User, systemPrompt *string) *model.Project {
	t.Helper()
	project := &model.Project{UserID: owner.ID, Name: "project", SystemPrompt: systemPrompt}
	if err := repository.NewProjectRepository(db).Create(context.Background(), project); err != nil {
		t.Fatalf("create project: %v", err)
	}
	return project
}

type fakeCompleter struct {
	configured bool
	reply      string
	err        error
	onCall     func(ctx context.Context)

	mu      sync.Mutex
	prompts [][]ai.ChatMessage
}

func (f *fakeCompleter) Configured() bool { return f.configured }

func (f *fakeCompleter) Complete(ctx context.Context, messages []ai.ChatMessage) (string, error) {
	if f.onCall != nil {
		f.onCall(ctx)
	}
	f.mu.Lock()
	f.prompts = append(f.prompts, messages)
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakeMirror struct {
	configured bool
	uploadErr  error

	uploaded []string
	deleted  []string
}

func (f *fakeMirror) Configured() bool { return f.configured }

func (f *fakeMirror) UploadFile(_ context.Context, filename string, _ []byte) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.uploaded = append(f.uploaded, filename)
	return "file-" + filename, nil
}

func (f *fakeMirror) DeleteFile(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.ActivityEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event model.ActivityEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

var errProviderDown = errors.New("provider down")

func strPtr(s string) *string { return &s }
