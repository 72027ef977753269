package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"chatbot-platform/internal/model"
	"chatbot-platform/internal/platform/database"
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

func seedProject(t *testing.T, db *gorm.DB, email string) (*model.User, *model.Project) {
	t.Helper()
	ctx := context.Background()
	user := &model.User{Email: email, PasswordHash: "x", FullName: "Test", IsActive: true}
	if err := NewUserRepository(db).Create(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	project := &model.Project{UserID: user.ID, Name: "p-" + email}
	if err := NewProjectRepository(db).Create(ctx, project); err != nil {
		t.Fatalf("create project: %v", err)
	}
	return user, project
}

func TestUserRepositoryLookups(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewUserRepository(db)
	user, _ := seedProject(t, db, "a@example.com")

	got, err := repo.GetByEmail(ctx, "a@example.com")
	if err != nil || got == nil || got.ID != user.ID {
		t.Fatalf("get by email: %v %+v", err, got)
	}
	missing, err := repo.GetByEmail(ctx, "nobody@example.com")
	if err != nil || missing != nil {
		t.Fatalf("expected nil user, got %+v err=%v", missing, err)
	}
	if err := repo.SetActive(ctx, user.ID, false); err != nil {
		t.Fatalf("set active: %v", err)
	}
	reloaded, err := repo.GetByID(ctx, user.ID)
	if err != nil || reloaded == nil || reloaded.IsActive {
		t.Fatalf("expected inactive user, got %+v err=%v", reloaded, err)
	}
	if err := repo.Create(ctx, &model.User{Email: "a@example.com", PasswordHash: "x", FullName: "Dup"}); err == nil {
		t.Fatalf("expected unique email violation")
	}
}

func TestMessagePagesAreDisjointAndChronological(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	_, project := seedProject(t, db, "pager@example.com")
	repo := NewMessageRepository(db)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 25; i++ {
		msg := &model.Message{
			ProjectID: project.ID,
			Role:      model.RoleUser,
			Content:   fmt.Sprintf("m%02d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := repo.Create(ctx, msg); err != nil {
			t.Fatalf("create message: %v", err)
		}
	}

	seen := map[string]int{}
	for _, offset := range []int{0, 10, 20} {
		page, err := repo.ListPageByProjectID(ctx, project.ID, 10, offset)
		if err != nil {
			t.Fatalf("list page: %v", err)
		}
		for i := 1; i < len(page); i++ {
			if page[i].CreatedAt.Before(page[i-1].CreatedAt) {
				t.Fatalf("page at offset %d not chronological", offset)
			}
		}
		for _, m := range page {
			seen[m.Content]++
		}
	}
	if len(seen) != 25 {
		t.Fatalf("expected 25 distinct messages, got %d", len(seen))
	}
	for content, n := range seen {
		if n != 1 {
			t.Fatalf("message %s returned %d times", content, n)
		}
	}

	first, _ := repo.ListPageByProjectID(ctx, project.ID, 10, 0)
	if first[len(first)-1].Content != "m24" {
		t.Fatalf("first page should end with newest message, got %s", first[len(first)-1].Content)
	}
	total, err := repo.CountByProjectID(ctx, project.ID)
	if err != nil || total != 25 {
		t.Fatalf("count: %d err=%v", total, err)
	}
}

func TestProjectDeleteRemovesChildren(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	_, project := seedProject(t, db, "cascade@example.com")
	_, other := seedProject(t, db, "other@example.com")

	messages := NewMessageRepository(db)
	files := NewFileRepository(db)
	projects := NewProjectRepository(db)

	for _, pid := range []uint{project.ID, other.ID} {
		if err := messages.Create(ctx, &model.Message{ProjectID: pid, Role: model.RoleUser, Content: "hi"}); err != nil {
			t.Fatalf("create message: %v", err)
		}
		if err := files.Create(ctx, &model.File{ProjectID: pid, Filename: fmt.Sprintf("blob-%d.txt", pid), OriginalName: "a.txt"}); err != nil {
			t.Fatalf("create file: %v", err)
		}
	}

	msgCounts, fileCounts, err := projects.ChildCounts(ctx, []uint{project.ID, other.ID})
	if err != nil {
		t.Fatalf("child counts: %v", err)
	}
	if msgCounts[project.ID] != 1 || fileCounts[other.ID] != 1 {
		t.Fatalf("unexpected counts %v %v", msgCounts, fileCounts)
	}

	removed, err := projects.Delete(ctx, project.ID)
	if err != nil {
		t.Fatalf("delete project: %v", err)
	}
	if len(removed) != 1 || removed[0].Filename != fmt.Sprintf("blob-%d.txt", project.ID) {
		t.Fatalf("unexpected removed files %+v", removed)
	}
	if n, _ := messages.CountByProjectID(ctx, project.ID); n != 0 {
		t.Fatalf("messages not removed: %d", n)
	}
	if n, _ := files.CountByProjectID(ctx, project.ID); n != 0 {
		t.Fatalf("files not removed: %d", n)
	}
	if n, _ := messages.CountByProjectID(ctx, other.ID); n != 1 {
		t.Fatalf("other project's messages must survive, got %d", n)
	}
}
