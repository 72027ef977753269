package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"chatbot-platform/internal/model"
	"chatbot-platform/internal/repository"
)

func TestSendPersistsExchangeWithPrompt(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db, "owner@example.com")
	project := seedProject(t, db, owner, strPtr("You are terse."))
	messages := repository.NewMessageRepository(db)
	ctx := context.Background()

	for i := 0; i < 24; i++ {
		role := model.RoleUser
		if i%2 == 1 {
			role = model.RoleAssistant
		}
		if err := messages.Create(ctx, &model.Message{ProjectID: project.ID, Role: role, Content: fmt.Sprintf("m%d", i)}); err != nil {
			t.Fatalf("seed message: %v", err)
		}
	}

	llm := &fakeCompleter{configured: true, reply: "pong"}
	events := &recordingPublisher{}
	svc := NewChatService(messages, llm, events, 20, nil)

	exchange, err := svc.Send(ctx, project, "  ping  ")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if exchange.UserMessage.Content != "ping" || exchange.AssistantMessage.Content != "pong" {
		t.Fatalf("unexpected exchange: %+v", exchange)
	}
	if exchange.AssistantMessage.Role != model.RoleAssistant {
		t.Fatalf("assistant role expected, got %q", exchange.AssistantMessage.Role)
	}

	if len(llm.prompts) != 1 {
		t.Fatalf("expected one completion call, got %d", len(llm.prompts))
	}
	prompt := llm.prompts[0]
	if len(prompt) != 21 {
		t.Fatalf("expected system prompt plus 20 messages, got %d", len(prompt))
	}
	if prompt[0].Role != model.RoleSystem || prompt[0].Content != "You are terse." {
		t.Fatalf("system prompt should lead: %+v", prompt[0])
	}
	if prompt[1].Content != "m5" || prompt[20].Content != "ping" {
		t.Fatalf("window should be chronological ending in the new message: first=%q last=%q", prompt[1].Content, prompt[20].Content)
	}

	total, err := messages.CountByProjectID(ctx, project.ID)
	if err != nil || total != 26 {
		t.Fatalf("expected 26 messages, got %d err=%v", total, err)
	}
	if len(events.events) != 1 || events.events[0].Type != model.ActivityChatExchange {
		t.Fatalf("expected one chat.exchange event, got %+v", events.events)
	}
}

func TestSendFallsBackOnProviderFailure(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db, "owner@example.com")
	project := seedProject(t, db, owner, nil)
	messages := repository.NewMessageRepository(db)
	svc := NewChatService(messages, &fakeCompleter{configured: true, err: errProviderDown}, nil, 20, nil)
	ctx := context.Background()

	exchange, err := svc.Send(ctx, project, "hello")
	if err != nil {
		t.Fatalf("send should not fail on provider error: %v", err)
	}
	if exchange.AssistantMessage.Content != FallbackReply {
		t.Fatalf("expected fallback reply, got %q", exchange.AssistantMessage.Content)
	}

	page, err := svc.History(ctx, project, 0, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if page.Total != 2 || page.Messages[0].Content != "hello" || page.Messages[1].Content != FallbackReply {
		t.Fatalf("both turns should be stored: %+v", page)
	}
}

func TestSendValidation(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db, "owner@example.com")
	project := seedProject(t, db, owner, nil)
	messages := repository.NewMessageRepository(db)
	ctx := context.Background()

	svc := NewChatService(messages, &fakeCompleter{configured: true, reply: "ok"}, nil, 20, nil)
	for _, content := range []string{"", "   ", strings.Repeat("a", 5001)} {
		if _, err := svc.Send(ctx, project, content); !errors.Is(err, ErrInvalidMessage) {
			t.Fatalf("expected ErrInvalidMessage for %d chars, got %v", len(content), err)
		}
	}
	if _, err := svc.Send(ctx, project, strings.Repeat("a", 5000)); err != nil {
		t.Fatalf("5000 chars should be accepted: %v", err)
	}

	unconfigured := NewChatService(messages, &fakeCompleter{}, nil, 20, nil)
	before, _ := messages.CountByProjectID(ctx, project.ID)
	if _, err := unconfigured.Send(ctx, project, "hi"); !errors.Is(err, ErrLLMNotConfigured) {
		t.Fatalf("expected ErrLLMNotConfigured, got %v", err)
	}
	after, _ := messages.CountByProjectID(ctx, project.ID)
	if after != before {
		t.Fatalf("nothing should be persisted without llm config: before=%d after=%d", before, after)
	}
}

func TestSendSurvivesClientCancel(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db, "owner@example.com")
	project := seedProject(t, db, owner, nil)
	messages := repository.NewMessageRepository(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var providerCtxErr error
	llm := &fakeCompleter{configured: true, reply: "still here", onCall: func(c context.Context) {
		cancel()
		providerCtxErr = c.Err()
	}}
	svc := NewChatService(messages, llm, nil, 20, nil)

	exchange, err := svc.Send(ctx, project, "hi")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if providerCtxErr != nil {
		t.Fatalf("provider context should not be canceled, got %v", providerCtxErr)
	}
	if exchange.AssistantMessage.ID == 0 || exchange.AssistantMessage.Content != "still here" {
		t.Fatalf("assistant reply should be stored: %+v", exchange.AssistantMessage)
	}
}

func TestHistoryPagination(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db, "owner@example.com")
	project := seedProject(t, db, owner, nil)
	messages := repository.NewMessageRepository(db)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		if err := messages.Create(ctx, &model.Message{ProjectID: project.ID, Role: model.RoleUser, Content: fmt.Sprintf("m%02d", i)}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	svc := NewChatService(messages, &fakeCompleter{configured: true}, nil, 20, nil)

	first, err := svc.History(ctx, project, 10, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if first.Total != 25 || len(first.Messages) != 10 {
		t.Fatalf("unexpected first page: total=%d len=%d", first.Total, len(first.Messages))
	}
	if first.Messages[0].Content != "m15" || first.Messages[9].Content != "m24" {
		t.Fatalf("first page should hold the newest ten in order: %q..%q", first.Messages[0].Content, first.Messages[9].Content)
	}

	last, err := svc.History(ctx, project, 10, 20)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(last.Messages) != 5 || last.Messages[0].Content != "m00" {
		t.Fatalf("unexpected last page: %+v", last.Messages)
	}

	clamped, err := svc.History(ctx, project, 1000, -5)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(clamped.Messages) != 25 {
		t.Fatalf("expected all 25 messages, got %d", len(clamped.Messages))
	}
}

func TestNormalizePage(t *testing.T) {
	cases := []struct {
		limit, offset     int
		wantLim, wantOffs int
	}{
		{0, 0, 50, 0},
		{-1, -1, 50, 0},
		{201, 3, 200, 3},
		{10, 20, 10, 20},
	}
	for _, tc := range cases {
		lim, off := normalizePage(tc.limit, tc.offset)
		if lim != tc.wantLim || off != tc.wantOffs {
			t.Fatalf("normalizePage(%d,%d) = %d,%d", tc.limit, tc.offset, lim, off)
		}
	}
}
