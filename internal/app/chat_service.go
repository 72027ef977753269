package app

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"chatbot-platform/internal/ai"
	"chatbot-platform/internal/model"
	"chatbot-platform/internal/repository"
)

const (
	maxMessageLength    = 5000
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200

	FallbackReply = "I'm sorry, I'm having trouble processing your request right now. Please try again later."
)

// ChatCompleter produces the assistant reply for a prompt window.
type ChatCompleter interface {
	Configured() bool
	Complete(ctx context.Context, messages []ai.ChatMessage) (string, error)
}

type ActivityPublisher interface {
	Publish(ctx context.Context, event model.ActivityEvent) error
}

// NoopActivityPublisher drops every event.
type NoopActivityPublisher struct{}

func (NoopActivityPublisher) Publish(context.Context, model.ActivityEvent) error { return nil }

type ChatService struct {
	messageRepo *repository.MessageRepository
	llm         ChatCompleter
	activity    ActivityPublisher
	maxContext  int
	log         *zap.Logger
}

type ChatExchange struct {
	UserMessage      model.Message `json:"user_message"`
	AssistantMessage model.Message `json:"assistant_message"`
}

type HistoryPage struct {
	Messages []model.Message `json:"messages"`
	Total    int64           `json:"total"`
}

func NewChatService(
	messageRepo *repository.MessageRepository,
	llm ChatCompleter,
	activity ActivityPublisher,
	maxContext int,
	log *zap.Logger,
) *ChatService {
	if maxContext <= 0 {
		maxContext = 20
	}
	if activity == nil {
		activity = NoopActivityPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ChatService{
		messageRepo: messageRepo,
		llm:         llm,
		activity:    activity,
		maxContext:  maxContext,
		log:         log.Named("chat"),
	}
}

// Send stores the user turn, asks the provider for a reply and stores that
// too. Provider failures are replaced by FallbackReply.
func (s *ChatService) Send(ctx context.Context, project *model.Project, content string) (*ChatExchange, error) {
	content = strings.TrimSpace(content)
	if content == "" || utf8.RuneCountInString(content) > maxMessageLength {
		return nil, ErrInvalidMessage
	}
	if s.llm == nil || !s.llm.Configured() {
		return nil, ErrLLMNotConfigured
	}

	userMessage := &model.Message{
		ProjectID: project.ID,
		Role:      model.RoleUser,
		Content:   content,
	}
	if err := s.messageRepo.Create(ctx, userMessage); err != nil {
		return nil, err
	}

	// The provider call and everything after it outlive a client disconnect.
	detached := context.WithoutCancel(ctx)

	reply, err := s.complete(detached, project)
	if err != nil {
		s.log.Warn("llm completion failed, using fallback",
			zap.Uint("project_id", project.ID),
			zap.Error(err),
		)
		reply = FallbackReply
	}

	assistantMessage := &model.Message{
		ProjectID: project.ID,
		Role:      model.RoleAssistant,
		Content:   reply,
	}
	if err := s.messageRepo.Create(detached, assistantMessage); err != nil {
		return nil, err
	}

	s.publish(detached, model.ActivityEvent{
		Type:       model.ActivityChatExchange,
		UserID:     project.UserID,
		ProjectID:  project.ID,
		ResourceID: assistantMessage.ID,
	})

	return &ChatExchange{UserMessage: *userMessage, AssistantMessage: *assistantMessage}, nil
}

// History returns one page of messages in chronological order plus the
// project's total message count.
func (s *ChatService) History(ctx context.Context, project *model.Project, limit, offset int) (*HistoryPage, error) {
	limit, offset = normalizePage(limit, offset)

	messages, err := s.messageRepo.ListPageByProjectID(ctx, project.ID, limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := s.messageRepo.CountByProjectID(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []model.Message{}
	}
	return &HistoryPage{Messages: messages, Total: total}, nil
}

func (s *ChatService) complete(ctx context.Context, project *model.Project) (string, error) {
	window, err := s.messageRepo.ListRecentByProjectID(ctx, project.ID, s.maxContext)
	if err != nil {
		return "", err
	}
	return s.llm.Complete(ctx, buildPrompt(project, window))
}

func (s *ChatService) publish(ctx context.Context, event model.ActivityEvent) {
	event.OccurredAt = time.Now().UTC()
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.activity.Publish(ctx, event); err != nil {
		s.log.Warn("publish activity event failed", zap.String("type", event.Type), zap.Error(err))
	}
}

// buildPrompt prepends the system prompt, when set, to the chronological window.
func buildPrompt(project *model.Project, window []model.Message) []ai.ChatMessage {
	prompt := make([]ai.ChatMessage, 0, len(window)+1)
	if project.SystemPrompt != nil {
		if sp := strings.TrimSpace(*project.SystemPrompt); sp != "" {
			prompt = append(prompt, ai.ChatMessage{Role: model.RoleSystem, Content: sp})
		}
	}
	for _, m := range window {
		prompt = append(prompt, ai.ChatMessage{Role: m.Role, Content: m.Content})
	}
	return prompt
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
