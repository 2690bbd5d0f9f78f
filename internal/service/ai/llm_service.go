package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/hirex-ai/hirex/backend/internal/model/chat"
	"github.com/hirex-ai/hirex/backend/pkg/logger"
)

// Options tunes how conversations are presented to the model.
type Options struct {
	SystemPrompt string
	// HistoryLimit caps the number of prior turns forwarded; 0 forwards all.
	HistoryLimit int
	Streaming    bool
}

// Service wraps the configured chat model in a prompt chain.
type Service struct {
	chatModel model.ChatModel
	opts      Options
	chain     compose.Runnable[map[string]any, *schema.Message]
	log       *zap.Logger
}

// NewService compiles the prompt chain around chatModel.
func NewService(ctx context.Context, chatModel model.ChatModel, opts Options, log *zap.Logger) (*Service, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("chat model is required")
	}

	templates := make([]schema.MessagesTemplate, 0, 3)
	if strings.TrimSpace(opts.SystemPrompt) != "" {
		templates = append(templates, schema.SystemMessage("{system}"))
	}
	templates = append(templates,
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)
	promptTemplate := prompt.FromMessages(schema.FString, templates...)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{
		chatModel: chatModel,
		opts:      opts,
		chain:     runnable,
		log:       logger.OrNop(log).Named("ai"),
	}, nil
}

// StreamingEnabled reports whether replies are streamed.
func (s *Service) StreamingEnabled() bool {
	return s.opts.Streaming
}

// GenerateReply asks the model to answer userText in the context of history.
func (s *Service) GenerateReply(ctx context.Context, history []chat.Turn, userText string) (*schema.Message, error) {
	response, err := s.chain.Invoke(ctx, s.buildChainInput(history, userText))
	if err != nil {
		return nil, fmt.Errorf("failed to run AI chain: %w", err)
	}

	s.log.Debug("generated reply", zap.Int("history", len(history)), zap.Int("length", len(response.Content)))
	return response, nil
}

// StreamReply streams the model's answer chunk by chunk.
func (s *Service) StreamReply(ctx context.Context, history []chat.Turn, userText string) (*schema.StreamReader[*schema.Message], error) {
	if !s.StreamingEnabled() {
		return nil, fmt.Errorf("streaming disabled in configuration")
	}

	stream, err := s.chain.Stream(ctx, s.buildChainInput(history, userText))
	if err != nil {
		return nil, fmt.Errorf("failed to stream AI chain output: %w", err)
	}
	return stream, nil
}

func (s *Service) buildChainInput(history []chat.Turn, userText string) map[string]any {
	return map[string]any{
		"system":  s.opts.SystemPrompt,
		"history": s.buildHistoryMessages(history),
		"query":   userText,
	}
}

// buildHistoryMessages converts the transcript into model messages. Out-of-scope
// exchanges never reached the model, so they are left out of its context.
func (s *Service) buildHistoryMessages(turns []chat.Turn) []*schema.Message {
	inScope := make([]chat.Turn, 0, len(turns))
	for _, turn := range turns {
		if turn.OutOfScope {
			continue
		}
		inScope = append(inScope, turn)
	}

	if limit := s.opts.HistoryLimit; limit > 0 && len(inScope) > limit {
		inScope = inScope[len(inScope)-limit:]
	}
	// Gemini expects contents to open with a user turn, so a window cut
	// mid-exchange drops the orphaned reply.
	for len(inScope) > 0 && inScope[0].Speaker != chat.User {
		inScope = inScope[1:]
	}

	if len(inScope) == 0 {
		return nil
	}

	history := make([]*schema.Message, 0, len(inScope))
	for _, turn := range inScope {
		switch turn.Speaker {
		case chat.User:
			history = append(history, schema.UserMessage(turn.Text))
		case chat.Assistant:
			history = append(history, schema.AssistantMessage(turn.Text, nil))
		}
	}
	return history
}
