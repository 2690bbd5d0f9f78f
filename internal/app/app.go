// Package app assembles the HirEx services from configuration.
package app

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/hirex-ai/hirex/backend/internal/analysis/topic"
	"github.com/hirex-ai/hirex/backend/internal/config"
	"github.com/hirex-ai/hirex/backend/internal/model/profile"
	"github.com/hirex-ai/hirex/backend/internal/service/ai"
	"github.com/hirex-ai/hirex/backend/internal/service/assistant"
	"github.com/hirex-ai/hirex/backend/internal/service/chat"
	"github.com/hirex-ai/hirex/backend/pkg/logger"
)

// App holds the wired services.
type App struct {
	Profile    profile.Profile
	Profiles   *profile.MemoryStore
	Chat       *chat.Service
	AI         *ai.Service
	Dispatcher *assistant.Dispatcher
}

// New builds every service. A model that cannot be created is logged and left
// out: off-topic questions keep working, in-scope ones report the model as
// unavailable.
func New(ctx context.Context, cfg *config.Config, httpClient *http.Client, log *zap.Logger) (*App, error) {
	log = logger.OrNop(log)

	p := profile.Default()
	if len(cfg.Topic.Keywords) > 0 {
		p.Keywords = append([]string(nil), cfg.Topic.Keywords...)
	}
	if cfg.AI.SystemPrompt != "" {
		p.SystemPrompt = cfg.AI.SystemPrompt
	}

	gate := topic.NewGate(p.Keywords...)
	p.Keywords = gate.Keywords()

	a := &App{
		Profile:  p,
		Profiles: profile.NewMemoryStore(p),
		Chat:     chat.NewService(),
	}

	var model assistant.Model
	if cfg.AI.Enabled() {
		aiService, err := newAIService(ctx, cfg.AI, p, httpClient, log)
		if err != nil {
			log.Warn("continuing without AI functionality", zap.String("provider", cfg.AI.Provider), zap.Error(err))
		} else {
			a.AI = aiService
			model = aiService
			log.Info("AI service initialized", zap.String("provider", cfg.AI.Provider))
		}
	} else {
		log.Warn("AI provider not configured, skipping model initialization", zap.String("provider", cfg.AI.Provider))
	}

	if cfg.AI.Provider == config.ProviderGemini && cfg.AI.GoogleAPIKey == "" {
		log.Warn("GOOGLE_API_KEY is empty; requests will fail authentication")
	}

	a.Dispatcher = assistant.NewDispatcher(gate, a.Chat, model, log)
	return a, nil
}

func newAIService(ctx context.Context, cfg config.AIConfig, p profile.Profile, httpClient *http.Client, log *zap.Logger) (*ai.Service, error) {
	chatModel, err := cfg.NewChatModel(ctx, httpClient)
	if err != nil {
		return nil, err
	}
	return ai.NewService(ctx, chatModel, ai.Options{
		SystemPrompt: ai.BuildSystemPrompt(p),
		HistoryLimit: cfg.HistoryLimit,
		Streaming:    cfg.StreamResponse,
	}, log)
}
