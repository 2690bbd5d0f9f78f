package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hirex-ai/hirex/backend/internal/handler/chat"
	"github.com/hirex-ai/hirex/backend/internal/handler/profile"
	"github.com/hirex-ai/hirex/backend/internal/handler/stream"
	"github.com/hirex-ai/hirex/backend/internal/handler/ws"
	middlewarePkg "github.com/hirex-ai/hirex/backend/internal/middleware"
	profileModel "github.com/hirex-ai/hirex/backend/internal/model/profile"
	"github.com/hirex-ai/hirex/backend/internal/service/assistant"
	chatService "github.com/hirex-ai/hirex/backend/internal/service/chat"
	"github.com/hirex-ai/hirex/backend/pkg/logger"
	"github.com/hirex-ai/hirex/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(profiles profileModel.Store, chatSvc *chatService.Service, dispatcher *assistant.Dispatcher, log *zap.Logger) http.Handler {
	log = logger.OrNop(log)
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.RequestLogger(log.Named("http")))
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	profileHandler := profile.New(profiles)
	chatHandler := chat.New(chatSvc, dispatcher, log)
	streamHandler := stream.New(dispatcher, log)
	wsHandler := ws.New(chatSvc, dispatcher, log)

	r.Route("/api", func(api chi.Router) {
		profileHandler.RegisterRoutes(api)
		chatHandler.RegisterRoutes(api)
		streamHandler.RegisterRoutes(api)
		wsHandler.RegisterRoutes(api)
	})

	return r
}
