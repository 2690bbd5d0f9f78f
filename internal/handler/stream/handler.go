package stream

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hirex-ai/hirex/backend/internal/service/assistant"
	"github.com/hirex-ai/hirex/backend/pkg/logger"
	"github.com/hirex-ai/hirex/backend/pkg/utils"
)

// Handler manages streaming assistant replies via Server-Sent Events
type Handler struct {
	dispatcher *assistant.Dispatcher
	log        *zap.Logger
}

// New creates a new stream handler
func New(dispatcher *assistant.Dispatcher, log *zap.Logger) *Handler {
	return &Handler{
		dispatcher: dispatcher,
		log:        logger.OrNop(log).Named("stream"),
	}
}

// StreamResponse represents a streaming response chunk
type StreamResponse struct {
	Event     string `json:"event"`
	Content   string `json:"content,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	InScope   *bool  `json:"inScope,omitempty"`
	Finished  bool   `json:"finished,omitempty"`
	Error     string `json:"error,omitempty"`
}

// RegisterRoutes 注册流式输出路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/stream/{sessionID}", h.handleStream)
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	userMessage := strings.TrimSpace(r.URL.Query().Get("message"))

	if userMessage == "" {
		utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
		return
	}

	if err := h.HandleStreamRequest(r.Context(), w, sessionID, userMessage); err != nil {
		h.log.Warn("stream request failed", zap.String("session", sessionID), zap.Error(err))
	}
}

// HandleStreamRequest answers userMessage for the session as a stream of SSE
// events: start, delta*, message, end. Failures are reported as an error event.
func (h *Handler) HandleStreamRequest(ctx context.Context, w http.ResponseWriter, sessionID string, userMessage string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return fmt.Errorf("streaming unsupported")
	}

	utils.SetupSSEHeaders(w)

	utils.SendSSEChunk(w, flusher, StreamResponse{
		Event:     "start",
		SessionID: sessionID,
	})

	exchange, err := h.dispatcher.Stream(ctx, sessionID, userMessage, func(delta string) {
		utils.SendSSEChunk(w, flusher, StreamResponse{
			Event:     "delta",
			SessionID: sessionID,
			Content:   delta,
		})
	})
	if err != nil {
		utils.SendSSEChunk(w, flusher, StreamResponse{
			Event:     "error",
			SessionID: sessionID,
			Error:     err.Error(),
		})
		return err
	}

	inScope := exchange.InScope
	utils.SendSSEChunk(w, flusher, StreamResponse{
		Event:     "message",
		SessionID: sessionID,
		Content:   exchange.Assistant.Text,
		InScope:   &inScope,
	})

	utils.SendSSEChunk(w, flusher, StreamResponse{
		Event:     "end",
		SessionID: sessionID,
		Finished:  true,
	})

	h.log.Debug("stream completed", zap.String("session", sessionID), zap.Bool("in_scope", inScope))
	return nil
}
