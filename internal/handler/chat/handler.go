package chat

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hirex-ai/hirex/backend/internal/handler/httperr"
	"github.com/hirex-ai/hirex/backend/internal/service/assistant"
	chatService "github.com/hirex-ai/hirex/backend/internal/service/chat"
	"github.com/hirex-ai/hirex/backend/pkg/logger"
	"github.com/hirex-ai/hirex/backend/pkg/utils"
)

// Handler 聊天服务的HTTP处理器
type Handler struct {
	chatSvc    *chatService.Service
	dispatcher *assistant.Dispatcher
	log        *zap.Logger
}

// New 创建聊天处理器
func New(chatSvc *chatService.Service, dispatcher *assistant.Dispatcher, log *zap.Logger) *Handler {
	return &Handler{
		chatSvc:    chatSvc,
		dispatcher: dispatcher,
		log:        logger.OrNop(log).Named("chat"),
	}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleCreateSession)
	r.Route("/session/{sessionID}", func(r chi.Router) {
		r.Get("/", h.handleGetSession)
		r.Delete("/", h.handleDeleteSession)
		r.Get("/turns", h.handleListTurns)
		r.Delete("/turns", h.handleClearTurns)
		r.Post("/messages", h.handleSendMessage)
	})
}

// handleCreateSession 创建会话
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.chatSvc.CreateSession(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.log.Info("session created", zap.String("session", session.ID))
	utils.RespondJSON(w, http.StatusCreated, session)
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.chatSvc.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		utils.RespondError(w, httperr.Status(err), err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, session)
}

func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.chatSvc.DeleteSession(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		utils.RespondError(w, httperr.Status(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListTurns 按顺序返回会话中的全部消息
func (h *Handler) handleListTurns(w http.ResponseWriter, r *http.Request) {
	turns, err := h.chatSvc.Transcript(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		utils.RespondError(w, httperr.Status(err), err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"turns": turns})
}

// handleClearTurns 清空聊天窗口
func (h *Handler) handleClearTurns(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := h.chatSvc.Clear(r.Context(), sessionID); err != nil {
		utils.RespondError(w, httperr.Status(err), err.Error())
		return
	}

	h.log.Info("session cleared", zap.String("session", sessionID))
	w.WriteHeader(http.StatusNoContent)
}

// handleSendMessage 发送用户消息并返回助手回复
func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	exchange, err := h.dispatcher.Respond(r.Context(), sessionID, payload.Text)
	if err != nil {
		status := httperr.Status(err)
		if status >= http.StatusInternalServerError {
			h.log.Error("reply failed", zap.String("session", sessionID), zap.Error(err))
		}
		utils.RespondError(w, status, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, exchange)
}
