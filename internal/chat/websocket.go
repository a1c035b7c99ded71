package chat

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lushmoments/lush-chat/internal/agent"
	"github.com/lushmoments/lush-chat/internal/config"
	"github.com/lushmoments/lush-chat/internal/domain"
	"github.com/lushmoments/lush-chat/internal/store"

	"github.com/coder/websocket"
)

const (
	welcomeMessage = "Hello! Welcome to Lush Moments. I'm your AI assistant. How can I help you plan your perfect celebration today?"
	transferNotice = "I've transferred you to a human agent. One of our team members will be with you shortly!"
	waitingNotice  = "A human agent will respond to your message shortly..."

	defaultTransferReason = "User requested human assistance"
)

// clientFrame is the inbound message envelope.
type clientFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// serverFrame is the outbound message envelope. Frame types are "user"
// (echo), "bot", "system" and "error".
type serverFrame struct {
	Type        string `json:"type"`
	Message     string `json:"message"`
	Timestamp   string `json:"timestamp"`
	IsAgent     *bool  `json:"is_agent,omitempty"`
	Transferred bool   `json:"transferred,omitempty"`
}

func frame(frameType, message string, at time.Time) serverFrame {
	return serverFrame{
		Type:      frameType,
		Message:   message,
		Timestamp: at.UTC().Format(time.RFC3339Nano),
	}
}

func botFrame(message string, at time.Time, isAgent bool) serverFrame {
	f := frame("bot", message, at)
	f.IsAgent = &isAgent
	return f
}

// WebSocketHandler serves the visitor chat WebSocket endpoint.
type WebSocketHandler struct {
	repo          store.Repository
	hub           *Hub
	svc           *agent.Service
	locks         *turnLocks
	limiter       *agent.RateLimiter
	convLog       agent.ConversationLogger
	agentCfg      config.AgentConfig
	allowedOrigin string
	isDev         bool
}

// NewWebSocketHandler creates a WebSocket chat handler. svc may be nil when
// no model backend is configured; the handler then answers with the scripted
// fallback instead of AI replies.
func NewWebSocketHandler(repo store.Repository, hub *Hub, svc *agent.Service, convLog agent.ConversationLogger, cfg *config.Config, isDev bool) *WebSocketHandler {
	if convLog == nil {
		convLog = agent.NoopConversationLogger()
	}
	return &WebSocketHandler{
		repo:          repo,
		hub:           hub,
		svc:           svc,
		locks:         newTurnLocks(),
		limiter:       agent.NewRateLimiter(cfg.RateLimit.MessagesPerWindow, cfg.RateLimit.WindowDuration),
		convLog:       convLog,
		agentCfg:      cfg.Agent,
		allowedOrigin: cfg.FrontendURL,
		isDev:         isDev,
	}
}

// ServeHTTP implements http.Handler for the WebSocket upgrade.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")
	if sessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}
	slog.Info("Chat WebSocket connection request", "session_id", sessionID, "ip", r.RemoteAddr)

	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "session_id", sessionID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr, "session_id", sessionID)
		}
	}()

	h.hub.Register(sessionID, ws)
	defer h.hub.Unregister(sessionID, ws)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	session, err := h.repo.EnsureSession(ctx, sessionID)
	if err != nil {
		slog.Error("Failed to ensure chat session", "error", err, "session_id", sessionID)
		h.hub.Send(ctx, sessionID, frame("error", "session unavailable", time.Now()))
		return
	}

	h.sendWelcome(ctx, session)
	h.readLoop(ctx, ws, sessionID)
	slog.Info("Chat session ended", "session_id", sessionID)
}

func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "" || h.allowedOrigin == "*" {
		return true
	}
	if origin == h.allowedOrigin {
		return true
	}
	slog.Warn("Chat WebSocket origin rejected", "origin", origin, "allowed", h.allowedOrigin)
	return false
}

// sendWelcome persists and pushes the greeting on every connect, including
// reconnects, so the transcript mirrors exactly what the visitor saw.
func (h *WebSocketHandler) sendWelcome(ctx context.Context, session *domain.Session) {
	now := time.Now()
	if err := h.repo.AppendMessage(ctx, &domain.ChatMessage{
		SessionID: session.SessionID,
		Sender:    domain.SenderAIAgent,
		Message:   welcomeMessage,
		Timestamp: now,
	}); err != nil {
		slog.Warn("Failed to persist welcome message", "error", err, "session_id", session.SessionID)
	}
	h.hub.Send(ctx, session.SessionID, botFrame(welcomeMessage, now, true))
}

func (h *WebSocketHandler) readLoop(ctx context.Context, ws *websocket.Conn, sessionID string) {
	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("WebSocket closed by client", "session_id", sessionID)
			} else if ctx.Err() == nil {
				slog.Warn("WebSocket read error", "error", err, "session_id", sessionID)
			}
			return
		}

		var msg clientFrame
		if err := json.Unmarshal(data, &msg); err != nil {
			h.hub.Send(ctx, sessionID, frame("error", "invalid message format", time.Now()))
			continue
		}

		switch msg.Type {
		case "request_human":
			h.handleTransferRequest(ctx, sessionID, msg.Message)
		case "message", "":
			h.handleVisitorMessage(ctx, sessionID, msg.Message)
		default:
			h.hub.Send(ctx, sessionID, frame("error", "unsupported message type", time.Now()))
		}
	}
}

// handleTransferRequest flips the session to human handling. The flip is
// one way: once transferred, the assistant never answers this session again.
func (h *WebSocketHandler) handleTransferRequest(ctx context.Context, sessionID, reason string) {
	if reason == "" {
		reason = defaultTransferReason
	}
	if err := h.repo.TransferToHuman(ctx, sessionID, reason); err != nil {
		slog.Error("Failed to transfer session", "error", err, "session_id", sessionID)
		h.hub.Send(ctx, sessionID, frame("error", "transfer failed, please try again", time.Now()))
		return
	}
	slog.Info("Session transferred to human", "session_id", sessionID, "reason", reason)

	now := time.Now()
	if err := h.repo.AppendMessage(ctx, &domain.ChatMessage{
		SessionID: sessionID,
		Sender:    domain.SenderAIAgent,
		Message:   transferNotice,
		Timestamp: now,
	}); err != nil {
		slog.Warn("Failed to persist transfer notice", "error", err, "session_id", sessionID)
	}

	f := frame("system", transferNotice, now)
	f.Transferred = true
	h.hub.Send(ctx, sessionID, f)
}

func (h *WebSocketHandler) handleVisitorMessage(ctx context.Context, sessionID, text string) {
	if text == "" {
		h.hub.Send(ctx, sessionID, frame("error", "message is required", time.Now()))
		return
	}
	if !h.limiter.Allow(sessionID) {
		h.hub.Send(ctx, sessionID, frame("error", "too many messages, please slow down", time.Now()))
		return
	}

	session, err := h.repo.GetSession(ctx, sessionID)
	if err != nil || session == nil {
		slog.Error("Failed to load session for message", "error", err, "session_id", sessionID)
		h.hub.Send(ctx, sessionID, frame("error", "session unavailable", time.Now()))
		return
	}

	// History window is read before the new message is appended so the
	// model sees the message exactly once, as the current turn.
	history, err := h.repo.RecentMessages(ctx, sessionID, h.agentCfg.HistoryWindow)
	if err != nil {
		slog.Warn("Failed to load chat history", "error", err, "session_id", sessionID)
		history = nil
	}

	now := time.Now()
	if err := h.repo.AppendMessage(ctx, &domain.ChatMessage{
		SessionID: sessionID,
		Sender:    domain.SenderVisitor,
		Message:   text,
		Timestamp: now,
	}); err != nil {
		slog.Error("Failed to persist visitor message", "error", err, "session_id", sessionID)
		h.hub.Send(ctx, sessionID, frame("error", "failed to save message", time.Now()))
		return
	}
	h.hub.Send(ctx, sessionID, frame("user", text, now))
	h.logConversation(session, "outbound", "chat_user_message", text)

	if !session.CanAutoReply() {
		h.sendAgentReply(ctx, session, waitingNotice, false)
		return
	}

	h.runTurn(ctx, session, text, history)
}

// runTurn produces the assistant reply for one visitor message. Turns for
// the same session run strictly one at a time. The turn is detached from the
// connection context so a disconnect mid-generation does not abort it: the
// reply still lands in the transcript, bounded by its own deadline.
func (h *WebSocketHandler) runTurn(ctx context.Context, session *domain.Session, text string, history []*domain.ChatMessage) {
	h.locks.Lock(session.SessionID)
	defer h.locks.Unlock(session.SessionID)

	turnCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.turnBudget())
	defer cancel()

	reply := agent.FallbackReply
	if h.svc != nil {
		resp := h.svc.Chat(turnCtx, agent.ChatRequest{
			SessionID: session.SessionID,
			Message:   text,
			History:   history,
		})
		reply = resp.Response
	}

	// The reply is delivered even when the turn budget expired while the
	// backend was finishing up.
	h.sendAgentReply(context.WithoutCancel(turnCtx), session, reply, true)
}

// turnBudget bounds one full turn: every tool round can spend a model call
// plus a lookup, and the whole thing may be retried once.
func (h *WebSocketHandler) turnBudget() time.Duration {
	perRound := h.agentCfg.ModelTimeout + h.agentCfg.ToolTimeout
	return 2 * time.Duration(h.agentCfg.MaxToolRounds+1) * perRound
}

// sendAgentReply persists an assistant-side message and pushes it to the
// visitor if still connected.
func (h *WebSocketHandler) sendAgentReply(ctx context.Context, session *domain.Session, text string, isAgent bool) {
	now := time.Now()
	if err := h.repo.AppendMessage(ctx, &domain.ChatMessage{
		SessionID: session.SessionID,
		Sender:    domain.SenderAIAgent,
		Message:   text,
		Timestamp: now,
	}); err != nil {
		slog.Error("Failed to persist assistant reply", "error", err, "session_id", session.SessionID)
	}
	h.hub.Send(ctx, session.SessionID, botFrame(text, now, isAgent))
	h.logConversation(session, "inbound", "chat_assistant_message", text)
}

func (h *WebSocketHandler) logConversation(session *domain.Session, direction, eventType, content string) {
	userID := "anonymous"
	if session.IsLinked() {
		userID = *session.LinkedUserID
	}
	h.convLog.Log(agent.ConversationLogEvent{
		UserID:     userID,
		SessionID:  session.SessionID,
		Channel:    "chat_ws",
		Direction:  direction,
		EventType:  eventType,
		ContentRaw: content,
	})
}
