package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"legal-llama/internal/domain"
	"legal-llama/internal/logger"
	"legal-llama/internal/usecase/chat"
)

const maxBodyBytes = 1 << 16

type Conversations interface {
	Start(sessionID string) []domain.Message
	History(sessionID string) []domain.Message
	Exists(sessionID string) bool
	HandleMessage(ctx context.Context, sessionID, text string) (chat.Reply, error)
}

type Server struct {
	chat  Conversations
	log   *zap.Logger
	newID func() string
}

func NewServer(conversations Conversations, log *zap.Logger) *Server {
	return &Server{
		chat:  conversations,
		log:   logger.OrNop(log),
		newID: uuid.NewString,
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Post("/sessions", s.handleCreateSession)
	r.Get("/sessions/{id}/messages", s.handleHistory)
	r.Post("/sessions/{id}/messages", s.handleMessage)

	return r
}

type errorResponse struct {
	Error string `json:"error"`
}

type sessionResponse struct {
	ID       string           `json:"id"`
	Messages []domain.Message `json:"messages"`
}

type messageRequest struct {
	Text string `json:"text"`
}

type messageResponse struct {
	Reply  string `json:"reply"`
	Status string `json:"status"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	id := s.newID()
	writeJSON(w, http.StatusCreated, sessionResponse{ID: id, Messages: s.chat.Start(id)})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.chat.Exists(id) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "session not found"})
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{ID: id, Messages: s.chat.History(id)})
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.chat.Exists(id) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "session not found"})
		return
	}

	var req messageRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	started := time.Now()
	reply, err := s.chat.HandleMessage(r.Context(), id, req.Text)
	if err != nil {
		if errors.Is(err, chat.ErrEmptyMessage) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		s.log.Error("handle message",
			zap.String("session", id),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	s.log.Debug("message handled",
		zap.String("session", id),
		zap.String("status", reply.Status()),
		zap.Duration("elapsed", time.Since(started)),
	)
	writeJSON(w, http.StatusOK, messageResponse{Reply: reply.Text, Status: reply.Status()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
