package httpapi

import (
	"net/http"
	"strings"
)

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "message is required")
		return
	}
	respondJSON(w, http.StatusOK, chatResponse{Reply: s.deps.Chat.Reply(r.Context(), userFrom(r), req.Message)})
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.deps.Conversation.GetConversation(r.Context(), userFrom(r))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"messages":  msgs,
		"max_turns": s.deps.Conversation.MaxTurns(),
	})
}

func (s *Server) handleClearConversation(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Conversation.Clear(r.Context(), userFrom(r)); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
