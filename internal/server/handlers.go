package server

import (
	"encoding/json"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"chessclient/internal/game"
)

// Handler exposes the hub over the wire protocol.
type Handler struct {
	hub *Hub
}

// NewHandler creates a handler instance.
func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

// Routes builds the JSON-POST router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	r.Post("/get_moves", h.HandleGetMoves)
	r.Post("/move", h.HandleMove)
	r.Post("/get_current_board", h.HandleGetCurrentBoard)
	r.Post("/get_turn", h.HandleGetTurn)
	r.Post("/get_messages", h.HandleGetMessages)
	r.Post("/send_message", h.HandleSendMessage)
	r.Post("/is_valid_username", h.HandleIsValidUsername)
	return r
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// HandleGetMoves returns the legal destination squares of a piece.
func (h *Handler) HandleGetMoves(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Source      string `json:"source"`
		ID          string `json:"id"`
		Orientation string `json:"orientation"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "bad json"})
		return
	}
	gs := h.hub.Get(r.Context(), body.ID)
	gs.Touch()
	moves := gs.LegalDestinations(body.Source)
	if moves == nil {
		moves = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"moves": moves})
}

// HandleMove attempts a move and reports the verdict.
func (h *Handler) HandleMove(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Source      string `json:"source"`
		Destination string `json:"destination"`
		ID          string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "bad json"})
		return
	}
	gs := h.hub.Get(r.Context(), body.ID)
	gs.Touch()
	writeJSON(w, http.StatusOK, map[string]any{"valid": gs.Move(r.Context(), body.Source, body.Destination)})
}

// HandleGetCurrentBoard returns the full snapshot.
func (h *Handler) HandleGetCurrentBoard(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "bad json"})
		return
	}
	gs := h.hub.Get(r.Context(), body.ID)
	writeJSON(w, http.StatusOK, gs.Snapshot())
}

// HandleGetTurn returns the side to move.
func (h *Handler) HandleGetTurn(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "bad json"})
		return
	}
	gs := h.hub.Get(r.Context(), body.ID)
	writeJSON(w, http.StatusOK, map[string]any{"turn": gs.Turn()})
}

// HandleGetMessages returns chat messages, full history on reset.
func (h *Handler) HandleGetMessages(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID    string `json:"id"`
		Reset bool   `json:"reset"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "bad json"})
		return
	}
	gs := h.hub.Get(r.Context(), body.ID)
	msgs := gs.Messages(body.Reset)
	if msgs == nil {
		msgs = []game.ChatMessage{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

// HandleSendMessage appends a chat message.
func (h *Handler) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Message string `json:"message"`
		ID      string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "bad json"})
		return
	}
	if body.Message != "" {
		h.hub.Get(r.Context(), body.ID).AddMessage(r.Context(), body.Message)
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// HandleIsValidUsername runs the login-time username check.
func (h *Handler) HandleIsValidUsername(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "bad json"})
		return
	}
	valid, message := validateUsername(body.Username)
	writeJSON(w, http.StatusOK, map[string]any{"valid": valid, "message": message})
}

func validateUsername(name string) (bool, string) {
	switch {
	case len(name) < 3:
		return false, "username must be at least 3 characters"
	case len(name) > 16:
		return false, "username must be at most 16 characters"
	case !usernamePattern.MatchString(name):
		return false, "username may only contain letters, digits and underscores"
	default:
		return true, ""
	}
}
