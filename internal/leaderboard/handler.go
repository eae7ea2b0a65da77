package leaderboard

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
)

// Route paths.
const (
	PathScores     = "/api/balance-ball/scores"
	PathSubmit     = "/api/balance-ball/score"
	PathCheckScore = "/api/balance-ball/check-score/"
)

const maxBodyBytes = 4 << 10

// Handler serves the leaderboard REST API.
type Handler struct {
	svc    *Service
	logger *log.Logger
}

// NewHandler creates the handler. A nil logger discards output.
func NewHandler(svc *Service, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Handler{svc: svc, logger: logger}
}

// Register adds the API and health routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.health)
	mux.HandleFunc("GET "+PathScores, h.scores)
	mux.HandleFunc("POST "+PathSubmit, h.submit)
	mux.HandleFunc("GET "+PathCheckScore+"{score}", h.checkScore)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "game": "balance-ball"})
}

func (h *Handler) scores(w http.ResponseWriter, r *http.Request) {
	top, err := h.svc.Top(r.Context())
	if err != nil {
		h.logger.Error("fetch scores", "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch scores")
		return
	}
	writeJSON(w, http.StatusOK, top)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name    any `json:"name"`
		Score   any `json:"score"`
		Message any `json:"message"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Fields of the wrong JSON type count as missing
	var sub Submission
	sub.Name, _ = body.Name.(string)
	sub.Message, _ = body.Message.(string)
	if score, ok := body.Score.(float64); ok {
		sub.Score = &score
	}

	res, err := h.svc.Submit(r.Context(), sub)
	switch {
	case errors.Is(err, ErrNameRequired):
		writeError(w, http.StatusBadRequest, "Name is required")
	case errors.Is(err, ErrInvalidScore):
		writeError(w, http.StatusBadRequest, "Valid score is required")
	case errors.Is(err, ErrNameEmpty):
		writeError(w, http.StatusBadRequest, "Name cannot be empty")
	case err != nil:
		h.logger.Error("submit score", "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to save score")
	default:
		writeJSON(w, http.StatusOK, res)
	}
}

func (h *Handler) checkScore(w http.ResponseWriter, r *http.Request) {
	score, ok := ParseScore(r.PathValue("score"))
	if !ok || score < 0 {
		writeJSON(w, http.StatusOK, CheckResult{})
		return
	}
	res, err := h.svc.Check(r.Context(), score)
	if err != nil {
		h.logger.Error("check score", "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to check score")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
