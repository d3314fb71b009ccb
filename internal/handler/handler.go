package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/subwatch/subwatch/internal/models"
	"github.com/subwatch/subwatch/internal/service"
)

type Handler struct {
	svc *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps service errors onto HTTP statuses.
func statusFor(err error) int {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "not found"):
		return http.StatusNotFound
	case strings.Contains(msg, "invalid credentials"):
		return http.StatusUnauthorized
	case strings.Contains(msg, "required") || strings.Contains(msg, "must be") ||
		strings.Contains(msg, "unsupported"):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.svc.Register(req.Username, req.Email, req.Password)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.svc.Login(req.Email, req.Password)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"token": token})
}

// AnalyzeUpload parses an uploaded statement, detects subscriptions and
// persists them for the authenticated user.
func (h *Handler) AnalyzeUpload(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
		Format  string `json:"format"`
		// Older clients send the statement under this key.
		CSVContent string `json:"csv_content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	content := req.Content
	if content == "" {
		content = req.CSVContent
	}
	if content == "" {
		respondError(w, http.StatusBadRequest, "missing statement content")
		return
	}

	report, err := h.svc.AnalyzeUpload(r.Context(), content, req.Format)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// ListSubscriptions returns the user's active subscriptions
func (h *Handler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.svc.ListSubscriptions(r.Context())
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	if subs == nil {
		subs = []models.Subscription{}
	}
	respondJSON(w, http.StatusOK, subs)
}

// UpcomingSubscriptions returns subscriptions due in the next seven days
func (h *Handler) UpcomingSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.svc.ListUpcomingSubscriptions(r.Context())
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	if subs == nil {
		subs = []models.Subscription{}
	}
	respondJSON(w, http.StatusOK, subs)
}

// ExportSubscriptions streams the user's subscriptions as a CSV download
func (h *Handler) ExportSubscriptions(w http.ResponseWriter, r *http.Request) {
	csv, err := h.svc.ExportSubscriptionsCSV(r.Context())
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=subscriptions.csv")
	w.Write([]byte(csv))
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id, err == nil
}

// MarkFalsePositive flags a subscription as wrongly detected
func (h *Handler) MarkFalsePositive(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid subscription id")
		return
	}
	if err := h.svc.MarkFalsePositive(r.Context(), id); err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteSubscription removes a subscription
func (h *Handler) DeleteSubscription(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid subscription id")
		return
	}
	if err := h.svc.DeleteSubscription(r.Context(), id); err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListCards returns the user's registered cards
func (h *Handler) ListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := h.svc.ListCards(r.Context())
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	if cards == nil {
		cards = []models.Card{}
	}
	respondJSON(w, http.StatusOK, cards)
}

// CreateCard registers a card
func (h *Handler) CreateCard(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LastFour       string `json:"last_four"`
		CardholderName string `json:"cardholder_name"`
		Nickname       string `json:"nickname"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	card, err := h.svc.CreateCard(r.Context(), req.LastFour, req.CardholderName, req.Nickname)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, card)
}

// DeleteCard removes a card
func (h *Handler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid card id")
		return
	}
	if err := h.svc.DeleteCard(r.Context(), id); err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
