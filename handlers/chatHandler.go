package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"langtutor/db"
	"langtutor/services/generate"

	"github.com/gorilla/mux"
)

type ChatRequest struct {
	Question string `json:"question"`
}

type ChatEvaluationRequest struct {
	Limit int `json:"limit"`
}

type ChatHandler struct {
	tutor *generate.Service
}

func NewChatHandler(tutor *generate.Service) *ChatHandler {
	return &ChatHandler{tutor: tutor}
}

func (h *ChatHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/students/{id}/chat", h.Chat).Methods("POST")
	router.HandleFunc("/students/{id}/chat/evaluation", h.EvaluateChat).Methods("POST")
}

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	studentID := mux.Vars(r)["id"]
	log.Printf("[INFO] Received chat request for student %s", studentID)

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if req.Question == "" {
		h.writeErrorResponse(w, http.StatusBadRequest, "question is required")
		return
	}

	interaction, err := h.tutor.Chat(r.Context(), studentID, req.Question)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			h.writeErrorResponse(w, http.StatusNotFound, "Student not found")
		} else {
			log.Printf("[ERROR] Chat failed for %s: %v", studentID, err)
			h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to answer question")
		}
		return
	}

	h.writeJSONResponse(w, http.StatusOK, interaction)
}

func (h *ChatHandler) EvaluateChat(w http.ResponseWriter, r *http.Request) {
	studentID := mux.Vars(r)["id"]
	log.Printf("[INFO] Received chat evaluation request for student %s", studentID)

	// An empty body falls back to the default history window.
	var req ChatEvaluationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	evaluation, err := h.tutor.EvaluateChat(r.Context(), studentID, req.Limit)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			h.writeErrorResponse(w, http.StatusNotFound, "No student or chat history to evaluate")
		} else {
			log.Printf("[ERROR] Chat evaluation failed for %s: %v", studentID, err)
			h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to evaluate chat history")
		}
		return
	}

	h.writeJSONResponse(w, http.StatusOK, evaluation)
}

func (h *ChatHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (h *ChatHandler) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
