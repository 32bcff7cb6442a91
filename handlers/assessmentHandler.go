package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"langtutor/db"
	"langtutor/models"
	"langtutor/services/assess"

	"github.com/gorilla/mux"
)

type AssessmentHandler struct {
	service *assess.Service
}

func NewAssessmentHandler(service *assess.Service) *AssessmentHandler {
	return &AssessmentHandler{service: service}
}

func (h *AssessmentHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/students/{id}/quiz/evaluate", h.EvaluateQuiz).Methods("POST")
}

func (h *AssessmentHandler) EvaluateQuiz(w http.ResponseWriter, r *http.Request) {
	studentID := mux.Vars(r)["id"]
	log.Printf("[INFO] Received quiz evaluation request for student %s", studentID)

	var submission models.QuizSubmission
	if err := json.NewDecoder(r.Body).Decode(&submission); err != nil {
		log.Printf("[ERROR] Failed to decode quiz submission JSON: %v", err)
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	submission.StudentID = studentID

	result, err := h.service.EvaluateQuiz(r.Context(), &submission)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			h.writeErrorResponse(w, http.StatusNotFound, "Student not found")
		} else {
			h.writeErrorResponse(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	h.writeJSONResponse(w, http.StatusOK, result)
}

func (h *AssessmentHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (h *AssessmentHandler) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
