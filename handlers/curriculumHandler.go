package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"langtutor/db"
	"langtutor/services/assess"
	"langtutor/services/generate"

	"github.com/gorilla/mux"
)

type PlanCurriculumRequest struct {
	TotalWeeks      int  `json:"total_weeks"`
	ForceRegenerate bool `json:"force_regenerate"`
}

type CurriculumHandler struct {
	planner  *generate.Service
	assessor *assess.Service
}

func NewCurriculumHandler(planner *generate.Service, assessor *assess.Service) *CurriculumHandler {
	return &CurriculumHandler{planner: planner, assessor: assessor}
}

func (h *CurriculumHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/students/{id}/curriculum", h.PlanCurriculum).Methods("POST")
	router.HandleFunc("/students/{id}/curriculum/next", h.NextTopics).Methods("GET")
	router.HandleFunc("/students/{id}/curriculum/advance", h.AdvanceWeek).Methods("POST")
}

func (h *CurriculumHandler) PlanCurriculum(w http.ResponseWriter, r *http.Request) {
	studentID := mux.Vars(r)["id"]
	log.Printf("[INFO] Received curriculum planning request for student %s", studentID)

	// An empty body means defaults.
	var req PlanCurriculumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		log.Printf("[ERROR] Failed to decode curriculum planning JSON: %v", err)
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	plan, err := h.planner.PlanCurriculum(r.Context(), studentID, req.TotalWeeks, req.ForceRegenerate)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			h.writeErrorResponse(w, http.StatusNotFound, "Student not found")
		} else {
			log.Printf("[ERROR] Curriculum planning failed for %s: %v", studentID, err)
			h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to plan curriculum")
		}
		return
	}

	h.writeJSONResponse(w, http.StatusOK, plan)
}

func (h *CurriculumHandler) NextTopics(w http.ResponseWriter, r *http.Request) {
	studentID := mux.Vars(r)["id"]

	plan, err := h.planner.NextTopics(r.Context(), studentID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			h.writeErrorResponse(w, http.StatusNotFound, "Student not found")
		} else {
			h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to resolve next topics")
		}
		return
	}

	h.writeJSONResponse(w, http.StatusOK, plan)
}

func (h *CurriculumHandler) AdvanceWeek(w http.ResponseWriter, r *http.Request) {
	studentID := mux.Vars(r)["id"]
	log.Printf("[INFO] Received manual week advance for student %s", studentID)

	curriculum, err := h.assessor.AdvanceWeek(studentID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			h.writeErrorResponse(w, http.StatusNotFound, "Student or curriculum not found")
		} else {
			h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to advance week")
		}
		return
	}

	h.writeJSONResponse(w, http.StatusOK, curriculum)
}

func (h *CurriculumHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (h *CurriculumHandler) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
