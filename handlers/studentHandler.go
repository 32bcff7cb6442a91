package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"langtutor/db"
	"langtutor/models"
	"langtutor/services"

	"github.com/gorilla/mux"
)

type StudentHandler struct {
	service *services.StudentService
}

func NewStudentHandler(service *services.StudentService) *StudentHandler {
	return &StudentHandler{service: service}
}

func (h *StudentHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/students", h.CreateStudent).Methods("POST")
	router.HandleFunc("/students/random", h.GetRandomStudent).Methods("GET")
	router.HandleFunc("/students/{id}", h.GetStudent).Methods("GET")
	router.HandleFunc("/students/{id}/switch-language", h.SwitchLanguage).Methods("POST")
}

func (h *StudentHandler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	log.Printf("[INFO] Received create student request")

	var req models.CreateStudentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[ERROR] Failed to decode create student JSON: %v", err)
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	student, err := h.service.CreateStudent(&req)
	if err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	h.writeJSONResponse(w, http.StatusCreated, student)
}

func (h *StudentHandler) GetStudent(w http.ResponseWriter, r *http.Request) {
	studentID := mux.Vars(r)["id"]

	student, err := h.service.GetStudent(studentID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			h.writeErrorResponse(w, http.StatusNotFound, "Student not found")
		} else {
			h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve student")
		}
		return
	}

	h.writeJSONResponse(w, http.StatusOK, student)
}

func (h *StudentHandler) GetRandomStudent(w http.ResponseWriter, r *http.Request) {
	student, err := h.service.GetRandomStudent()
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			h.writeErrorResponse(w, http.StatusNotFound, "No students registered")
		} else {
			h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve student")
		}
		return
	}

	h.writeJSONResponse(w, http.StatusOK, student)
}

func (h *StudentHandler) SwitchLanguage(w http.ResponseWriter, r *http.Request) {
	studentID := mux.Vars(r)["id"]
	log.Printf("[INFO] Received switch language request for student %s", studentID)

	var req models.SwitchLanguageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[ERROR] Failed to decode switch language JSON: %v", err)
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	student, err := h.service.SwitchLanguage(studentID, &req)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			h.writeErrorResponse(w, http.StatusNotFound, "Student not found")
		} else {
			h.writeErrorResponse(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	h.writeJSONResponse(w, http.StatusOK, student)
}

func (h *StudentHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (h *StudentHandler) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
