package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"langtutor/db"
	"langtutor/models"
	"langtutor/services"
	"langtutor/services/generate"

	"github.com/gorilla/mux"
)

type TheoryRequest struct {
	Topic string `json:"topic"`
	Week  int    `json:"week"`
}

type QuizGenerationRequest struct {
	Topic        string `json:"topic"`
	NumQuestions int    `json:"num_questions"`
}

type ExercisesRequest struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

type DialogueRequest struct {
	Topic string `json:"topic"`
}

// ContentHandler serves the generated study content: theory lessons,
// quizzes, exercises, and dialogues.
type ContentHandler struct {
	generator *generate.Service
	students  *services.StudentService
}

func NewContentHandler(generator *generate.Service, students *services.StudentService) *ContentHandler {
	return &ContentHandler{generator: generator, students: students}
}

func (h *ContentHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/students/{id}/theory", h.GenerateTheory).Methods("POST")
	router.HandleFunc("/students/{id}/quiz", h.GenerateQuiz).Methods("POST")
	router.HandleFunc("/students/{id}/exercises", h.GenerateExercises).Methods("POST")
	router.HandleFunc("/students/{id}/dialogue", h.GenerateDialogue).Methods("POST")
}

func (h *ContentHandler) GenerateTheory(w http.ResponseWriter, r *http.Request) {
	studentID := mux.Vars(r)["id"]
	log.Printf("[INFO] Received theory request for student %s", studentID)

	var req TheoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if req.Topic == "" {
		h.writeErrorResponse(w, http.StatusBadRequest, "topic is required")
		return
	}

	student, err := h.students.GetStudent(studentID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			h.writeErrorResponse(w, http.StatusNotFound, "Student not found")
		} else {
			h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve student")
		}
		return
	}

	level := models.CEFRForLevel(student.CurrentLevel)
	lesson, err := h.generator.GenerateTheory(r.Context(), req.Topic, req.Week, level, student.TargetLanguage)
	if err != nil {
		log.Printf("[ERROR] Theory generation failed for %s: %v", studentID, err)
		h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to generate lesson")
		return
	}

	h.writeJSONResponse(w, http.StatusOK, lesson)
}

func (h *ContentHandler) GenerateQuiz(w http.ResponseWriter, r *http.Request) {
	studentID := mux.Vars(r)["id"]
	log.Printf("[INFO] Received quiz generation request for student %s", studentID)

	var req QuizGenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if req.Topic == "" {
		h.writeErrorResponse(w, http.StatusBadRequest, "topic is required")
		return
	}

	quiz, err := h.generator.GenerateQuiz(r.Context(), studentID, req.Topic, req.NumQuestions)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			h.writeErrorResponse(w, http.StatusNotFound, "Student not found")
		} else {
			log.Printf("[ERROR] Quiz generation failed for %s: %v", studentID, err)
			h.writeErrorResponse(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	h.writeJSONResponse(w, http.StatusOK, quiz)
}

func (h *ContentHandler) GenerateExercises(w http.ResponseWriter, r *http.Request) {
	studentID := mux.Vars(r)["id"]
	log.Printf("[INFO] Received exercises request for student %s", studentID)

	var req ExercisesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if req.Topic == "" {
		h.writeErrorResponse(w, http.StatusBadRequest, "topic is required")
		return
	}

	exercises, err := h.generator.GenerateExercises(r.Context(), studentID, req.Topic, req.Count)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			h.writeErrorResponse(w, http.StatusNotFound, "Student not found")
		} else {
			log.Printf("[ERROR] Exercise generation failed for %s: %v", studentID, err)
			h.writeErrorResponse(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	h.writeJSONResponse(w, http.StatusOK, map[string]any{"exercises": exercises})
}

func (h *ContentHandler) GenerateDialogue(w http.ResponseWriter, r *http.Request) {
	studentID := mux.Vars(r)["id"]
	log.Printf("[INFO] Received dialogue request for student %s", studentID)

	var req DialogueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if req.Topic == "" {
		h.writeErrorResponse(w, http.StatusBadRequest, "topic is required")
		return
	}

	dialogue, err := h.generator.GenerateDialogue(r.Context(), studentID, req.Topic)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			h.writeErrorResponse(w, http.StatusNotFound, "Student not found")
		} else {
			log.Printf("[ERROR] Dialogue generation failed for %s: %v", studentID, err)
			h.writeErrorResponse(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	h.writeJSONResponse(w, http.StatusOK, dialogue)
}

func (h *ContentHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (h *ContentHandler) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
