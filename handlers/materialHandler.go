package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"langtutor/models"
	"langtutor/services/retrieval"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type AddMaterialRequest struct {
	Topic    string `json:"topic"`
	Level    string `json:"level"`
	Language string `json:"language"`
	Content  string `json:"content"`
	Source   string `json:"source"`
}

// MaterialHandler exposes the learning-materials corpus: direct additions
// and relevance-ranked search.
type MaterialHandler struct {
	service *retrieval.Service
}

func NewMaterialHandler(service *retrieval.Service) *MaterialHandler {
	return &MaterialHandler{service: service}
}

func (h *MaterialHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/materials", h.AddMaterial).Methods("POST")
	router.HandleFunc("/materials/search", h.SearchMaterials).Methods("GET")
}

func (h *MaterialHandler) AddMaterial(w http.ResponseWriter, r *http.Request) {
	log.Printf("[INFO] Received add material request")

	var req AddMaterialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if req.Content == "" || req.Topic == "" {
		h.writeErrorResponse(w, http.StatusBadRequest, "topic and content are required")
		return
	}

	material := &models.Material{
		ID:       uuid.NewString(),
		Topic:    req.Topic,
		Level:    req.Level,
		Language: req.Language,
		Content:  req.Content,
		Source:   req.Source,
	}

	if err := h.service.AddMaterial(r.Context(), material); err != nil {
		log.Printf("[ERROR] Failed to add material: %v", err)
		h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to add material")
		return
	}

	h.writeJSONResponse(w, http.StatusCreated, material)
}

func (h *MaterialHandler) SearchMaterials(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		h.writeErrorResponse(w, http.StatusBadRequest, "query parameter q is required")
		return
	}

	limit := 5
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.writeErrorResponse(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	filters := retrieval.Filters{
		Topic: r.URL.Query().Get("topic"),
		Level: r.URL.Query().Get("level"),
	}

	results, err := h.service.Search(r.Context(), query, filters, limit)
	if err != nil {
		log.Printf("[ERROR] Material search failed: %v", err)
		h.writeErrorResponse(w, http.StatusInternalServerError, "Search failed")
		return
	}

	h.writeJSONResponse(w, http.StatusOK, map[string]any{"results": results})
}

func (h *MaterialHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (h *MaterialHandler) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
