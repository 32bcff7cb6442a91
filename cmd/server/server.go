package main

import (
	"fmt"
	"log"
	"net/http"

	"langtutor/config"
	"langtutor/db"
	"langtutor/handlers"
	"langtutor/services"
	"langtutor/services/assess"
	"langtutor/services/generate"
	"langtutor/services/llm"
	"langtutor/services/retrieval"

	"github.com/gorilla/mux"
)

func main() {
	cfg := config.Load()

	if cfg.DatabaseURL == "" {
		log.Fatal("DB_URL environment variable is required")
	}

	studentRepo, err := db.NewPostgresStudentRepository(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize student database: %v", err)
	}
	defer studentRepo.Close()

	curriculumRepo, err := db.NewPostgresCurriculumRepository(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize curriculum database: %v", err)
	}
	defer curriculumRepo.Close()

	chatRepo, err := db.NewPostgresChatRepository(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize chat database: %v", err)
	}
	defer chatRepo.Close()

	materialRepo, err := db.NewPostgresMaterialRepository(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize material database: %v", err)
	}
	defer materialRepo.Close()

	var index *retrieval.PineconeIndex
	if cfg.RetrievalMode == retrieval.ModeEmbedding {
		index, err = retrieval.NewPineconeIndex(cfg.PineconeAPIKey, cfg.OpenAIAPIKey, cfg.PineconeIndexName)
		if err != nil {
			log.Fatalf("Failed to initialize vector index: %v", err)
		}
	}

	searcher, err := retrieval.NewService(cfg.RetrievalMode, materialRepo, index)
	if err != nil {
		log.Fatalf("Failed to initialize retrieval service: %v", err)
	}

	llmClient, err := llm.New(llm.Options{
		Provider:        cfg.LLMProvider,
		OpenAIAPIKey:    cfg.OpenAIAPIKey,
		AnthropicAPIKey: cfg.AnthropicAPIKey,
		ModelName:       cfg.ModelName,
		Mock:            cfg.MockLLM,
	})
	if err != nil {
		log.Fatalf("Failed to initialize LLM client: %v", err)
	}

	studentService := services.NewStudentService(studentRepo)
	studentHandler := handlers.NewStudentHandler(studentService)

	generateService := generate.NewService(llmClient, studentRepo, curriculumRepo, chatRepo, searcher, cfg.LLMTimeout)
	assessService := assess.NewService(llmClient, studentRepo, curriculumRepo, chatRepo, cfg.LLMTimeout)

	curriculumHandler := handlers.NewCurriculumHandler(generateService, assessService)
	contentHandler := handlers.NewContentHandler(generateService, studentService)
	chatHandler := handlers.NewChatHandler(generateService)
	assessmentHandler := handlers.NewAssessmentHandler(assessService)
	materialHandler := handlers.NewMaterialHandler(searcher)

	router := mux.NewRouter()

	router.Use(corsMiddleware)
	router.Use(jsonMiddleware)

	router.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("OPTIONS")

	studentHandler.RegisterRoutes(router)
	curriculumHandler.RegisterRoutes(router)
	contentHandler.RegisterRoutes(router)
	chatHandler.RegisterRoutes(router)
	assessmentHandler.RegisterRoutes(router)
	materialHandler.RegisterRoutes(router)

	router.HandleFunc("/health", healthCheckHandler).Methods("GET")

	addr := ":" + cfg.Port
	fmt.Printf("Server starting on port %s\n", cfg.Port)

	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Expose-Headers", "*")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "healthy"}`))
}
