package server

import (
	"net/http"

	"sajtmaskin/internal/gateway/handler"
	"sajtmaskin/internal/gateway/middleware"
)

func NewMux(h *handler.Handler) http.Handler {
	mux := http.NewServeMux()

	// Generation pipeline
	mux.HandleFunc("POST /api/generate", h.HandleGenerate)
	mux.HandleFunc("GET /api/generate/ws", h.HandleGenerateWS)

	// Projects
	mux.HandleFunc("GET /api/projects", h.HandleListProjects)
	mux.HandleFunc("GET /api/projects/{id}", h.HandleGetProject)
	mux.HandleFunc("DELETE /api/projects/{id}", h.HandleDeleteProject)
	mux.HandleFunc("GET /api/projects/{id}/download", h.HandleDownloadProject)
	mux.HandleFunc("GET /api/projects/{id}/history", h.HandleProjectHistory)

	// Media library
	mux.HandleFunc("GET /api/media/{projectId}", h.HandleListMedia)
	mux.HandleFunc("POST /api/media/{projectId}", h.HandleUploadMedia)

	mux.HandleFunc("GET /healthz", h.HandleHealthz)

	return middleware.CORS(mux)
}
