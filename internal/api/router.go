package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(apiHandler *APIHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)       // Basic request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	// All API routes will be under /api
	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/register", apiHandler.RegisterHandler)
		r.Post("/login", apiHandler.LoginHandler)
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		})

		// User-authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(apiHandler.JWTAuthMiddleware)

			r.Get("/session", apiHandler.GetSessionHandler)

			// Chat routes
			r.Post("/chat", apiHandler.ChatHandler)
			r.Delete("/chat/history", apiHandler.ClearHistoryHandler)

			// Uploaded file routes
			r.Post("/files", apiHandler.UploadFilesHandler)
			r.Delete("/files/{index}", apiHandler.RemoveFileHandler)

			// Prompt library routes
			r.Get("/prompts", apiHandler.ListPromptsHandler)
			r.Post("/prompts", apiHandler.SavePromptHandler)
			r.Put("/prompts/{title}", apiHandler.UpdatePromptHandler)
			r.Delete("/prompts/{title}", apiHandler.DeletePromptHandler)
			r.Post("/prompts/{title}/select", apiHandler.SelectPromptHandler)
			r.Delete("/prompts/{title}/select", apiHandler.DeselectPromptHandler)

			// Profile routes
			r.Put("/profile", apiHandler.UpdateProfileHandler)
			r.Put("/profile/api-key", apiHandler.SetAPIKeyHandler)
			r.Delete("/profile/api-key", apiHandler.ClearAPIKeyHandler)
			r.Put("/profile/picture", apiHandler.SetProfilePictureHandler)
			r.Delete("/profile/picture", apiHandler.ClearProfilePictureHandler)
		})
	})

	return r
}
