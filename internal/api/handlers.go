package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pttwnz/elie/internal/auth"
	"github.com/pttwnz/elie/internal/core"
	"github.com/pttwnz/elie/internal/extract"
	"github.com/pttwnz/elie/internal/store"
)

const maxUploadBytes = 32 << 20 // multipart memory cap per request

type APIHandler struct {
	accounts *core.AccountService
	prompts  *core.PromptService
	profile  *core.SessionService
	ingest   *core.IngestService
	chat     *core.ChatService
}

func NewAPIHandler(
	accounts *core.AccountService,
	prompts *core.PromptService,
	profile *core.SessionService,
	ingest *core.IngestService,
	chat *core.ChatService,
) *APIHandler {
	return &APIHandler{
		accounts: accounts,
		prompts:  prompts,
		profile:  profile,
		ingest:   ingest,
		chat:     chat,
	}
}

type contextKey string

const usernameKey contextKey = "username"

func usernameFrom(r *http.Request) string {
	username, _ := r.Context().Value(usernameKey).(string)
	return username
}

func (h *APIHandler) JWTAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header is required", http.StatusUnauthorized)
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		username, err := auth.ValidateJWT(tokenString)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), usernameKey, username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// writeError maps the core error taxonomy to HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrUsernameTaken):
		status = http.StatusConflict
	case errors.Is(err, core.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, core.ErrNoGroundingSource),
		errors.Is(err, core.ErrUnsupportedKind),
		errors.Is(err, core.ErrEmptyPrompt):
		status = http.StatusBadRequest
	case errors.Is(err, core.ErrCompletionFailed):
		status = http.StatusBadGateway
	}
	if status == http.StatusInternalServerError {
		log.Printf("Internal error: %v", err)
		http.Error(w, "Internal server error", status)
		return
	}
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *APIHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Password == "" {
		http.Error(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	if err := h.accounts.Register(req.Username, req.Password); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"username": req.Username})
}

func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Password == "" {
		http.Error(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	_, token, err := h.accounts.Login(req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// SessionResponse is the session record with credentials and the picture
// reduced to presence flags.
type SessionResponse struct {
	ChatHistory     []store.Message    `json:"chat_history"`
	Files           []FileInfo         `json:"files"`
	SelectedPrompts []string           `json:"selected_prompts"`
	HasAPIKey       bool               `json:"has_api_key"`
	HasProfilePic   bool               `json:"has_profile_pic"`
	ContactInfo     string             `json:"contact_info"`
	PersonalInfo    store.PersonalInfo `json:"personal_info"`
}

type FileInfo struct {
	Name string         `json:"name"`
	Kind store.FileKind `json:"kind"`
}

func (h *APIHandler) GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	username := usernameFrom(r)

	session, err := h.profile.Get(username)
	if err != nil {
		writeError(w, err)
		return
	}

	files := make([]FileInfo, 0, len(session.Files))
	for _, f := range session.Files {
		files = append(files, FileInfo{Name: f.Name, Kind: f.Kind})
	}
	writeJSON(w, http.StatusOK, SessionResponse{
		ChatHistory:     session.ChatHistory,
		Files:           files,
		SelectedPrompts: session.SelectedPrompts,
		HasAPIKey:       session.APIKey != "",
		HasProfilePic:   session.ProfilePic != "",
		ContactInfo:     session.ContactInfo,
		PersonalInfo:    session.PersonalInfo,
	})
}

type ChatRequest struct {
	Question    string  `json:"question"`
	Mode        string  `json:"mode"` // "free_chat" or "grounded"
	SearchWeb   bool    `json:"search_web"`
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int64   `json:"max_tokens,omitempty"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
}

func (h *APIHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	username := usernameFrom(r)

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Question == "" {
		http.Error(w, "Question cannot be empty", http.StatusBadRequest)
		return
	}
	mode := core.Mode(req.Mode)
	if mode != core.ModeFreeChat && mode != core.ModeGrounded {
		http.Error(w, "Mode must be free_chat or grounded", http.StatusBadRequest)
		return
	}

	session, err := h.profile.Get(username)
	if err != nil {
		writeError(w, err)
		return
	}

	reply, err := h.chat.Ask(r.Context(), username, session, core.AskRequest{
		Question:    req.Question,
		Mode:        mode,
		SearchWeb:   req.SearchWeb,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ChatResponse{Reply: reply})
}

func (h *APIHandler) ClearHistoryHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.profile.ClearChatHistory(usernameFrom(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type UploadResult struct {
	Name  string `json:"name"`
	Added bool   `json:"added"`
	Error string `json:"error,omitempty"`
}

func (h *APIHandler) UploadFilesHandler(w http.ResponseWriter, r *http.Request) {
	username := usernameFrom(r)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "Invalid multipart request: "+err.Error(), http.StatusBadRequest)
		return
	}
	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		http.Error(w, "No files provided", http.StatusBadRequest)
		return
	}

	uploads := make([]core.Upload, 0, len(headers))
	for _, hdr := range headers {
		f, err := hdr.Open()
		if err != nil {
			http.Error(w, "Failed to read upload "+hdr.Filename, http.StatusBadRequest)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			http.Error(w, "Failed to read upload "+hdr.Filename, http.StatusBadRequest)
			return
		}
		uploads = append(uploads, core.Upload{
			Name: hdr.Filename,
			Kind: extract.KindFromFilename(hdr.Filename),
			Data: data,
		})
	}

	session, err := h.profile.Get(username)
	if err != nil {
		writeError(w, err)
		return
	}

	results, err := h.ingest.IngestBatch(username, session, uploads)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]UploadResult, 0, len(results))
	for _, res := range results {
		ur := UploadResult{Name: res.Name, Added: res.Added}
		if res.Err != nil {
			ur.Error = res.Err.Error()
		}
		out = append(out, ur)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *APIHandler) RemoveFileHandler(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, "Invalid file index", http.StatusBadRequest)
		return
	}
	if err := h.profile.RemoveFile(usernameFrom(r), index); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) ListPromptsHandler(w http.ResponseWriter, r *http.Request) {
	prompts, err := h.prompts.List(usernameFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prompts)
}

type SavePromptRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (h *APIHandler) SavePromptHandler(w http.ResponseWriter, r *http.Request) {
	var req SavePromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.prompts.Save(usernameFrom(r), req.Title, req.Body); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type UpdatePromptRequest struct {
	Title string `json:"title,omitempty"` // new title; empty keeps the old one
	Body  string `json:"body"`
}

func (h *APIHandler) UpdatePromptHandler(w http.ResponseWriter, r *http.Request) {
	oldTitle := chi.URLParam(r, "title")

	var req UpdatePromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	newTitle := req.Title
	if newTitle == "" {
		newTitle = oldTitle
	}
	if err := h.prompts.Rename(usernameFrom(r), oldTitle, newTitle, req.Body); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) DeletePromptHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.prompts.Delete(usernameFrom(r), chi.URLParam(r, "title")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) SelectPromptHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.prompts.Select(usernameFrom(r), chi.URLParam(r, "title")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) DeselectPromptHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.prompts.Deselect(usernameFrom(r), chi.URLParam(r, "title")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type UpdateProfileRequest struct {
	ContactInfo  string             `json:"contact_info"`
	PersonalInfo store.PersonalInfo `json:"personal_info"`
}

func (h *APIHandler) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.profile.UpdateProfile(usernameFrom(r), req.ContactInfo, req.PersonalInfo); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type APIKeyRequest struct {
	APIKey string `json:"api_key"`
}

func (h *APIHandler) SetAPIKeyHandler(w http.ResponseWriter, r *http.Request) {
	var req APIKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.APIKey == "" {
		http.Error(w, "API key cannot be empty", http.StatusBadRequest)
		return
	}
	if err := h.profile.SetAPIKey(usernameFrom(r), req.APIKey); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) ClearAPIKeyHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.profile.ClearAPIKey(usernameFrom(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) SetProfilePictureHandler(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes))
	if err != nil || len(data) == 0 {
		http.Error(w, "Image body is required", http.StatusBadRequest)
		return
	}
	if err := h.profile.SetProfilePicture(usernameFrom(r), data); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) ClearProfilePictureHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.profile.ClearProfilePicture(usernameFrom(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
