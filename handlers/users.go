package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"cartbackend/middleware"
	"cartbackend/models/api"
	"cartbackend/services"
)

// UsersHTTPHandler exposes the read-only identity query surface to the app
type UsersHTTPHandler struct {
	usersService services.UsersService
}

func NewUsersHTTPHandler(usersService services.UsersService) *UsersHTTPHandler {
	return &UsersHTTPHandler{
		usersService: usersService,
	}
}

func (h *UsersHTTPHandler) SetupEndpoints(router *mux.Router, authMiddleware *middleware.ClerkAuthMiddleware) {
	router.HandleFunc("/api/users/me", authMiddleware.WithAuth(h.HandleGetCurrentUser)).Methods("GET")
	log.Printf("✅ Users API endpoints registered")
}

func (h *UsersHTTPHandler) HandleGetCurrentUser(w http.ResponseWriter, r *http.Request) {
	log.Printf("👤 Get current user request received from %s", r.RemoteAddr)

	maybeUser, err := h.usersService.GetCurrentUser(r.Context())
	if err != nil {
		log.Printf("❌ Failed to get current user: %v", err)
		http.Error(w, "failed to get current user", http.StatusInternalServerError)
		return
	}

	user, ok := maybeUser.Get()
	if !ok {
		// Authenticated but not reconciled yet (signup webhook still in
		// flight) - a transient state the client is expected to retry
		log.Printf("📋 No user record for current session yet")
		http.Error(w, "user not provisioned yet", http.StatusNotFound)
		return
	}

	log.Printf("✅ Current user resolved: %s (email: %s)", user.ID, user.Email)

	apiUser := api.DomainUserToAPIUser(user)
	h.writeJSONResponse(w, http.StatusOK, apiUser)
}

// writeJSONResponse writes a JSON response with the given status code
func (h *UsersHTTPHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("❌ Failed to encode JSON response: %v", err)
	}
}
