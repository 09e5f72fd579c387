package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"cartbackend/core"
	"cartbackend/middleware"
	"cartbackend/models"
	"cartbackend/services"
)

// ClerkEventsHandler receives user lifecycle webhooks from Clerk and feeds
// them into the identity reconciliation service. Delivery is at-least-once;
// the idempotent upsert is what makes redeliveries safe.
type ClerkEventsHandler struct {
	webhookSigningSecret string
	usersService         services.UsersService
	alerts               *middleware.ErrorAlertMiddleware
}

func NewClerkEventsHandler(
	webhookSigningSecret string,
	usersService services.UsersService,
	alerts *middleware.ErrorAlertMiddleware,
) *ClerkEventsHandler {
	return &ClerkEventsHandler{
		webhookSigningSecret: webhookSigningSecret,
		usersService:         usersService,
		alerts:               alerts,
	}
}

func (h *ClerkEventsHandler) SetupEndpoints(router *mux.Router) {
	router.HandleFunc("/clerk/events", h.HandleClerkEvent).Methods("POST")
	log.Printf("✅ Clerk webhook endpoint registered at /clerk/events")
}

type clerkEmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

type clerkUserData struct {
	ID                    string              `json:"id"`
	FirstName             string              `json:"first_name"`
	LastName              string              `json:"last_name"`
	ImageURL              string              `json:"image_url"`
	PrimaryEmailAddressID string              `json:"primary_email_address_id"`
	EmailAddresses        []clerkEmailAddress `json:"email_addresses"`
}

type clerkUserEvent struct {
	Type string        `json:"type"`
	Data clerkUserData `json:"data"`
}

func (h *ClerkEventsHandler) HandleClerkEvent(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 Clerk webhook event received from %s", r.RemoteAddr)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("❌ Failed to read webhook body: %v", err)
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	if err := h.verifyWebhookSignature(r, body); err != nil {
		log.Printf("❌ Webhook signature verification failed: %v", err)
		http.Error(w, "invalid webhook signature", http.StatusUnauthorized)
		return
	}

	var event clerkUserEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Printf("❌ Failed to parse webhook payload: %v", err)
		http.Error(w, "invalid webhook payload", http.StatusBadRequest)
		return
	}

	switch event.Type {
	case "user.created", "user.updated":
		if err := h.reconcileUser(r, event.Data); err != nil {
			if core.IsValidationError(err) {
				// Caller bug - a retry would fail the same way, so don't ask for one
				log.Printf("❌ Webhook payload failed validation: %v", err)
				http.Error(w, "invalid user payload", http.StatusBadRequest)
				return
			}
			// Non-2xx makes Clerk redeliver; the upsert is idempotent so that's safe
			log.Printf("❌ Failed to reconcile user from webhook: %v", err)
			h.alerts.ReportError(err, fmt.Sprintf("Clerk webhook %s", event.Type))
			http.Error(w, "failed to process event", http.StatusInternalServerError)
			return
		}
	case "user.deleted":
		// Deletion is an external concern - acknowledged but not applied here
		log.Printf("📋 Ignoring user.deleted event for subject: %s", event.Data.ID)
	default:
		log.Printf("📋 Ignoring unhandled Clerk event type: %s", event.Type)
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ClerkEventsHandler) reconcileUser(r *http.Request, data clerkUserData) error {
	email := primaryEmailAddress(data)
	displayName := displayNameFromNames(data.FirstName, data.LastName)
	avatarURL := optionalString(data.ImageURL)

	user, err := h.usersService.UpsertUser(
		r.Context(),
		models.AuthProviderClerk,
		data.ID,
		email,
		displayName,
		avatarURL,
	)
	if err != nil {
		return err
	}

	log.Printf("✅ Reconciled user %s for subject: %s", user.ID, data.ID)
	return nil
}

// primaryEmailAddress resolves the email address referenced by
// primary_email_address_id, falling back to the first listed address.
func primaryEmailAddress(data clerkUserData) string {
	for _, addr := range data.EmailAddresses {
		if addr.ID == data.PrimaryEmailAddressID {
			return addr.EmailAddress
		}
	}
	if len(data.EmailAddresses) > 0 {
		return data.EmailAddresses[0].EmailAddress
	}
	return ""
}

func displayNameFromNames(firstName, lastName string) *string {
	name := strings.TrimSpace(strings.TrimSpace(firstName) + " " + strings.TrimSpace(lastName))
	return optionalString(name)
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// verifyWebhookSignature verifies the authenticity of a Clerk webhook request.
// Clerk signs webhooks with the Svix scheme: HMAC-SHA256 over
// "<svix-id>.<svix-timestamp>.<body>" keyed by the base64-decoded portion of
// the whsec_ secret, with the base64 signature carried in the space-separated
// "v1,<sig>" entries of the svix-signature header.
func (h *ClerkEventsHandler) verifyWebhookSignature(r *http.Request, body []byte) error {
	msgID := r.Header.Get("svix-id")
	timestamp := r.Header.Get("svix-timestamp")
	signatureHeader := r.Header.Get("svix-signature")

	if msgID == "" || timestamp == "" || signatureHeader == "" {
		return fmt.Errorf("missing required headers")
	}

	// Verify timestamp freshness (within 5 minutes either way)
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid timestamp format: %v", err)
	}

	skew := time.Now().Unix() - ts
	if skew > 300 || skew < -300 {
		return fmt.Errorf("request timestamp outside tolerance")
	}

	key, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(h.webhookSigningSecret, "whsec_"))
	if err != nil {
		return fmt.Errorf("invalid webhook signing secret: %v", err)
	}

	// Signed content: id.timestamp.body
	signedContent := fmt.Sprintf("%s.%s.%s", msgID, timestamp, string(body))

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(signedContent))
	expectedSignature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	// The header may list several versioned signatures; any matching v1 entry passes
	for _, entry := range strings.Split(signatureHeader, " ") {
		parts := strings.SplitN(entry, ",", 2)
		if len(parts) != 2 || parts[0] != "v1" {
			continue
		}
		if hmac.Equal([]byte(expectedSignature), []byte(parts[1])) {
			return nil
		}
	}

	return fmt.Errorf("signature verification failed")
}
