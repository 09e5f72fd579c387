package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cartbackend/core"
	"cartbackend/middleware"
	"cartbackend/models"
	users "cartbackend/services/users"
)

const testWebhookKey = "dGVzdC13ZWJob29rLXNpZ25pbmcta2V5LTEyMzQ1Njc4" // base64("test-webhook-signing-key-12345678")

func testSigningSecret() string {
	return "whsec_" + testWebhookKey
}

func signTestPayload(msgID string, timestamp int64, body string) string {
	key, _ := base64.StdEncoding.DecodeString(testWebhookKey)
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(fmt.Sprintf("%s.%d.%s", msgID, timestamp, body)))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func signedWebhookRequest(body string) *http.Request {
	timestamp := time.Now().Unix()
	req := httptest.NewRequest("POST", "/clerk/events", strings.NewReader(body))
	req.Header.Set("svix-id", "msg_test123")
	req.Header.Set("svix-timestamp", strconv.FormatInt(timestamp, 10))
	req.Header.Set("svix-signature", "v1,"+signTestPayload("msg_test123", timestamp, body))
	return req
}

func TestVerifyWebhookSignature(t *testing.T) {
	handler := &ClerkEventsHandler{
		webhookSigningSecret: testSigningSecret(),
	}

	timestamp := time.Now().Unix()
	body := `{"type":"user.created","data":{"id":"user_abc"}}`
	signature := signTestPayload("msg_1", timestamp, body)

	req := httptest.NewRequest("POST", "/clerk/events", strings.NewReader(body))
	req.Header.Set("svix-id", "msg_1")
	req.Header.Set("svix-timestamp", strconv.FormatInt(timestamp, 10))
	req.Header.Set("svix-signature", "v1,"+signature)

	// Test valid signature
	err := handler.verifyWebhookSignature(req, []byte(body))
	if err != nil {
		t.Errorf("Expected valid signature to pass, got error: %v", err)
	}

	// Test multiple signature entries where only one matches
	req.Header.Set("svix-signature", "v1,aW52YWxpZA== v1,"+signature)
	err = handler.verifyWebhookSignature(req, []byte(body))
	if err != nil {
		t.Errorf("Expected one matching entry among several to pass, got error: %v", err)
	}

	// Test invalid signature
	req.Header.Set("svix-signature", "v1,aW52YWxpZA==")
	err = handler.verifyWebhookSignature(req, []byte(body))
	if err == nil {
		t.Error("Expected invalid signature to fail")
	}

	// Test missing headers
	req.Header.Del("svix-signature")
	err = handler.verifyWebhookSignature(req, []byte(body))
	if err == nil {
		t.Error("Expected missing headers to fail")
	}

	// Test old timestamp
	oldTimestamp := time.Now().Unix() - 400 // 6+ minutes ago
	req.Header.Set("svix-timestamp", strconv.FormatInt(oldTimestamp, 10))
	req.Header.Set("svix-signature", "v1,"+signTestPayload("msg_1", oldTimestamp, body))
	err = handler.verifyWebhookSignature(req, []byte(body))
	if err == nil {
		t.Error("Expected old timestamp to fail")
	}
}

func TestPrimaryEmailAddress(t *testing.T) {
	data := clerkUserData{
		PrimaryEmailAddressID: "idn_2",
		EmailAddresses: []clerkEmailAddress{
			{ID: "idn_1", EmailAddress: "secondary@example.com"},
			{ID: "idn_2", EmailAddress: "primary@example.com"},
		},
	}
	if got := primaryEmailAddress(data); got != "primary@example.com" {
		t.Errorf("primaryEmailAddress() = %v, want primary@example.com", got)
	}

	// Falls back to the first listed address when the primary reference dangles
	data.PrimaryEmailAddressID = "idn_missing"
	if got := primaryEmailAddress(data); got != "secondary@example.com" {
		t.Errorf("primaryEmailAddress() fallback = %v, want secondary@example.com", got)
	}

	data.EmailAddresses = nil
	if got := primaryEmailAddress(data); got != "" {
		t.Errorf("primaryEmailAddress() with no addresses = %v, want empty", got)
	}
}

func TestDisplayNameFromNames(t *testing.T) {
	tests := []struct {
		name      string
		firstName string
		lastName  string
		want      *string
	}{
		{name: "both names", firstName: "Bea", lastName: "Smith", want: strPtr("Bea Smith")},
		{name: "first name only", firstName: "Bea", lastName: "", want: strPtr("Bea")},
		{name: "last name only", firstName: "", lastName: "Smith", want: strPtr("Smith")},
		{name: "no names", firstName: "", lastName: "", want: nil},
		{name: "whitespace only", firstName: "  ", lastName: " ", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := displayNameFromNames(tt.firstName, tt.lastName)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestHandleClerkEvent_UserUpserted(t *testing.T) {
	mockUsersService := &users.MockUsersService{}
	handler := NewClerkEventsHandler(testSigningSecret(), mockUsersService, noopAlerts())

	body := `{
		"type": "user.created",
		"data": {
			"id": "user_abc123",
			"first_name": "Bea",
			"last_name": "Smith",
			"image_url": "https://img.clerk.com/bea.png",
			"primary_email_address_id": "idn_1",
			"email_addresses": [{"id": "idn_1", "email_address": "bea@example.com"}]
		}
	}`

	expectedUser := &models.User{ID: "u_01TESTULIDULIDULIDULIDULID"}
	mockUsersService.On(
		"UpsertUser",
		mock.Anything,
		models.AuthProviderClerk,
		"user_abc123",
		"bea@example.com",
		strPtr("Bea Smith"),
		strPtr("https://img.clerk.com/bea.png"),
	).Return(expectedUser, nil)

	rec := httptest.NewRecorder()
	handler.HandleClerkEvent(rec, signedWebhookRequest(body))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	mockUsersService.AssertExpectations(t)
}

func TestHandleClerkEvent_InvalidSignature(t *testing.T) {
	mockUsersService := &users.MockUsersService{}
	handler := NewClerkEventsHandler(testSigningSecret(), mockUsersService, noopAlerts())

	body := `{"type":"user.created","data":{"id":"user_abc"}}`
	req := httptest.NewRequest("POST", "/clerk/events", strings.NewReader(body))
	req.Header.Set("svix-id", "msg_1")
	req.Header.Set("svix-timestamp", strconv.FormatInt(time.Now().Unix(), 10))
	req.Header.Set("svix-signature", "v1,aW52YWxpZA==")

	rec := httptest.NewRecorder()
	handler.HandleClerkEvent(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	mockUsersService.AssertNotCalled(t, "UpsertUser")
}

func TestHandleClerkEvent_UserDeletedIsAcknowledged(t *testing.T) {
	mockUsersService := &users.MockUsersService{}
	handler := NewClerkEventsHandler(testSigningSecret(), mockUsersService, noopAlerts())

	body := `{"type":"user.deleted","data":{"id":"user_abc123"}}`

	rec := httptest.NewRecorder()
	handler.HandleClerkEvent(rec, signedWebhookRequest(body))

	// Acknowledged so the provider stops redelivering, but no write happens
	assert.Equal(t, http.StatusNoContent, rec.Code)
	mockUsersService.AssertNotCalled(t, "UpsertUser")
}

func TestHandleClerkEvent_ValidationFailureIsNotRetryable(t *testing.T) {
	mockUsersService := &users.MockUsersService{}
	handler := NewClerkEventsHandler(testSigningSecret(), mockUsersService, noopAlerts())

	// No email addresses at all - the upsert rejects the empty email
	body := `{"type":"user.updated","data":{"id":"user_abc123","email_addresses":[]}}`

	mockUsersService.On(
		"UpsertUser",
		mock.Anything, models.AuthProviderClerk, "user_abc123", "",
		(*string)(nil), (*string)(nil),
	).Return(nil, fmt.Errorf("email cannot be empty: %w", core.ErrValidation))

	rec := httptest.NewRecorder()
	handler.HandleClerkEvent(rec, signedWebhookRequest(body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockUsersService.AssertExpectations(t)
}

func TestHandleClerkEvent_StorageFailureAsksForRedelivery(t *testing.T) {
	mockUsersService := &users.MockUsersService{}
	handler := NewClerkEventsHandler(testSigningSecret(), mockUsersService, noopAlerts())

	body := `{
		"type": "user.updated",
		"data": {
			"id": "user_abc123",
			"primary_email_address_id": "idn_1",
			"email_addresses": [{"id": "idn_1", "email_address": "bea@example.com"}]
		}
	}`

	mockUsersService.On(
		"UpsertUser",
		mock.Anything, models.AuthProviderClerk, "user_abc123", "bea@example.com",
		(*string)(nil), (*string)(nil),
	).Return(nil, fmt.Errorf("failed to upsert user: %w", core.ErrStorage))

	rec := httptest.NewRecorder()
	handler.HandleClerkEvent(rec, signedWebhookRequest(body))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	mockUsersService.AssertExpectations(t)
}

func strPtr(s string) *string {
	return &s
}

// noopAlerts builds an alert middleware with no webhook configured
func noopAlerts() *middleware.ErrorAlertMiddleware {
	return middleware.NewErrorAlertMiddleware(middleware.SlackAlertConfig{})
}
