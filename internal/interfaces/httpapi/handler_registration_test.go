package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestStartRegistration(t *testing.T) {
	f := newHandlerFixture(t)

	body := `{
		"firstName": "Dana",
		"lastName": "Whitlow",
		"email": "Dana.Whitlow@Example.com",
		"password": "s3cret-pass",
		"role": "coach",
		"plan": "coach-annual",
		"school": "Lakeview HS"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/registrations", strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.handler.StartRegistration(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		RegistrationID string `json:"registrationId"`
		Status         string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.RegistrationID == "" || resp.Status != "pending" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	pending, found, err := f.registrationRepo.GetByID(t.Context(), resp.RegistrationID)
	if err != nil || !found {
		t.Fatalf("pending registration not stored: found=%v err=%v", found, err)
	}
	if pending.Email != "dana.whitlow@example.com" {
		t.Fatalf("email not lowercased: %q", pending.Email)
	}
	if pending.PasswordHash == "" || pending.PasswordHash == "s3cret-pass" {
		t.Fatalf("password stored without hashing")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(pending.PasswordHash), []byte("s3cret-pass")); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
}

func TestStartRegistration_RejectsInvalidPayload(t *testing.T) {
	f := newHandlerFixture(t)

	cases := map[string]string{
		"missing email":  `{"firstName":"Dana","password":"s3cret-pass","role":"coach"}`,
		"short password": `{"firstName":"Dana","email":"d@example.com","password":"short","role":"coach"}`,
		"unknown role":   `{"firstName":"Dana","email":"d@example.com","password":"s3cret-pass","role":"admin"}`,
		"malformed JSON": `{"firstName":`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/registrations", strings.NewReader(body))
			rec := httptest.NewRecorder()
			f.handler.StartRegistration(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}
