package httpapi

import (
	"fmt"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/nextinning/recruiting-api/internal/usecase"
	"golang.org/x/crypto/bcrypt"
)

type startRegistrationRequest struct {
	FirstName    string `json:"firstName" validate:"required"`
	LastName     string `json:"lastName"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8"`
	Role         string `json:"role" validate:"required,oneof=player coach scout"`
	State        string `json:"state"`
	ProfileImage string `json:"profileImage"`
	Plan         string `json:"plan"`

	TeamID   string `json:"teamId"`
	JobTitle string `json:"jobTitle"`

	School     string `json:"school"`
	Division   string `json:"division"`
	Conference string `json:"conference"`
}

type startRegistrationResponse struct {
	Message        string `json:"message"`
	RegistrationID string `json:"registrationId"`
	Status         string `json:"status"`
}

// StartRegistration records a provisional signup before the caller is
// redirected to provider checkout. The account itself is only created when
// the provider webhook confirms payment.
func (h *Handler) StartRegistration(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StartRegistration")
	defer span.End()

	var req startRegistrationRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.ErrorContext(ctx, "hash registration password failed", "error", err)
		writeInternalError(ctx, w)
		return
	}

	pending, err := h.registrationService.Start(ctx, usecase.StartRegistrationInput{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: string(passwordHash),
		Role:         req.Role,
		State:        req.State,
		ProfileImage: req.ProfileImage,
		Plan:         req.Plan,
		TeamID:       req.TeamID,
		JobTitle:     req.JobTitle,
		School:       req.School,
		Division:     req.Division,
		Conference:   req.Conference,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "start registration failed", "email", req.Email, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusCreated, startRegistrationResponse{
		Message:        "registration started, awaiting payment confirmation",
		RegistrationID: pending.ID,
		Status:         string(pending.Status),
	})
}
