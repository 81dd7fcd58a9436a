package mfa

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/twofactor/pkg/logger"
	"github.com/dmitrymomot/twofactor/pkg/twofa"
)

type codeRequest struct {
	Code string `json:"code"`
}

type statusResponse struct {
	Enabled                bool    `json:"enabled"`
	VerifiedAt             *string `json:"verifiedAt"`
	HasPendingEnrollment   bool    `json:"hasPendingEnrollment"`
	RecoveryCodesRemaining int     `json:"recoveryCodesRemaining"`
}

type enrollResponse struct {
	Secret     string `json:"secret"`
	OtpauthURL string `json:"otpauthUrl"`
	QRCode     string `json:"qrCode"`
}

type recoveryCodesResponse struct {
	RecoveryCodes []string `json:"recoveryCodes"`
}

type challengeResponse struct {
	UsedRecoveryCode       bool `json:"usedRecoveryCode"`
	RecoveryCodesRemaining int  `json:"recoveryCodesRemaining"`
}

type disableResponse struct {
	Disabled bool `json:"disabled"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.resolveUser(w, r)
	if !ok {
		return
	}

	status, err := h.svc.Status(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var verifiedAt *string
	if status.VerifiedAt != nil {
		v := status.VerifiedAt.UTC().Format(time.RFC3339)
		verifiedAt = &v
	}

	writeJSON(w, http.StatusOK, statusResponse{
		Enabled:                status.Enabled,
		VerifiedAt:             verifiedAt,
		HasPendingEnrollment:   status.PendingEnrollment,
		RecoveryCodesRemaining: status.RecoveryCodesRemaining,
	})
}

func (h *Handler) enroll(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.resolveUser(w, r)
	if !ok {
		return
	}

	enrollment, err := h.svc.Enroll(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, enrollResponse{
		Secret:     enrollment.Secret,
		OtpauthURL: enrollment.OtpauthURL,
		QRCode:     enrollment.QRCode,
	})
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.resolveUser(w, r)
	if !ok {
		return
	}
	req, ok := decodeCode(w, r)
	if !ok {
		return
	}

	codes, err := h.svc.VerifyEnrollment(r.Context(), userID, req.Code)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, recoveryCodesResponse{RecoveryCodes: codes})
}

func (h *Handler) challenge(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.resolveUser(w, r)
	if !ok {
		return
	}
	req, ok := decodeCode(w, r)
	if !ok {
		return
	}

	result, err := h.svc.Challenge(r.Context(), userID, req.Code)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, challengeResponse{
		UsedRecoveryCode:       result.UsedRecoveryCode,
		RecoveryCodesRemaining: result.RecoveryCodesRemaining,
	})
}

func (h *Handler) disable(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.resolveUser(w, r)
	if !ok {
		return
	}
	req, ok := decodeCode(w, r)
	if !ok {
		return
	}

	disabled, err := h.svc.Disable(r.Context(), userID, req.Code)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, disableResponse{Disabled: disabled})
}

func (h *Handler) regenerateRecoveryCodes(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.resolveUser(w, r)
	if !ok {
		return
	}

	codes, err := h.svc.RegenerateRecoveryCodes(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, recoveryCodesResponse{RecoveryCodes: codes})
}

func (h *Handler) resolveUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, err := h.userID(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{
			Error: "Authentication required.",
			Code:  "unauthorized",
		})
		return uuid.Nil, false
	}
	return userID, true
}

func decodeCode(w http.ResponseWriter, r *http.Request) (codeRequest, bool) {
	var req codeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: "Invalid request body.",
			Code:  "invalid_request",
		})
		return codeRequest{}, false
	}
	return req, true
}

// writeError maps service errors onto the stable status/code taxonomy.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := http.StatusInternalServerError, "internal_error"
	switch {
	case errors.Is(err, twofa.ErrUserNotFound):
		status, code = http.StatusNotFound, "user_not_found"
	case errors.Is(err, twofa.ErrAlreadyEnabled):
		status, code = http.StatusConflict, "already_enabled"
	case errors.Is(err, twofa.ErrReplayDetected):
		status, code = http.StatusConflict, "replay_detected"
	case errors.Is(err, twofa.ErrNotEnabled):
		status, code = http.StatusBadRequest, "not_enabled"
	case errors.Is(err, twofa.ErrMissingSecret):
		status, code = http.StatusBadRequest, "missing_secret"
	case errors.Is(err, twofa.ErrMissingEmail):
		status, code = http.StatusBadRequest, "missing_email"
	case errors.Is(err, twofa.ErrInvalidCode):
		status, code = http.StatusBadRequest, "invalid_code"
	default:
		h.log.ErrorContext(r.Context(), "two-factor request failed",
			logger.Component("mfa"), logger.Error(err))
		// Internal details never reach the client.
		writeJSON(w, status, errorResponse{Error: "Something went wrong.", Code: code})
		return
	}

	writeJSON(w, status, errorResponse{Error: err.Error(), Code: code})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	// Responses may carry one-time secrets; they must never be cached.
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
