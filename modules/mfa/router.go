// Package mfa exposes the two-factor orchestration service as a JSON API.
//
// The module owns routing and error mapping only. Session handling stays
// with the host application: it supplies a UserIDResolver that extracts the
// authenticated user from the request, and mounts the handler wherever it
// wants:
//
//	h := mfa.NewHandler(svc, resolverFromSession)
//	r.Mount("/2fa/totp", h.Handle())
//
// Routes:
//
//	GET  /status               current enrollment state
//	POST /enroll               start (or restart) enrollment
//	POST /verify               confirm enrollment with a code
//	POST /challenge            verify a login code or recovery code
//	POST /disable              turn two-factor off (code required)
//	POST /recovery/regenerate  replace the recovery-code set
//
// Responses carry Cache-Control: no-store since they may contain one-time
// material. Service errors map onto a stable {error, code} JSON body.
package mfa

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/twofactor/pkg/twofa"
)

// UserIDResolver extracts the authenticated user from a request. Returning
// an error yields 401; resolving sessions or tokens is the host
// application's business.
type UserIDResolver func(r *http.Request) (uuid.UUID, error)

// Handler serves the two-factor JSON API.
type Handler struct {
	svc    *twofa.Service
	userID UserIDResolver
	log    *slog.Logger
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithLogger attaches a structured logger for unexpected failures.
func WithLogger(log *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if log != nil {
			h.log = log
		}
	}
}

// NewHandler creates the API handler.
// Panics if svc or resolver is nil to fail fast during initialization.
func NewHandler(svc *twofa.Service, resolver UserIDResolver, opts ...HandlerOption) *Handler {
	if svc == nil {
		panic("mfa: twofa.Service is required")
	}
	if resolver == nil {
		panic("mfa: UserIDResolver is required")
	}
	h := &Handler{
		svc:    svc,
		userID: resolver,
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle returns the mountable router for the module.
func (h *Handler) Handle() http.Handler {
	r := chi.NewRouter()

	r.Get("/status", h.status)
	r.Post("/enroll", h.enroll)
	r.Post("/verify", h.verify)
	r.Post("/challenge", h.challenge)
	r.Post("/disable", h.disable)
	r.Post("/recovery/regenerate", h.regenerateRecoveryCodes)

	return r
}
