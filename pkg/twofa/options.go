package twofa

import (
	"log/slog"
	"time"
)

// Option configures a Service instance.
type Option func(*Service)

// WithIssuer sets the issuer shown in authenticator apps and embedded in
// provisioning URIs. Empty values are ignored.
func WithIssuer(issuer string) Option {
	return func(s *Service) {
		if issuer != "" {
			s.issuer = issuer
		}
	}
}

// WithRecoveryCodeCount sets how many recovery codes each set contains.
// Non-positive values are ignored, keeping the default of 10.
func WithRecoveryCodeCount(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.recoveryCodeCount = n
		}
	}
}

// WithQRCodeSize sets the enrollment QR image edge length in pixels.
func WithQRCodeSize(px int) Option {
	return func(s *Service) {
		if px > 0 {
			s.qrCodeSize = px
		}
	}
}

// WithClock overrides the time source that drives code verification and
// verified-at stamps. Intended for tests; nil clocks are ignored.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger attaches a structured logger. Without one the service is
// silent. Log records carry user IDs and event names, never secrets or
// codes.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}
