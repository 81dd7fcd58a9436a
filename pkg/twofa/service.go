package twofa

import (
	"context"
	"hash/fnv"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/twofactor/pkg/envelope"
	"github.com/dmitrymomot/twofactor/pkg/logger"
	"github.com/dmitrymomot/twofactor/pkg/qrcode"
	"github.com/dmitrymomot/twofactor/pkg/recovery"
	"github.com/dmitrymomot/twofactor/pkg/totp"
)

const (
	defaultIssuer            = "twofactor"
	defaultRecoveryCodeCount = 10

	// lockStripes bounds the per-user lock set so the lock table never grows
	// with the user population.
	lockStripes = 64
)

// Status describes a user's current two-factor state.
type Status struct {
	Enabled                bool
	VerifiedAt             *time.Time
	PendingEnrollment      bool
	RecoveryCodesRemaining int
}

// Enrollment is returned by Enroll. Secret and QRCode are shown to the user
// during setup and must not be persisted by the caller.
type Enrollment struct {
	Secret     string
	OtpauthURL string
	// QRCode is a base64 PNG data URI of the provisioning URI.
	QRCode string
}

// ChallengeResult reports how a login challenge was satisfied.
type ChallengeResult struct {
	UsedRecoveryCode bool
	// RecoveryCodesRemaining lets callers warn the user when the backup set
	// runs low.
	RecoveryCodesRemaining int
}

// Service is the two-factor enrollment/verification state machine.
type Service struct {
	store       Store
	codec       *envelope.Codec
	recoveryKey []byte

	issuer            string
	recoveryCodeCount int
	qrCodeSize        int
	now               func() time.Time
	log               *slog.Logger

	// userLocks serializes mutating operations per user: the replay race and
	// the recovery-code double-spend race must never admit two winners.
	userLocks [lockStripes]sync.Mutex
}

// NewService creates the orchestration service.
// Panics if store or codec is nil to fail fast during initialization.
func NewService(store Store, codec *envelope.Codec, opts ...Option) (*Service, error) {
	if store == nil {
		panic("twofa: Store is required")
	}
	if codec == nil {
		panic("twofa: envelope.Codec is required")
	}

	recoveryKey, err := codec.DeriveKey(envelope.PurposeRecoveryCode)
	if err != nil {
		return nil, err
	}

	s := &Service{
		store:             store,
		codec:             codec,
		recoveryKey:       recoveryKey,
		issuer:            defaultIssuer,
		recoveryCodeCount: defaultRecoveryCodeCount,
		qrCodeSize:        qrcode.DefaultSize,
		now:               time.Now,
		log:               slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Service) lockUser(userID uuid.UUID) func() {
	h := fnv.New32a()
	h.Write(userID[:])
	mu := &s.userLocks[h.Sum32()%lockStripes]
	mu.Lock()
	return mu.Unlock
}

// Status reports the user's current two-factor state. Read-only, so it does
// not take the user lock.
func (s *Service) Status(ctx context.Context, userID uuid.UUID) (Status, error) {
	user, err := s.store.Get(ctx, userID)
	if err != nil {
		return Status{}, err
	}
	return Status{
		Enabled:                user.Enabled,
		VerifiedAt:             user.VerifiedAt,
		PendingEnrollment:      !user.Enabled && user.SecretEnvelope != nil,
		RecoveryCodesRemaining: len(user.RecoveryCodeHashes),
	}, nil
}

// Enroll starts (or restarts) an enrollment. Allowed from NoEnrollment or
// PendingEnrollment; re-enrolling overwrites the pending secret and clears
// any stale recovery hashes. Fails with ErrAlreadyEnabled from Enabled and
// ErrMissingEmail when the user has no account label.
func (s *Service) Enroll(ctx context.Context, userID uuid.UUID) (*Enrollment, error) {
	defer s.lockUser(userID)()

	user, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Enabled {
		return nil, ErrAlreadyEnabled
	}
	if user.Email == "" {
		return nil, ErrMissingEmail
	}

	secret, err := totp.GenerateSecret()
	if err != nil {
		return nil, err
	}
	otpauthURL, err := totp.ProvisioningURI(totp.Params{
		Secret:      secret,
		AccountName: user.Email,
		Issuer:      s.issuer,
	})
	if err != nil {
		return nil, err
	}
	qr, err := qrcode.DataURI(otpauthURL, s.qrCodeSize)
	if err != nil {
		return nil, err
	}

	enc, err := s.codec.Encrypt(secret)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.Update(ctx, userID, UserUpdate{
		Enabled:            Set(false),
		SecretEnvelope:     Set(&enc),
		VerifiedAt:         Set[*time.Time](nil),
		RecoveryCodeHashes: Set[[]string](nil),
		LastUsedStep:       Set[*int64](nil),
	}); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "two-factor enrollment started",
		logger.Component("twofa"), logger.Event("enrollment_started"), logger.UserID(userID))

	return &Enrollment{Secret: secret, OtpauthURL: otpauthURL, QRCode: qr}, nil
}

// VerifyEnrollment confirms a pending enrollment with a code from the
// authenticator. On success the record flips to enabled, the matched step is
// persisted, and a fresh recovery-code set is minted and returned in
// plaintext. This is the only time the codes are ever returned.
func (s *Service) VerifyEnrollment(ctx context.Context, userID uuid.UUID, code string) ([]string, error) {
	defer s.lockUser(userID)()

	user, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Enabled {
		return nil, ErrAlreadyEnabled
	}
	if user.SecretEnvelope == nil {
		return nil, ErrMissingSecret
	}

	result, err := s.verifyCode(*user.SecretEnvelope, code, user.LastUsedStep)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		if result.Reason == totp.ReasonReplay {
			return nil, ErrReplayDetected
		}
		return nil, ErrInvalidCode
	}

	codes, err := recovery.Generate(s.recoveryCodeCount)
	if err != nil {
		return nil, err
	}

	verifiedAt := s.now()
	if _, err := s.store.Update(ctx, userID, UserUpdate{
		Enabled:            Set(true),
		VerifiedAt:         Set(&verifiedAt),
		RecoveryCodeHashes: Set(recovery.HashAll(s.recoveryKey, codes)),
		LastUsedStep:       Set(&result.MatchedStep),
	}); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "two-factor enabled",
		logger.Component("twofa"), logger.Event("enrollment_verified"), logger.UserID(userID))

	return codes, nil
}

// Challenge verifies a login-time code for an enabled user. TOTP is tried
// first; a replayed TOTP code fails immediately without consulting recovery
// codes, an otherwise invalid code falls through to recovery-code
// consumption.
func (s *Service) Challenge(ctx context.Context, userID uuid.UUID, code string) (*ChallengeResult, error) {
	defer s.lockUser(userID)()

	user, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.challenge(ctx, user, code)
}

// challenge runs the challenge against an already-loaded record. The
// caller must hold the user lock.
func (s *Service) challenge(ctx context.Context, user *User, code string) (*ChallengeResult, error) {
	if !user.Enabled || user.SecretEnvelope == nil {
		return nil, ErrNotEnabled
	}

	result, err := s.verifyCode(*user.SecretEnvelope, code, user.LastUsedStep)
	if err != nil {
		return nil, err
	}

	if result.Valid {
		if _, err := s.store.Update(ctx, user.ID, UserUpdate{
			LastUsedStep: Set(&result.MatchedStep),
		}); err != nil {
			return nil, err
		}
		return &ChallengeResult{
			UsedRecoveryCode:       false,
			RecoveryCodesRemaining: len(user.RecoveryCodeHashes),
		}, nil
	}

	if result.Reason == totp.ReasonReplay {
		// An already-used code must not be reinterpreted as a recovery
		// attempt.
		s.log.WarnContext(ctx, "replayed two-factor code rejected",
			logger.Component("twofa"), logger.Event("replay_detected"), logger.UserID(user.ID))
		return nil, ErrReplayDetected
	}

	remaining, matched := recovery.Consume(s.recoveryKey, code, user.RecoveryCodeHashes)
	if !matched {
		return nil, ErrInvalidCode
	}

	if _, err := s.store.Update(ctx, user.ID, UserUpdate{
		RecoveryCodeHashes: Set(remaining),
	}); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "recovery code consumed",
		logger.Component("twofa"), logger.Event("recovery_code_used"), logger.UserID(user.ID))

	return &ChallengeResult{
		UsedRecoveryCode:       true,
		RecoveryCodesRemaining: len(remaining),
	}, nil
}

// Disable turns two-factor authentication off after a successful challenge
// proving live possession of the factor. Returns (false, nil) when the user
// is not enabled; disabling twice is a no-op, not an error.
func (s *Service) Disable(ctx context.Context, userID uuid.UUID, code string) (bool, error) {
	defer s.lockUser(userID)()

	user, err := s.store.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	if !user.Enabled {
		return false, nil
	}

	if _, err := s.challenge(ctx, user, code); err != nil {
		return false, err
	}

	if _, err := s.store.Update(ctx, userID, UserUpdate{
		Enabled:            Set(false),
		SecretEnvelope:     Set[*string](nil),
		VerifiedAt:         Set[*time.Time](nil),
		RecoveryCodeHashes: Set[[]string](nil),
		LastUsedStep:       Set[*int64](nil),
	}); err != nil {
		return false, err
	}

	s.log.InfoContext(ctx, "two-factor disabled",
		logger.Component("twofa"), logger.Event("disabled"), logger.UserID(userID))

	return true, nil
}

// RegenerateRecoveryCodes replaces the entire stored recovery set and
// returns the new plaintext codes once. Every previously issued code is
// invalidated as a single atomic unit.
func (s *Service) RegenerateRecoveryCodes(ctx context.Context, userID uuid.UUID) ([]string, error) {
	defer s.lockUser(userID)()

	user, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.Enabled {
		return nil, ErrNotEnabled
	}

	codes, err := recovery.Generate(s.recoveryCodeCount)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.Update(ctx, userID, UserUpdate{
		RecoveryCodeHashes: Set(recovery.HashAll(s.recoveryKey, codes)),
	}); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "recovery codes regenerated",
		logger.Component("twofa"), logger.Event("recovery_codes_regenerated"), logger.UserID(userID))

	return codes, nil
}

// verifyCode decrypts the stored envelope and runs TOTP verification. The
// plaintext secret never leaves this call.
func (s *Service) verifyCode(secretEnvelope, code string, lastUsedStep *int64) (totp.Result, error) {
	secret, err := s.codec.Decrypt(secretEnvelope)
	if err != nil {
		return totp.Result{}, err
	}
	result, err := totp.Verify(secret, code, lastUsedStep, s.now())
	if err != nil {
		return totp.Result{}, err
	}
	return result, nil
}
