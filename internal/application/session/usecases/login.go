package usecases

import (
	"context"
	"time"

	"glycoanalyzer/internal/domain/license"
	"glycoanalyzer/internal/domain/session"
	"glycoanalyzer/internal/shared/errors"
	"glycoanalyzer/internal/shared/logger"
	"glycoanalyzer/internal/shared/utils"
)

// TokenIssuer signs a session-bound token for the HTTP surface.
type TokenIssuer interface {
	Generate(sessionID, email string) (token string, expiresIn int64, err error)
}

// LoginLimiter throttles authentication attempts per normalized email.
type LoginLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

// SessionRegistry is the slice of the registry the usecases need.
type SessionRegistry interface {
	Add(ctx *session.Context)
	Get(id string) (*session.Context, error)
	Remove(id string)
}

type LoginCommand struct {
	Email    string
	Password string
}

type LoginResult struct {
	SessionID       string
	Token           string
	ExpiresIn       int64
	LicenseeName    string
	Structure       string
	TierLabel       string
	LicenseExpires  time.Time
	RemainingPhotos int
}

type LoginUseCase struct {
	gate     *license.Gate
	registry SessionRegistry
	tokens   TokenIssuer
	limiter  LoginLimiter
	logger   logger.Interface
}

func NewLoginUseCase(
	gate *license.Gate,
	registry SessionRegistry,
	tokens TokenIssuer,
	limiter LoginLimiter,
	logger logger.Interface,
) *LoginUseCase {
	return &LoginUseCase{
		gate:     gate,
		registry: registry,
		tokens:   tokens,
		limiter:  limiter,
		logger:   logger,
	}
}

func (uc *LoginUseCase) Execute(ctx context.Context, cmd LoginCommand) (*LoginResult, error) {
	email := license.NormalizeEmail(cmd.Email)

	allowed, err := uc.limiter.Allow(ctx, email)
	if err != nil {
		// Limiter faults fail open. Log and continue.
		uc.logger.Warnw("login limiter unavailable", "error", err)
	}
	if !allowed {
		return nil, errors.NewTooManyRequestsError("Trop de tentatives de connexion, réessayez plus tard")
	}

	rec, err := uc.gate.Authenticate(ctx, email, cmd.Password)
	if err != nil {
		return nil, err
	}

	sess := session.NewContext(rec)
	uc.registry.Add(sess)

	token, expiresIn, err := uc.tokens.Generate(sess.ID(), sess.Email())
	if err != nil {
		uc.registry.Remove(sess.ID())
		uc.logger.Errorw("failed to issue session token", "error", err)
		return nil, errors.NewInternalError("échec de création de session")
	}

	if resetErr := uc.limiter.Reset(ctx, email); resetErr != nil {
		uc.logger.Warnw("failed to reset login limiter", "error", resetErr)
	}

	uc.logger.Infow("session opened",
		"session_id", sess.ID(),
		"email", utils.MaskEmail(sess.Email()),
		"remaining_photos", sess.Remaining(),
	)

	return &LoginResult{
		SessionID:       sess.ID(),
		Token:           token,
		ExpiresIn:       expiresIn,
		LicenseeName:    sess.LicenseeName(),
		Structure:       sess.Structure(),
		TierLabel:       sess.TierLabel(),
		LicenseExpires:  rec.ExpiresAt,
		RemainingPhotos: sess.Remaining(),
	}, nil
}
