// services/auth_service.go
package services

import (
	"context"
	"errors"
	"log"
	"time"

	"token-claim-service/models"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
)

const authProviderWorldcoin = "worldcoin"

// LoginResult is returned after a verified login.
type LoginResult struct {
	Token   string          `json:"token"`
	Session *models.Session `json:"session"`
	Profile *Profile        `json:"profile"`
}

type AuthService struct {
	DB       *gorm.DB
	Verifier IdentityVerifier
	Users    *UserService
	Sessions *SessionService
	Clock    clockwork.Clock
}

func NewAuthService(db *gorm.DB, verifier IdentityVerifier, users *UserService, sessions *SessionService, clock clockwork.Clock) *AuthService {
	return &AuthService{DB: db, Verifier: verifier, Users: users, Sessions: sessions, Clock: clock}
}

// Login verifies the proof, ensures the account exists and opens a session.
// Every attempt is written to the auth log, failed or not.
func (s *AuthService) Login(ctx context.Context, bundle ProofBundle, meta ClientMeta) (*LoginResult, error) {
	res, err := s.Verifier.Verify(ctx, bundle)
	if err != nil {
		s.recordAttempt(ctx, bundle.NullifierHash, models.LoginStatusFailed, errorCode(err), meta)
		return nil, err
	}

	user, err := s.Users.EnsureVerifiedUser(ctx, res)
	if err != nil {
		s.recordAttempt(ctx, res.NullifierHash, models.LoginStatusFailed, errorCode(err), meta)
		return nil, err
	}
	s.recordAttempt(ctx, res.NullifierHash, models.LoginStatusSuccess, "", meta)

	token, sess, err := s.Sessions.Issue(ctx, user.ID, meta)
	if err != nil {
		return nil, err
	}
	profile, err := s.Users.Profile(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	log.Printf("🔐 [AUTH] user=%s logged in, session=%s", user.ID, sess.ID)
	return &LoginResult{Token: token, Session: sess, Profile: profile}, nil
}

// Logout revokes the session.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrNotAuthenticated
	}
	return s.Sessions.Revoke(ctx, sessionID)
}

func (s *AuthService) recordAttempt(ctx context.Context, nullifier string, status models.LoginStatus, code string, meta ClientMeta) {
	if nullifier == "" {
		nullifier = "unknown"
	}
	entry := models.AuthLog{
		ID:           uuid.NewString(),
		UserID:       nullifier,
		AuthProvider: authProviderWorldcoin,
		LoginStatus:  status,
		LoginTime:    s.Clock.Now().UTC(),
		ErrorCode:    code,
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
	}
	// audit failures are logged, not returned
	if err := s.DB.WithContext(ctx).Create(&entry).Error; err != nil {
		log.Printf("⚠️ [AUTH] failed to record %s login for %.12s…: %v", status, nullifier, err)
	}
}

func errorCode(err error) string {
	var verr *VerificationError
	if errors.As(err, &verr) {
		return verr.Code
	}
	var serr *StoreError
	if errors.As(err, &serr) {
		return "store_error"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	return "verifier_unavailable"
}

// RecentAuthLogs lists the user's verification attempts within the window, newest first.
func (s *AuthService) RecentAuthLogs(ctx context.Context, userID string, window time.Duration) ([]models.AuthLog, error) {
	user, err := LoadVerifiedUser(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	var logs []models.AuthLog
	cutoff := s.Clock.Now().UTC().Add(-window)
	if err := s.DB.WithContext(ctx).
		Where("user_id = ? AND login_time >= ?", user.NullifierHash, cutoff).
		Order("login_time DESC").
		Find(&logs).Error; err != nil {
		return nil, storeErr("list auth logs", err)
	}
	return logs, nil
}
