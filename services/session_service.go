// services/session_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"token-claim-service/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
)

const sessionIssuer = "token-claim-service"

// ClientMeta describes the caller of a login or session request.
type ClientMeta struct {
	IPAddress string
	UserAgent string
}

type SessionService struct {
	DB     *gorm.DB
	Clock  clockwork.Clock
	secret []byte
	ttl    time.Duration
}

func NewSessionService(db *gorm.DB, clock clockwork.Clock, secret string, ttl time.Duration) *SessionService {
	return &SessionService{DB: db, Clock: clock, secret: []byte(secret), ttl: ttl}
}

// Issue persists a session row and returns its signed token.
func (s *SessionService) Issue(ctx context.Context, userID string, meta ClientMeta) (string, *models.Session, error) {
	now := s.Clock.Now().UTC()
	sess := &models.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: now.Add(s.ttl),
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	}
	if err := s.DB.WithContext(ctx).Create(sess).Error; err != nil {
		return "", nil, storeErr("create session", err)
	}

	claims := jwt.RegisteredClaims{
		ID:        sess.ID,
		Subject:   userID,
		Issuer:    sessionIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign session token: %w", err)
	}
	return token, sess, nil
}

// Validate checks the token signature and expiry, then that its session row is still active.
func (s *SessionService) Validate(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.Clock.Now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
	}

	var sess models.Session
	if err := s.DB.WithContext(ctx).Where("id = ?", claims.ID).First(&sess).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrNotAuthenticated, ErrSessionNotFound)
		}
		return nil, storeErr("load session", err)
	}
	if sess.UserID != claims.Subject || !sess.Active(s.Clock.Now()) {
		return nil, ErrNotAuthenticated
	}
	return &sess, nil
}

// Revoke ends a session. Revoking an already revoked session is a no-op.
func (s *SessionService) Revoke(ctx context.Context, sessionID string) error {
	now := s.Clock.Now().UTC()
	res := s.DB.WithContext(ctx).Model(&models.Session{}).
		Where("id = ? AND revoked_at IS NULL", sessionID).
		Update("revoked_at", now)
	if res.Error != nil {
		return storeErr("revoke session", res.Error)
	}
	return nil
}

// IsActive reports whether the session row still exists and is usable.
func (s *SessionService) IsActive(ctx context.Context, sessionID string) (bool, error) {
	var sess models.Session
	if err := s.DB.WithContext(ctx).Where("id = ?", sessionID).First(&sess).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, storeErr("load session", err)
	}
	return sess.Active(s.Clock.Now()), nil
}

// PruneExpired deletes sessions that expired or were revoked before now.
func (s *SessionService) PruneExpired(ctx context.Context) (int64, error) {
	now := s.Clock.Now().UTC()
	res := s.DB.WithContext(ctx).
		Where("expires_at <= ? OR revoked_at IS NOT NULL", now).
		Delete(&models.Session{})
	if res.Error != nil {
		return 0, storeErr("prune sessions", res.Error)
	}
	if res.RowsAffected > 0 {
		log.Printf("🧹 [SESSION] pruned %d session(s)", res.RowsAffected)
	}
	return res.RowsAffected, nil
}
