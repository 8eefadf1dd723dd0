// services/claim_service.go
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

// ClaimOutcome is the store-confirmed result of a successful claim.
type ClaimOutcome struct {
	Record models.ClaimRecord `json:"record"`
	User   models.UserAccount `json:"user"`
	Status ClaimStatus        `json:"status"`
}

type ClaimService struct {
	DB    *gorm.DB
	Clock clockwork.Clock
}

func NewClaimService(db *gorm.DB, clock clockwork.Clock) *ClaimService {
	return &ClaimService{DB: db, Clock: clock}
}

// LoadVerifiedUser reads the authoritative user row. Missing or unverified users
// are reported as ErrNotAuthenticated.
func LoadVerifiedUser(ctx context.Context, db *gorm.DB, userID string) (*models.UserAccount, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	var user models.UserAccount
	if err := db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, storeErr("load user", err)
	}
	if !user.Verified {
		return nil, ErrNotAuthenticated
	}
	return &user, nil
}

// Status recomputes the claim status from the stored last claim.
func (s *ClaimService) Status(ctx context.Context, userID string) (ClaimStatus, error) {
	user, err := LoadVerifiedUser(ctx, s.DB, userID)
	if err != nil {
		return ClaimStatus{}, err
	}
	now := s.Clock.Now().UTC()
	s.checkSkew(user, now)
	return ComputeStatus(user.LastClaim, now), nil
}

// AttemptClaim credits ClaimReward when the cooldown has elapsed.
// The write is conditioned on the stored last_claim, so concurrent attempts
// against the same row cannot both succeed.
func (s *ClaimService) AttemptClaim(ctx context.Context, userID string) (*ClaimOutcome, error) {
	user, err := LoadVerifiedUser(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}

	now := s.Clock.Now().UTC()
	s.checkSkew(user, now)
	if status := ComputeStatus(user.LastClaim, now); !status.CanClaim {
		return nil, &AlreadyClaimedError{NextClaimAt: *status.NextClaimAt, Remaining: status.Remaining()}
	}

	record := models.ClaimRecord{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Amount:    ClaimReward,
		ClaimedAt: now,
	}
	next := now.Add(ClaimCooldown)
	cutoff := now.Add(-ClaimCooldown)

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.UserAccount{}).
			Where("id = ? AND (last_claim IS NULL OR last_claim <= ?)", user.ID, cutoff).
			Updates(map[string]interface{}{
				"last_claim":      now,
				"next_claim_time": next,
				"total_claimed":   gorm.Expr("total_claimed + ?", ClaimReward),
			})
		if res.Error != nil {
			return storeErr("conditional claim update", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyClaimed
		}
		if err := tx.Create(&record).Error; err != nil {
			return storeErr("append claim record", err)
		}
		return nil
	})
	if errors.Is(err, ErrAlreadyClaimed) {
		// Lost the race: report the cooldown the winner started.
		return nil, s.cooldownError(ctx, user.ID, now)
	}
	if err != nil {
		return nil, err
	}

	confirmed, err := LoadVerifiedUser(ctx, s.DB, user.ID)
	if err != nil {
		return nil, err
	}
	log.Printf("💰 [CLAIM] user=%s claimed %d, total=%d", confirmed.ID, ClaimReward, confirmed.TotalClaimed)

	return &ClaimOutcome{
		Record: record,
		User:   *confirmed,
		Status: ComputeStatus(confirmed.LastClaim, now),
	}, nil
}

// History returns the user's most recent claims, newest first.
func (s *ClaimService) History(ctx context.Context, userID string, limit int) ([]models.ClaimRecord, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var records []models.ClaimRecord
	if err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("claimed_at DESC").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, storeErr("list claim records", err)
	}
	return records, nil
}

func (s *ClaimService) cooldownError(ctx context.Context, userID string, now time.Time) error {
	user, err := LoadVerifiedUser(ctx, s.DB, userID)
	if err != nil {
		return err
	}
	status := ComputeStatus(user.LastClaim, now)
	if status.CanClaim {
		// The row changed under us without starting a cooldown; still refuse this attempt.
		return &AlreadyClaimedError{NextClaimAt: now, Remaining: 0}
	}
	return &AlreadyClaimedError{NextClaimAt: *status.NextClaimAt, Remaining: status.Remaining()}
}

func (s *ClaimService) checkSkew(user *models.UserAccount, now time.Time) {
	if ClockSkew(user.LastClaim, now) {
		log.Printf("⚠️ [CLAIM] user=%s last_claim %s is after now %s, treating elapsed as zero",
			user.ID, user.LastClaim.UTC().Format(time.RFC3339), now.Format(time.RFC3339))
	}
}
