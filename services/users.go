// services/users.go
package services

import (
	"context"
	"log"

	"token-claim-service/models"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Profile is everything the dashboard needs after login or reload.
type Profile struct {
	User        models.UserAccount `json:"user"`
	Tasks       []TaskView         `json:"tasks"`
	ClaimStatus ClaimStatus        `json:"claim_status"`
}

type UserService struct {
	DB    *gorm.DB
	Tasks *TaskService
	Clock clockwork.Clock
}

func NewUserService(db *gorm.DB, tasks *TaskService, clock clockwork.Clock) *UserService {
	return &UserService{DB: db, Tasks: tasks, Clock: clock}
}

// EnsureVerifiedUser returns the account for a verified nullifier hash, creating it
// on first verification (idempotent).
func (s *UserService) EnsureVerifiedUser(ctx context.Context, res *VerifyResult) (*models.UserAccount, error) {
	now := s.Clock.Now().UTC()
	user := models.UserAccount{
		ID:                uuid.NewString(),
		NullifierHash:     res.NullifierHash,
		VerificationLevel: res.VerificationLevel,
		Verified:          true,
		VerifiedAt:        &now,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "nullifier_hash"}},
			DoNothing: true,
		}).Create(&user)
		if created.Error != nil {
			return created.Error
		}
		if created.RowsAffected == 1 {
			log.Printf("🆕 [AUTH] created user %s for nullifier %.12s…", user.ID, user.NullifierHash)
			return nil
		}

		// Existing account: refresh the verification stamp only.
		if err := tx.Model(&models.UserAccount{}).
			Where("nullifier_hash = ?", res.NullifierHash).
			Updates(map[string]interface{}{
				"verified":           true,
				"verified_at":        now,
				"verification_level": res.VerificationLevel,
			}).Error; err != nil {
			return err
		}
		existing, err := findByNullifier(tx, res.NullifierHash)
		if err != nil {
			return err
		}
		user = *existing
		return nil
	})
	if err != nil {
		return nil, storeErr("ensure verified user", err)
	}
	return &user, nil
}

// Profile hydrates the user, their task state and the current claim status.
func (s *UserService) Profile(ctx context.Context, userID string) (*Profile, error) {
	user, err := LoadVerifiedUser(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.Tasks.ListForUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &Profile{
		User:        *user,
		Tasks:       tasks,
		ClaimStatus: ComputeStatus(user.LastClaim, s.Clock.Now().UTC()),
	}, nil
}

// findByNullifier loads into a fresh value; reusing a struct with a primary
// key set would add that key to the WHERE clause.
func findByNullifier(db *gorm.DB, nullifierHash string) (*models.UserAccount, error) {
	var user models.UserAccount
	if err := db.Where("nullifier_hash = ?", nullifierHash).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
