package models

import "time"

// UserAccount is one verified person, keyed by the World ID nullifier hash.
// LastClaim, NextClaimTime and TotalClaimed only change through a successful claim
// or a task reward credit.
type UserAccount struct {
	ID                string     `gorm:"primaryKey;type:uuid" json:"id"`
	NullifierHash     string     `gorm:"type:varchar(128);uniqueIndex;not null" json:"nullifier_hash"`
	VerificationLevel string     `gorm:"type:varchar(32);not null;default:'orb'" json:"verification_level"`
	Verified          bool       `gorm:"not null;default:false" json:"verified"`
	VerifiedAt        *time.Time `json:"verified_at,omitempty"`
	LastClaim         *time.Time `gorm:"index" json:"last_claim"`
	NextClaimTime     *time.Time `json:"next_claim_time,omitempty"`
	TotalClaimed      int64      `gorm:"not null;default:0" json:"total_claimed"`

	Timestamps
}
