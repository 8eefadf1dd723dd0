package models

import "time"

// ClaimRecord = one successful daily claim (append-only ledger)
type ClaimRecord struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    string    `gorm:"type:uuid;index;not null" json:"user_id"`
	Amount    int64     `gorm:"not null" json:"amount"`
	ClaimedAt time.Time `gorm:"index;not null" json:"claimed_at"`
}
