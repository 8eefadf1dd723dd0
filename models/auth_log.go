package models

import "time"

type LoginStatus string

const (
	LoginStatusSuccess LoginStatus = "success"
	LoginStatusFailed  LoginStatus = "failed"
)

// AuthLog records every identity verification attempt.
// UserID holds the nullifier hash presented, verified or not.
type AuthLog struct {
	ID           string      `gorm:"primaryKey;type:uuid" json:"id"`
	UserID       string      `gorm:"type:varchar(128);index;not null" json:"user_id"`
	AuthProvider string      `gorm:"type:varchar(32);not null" json:"auth_provider"`
	LoginStatus  LoginStatus `gorm:"type:varchar(16);not null" json:"login_status"`
	LoginTime    time.Time   `gorm:"index;not null" json:"login_time"`
	ErrorCode    string      `gorm:"type:varchar(64)" json:"error_code,omitempty"`
	IPAddress    string      `gorm:"type:varchar(64)" json:"ip_address,omitempty"`
	UserAgent    string      `gorm:"type:text" json:"user_agent,omitempty"`
	ArchivedAt   *time.Time  `gorm:"index" json:"-"`
}
