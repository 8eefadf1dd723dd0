package models

import "time"

// Task is a registry entry. It is configuration, not a table.
type Task struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Reward      int64  `json:"reward"`
}

// TaskCompletion marks a task as done for a user. Reset deletes these rows.
type TaskCompletion struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID      string    `gorm:"type:uuid;not null;uniqueIndex:idx_task_completion_user_task" json:"user_id"`
	TaskID      string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_task_completion_user_task" json:"task_id"`
	CompletedAt time.Time `gorm:"not null" json:"completed_at"`
}

// TaskRewardGrant records that a task's reward was credited to a user.
// Rows are never deleted, so a (user, task) pair pays out at most once even after a reset.
type TaskRewardGrant struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_task_grant_user_task" json:"user_id"`
	TaskID    string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_task_grant_user_task" json:"task_id"`
	Amount    int64     `gorm:"not null" json:"amount"`
	GrantedAt time.Time `gorm:"not null" json:"granted_at"`
}
