package services

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotAuthenticated = errors.New("no verified user session")
	ErrAlreadyClaimed   = errors.New("claim cooldown still active")
	ErrAlreadyCompleted = errors.New("task already completed")
	ErrUnknownTask      = errors.New("unknown task")
	ErrSessionNotFound  = errors.New("session not found")
)

// AlreadyClaimedError carries the cooldown that blocked the claim.
// errors.Is(err, ErrAlreadyClaimed) holds for it.
type AlreadyClaimedError struct {
	NextClaimAt time.Time
	Remaining   time.Duration
}

func (e *AlreadyClaimedError) Error() string {
	return fmt.Sprintf("%s: next claim at %s", ErrAlreadyClaimed, e.NextClaimAt.UTC().Format(time.RFC3339))
}

func (e *AlreadyClaimedError) Is(target error) bool {
	return target == ErrAlreadyClaimed
}

// StoreError wraps a failed read or write against the database.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

// VerificationError is a rejected or malformed identity proof.
type VerificationError struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

func (e *VerificationError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("verification failed: %s", e.Code)
	}
	return fmt.Sprintf("verification failed: %s: %s", e.Code, e.Detail)
}
