// services/claim_status.go
package services

import "time"

const (
	// ClaimReward is credited by every successful daily claim.
	ClaimReward int64 = 100
	// ClaimCooldown is the minimum spacing between two claims of one user.
	ClaimCooldown = 24 * time.Hour
)

// ClaimStatus is derived from the last claim instant and "now". It is never stored.
type ClaimStatus struct {
	CanClaim        bool       `json:"can_claim"`
	TimeRemainingMs *int64     `json:"time_remaining_ms"`
	NextClaimAt     *time.Time `json:"next_claim_at"`
}

// Remaining returns the cooldown left, zero when a claim is allowed.
func (s ClaimStatus) Remaining() time.Duration {
	if s.TimeRemainingMs == nil {
		return 0
	}
	return time.Duration(*s.TimeRemainingMs) * time.Millisecond
}

// ComputeStatus derives the claim status. A lastClaim after now is treated as
// elapsed=0, see ClockSkew.
func ComputeStatus(lastClaim *time.Time, now time.Time) ClaimStatus {
	if lastClaim == nil {
		return ClaimStatus{CanClaim: true}
	}

	elapsed := now.Sub(*lastClaim)
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed >= ClaimCooldown {
		return ClaimStatus{CanClaim: true}
	}

	remaining := ClaimCooldown - elapsed
	ms := remaining.Milliseconds()
	if ms == 0 {
		// sub-millisecond remainder still blocks the claim
		ms = 1
	}
	next := now.Add(remaining)
	return ClaimStatus{
		CanClaim:        false,
		TimeRemainingMs: &ms,
		NextClaimAt:     &next,
	}
}

// ClockSkew reports a last claim recorded later than now.
func ClockSkew(lastClaim *time.Time, now time.Time) bool {
	return lastClaim != nil && lastClaim.After(now)
}
