package services

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestFailureNotice_DistinctTitles(t *testing.T) {
	tests := []struct {
		err   error
		title string
	}{
		{&AlreadyClaimedError{NextClaimAt: testNow, Remaining: 90 * time.Minute}, "Already Claimed"},
		{ErrNotAuthenticated, "Not Signed In"},
		{fmt.Errorf("%w: task-1", ErrAlreadyCompleted), "Task Already Completed"},
		{fmt.Errorf("%w: task-9", ErrUnknownTask), "Unknown Task"},
		{&VerificationError{Code: "invalid_proof"}, "Verification Failed"},
		{&StoreError{Op: "x", Err: errors.New("down")}, "Something Went Wrong"},
	}
	for _, tt := range tests {
		n := FailureNotice(tt.err)
		if n.Title != tt.title {
			t.Fatalf("%v: expected %q, got %q", tt.err, tt.title, n.Title)
		}
		if n.Variant != "destructive" {
			t.Fatalf("%v: expected destructive variant", tt.err)
		}
	}

	n := FailureNotice(&AlreadyClaimedError{Remaining: 90 * time.Minute})
	if !strings.Contains(n.Description, "01:30:00") {
		t.Fatalf("expected countdown in description, got %q", n.Description)
	}
}

func TestClaimedNotice(t *testing.T) {
	n := ClaimedNotice(100, 1200)
	if !strings.Contains(n.Description, "100 TPT") || !strings.Contains(n.Description, "1,200 TPT") {
		t.Fatalf("unexpected description %q", n.Description)
	}
}

func TestFormatCountdown(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{-time.Second, "00:00:00"},
		{23*time.Hour + 59*time.Minute, "23:59:00"},
		{ClaimCooldown - time.Millisecond, "23:59:59"},
	}
	for _, tt := range tests {
		if got := FormatCountdown(tt.d); got != tt.want {
			t.Fatalf("FormatCountdown(%s) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
