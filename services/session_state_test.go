package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"token-claim-service/models"

	"github.com/jonboulle/clockwork"
)

func receiveStatus(t *testing.T, ch <-chan ClaimStatus) ClaimStatus {
	t.Helper()
	select {
	case status, ok := <-ch:
		if !ok {
			t.Fatal("status channel closed")
		}
		return status
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for status")
	}
	return ClaimStatus{}
}

func waitForTicker(t *testing.T, clock *clockwork.FakeClock, n int) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := clock.BlockUntilContext(ctx, n); err != nil {
		t.Fatalf("ticker not started: %v", err)
	}
}

func TestSessionState_TicksCountdown(t *testing.T) {
	clock := newFakeClock()
	states := NewSessionStates(clock, time.Second)
	defer states.CloseAll()

	user := models.UserAccount{ID: "user-1", LastClaim: timePtr(testNow.Add(-time.Hour))}
	st := states.Open("sess-1", user)
	updates, unsubscribe := st.Subscribe()
	defer unsubscribe()

	_, initial := st.Snapshot()
	if initial.CanClaim || initial.Remaining() != 23*time.Hour {
		t.Fatalf("unexpected initial status %+v", initial)
	}

	waitForTicker(t, clock, 1)
	clock.Advance(time.Second)
	status := receiveStatus(t, updates)
	if want := 23*time.Hour - time.Second; status.Remaining() != want {
		t.Fatalf("expected %s remaining after one tick, got %s", want, status.Remaining())
	}
}

func TestSessionState_FlipsToClaimable(t *testing.T) {
	clock := newFakeClock()
	states := NewSessionStates(clock, time.Second)
	defer states.CloseAll()

	user := models.UserAccount{ID: "user-1", LastClaim: timePtr(testNow.Add(-ClaimCooldown + time.Second))}
	st := states.Open("sess-1", user)
	updates, unsubscribe := st.Subscribe()
	defer unsubscribe()

	waitForTicker(t, clock, 1)
	clock.Advance(time.Second)
	if status := receiveStatus(t, updates); !status.CanClaim || status.TimeRemainingMs != nil {
		t.Fatalf("expected claimable status, got %+v", status)
	}
}

func TestSessionStates_ApplyUserReachesEverySession(t *testing.T) {
	clock := newFakeClock()
	states := NewSessionStates(clock, time.Second)
	defer states.CloseAll()

	user := models.UserAccount{ID: "user-1"}
	a := states.Open("sess-a", user)
	b := states.Open("sess-b", user)
	other := states.Open("sess-c", models.UserAccount{ID: "user-2"})

	subA, unsubA := a.Subscribe()
	defer unsubA()
	subB, unsubB := b.Subscribe()
	defer unsubB()

	claimed := user
	claimed.LastClaim = timePtr(testNow)
	claimed.TotalClaimed = ClaimReward
	states.ApplyUser(claimed)

	for _, ch := range []<-chan ClaimStatus{subA, subB} {
		if status := receiveStatus(t, ch); status.CanClaim {
			t.Fatal("expected cooldown after applied claim")
		}
	}
	if u, _ := a.Snapshot(); u.TotalClaimed != ClaimReward {
		t.Fatalf("expected confirmed total, got %d", u.TotalClaimed)
	}
	if _, status := other.Snapshot(); !status.CanClaim {
		t.Fatal("other user's session must not change")
	}
	if states.Len() != 3 {
		t.Fatalf("expected 3 sessions, got %d", states.Len())
	}
}

func TestSessionStates_CloseEndsSubscriptions(t *testing.T) {
	clock := newFakeClock()
	states := NewSessionStates(clock, time.Second)

	st := states.Open("sess-1", models.UserAccount{ID: "user-1"})
	updates, unsubscribe := st.Subscribe()

	states.Close("sess-1")
	select {
	case _, ok := <-updates:
		if ok {
			// a pending tick may be drained before close
			if _, ok = <-updates; ok {
				t.Fatal("expected channel closed")
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("subscription not closed")
	}
	unsubscribe()

	if _, ok := states.Get("sess-1"); ok {
		t.Fatal("expected state removed")
	}
	states.Close("sess-1")

	// reopening after close starts a fresh state
	again := states.Open("sess-1", models.UserAccount{ID: "user-1"})
	if again == st {
		t.Fatal("expected a new state after close")
	}
	states.CloseAll()
	if states.Len() != 0 {
		t.Fatalf("expected no sessions after CloseAll, got %d", states.Len())
	}
}

type fakeChecker struct {
	active map[string]bool
	err    error
}

func (f fakeChecker) IsActive(ctx context.Context, sessionID string) (bool, error) {
	return f.active[sessionID], f.err
}

func TestSessionStates_CloseInactive(t *testing.T) {
	clock := newFakeClock()
	states := NewSessionStates(clock, time.Second)
	defer states.CloseAll()

	states.Open("live", models.UserAccount{ID: "user-1"})
	expired := states.Open("expired", models.UserAccount{ID: "user-1"})
	updates, unsubscribe := expired.Subscribe()
	defer unsubscribe()

	if _, err := states.CloseInactive(context.Background(), fakeChecker{err: errors.New("db down")}); err == nil {
		t.Fatal("expected checker error")
	}
	if states.Len() != 2 {
		t.Fatalf("expected states kept on checker error, got %d", states.Len())
	}

	n, err := states.CloseInactive(context.Background(), fakeChecker{active: map[string]bool{"live": true}})
	if err != nil {
		t.Fatalf("close inactive: %v", err)
	}
	if n != 1 || states.Len() != 1 {
		t.Fatalf("expected 1 closed and 1 left, got %d closed, %d left", n, states.Len())
	}
	if _, ok := states.Get("expired"); ok {
		t.Fatal("expected expired state removed")
	}
	for range updates {
		// drains until the closed state ends the subscription
	}
}
