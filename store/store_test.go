package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func result(id, left, right string, lp, rp int, ended time.Time) MatchResult {
	return MatchResult{
		ID: id, ArenaSize: 7,
		LeftName: left, RightName: right,
		LeftPoints: lp, RightPoints: rp, Strikes: lp + rp,
		Reason:    "disconnect",
		StartedAt: ended.Add(-time.Minute), EndedAt: ended,
	}
}

func TestSaveAndRecent(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	if err := s.Save(ctx, result("m1", "ann", "bob", 2, 1, base)); err != nil {
		t.Fatalf("save m1: %v", err)
	}
	if err := s.Save(ctx, result("m2", "bob", "cy", 0, 3, base.Add(time.Hour))); err != nil {
		t.Fatalf("save m2: %v", err)
	}

	got, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("recent len = %d, want 2", len(got))
	}
	if got[0].ID != "m2" || got[1].ID != "m1" {
		t.Fatalf("recent order = %s,%s want m2,m1", got[0].ID, got[1].ID)
	}
	if got[1].LeftPoints != 2 || got[1].RightName != "bob" {
		t.Fatalf("m1 round trip mismatch: %+v", got[1])
	}
}

func TestLeaderboard(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	base := time.Now()
	for _, r := range []MatchResult{
		result("m1", "ann", "bob", 2, 1, base),
		result("m2", "bob", "cy", 4, 3, base),
		result("m3", "ann", "cy", 1, 0, base),
		result("m4", "ann", "", 2, 0, base),
	} {
		if err := s.Save(ctx, r); err != nil {
			t.Fatalf("save %s: %v", r.ID, err)
		}
	}

	board, err := s.Leaderboard(ctx, 10)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	want := []LeaderboardEntry{
		{Name: "ann", Points: 5, Best: 2, Matches: 3},
		{Name: "bob", Points: 5, Best: 4, Matches: 2},
		{Name: "cy", Points: 3, Best: 3, Matches: 2},
	}
	if len(board) != len(want) {
		t.Fatalf("leaderboard len = %d, want %d", len(board), len(want))
	}
	for i := range want {
		if board[i] != want[i] {
			t.Fatalf("leaderboard[%d] = %+v, want %+v", i, board[i], want[i])
		}
	}
}

func TestRunDrainsQueueOnShutdown(t *testing.T) {
	s := openTemp(t)
	if !s.Record(result("m1", "ann", "bob", 1, 0, time.Now())) {
		t.Fatalf("record should accept while queue has room")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, zap.NewNop().Sugar())
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}

	got, err := s.Recent(context.Background(), 5)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 1 || got[0].ID != "m1" {
		t.Fatalf("queued result not persisted: %+v", got)
	}
}
