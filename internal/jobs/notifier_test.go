package jobs_test

import (
	"context"
	"encoding/json"
	"testing"

	"log/slog"

	"github.com/samuelralak/Emurgis/internal/jobs"
	"github.com/samuelralak/Emurgis/internal/models"
	"github.com/samuelralak/Emurgis/internal/problems"
	"github.com/samuelralak/Emurgis/internal/repository/sqlite"
)

func TestNotifyHandler_FansOutToSubscribersExceptActor(t *testing.T) {
	ctx := context.Background()
	d := setupDB(t)
	repo := sqlite.New(d, slog.Default())

	pid, err := repo.CreateProblem(ctx, &models.Problem{Summary: "s", Description: "d", CreatedBy: 1})
	if err != nil {
		t.Fatalf("create problem: %v", err)
	}
	for _, uid := range []int64{1, 2, 3} {
		if err := repo.AddSubscriber(ctx, pid, uid); err != nil {
			t.Fatalf("add subscriber %d: %v", uid, err)
		}
	}

	payload, _ := json.Marshal(problems.NotifyPayload{ProblemID: pid, ActorID: 2, Event: "claimed", Message: "Problem has been claimed"})
	h := jobs.NewNotifyHandler(repo, repo, slog.Default())
	if err := h(ctx, &jobs.Job{Type: problems.NotifyJobType, Payload: payload}); err != nil {
		t.Fatalf("handler: %v", err)
	}

	// actor (user 2) gets nothing, users 1 and 3 get one row each
	for uid, want := range map[int64]int64{1: 1, 2: 0, 3: 1} {
		got, err := repo.CountUnreadByUser(ctx, uid)
		if err != nil {
			t.Fatalf("count unread for %d: %v", uid, err)
		}
		if got != want {
			t.Fatalf("user %d: expected %d notifications, got %d", uid, want, got)
		}
	}
}

func TestNotifyHandler_BadPayload(t *testing.T) {
	d := setupDB(t)
	repo := sqlite.New(d, slog.Default())

	h := jobs.NewNotifyHandler(repo, repo, slog.Default())
	if err := h(context.Background(), &jobs.Job{Payload: []byte("not json")}); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
}
