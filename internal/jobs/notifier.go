package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"log/slog"

	"github.com/samuelralak/Emurgis/internal/models"
	"github.com/samuelralak/Emurgis/internal/problems"
	"github.com/samuelralak/Emurgis/pkg/repository"
)

// NewNotifyHandler returns the handler for problems.NotifyJobType jobs. It
// fans a problem event out into one notification row per subscriber, skipping
// the user who performed the action.
func NewNotifyHandler(problemRepo repository.ProblemRepo, notifRepo repository.NotificationRepo, logger *slog.Logger) Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return func(ctx context.Context, j *Job) error {
		var payload problems.NotifyPayload
		if err := json.Unmarshal(j.Payload, &payload); err != nil {
			return fmt.Errorf("decode notify payload: %w", err)
		}

		subs, err := problemRepo.Subscribers(ctx, payload.ProblemID)
		if err != nil {
			return fmt.Errorf("load subscribers: %w", err)
		}

		for _, userID := range subs {
			if userID == payload.ActorID {
				continue
			}
			n := &models.Notification{
				UserID:    userID,
				ProblemID: payload.ProblemID,
				Message:   payload.Message,
			}
			if _, err := notifRepo.CreateNotification(ctx, n); err != nil {
				return fmt.Errorf("create notification for user %d: %w", userID, err)
			}
		}

		logger.Info("notified subscribers",
			"problem_id", payload.ProblemID,
			"event", payload.Event,
			"subscribers", len(subs),
		)
		return nil
	}
}
