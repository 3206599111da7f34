package problems

import (
	"context"
	"fmt"
	"strings"

	"log/slog"

	"github.com/samuelralak/Emurgis/internal/models"
	"github.com/samuelralak/Emurgis/pkg/repository"
)

// InfoActuallySolved is passed by the closer to confirm the claimer's
// solution was accepted.
const InfoActuallySolved = "actually-solved"

const (
	commentMinLen = 3
	commentMaxLen = 250
)

// Enqueuer pushes background work; satisfied by jobs.WorkerPool.
type Enqueuer interface {
	Enqueue(ctx context.Context, typ string, payload any, priority int, maxAttempts int) (int64, error)
}

// NotifyJobType is the queue type for subscriber fan-out jobs.
const NotifyJobType = "problem.notify"

// NotifyPayload is the job payload for a problem event. The worker expands it
// into one notification row per subscriber except the actor.
type NotifyPayload struct {
	ProblemID int64  `json:"problem_id"`
	ActorID   int64  `json:"actor_id"`
	Event     string `json:"event"`
	Message   string `json:"message"`
}

// Service owns every state transition on a Problem. Callers pass their own
// identity explicitly; there is no ambient current user. Each mutation is a
// single conditional write so two racing callers cannot both win.
type Service struct {
	problems repository.ProblemRepo
	comments repository.CommentRepo
	queue    Enqueuer
	logger   *slog.Logger
}

func NewService(problems repository.ProblemRepo, comments repository.CommentRepo, queue Enqueuer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{problems: problems, comments: comments, queue: queue, logger: logger}
}

// Create inserts a new problem with an explicit open status and subscribes
// the creator to it.
func (s *Service) Create(ctx context.Context, callerID int64, summary, description, solution string) (*models.Problem, error) {
	summary = strings.TrimSpace(summary)
	description = strings.TrimSpace(description)
	if summary == "" || description == "" {
		return nil, ErrMissingFields
	}

	p := &models.Problem{
		Summary:     summary,
		Description: description,
		Solution:    strings.TrimSpace(solution),
		Status:      models.StatusOpen,
		CreatedBy:   callerID,
	}
	id, err := s.problems.CreateProblem(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("create problem: %w", err)
	}

	if err := s.problems.AddSubscriber(ctx, id, callerID); err != nil {
		s.logger.Error("subscribe creator", "problem_id", id, "err", err)
	}

	return s.problems.GetProblem(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (*models.Problem, error) {
	p, err := s.problems.GetProblem(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]models.Problem, int64, error) {
	items, err := s.problems.ListProblems(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.problems.CountProblems(ctx)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Claim assigns the problem exclusively to the caller. A second claim fails
// with ErrAlreadyClaimed, even when the caller is the current claimer.
func (s *Service) Claim(ctx context.Context, id, callerID int64) (*models.Problem, error) {
	ok, err := s.problems.ClaimProblem(ctx, id, callerID)
	if err != nil {
		return nil, fmt.Errorf("claim problem: %w", err)
	}
	if !ok {
		p, err := s.problems.GetProblem(ctx, id)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, ErrNotFound
		}
		return nil, ErrAlreadyClaimed
	}

	s.notify(ctx, id, callerID, "claimed", "Problem has been claimed")
	return s.problems.GetProblem(ctx, id)
}

// Unclaim releases the caller's claim, clearing both the flag and the
// claimer reference.
func (s *Service) Unclaim(ctx context.Context, id, callerID int64) (*models.Problem, error) {
	ok, err := s.problems.UnclaimProblem(ctx, id, callerID)
	if err != nil {
		return nil, fmt.Errorf("unclaim problem: %w", err)
	}
	if !ok {
		p, err := s.problems.GetProblem(ctx, id)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, ErrNotFound
		}
		return nil, ErrNotClaimer
	}

	s.notify(ctx, id, callerID, "unclaimed", "Problem has been unclaimed")
	return s.problems.GetProblem(ctx, id)
}

// MarkAsResolved moves a claimed problem to ready for review. It succeeds
// only when the stored claimer, the claimerID argument and the caller are all
// the same user, and returns the problem id.
func (s *Service) MarkAsResolved(ctx context.Context, id, claimerID, callerID int64) (int64, error) {
	if claimerID != callerID {
		return 0, ErrCannotResolve
	}

	ok, err := s.problems.MarkReadyForReview(ctx, id, claimerID)
	if err != nil {
		return 0, fmt.Errorf("mark resolved: %w", err)
	}
	if !ok {
		p, err := s.problems.GetProblem(ctx, id)
		if err != nil {
			return 0, err
		}
		if p == nil {
			return 0, ErrNotFound
		}
		return 0, ErrCannotResolve
	}

	s.notify(ctx, id, callerID, "resolved", "Problem has been marked as solved and is ready for review")
	return id, nil
}

// UpdateStatus reopens or closes a problem. Only the creator or the claimer
// may do either. Closing is valid only from ready for review; when the closer
// confirms with InfoActuallySolved the claimer is recorded as resolver and
// the solution marked accepted.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status, info string, callerID int64) (*models.Problem, error) {
	if status != models.StatusOpen && status != models.StatusClosed {
		return nil, ErrInvalidStatus
	}

	p, err := s.problems.GetProblem(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}

	if callerID != p.CreatedBy && (p.ClaimedBy == nil || callerID != *p.ClaimedBy) {
		return nil, ErrNotAllowed
	}

	var from string
	var resolvedBy *int64
	accepted := false
	switch status {
	case models.StatusClosed:
		if p.Status != models.StatusReadyForReview {
			return nil, ErrNotReadyToClose
		}
		from = models.StatusReadyForReview
		if info == InfoActuallySolved && p.ClaimedBy != nil {
			resolvedBy = p.ClaimedBy
			accepted = true
		}
	case models.StatusOpen:
		if p.Status != models.StatusClosed {
			return nil, ErrNotClosed
		}
		from = models.StatusClosed
	}

	ok, err := s.problems.SetStatus(ctx, id, from, status, resolvedBy, accepted)
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	if !ok {
		// lost a race with another status change; the precondition no
		// longer holds
		if status == models.StatusClosed {
			return nil, ErrNotReadyToClose
		}
		return nil, ErrNotClosed
	}

	s.notify(ctx, id, callerID, "status", fmt.Sprintf("Problem is now %s", status))
	return s.problems.GetProblem(ctx, id)
}

// Watch subscribes the caller to the problem. Watching twice is a no-op.
func (s *Service) Watch(ctx context.Context, id, callerID int64) (*models.Problem, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.problems.AddSubscriber(ctx, id, callerID); err != nil {
		return nil, fmt.Errorf("watch problem: %w", err)
	}
	return p, nil
}

// Unwatch removes the caller from the subscriber set. Unwatching a problem
// the caller never watched is a no-op.
func (s *Service) Unwatch(ctx context.Context, id, callerID int64) (*models.Problem, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.problems.RemoveSubscriber(ctx, id, callerID); err != nil {
		return nil, fmt.Errorf("unwatch problem: %w", err)
	}
	return p, nil
}

// Delete permanently removes a problem together with its comments,
// subscribers and notifications. Only the creator may delete.
func (s *Service) Delete(ctx context.Context, id, callerID int64) error {
	p, err := s.problems.GetProblem(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrNotFound
	}
	if p.CreatedBy != callerID {
		return ErrNotAllowed
	}

	if err := s.problems.DeleteProblem(ctx, id); err != nil {
		return fmt.Errorf("delete problem: %w", err)
	}
	return nil
}

// PostComment validates and stores a comment. The same length rules run
// client-side, but clients can be bypassed so they are enforced here too.
func (s *Service) PostComment(ctx context.Context, problemID, callerID int64, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	switch {
	case text == "":
		return nil, ErrCommentEmpty
	case len(text) <= commentMinLen:
		return nil, ErrCommentTooShort
	case len(text) > commentMaxLen:
		return nil, ErrCommentTooLong
	}

	if _, err := s.Get(ctx, problemID); err != nil {
		return nil, err
	}

	c := &models.Comment{ProblemID: problemID, Comment: text, CreatedBy: callerID}
	id, err := s.comments.CreateComment(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("post comment: %w", err)
	}
	c.ID = id

	s.notify(ctx, problemID, callerID, "comment", "New comment posted")
	return c, nil
}

func (s *Service) Comments(ctx context.Context, problemID int64) ([]models.Comment, error) {
	if _, err := s.Get(ctx, problemID); err != nil {
		return nil, err
	}
	return s.comments.ListByProblem(ctx, problemID)
}

// Subscribers returns the watcher set for a problem.
func (s *Service) Subscribers(ctx context.Context, problemID int64) ([]int64, error) {
	return s.problems.Subscribers(ctx, problemID)
}

// notify enqueues a subscriber fan-out job. A full queue or broken db never
// fails the user-facing request; the event is just logged and lost.
func (s *Service) notify(ctx context.Context, problemID, actorID int64, event, message string) {
	if s.queue == nil {
		return
	}
	payload := NotifyPayload{ProblemID: problemID, ActorID: actorID, Event: event, Message: message}
	if _, err := s.queue.Enqueue(ctx, NotifyJobType, payload, 100, 3); err != nil {
		s.logger.Error("enqueue notify job", "problem_id", problemID, "event", event, "err", err)
	}
}
