package repository

import (
	"context"

	"github.com/samuelralak/Emurgis/internal/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.

type UserRepo interface {
	CreateUser(ctx context.Context, u *models.User) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// ProblemRepo owns problem rows, their status/claim fields and the
// subscriber set. The conditional mutations (Claim, Unclaim,
// MarkReadyForReview, SetStatus) express the state check and the write as a
// single UPDATE and report whether a row matched, so callers never fall into
// a read-then-write race.
type ProblemRepo interface {
	CreateProblem(ctx context.Context, p *models.Problem) (int64, error)
	GetProblem(ctx context.Context, id int64) (*models.Problem, error)
	ListProblems(ctx context.Context, limit, offset int) ([]models.Problem, error)
	CountProblems(ctx context.Context) (int64, error)
	ClaimProblem(ctx context.Context, id, userID int64) (bool, error)
	UnclaimProblem(ctx context.Context, id, userID int64) (bool, error)
	MarkReadyForReview(ctx context.Context, id, claimerID int64) (bool, error)
	SetStatus(ctx context.Context, id int64, from, to string, resolvedBy *int64, accepted bool) (bool, error)
	DeleteProblem(ctx context.Context, id int64) error
	AddSubscriber(ctx context.Context, problemID, userID int64) error
	RemoveSubscriber(ctx context.Context, problemID, userID int64) error
	Subscribers(ctx context.Context, problemID int64) ([]int64, error)
}

type CommentRepo interface {
	CreateComment(ctx context.Context, c *models.Comment) (int64, error)
	ListByProblem(ctx context.Context, problemID int64) ([]models.Comment, error)
}

type NotificationRepo interface {
	CreateNotification(ctx context.Context, n *models.Notification) (int64, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]models.Notification, error)
	CountUnreadByUser(ctx context.Context, userID int64) (int64, error)
	MarkAllRead(ctx context.Context, userID int64) error
}

type SchemaRepo interface {
	CreateSchema(ctx context.Context, version, description, schemaJSON string) (int64, error)
	GetSchemaByVersion(ctx context.Context, version string) (*models.Schema, error)
	ListSchemas(ctx context.Context) ([]models.Schema, error)
	DeleteSchema(ctx context.Context, version string) error
}
