package models

// Problem status values. Status and the claimed flag are independent
// dimensions: a claimed problem stays "open" until the claimer marks it
// ready for review.
const (
	StatusOpen           = "open"
	StatusReadyForReview = "ready for review"
	StatusClosed         = "closed"
)

type User struct {
	ID           int64  `json:"id" db:"id"`
	Name         string `json:"name" db:"name"`
	Email        string `json:"email" db:"email"`
	Updated      int64  `json:"updated" db:"updated"`
	PasswordHash string `json:"-" db:"password_hash"`
}

type Problem struct {
	ID                  int64  `json:"id" db:"id"`
	Summary             string `json:"summary" db:"summary"`
	Description         string `json:"description" db:"description"`
	Solution            string `json:"solution,omitempty" db:"solution"`
	Status              string `json:"status" db:"status"`
	Claimed             bool   `json:"claimed" db:"claimed"`
	ClaimedBy           *int64 `json:"claimed_by,omitempty" db:"claimed_by"`
	ResolvedBy          *int64 `json:"resolved_by,omitempty" db:"resolved_by"`
	HasAcceptedSolution bool   `json:"has_accepted_solution" db:"has_accepted_solution"`
	CreatedBy           int64  `json:"created_by" db:"created_by"`
	Created             int64  `json:"created" db:"created"`
	Updated             int64  `json:"updated" db:"updated"`
}

type Comment struct {
	ID        int64  `json:"id" db:"id"`
	ProblemID int64  `json:"problem_id" db:"problem_id"`
	Comment   string `json:"comment" db:"comment"`
	CreatedBy int64  `json:"created_by" db:"created_by"`
	Created   int64  `json:"created" db:"created"`
}

type Notification struct {
	ID        int64  `json:"id" db:"id"`
	UserID    int64  `json:"user_id" db:"user_id"`
	ProblemID int64  `json:"problem_id" db:"problem_id"`
	Message   string `json:"message" db:"message"`
	Read      bool   `json:"read" db:"read"`
	Created   int64  `json:"created" db:"created"`
}

type Schema struct {
	ID          int64  `json:"id" db:"id"`
	Version     string `json:"version" db:"version"`
	Description string `json:"description,omitempty" db:"description"`
	SchemaJSON  string `json:"schema_json" db:"schema_json"`
	Created     int64  `json:"created" db:"created"`
	Updated     int64  `json:"updated" db:"updated"`
}
