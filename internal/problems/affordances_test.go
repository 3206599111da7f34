package problems_test

import (
	"testing"

	"github.com/samuelralak/Emurgis/internal/models"
	"github.com/samuelralak/Emurgis/internal/problems"
)

func TestAffordances(t *testing.T) {
	creator := int64(1)
	claimer := int64(2)
	other := int64(3)

	claimed := func(status string) *models.Problem {
		c := claimer
		return &models.Problem{ID: 10, Status: status, Claimed: true, ClaimedBy: &c, CreatedBy: creator}
	}

	tests := []struct {
		name     string
		problem  *models.Problem
		subs     []int64
		viewerID int64
		want     problems.Affordances
	}{
		{
			name:     "open unclaimed for stranger",
			problem:  &models.Problem{ID: 10, Status: models.StatusOpen, CreatedBy: creator},
			viewerID: other,
			want:     problems.Affordances{CanClaim: true, CanWatch: true},
		},
		{
			name:     "open claimed for claimer",
			problem:  claimed(models.StatusOpen),
			subs:     []int64{claimer},
			viewerID: claimer,
			want:     problems.Affordances{CanUnclaim: true, CanUnwatch: true, CanResolve: true},
		},
		{
			name:     "open claimed for someone else",
			problem:  claimed(models.StatusOpen),
			viewerID: other,
			want:     problems.Affordances{ClaimedByOther: true, CanWatch: true},
		},
		{
			name:     "ready for review for creator",
			problem:  claimed(models.StatusReadyForReview),
			viewerID: creator,
			want:     problems.Affordances{ClaimedByOther: true, CanWatch: true, CanClose: true, CanDelete: true},
		},
		{
			name:     "ready for review for claimer",
			problem:  claimed(models.StatusReadyForReview),
			viewerID: claimer,
			want:     problems.Affordances{CanUnclaim: true, CanWatch: true, CanClose: true},
		},
		{
			name:     "closed hides claim buttons",
			problem:  claimed(models.StatusClosed),
			viewerID: claimer,
			want:     problems.Affordances{CanWatch: true, CanReopen: true},
		},
		{
			name:     "closed for creator",
			problem:  claimed(models.StatusClosed),
			viewerID: creator,
			want:     problems.Affordances{CanWatch: true, CanReopen: true, CanDelete: true},
		},
		{
			name:     "closed for stranger",
			problem:  claimed(models.StatusClosed),
			viewerID: other,
			want:     problems.Affordances{CanWatch: true},
		},
		{
			name:     "nil problem",
			problem:  nil,
			viewerID: other,
			want:     problems.Affordances{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := problems.AffordancesFor(tt.problem, tt.subs, tt.viewerID)
			if got != tt.want {
				t.Fatalf("affordances mismatch:\n got  %+v\n want %+v", got, tt.want)
			}
		})
	}
}
