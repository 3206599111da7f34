package problems

import (
	"slices"

	"github.com/samuelralak/Emurgis/internal/models"
)

// Affordances describes which actions a viewer may take on a problem. It is
// a pure function of the problem state and the viewer identity; clients
// render buttons from it instead of duplicating the lifecycle rules.
type Affordances struct {
	CanClaim       bool `json:"can_claim"`
	CanUnclaim     bool `json:"can_unclaim"`
	ClaimedByOther bool `json:"claimed_by_other"`
	CanWatch       bool `json:"can_watch"`
	CanUnwatch     bool `json:"can_unwatch"`
	CanResolve     bool `json:"can_resolve"`
	CanClose       bool `json:"can_close"`
	CanReopen      bool `json:"can_reopen"`
	CanDelete      bool `json:"can_delete"`
}

// AffordancesFor derives the viewer's affordances. subscribers is the
// problem's watcher set; viewerID is the authenticated user looking at it.
func AffordancesFor(p *models.Problem, subscribers []int64, viewerID int64) Affordances {
	var a Affordances
	if p == nil {
		return a
	}

	isClaimer := p.ClaimedBy != nil && *p.ClaimedBy == viewerID
	isCreator := p.CreatedBy == viewerID
	closed := p.Status == models.StatusClosed

	// Claim buttons disappear once a problem is closed.
	if !closed {
		switch {
		case p.Claimed && isClaimer:
			a.CanUnclaim = true
		case p.Claimed:
			a.ClaimedByOther = true
		default:
			a.CanClaim = true
		}
	}

	if slices.Contains(subscribers, viewerID) {
		a.CanUnwatch = true
	} else {
		a.CanWatch = true
	}

	// The claimer can announce a solution while the problem is neither
	// awaiting review nor closed.
	a.CanResolve = isClaimer && p.Status != models.StatusReadyForReview && !closed

	// Closing and reopening are for the creator or the claimer.
	if isCreator || isClaimer {
		a.CanClose = p.Status == models.StatusReadyForReview
		a.CanReopen = closed
	}

	a.CanDelete = isCreator

	return a
}
