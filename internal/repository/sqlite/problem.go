package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/samuelralak/Emurgis/internal/models"
)

const problemColumns = `id, summary, description, solution, status, claimed, claimed_by, resolved_by, has_accepted_solution, created_by, created, updated`

func (r *SQLiteRepo) CreateProblem(ctx context.Context, p *models.Problem) (int64, error) {
	if p == nil {
		return 0, fmt.Errorf("problem is nil")
	}
	if p.Status == "" {
		p.Status = models.StatusOpen
	}

	ts := now()
	res, err := r.conn.Exec(ctx, `INSERT INTO problems (summary, description, solution, status, claimed, created_by, created, updated) VALUES (?, ?, ?, ?, 0, ?, ?, ?)`,
		p.Summary, p.Description, p.Solution, p.Status, p.CreatedBy, ts, ts)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetProblem(ctx context.Context, id int64) (*models.Problem, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+problemColumns+` FROM problems WHERE id = ?`, id)
	var p models.Problem
	var claimedBy, resolvedBy sql.NullInt64
	if err := row.Scan(&p.ID, &p.Summary, &p.Description, &p.Solution, &p.Status, &p.Claimed, &claimedBy, &resolvedBy, &p.HasAcceptedSolution, &p.CreatedBy, &p.Created, &p.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	if claimedBy.Valid {
		v := claimedBy.Int64
		p.ClaimedBy = &v
	}
	if resolvedBy.Valid {
		v := resolvedBy.Int64
		p.ResolvedBy = &v
	}

	return &p, nil
}

func (r *SQLiteRepo) ListProblems(ctx context.Context, limit, offset int) ([]models.Problem, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.conn.GetConn().QueryContext(ctx, `SELECT `+problemColumns+` FROM problems ORDER BY created DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Problem
	for rows.Next() {
		var p models.Problem
		var claimedBy, resolvedBy sql.NullInt64
		if err := rows.Scan(&p.ID, &p.Summary, &p.Description, &p.Solution, &p.Status, &p.Claimed, &claimedBy, &resolvedBy, &p.HasAcceptedSolution, &p.CreatedBy, &p.Created, &p.Updated); err != nil {
			return nil, err
		}

		if claimedBy.Valid {
			v := claimedBy.Int64
			p.ClaimedBy = &v
		}
		if resolvedBy.Valid {
			v := resolvedBy.Int64
			p.ResolvedBy = &v
		}
		out = append(out, p)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) CountProblems(ctx context.Context) (int64, error) {
	row := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM problems`)
	var cnt int64
	if err := row.Scan(&cnt); err != nil {
		return 0, err
	}
	return cnt, nil
}

// ClaimProblem sets the claim atomically. The WHERE clause guards against a
// concurrent claim: of two racing callers only one UPDATE matches.
func (r *SQLiteRepo) ClaimProblem(ctx context.Context, id, userID int64) (bool, error) {
	res, err := r.conn.Exec(ctx, `UPDATE problems SET claimed = 1, claimed_by = ?, updated = ? WHERE id = ? AND claimed = 0`, userID, now(), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *SQLiteRepo) UnclaimProblem(ctx context.Context, id, userID int64) (bool, error) {
	res, err := r.conn.Exec(ctx, `UPDATE problems SET claimed = 0, claimed_by = NULL, updated = ? WHERE id = ? AND claimed = 1 AND claimed_by = ?`, now(), id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *SQLiteRepo) MarkReadyForReview(ctx context.Context, id, claimerID int64) (bool, error) {
	res, err := r.conn.Exec(ctx, `UPDATE problems SET status = ?, updated = ? WHERE id = ? AND claimed_by = ? AND status != ?`,
		models.StatusReadyForReview, now(), id, claimerID, models.StatusClosed)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SetStatus transitions status from -> to in one conditional write. When
// closing an actually-solved problem the caller passes the claimer as
// resolvedBy and accepted = true.
func (r *SQLiteRepo) SetStatus(ctx context.Context, id int64, from, to string, resolvedBy *int64, accepted bool) (bool, error) {
	var res sql.Result
	var err error
	if resolvedBy != nil {
		res, err = r.conn.Exec(ctx, `UPDATE problems SET status = ?, resolved_by = ?, has_accepted_solution = ?, updated = ? WHERE id = ? AND status = ?`,
			to, *resolvedBy, accepted, now(), id, from)
	} else {
		res, err = r.conn.Exec(ctx, `UPDATE problems SET status = ?, updated = ? WHERE id = ? AND status = ?`,
			to, now(), id, from)
	}
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteProblem removes the problem and everything hanging off it.
func (r *SQLiteRepo) DeleteProblem(ctx context.Context, id int64) error {
	tx, err := r.conn.GetConn().BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, q := range []string{
		`DELETE FROM comments WHERE problem_id = ?`,
		`DELETE FROM problem_subscribers WHERE problem_id = ?`,
		`DELETE FROM notifications WHERE problem_id = ?`,
		`DELETE FROM problems WHERE id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// AddSubscriber is idempotent: watching twice is a no-op.
func (r *SQLiteRepo) AddSubscriber(ctx context.Context, problemID, userID int64) error {
	_, err := r.conn.Exec(ctx, `INSERT OR IGNORE INTO problem_subscribers (problem_id, user_id, created) VALUES (?, ?, ?)`, problemID, userID, now())
	return err
}

func (r *SQLiteRepo) RemoveSubscriber(ctx context.Context, problemID, userID int64) error {
	_, err := r.conn.Exec(ctx, `DELETE FROM problem_subscribers WHERE problem_id = ? AND user_id = ?`, problemID, userID)
	return err
}

func (r *SQLiteRepo) Subscribers(ctx context.Context, problemID int64) ([]int64, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT user_id FROM problem_subscribers WHERE problem_id = ? ORDER BY user_id`, problemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}

	return out, rows.Err()
}
