package sqlite

import (
	"context"
	"fmt"

	"github.com/samuelralak/Emurgis/internal/models"
)

func (r *SQLiteRepo) CreateComment(ctx context.Context, c *models.Comment) (int64, error) {
	if c == nil {
		return 0, fmt.Errorf("comment is nil")
	}

	res, err := r.conn.Exec(ctx, `INSERT INTO comments (problem_id, comment, created_by, created) VALUES (?, ?, ?, ?)`, c.ProblemID, c.Comment, c.CreatedBy, now())
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) ListByProblem(ctx context.Context, problemID int64) ([]models.Comment, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, problem_id, comment, created_by, created FROM comments WHERE problem_id = ? ORDER BY created ASC, id ASC`, problemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.ProblemID, &c.Comment, &c.CreatedBy, &c.Created); err != nil {
			return nil, err
		}
		out = append(out, c)
	}

	return out, rows.Err()
}
