package repositories

import (
	"context"
	"database/sql"

	"tasktracker/internal/models"
)

type CommentRepository interface {
	Store(ctx context.Context, comment *models.Comment) error
	// FindByID is task-scoped: a comment id under the wrong task is not found.
	FindByID(ctx context.Context, taskID, commentID int64) (*models.Comment, error)
	ListByTask(ctx context.Context, taskID int64) ([]models.Comment, error)
	Delete(ctx context.Context, id int64) error
}

type commentRepository struct {
	db *sql.DB
}

func NewCommentRepository(db *sql.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Store(ctx context.Context, comment *models.Comment) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO comments (task_id, user_id, content)
		VALUES ($1,$2,$3)
		RETURNING id, created_at`,
		comment.TaskID, comment.UserID, comment.Content,
	).Scan(&comment.ID, &comment.CreatedAt)
}

func (r *commentRepository) FindByID(ctx context.Context, taskID, commentID int64) (*models.Comment, error) {
	c := &models.Comment{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, task_id, user_id, content, created_at
		FROM comments WHERE id = $1 AND task_id = $2`,
		commentID, taskID,
	).Scan(&c.ID, &c.TaskID, &c.UserID, &c.Content, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *commentRepository) ListByTask(ctx context.Context, taskID int64) ([]models.Comment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, task_id, user_id, content, created_at
		FROM comments WHERE task_id = $1
		ORDER BY created_at ASC`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.TaskID, &c.UserID, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (r *commentRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	return err
}
