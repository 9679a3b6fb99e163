package repositories

import (
	"context"
	"database/sql"

	"tasktracker/internal/models"
)

type AttachmentRepository interface {
	Store(ctx context.Context, attachment *models.Attachment) error
	FindByID(ctx context.Context, taskID, attachmentID int64) (*models.Attachment, error)
	ListByTask(ctx context.Context, taskID int64) ([]models.Attachment, error)
	Delete(ctx context.Context, id int64) error
}

type attachmentRepository struct {
	db *sql.DB
}

func NewAttachmentRepository(db *sql.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) Store(ctx context.Context, attachment *models.Attachment) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO attachments (task_id, user_id, filename, filepath, filesize, mimetype)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, created_at`,
		attachment.TaskID, attachment.UserID, attachment.Filename,
		attachment.Filepath, attachment.Filesize, attachment.Mimetype,
	).Scan(&attachment.ID, &attachment.CreatedAt)
}

func (r *attachmentRepository) FindByID(ctx context.Context, taskID, attachmentID int64) (*models.Attachment, error) {
	a := &models.Attachment{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, task_id, user_id, filename, filepath, filesize, mimetype, created_at
		FROM attachments WHERE id = $1 AND task_id = $2`,
		attachmentID, taskID,
	).Scan(&a.ID, &a.TaskID, &a.UserID, &a.Filename, &a.Filepath, &a.Filesize, &a.Mimetype, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *attachmentRepository) ListByTask(ctx context.Context, taskID int64) ([]models.Attachment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, task_id, user_id, filename, filepath, filesize, mimetype, created_at
		FROM attachments WHERE task_id = $1
		ORDER BY created_at DESC`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attachments []models.Attachment
	for rows.Next() {
		var a models.Attachment
		if err := rows.Scan(&a.ID, &a.TaskID, &a.UserID, &a.Filename, &a.Filepath, &a.Filesize, &a.Mimetype, &a.CreatedAt); err != nil {
			return nil, err
		}
		attachments = append(attachments, a)
	}
	return attachments, rows.Err()
}

func (r *attachmentRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM attachments WHERE id = $1`, id)
	return err
}
