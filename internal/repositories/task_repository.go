package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"tasktracker/internal/apperr"
	"tasktracker/internal/models"
)

type TaskRepository interface {
	Store(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id int64) (*models.Task, error)
	FindAll(ctx context.Context, filter models.TaskFilter, page models.Page) ([]models.Task, int, error)
	// Update is guarded by the updated_at value read before the write; a
	// lost race surfaces as apperr.ErrConflict.
	Update(ctx context.Context, task *models.Task, seenUpdatedAt time.Time) error
	Delete(ctx context.Context, id int64) error
}

type taskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) TaskRepository {
	return &taskRepository{db: db}
}

const taskColumns = `id, title, description, due_date, status, priority,
	created_by, assigned_to, team_id, completed_at, created_at, updated_at`

func scanTask(row interface{ Scan(...any) error }) (*models.Task, error) {
	t := &models.Task{}
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.DueDate, &t.Status, &t.Priority,
		&t.CreatedByID, &t.AssignedTo, &t.TeamID, &t.CompletedAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *taskRepository) Store(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (title, description, due_date, status, priority, created_by, assigned_to, team_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id, created_at, updated_at`
	return r.db.QueryRowContext(ctx, query,
		task.Title, task.Description, task.DueDate, task.Status, task.Priority,
		task.CreatedByID, task.AssignedTo, task.TeamID,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
}

func (r *taskRepository) FindByID(ctx context.Context, id int64) (*models.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return t, err
}

func (r *taskRepository) FindAll(ctx context.Context, filter models.TaskFilter, page models.Page) ([]models.Task, int, error) {
	conditions := []string{}
	args := []interface{}{}
	argID := 1

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argID))
		args = append(args, *filter.Status)
		argID++
	}
	if filter.AssignedTo != nil {
		conditions = append(conditions, fmt.Sprintf("assigned_to = $%d", argID))
		args = append(args, *filter.AssignedTo)
		argID++
	}
	if filter.TeamID != nil {
		conditions = append(conditions, fmt.Sprintf("team_id = $%d", argID))
		args = append(args, *filter.TeamID)
		argID++
	}
	if filter.Search != "" {
		conditions = append(conditions,
			fmt.Sprintf("(title ILIKE '%%'||$%d||'%%' OR description ILIKE '%%'||$%d||'%%')", argID, argID))
		args = append(args, filter.Search)
		argID++
	}
	if filter.Mine != nil {
		conditions = append(conditions,
			fmt.Sprintf("(created_by = $%d OR assigned_to = $%d)", argID, argID))
		args = append(args, *filter.Mine)
		argID++
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dir := "ASC"
	if page.Desc {
		dir = "DESC"
	}
	// page.SortBy is validated against a column allow-list by the caller
	query := fmt.Sprintf(`SELECT %s FROM tasks%s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		taskColumns, where, page.SortBy, dir, argID, argID+1)
	args = append(args, page.Limit, (page.Number-1)*page.Limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, total, rows.Err()
}

func (r *taskRepository) Update(ctx context.Context, task *models.Task, seenUpdatedAt time.Time) error {
	query := `
		UPDATE tasks SET
			title=$1, description=$2, due_date=$3, status=$4, priority=$5,
			assigned_to=$6, team_id=$7, completed_at=$8, updated_at=NOW()
		WHERE id=$9 AND updated_at=$10
		RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query,
		task.Title, task.Description, task.DueDate, task.Status, task.Priority,
		task.AssignedTo, task.TeamID, task.CompletedAt, task.ID, seenUpdatedAt,
	).Scan(&task.UpdatedAt)
	if err == sql.ErrNoRows {
		return apperr.Conflict("task was modified concurrently")
	}
	return err
}

func (r *taskRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	return err
}
