package repositories

import (
	"context"
	"database/sql"

	"tasktracker/internal/apperr"
	"tasktracker/internal/models"
)

// TeamWithRole pairs a team with the requesting user's membership role.
type TeamWithRole struct {
	Team models.Team
	Role models.TeamRole
}

type TeamRepository interface {
	// StoreWithOwner inserts the team and the owner's membership row in one
	// transaction.
	StoreWithOwner(ctx context.Context, team *models.Team) error
	FindByID(ctx context.Context, id int64) (*models.Team, error)
	Update(ctx context.Context, team *models.Team) error
	// DeleteCascade removes memberships, detaches team tasks and deletes the
	// team in one transaction.
	DeleteCascade(ctx context.Context, id int64) error

	AddMember(ctx context.Context, member *models.TeamMember) error
	RemoveMember(ctx context.Context, teamID, userID int64) (bool, error)
	FindMember(ctx context.Context, teamID, userID int64) (*models.TeamMember, error)
	ListMembers(ctx context.Context, teamID int64) ([]models.MemberView, error)
	ListForUser(ctx context.Context, userID int64) ([]TeamWithRole, error)
}

type teamRepository struct {
	db *sql.DB
}

func NewTeamRepository(db *sql.DB) TeamRepository {
	return &teamRepository{db: db}
}

const teamColumns = `id, name, description, owner_id, created_at, updated_at`

func scanTeam(row interface{ Scan(...any) error }) (*models.Team, error) {
	t := &models.Team{}
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *teamRepository) StoreWithOwner(ctx context.Context, team *models.Team) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO teams (name, description, owner_id)
		VALUES ($1,$2,$3)
		RETURNING id, created_at, updated_at`,
		team.Name, team.Description, team.OwnerID,
	).Scan(&team.ID, &team.CreatedAt, &team.UpdatedAt)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO team_members (team_id, user_id, role)
		VALUES ($1,$2,$3)`,
		team.ID, team.OwnerID, models.RoleOwner,
	)
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (r *teamRepository) FindByID(ctx context.Context, id int64) (*models.Team, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = $1`, id)
	t, err := scanTeam(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return t, err
}

func (r *teamRepository) Update(ctx context.Context, team *models.Team) error {
	return r.db.QueryRowContext(ctx, `
		UPDATE teams SET name=$1, description=$2, updated_at=NOW()
		WHERE id=$3
		RETURNING updated_at`,
		team.Name, team.Description, team.ID,
	).Scan(&team.UpdatedAt)
}

func (r *teamRepository) DeleteCascade(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM team_members WHERE team_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE tasks SET team_id = NULL WHERE team_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *teamRepository) AddMember(ctx context.Context, member *models.TeamMember) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO team_members (team_id, user_id, role)
		VALUES ($1,$2,$3)
		RETURNING id, joined_at`,
		member.TeamID, member.UserID, member.Role,
	).Scan(&member.ID, &member.JoinedAt)
	if isUniqueViolation(err) {
		return apperr.Conflict("User is already a member of this team")
	}
	return err
}

func (r *teamRepository) RemoveMember(ctx context.Context, teamID, userID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM team_members WHERE team_id = $1 AND user_id = $2`, teamID, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *teamRepository) FindMember(ctx context.Context, teamID, userID int64) (*models.TeamMember, error) {
	m := &models.TeamMember{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, team_id, user_id, role, joined_at
		FROM team_members WHERE team_id = $1 AND user_id = $2`,
		teamID, userID,
	).Scan(&m.ID, &m.TeamID, &m.UserID, &m.Role, &m.JoinedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *teamRepository) ListMembers(ctx context.Context, teamID int64) ([]models.MemberView, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT u.id, u.email, u.first_name, u.last_name, m.role, m.joined_at
		FROM team_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.team_id = $1
		ORDER BY m.joined_at ASC`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.MemberView
	for rows.Next() {
		var v models.MemberView
		if err := rows.Scan(&v.ID, &v.Email, &v.FirstName, &v.LastName, &v.Role, &v.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, v)
	}
	return members, rows.Err()
}

func (r *teamRepository) ListForUser(ctx context.Context, userID int64) ([]TeamWithRole, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.description, t.owner_id, t.created_at, t.updated_at, m.role
		FROM team_members m
		JOIN teams t ON t.id = m.team_id
		WHERE m.user_id = $1
		ORDER BY t.created_at ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []TeamWithRole
	for rows.Next() {
		var tr TeamWithRole
		if err := rows.Scan(
			&tr.Team.ID, &tr.Team.Name, &tr.Team.Description, &tr.Team.OwnerID,
			&tr.Team.CreatedAt, &tr.Team.UpdatedAt, &tr.Role,
		); err != nil {
			return nil, err
		}
		teams = append(teams, tr)
	}
	return teams, rows.Err()
}
