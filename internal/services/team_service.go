package services

import (
	"context"
	"fmt"
	"log"

	"tasktracker/internal/apperr"
	"tasktracker/internal/models"
	"tasktracker/internal/realtime"
	"tasktracker/internal/repositories"
)

type TeamService interface {
	Create(ctx context.Context, actorID int64, req models.TeamCreateRequest) (*models.TeamView, error)
	ListMine(ctx context.Context, actorID int64) ([]models.TeamView, error)
	Get(ctx context.Context, actorID, teamID int64) (*models.TeamView, error)
	Update(ctx context.Context, actorID, teamID int64, req models.TeamUpdateRequest) (*models.TeamView, error)
	Delete(ctx context.Context, actorID, teamID int64) error
	AddMember(ctx context.Context, actorID, teamID, userID int64) (*models.TeamView, error)
	RemoveMember(ctx context.Context, actorID, teamID, userID int64) error
	ListTasks(ctx context.Context, actorID, teamID int64, status *models.TaskStatus, page models.Page) ([]models.TaskView, models.Pagination, error)
}

type teamService struct {
	viewAssembler
	tasks    repositories.TaskRepository
	notifier realtime.Notifier
}

func NewTeamService(
	teams repositories.TeamRepository,
	users repositories.UserRepository,
	tasks repositories.TaskRepository,
	notifier realtime.Notifier,
) TeamService {
	return &teamService{
		viewAssembler: viewAssembler{users: users, teams: teams},
		tasks:         tasks,
		notifier:      notifier,
	}
}

func (s *teamService) teamView(ctx context.Context, team *models.Team, role models.TeamRole) (*models.TeamView, error) {
	view := &models.TeamView{Team: *team, UserRole: role}

	owner, err := s.users.FindByID(ctx, team.OwnerID)
	if err != nil {
		return nil, err
	}
	if owner != nil {
		ref := owner.Ref()
		view.Owner = &ref
	}
	if view.Members, err = s.teams.ListMembers(ctx, team.ID); err != nil {
		return nil, err
	}
	return view, nil
}

// requireMember resolves the team and the actor's membership, reporting not
// found before forbidden.
func (s *teamService) requireMember(ctx context.Context, actorID, teamID int64) (*models.Team, *models.TeamMember, error) {
	team, err := s.teams.FindByID(ctx, teamID)
	if err != nil {
		return nil, nil, err
	}
	if team == nil {
		return nil, nil, apperr.NotFound("Team")
	}
	member, err := s.teams.FindMember(ctx, teamID, actorID)
	if err != nil {
		return nil, nil, err
	}
	if member == nil {
		return nil, nil, apperr.Forbidden("You are not a member of this team")
	}
	return team, member, nil
}

func (s *teamService) Create(ctx context.Context, actorID int64, req models.TeamCreateRequest) (*models.TeamView, error) {
	team := &models.Team{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     actorID,
	}
	if err := s.teams.StoreWithOwner(ctx, team); err != nil {
		return nil, err
	}
	log.Printf("[team][create] id=%d owner=%d", team.ID, actorID)
	return s.teamView(ctx, team, models.RoleOwner)
}

func (s *teamService) ListMine(ctx context.Context, actorID int64) ([]models.TeamView, error) {
	memberships, err := s.teams.ListForUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	views := make([]models.TeamView, 0, len(memberships))
	for _, m := range memberships {
		view, err := s.teamView(ctx, &m.Team, m.Role)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

func (s *teamService) Get(ctx context.Context, actorID, teamID int64) (*models.TeamView, error) {
	team, member, err := s.requireMember(ctx, actorID, teamID)
	if err != nil {
		return nil, err
	}
	return s.teamView(ctx, team, member.Role)
}

func (s *teamService) Update(ctx context.Context, actorID, teamID int64, req models.TeamUpdateRequest) (*models.TeamView, error) {
	team, member, err := s.requireMember(ctx, actorID, teamID)
	if err != nil {
		return nil, err
	}
	if member.Role != models.RoleOwner {
		return nil, apperr.Forbidden("Only the team owner can update the team")
	}

	if req.Name != nil {
		team.Name = *req.Name
	}
	if req.Description != nil {
		team.Description = *req.Description
	}
	if err := s.teams.Update(ctx, team); err != nil {
		return nil, err
	}
	log.Printf("[team][update] id=%d actor=%d", team.ID, actorID)
	return s.teamView(ctx, team, member.Role)
}

func (s *teamService) Delete(ctx context.Context, actorID, teamID int64) error {
	_, member, err := s.requireMember(ctx, actorID, teamID)
	if err != nil {
		return err
	}
	if member.Role != models.RoleOwner {
		return apperr.Forbidden("Only the team owner can delete the team")
	}
	if err := s.teams.DeleteCascade(ctx, teamID); err != nil {
		return err
	}
	log.Printf("[team][delete] id=%d actor=%d", teamID, actorID)
	return nil
}

func (s *teamService) AddMember(ctx context.Context, actorID, teamID, userID int64) (*models.TeamView, error) {
	team, member, err := s.requireMember(ctx, actorID, teamID)
	if err != nil {
		return nil, err
	}
	if member.Role != models.RoleOwner {
		return nil, apperr.Forbidden("Only the team owner can add members")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("User")
	}

	newMember := &models.TeamMember{TeamID: teamID, UserID: userID, Role: models.RoleMember}
	if err := s.teams.AddMember(ctx, newMember); err != nil {
		return nil, err
	}
	log.Printf("[team][add_member] team=%d user=%d actor=%d", teamID, userID, actorID)

	s.notifier.Notify(userID, models.Notification{
		Type:    models.NotifyTeamInvitation,
		Message: fmt.Sprintf("You have been added to team: %s", team.Name),
		TeamID:  teamID,
	})
	return s.teamView(ctx, team, member.Role)
}

func (s *teamService) RemoveMember(ctx context.Context, actorID, teamID, userID int64) error {
	team, member, err := s.requireMember(ctx, actorID, teamID)
	if err != nil {
		return err
	}
	if userID == team.OwnerID {
		return apperr.Invalid("Cannot remove the team owner. Transfer ownership or delete the team instead.")
	}
	if member.Role != models.RoleOwner && actorID != userID {
		return apperr.Forbidden("You can only remove yourself from the team")
	}

	removed, err := s.teams.RemoveMember(ctx, teamID, userID)
	if err != nil {
		return err
	}
	if !removed {
		return apperr.NotFound("Member")
	}
	log.Printf("[team][remove_member] team=%d user=%d actor=%d", teamID, userID, actorID)
	return nil
}

func (s *teamService) ListTasks(ctx context.Context, actorID, teamID int64, status *models.TaskStatus, page models.Page) ([]models.TaskView, models.Pagination, error) {
	if _, _, err := s.requireMember(ctx, actorID, teamID); err != nil {
		return nil, models.Pagination{}, err
	}

	filter := models.TaskFilter{Status: status, TeamID: &teamID}
	tasks, total, err := s.tasks.FindAll(ctx, filter, page)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	views, err := s.taskViews(ctx, tasks)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return views, paginationFor(total, page.Number, page.Limit), nil
}
