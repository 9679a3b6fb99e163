package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"tasktracker/internal/apperr"
	"tasktracker/internal/models"
	"tasktracker/internal/repositories"
)

// recordingNotifier captures every notification a service fires.
type recordingNotifier struct {
	sent []sentNotification
}

type sentNotification struct {
	UserID int64
	N      models.Notification
}

func (r *recordingNotifier) Notify(userID int64, n models.Notification) {
	r.sent = append(r.sent, sentNotification{UserID: userID, N: n})
}

func (r *recordingNotifier) NotifyMany(userIDs []int64, n models.Notification) {
	for _, id := range userIDs {
		r.Notify(id, n)
	}
}

func (r *recordingNotifier) Broadcast(n models.Notification) {}

func (r *recordingNotifier) sentTo(userID int64) []models.Notification {
	var out []models.Notification
	for _, s := range r.sent {
		if s.UserID == userID {
			out = append(out, s.N)
		}
	}
	return out
}

type fakeUserRepo struct {
	users  map[int64]models.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]models.User{}}
}

func (r *fakeUserRepo) add(email, first, last string) models.User {
	r.nextID++
	u := models.User{
		ID: r.nextID, Email: email, FirstName: first, LastName: last,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	r.users[u.ID] = u
	return u
}

func (r *fakeUserRepo) Store(ctx context.Context, user *models.User) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return apperr.Conflict("Email already registered")
		}
	}
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id int64) (*models.User, error) {
	if u, ok := r.users[id]; ok {
		cp := u
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByIDs(ctx context.Context, ids []int64) (map[int64]models.User, error) {
	out := map[int64]models.User{}
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()
	r.users[user.ID] = *user
	return nil
}

type fakeTaskRepo struct {
	tasks  map[int64]models.Task
	nextID int64
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: map[int64]models.Task{}}
}

func (r *fakeTaskRepo) Store(ctx context.Context, task *models.Task) error {
	r.nextID++
	task.ID = r.nextID
	task.CreatedAt = time.Now()
	task.UpdatedAt = task.CreatedAt
	r.tasks[task.ID] = *task
	return nil
}

func (r *fakeTaskRepo) FindByID(ctx context.Context, id int64) (*models.Task, error) {
	if t, ok := r.tasks[id]; ok {
		cp := t
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeTaskRepo) FindAll(ctx context.Context, filter models.TaskFilter, page models.Page) ([]models.Task, int, error) {
	var matched []models.Task
	for _, t := range r.tasks {
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.AssignedTo != nil && (t.AssignedTo == nil || *t.AssignedTo != *filter.AssignedTo) {
			continue
		}
		if filter.TeamID != nil && (t.TeamID == nil || *t.TeamID != *filter.TeamID) {
			continue
		}
		if filter.Search != "" &&
			!strings.Contains(strings.ToLower(t.Title), strings.ToLower(filter.Search)) &&
			!strings.Contains(strings.ToLower(t.Description), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.Mine != nil {
			mine := t.CreatedByID == *filter.Mine ||
				(t.AssignedTo != nil && *t.AssignedTo == *filter.Mine)
			if !mine {
				continue
			}
		}
		matched = append(matched, t)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := len(matched)
	start := (page.Number - 1) * page.Limit
	if start > total {
		start = total
	}
	end := start + page.Limit
	if page.Limit <= 0 || end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (r *fakeTaskRepo) Update(ctx context.Context, task *models.Task, seenUpdatedAt time.Time) error {
	stored, ok := r.tasks[task.ID]
	if !ok || !stored.UpdatedAt.Equal(seenUpdatedAt) {
		return apperr.Conflict("Task was modified concurrently")
	}
	task.UpdatedAt = stored.UpdatedAt.Add(time.Millisecond)
	r.tasks[task.ID] = *task
	return nil
}

func (r *fakeTaskRepo) Delete(ctx context.Context, id int64) error {
	delete(r.tasks, id)
	return nil
}

type fakeTeamRepo struct {
	teams        map[int64]models.Team
	members      map[int64][]models.TeamMember
	users        *fakeUserRepo
	tasks        *fakeTaskRepo
	nextID       int64
	nextMemberID int64
}

func newFakeTeamRepo(users *fakeUserRepo, tasks *fakeTaskRepo) *fakeTeamRepo {
	return &fakeTeamRepo{
		teams:   map[int64]models.Team{},
		members: map[int64][]models.TeamMember{},
		users:   users,
		tasks:   tasks,
	}
}

func (r *fakeTeamRepo) StoreWithOwner(ctx context.Context, team *models.Team) error {
	r.nextID++
	team.ID = r.nextID
	team.CreatedAt = time.Now()
	team.UpdatedAt = team.CreatedAt
	r.teams[team.ID] = *team

	r.nextMemberID++
	r.members[team.ID] = append(r.members[team.ID], models.TeamMember{
		ID: r.nextMemberID, TeamID: team.ID, UserID: team.OwnerID,
		Role: models.RoleOwner, JoinedAt: time.Now(),
	})
	return nil
}

func (r *fakeTeamRepo) FindByID(ctx context.Context, id int64) (*models.Team, error) {
	if t, ok := r.teams[id]; ok {
		cp := t
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeTeamRepo) Update(ctx context.Context, team *models.Team) error {
	team.UpdatedAt = time.Now()
	r.teams[team.ID] = *team
	return nil
}

func (r *fakeTeamRepo) DeleteCascade(ctx context.Context, id int64) error {
	delete(r.teams, id)
	delete(r.members, id)
	if r.tasks != nil {
		for taskID, t := range r.tasks.tasks {
			if t.TeamID != nil && *t.TeamID == id {
				t.TeamID = nil
				r.tasks.tasks[taskID] = t
			}
		}
	}
	return nil
}

func (r *fakeTeamRepo) AddMember(ctx context.Context, member *models.TeamMember) error {
	for _, m := range r.members[member.TeamID] {
		if m.UserID == member.UserID {
			return apperr.Conflict("User is already a member of this team")
		}
	}
	r.nextMemberID++
	member.ID = r.nextMemberID
	member.JoinedAt = time.Now()
	r.members[member.TeamID] = append(r.members[member.TeamID], *member)
	return nil
}

func (r *fakeTeamRepo) RemoveMember(ctx context.Context, teamID, userID int64) (bool, error) {
	list := r.members[teamID]
	for i, m := range list {
		if m.UserID == userID {
			r.members[teamID] = append(list[:i], list[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeTeamRepo) FindMember(ctx context.Context, teamID, userID int64) (*models.TeamMember, error) {
	for _, m := range r.members[teamID] {
		if m.UserID == userID {
			cp := m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeTeamRepo) ListMembers(ctx context.Context, teamID int64) ([]models.MemberView, error) {
	var out []models.MemberView
	for _, m := range r.members[teamID] {
		view := models.MemberView{Role: m.Role, JoinedAt: m.JoinedAt}
		if r.users != nil {
			if u, ok := r.users.users[m.UserID]; ok {
				view.UserRef = u.Ref()
			}
		}
		out = append(out, view)
	}
	return out, nil
}

func (r *fakeTeamRepo) ListForUser(ctx context.Context, userID int64) ([]repositories.TeamWithRole, error) {
	var out []repositories.TeamWithRole
	for teamID, list := range r.members {
		for _, m := range list {
			if m.UserID == userID {
				out = append(out, repositories.TeamWithRole{Team: r.teams[teamID], Role: m.Role})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Team.ID < out[j].Team.ID })
	return out, nil
}

type fakeCommentRepo struct {
	comments map[int64]models.Comment
	nextID   int64
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: map[int64]models.Comment{}}
}

func (r *fakeCommentRepo) Store(ctx context.Context, comment *models.Comment) error {
	r.nextID++
	comment.ID = r.nextID
	comment.CreatedAt = time.Now()
	r.comments[comment.ID] = *comment
	return nil
}

func (r *fakeCommentRepo) FindByID(ctx context.Context, taskID, commentID int64) (*models.Comment, error) {
	if c, ok := r.comments[commentID]; ok && c.TaskID == taskID {
		cp := c
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeCommentRepo) ListByTask(ctx context.Context, taskID int64) ([]models.Comment, error) {
	var out []models.Comment
	for _, c := range r.comments {
		if c.TaskID == taskID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeCommentRepo) Delete(ctx context.Context, id int64) error {
	delete(r.comments, id)
	return nil
}

type fakeAttachmentRepo struct {
	attachments map[int64]models.Attachment
	nextID      int64
	storeErr    error
}

func newFakeAttachmentRepo() *fakeAttachmentRepo {
	return &fakeAttachmentRepo{attachments: map[int64]models.Attachment{}}
}

func (r *fakeAttachmentRepo) Store(ctx context.Context, attachment *models.Attachment) error {
	if r.storeErr != nil {
		return r.storeErr
	}
	r.nextID++
	attachment.ID = r.nextID
	attachment.CreatedAt = time.Now()
	r.attachments[attachment.ID] = *attachment
	return nil
}

func (r *fakeAttachmentRepo) FindByID(ctx context.Context, taskID, attachmentID int64) (*models.Attachment, error) {
	if a, ok := r.attachments[attachmentID]; ok && a.TaskID == taskID {
		cp := a
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeAttachmentRepo) ListByTask(ctx context.Context, taskID int64) ([]models.Attachment, error) {
	var out []models.Attachment
	for _, a := range r.attachments {
		if a.TaskID == taskID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *fakeAttachmentRepo) Delete(ctx context.Context, id int64) error {
	delete(r.attachments, id)
	return nil
}
