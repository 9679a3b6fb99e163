package services

import (
	"context"

	"tasktracker/internal/models"
	"tasktracker/internal/repositories"
)

// viewAssembler builds response DTOs from separate repository fetches, with
// explicit allow-lists instead of association loading.
type viewAssembler struct {
	users repositories.UserRepository
	teams repositories.TeamRepository
}

func (a *viewAssembler) taskViews(ctx context.Context, tasks []models.Task) ([]models.TaskView, error) {
	userIDs := make([]int64, 0, len(tasks)*2)
	teamIDs := map[int64]struct{}{}
	for _, t := range tasks {
		userIDs = append(userIDs, t.CreatedByID)
		if t.AssignedTo != nil {
			userIDs = append(userIDs, *t.AssignedTo)
		}
		if t.TeamID != nil {
			teamIDs[*t.TeamID] = struct{}{}
		}
	}

	users, err := a.users.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	teamRefs := make(map[int64]models.TeamRef, len(teamIDs))
	for id := range teamIDs {
		team, err := a.teams.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if team != nil {
			teamRefs[id] = team.Ref()
		}
	}

	views := make([]models.TaskView, 0, len(tasks))
	for _, t := range tasks {
		v := models.TaskView{Task: t}
		if u, ok := users[t.CreatedByID]; ok {
			ref := u.Ref()
			v.Creator = &ref
		}
		if t.AssignedTo != nil {
			if u, ok := users[*t.AssignedTo]; ok {
				ref := u.Ref()
				v.Assignee = &ref
			}
		}
		if t.TeamID != nil {
			if ref, ok := teamRefs[*t.TeamID]; ok {
				refCopy := ref
				v.Team = &refCopy
			}
		}
		views = append(views, v)
	}
	return views, nil
}

func (a *viewAssembler) taskView(ctx context.Context, task *models.Task) (*models.TaskView, error) {
	views, err := a.taskViews(ctx, []models.Task{*task})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (a *viewAssembler) commentViews(ctx context.Context, comments []models.Comment) ([]models.CommentView, error) {
	ids := make([]int64, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.UserID)
	}
	users, err := a.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.CommentView, 0, len(comments))
	for _, c := range comments {
		v := models.CommentView{Comment: c}
		if u, ok := users[c.UserID]; ok {
			ref := u.Ref()
			v.Author = &ref
		}
		views = append(views, v)
	}
	return views, nil
}

func (a *viewAssembler) attachmentViews(ctx context.Context, attachments []models.Attachment) ([]models.AttachmentView, error) {
	ids := make([]int64, 0, len(attachments))
	for _, at := range attachments {
		ids = append(ids, at.UserID)
	}
	users, err := a.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.AttachmentView, 0, len(attachments))
	for _, at := range attachments {
		v := models.AttachmentView{Attachment: at}
		if u, ok := users[at.UserID]; ok {
			ref := u.Ref()
			v.Uploader = &ref
		}
		views = append(views, v)
	}
	return views, nil
}

func int64PtrEq(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func paginationFor(total, page, limit int) models.Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return models.Pagination{Total: total, Page: page, Limit: limit, TotalPages: totalPages}
}
