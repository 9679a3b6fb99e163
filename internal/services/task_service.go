package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"tasktracker/internal/apperr"
	"tasktracker/internal/models"
	"tasktracker/internal/realtime"
	"tasktracker/internal/repositories"
)

type TaskService interface {
	Create(ctx context.Context, actorID int64, req models.TaskCreateRequest) (*models.TaskView, error)
	List(ctx context.Context, actorID int64, filter models.TaskFilter, page models.Page) ([]models.TaskView, models.Pagination, error)
	GetByID(ctx context.Context, id int64) (*models.TaskView, error)
	Update(ctx context.Context, actorID, id int64, req models.TaskUpdateRequest) (*models.TaskView, error)
	Delete(ctx context.Context, actorID, id int64) error
	Complete(ctx context.Context, actorID, id int64) (*models.TaskView, error)
	Assign(ctx context.Context, actorID, taskID, userID int64) (*models.TaskView, error)
}

type taskService struct {
	viewAssembler
	tasks       repositories.TaskRepository
	comments    repositories.CommentRepository
	attachments repositories.AttachmentRepository
	notifier    realtime.Notifier
}

func NewTaskService(
	tasks repositories.TaskRepository,
	users repositories.UserRepository,
	teams repositories.TeamRepository,
	comments repositories.CommentRepository,
	attachments repositories.AttachmentRepository,
	notifier realtime.Notifier,
) TaskService {
	return &taskService{
		viewAssembler: viewAssembler{users: users, teams: teams},
		tasks:         tasks,
		comments:      comments,
		attachments:   attachments,
		notifier:      notifier,
	}
}

func parseDueDate(raw *string) (*time.Time, bool, error) {
	if raw == nil {
		return nil, false, nil
	}
	if *raw == "" {
		return nil, true, nil
	}
	t, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		return nil, false, apperr.Validation(apperr.FieldError{
			Field: "due_date", Message: "must be a valid RFC3339 timestamp",
		})
	}
	return &t, true, nil
}

func (s *taskService) Create(ctx context.Context, actorID int64, req models.TaskCreateRequest) (*models.TaskView, error) {
	priority := models.PriorityMedium
	if req.Priority != "" {
		priority = models.TaskPriority(req.Priority)
		if !models.IsAllowedTaskPriority(priority) {
			return nil, apperr.Validation(apperr.FieldError{
				Field: "priority", Message: "must be one of: low, medium, high",
			})
		}
	}
	dueDate, _, err := parseDueDate(req.DueDate)
	if err != nil {
		return nil, err
	}

	if req.AssignedTo != nil {
		assignee, err := s.users.FindByID(ctx, *req.AssignedTo)
		if err != nil {
			return nil, err
		}
		if assignee == nil {
			return nil, apperr.NotFound("Assigned user")
		}
	}
	if req.TeamID != nil {
		team, err := s.teams.FindByID(ctx, *req.TeamID)
		if err != nil {
			return nil, err
		}
		if team == nil {
			return nil, apperr.NotFound("Team")
		}
	}

	task := &models.Task{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     dueDate,
		Status:      models.StatusOpen,
		Priority:    priority,
		CreatedByID: actorID,
		AssignedTo:  req.AssignedTo,
		TeamID:      req.TeamID,
	}
	if err := s.tasks.Store(ctx, task); err != nil {
		return nil, err
	}
	log.Printf("[task][create] id=%d creator=%d", task.ID, actorID)

	if task.AssignedTo != nil {
		s.notifier.Notify(*task.AssignedTo, models.Notification{
			Type:    models.NotifyTaskAssigned,
			Message: fmt.Sprintf("You have been assigned a new task: %s", task.Title),
			TaskID:  task.ID,
		})
	}
	return s.taskView(ctx, task)
}

func (s *taskService) List(ctx context.Context, actorID int64, filter models.TaskFilter, page models.Page) ([]models.TaskView, models.Pagination, error) {
	if filter.Status == nil && filter.AssignedTo == nil && filter.TeamID == nil && filter.Search == "" {
		filter.Mine = &actorID
	}
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

func (s *taskService) GetByID(ctx context.Context, id int64) (*models.TaskView, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, apperr.NotFound("Task")
	}

	view, err := s.taskView(ctx, task)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if view.Comments, err = s.commentViews(ctx, comments); err != nil {
		return nil, err
	}
	attachments, err := s.attachments.ListByTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if view.Attachments, err = s.attachmentViews(ctx, attachments); err != nil {
		return nil, err
	}
	return view, nil
}

func canModifyTask(task *models.Task, actorID int64) bool {
	if task.CreatedByID == actorID {
		return true
	}
	return task.AssignedTo != nil && *task.AssignedTo == actorID
}

func (s *taskService) Update(ctx context.Context, actorID, id int64, req models.TaskUpdateRequest) (*models.TaskView, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, apperr.NotFound("Task")
	}
	if !canModifyTask(task, actorID) {
		return nil, apperr.Forbidden("You do not have permission to update this task")
	}

	prevAssignee := task.AssignedTo
	seenUpdatedAt := task.UpdatedAt

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if dueDate, set, err := parseDueDate(req.DueDate); err != nil {
		return nil, err
	} else if set {
		task.DueDate = dueDate
	}
	if req.Status != nil {
		status := models.TaskStatus(*req.Status)
		if !models.IsAllowedTaskStatus(status) {
			return nil, apperr.Validation(apperr.FieldError{
				Field: "status", Message: "must be one of: open, in_progress, completed",
			})
		}
		if status == models.StatusCompleted && task.Status != models.StatusCompleted {
			now := time.Now()
			task.CompletedAt = &now
		}
		task.Status = status
	}
	if req.Priority != nil {
		priority := models.TaskPriority(*req.Priority)
		if !models.IsAllowedTaskPriority(priority) {
			return nil, apperr.Validation(apperr.FieldError{
				Field: "priority", Message: "must be one of: low, medium, high",
			})
		}
		task.Priority = priority
	}

	assignmentChanged := false
	if newAssignee := req.AssignedTo.Ptr(); req.AssignedTo.Set && !int64PtrEq(newAssignee, prevAssignee) {
		if newAssignee != nil {
			assignee, err := s.users.FindByID(ctx, *newAssignee)
			if err != nil {
				return nil, err
			}
			if assignee == nil {
				return nil, apperr.NotFound("Assigned user")
			}
		}
		task.AssignedTo = newAssignee
		assignmentChanged = true
	}

	if err := s.tasks.Update(ctx, task, seenUpdatedAt); err != nil {
		return nil, err
	}
	log.Printf("[task][update] id=%d actor=%d", task.ID, actorID)

	if assignmentChanged {
		if task.AssignedTo != nil {
			s.notifier.Notify(*task.AssignedTo, models.Notification{
				Type:    models.NotifyTaskAssigned,
				Message: fmt.Sprintf("You have been assigned to task: %s", task.Title),
				TaskID:  task.ID,
			})
		}
		if prevAssignee != nil {
			s.notifier.Notify(*prevAssignee, models.Notification{
				Type:    models.NotifyTaskUpdated,
				Message: fmt.Sprintf("Task %q has been reassigned", task.Title),
				TaskID:  task.ID,
			})
		}
	} else if task.AssignedTo != nil && *task.AssignedTo != actorID {
		s.notifier.Notify(*task.AssignedTo, models.Notification{
			Type:    models.NotifyTaskUpdated,
			Message: fmt.Sprintf("Task %q has been updated", task.Title),
			TaskID:  task.ID,
		})
	}
	return s.taskView(ctx, task)
}

func (s *taskService) Delete(ctx context.Context, actorID, id int64) error {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if task == nil {
		return apperr.NotFound("Task")
	}
	if task.CreatedByID != actorID {
		return apperr.Forbidden("Only the task creator can delete this task")
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		return err
	}
	log.Printf("[task][delete] id=%d actor=%d", id, actorID)
	return nil
}

func (s *taskService) Complete(ctx context.Context, actorID, id int64) (*models.TaskView, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, apperr.NotFound("Task")
	}
	if !canModifyTask(task, actorID) {
		return nil, apperr.Forbidden("You do not have permission to complete this task")
	}

	seenUpdatedAt := task.UpdatedAt
	now := time.Now()
	task.Status = models.StatusCompleted
	task.CompletedAt = &now
	if err := s.tasks.Update(ctx, task, seenUpdatedAt); err != nil {
		return nil, err
	}
	log.Printf("[task][complete] id=%d actor=%d", task.ID, actorID)

	if task.CreatedByID != actorID {
		s.notifier.Notify(task.CreatedByID, models.Notification{
			Type:    models.NotifyTaskCompleted,
			Message: fmt.Sprintf("Task %q has been completed", task.Title),
			TaskID:  task.ID,
		})
	}
	return s.taskView(ctx, task)
}

func (s *taskService) Assign(ctx context.Context, actorID, taskID, userID int64) (*models.TaskView, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, apperr.NotFound("Task")
	}
	if task.CreatedByID != actorID {
		return nil, apperr.Forbidden("Only the task creator can assign this task")
	}
	assignee, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if assignee == nil {
		return nil, apperr.NotFound("User")
	}

	// assigning the current assignee again is a no-op
	if task.AssignedTo != nil && *task.AssignedTo == userID {
		return s.taskView(ctx, task)
	}

	prevAssignee := task.AssignedTo
	seenUpdatedAt := task.UpdatedAt
	task.AssignedTo = &userID
	if err := s.tasks.Update(ctx, task, seenUpdatedAt); err != nil {
		return nil, err
	}
	log.Printf("[task][assign] id=%d assignee=%d actor=%d", task.ID, userID, actorID)

	s.notifier.Notify(userID, models.Notification{
		Type:    models.NotifyTaskAssigned,
		Message: fmt.Sprintf("You have been assigned to task: %s", task.Title),
		TaskID:  task.ID,
	})
	if prevAssignee != nil {
		s.notifier.Notify(*prevAssignee, models.Notification{
			Type:    models.NotifyTaskUpdated,
			Message: fmt.Sprintf("Task %q has been reassigned", task.Title),
			TaskID:  task.ID,
		})
	}
	return s.taskView(ctx, task)
}
