package services

import (
	"context"
	"fmt"
	"io"
	"log"

	"tasktracker/internal/apperr"
	"tasktracker/internal/models"
	"tasktracker/internal/realtime"
	"tasktracker/internal/repositories"
)

// BlobStore abstracts the attachment payload storage.
type BlobStore interface {
	Save(src io.Reader, originalName string) (string, int64, error)
	Remove(name string) error
	Path(name string) string
}

// CollaborationService covers comments and attachments on tasks.
type CollaborationService interface {
	AddComment(ctx context.Context, actorID, taskID int64, req models.CommentCreateRequest) (*models.CommentView, error)
	ListComments(ctx context.Context, taskID int64) ([]models.CommentView, error)
	DeleteComment(ctx context.Context, actorID, taskID, commentID int64) error

	Upload(ctx context.Context, actorID, taskID int64, src io.Reader, filename, mimetype string) (*models.AttachmentView, error)
	ListAttachments(ctx context.Context, taskID int64) ([]models.AttachmentView, error)
	DeleteAttachment(ctx context.Context, actorID, taskID, attachmentID int64) error
	// ResolveDownload returns the attachment record and the blob path on disk.
	ResolveDownload(ctx context.Context, taskID, attachmentID int64) (*models.Attachment, string, error)
}

type collaborationService struct {
	viewAssembler
	tasks       repositories.TaskRepository
	comments    repositories.CommentRepository
	attachments repositories.AttachmentRepository
	blobs       BlobStore
	notifier    realtime.Notifier
}

func NewCollaborationService(
	tasks repositories.TaskRepository,
	users repositories.UserRepository,
	teams repositories.TeamRepository,
	comments repositories.CommentRepository,
	attachments repositories.AttachmentRepository,
	blobs BlobStore,
	notifier realtime.Notifier,
) CollaborationService {
	return &collaborationService{
		viewAssembler: viewAssembler{users: users, teams: teams},
		tasks:         tasks,
		comments:      comments,
		attachments:   attachments,
		blobs:         blobs,
		notifier:      notifier,
	}
}

func (s *collaborationService) requireTask(ctx context.Context, taskID int64) (*models.Task, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, apperr.NotFound("Task")
	}
	return task, nil
}

func (s *collaborationService) AddComment(ctx context.Context, actorID, taskID int64, req models.CommentCreateRequest) (*models.CommentView, error) {
	task, err := s.requireTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{TaskID: taskID, UserID: actorID, Content: req.Content}
	if err := s.comments.Store(ctx, comment); err != nil {
		return nil, err
	}
	log.Printf("[comment][create] id=%d task=%d actor=%d", comment.ID, taskID, actorID)

	// notify the task creator and assignee, never the commenter, each at
	// most once
	recipients := map[int64]struct{}{task.CreatedByID: {}}
	if task.AssignedTo != nil {
		recipients[*task.AssignedTo] = struct{}{}
	}
	delete(recipients, actorID)
	for userID := range recipients {
		s.notifier.Notify(userID, models.Notification{
			Type:      models.NotifyNewComment,
			Message:   fmt.Sprintf("New comment on task: %s", task.Title),
			TaskID:    taskID,
			CommentID: comment.ID,
		})
	}

	views, err := s.commentViews(ctx, []models.Comment{*comment})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *collaborationService) ListComments(ctx context.Context, taskID int64) ([]models.CommentView, error) {
	if _, err := s.requireTask(ctx, taskID); err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return s.commentViews(ctx, comments)
}

func (s *collaborationService) DeleteComment(ctx context.Context, actorID, taskID, commentID int64) error {
	if _, err := s.requireTask(ctx, taskID); err != nil {
		return err
	}
	comment, err := s.comments.FindByID(ctx, taskID, commentID)
	if err != nil {
		return err
	}
	if comment == nil {
		return apperr.NotFound("Comment")
	}
	if comment.UserID != actorID {
		return apperr.Forbidden("You can only delete your own comments")
	}
	if err := s.comments.Delete(ctx, commentID); err != nil {
		return err
	}
	log.Printf("[comment][delete] id=%d actor=%d", commentID, actorID)
	return nil
}

func (s *collaborationService) Upload(ctx context.Context, actorID, taskID int64, src io.Reader, filename, mimetype string) (*models.AttachmentView, error) {
	if _, err := s.requireTask(ctx, taskID); err != nil {
		return nil, err
	}

	storedName, size, err := s.blobs.Save(src, filename)
	if err != nil {
		return nil, err
	}

	attachment := &models.Attachment{
		TaskID:   taskID,
		UserID:   actorID,
		Filename: filename,
		Filepath: storedName,
		Filesize: size,
		Mimetype: mimetype,
	}
	if err := s.attachments.Store(ctx, attachment); err != nil {
		// keep the store clean when the record never lands
		if rmErr := s.blobs.Remove(storedName); rmErr != nil {
			log.Printf("[attachment][cleanup] remove %s: %v", storedName, rmErr)
		}
		return nil, err
	}
	log.Printf("[attachment][upload] id=%d task=%d actor=%d size=%d", attachment.ID, taskID, actorID, size)

	views, err := s.attachmentViews(ctx, []models.Attachment{*attachment})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *collaborationService) ListAttachments(ctx context.Context, taskID int64) ([]models.AttachmentView, error) {
	if _, err := s.requireTask(ctx, taskID); err != nil {
		return nil, err
	}
	attachments, err := s.attachments.ListByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return s.attachmentViews(ctx, attachments)
}

func (s *collaborationService) DeleteAttachment(ctx context.Context, actorID, taskID, attachmentID int64) error {
	if _, err := s.requireTask(ctx, taskID); err != nil {
		return err
	}
	attachment, err := s.attachments.FindByID(ctx, taskID, attachmentID)
	if err != nil {
		return err
	}
	if attachment == nil {
		return apperr.NotFound("Attachment")
	}
	if attachment.UserID != actorID {
		return apperr.Forbidden("You can only delete your own attachments")
	}

	if err := s.attachments.Delete(ctx, attachmentID); err != nil {
		return err
	}
	// a missing blob is not worth failing the request over
	if err := s.blobs.Remove(attachment.Filepath); err != nil {
		log.Printf("[attachment][delete] remove blob %s: %v", attachment.Filepath, err)
	}
	log.Printf("[attachment][delete] id=%d actor=%d", attachmentID, actorID)
	return nil
}

func (s *collaborationService) ResolveDownload(ctx context.Context, taskID, attachmentID int64) (*models.Attachment, string, error) {
	if _, err := s.requireTask(ctx, taskID); err != nil {
		return nil, "", err
	}
	attachment, err := s.attachments.FindByID(ctx, taskID, attachmentID)
	if err != nil {
		return nil, "", err
	}
	if attachment == nil {
		return nil, "", apperr.NotFound("Attachment")
	}
	return attachment, s.blobs.Path(attachment.Filepath), nil
}
