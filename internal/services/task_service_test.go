package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"tasktracker/internal/apperr"
	"tasktracker/internal/models"
)

type taskFixture struct {
	users    *fakeUserRepo
	tasks    *fakeTaskRepo
	teams    *fakeTeamRepo
	notifier *recordingNotifier
	svc      TaskService

	alice models.User // id 1
	bob   models.User // id 2
	carol models.User // id 3
}

func newTaskFixture(t *testing.T) *taskFixture {
	t.Helper()

	f := &taskFixture{
		users:    newFakeUserRepo(),
		tasks:    newFakeTaskRepo(),
		notifier: &recordingNotifier{},
	}
	f.teams = newFakeTeamRepo(f.users, f.tasks)
	f.alice = f.users.add("alice@example.com", "Alice", "Smith")
	f.bob = f.users.add("bob@example.com", "Bob", "Jones")
	f.carol = f.users.add("carol@example.com", "Carol", "White")
	f.svc = NewTaskService(f.tasks, f.users, f.teams, newFakeCommentRepo(), newFakeAttachmentRepo(), f.notifier)
	return f
}

func (f *taskFixture) createTask(t *testing.T, creatorID int64, assignee *int64) *models.TaskView {
	t.Helper()
	view, err := f.svc.Create(context.Background(), creatorID, models.TaskCreateRequest{
		Title: "Write release notes", AssignedTo: assignee,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return view
}

func TestCreateTaskDefaults(t *testing.T) {
	f := newTaskFixture(t)

	view := f.createTask(t, f.alice.ID, nil)
	if view.Status != models.StatusOpen {
		t.Errorf("Status = %q, want open", view.Status)
	}
	if view.Priority != models.PriorityMedium {
		t.Errorf("Priority = %q, want medium", view.Priority)
	}
	if view.Creator == nil || view.Creator.ID != f.alice.ID {
		t.Errorf("Creator = %+v, want alice", view.Creator)
	}
	if len(f.notifier.sent) != 0 {
		t.Errorf("unassigned create produced %d notifications", len(f.notifier.sent))
	}
}

func TestCreateTaskNotifiesAssignee(t *testing.T) {
	f := newTaskFixture(t)

	f.createTask(t, f.alice.ID, &f.bob.ID)

	got := f.notifier.sentTo(f.bob.ID)
	if len(got) != 1 {
		t.Fatalf("assignee got %d notifications, want 1", len(got))
	}
	if got[0].Type != models.NotifyTaskAssigned {
		t.Errorf("type = %q, want task_assigned", got[0].Type)
	}
	if got[0].Message != "You have been assigned a new task: Write release notes" {
		t.Errorf("message = %q", got[0].Message)
	}
}

func TestCreateTaskUnknownAssignee(t *testing.T) {
	f := newTaskFixture(t)

	missing := int64(99)
	_, err := f.svc.Create(context.Background(), f.alice.ID, models.TaskCreateRequest{
		Title: "x", AssignedTo: &missing,
	})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestCreateTaskBadDueDate(t *testing.T) {
	f := newTaskFixture(t)

	bad := "next tuesday"
	_, err := f.svc.Create(context.Background(), f.alice.ID, models.TaskCreateRequest{
		Title: "x", DueDate: &bad,
	})
	var vErr *apperr.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("err = %v, want validation error", err)
	}
	if vErr.Fields[0].Field != "due_date" {
		t.Errorf("field = %q, want due_date", vErr.Fields[0].Field)
	}
}

func TestUpdateTaskPermissions(t *testing.T) {
	f := newTaskFixture(t)
	view := f.createTask(t, f.alice.ID, &f.bob.ID)
	title := "Edited"

	// carol is neither creator nor assignee
	_, err := f.svc.Update(context.Background(), f.carol.ID, view.ID, models.TaskUpdateRequest{Title: &title})
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("stranger update: err = %v, want forbidden", err)
	}

	// the assignee may update
	if _, err := f.svc.Update(context.Background(), f.bob.ID, view.ID, models.TaskUpdateRequest{Title: &title}); err != nil {
		t.Fatalf("assignee update: %v", err)
	}
}

func TestUpdateTaskNotifiesAssigneeNotActor(t *testing.T) {
	f := newTaskFixture(t)
	view := f.createTask(t, f.alice.ID, &f.bob.ID)
	f.notifier.sent = nil

	title := "Edited"
	if _, err := f.svc.Update(context.Background(), f.alice.ID, view.ID, models.TaskUpdateRequest{Title: &title}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got := f.notifier.sentTo(f.bob.ID)
	if len(got) != 1 || got[0].Type != models.NotifyTaskUpdated {
		t.Fatalf("assignee notifications = %+v, want one task_updated", got)
	}
}

func TestUpdateTaskByAssigneeIsSilentToSelf(t *testing.T) {
	f := newTaskFixture(t)
	view := f.createTask(t, f.alice.ID, &f.bob.ID)
	f.notifier.sent = nil

	title := "Edited"
	if _, err := f.svc.Update(context.Background(), f.bob.ID, view.ID, models.TaskUpdateRequest{Title: &title}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(f.notifier.sent) != 0 {
		t.Fatalf("assignee editing own task got %d notifications, want 0", len(f.notifier.sent))
	}
}

func TestUpdateTaskReassignment(t *testing.T) {
	f := newTaskFixture(t)
	view := f.createTask(t, f.alice.ID, &f.bob.ID)
	f.notifier.sent = nil

	updated, err := f.svc.Update(context.Background(), f.alice.ID, view.ID, models.TaskUpdateRequest{AssignedTo: models.SomeInt64(f.carol.ID)})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.AssignedTo == nil || *updated.AssignedTo != f.carol.ID {
		t.Fatalf("AssignedTo = %v, want carol", updated.AssignedTo)
	}

	carolGot := f.notifier.sentTo(f.carol.ID)
	if len(carolGot) != 1 || carolGot[0].Type != models.NotifyTaskAssigned {
		t.Errorf("new assignee notifications = %+v, want one task_assigned", carolGot)
	}
	bobGot := f.notifier.sentTo(f.bob.ID)
	if len(bobGot) != 1 || bobGot[0].Type != models.NotifyTaskUpdated {
		t.Errorf("previous assignee notifications = %+v, want one task_updated", bobGot)
	}
}

func TestUpdateTaskClearsAssignee(t *testing.T) {
	f := newTaskFixture(t)
	view := f.createTask(t, f.alice.ID, &f.bob.ID)
	f.notifier.sent = nil

	// an explicit null unassigns the task
	var req models.TaskUpdateRequest
	if err := json.Unmarshal([]byte(`{"assigned_to_id": null}`), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	updated, err := f.svc.Update(context.Background(), f.alice.ID, view.ID, req)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.AssignedTo != nil {
		t.Fatalf("AssignedTo = %v, want nil", *updated.AssignedTo)
	}
	bobGot := f.notifier.sentTo(f.bob.ID)
	if len(bobGot) != 1 || bobGot[0].Type != models.NotifyTaskUpdated {
		t.Errorf("previous assignee notifications = %+v, want one task_updated", bobGot)
	}

	// an absent field leaves the assignment alone
	view2 := f.createTask(t, f.alice.ID, &f.bob.ID)
	title := "Still bob's"
	updated2, err := f.svc.Update(context.Background(), f.alice.ID, view2.ID, models.TaskUpdateRequest{Title: &title})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated2.AssignedTo == nil || *updated2.AssignedTo != f.bob.ID {
		t.Fatalf("AssignedTo = %v, want bob", updated2.AssignedTo)
	}
}

func TestUpdateTaskConcurrentModification(t *testing.T) {
	f := newTaskFixture(t)
	view := f.createTask(t, f.alice.ID, nil)

	// bump the stored row so the service's read becomes stale
	stale, _ := f.tasks.FindByID(context.Background(), view.ID)
	winner := *stale
	winner.Title = "First writer"
	if err := f.tasks.Update(context.Background(), &winner, stale.UpdatedAt); err != nil {
		t.Fatalf("seed update: %v", err)
	}

	title := "Second writer"
	// replay the stale read through the repo directly
	loser := *stale
	loser.Title = title
	err := f.tasks.Update(context.Background(), &loser, stale.UpdatedAt)
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
}

func TestDeleteTaskCreatorOnly(t *testing.T) {
	f := newTaskFixture(t)
	view := f.createTask(t, f.alice.ID, &f.bob.ID)

	err := f.svc.Delete(context.Background(), f.bob.ID, view.ID)
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("assignee delete: err = %v, want forbidden", err)
	}
	if err := f.svc.Delete(context.Background(), f.alice.ID, view.ID); err != nil {
		t.Fatalf("creator delete: %v", err)
	}
	if _, err := f.svc.GetByID(context.Background(), view.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("after delete: err = %v, want not found", err)
	}
}

func TestCompleteTaskNotifiesCreator(t *testing.T) {
	f := newTaskFixture(t)
	view := f.createTask(t, f.alice.ID, &f.bob.ID)
	f.notifier.sent = nil

	completed, err := f.svc.Complete(context.Background(), f.bob.ID, view.ID)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if completed.Status != models.StatusCompleted {
		t.Errorf("Status = %q, want completed", completed.Status)
	}
	if completed.CompletedAt == nil {
		t.Error("CompletedAt must be stamped")
	}

	got := f.notifier.sentTo(f.alice.ID)
	if len(got) != 1 || got[0].Type != models.NotifyTaskCompleted {
		t.Fatalf("creator notifications = %+v, want one task_completed", got)
	}
}

func TestCompleteOwnTaskIsSilent(t *testing.T) {
	f := newTaskFixture(t)
	view := f.createTask(t, f.alice.ID, nil)
	f.notifier.sent = nil

	if _, err := f.svc.Complete(context.Background(), f.alice.ID, view.ID); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if len(f.notifier.sent) != 0 {
		t.Fatalf("creator completing own task got %d notifications, want 0", len(f.notifier.sent))
	}
}

func TestAssignTask(t *testing.T) {
	f := newTaskFixture(t)
	view := f.createTask(t, f.alice.ID, nil)
	f.notifier.sent = nil

	// only the creator may assign
	_, err := f.svc.Assign(context.Background(), f.bob.ID, view.ID, f.carol.ID)
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("non-creator assign: err = %v, want forbidden", err)
	}

	assigned, err := f.svc.Assign(context.Background(), f.alice.ID, view.ID, f.bob.ID)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if assigned.AssignedTo == nil || *assigned.AssignedTo != f.bob.ID {
		t.Fatalf("AssignedTo = %v, want bob", assigned.AssignedTo)
	}
	got := f.notifier.sentTo(f.bob.ID)
	if len(got) != 1 || got[0].Type != models.NotifyTaskAssigned {
		t.Fatalf("assignee notifications = %+v, want one task_assigned", got)
	}
}

func TestAssignSameAssigneeIsNoOp(t *testing.T) {
	f := newTaskFixture(t)
	view := f.createTask(t, f.alice.ID, &f.bob.ID)
	f.notifier.sent = nil

	before, _ := f.tasks.FindByID(context.Background(), view.ID)
	if _, err := f.svc.Assign(context.Background(), f.alice.ID, view.ID, f.bob.ID); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	after, _ := f.tasks.FindByID(context.Background(), view.ID)

	if len(f.notifier.sent) != 0 {
		t.Fatalf("reassigning the current assignee produced %d notifications, want 0", len(f.notifier.sent))
	}
	if !after.UpdatedAt.Equal(before.UpdatedAt) {
		t.Error("no-op assign must not touch the row")
	}
}

func TestAssignToSelfStillNotifies(t *testing.T) {
	f := newTaskFixture(t)
	view := f.createTask(t, f.alice.ID, nil)
	f.notifier.sent = nil

	if _, err := f.svc.Assign(context.Background(), f.alice.ID, view.ID, f.alice.ID); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	got := f.notifier.sentTo(f.alice.ID)
	if len(got) != 1 || got[0].Type != models.NotifyTaskAssigned {
		t.Fatalf("self-assign notifications = %+v, want one task_assigned", got)
	}
}

func TestListDefaultsToMine(t *testing.T) {
	f := newTaskFixture(t)

	f.createTask(t, f.alice.ID, nil)          // alice's own
	f.createTask(t, f.bob.ID, &f.alice.ID)    // assigned to alice
	f.createTask(t, f.bob.ID, &f.carol.ID)    // unrelated to alice

	views, pagination, err := f.svc.List(context.Background(), f.alice.ID, models.TaskFilter{}, models.Page{Number: 1, Limit: 20})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("len(views) = %d, want 2 (created or assigned)", len(views))
	}
	if pagination.Total != 2 || pagination.TotalPages != 1 {
		t.Errorf("pagination = %+v", pagination)
	}
}

func TestListExplicitFilterDisablesMine(t *testing.T) {
	f := newTaskFixture(t)

	f.createTask(t, f.alice.ID, nil)
	f.createTask(t, f.bob.ID, &f.carol.ID)

	status := models.StatusOpen
	views, _, err := f.svc.List(context.Background(), f.alice.ID, models.TaskFilter{Status: &status}, models.Page{Number: 1, Limit: 20})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("len(views) = %d, want 2 (filtered lists are not scoped to the caller)", len(views))
	}
}

func TestListPagination(t *testing.T) {
	f := newTaskFixture(t)
	for i := 0; i < 5; i++ {
		f.createTask(t, f.alice.ID, nil)
	}

	views, pagination, err := f.svc.List(context.Background(), f.alice.ID, models.TaskFilter{}, models.Page{Number: 2, Limit: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(views) != 2 {
		t.Errorf("len(views) = %d, want 2", len(views))
	}
	if pagination.Total != 5 || pagination.TotalPages != 3 || pagination.Page != 2 {
		t.Errorf("pagination = %+v", pagination)
	}
}
