package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"time"

	"gorm.io/gorm"

	"taskdeck/internal/apperr"
	"taskdeck/internal/model"
	"taskdeck/internal/repository"
	"taskdeck/internal/storage"
)

// TaskCreateInput carries the fields accepted when creating a task.
type TaskCreateInput struct {
	TaskListID  uint
	Title       string
	Description *string
	DueDate     *string
	StartTime   *string
	EndTime     *string
	Frequency   *string
}

// TaskUpdateInput carries a partial update. Absent fields stay untouched,
// explicit nulls clear nullable fields.
type TaskUpdateInput struct {
	TaskListID          Optional[uint]
	Title               Optional[string]
	Description         Optional[string]
	DueDate             Optional[string]
	StartTime           Optional[string]
	EndTime             Optional[string]
	Frequency           Optional[string]
	Status              Optional[string]
	RemoveAttachmentIDs []uint
}

// Upload is an incoming attachment binary.
type Upload struct {
	Name   string
	Reader io.Reader
}

// TaskService owns the task lifecycle: creation, partial update, soft
// delete and restore, status flips, and attachment bookkeeping. Every
// mutating path runs inside one transaction so a failure never leaves a
// task half-updated.
type TaskService struct {
	tasks  *repository.TaskRepository
	lists  *repository.ListRepository
	store  storage.Store
	logger *slog.Logger
}

func NewTaskService(tasks *repository.TaskRepository, lists *repository.ListRepository, store storage.Store, logger *slog.Logger) *TaskService {
	return &TaskService{tasks: tasks, lists: lists, store: store, logger: logger}
}

var timeOfDayRe = regexp.MustCompile(`^(?:[01][0-9]|2[0-3]):[0-5][0-9]$`)

func (s *TaskService) Create(ctx context.Context, userID uint, in TaskCreateInput, uploads []Upload) (*model.Task, error) {
	if err := s.ownList(ctx, userID, in.TaskListID); err != nil {
		return nil, err
	}
	if err := validateTitle(in.Title); err != nil {
		return nil, err
	}

	task := &model.Task{
		TaskListID:  in.TaskListID,
		Title:       in.Title,
		Description: normalizeText(in.Description),
		Status:      model.StatusOpen,
		Frequency:   model.FrequencyNone,
	}

	var err error
	if task.DueDate, err = checkDate("due_date", in.DueDate); err != nil {
		return nil, err
	}
	if task.StartTime, err = checkTimeOfDay("start_time", in.StartTime); err != nil {
		return nil, err
	}
	if task.EndTime, err = checkTimeOfDay("end_time", in.EndTime); err != nil {
		return nil, err
	}
	if in.Frequency != nil && *in.Frequency != "" {
		if !model.ValidFrequency(*in.Frequency) {
			return nil, apperr.Field("frequency", "The selected frequency is invalid.")
		}
		task.Frequency = model.Frequency(*in.Frequency)
	}

	var savedRefs []string
	txErr := s.tasks.Transaction(ctx, func(tx *repository.TaskRepository) error {
		if err := tx.Create(ctx, task); err != nil {
			return err
		}
		refs, err := s.storeUploads(ctx, tx, task.ID, uploads)
		savedRefs = refs
		return err
	})
	if txErr != nil {
		s.discardBinaries(ctx, savedRefs)
		return nil, txErr
	}
	return s.reload(ctx, task.ID, false)
}

// List returns the user's tasks. The default view holds active tasks
// only; the archived view holds exactly the soft-deleted ones.
func (s *TaskService) List(ctx context.Context, userID uint, listID *uint, status *string, archived bool) ([]model.Task, error) {
	if listID != nil {
		if err := s.ownList(ctx, userID, *listID); err != nil {
			return nil, err
		}
	}
	filter := repository.TaskFilter{ListID: listID, Archived: archived}
	if status != nil {
		if !model.ValidStatus(*status) {
			return nil, apperr.Field("status", "The selected status is invalid.")
		}
		st := model.TaskStatus(*status)
		filter.Status = &st
	}
	tasks, err := s.tasks.ListByOwner(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		s.decorate(&tasks[i])
	}
	return tasks, nil
}

func (s *TaskService) Get(ctx context.Context, userID, taskID uint) (*model.Task, error) {
	task, err := s.authorize(ctx, userID, taskID, false)
	if err != nil {
		return nil, err
	}
	return s.decorate(task), nil
}

func (s *TaskService) Update(ctx context.Context, userID, taskID uint, in TaskUpdateInput, uploads []Upload) (*model.Task, error) {
	task, err := s.authorize(ctx, userID, taskID, false)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}

	if in.TaskListID.Set {
		if !in.TaskListID.Valid {
			return nil, apperr.Field("task_list_id", "The selected task list is invalid.")
		}
		if err := s.ownList(ctx, userID, in.TaskListID.Value); err != nil {
			return nil, err
		}
		fields["task_list_id"] = in.TaskListID.Value
	}
	if in.Title.Set {
		if !in.Title.Valid {
			return nil, apperr.Field("title", "The title field is required.")
		}
		if err := validateTitle(in.Title.Value); err != nil {
			return nil, err
		}
		fields["title"] = in.Title.Value
	}
	if in.Description.Set {
		if !in.Description.Valid || in.Description.Value == "" {
			fields["description"] = nil
		} else {
			fields["description"] = in.Description.Value
		}
	}
	if err := applyOptionalDate(fields, "due_date", in.DueDate); err != nil {
		return nil, err
	}
	if err := applyOptionalTime(fields, "start_time", in.StartTime); err != nil {
		return nil, err
	}
	if err := applyOptionalTime(fields, "end_time", in.EndTime); err != nil {
		return nil, err
	}
	if in.Frequency.Set {
		if !in.Frequency.Valid || in.Frequency.Value == "" {
			fields["frequency"] = model.FrequencyNone
		} else if !model.ValidFrequency(in.Frequency.Value) {
			return nil, apperr.Field("frequency", "The selected frequency is invalid.")
		} else {
			fields["frequency"] = in.Frequency.Value
		}
	}
	if in.Status.Set {
		if !in.Status.Valid || !model.ValidStatus(in.Status.Value) {
			return nil, apperr.Field("status", "The selected status is invalid.")
		}
		fields["status"] = in.Status.Value
	}

	removed, err := s.checkRemovals(ctx, task.ID, in.RemoveAttachmentIDs)
	if err != nil {
		return nil, err
	}

	var savedRefs []string
	txErr := s.tasks.Transaction(ctx, func(tx *repository.TaskRepository) error {
		if err := tx.UpdateFields(ctx, task, fields); err != nil {
			return err
		}
		if err := tx.DeleteAttachments(ctx, in.RemoveAttachmentIDs); err != nil {
			return err
		}
		refs, err := s.storeUploads(ctx, tx, task.ID, uploads)
		savedRefs = refs
		return err
	})
	if txErr != nil {
		s.discardBinaries(ctx, savedRefs)
		return nil, txErr
	}

	// Rows are gone; the binaries go best effort. A leftover binary is
	// an orphan the sweep can reap, a missing one with live metadata
	// would be a broken link.
	for _, att := range removed {
		if err := s.store.Delete(ctx, att.FilePath); err != nil {
			s.logger.Warn("removed attachment binary left behind",
				slog.String("ref", att.FilePath), slog.String("error", err.Error()))
		}
	}

	return s.reload(ctx, task.ID, false)
}

// Delete soft-deletes the task. Attachments and their binaries stay so a
// restore brings the task back whole.
func (s *TaskService) Delete(ctx context.Context, userID, taskID uint) error {
	task, err := s.authorize(ctx, userID, taskID, false)
	if err != nil {
		return err
	}
	return s.tasks.SoftDelete(ctx, task.ID)
}

func (s *TaskService) Restore(ctx context.Context, userID, taskID uint) (*model.Task, error) {
	task, err := s.authorize(ctx, userID, taskID, true)
	if err != nil {
		return nil, err
	}
	if err := s.tasks.Restore(ctx, task.ID); err != nil {
		return nil, err
	}
	return s.reload(ctx, task.ID, false)
}

// SetStatus flips a task between open and closed. Setting the current
// status again succeeds without complaint.
func (s *TaskService) SetStatus(ctx context.Context, userID, taskID uint, status model.TaskStatus) (*model.Task, error) {
	task, err := s.authorize(ctx, userID, taskID, false)
	if err != nil {
		return nil, err
	}
	if err := s.tasks.UpdateFields(ctx, task, map[string]any{"status": status}); err != nil {
		return nil, err
	}
	return s.reload(ctx, task.ID, false)
}

// PurgeDeletedBefore permanently removes tasks soft-deleted before
// cutoff, along with their attachment rows and stored binaries. This is
// the only path that ever hard-deletes a task.
func (s *TaskService) PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int, error) {
	expired, err := s.tasks.ListDeletedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("list expired tasks: %w", err)
	}
	purged := 0
	for _, task := range expired {
		for _, att := range task.Attachments {
			if err := s.store.Delete(ctx, att.FilePath); err != nil {
				s.logger.Warn("purge attachment binary failed",
					slog.String("ref", att.FilePath), slog.String("error", err.Error()))
			}
		}
		if err := s.tasks.HardDelete(ctx, task.ID); err != nil {
			s.logger.Error("purge task failed",
				slog.Uint64("task_id", uint64(task.ID)), slog.String("error", err.Error()))
			continue
		}
		purged++
	}
	return purged, nil
}

// authorize resolves a task and enforces the ownership chain. Task
// existence is not hidden across tenants: a foreign task yields an
// Authorization failure, not NotFound. Ownership resolves through the
// list row even when that list is soft-deleted.
func (s *TaskService) authorize(ctx context.Context, userID, taskID uint, withDeleted bool) (*model.Task, error) {
	task, err := s.tasks.FindByID(ctx, taskID, withDeleted)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.NotFound, "Task not found.")
	}
	if err != nil {
		return nil, fmt.Errorf("find task: %w", err)
	}
	if task.List.UserID != userID {
		return nil, apperr.New(apperr.Authorization, "Unauthorized")
	}
	return task, nil
}

// ownList validates a list reference in input: the list must exist,
// be active, and belong to the user, otherwise the reference itself is
// invalid input.
func (s *TaskService) ownList(ctx context.Context, userID, listID uint) error {
	list, err := s.lists.FindByID(ctx, listID, false)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Field("task_list_id", "The selected task list does not belong to you.")
	}
	if err != nil {
		return fmt.Errorf("find list: %w", err)
	}
	if list.UserID != userID {
		return apperr.Field("task_list_id", "The selected task list does not belong to you.")
	}
	return nil
}

func (s *TaskService) checkRemovals(ctx context.Context, taskID uint, ids []uint) ([]model.TaskAttachment, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	atts, err := s.tasks.AttachmentsByIDs(ctx, taskID, ids)
	if err != nil {
		return nil, err
	}
	if len(atts) != len(uniqueIDs(ids)) {
		return nil, apperr.Field("remove_attachment_ids", "One or more attachments do not belong to this task.")
	}
	return atts, nil
}

func (s *TaskService) storeUploads(ctx context.Context, tx *repository.TaskRepository, taskID uint, uploads []Upload) ([]string, error) {
	var refs []string
	for _, up := range uploads {
		ref, err := s.store.Save(ctx, up.Reader, up.Name)
		if err != nil {
			return refs, err
		}
		refs = append(refs, ref)
		att := &model.TaskAttachment{TaskID: taskID, FilePath: ref, FileName: up.Name}
		if err := tx.AddAttachment(ctx, att); err != nil {
			return refs, err
		}
	}
	return refs, nil
}

func (s *TaskService) discardBinaries(ctx context.Context, refs []string) {
	for _, ref := range refs {
		if err := s.store.Delete(ctx, ref); err != nil {
			s.logger.Warn("orphaned attachment binary left behind",
				slog.String("ref", ref), slog.String("error", err.Error()))
		}
	}
}

func (s *TaskService) reload(ctx context.Context, taskID uint, withDeleted bool) (*model.Task, error) {
	task, err := s.tasks.FindByID(ctx, taskID, withDeleted)
	if err != nil {
		return nil, fmt.Errorf("reload task: %w", err)
	}
	return s.decorate(task), nil
}

func (s *TaskService) decorate(task *model.Task) *model.Task {
	for i := range task.Attachments {
		task.Attachments[i].URL = s.store.URL(task.Attachments[i].FilePath)
	}
	return task
}

func validateTitle(title string) error {
	if title == "" {
		return apperr.Field("title", "The title field is required.")
	}
	if len(title) > 255 {
		return apperr.Field("title", "The title field must not be greater than 255 characters.")
	}
	return nil
}

// normalizeText maps empty strings to null, the single rule used for
// every optional text-ish field.
func normalizeText(v *string) *string {
	if v == nil || *v == "" {
		return nil
	}
	return v
}

func checkDate(field string, v *string) (*string, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	if _, err := time.Parse("2006-01-02", *v); err != nil {
		return nil, apperr.Field(field, "The "+field+" field must be a valid date.")
	}
	return v, nil
}

func checkTimeOfDay(field string, v *string) (*string, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	if !timeOfDayRe.MatchString(*v) {
		return nil, apperr.Field(field, "The "+field+" field must match the format H:i.")
	}
	return v, nil
}

func applyOptionalDate(fields map[string]any, name string, opt Optional[string]) error {
	if !opt.Set {
		return nil
	}
	if !opt.Valid || opt.Value == "" {
		fields[name] = nil
		return nil
	}
	v, err := checkDate(name, &opt.Value)
	if err != nil {
		return err
	}
	fields[name] = *v
	return nil
}

func applyOptionalTime(fields map[string]any, name string, opt Optional[string]) error {
	if !opt.Set {
		return nil
	}
	if !opt.Valid || opt.Value == "" {
		fields[name] = nil
		return nil
	}
	v, err := checkTimeOfDay(name, &opt.Value)
	if err != nil {
		return err
	}
	fields[name] = *v
	return nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
