package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"taskdeck/internal/model"
)

// ownedLists is the ownership chain (task -> list -> user) expressed as a
// join condition. Collection queries only ever see tasks whose list is
// active and owned by the acting user.
const ownedLists = "JOIN task_lists ON task_lists.id = tasks.task_list_id AND task_lists.deleted_at IS NULL"

// TaskFilter narrows the default task listing.
type TaskFilter struct {
	ListID   *uint
	Status   *model.TaskStatus
	Archived bool
}

// SearchQuery describes one search request. SortBy and SortOrder must be
// validated against a whitelist before they reach the repository.
type SearchQuery struct {
	Needle  string
	ListID  *uint
	SortBy  string
	SortDir string
	Page    int
	PerPage int
}

// TaskRepository handles persistence for tasks and their attachments.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Transaction runs fn against a repository bound to one transaction.
// Any error rolls back every row change fn made.
func (r *TaskRepository) Transaction(ctx context.Context, fn func(tx *TaskRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&TaskRepository{db: tx})
	})
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// FindByID loads one task with attachments and its list. The list is
// loaded even when soft-deleted so ownership stays checkable; the task
// itself is only found when withDeleted includes archived rows.
func (r *TaskRepository) FindByID(ctx context.Context, id uint, withDeleted bool) (*model.Task, error) {
	q := r.db.WithContext(ctx).
		Preload("Attachments").
		Preload("List", func(db *gorm.DB) *gorm.DB { return db.Unscoped() })
	if withDeleted {
		q = q.Unscoped()
	}
	var task model.Task
	if err := q.First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// ListByOwner returns the user's tasks in default order: manual position
// ascending, then newest first within equal positions.
func (r *TaskRepository) ListByOwner(ctx context.Context, userID uint, f TaskFilter) ([]model.Task, error) {
	q := r.db.WithContext(ctx).Model(&model.Task{}).
		Select("tasks.*").
		Joins(ownedLists).
		Where("task_lists.user_id = ?", userID)
	if f.Archived {
		q = q.Unscoped().Where("tasks.deleted_at IS NOT NULL")
	}
	if f.ListID != nil {
		q = q.Where("tasks.task_list_id = ?", *f.ListID)
	}
	if f.Status != nil {
		q = q.Where("tasks.status = ?", *f.Status)
	}

	var tasks []model.Task
	if err := q.Preload("Attachments").
		Order("tasks.position ASC, tasks.id DESC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Search runs a case-insensitive substring match over title and
// description, returning one page plus the total match count.
func (r *TaskRepository) Search(ctx context.Context, userID uint, sq SearchQuery) ([]model.Task, int64, error) {
	needle := "%" + strings.ToLower(sq.Needle) + "%"
	base := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&model.Task{}).
			Select("tasks.*").
			Joins(ownedLists).
			Where("task_lists.user_id = ?", userID).
			Where("(LOWER(tasks.title) LIKE ? OR LOWER(COALESCE(tasks.description, '')) LIKE ?)", needle, needle)
		if sq.ListID != nil {
			q = q.Where("tasks.task_list_id = ?", *sq.ListID)
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count matches: %w", err)
	}

	var tasks []model.Task
	if err := base().Preload("Attachments").
		Order(fmt.Sprintf("tasks.%s %s, tasks.id DESC", sq.SortBy, sq.SortDir)).
		Limit(sq.PerPage).
		Offset((sq.Page - 1) * sq.PerPage).
		Find(&tasks).Error; err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

// UpdateFields applies a partial update. Nil map values clear columns.
func (r *TaskRepository) UpdateFields(ctx context.Context, task *model.Task, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Model(task).Updates(fields).Error; err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

func (r *TaskRepository) SoftDelete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&model.Task{}, id).Error; err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

func (r *TaskRepository) Restore(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Unscoped().Model(&model.Task{}).
		Where("id = ?", id).
		Update("deleted_at", nil).Error; err != nil {
		return fmt.Errorf("restore task: %w", err)
	}
	return nil
}

// CountOwned counts how many of the given ids are tasks of the user.
// The reorder protocol uses this to reject foreign ids up front.
func (r *TaskRepository) CountOwned(ctx context.Context, userID uint, ids []uint) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Joins(ownedLists).
		Where("task_lists.user_id = ? AND tasks.id IN ?", userID, ids).
		Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count owned tasks: %w", err)
	}
	return n, nil
}

func (r *TaskRepository) SetPosition(ctx context.Context, id uint, pos int) error {
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ?", id).
		Update("position", pos).Error; err != nil {
		return fmt.Errorf("set position: %w", err)
	}
	return nil
}

func (r *TaskRepository) AddAttachment(ctx context.Context, att *model.TaskAttachment) error {
	if err := r.db.WithContext(ctx).Create(att).Error; err != nil {
		return fmt.Errorf("create attachment: %w", err)
	}
	return nil
}

// AttachmentsByIDs returns the attachments among ids that belong to the
// task. The caller compares lengths to detect foreign ids.
func (r *TaskRepository) AttachmentsByIDs(ctx context.Context, taskID uint, ids []uint) ([]model.TaskAttachment, error) {
	var atts []model.TaskAttachment
	if err := r.db.WithContext(ctx).
		Where("task_id = ? AND id IN ?", taskID, ids).
		Find(&atts).Error; err != nil {
		return nil, err
	}
	return atts, nil
}

func (r *TaskRepository) DeleteAttachments(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Delete(&model.TaskAttachment{}, ids).Error; err != nil {
		return fmt.Errorf("delete attachments: %w", err)
	}
	return nil
}

// ListDeletedBefore returns soft-deleted tasks whose delete marker is
// older than cutoff, attachments included. Used by the retention sweep.
func (r *TaskRepository) ListDeletedBefore(ctx context.Context, cutoff time.Time) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Unscoped().
		Preload("Attachments").
		Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// HardDelete permanently removes a task and its attachment rows.
func (r *TaskRepository) HardDelete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&model.TaskAttachment{}).Error; err != nil {
			return fmt.Errorf("purge attachments: %w", err)
		}
		if err := tx.Unscoped().Delete(&model.Task{}, id).Error; err != nil {
			return fmt.Errorf("purge task: %w", err)
		}
		return nil
	})
}
