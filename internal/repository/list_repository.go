package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"taskdeck/internal/model"
)

// ListRepository manages task lists and their soft-delete lifecycle.
type ListRepository struct {
	db *gorm.DB
}

func NewListRepository(db *gorm.DB) *ListRepository {
	return &ListRepository{db: db}
}

func (r *ListRepository) Create(ctx context.Context, list *model.TaskList) error {
	if err := r.db.WithContext(ctx).Create(list).Error; err != nil {
		return fmt.Errorf("create list: %w", err)
	}
	return nil
}

// ListByUser returns the active lists of a user, most recent first.
func (r *ListRepository) ListByUser(ctx context.Context, userID uint) ([]model.TaskList, error) {
	var lists []model.TaskList
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&lists).Error; err != nil {
		return nil, err
	}
	return lists, nil
}

// FindByID looks up one list. Soft-deleted rows are included only when
// withDeleted is set; ownership stays resolvable through deleted lists.
func (r *ListRepository) FindByID(ctx context.Context, id uint, withDeleted bool) (*model.TaskList, error) {
	q := r.db.WithContext(ctx)
	if withDeleted {
		q = q.Unscoped()
	}
	var list model.TaskList
	if err := q.First(&list, id).Error; err != nil {
		return nil, err
	}
	return &list, nil
}

func (r *ListRepository) UpdateName(ctx context.Context, list *model.TaskList, name string) error {
	if err := r.db.WithContext(ctx).Model(list).Update("name", name).Error; err != nil {
		return fmt.Errorf("rename list: %w", err)
	}
	return nil
}

// SoftDelete marks the list deleted. Tasks are left untouched; they drop
// out of collection views because those only join active lists.
func (r *ListRepository) SoftDelete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&model.TaskList{}, id).Error; err != nil {
		return fmt.Errorf("delete list: %w", err)
	}
	return nil
}
