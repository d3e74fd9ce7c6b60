package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"taskdeck/internal/apperr"
	"taskdeck/internal/model"
	"taskdeck/internal/repository"
)

// ListService owns the task-list lifecycle: create, rename, soft delete.
// Every operation is scoped to the acting user.
type ListService struct {
	lists *repository.ListRepository
}

func NewListService(lists *repository.ListRepository) *ListService {
	return &ListService{lists: lists}
}

func (s *ListService) List(ctx context.Context, userID uint) ([]model.TaskList, error) {
	return s.lists.ListByUser(ctx, userID)
}

func (s *ListService) Create(ctx context.Context, userID uint, name string) (*model.TaskList, error) {
	if err := validateListName(name); err != nil {
		return nil, err
	}
	list := &model.TaskList{UserID: userID, Name: name}
	if err := s.lists.Create(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *ListService) Rename(ctx context.Context, userID, listID uint, name string) (*model.TaskList, error) {
	list, err := s.authorize(ctx, userID, listID)
	if err != nil {
		return nil, err
	}
	if err := validateListName(name); err != nil {
		return nil, err
	}
	if err := s.lists.UpdateName(ctx, list, name); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *ListService) Delete(ctx context.Context, userID, listID uint) error {
	list, err := s.authorize(ctx, userID, listID)
	if err != nil {
		return err
	}
	return s.lists.SoftDelete(ctx, list.ID)
}

// authorize resolves a list and enforces the ownership predicate. A
// missing list is NotFound; an existing list of another user is an
// Authorization failure, deliberately distinct.
func (s *ListService) authorize(ctx context.Context, userID, listID uint) (*model.TaskList, error) {
	list, err := s.lists.FindByID(ctx, listID, false)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.NotFound, "Task list not found.")
	}
	if err != nil {
		return nil, fmt.Errorf("find list: %w", err)
	}
	if list.UserID != userID {
		return nil, apperr.New(apperr.Authorization, "Unauthorized")
	}
	return list, nil
}

func validateListName(name string) error {
	if name == "" {
		return apperr.Field("name", "The name field is required.")
	}
	if len(name) > 255 {
		return apperr.Field("name", "The name field must not be greater than 255 characters.")
	}
	return nil
}
