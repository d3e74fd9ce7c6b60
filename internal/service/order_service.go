package service

import (
	"context"

	"taskdeck/internal/apperr"
	"taskdeck/internal/repository"
)

// OrderService maintains the manual ordering of tasks. Positions are
// dense ranks (0, 1, 2, ...); tasks never mentioned in a reorder keep
// their prior rank and the default listing breaks rank ties by recency.
type OrderService struct {
	tasks *repository.TaskRepository
}

func NewOrderService(tasks *repository.TaskRepository) *OrderService {
	return &OrderService{tasks: tasks}
}

// Reorder assigns each task its index in ids as the new position. The
// operation is all-or-nothing: one foreign or unknown id rejects the
// whole request and no position changes.
func (s *OrderService) Reorder(ctx context.Context, userID uint, ids []uint) error {
	if len(ids) == 0 {
		return apperr.Field("task_ids", "The task_ids field is required.")
	}
	ids = uniqueIDs(ids)
	return s.tasks.Transaction(ctx, func(tx *repository.TaskRepository) error {
		owned, err := tx.CountOwned(ctx, userID, ids)
		if err != nil {
			return err
		}
		if owned != int64(len(ids)) {
			return apperr.New(apperr.Authorization, "Unauthorized")
		}
		for pos, id := range ids {
			if err := tx.SetPosition(ctx, id, pos); err != nil {
				return err
			}
		}
		return nil
	})
}
