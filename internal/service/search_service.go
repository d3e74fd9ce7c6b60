package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"taskdeck/internal/apperr"
	"taskdeck/internal/model"
	"taskdeck/internal/repository"
	"taskdeck/internal/storage"
)

const (
	defaultPerPage = 15
	maxPerPage     = 100
)

// searchSortColumns is the fixed set of sortable fields.
var searchSortColumns = map[string]bool{
	"title":      true,
	"due_date":   true,
	"created_at": true,
	"updated_at": true,
	"position":   true,
}

// SearchInput is one search request as it arrives from the caller.
type SearchInput struct {
	Query     string
	ListID    *uint
	SortBy    string
	SortOrder string
	Page      int
	PerPage   int
}

// SearchResult is one page of matches plus the total match count, so
// callers can compute total pages themselves.
type SearchResult struct {
	Data    []model.Task `json:"data"`
	Total   int64        `json:"total"`
	Page    int          `json:"page"`
	PerPage int          `json:"per_page"`
}

// SearchService builds filtered, sorted, paginated views over a user's
// tasks. Matching is a case-insensitive substring test against title or
// description.
type SearchService struct {
	tasks *repository.TaskRepository
	lists *repository.ListRepository
	store storage.Store
}

func NewSearchService(tasks *repository.TaskRepository, lists *repository.ListRepository, store storage.Store) *SearchService {
	return &SearchService{tasks: tasks, lists: lists, store: store}
}

func (s *SearchService) Search(ctx context.Context, userID uint, in SearchInput) (*SearchResult, error) {
	query := strings.TrimSpace(in.Query)
	if query == "" {
		return nil, apperr.Field("q", "The q field is required.")
	}

	if in.ListID != nil {
		list, err := s.lists.FindByID(ctx, *in.ListID, false)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Field("task_list_id", "The selected task list does not belong to you.")
		}
		if err != nil {
			return nil, fmt.Errorf("find list: %w", err)
		}
		if list.UserID != userID {
			return nil, apperr.Field("task_list_id", "The selected task list does not belong to you.")
		}
	}

	sq := repository.SearchQuery{
		Needle: query,
		ListID: in.ListID,
	}

	switch {
	case in.SortBy == "":
		// Relevance-agnostic default: newest first.
		sq.SortBy, sq.SortDir = "created_at", "DESC"
	case searchSortColumns[in.SortBy]:
		sq.SortBy, sq.SortDir = in.SortBy, "ASC"
	default:
		return nil, apperr.Field("sort_by", "The selected sort_by is invalid.")
	}
	switch strings.ToLower(in.SortOrder) {
	case "":
	case "asc":
		sq.SortDir = "ASC"
	case "desc":
		sq.SortDir = "DESC"
	default:
		return nil, apperr.Field("sort_order", "The selected sort_order is invalid.")
	}

	sq.Page = in.Page
	if sq.Page < 1 {
		sq.Page = 1
	}
	sq.PerPage = in.PerPage
	if sq.PerPage <= 0 {
		sq.PerPage = defaultPerPage
	}
	if sq.PerPage > maxPerPage {
		sq.PerPage = maxPerPage
	}

	tasks, total, err := s.tasks.Search(ctx, userID, sq)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	for i := range tasks {
		for j := range tasks[i].Attachments {
			tasks[i].Attachments[j].URL = s.store.URL(tasks[i].Attachments[j].FilePath)
		}
	}
	return &SearchResult{Data: tasks, Total: total, Page: sq.Page, PerPage: sq.PerPage}, nil
}
