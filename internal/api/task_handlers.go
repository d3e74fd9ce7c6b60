package api

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"taskdeck/internal/api/middleware"
	"taskdeck/internal/apperr"
	"taskdeck/internal/model"
	"taskdeck/internal/pkg/metrics"
	"taskdeck/internal/service"
)

type createTaskRequest struct {
	TaskListID  uint    `json:"task_list_id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"due_date"`
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
	Frequency   *string `json:"frequency"`
}

type updateTaskRequest struct {
	TaskListID          service.Optional[uint]   `json:"task_list_id"`
	Title               service.Optional[string] `json:"title"`
	Description         service.Optional[string] `json:"description"`
	DueDate             service.Optional[string] `json:"due_date"`
	StartTime           service.Optional[string] `json:"start_time"`
	EndTime             service.Optional[string] `json:"end_time"`
	Frequency           service.Optional[string] `json:"frequency"`
	Status              service.Optional[string] `json:"status"`
	RemoveAttachmentIDs []uint                   `json:"remove_attachment_ids"`
}

func (s *Server) handleListTasks(c *gin.Context) {
	listID, err := uintQuery(c, "task_list_id")
	if err != nil {
		s.respondError(c, err)
		return
	}
	var status *string
	if raw := c.Query("status"); raw != "" {
		status = &raw
	}
	archived := c.Query("archived") == "true" || c.Query("archived") == "1"

	tasks, err := s.tasks.List(c.Request.Context(), middleware.UserID(c), listID, status, archived)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": tasks})
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var in service.TaskCreateInput
	var uploads []service.Upload
	var closers []io.Closer
	defer func() { closeAll(closers) }()

	if isMultipart(c) {
		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body."})
			return
		}
		listID, err := formUint(form, "task_list_id")
		if err != nil {
			s.respondError(c, err)
			return
		}
		in.TaskListID = listID
		if v := formValue(form, "title"); v != nil {
			in.Title = *v
		}
		in.Description = formValue(form, "description")
		in.DueDate = formValue(form, "due_date")
		in.StartTime = formValue(form, "start_time")
		in.EndTime = formValue(form, "end_time")
		in.Frequency = formValue(form, "frequency")
		uploads, closers, err = openUploads(form)
		if err != nil {
			s.respondError(c, err)
			return
		}
	} else {
		var req createTaskRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body."})
			return
		}
		in = service.TaskCreateInput{
			TaskListID:  req.TaskListID,
			Title:       req.Title,
			Description: req.Description,
			DueDate:     req.DueDate,
			StartTime:   req.StartTime,
			EndTime:     req.EndTime,
			Frequency:   req.Frequency,
		}
	}

	task, err := s.tasks.Create(c.Request.Context(), middleware.UserID(c), in, uploads)
	if err != nil {
		s.respondError(c, err)
		return
	}
	metrics.TasksCreatedTotal.Inc()
	metrics.AttachmentsStoredTotal.Add(float64(len(uploads)))
	c.JSON(http.StatusCreated, task)
}

func (s *Server) handleGetTask(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	task, err := s.tasks.Get(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var in service.TaskUpdateInput
	var uploads []service.Upload
	var closers []io.Closer
	defer func() { closeAll(closers) }()

	if isMultipart(c) {
		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body."})
			return
		}
		in.Title = optFromForm(form, "title")
		in.Description = optFromForm(form, "description")
		in.DueDate = optFromForm(form, "due_date")
		in.StartTime = optFromForm(form, "start_time")
		in.EndTime = optFromForm(form, "end_time")
		in.Frequency = optFromForm(form, "frequency")
		in.Status = optFromForm(form, "status")
		if v := formValue(form, "task_list_id"); v != nil {
			listID, err := formUint(form, "task_list_id")
			if err != nil {
				s.respondError(c, err)
				return
			}
			in.TaskListID = service.Some(listID)
		}
		in.RemoveAttachmentIDs, err = formUintSlice(form, "remove_attachment_ids")
		if err != nil {
			s.respondError(c, err)
			return
		}
		uploads, closers, err = openUploads(form)
		if err != nil {
			s.respondError(c, err)
			return
		}
	} else {
		var req updateTaskRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body."})
			return
		}
		in = service.TaskUpdateInput{
			TaskListID:          req.TaskListID,
			Title:               req.Title,
			Description:         req.Description,
			DueDate:             req.DueDate,
			StartTime:           req.StartTime,
			EndTime:             req.EndTime,
			Frequency:           req.Frequency,
			Status:              req.Status,
			RemoveAttachmentIDs: req.RemoveAttachmentIDs,
		}
	}

	task, err := s.tasks.Update(c.Request.Context(), middleware.UserID(c), id, in, uploads)
	if err != nil {
		s.respondError(c, err)
		return
	}
	metrics.AttachmentsStoredTotal.Add(float64(len(uploads)))
	c.JSON(http.StatusOK, task)
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := s.tasks.Delete(c.Request.Context(), middleware.UserID(c), id); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleRestoreTask(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	task, err := s.tasks.Restore(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) handleCompleteTask(c *gin.Context) {
	s.setTaskStatus(c, model.StatusClosed)
}

func (s *Server) handleReopenTask(c *gin.Context) {
	s.setTaskStatus(c, model.StatusOpen)
}

func (s *Server) setTaskStatus(c *gin.Context, status model.TaskStatus) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	task, err := s.tasks.SetStatus(c.Request.Context(), middleware.UserID(c), id, status)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

type reorderRequest struct {
	TaskIDs []uint `json:"task_ids"`
}

func (s *Server) handleReorderTasks(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body."})
		return
	}
	if err := s.order.Reorder(c.Request.Context(), middleware.UserID(c), req.TaskIDs); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Tasks reordered successfully."})
}

func (s *Server) handleSearchTasks(c *gin.Context) {
	listID, err := uintQuery(c, "task_list_id")
	if err != nil {
		s.respondError(c, err)
		return
	}
	in := service.SearchInput{
		Query:     c.Query("q"),
		ListID:    listID,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
		Page:      intQuery(c, "page", 0),
		PerPage:   intQuery(c, "per_page", 0),
	}
	result, err := s.search.Search(c.Request.Context(), middleware.UserID(c), in)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

func formValue(form *multipart.Form, key string) *string {
	if vals, ok := form.Value[key]; ok && len(vals) > 0 {
		return &vals[0]
	}
	return nil
}

// optFromForm maps form field presence to the tri-state update value. A
// present empty value means "clear".
func optFromForm(form *multipart.Form, key string) service.Optional[string] {
	v := formValue(form, key)
	if v == nil {
		return service.Optional[string]{}
	}
	return service.Some(*v)
}

func formUint(form *multipart.Form, key string) (uint, error) {
	v := formValue(form, key)
	if v == nil {
		return 0, nil
	}
	id, err := strconv.ParseUint(*v, 10, 32)
	if err != nil {
		return 0, apperr.Field(key, "The "+key+" field must be an integer.")
	}
	return uint(id), nil
}

func formUintSlice(form *multipart.Form, key string) ([]uint, error) {
	vals := form.Value[key]
	if alt, ok := form.Value[key+"[]"]; ok {
		vals = append(vals, alt...)
	}
	ids := make([]uint, 0, len(vals))
	for _, v := range vals {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return nil, apperr.Field(key, "The "+key+" field must contain integers.")
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

func openUploads(form *multipart.Form) ([]service.Upload, []io.Closer, error) {
	headers := form.File["images"]
	if alt, ok := form.File["images[]"]; ok {
		headers = append(headers, alt...)
	}
	uploads := make([]service.Upload, 0, len(headers))
	closers := make([]io.Closer, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll(closers)
			return nil, nil, apperr.Wrap(apperr.Storage, "open upload", err)
		}
		closers = append(closers, f)
		uploads = append(uploads, service.Upload{Name: fh.Filename, Reader: f})
	}
	return uploads, closers, nil
}

func closeAll(closers []io.Closer) {
	for _, cl := range closers {
		cl.Close()
	}
}
