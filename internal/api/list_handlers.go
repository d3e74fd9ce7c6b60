package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskdeck/internal/api/middleware"
)

type listRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleListTaskLists(c *gin.Context) {
	lists, err := s.lists.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": lists})
}

func (s *Server) handleCreateTaskList(c *gin.Context) {
	var req listRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body."})
		return
	}
	list, err := s.lists.Create(c.Request.Context(), middleware.UserID(c), req.Name)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, list)
}

func (s *Server) handleUpdateTaskList(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req listRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body."})
		return
	}
	list, err := s.lists.Rename(c.Request.Context(), middleware.UserID(c), id, req.Name)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) handleDeleteTaskList(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := s.lists.Delete(c.Request.Context(), middleware.UserID(c), id); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
