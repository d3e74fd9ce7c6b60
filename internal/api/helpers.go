package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"taskdeck/internal/apperr"
)

// respondError translates the service error taxonomy into the HTTP
// response shapes clients depend on.
func (s *Server) respondError(c *gin.Context, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		s.logger.Error("request failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error."})
		return
	}

	switch ae.Kind {
	case apperr.Validation:
		errs := gin.H{}
		if ae.Field != "" {
			errs[ae.Field] = []string{ae.Msg}
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": ae.Msg, "errors": errs})
	case apperr.Authorization:
		c.JSON(http.StatusForbidden, gin.H{"message": "Unauthorized"})
	case apperr.NotFound:
		c.JSON(http.StatusNotFound, gin.H{"message": ae.Msg})
	case apperr.Unauthenticated:
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated."})
	case apperr.Storage:
		s.logger.Error("attachment store failure", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Attachment storage failed."})
	default:
		s.logger.Error("request failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error."})
	}
}

// idParam parses the :id path segment.
func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found."})
		return 0, false
	}
	return uint(id), true
}

// uintQuery parses an optional unsigned integer query parameter.
func uintQuery(c *gin.Context, name string) (*uint, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, apperr.Field(name, "The "+name+" field must be an integer.")
	}
	u := uint(v)
	return &u, nil
}

// intQuery parses an optional integer query parameter, falling back to
// def when absent or malformed.
func intQuery(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
