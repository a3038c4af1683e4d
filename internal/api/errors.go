package api

import (
	"errors"
	"net/http"

	"bassinifit/coach-app/internal/logger"
	"bassinifit/coach-app/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var (
	notFoundErrors = []error{
		service.ErrStudentNotFound, service.ErrPlanNotFound, service.ErrEntryNotFound,
		service.ErrExerciseNotFound, service.ErrMuscleGroupNotFound, service.ErrPhotoNotFound,
		service.ErrUserNotFound,
	}
	conflictErrors = []error{
		service.ErrUserAlreadyExists, service.ErrMuscleGroupExists, service.ErrExerciseExists,
		service.ErrPlanNameTaken,
	}
	forbiddenErrors = []error{
		service.ErrPlanAccessDenied, service.ErrEntryAccessDenied, service.ErrPhotoAccessDenied,
	}
	unauthorizedErrors = []error{
		service.ErrAuthenticationFailed, service.ErrInvalidToken,
	}
)

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// respondError maps a service error to a status code. Unexpected errors are logged and answered
// with "Failed to <action>." so the client learns which action failed and nothing else.
func respondError(c *gin.Context, err error, action string) {
	var verr *service.ValidationError
	var rerr *service.ReorderError
	switch {
	case errors.As(err, &verr):
		body := gin.H{"error": verr.Message}
		if len(verr.Fields) > 0 {
			body["fields"] = verr.Fields
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, body)
	case errors.Is(err, service.ErrInvalidContentType):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case isAny(err, notFoundErrors):
		abortWithError(c, http.StatusNotFound, err.Error())
	case isAny(err, conflictErrors):
		abortWithError(c, http.StatusConflict, err.Error())
	case isAny(err, forbiddenErrors):
		abortWithError(c, http.StatusForbidden, err.Error())
	case isAny(err, unauthorizedErrors):
		abortWithError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrStorageDisabled):
		abortWithError(c, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &rerr):
		logger.WithFields(logrus.Fields{"action": action, "applied": rerr.Applied, "total": rerr.Total}).
			WithError(rerr.Err).Error("Partial reorder")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to " + action + ".",
			"applied": rerr.Applied,
			"total":   rerr.Total,
		})
	default:
		logger.WithFields(logrus.Fields{"action": action, "path": c.FullPath()}).WithError(err).Error("Request failed")
		abortWithError(c, http.StatusInternalServerError, "Failed to "+action+".")
	}
}

// bindJSON binds the request body and answers 400 on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return false
	}
	return true
}
