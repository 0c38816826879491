package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/intunedeck/intunedeck/internal/api/dto"
	ierr "github.com/intunedeck/intunedeck/internal/errors"
	"github.com/intunedeck/intunedeck/internal/logger"
	"github.com/intunedeck/intunedeck/internal/service"
	"github.com/intunedeck/intunedeck/internal/types"
)

type AssignmentHandler struct {
	service service.AssignmentService
	log     *logger.Logger
}

func NewAssignmentHandler(service service.AssignmentService, log *logger.Logger) *AssignmentHandler {
	return &AssignmentHandler{service: service, log: log}
}

// @Summary Perform a bulk assignment
// @Description Assign the selected applications to the selected groups
// @Tags Assignments
// @Accept json
// @Produce json
// @Param operation body dto.BulkAssignmentRequest true "Bulk assignment"
// @Success 200 {object} dto.BulkAssignmentResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 409 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /assignments/bulk [post]
func (h *AssignmentHandler) PerformBulkAssignment(c *gin.Context) {
	var req dto.BulkAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Please check the request payload").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.PerformBulkAssignment(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Retry failed assignments
// @Description Replay the failed tasks of the previous bulk operation
// @Tags Assignments
// @Accept json
// @Produce json
// @Param retry body dto.RetryAssignmentsRequest true "Retry options"
// @Success 200 {object} dto.BulkAssignmentResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 409 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /assignments/retry [post]
func (h *AssignmentHandler) RetryFailedAssignments(c *gin.Context) {
	var req dto.RetryAssignmentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Please check the request payload").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.RetryFailedAssignments(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Cancel the active bulk operation
// @Description Raise the cooperative cancellation signal; a no-op when idle
// @Tags Assignments
// @Produce json
// @Success 202 {object} map[string]string
// @Failure 500 {object} ierr.ErrorResponse
// @Router /assignments/cancel [post]
func (h *AssignmentHandler) CancelActiveAssignments(c *gin.Context) {
	if err := h.service.CancelActiveAssignments(c.Request.Context()); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "cancellation requested"})
}

// @Summary Get bulk operation progress
// @Description Snapshot of the in-flight or most recent bulk operation
// @Tags Assignments
// @Produce json
// @Success 200 {object} dto.ProgressResponse
// @Router /assignments/progress [get]
func (h *AssignmentHandler) GetProgress(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.GetProgress(c.Request.Context()))
}

// @Summary Get assignment history
// @Description Retained per-assignment outcomes of past operations, newest first
// @Tags Assignments
// @Produce json
// @Param filter query types.QueryFilter false "Filter"
// @Success 200 {object} dto.ListAssignmentsResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /assignments/history [get]
func (h *AssignmentHandler) GetAssignmentHistory(c *gin.Context) {
	var filter types.QueryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Please check the query parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GetAssignmentHistory(c.Request.Context(), &filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
