package submissions

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"compass/internal/logger"
	"compass/pkg/errors"
)

type Handler struct {
	Service Service
	Logger  logger.Logger
}

func NewHandler(service Service, log logger.Logger) *Handler {
	return &Handler{
		Service: service,
		Logger:  log,
	}
}

func (h *Handler) HandleError(c *gin.Context, err error) {
	h.Logger.ErrorwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)

	c.JSON(errors.ToHTTPStatus(err), errors.ToErrorResponse(err))
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		subs := v1.Group("/submissions")
		{
			subs.GET("", h.ListSubmissions)
			subs.POST("", h.Submit)
			subs.GET("/stats", h.GetStats)
			subs.GET("/:id", h.GetSubmission)
			subs.DELETE("/:id", h.DeleteSubmission)
			subs.POST("/:id/review", h.StartReview)
			subs.POST("/:id/approve", h.Approve)
			subs.POST("/:id/reject", h.Reject)
		}
	}
}

// Submit godoc
// @Summary      Propose a compliance obligation
// @Description  Creates a submission in pending status for admin review
// @Tags         submissions
// @Accept       json
// @Produce      json
// @Param        submission  body       CreateSubmissionRequest  true  "Submission data"
// @Success      201   {object}   Submission
// @Failure      400   {object}  errors.ErrorResponse
// @Failure      500   {object}  errors.ErrorResponse
// @Router       /submissions [post]
func (h *Handler) Submit(c *gin.Context) {
	var req CreateSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	sub, err := h.Service.Submit(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sub)
}

// ListSubmissions godoc
// @Summary      List submissions
// @Tags         submissions
// @Produce      json
// @Param        status  query     string  false  "Status filter"
// @Success      200  {array}    Submission
// @Failure      400  {object}  errors.ErrorResponse
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /submissions [get]
func (h *Handler) ListSubmissions(c *gin.Context) {
	subs, err := h.Service.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if subs == nil {
		subs = []Submission{}
	}
	c.JSON(http.StatusOK, subs)
}

// GetSubmission godoc
// @Summary      Get a submission by ID
// @Tags         submissions
// @Produce      json
// @Param        id   path      int  true  "Submission ID"
// @Success      200  {object}   Submission
// @Failure      404  {object}  errors.ErrorResponse
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /submissions/{id} [get]
func (h *Handler) GetSubmission(c *gin.Context) {
	id, ok := h.submissionID(c)
	if !ok {
		return
	}

	sub, err := h.Service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, sub)
}

// StartReview godoc
// @Summary      Move a pending submission to under_review
// @Tags         submissions
// @Produce      json
// @Param        id   path      int  true  "Submission ID"
// @Success      200  {object}   Submission
// @Failure      404  {object}  errors.ErrorResponse
// @Failure      409  {object}  errors.ErrorResponse
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /submissions/{id}/review [post]
func (h *Handler) StartReview(c *gin.Context) {
	id, ok := h.submissionID(c)
	if !ok {
		return
	}

	sub, err := h.Service.StartReview(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, sub)
}

// Approve godoc
// @Summary      Approve a submission and promote it into the rule store
// @Description  The promotion and the status change are one transaction; on failure the submission keeps its prior status
// @Tags         submissions
// @Accept       json
// @Produce      json
// @Param        id      path      int            true   "Submission ID"
// @Param        review  body       ReviewRequest  false  "Review notes"
// @Success      200  {object}   Submission
// @Failure      404  {object}  errors.ErrorResponse
// @Failure      409  {object}  errors.ErrorResponse
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /submissions/{id}/approve [post]
func (h *Handler) Approve(c *gin.Context) {
	id, ok := h.submissionID(c)
	if !ok {
		return
	}

	var req ReviewRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
			return
		}
	}

	sub, err := h.Service.Approve(c.Request.Context(), id, req.Notes)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, sub)
}

// Reject godoc
// @Summary      Reject a submission
// @Description  Rejection never writes to the rule store
// @Tags         submissions
// @Accept       json
// @Produce      json
// @Param        id      path      int            true   "Submission ID"
// @Param        review  body       ReviewRequest  false  "Review notes"
// @Success      200  {object}   Submission
// @Failure      404  {object}  errors.ErrorResponse
// @Failure      409  {object}  errors.ErrorResponse
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /submissions/{id}/reject [post]
func (h *Handler) Reject(c *gin.Context) {
	id, ok := h.submissionID(c)
	if !ok {
		return
	}

	var req ReviewRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
			return
		}
	}

	sub, err := h.Service.Reject(c.Request.Context(), id, req.Notes)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, sub)
}

// DeleteSubmission godoc
// @Summary      Delete a submission
// @Tags         submissions
// @Produce      json
// @Param        id   path      int  true  "Submission ID"
// @Success      204  "No Content"
// @Failure      404  {object}  errors.ErrorResponse
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /submissions/{id} [delete]
func (h *Handler) DeleteSubmission(c *gin.Context) {
	id, ok := h.submissionID(c)
	if !ok {
		return
	}

	if err := h.Service.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetStats godoc
// @Summary      Aggregate submission counts by status
// @Tags         submissions
// @Produce      json
// @Success      200  {object}   Stats
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /submissions/stats [get]
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.Service.GetStats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) submissionID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(
			errors.ErrValidation.WithDetail("message", "submission id must be numeric")))
		return 0, false
	}
	return id, true
}
