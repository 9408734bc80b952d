package appointment

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/appointy/booking-api/internal/handler"
	"github.com/appointy/booking-api/internal/middleware"
	"github.com/appointy/booking-api/internal/model"
	"github.com/appointy/booking-api/internal/service/scheduling"
	apperrors "github.com/appointy/booking-api/pkg/errors"
	"github.com/appointy/booking-api/pkg/metrics"
)

type Handler struct {
	service *scheduling.Service
	metrics *metrics.Metrics
}

func NewHandler(service *scheduling.Service, m *metrics.Metrics) *Handler {
	return &Handler{service: service, metrics: m}
}

// AllocateAuto books the next free slot on the provider's ledger for the
// authenticated caller.
func (h *Handler) AllocateAuto(c *gin.Context) {
	policyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid schedule policy ID"))
		return
	}

	recipient := c.GetString(middleware.ContextEmail)
	policy, appointment, err := h.service.AllocateAuto(c.Request.Context(), policyID, recipient)
	if err != nil {
		h.countAllocationError("auto", err)
		c.Error(err)
		return
	}

	h.metrics.SlotsAllocated.WithLabelValues("auto").Inc()
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(gin.H{
		"appointment": appointment,
		"policy":      policy,
	}))
}

func (h *Handler) AllocateStatic(c *gin.Context) {
	policyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid schedule policy ID"))
		return
	}

	var req model.CreateStaticAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid date format"))
		return
	}

	recipient := c.GetString(middleware.ContextEmail)
	appointment, err := h.service.AllocateStatic(c.Request.Context(), policyID, recipient, date, req.Note)
	if err != nil {
		h.countAllocationError("static", err)
		c.Error(err)
		return
	}

	h.metrics.SlotsAllocated.WithLabelValues("static").Inc()
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(appointment))
}

func (h *Handler) ChangeStatus(c *gin.Context) {
	var req model.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	appointment, err := h.service.ChangeStatus(c.Request.Context(), req.ID, req.Status)
	if err != nil {
		c.Error(err)
		return
	}

	h.metrics.StatusChanges.WithLabelValues(string(req.Status)).Inc()
	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointment))
}

func (h *Handler) ListAppointments(c *gin.Context) {
	identity := c.GetString(middleware.ContextEmail)
	role := model.UserRole(c.GetString(middleware.ContextRole))

	appointments, err := h.service.ListAppointmentsFor(c.Request.Context(), identity, role)
	if err != nil {
		c.Error(err)
		return
	}
	if len(appointments) == 0 {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("no appointments were found"))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

// RunDayReset lets an external trigger source fire the sweep over HTTP.
func (h *Handler) RunDayReset(c *gin.Context) {
	if err := h.service.RunDayBoundaryReset(c.Request.Context()); err != nil {
		c.Error(apperrors.Internal(err))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"message": "day-boundary reset complete"}))
}

func (h *Handler) countAllocationError(mode string, err error) {
	reason := "internal"
	switch {
	case apperrors.IsCode(err, apperrors.ErrNotFound):
		reason = "not_found"
	case apperrors.IsCode(err, apperrors.ErrValidation):
		reason = "validation"
	case apperrors.IsCode(err, apperrors.ErrConflict):
		reason = "conflict"
	}
	h.metrics.AllocationErrors.WithLabelValues(mode, reason).Inc()
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.POST("/auto/:id", h.AllocateAuto)
		appointments.POST("/static/:id", h.AllocateStatic)
		appointments.GET("", h.ListAppointments)
		appointments.PATCH("/status", h.ChangeStatus)
	}
	r.POST("/admin/day-reset", h.RunDayReset)
}
