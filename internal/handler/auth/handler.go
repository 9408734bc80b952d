package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/appointy/booking-api/internal/handler"
	"github.com/appointy/booking-api/internal/middleware"
	"github.com/appointy/booking-api/internal/model"
	"github.com/appointy/booking-api/internal/service/auth"
)

type Handler struct {
	service *auth.Service
}

func NewHandler(service *auth.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	token, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(model.TokenResponse{Token: token}))
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	token, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(model.TokenResponse{Token: token}))
}

func (h *Handler) ChangePassword(c *gin.Context) {
	var req model.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	identity := c.GetString(middleware.ContextEmail)
	if err := h.service.ChangePassword(c.Request.Context(), identity, &req); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"message": "password updated successfully"}))
}

// CheckToken is a no-op behind the auth middleware: reaching it means the
// token was valid.
func (h *Handler) CheckToken(c *gin.Context) {
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"email": c.GetString(middleware.ContextEmail),
		"role":  c.GetString(middleware.ContextRole),
	}))
}

func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.POST("/signup", h.Register)
	public.POST("/login", h.Login)
	protected.PATCH("/change-pass", h.ChangePassword)
	protected.GET("/check-token", h.CheckToken)
}
