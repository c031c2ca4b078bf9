package handler

import (
	"errors"
	"net/http"

	appclient "github.com/ZThygesen/inspired-virtual-closet-sub001/internal/application/client"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/shared"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/logger"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/interfaces/http/dto"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// APIResponse documents the success envelope with a typed data field
// @Description Standard API response wrapper
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// ErrorResponse documents the error envelope
// @Description Error response
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// MessageData carries a confirmation such as the logout acknowledgement
type MessageData struct {
	Message string `json:"message" example:"Logged out successfully"`
}

// BaseHandler holds the envelope and binding helpers every handler embeds.
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	return middleware.GetRequestID(c)
}

// getActor builds the calling client from JWT claims
func getActor(c *gin.Context) (appclient.Actor, error) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		return appclient.Actor{}, errors.New("jwt claims not found in context")
	}
	id, err := claims.GetClientUUID()
	if err != nil {
		return appclient.Actor{}, err
	}
	return appclient.Actor{
		ID:           id,
		IsAdmin:      claims.IsAdmin,
		IsSuperAdmin: claims.IsSuperAdmin,
	}, nil
}

// requireActor writes 401 and returns false when the caller is unknown
func (h *BaseHandler) requireActor(c *gin.Context) (appclient.Actor, bool) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return appclient.Actor{}, false
	}
	return actor, true
}

// paramUUID parses a UUID path parameter, writing 400 on failure
func (h *BaseHandler) paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.BadRequest(c, "Invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON binds the body, writing a validation or bad request response on failure
func (h *BaseHandler) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.bindError(c, err, "Invalid request body")
		return false
	}
	return true
}

// bindQuery binds query parameters the same way bindJSON binds bodies
func (h *BaseHandler) bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		h.bindError(c, err, "Invalid query parameters")
		return false
	}
	return true
}

func (h *BaseHandler) bindError(c *gin.Context, err error, message string) {
	var (
		verrs    validator.ValidationErrors
		tooLarge *http.MaxBytesError
	)
	switch {
	case errors.As(err, &verrs):
		middleware.HandleValidationError(c, err)
	case errors.As(err, &tooLarge):
		h.HandleError(c, err)
	default:
		h.BadRequest(c, message)
	}
}

func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta answers one page of a listing.
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error writes an error envelope tagged with the request id.
func (h *BaseHandler) Error(c *gin.Context, status int, code, message string) {
	c.JSON(status, dto.NewErrorResponse(code, message, getRequestID(c)))
}

func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// HandleError answers err. Domain errors keep their code, oversized bodies
// get 413 and anything else is logged and hidden behind a 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	var (
		domainErr *shared.DomainError
		tooLarge  *http.MaxBytesError
	)
	switch {
	case err == nil:
	case errors.As(err, &tooLarge):
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodePayloadTooLarge, "Request body is too large")
	case errors.As(err, &domainErr):
		code := dto.NormalizeErrorCode(domainErr.Code)
		h.Error(c, dto.DomainHTTPStatus(code), code, domainErr.Message)
	default:
		logger.GetGinLogger(c).Error("request failed", zap.Error(err))
		_ = c.Error(err)
		h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
	}
}
