package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/voicebank/payment-service/pkg/errors"

	"github.com/voicebank/payment-service/internal/domain/dto"
	"github.com/voicebank/payment-service/internal/middleware/auth"
	"github.com/voicebank/payment-service/internal/usecase"
)

// ElicitationHandler exposes the elicitation round trip over HTTP.
type ElicitationHandler struct {
	router *usecase.ElicitationRouter
	logger *zap.Logger
}

// NewElicitationHandler creates an elicitation handler.
func NewElicitationHandler(router *usecase.ElicitationRouter, logger *zap.Logger) *ElicitationHandler {
	return &ElicitationHandler{
		router: router,
		logger: logger,
	}
}

// Create handles POST /api/v1/elicitations.
func (h *ElicitationHandler) Create(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return apperrors.JSONResponse(c, err)
	}

	var req dto.CreateElicitationRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.JSONResponse(c,
			apperrors.NewAppError(apperrors.ErrValidation, "invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return apperrors.JSONResponse(c,
			apperrors.NewAppError(apperrors.ErrValidation, err.Error(), err))
	}

	request, err := h.router.Create(c.Request().Context(), userID, &req)
	if err != nil {
		return apperrors.JSONResponse(c, err)
	}
	return c.JSON(http.StatusCreated, request)
}

// SubmitResponse handles POST /api/v1/elicitations/:id/response.
func (h *ElicitationHandler) SubmitResponse(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return apperrors.JSONResponse(c, err)
	}

	var req dto.SubmitElicitationResponse
	if err := c.Bind(&req); err != nil {
		return apperrors.JSONResponse(c,
			apperrors.NewAppError(apperrors.ErrValidation, "invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return apperrors.JSONResponse(c,
			apperrors.NewAppError(apperrors.ErrValidation, err.Error(), err))
	}

	result, err := h.router.SubmitResponse(c.Request().Context(), userID, c.Param("id"), req.Payload)
	if err != nil {
		return apperrors.JSONResponse(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// Cancel handles POST /api/v1/elicitations/:id/cancel.
func (h *ElicitationHandler) Cancel(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return apperrors.JSONResponse(c, err)
	}

	var req dto.CancelElicitationRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.JSONResponse(c,
			apperrors.NewAppError(apperrors.ErrValidation, "invalid request body", err))
	}

	if err := h.router.Cancel(c.Request().Context(), userID, c.Param("id"), req.Reason); err != nil {
		return apperrors.JSONResponse(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "cancelled"})
}
