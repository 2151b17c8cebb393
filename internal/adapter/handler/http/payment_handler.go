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

// PaymentHandler exposes the two-step payment flow over HTTP.
type PaymentHandler struct {
	initiator *usecase.PaymentInitiator
	confirmer *usecase.PaymentConfirmer
	logger    *zap.Logger
}

// NewPaymentHandler creates a payment handler.
func NewPaymentHandler(initiator *usecase.PaymentInitiator, confirmer *usecase.PaymentConfirmer, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		initiator: initiator,
		confirmer: confirmer,
		logger:    logger,
	}
}

// Initiate handles POST /api/v1/payments/initiate.
func (h *PaymentHandler) Initiate(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return apperrors.JSONResponse(c, err)
	}

	var req dto.InitiatePaymentRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.JSONResponse(c,
			apperrors.NewAppError(apperrors.ErrValidation, "invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return apperrors.JSONResponse(c,
			apperrors.NewAppError(apperrors.ErrValidation, err.Error(), err))
	}

	resp, err := h.initiator.Initiate(c.Request().Context(), userID, &req)
	if err != nil {
		return apperrors.JSONResponse(c, err)
	}
	return c.JSON(http.StatusCreated, resp)
}

// Confirm handles POST /api/v1/payments/confirm.
func (h *PaymentHandler) Confirm(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return apperrors.JSONResponse(c, err)
	}

	var req dto.ConfirmPaymentRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.JSONResponse(c,
			apperrors.NewAppError(apperrors.ErrValidation, "invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return apperrors.JSONResponse(c,
			apperrors.NewAppError(apperrors.ErrValidation, err.Error(), err))
	}

	tx, err := h.confirmer.Confirm(c.Request().Context(), userID, req.SessionID, req.OTPCode)
	if err != nil {
		return apperrors.JSONResponse(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"transaction": tx})
}
