package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/voicebank/payment-service/pkg/logger"

	handler "github.com/voicebank/payment-service/internal/adapter/handler/http"
	"github.com/voicebank/payment-service/internal/middleware/auth"
)

// Server is the HTTP front of the payment service.
type Server struct {
	echo   *echo.Echo
	logger *zap.Logger
	host   string
	port   int
}

// requestValidator adapts go-playground/validator to echo's Validator.
type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// NewServer builds the echo instance with middleware and routes.
func NewServer(
	host string,
	port int,
	jwtMiddleware *auth.JWTMiddleware,
	paymentHandler *handler.PaymentHandler,
	elicitationHandler *handler.ElicitationHandler,
	zapLogger *zap.Logger,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &requestValidator{validate: validator.New()}

	logger.WithEchoErrorHandler(e, zapLogger)

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(logger.NewEchoRequestLogger(zapLogger))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	})

	api := e.Group("/api/v1", jwtMiddleware.Handle(), jwtMiddleware.RequirePermission(auth.PermissionTransact))

	payments := api.Group("/payments")
	payments.POST("/initiate", paymentHandler.Initiate)
	payments.POST("/confirm", paymentHandler.Confirm)

	elicitations := api.Group("/elicitations")
	elicitations.POST("", elicitationHandler.Create)
	elicitations.POST("/:id/response", elicitationHandler.SubmitResponse)
	elicitations.POST("/:id/cancel", elicitationHandler.Cancel)

	return &Server{
		echo:   e,
		logger: zapLogger,
		host:   host,
		port:   port,
	}
}

// Start begins serving and blocks until the server stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	s.logger.Info("http server starting", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.echo.Shutdown(ctx)
}
