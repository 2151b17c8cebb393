package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/voicebank/payment-service/internal/domain/model"
)

// ElicitationPublisher pushes elicitation prompts to the client message
// channel. Delivery is at-least-once; the elicitation state machine absorbs
// duplicates.
type ElicitationPublisher interface {
	PublishRequest(ctx context.Context, userID uuid.UUID, request *model.ElicitationRequest) error
}

// NotificationPublisher delivers the OTP to the user's registered channel.
// Fire-and-forget: a delivery failure never rolls back Initiate.
type NotificationPublisher interface {
	PublishOTP(ctx context.Context, userID uuid.UUID, sessionID string, code string) error
}
