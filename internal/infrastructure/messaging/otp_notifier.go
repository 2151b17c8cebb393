package messaging

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/voicebank/payment-service/pkg/messaging"

	"github.com/voicebank/payment-service/internal/domain/repository"
	"github.com/voicebank/payment-service/internal/usecase/constants"
)

// otpNotification is the event consumed by the notification delivery worker
// (SMS, push). The code itself rides in the payload; the channel is internal.
type otpNotification struct {
	Type      string    `json:"type"`
	SessionID string    `json:"session_id"`
	Code      string    `json:"code"`
	IssuedAt  time.Time `json:"issued_at"`
}

type otpNotifier struct {
	publisher messaging.Publisher
	logger    *zap.Logger
}

// NewOTPNotifier creates a Redis pub/sub backed OTP notifier.
func NewOTPNotifier(publisher messaging.Publisher, logger *zap.Logger) repository.NotificationPublisher {
	return &otpNotifier{
		publisher: publisher,
		logger:    logger,
	}
}

func (n *otpNotifier) PublishOTP(ctx context.Context, userID uuid.UUID, sessionID string, code string) error {
	channel := constants.NotificationChannelPrefix + userID.String()
	event := otpNotification{
		Type:      "payment_otp",
		SessionID: sessionID,
		Code:      code,
		IssuedAt:  time.Now(),
	}

	if err := n.publisher.Publish(ctx, channel, event); err != nil {
		n.logger.Error("failed to publish otp notification",
			zap.String("channel", channel),
			zap.Error(err))
		return err
	}
	return nil
}
