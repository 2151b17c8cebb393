package messaging

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/voicebank/payment-service/pkg/messaging"

	"github.com/voicebank/payment-service/internal/domain/model"
	"github.com/voicebank/payment-service/internal/domain/repository"
	"github.com/voicebank/payment-service/internal/usecase/constants"
)

// elicitationPublisher pushes elicitation prompts onto the per-user client
// message channel.
type elicitationPublisher struct {
	publisher messaging.Publisher
	logger    *zap.Logger
}

// NewElicitationPublisher creates a Redis pub/sub backed elicitation publisher.
func NewElicitationPublisher(publisher messaging.Publisher, logger *zap.Logger) repository.ElicitationPublisher {
	return &elicitationPublisher{
		publisher: publisher,
		logger:    logger,
	}
}

func (p *elicitationPublisher) PublishRequest(ctx context.Context, userID uuid.UUID, request *model.ElicitationRequest) error {
	channel := constants.ElicitationChannelPrefix + userID.String()
	if err := p.publisher.Publish(ctx, channel, request); err != nil {
		p.logger.Error("failed to publish elicitation request",
			zap.String("channel", channel),
			zap.String("elicitation_id", request.ElicitationID),
			zap.Error(err))
		return err
	}

	p.logger.Debug("elicitation request published",
		zap.String("channel", channel),
		zap.String("elicitation_id", request.ElicitationID))
	return nil
}
