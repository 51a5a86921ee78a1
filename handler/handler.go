package handler

import (
	"context"
	"encoding/json"
	"errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"videoflix-transcoder/dto"
	"videoflix-transcoder/service"
)

type ServiceDependencies struct {
	TranscodeService service.Service
}

// TranscodeHandler feeds one queued rendition job to the service. A
// non-retryable failure is logged and swallowed so the delivery is acked
// instead of cycling through the broker forever.
func TranscodeHandler(ctx context.Context, msg amqp.Delivery, deps ServiceDependencies) error {
	var message dto.TranscodeMessage
	if err := json.Unmarshal(msg.Body, &message); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to unmarshal transcode message")
		return nil
	}

	err := deps.TranscodeService.ProcessTranscode(ctx, message)
	if err != nil {
		if errors.Is(err, service.ErrNonRetryable) {
			zerolog.Ctx(ctx).Error().Err(err).Str("job_id", message.JobId.String()).Msg("dropping non-retryable transcode job")
			return nil
		}
		return err
	}

	return nil
}

func ThumbnailHandler(ctx context.Context, msg amqp.Delivery, deps ServiceDependencies) error {
	var message dto.ThumbnailMessage
	if err := json.Unmarshal(msg.Body, &message); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to unmarshal thumbnail message")
		return nil
	}

	err := deps.TranscodeService.ProcessThumbnail(ctx, message)
	if err != nil {
		if errors.Is(err, service.ErrNonRetryable) {
			zerolog.Ctx(ctx).Error().Err(err).Str("job_id", message.JobId.String()).Msg("dropping non-retryable thumbnail job")
			return nil
		}
		return err
	}

	return nil
}
