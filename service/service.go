package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"videoflix-transcoder/config"
	"videoflix-transcoder/constant"
	"videoflix-transcoder/dto"
	"videoflix-transcoder/repository"
)

var ErrNonRetryable = errors.New("non-retryable error")

type Service interface {
	ProcessTranscode(ctx context.Context, message dto.TranscodeMessage) error
	ProcessThumbnail(ctx context.Context, message dto.ThumbnailMessage) error
}

type service struct {
	repo   repository.VideoRepository
	cfg    *config.Config
	mirror Mirror
}

func NewService(repo repository.VideoRepository, cfg *config.Config, mirror Mirror) Service {
	return &service{
		repo:   repo,
		cfg:    cfg,
		mirror: mirror,
	}
}

// ProcessTranscode produces one HLS rendition for one source. It blocks
// the worker slot until the encoder exits, so total encoder load is
// bounded by the consumer's worker count. Encoder failures are retryable
// (the queue redelivers); a missing source is not.
func (s service) ProcessTranscode(ctx context.Context, message dto.TranscodeMessage) error {
	logger := zerolog.Ctx(ctx).With().
		Str("job_id", message.JobId.String()).
		Uint("video_id", message.VideoId).
		Str("label", message.Label).
		Logger()
	lctx := logger.WithContext(ctx)

	rendition, ok := constant.RenditionByLabel(message.Label)
	if !ok {
		logger.Error().Msg("unknown rendition label")
		return fmt.Errorf("%w: unknown rendition label %q", ErrNonRetryable, message.Label)
	}

	logger.Info().Str("source", message.SourcePath).Msg("transcoding rendition")

	if err := convertToHLS(lctx, s.cfg.Media.FFmpegPath, message.SourcePath, rendition); err != nil {
		if errors.Is(err, ErrSourceNotFound) {
			logger.Error().Err(err).Msg("source missing, dropping job")
			return errors.Join(ErrNonRetryable, err)
		}
		logger.Error().Err(err).Msg("rendition conversion failed")
		return err
	}

	if s.mirror != nil {
		if err := s.mirror.MirrorRendition(ctx, message.SourcePath, message.Label); err != nil {
			logger.Error().Err(err).Msg("failed to mirror rendition artifacts")
			return err
		}
	}

	logger.Info().Str("playlist", PlaylistPath(message.SourcePath, message.Label)).Msg("rendition completed")
	return nil
}

// ProcessThumbnail extracts the cover frame once per video. Any failure
// here is non-fatal to the pipeline: the video simply keeps no thumbnail
// and the rendition jobs proceed independently.
func (s service) ProcessThumbnail(ctx context.Context, message dto.ThumbnailMessage) error {
	logger := zerolog.Ctx(ctx).With().
		Str("job_id", message.JobId.String()).
		Uint("video_id", message.VideoId).
		Logger()
	lctx := logger.WithContext(ctx)

	video, err := s.repo.FindVideoById(ctx, message.VideoId)
	if err != nil {
		logger.Error().Err(err).Msg("failed to find video")
		return err
	}

	if video.Thumbnail != "" {
		logger.Info().Msg("video already has a thumbnail, skipping")
		return nil
	}

	target := ThumbnailPath(s.cfg.Media.Root, message.SourcePath)
	if err := extractFrame(lctx, s.cfg.Media.FFmpegPath, message.SourcePath, target); err != nil {
		logger.Error().Err(err).Msg("thumbnail extraction failed, video left without thumbnail")
		return errors.Join(ErrNonRetryable, err)
	}

	if err := s.repo.SetThumbnail(ctx, message.VideoId, target); err != nil {
		logger.Error().Err(err).Msg("failed to persist thumbnail reference")
		return err
	}

	if s.mirror != nil {
		if err := s.mirror.MirrorFile(ctx, target); err != nil {
			logger.Error().Err(err).Msg("failed to mirror thumbnail")
			return err
		}
	}

	logger.Info().Str("thumbnail", target).Msg("thumbnail attached")
	return nil
}
