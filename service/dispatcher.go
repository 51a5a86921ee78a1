package service

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"videoflix-transcoder/constant"
	"videoflix-transcoder/dto"
	"videoflix-transcoder/entities"
	"videoflix-transcoder/pkg/rabbitmq"
)

// Dispatcher reacts to catalog domain events. The catalog publishes them
// explicitly after its own persistence succeeds; nothing here hangs off
// ORM hooks.
type Dispatcher interface {
	VideoCreated(ctx context.Context, video *entities.Video) error
	VideoDeleted(ctx context.Context, video *entities.Video) error
}

type dispatcher struct {
	publisher rabbitmq.Publisher
	mirror    Mirror
}

func NewDispatcher(publisher rabbitmq.Publisher, mirror Mirror) Dispatcher {
	return &dispatcher{
		publisher: publisher,
		mirror:    mirror,
	}
}

// VideoCreated enqueues one transcode job per rendition, in rendition
// order, plus a thumbnail job when the video has no cover image yet.
// Execution order across the jobs is up to the queue.
func (d *dispatcher) VideoCreated(ctx context.Context, video *entities.Video) error {
	for _, rendition := range constant.Renditions {
		message := dto.TranscodeMessage{
			JobId:      uuid.New(),
			VideoId:    video.ID,
			SourcePath: video.VideoFile,
			Label:      rendition.Label,
		}
		if err := d.publisher.Publish(ctx, rabbitmq.TranscodeTopology.RoutingKey, message); err != nil {
			return err
		}
		zerolog.Ctx(ctx).Info().
			Str("job_id", message.JobId.String()).
			Uint("video_id", video.ID).
			Str("label", rendition.Label).
			Msg("enqueued transcode job")
	}

	if video.Thumbnail == "" {
		message := dto.ThumbnailMessage{
			JobId:      uuid.New(),
			VideoId:    video.ID,
			SourcePath: video.VideoFile,
		}
		if err := d.publisher.Publish(ctx, rabbitmq.ThumbnailTopology.RoutingKey, message); err != nil {
			return err
		}
		zerolog.Ctx(ctx).Info().
			Str("job_id", message.JobId.String()).
			Uint("video_id", video.ID).
			Msg("enqueued thumbnail job")
	}

	return nil
}

// VideoDeleted removes the source file, the thumbnail and every derived
// rendition artifact from storage. Files already gone are not an error.
func (d *dispatcher) VideoDeleted(ctx context.Context, video *entities.Video) error {
	files := []string{video.VideoFile}
	if video.Thumbnail != "" {
		files = append(files, video.Thumbnail)
	}

	for _, rendition := range constant.Renditions {
		files = append(files, PlaylistPath(video.VideoFile, rendition.Label))
		segments, err := filepath.Glob(segmentPattern(video.VideoFile, rendition.Label))
		if err != nil {
			return err
		}
		files = append(files, segments...)
	}

	for _, file := range files {
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
			zerolog.Ctx(ctx).Error().Err(err).Str("file", file).Msg("failed to remove file")
			return err
		}
		if d.mirror != nil {
			if err := d.mirror.Remove(ctx, file); err != nil {
				zerolog.Ctx(ctx).Error().Err(err).Str("file", file).Msg("failed to remove mirrored object")
			}
		}
	}

	zerolog.Ctx(ctx).Info().Uint("video_id", video.ID).Int("files", len(files)).Msg("removed video files")
	return nil
}
