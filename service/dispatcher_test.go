package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"videoflix-transcoder/dto"
	"videoflix-transcoder/entities"
	"videoflix-transcoder/pkg/rabbitmq"
)

func TestVideoCreated_EnqueuesRenditionsInOrder(t *testing.T) {
	publisher := &fakePublisher{}
	d := NewDispatcher(publisher, nil)

	video := &entities.Video{ID: 1, VideoFile: "media/videos/movie.mp4"}
	require.NoError(t, d.VideoCreated(context.Background(), video))

	require.Len(t, publisher.published, 4)

	wantLabels := []string{"480p", "720p", "1080p"}
	for i, label := range wantLabels {
		assert.Equal(t, rabbitmq.TranscodeTopology.RoutingKey, publisher.published[i].RoutingKey)
		message, ok := publisher.published[i].Message.(dto.TranscodeMessage)
		require.True(t, ok)
		assert.Equal(t, label, message.Label)
		assert.Equal(t, uint(1), message.VideoId)
		assert.Equal(t, "media/videos/movie.mp4", message.SourcePath)
		assert.NotEqual(t, uuid.Nil, message.JobId)
	}

	assert.Equal(t, rabbitmq.ThumbnailTopology.RoutingKey, publisher.published[3].RoutingKey)
	thumb, ok := publisher.published[3].Message.(dto.ThumbnailMessage)
	require.True(t, ok)
	assert.Equal(t, uint(1), thumb.VideoId)
}

func TestVideoCreated_SkipsThumbnailWhenAlreadySet(t *testing.T) {
	publisher := &fakePublisher{}
	d := NewDispatcher(publisher, nil)

	video := &entities.Video{ID: 1, VideoFile: "media/videos/movie.mp4", Thumbnail: "media/thumbnails/movie_thumbnail.jpg"}
	require.NoError(t, d.VideoCreated(context.Background(), video))

	require.Len(t, publisher.published, 3)
	for _, p := range publisher.published {
		assert.Equal(t, rabbitmq.TranscodeTopology.RoutingKey, p.RoutingKey)
	}
}

func TestVideoDeleted_RemovesAllFiles(t *testing.T) {
	root := t.TempDir()
	videosDir := filepath.Join(root, "videos")
	thumbsDir := filepath.Join(root, "thumbnails")
	require.NoError(t, os.MkdirAll(videosDir, 0o755))
	require.NoError(t, os.MkdirAll(thumbsDir, 0o755))

	source := filepath.Join(videosDir, "movie.mp4")
	thumbnail := filepath.Join(thumbsDir, "movie_thumbnail.jpg")
	files := []string{
		source,
		thumbnail,
		filepath.Join(videosDir, "movie_480p.m3u8"),
		filepath.Join(videosDir, "movie_480p0.ts"),
		filepath.Join(videosDir, "movie_480p1.ts"),
		filepath.Join(videosDir, "movie_720p.m3u8"),
		filepath.Join(videosDir, "movie_720p0.ts"),
	}
	for _, f := range files {
		require.NoError(t, os.WriteFile(f, []byte("x"), 0o644))
	}

	// An unrelated video's artifacts must survive.
	other := filepath.Join(videosDir, "other_480p.m3u8")
	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))

	d := NewDispatcher(&fakePublisher{}, nil)
	video := &entities.Video{ID: 1, VideoFile: source, Thumbnail: thumbnail}
	require.NoError(t, d.VideoDeleted(context.Background(), video))

	for _, f := range files {
		assert.NoFileExists(t, f)
	}
	assert.FileExists(t, other)
}

func TestVideoDeleted_ToleratesMissingFiles(t *testing.T) {
	root := t.TempDir()
	d := NewDispatcher(&fakePublisher{}, nil)

	video := &entities.Video{ID: 1, VideoFile: filepath.Join(root, "videos", "gone.mp4")}
	assert.NoError(t, d.VideoDeleted(context.Background(), video))
}
