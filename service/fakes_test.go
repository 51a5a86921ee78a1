package service

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"gorm.io/gorm"
	"videoflix-transcoder/entities"
)

type fakeRepo struct {
	videos map[uint]*entities.Video
}

func newFakeRepo(videos ...*entities.Video) *fakeRepo {
	r := &fakeRepo{videos: map[uint]*entities.Video{}}
	for _, v := range videos {
		r.videos[v.ID] = v
	}
	return r
}

func (r *fakeRepo) Transaction(ctx context.Context, callback func(ctx context.Context) error, opts ...*sql.TxOptions) error {
	return callback(ctx)
}

func (r *fakeRepo) GetDB() *gorm.DB { return nil }

func (r *fakeRepo) CreateVideo(ctx context.Context, video *entities.Video) error {
	video.ID = uint(len(r.videos) + 1)
	r.videos[video.ID] = video
	return nil
}

func (r *fakeRepo) FindVideoById(ctx context.Context, id uint) (*entities.Video, error) {
	video, ok := r.videos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return video, nil
}

func (r *fakeRepo) ListVideos(ctx context.Context) ([]*entities.Video, error) {
	var videos []*entities.Video
	for _, v := range r.videos {
		videos = append(videos, v)
	}
	return videos, nil
}

func (r *fakeRepo) SetThumbnail(ctx context.Context, id uint, path string) error {
	video, ok := r.videos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if video.Thumbnail == "" {
		video.Thumbnail = path
	}
	return nil
}

func (r *fakeRepo) DeleteVideo(ctx context.Context, id uint) error {
	delete(r.videos, id)
	return nil
}

type publishedMessage struct {
	RoutingKey string
	Message    any
}

type fakePublisher struct {
	published []publishedMessage
	failWith  error
}

func (p *fakePublisher) Publish(ctx context.Context, routingKey string, message any) error {
	if p.failWith != nil {
		return p.failWith
	}
	p.published = append(p.published, publishedMessage{RoutingKey: routingKey, Message: message})
	return nil
}

// writeStubEncoder drops a shell script standing in for ffmpeg. The
// script writes body to its last argument, which is where ffmpeg puts
// the output playlist or image.
func writeStubEncoder(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ffmpeg")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

const stubEncoderOK = `#!/bin/sh
for last; do :; done
printf '#EXTM3U\n' > "$last"
`

const stubEncoderFail = `#!/bin/sh
exit 3
`
