package server

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"videoflix-transcoder/constant"
	"videoflix-transcoder/entities"
	"videoflix-transcoder/service"
)

type stubRepo struct {
	video *entities.Video
}

func (r *stubRepo) Transaction(ctx context.Context, callback func(ctx context.Context) error, opts ...*sql.TxOptions) error {
	return callback(ctx)
}
func (r *stubRepo) GetDB() *gorm.DB { return nil }
func (r *stubRepo) CreateVideo(ctx context.Context, video *entities.Video) error {
	return nil
}
func (r *stubRepo) FindVideoById(ctx context.Context, id uint) (*entities.Video, error) {
	if r.video == nil || r.video.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return r.video, nil
}
func (r *stubRepo) ListVideos(ctx context.Context) ([]*entities.Video, error) {
	if r.video == nil {
		return nil, nil
	}
	return []*entities.Video{r.video}, nil
}
func (r *stubRepo) SetThumbnail(ctx context.Context, id uint, path string) error { return nil }
func (r *stubRepo) DeleteVideo(ctx context.Context, id uint) error               { return nil }

func newStreamingRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	source := filepath.Join(dir, "movie.mp4")
	repo := &stubRepo{video: &entities.Video{ID: 1, VideoFile: source}}

	r := gin.New()
	addVideoRoutes(r, &videoHandler{
		repo:     repo,
		resolver: service.NewResolver(repo),
	})
	return r, dir
}

func TestStreamPlaylist(t *testing.T) {
	router, dir := newStreamingRouter(t)
	playlist := "#EXTM3U\n#EXTINF:10.0,\nmovie_720p0.ts\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "movie_720p.m3u8"), []byte(playlist), 0o644))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/video/1/720p/index.m3u8", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, constant.ContentTypePlaylist, w.Header().Get("Content-Type"))
	assert.Equal(t, playlist, w.Body.String())
}

func TestStreamPlaylist_ArtifactMissing(t *testing.T) {
	router, _ := newStreamingRouter(t)

	// No 1080p playlist was ever produced (job failed or still running).
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/video/1/1080p/index.m3u8", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStreamPlaylist_VideoMissing(t *testing.T) {
	router, _ := newStreamingRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/video/99/720p/index.m3u8", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStreamSegment(t *testing.T) {
	router, dir := newStreamingRouter(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "movie_720p0.ts"), []byte("mpegts bytes"), 0o644))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/video/1/720p/movie_720p0.ts", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, constant.ContentTypeSegment, w.Header().Get("Content-Type"))
	assert.Equal(t, "mpegts bytes", w.Body.String())
}

func TestStreamSegment_TraversalRejected(t *testing.T) {
	router, _ := newStreamingRouter(t)

	// An encoded-slash traversal decodes into extra path segments and
	// falls off the route entirely.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/video/1/720p/..%2F..%2Fetc%2Fpasswd", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// A dotted name that stays in one segment reaches the resolver and
	// is rejected there.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/video/1/720p/..secret..ts", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStreamSegment_NotAPlainSegmentName(t *testing.T) {
	router, _ := newStreamingRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/video/1/720p/notes.txt", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
