package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/gorm"
	"videoflix-transcoder/constant"
	"videoflix-transcoder/repository"
)

var (
	ErrVideoNotFound    = errors.New("video not found")
	ErrArtifactNotFound = errors.New("artifact not found")
	ErrPathTraversal    = errors.New("segment name escapes the video directory")
)

// Resolver maps a video id plus resolution label to the artifact files a
// streaming endpoint serves. A missing file can mean never enqueued,
// still processing or failed; the resolver cannot tell these apart and
// reports ErrArtifactNotFound for all of them.
type Resolver interface {
	ResolvePlaylist(ctx context.Context, videoId uint, label string) (string, error)
	ResolveSegment(ctx context.Context, videoId uint, label, segment string) (string, error)
}

type resolver struct {
	repo repository.VideoRepository
}

func NewResolver(repo repository.VideoRepository) Resolver {
	return &resolver{repo: repo}
}

func (r *resolver) ResolvePlaylist(ctx context.Context, videoId uint, label string) (string, error) {
	video, err := r.repo.FindVideoById(ctx, videoId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrVideoNotFound
		}
		return "", err
	}

	if _, ok := constant.RenditionByLabel(label); !ok {
		return "", ErrArtifactNotFound
	}

	path := PlaylistPath(video.VideoFile, label)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", ErrArtifactNotFound
		}
		return "", err
	}

	return path, nil
}

func (r *resolver) ResolveSegment(ctx context.Context, videoId uint, label, segment string) (string, error) {
	video, err := r.repo.FindVideoById(ctx, videoId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrVideoNotFound
		}
		return "", err
	}

	if err := validateSegmentName(segment); err != nil {
		return "", err
	}

	// Segments live next to the source video.
	path := filepath.Join(filepath.Dir(video.VideoFile), segment)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", ErrArtifactNotFound
		}
		return "", err
	}

	return path, nil
}

// validateSegmentName rejects anything that is not a plain .ts file name
// before the path ever reaches the filesystem.
func validateSegmentName(segment string) error {
	if segment == "" ||
		segment != filepath.Base(segment) ||
		strings.ContainsAny(segment, `/\`) ||
		strings.Contains(segment, "..") ||
		!strings.HasSuffix(segment, ".ts") {
		return ErrPathTraversal
	}
	return nil
}
