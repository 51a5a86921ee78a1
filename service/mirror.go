package service

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/rs/zerolog"
)

// Mirror copies produced artifacts to remote object storage so another
// origin can serve them. Keys mirror the path layout under the media root.
type Mirror interface {
	MirrorRendition(ctx context.Context, source, label string) error
	MirrorFile(ctx context.Context, path string) error
	Remove(ctx context.Context, path string) error
}

type minioMirror struct {
	client    *minio.Client
	bucket    string
	mediaRoot string
}

func NewMinioMirror(client *minio.Client, bucket, mediaRoot string) Mirror {
	return &minioMirror{
		client:    client,
		bucket:    bucket,
		mediaRoot: mediaRoot,
	}
}

func (m *minioMirror) objectName(path string) (string, error) {
	rel, err := filepath.Rel(m.mediaRoot, path)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(rel, "\\", "/"), nil
}

// MirrorRendition uploads the playlist plus every segment the encoder
// produced for the given source/label pair.
func (m *minioMirror) MirrorRendition(ctx context.Context, source, label string) error {
	files := []string{PlaylistPath(source, label)}

	segments, err := filepath.Glob(segmentPattern(source, label))
	if err != nil {
		return err
	}
	files = append(files, segments...)

	for _, file := range files {
		if err := m.MirrorFile(ctx, file); err != nil {
			return err
		}
	}

	zerolog.Ctx(ctx).Info().Str("label", label).Int("files", len(files)).Msg("mirrored rendition artifacts")
	return nil
}

func (m *minioMirror) MirrorFile(ctx context.Context, path string) error {
	objectName, err := m.objectName(path)
	if err != nil {
		return err
	}
	_, err = m.client.FPutObject(ctx, m.bucket, objectName, path, minio.PutObjectOptions{})
	return err
}

func (m *minioMirror) Remove(ctx context.Context, path string) error {
	objectName, err := m.objectName(path)
	if err != nil {
		return err
	}
	return m.client.RemoveObject(ctx, m.bucket, objectName, minio.RemoveObjectOptions{})
}
