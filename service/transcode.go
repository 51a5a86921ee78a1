package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"videoflix-transcoder/constant"
)

var ErrSourceNotFound = errors.New("source video not found")

// EncodingError reports a non-zero encoder exit for one rendition.
type EncodingError struct {
	Source   string
	Label    string
	ExitCode int
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encoding %s to %s failed with exit code %d", e.Source, e.Label, e.ExitCode)
}

// PlaylistPath derives the rendition playlist location from the source
// path: same directory, same base name, suffixed with the label.
// videos/movie.mp4 + "480p" -> videos/movie_480p.m3u8
func PlaylistPath(source, label string) string {
	base := strings.TrimSuffix(source, filepath.Ext(source))
	return fmt.Sprintf("%s_%s.m3u8", base, label)
}

// segmentPattern matches the encoder's default segment naming for a
// playlist target: videos/movie_480p*.ts
func segmentPattern(source, label string) string {
	base := strings.TrimSuffix(source, filepath.Ext(source))
	return fmt.Sprintf("%s_%s*.ts", base, label)
}

// convertToHLS runs the encoder synchronously and blocks until it exits.
// The playlist and its segments are written next to the source; a rerun
// after a failed attempt overwrites whatever the previous run left behind.
func convertToHLS(ctx context.Context, ffmpegPath, source string, rendition constant.Rendition) error {
	if _, err := os.Stat(source); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrSourceNotFound, source)
		}
		return err
	}

	target := PlaylistPath(source, rendition.Label)

	args := []string{
		"-i", source,
		"-s", rendition.Scale,
		"-c:v", rendition.VideoCodec,
		"-crf", rendition.CRF,
		"-c:a", rendition.AudioCodec,
		"-strict", "-2",
		"-start_number", "0",
		"-hls_time", "10",
		"-hls_list_size", "0",
		"-f", "hls",
		"-y",
		target,
	}

	cmd := exec.CommandContext(ctx, ffmpegPath, args...)
	zerolog.Ctx(ctx).Debug().Str("source", source).Str("label", rendition.Label).Str("target", target).Msg("invoking encoder")

	output, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			zerolog.Ctx(ctx).Error().
				Str("source", source).
				Str("label", rendition.Label).
				Int("exit_code", exitErr.ExitCode()).
				Str("encoder_output", string(output)).
				Msg("encoder exited with failure")
			return &EncodingError{Source: source, Label: rendition.Label, ExitCode: exitErr.ExitCode()}
		}
		return fmt.Errorf("encoder execution failed: %w", err)
	}

	return nil
}
