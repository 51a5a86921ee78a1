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
)

var ErrThumbnailExtraction = errors.New("thumbnail extraction failed")

// thumbnailOffset is where the cover frame is grabbed from. Sources
// shorter than this produce no frame and the extraction fails, which is
// tolerated.
const thumbnailOffset = "00:00:01.000"

// ThumbnailPath derives the cover image location from the media root and
// the source file name: <root>/thumbnails/<base>_thumbnail.jpg
func ThumbnailPath(mediaRoot, source string) string {
	name := filepath.Base(source)
	base := strings.TrimSuffix(name, filepath.Ext(name))
	return filepath.Join(mediaRoot, "thumbnails", base+"_thumbnail.jpg")
}

// extractFrame grabs a single frame into a temporary file next to the
// final target, then renames it into place. The rename keeps a partially
// written image from ever being visible under the final name.
func extractFrame(ctx context.Context, ffmpegPath, source, target string) error {
	if _, err := os.Stat(source); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrSourceNotFound, source)
		}
		return err
	}

	if err := os.MkdirAll(filepath.Dir(target), os.ModePerm); err != nil {
		return err
	}

	tmp := target + ".tmp.jpg"
	defer os.Remove(tmp)

	args := []string{
		"-ss", thumbnailOffset,
		"-i", source,
		"-vframes", "1",
		"-f", "image2",
		"-y",
		tmp,
	}

	cmd := exec.CommandContext(ctx, ffmpegPath, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		zerolog.Ctx(ctx).Error().
			Str("source", source).
			Str("encoder_output", string(output)).
			Msg("frame extraction failed")
		return fmt.Errorf("%w: %s", ErrThumbnailExtraction, source)
	}

	// ffmpeg exits zero even when the offset is past the end of a very
	// short source; it just writes nothing.
	if info, err := os.Stat(tmp); err != nil || info.Size() == 0 {
		return fmt.Errorf("%w: no frame at offset %s", ErrThumbnailExtraction, thumbnailOffset)
	}

	return os.Rename(tmp, target)
}
