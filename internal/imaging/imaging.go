// Package imaging re-encodes recipe photos using libvips. Generated and
// uploaded images are normalised to fixed JPEG sizes before they reach
// object storage, so the public site always serves predictable files.
package imaging

import (
	"fmt"
	"log/slog"

	"github.com/davidbyttow/govips/v2/vips"
)

// Recipe photo dimensions served on recipe pages.
const (
	PhotoWidth   = 1024
	PhotoHeight  = 768
	PhotoQuality = 90

	ThumbWidth   = 300
	ThumbHeight  = 225
	ThumbQuality = 80
)

// Processed holds one re-encoded image ready for upload.
type Processed struct {
	Width       int
	Height      int
	Data        []byte // JPEG-encoded bytes
	ContentType string // always "image/jpeg"
}

// Startup initialises the libvips library. Call once at application start.
// concurrency controls the number of libvips worker threads (0 = auto).
func Startup(concurrency int) {
	cfg := &vips.Config{
		ConcurrencyLevel: concurrency,
		MaxCacheSize:     100,
		MaxCacheMem:      50 * 1024 * 1024, // 50 MB
	}
	vips.LoggingSettings(nil, vips.LogLevelWarning)
	vips.Startup(cfg)
	slog.Info("libvips started", "version", vips.Version)
}

// Shutdown releases libvips resources. Call at application shutdown.
func Shutdown() {
	vips.Shutdown()
}

// RecipePhoto re-encodes an image as the standard recipe photo: a
// 1024x768 centre-cropped JPEG.
func RecipePhoto(original []byte) (*Processed, error) {
	return encode(original, PhotoWidth, PhotoHeight, PhotoQuality)
}

// Thumbnail re-encodes an image as a 300x225 listing thumbnail.
func Thumbnail(original []byte) (*Processed, error) {
	return encode(original, ThumbWidth, ThumbHeight, ThumbQuality)
}

func encode(original []byte, width, height, quality int) (*Processed, error) {
	img, err := vips.NewThumbnailFromBuffer(original, width, height, vips.InterestingCentre)
	if err != nil {
		return nil, fmt.Errorf("imaging: decode: %w", err)
	}
	defer img.Close()

	// Auto-rotate based on EXIF orientation, then strip metadata.
	if err := img.AutoRotate(); err != nil {
		return nil, fmt.Errorf("imaging: autorotate: %w", err)
	}

	params := vips.NewJpegExportParams()
	params.Quality = quality
	params.StripMetadata = true

	buf, meta, err := img.ExportJpeg(params)
	if err != nil {
		return nil, fmt.Errorf("imaging: export jpeg: %w", err)
	}

	return &Processed{
		Width:       meta.Width,
		Height:      meta.Height,
		Data:        buf,
		ContentType: "image/jpeg",
	}, nil
}
