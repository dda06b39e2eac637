package imageprocessing

import (
	"bytes"
	"errors"
	"fmt"
	"image"
)

// MaxImagePixels bounds the canvas decoded or rendered for one image
// (4096x4096, 64 MiB as RGBA).
const MaxImagePixels = 1 << 24

// maxSvgDimension caps declared SVG width/height before they are used.
const maxSvgDimension = 1 << 16

var ErrImageTooLarge = errors.New("image too large")

// checkPixels rejects canvases above MaxImagePixels.
func checkPixels(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("image has no pixels: %dx%d", width, height)
	}
	if int64(width)*int64(height) > MaxImagePixels {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrImageTooLarge, width, height, MaxImagePixels)
	}
	return nil
}

// checkDecodeSize reads only the image header and refuses images whose
// decoded canvas would exceed MaxImagePixels.
func checkDecodeSize(imageData []byte) error {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(imageData))
	if err != nil {
		return fmt.Errorf("failed to read image header: %w", err)
	}
	return checkPixels(cfg.Width, cfg.Height)
}
