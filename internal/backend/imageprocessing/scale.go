package imageprocessing

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
)

// ScaleCommand downscales a PNG to a target width, preserving aspect ratio.
// Images already narrower than the target are returned unchanged.
// Nearest-neighbour sampling keeps QR modules crisp.
type ScaleCommand struct {
	width int
}

func NewScaleCommand(width int) (*ScaleCommand, error) {
	if width <= 0 {
		return nil, fmt.Errorf("width must be positive, got %d", width)
	}
	return &ScaleCommand{width: width}, nil
}

func (c *ScaleCommand) Name() string {
	return "ScaleCommand"
}

func (c *ScaleCommand) Execute(imageData []byte) ([]byte, error) {
	if err := checkDecodeSize(imageData); err != nil {
		return nil, err
	}
	img, err := png.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode PNG image: %w", err)
	}

	bounds := img.Bounds()
	originalWidth := bounds.Dx()
	originalHeight := bounds.Dy()
	if originalWidth == 0 || originalHeight == 0 {
		return nil, fmt.Errorf("image has no pixels: %dx%d", originalWidth, originalHeight)
	}
	if originalWidth <= c.width {
		return imageData, nil
	}

	targetWidth := c.width
	targetHeight := originalHeight * targetWidth / originalWidth
	if targetHeight < 1 {
		targetHeight = 1
	}

	targetImg := image.NewRGBA(image.Rect(0, 0, targetWidth, targetHeight))
	parallelFor(targetHeight, func(y int) {
		srcY := bounds.Min.Y + y*originalHeight/targetHeight
		for x := 0; x < targetWidth; x++ {
			srcX := bounds.Min.X + x*originalWidth/targetWidth
			targetImg.Set(x, y, img.At(srcX, srcY))
		}
	})

	var buf bytes.Buffer
	if err := png.Encode(&buf, targetImg); err != nil {
		return nil, fmt.Errorf("failed to encode scaled PNG image: %w", err)
	}
	return buf.Bytes(), nil
}
