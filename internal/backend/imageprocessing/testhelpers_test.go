package imageprocessing

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

// createCheckerPNG builds a black/white checkerboard, the shape of a QR code module grid.
func createCheckerPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	return encodePNG(t, checker(width, height))
}

func createCheckerJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, checker(width, height), nil); err != nil {
		t.Fatalf("failed to encode JPEG: %v", err)
	}
	return buf.Bytes()
}

func checker(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if (x/4+y/4)%2 == 0 {
				img.Set(x, y, color.Black)
			} else {
				img.Set(x, y, color.White)
			}
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode PNG: %v", err)
	}
	return buf.Bytes()
}

func decodePNGSize(t *testing.T, data []byte) (int, int) {
	t.Helper()
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	return cfg.Width, cfg.Height
}

// oversizedPNGHeader returns a PNG signature and IHDR chunk declaring a
// width x height 8-bit grayscale image, with no pixel data behind it.
func oversizedPNGHeader(width, height uint32) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], width)
	binary.BigEndian.PutUint32(ihdr[4:8], height)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 0 // grayscale

	chunk := append([]byte("IHDR"), ihdr...)
	var buf bytes.Buffer
	buf.Write([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A})
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

// oversizedGIFHeader returns a GIF header and logical screen descriptor
// declaring a width x height canvas.
func oversizedGIFHeader(width, height uint16) []byte {
	header := []byte("GIF89a")
	header = binary.LittleEndian.AppendUint16(header, width)
	header = binary.LittleEndian.AppendUint16(header, height)
	return append(header, 0, 0, 0)
}
