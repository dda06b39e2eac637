package imageprocessing

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log/slog"
	"strings"

	_ "image/gif"
	_ "image/jpeg"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// hasCorrectPngSignature checks whether the provided data begins with a valid PNG signature
func hasCorrectPngSignature(data []byte) bool {
	// PNG signature: 0x89 'P' 'N' 'G' 0x0D 0x0A 0x1A 0x0A
	if len(data) < 8 {
		return false
	}
	expected := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
	return bytes.Equal(data[:8], expected)
}

// PngConverterCommand converts any supported raster format or SVG to PNG.
// SVGs are rendered straight at svgWidth, never at their declared size.
type PngConverterCommand struct {
	svgWidth int
}

// NewPngConverterCommand creates a converter. svgWidth is the output width of
// rendered SVGs; the height follows the declared aspect ratio, or equals the
// width when none is declared. Zero disables SVG rendering.
func NewPngConverterCommand(svgWidth int) *PngConverterCommand {
	return &PngConverterCommand{svgWidth: svgWidth}
}

func (c *PngConverterCommand) Name() string {
	return "PngConverterCommand"
}

func (c *PngConverterCommand) Execute(imageData []byte) ([]byte, error) {
	if hasCorrectPngSignature(imageData) {
		slog.Debug("PngConverterCommand: PNG detected; returning original bytes")
		return imageData, nil
	}

	if isSVGData(imageData) {
		return c.convertSVG(imageData)
	}

	if err := checkDecodeSize(imageData); err != nil {
		return nil, err
	}

	// Decode raster image (supports multiple formats via imported decoders)
	img, currentFormat, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	slog.Debug("PngConverterCommand: decoded raster image",
		"current_format", currentFormat,
		"orig_width", img.Bounds().Dx(),
		"orig_height", img.Bounds().Dy())

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image to PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func (c *PngConverterCommand) convertSVG(imageData []byte) ([]byte, error) {
	if c.svgWidth <= 0 {
		return nil, fmt.Errorf("SVG width not set; cannot render SVG")
	}

	w, h := c.svgWidth, c.svgWidth
	if declaredW, declaredH, ok := parseSvgExplicitSize(imageData); ok {
		h = int(int64(c.svgWidth) * int64(declaredH) / int64(declaredW))
		if h < 1 {
			h = 1
		}
	} else {
		slog.Debug("PngConverterCommand: SVG lacks explicit size; rendering square", "width", w)
	}
	if err := checkPixels(w, h); err != nil {
		return nil, err
	}

	out, err := renderSVGToPNG(imageData, w, h)
	if err != nil {
		return nil, fmt.Errorf("failed to render SVG to PNG: %w", err)
	}
	return out, nil
}

// parseSvgExplicitSize attempts to extract width and height attributes from the SVG.
// Returns width, height, and ok=true if both are found and parseable.
func parseSvgExplicitSize(data []byte) (int, int, bool) {
	n := len(data)
	if n > 8192 {
		n = 8192
	}
	s := strings.ToLower(string(data[:n]))
	i := strings.Index(s, "<svg")
	if i < 0 {
		return 0, 0, false
	}
	j := strings.Index(s[i:], ">")
	if j < 0 {
		j = len(s)
	} else {
		j = i + j
	}
	tag := s[i:j]

	w, wOk := parseNumericAttr(tag, "width")
	h, hOk := parseNumericAttr(tag, "height")
	if wOk && hOk && w > 0 && h > 0 {
		return w, h, true
	}
	// viewBox is not treated as a pixel size
	return 0, 0, false
}

// parseNumericAttr extracts the leading numeric value of an attribute (e.g., width="123px").
func parseNumericAttr(tag, attr string) (int, bool) {
	pos := strings.Index(tag, " "+attr+"=")
	if pos < 0 {
		return 0, false
	}
	val := tag[pos+len(attr)+2:]
	if len(val) > 0 && (val[0] == '"' || val[0] == '\'') {
		quote := val[0]
		val = val[1:]
		if end := strings.IndexByte(val, quote); end >= 0 {
			val = val[:end]
		}
	}

	num := 0
	found := false
	for i := 0; i < len(val); i++ {
		ch := val[i]
		if ch >= '0' && ch <= '9' {
			found = true
			num = num*10 + int(ch-'0')
			if num > maxSvgDimension {
				return 0, false
			}
		} else {
			break
		}
	}
	if !found || num <= 0 {
		return 0, false
	}
	return num, true
}

// isSVGData performs a lightweight detection of SVG content from raw bytes.
func isSVGData(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	// Only inspect the first ~4KB for detection
	n := len(data)
	if n > 4096 {
		n = 4096
	}
	header := bytes.ToLower(bytes.TrimSpace(data[:n]))
	return bytes.Contains(header, []byte("<svg"))
}

// renderSVGToPNG renders an SVG byte slice into a PNG with the given target dimensions.
func renderSVGToPNG(svgData []byte, targetW, targetH int) ([]byte, error) {
	if targetW <= 0 || targetH <= 0 {
		return nil, fmt.Errorf("invalid target dimensions for SVG rendering: %dx%d", targetW, targetH)
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(svgData))
	if err != nil {
		return nil, fmt.Errorf("failed to parse SVG: %w", err)
	}
	icon.SetTarget(0, 0, float64(targetW), float64(targetH))

	// QR codes need a light background to stay readable
	dst := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(targetW, targetH, dst, dst.Bounds())
	dasher := rasterx.NewDasher(targetW, targetH, scanner)
	icon.Draw(dasher, 1.0)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("failed to encode rendered SVG as PNG: %w", err)
	}
	return buf.Bytes(), nil
}
