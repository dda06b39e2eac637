package imageprocessing

// Thumbnail converts an uploaded image of any supported format to a PNG no
// wider than width.
func Thumbnail(imageData []byte, width int) ([]byte, error) {
	scale, err := NewScaleCommand(width)
	if err != nil {
		return nil, err
	}
	return NewCommandInvoker(NewPngConverterCommand(width), scale).Execute(imageData)
}
