package imageprocessing

// Command defines the interface for all image processing commands
type Command interface {
	Name() string
	Execute(imageData []byte) ([]byte, error)
}
