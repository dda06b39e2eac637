package imageprocessing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vincent-petithory/dataurl"
)

var ErrInvalidDataURL = errors.New("invalid data url")

// EncodeDataURL returns a base64 data URI carrying the given media type.
func EncodeDataURL(data []byte, mediaType string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty payload", ErrInvalidDataURL)
	}
	if mediaType == "" {
		return "", fmt.Errorf("%w: empty media type", ErrInvalidDataURL)
	}
	return dataurl.New(data, mediaType).String(), nil
}

// DecodeDataURL returns the payload and media type of a data URI.
func DecodeDataURL(value string) ([]byte, string, error) {
	du, err := dataurl.DecodeString(value)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	if len(du.Data) == 0 {
		return nil, "", fmt.Errorf("%w: empty payload", ErrInvalidDataURL)
	}
	return du.Data, du.MediaType.ContentType(), nil
}

func IsImageMediaType(mediaType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mediaType)), "image/")
}
