package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"
)

// sniffLen is how many leading bytes are inspected to detect the format.
const sniffLen = 3072

// AllowedImageTypes maps accepted image content types to the extension
// used for stored objects.
var AllowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

var ErrUnsupportedImage = errors.New("unsupported image type")

// DetectImage sniffs the content type of r from its leading bytes. The
// returned reader yields the full content, sniffed bytes included.
func DetectImage(r io.Reader) (string, io.Reader, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", nil, fmt.Errorf("read image: %w", err)
	}
	head = head[:n]

	detected := mimetype.Detect(head)
	for contentType := range AllowedImageTypes {
		if detected.Is(contentType) {
			return contentType, io.MultiReader(bytes.NewReader(head), r), nil
		}
	}

	return "", nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, detected.String())
}
