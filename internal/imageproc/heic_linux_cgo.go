//go:build linux && cgo

package imageproc

import (
	"bytes"
	"fmt"
	"image"

	"github.com/jdeng/goheif"
)

// decodeHEIC decodes an iPhone-style HEIC source photo so Decode can treat it
// like any other format before the mirror re-encodes it as JPEG.
func decodeHEIC(data []byte) (image.Image, error) {
	img, err := goheif.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode heic source photo: %w", err)
	}
	return img, nil
}
