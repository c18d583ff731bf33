//go:build !linux || !cgo

package imageproc

import (
	"image"
)

// decodeHEIC reports HEIC sources as unsupported on builds without libde265,
// so the mirror fails those photos instead of storing them.
func decodeHEIC(_ []byte) (image.Image, error) {
	return nil, ErrHEICUnsupported
}
