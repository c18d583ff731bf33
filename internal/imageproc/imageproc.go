package imageproc

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var ErrNotImage = errors.New("body is not a supported image")

// ErrHEICUnsupported is returned for HEIC sources on builds without goheif.
var ErrHEICUnsupported = errors.New("heic photos are not supported in this build")

var photoContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
	"image/bmp":  true,
	"image/tiff": true,
	"image/heic": true,
	"image/heif": true,
}

type SourceMeta struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
}

// Rendition is one re-encoded JPEG derived from a source photo.
type Rendition struct {
	Data   []byte
	Width  int
	Height int
}

func IsPhotoContentType(contentType string) bool {
	ct := strings.TrimSpace(strings.ToLower(contentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return photoContentTypes[ct]
}

// SniffContentType trusts the bytes over any header the origin sent.
func SniffContentType(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	if isHeifFamily(data) {
		return "image/heic"
	}
	sample := data
	if len(sample) > 512 {
		sample = sample[:512]
	}
	return http.DetectContentType(sample)
}

func isHeifFamily(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heix", "hevc", "hevx", "mif1", "msf1", "heif":
		return true
	}
	return false
}

func decode(data []byte) (image.Image, SourceMeta, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if !isHeifFamily(data) {
			return nil, SourceMeta{}, err
		}
		heic, heicErr := decodeHEIC(data)
		if heicErr != nil {
			return nil, SourceMeta{}, heicErr
		}
		img, format = heic, "heic"
	}

	if strings.EqualFold(format, "jpeg") {
		img = applyOrientation(img, data)
	}

	b := img.Bounds()
	return img, SourceMeta{Width: b.Dx(), Height: b.Dy(), Format: format}, nil
}

// applyOrientation honours the EXIF orientation tag; missing or unreadable
// EXIF leaves the image as decoded.
func applyOrientation(img image.Image, data []byte) image.Image {
	ex, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return img
	}
	tag, err := ex.Get(exif.Orientation)
	if err != nil {
		return img
	}
	orient, err := tag.Int(0)
	if err != nil {
		return img
	}
	switch orient {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	}
	return img
}

func encode(img image.Image, quality int) (Rendition, error) {
	if quality <= 0 || quality > 100 {
		quality = 82
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return Rendition{}, err
	}
	b := img.Bounds()
	return Rendition{Data: buf.Bytes(), Width: b.Dx(), Height: b.Dy()}, nil
}

// FitInside scales the photo down so neither side exceeds maxSide.
func FitInside(data []byte, maxSide int, quality int) (Rendition, SourceMeta, error) {
	if maxSide <= 0 {
		return Rendition{}, SourceMeta{}, errors.New("maxSide must be > 0")
	}
	img, meta, err := decode(data)
	if err != nil {
		return Rendition{}, SourceMeta{}, err
	}
	out, err := encode(imaging.Fit(img, maxSide, maxSide, imaging.Lanczos), quality)
	return out, meta, err
}

// CoverSquare crops the centre of the photo into a size x size thumbnail.
func CoverSquare(data []byte, size int, quality int) (Rendition, SourceMeta, error) {
	if size <= 0 {
		return Rendition{}, SourceMeta{}, errors.New("size must be > 0")
	}
	img, meta, err := decode(data)
	if err != nil {
		return Rendition{}, SourceMeta{}, err
	}
	out, err := encode(imaging.Fill(img, size, size, imaging.Center, imaging.Lanczos), quality)
	return out, meta, err
}
