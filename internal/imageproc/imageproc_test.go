package imageproc

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func samplePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestFitInside(t *testing.T) {
	out, meta, err := FitInside(samplePNG(t, 200, 100), 50, 80)
	if err != nil {
		t.Fatalf("fit inside: %v", err)
	}
	if meta.Width != 200 || meta.Height != 100 || meta.Format != "png" {
		t.Fatalf("unexpected source meta %+v", meta)
	}
	if out.Width != 50 || out.Height != 25 {
		t.Fatalf("expected 50x25, got %dx%d", out.Width, out.Height)
	}
	if SniffContentType(out.Data) != "image/jpeg" {
		t.Fatalf("expected jpeg output")
	}
}

func TestCoverSquare(t *testing.T) {
	out, _, err := CoverSquare(samplePNG(t, 120, 60), 40, 80)
	if err != nil {
		t.Fatalf("cover square: %v", err)
	}
	if out.Width != 40 || out.Height != 40 {
		t.Fatalf("expected 40x40, got %dx%d", out.Width, out.Height)
	}
}

func TestRejectsNonImage(t *testing.T) {
	if _, _, err := FitInside([]byte("<html></html>"), 50, 80); err == nil {
		t.Fatalf("expected decode error")
	}
	if _, _, err := FitInside(samplePNG(t, 10, 10), 0, 80); err == nil {
		t.Fatalf("expected error for zero size")
	}
}

func TestIsPhotoContentType(t *testing.T) {
	cases := map[string]bool{
		"image/jpeg":               true,
		"IMAGE/PNG":                true,
		"image/webp; charset=x":    true,
		"text/html; charset=utf-8": false,
		"image/svg+xml":            false,
		"":                         false,
	}
	for ct, expected := range cases {
		if got := IsPhotoContentType(ct); got != expected {
			t.Fatalf("%q: expected %v, got %v", ct, expected, got)
		}
	}
}

func TestTruncatedHEICIsSniffedAndRejected(t *testing.T) {
	data := []byte("\x00\x00\x00\x10ftypheic\x00\x00\x00\x00")
	if got := SniffContentType(data); got != "image/heic" {
		t.Fatalf("expected image/heic, got %q", got)
	}
	if _, _, err := FitInside(data, 50, 80); err == nil {
		t.Fatalf("expected truncated heic to fail decoding")
	}
}
