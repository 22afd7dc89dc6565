package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodeJPEG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{200, 40, 40, 255})
		}
	}
	var buf bytes.Buffer
	jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

func encodeTransparentPNG(w, h int) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

func TestNormalizeJPEG(t *testing.T) {
	photo, err := Normalize(bytes.NewReader(encodeJPEG(100, 80)))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if photo.MIME != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %s", photo.MIME)
	}
	if photo.Width != 100 || photo.Height != 80 {
		t.Errorf("small image should keep its size, got %dx%d", photo.Width, photo.Height)
	}
}

func TestNormalizeFlattensTransparency(t *testing.T) {
	photo, err := Normalize(bytes.NewReader(encodeTransparentPNG(10, 10)))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	img, err := jpeg.Decode(bytes.NewReader(photo.Data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	r, g, b, _ := img.At(5, 5).RGBA()
	// A fully transparent pixel must come out (near) white, not black.
	if r>>8 < 240 || g>>8 < 240 || b>>8 < 240 {
		t.Errorf("expected white background, got rgb(%d,%d,%d)", r>>8, g>>8, b>>8)
	}
}

func TestNormalizeDownscale(t *testing.T) {
	photo, err := Normalize(bytes.NewReader(encodeJPEG(2048, 1024)))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if photo.Width != MaxDimension || photo.Height != MaxDimension/2 {
		t.Errorf("expected %dx%d, got %dx%d", MaxDimension, MaxDimension/2, photo.Width, photo.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(photo.Data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if img.Bounds().Dx() != photo.Width {
		t.Errorf("reported width %d does not match encoded %d", photo.Width, img.Bounds().Dx())
	}
}

func TestNormalizeRejectsUnsupported(t *testing.T) {
	for name, data := range map[string][]byte{
		"text": []byte("not an image"),
		"gif":  []byte("GIF89a..."),
	} {
		_, err := Normalize(bytes.NewReader(data))
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("%s: expected ErrUnsupportedFormat, got %v", name, err)
		}
	}
}

func TestFit(t *testing.T) {
	tests := []struct {
		w, h, limit  int
		wantW, wantH int
	}{
		{50, 50, 100, 50, 50},
		{200, 100, 100, 100, 50},
		{100, 400, 100, 25, 100},
		{5000, 1, 100, 100, 1},
	}
	for _, tt := range tests {
		w, h := fit(tt.w, tt.h, tt.limit)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("fit(%d, %d, %d) = %dx%d, want %dx%d", tt.w, tt.h, tt.limit, w, h, tt.wantW, tt.wantH)
		}
	}
}
