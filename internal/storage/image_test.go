package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	xwebp "golang.org/x/image/webp"
)

func samplePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 90, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestProcess_ResizesToWebP(t *testing.T) {
	out, err := Process(samplePNG(t, 200, 100), 50)
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	cfg, err := xwebp.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not webp: %v", err)
	}
	if cfg.Width != 50 || cfg.Height != 25 {
		t.Fatalf("expected 50x25, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestProcess_KeepsSmallImages(t *testing.T) {
	out, err := Process(samplePNG(t, 40, 30), 50)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	cfg, _ := xwebp.DecodeConfig(bytes.NewReader(out))
	if cfg.Width != 40 || cfg.Height != 30 {
		t.Fatalf("expected 40x30, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestProcess_RejectsGarbage(t *testing.T) {
	if _, err := Process([]byte("not an image"), 50); err != ErrNotAnImage {
		t.Fatalf("expected ErrNotAnImage, got %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore(64)
	ref, err := s.Save(context.Background(), "haircut", samplePNG(t, 10, 10))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasPrefix(ref, "photos/haircut-") || !strings.HasSuffix(ref, ".webp") {
		t.Fatalf("unexpected ref %q", ref)
	}
	if _, ok := s.Get(ref); !ok {
		t.Fatalf("expected stored object")
	}
	_ = s.Delete(context.Background(), ref)
	if _, ok := s.Get(ref); ok {
		t.Fatalf("expected object removed")
	}
}
