package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// createTestImage writes a solid PNG into a temp dir and returns its path.
func createTestImage(t *testing.T, width, height int, c color.Color) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test-image.png")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, createInMemoryImage(width, height, c)); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

// createTestGIF encodes a two-frame animation: a red frame, then a blue
// square drawn over its top-left corner.
func createTestGIF(t *testing.T) []byte {
	t.Helper()
	pal := color.Palette{color.RGBA{255, 0, 0, 255}, color.RGBA{0, 0, 255, 255}}
	red := image.NewPaletted(image.Rect(0, 0, 4, 4), pal)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			red.Set(x, y, color.RGBA{255, 0, 0, 255})
		}
	}
	blue := image.NewPaletted(image.Rect(0, 0, 2, 2), pal)
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			blue.Set(x, y, color.RGBA{0, 0, 255, 255})
		}
	}

	var buf bytes.Buffer
	err := gif.EncodeAll(&buf, &gif.GIF{
		Image:     []*image.Paletted{red, blue},
		Delay:     []int{10, 20},
		LoopCount: 3,
		Config:    image.Config{ColorModel: pal, Width: 4, Height: 4},
	})
	if err != nil {
		t.Fatalf("failed to encode gif: %v", err)
	}
	return buf.Bytes()
}

func TestNewImageCache(t *testing.T) {
	cache := NewImageCache()
	if cache == nil {
		t.Fatal("NewImageCache returned nil")
	}
	if cache.images == nil {
		t.Fatal("NewImageCache did not initialize images map")
	}
}

func TestImageCache_Load(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 100, 80, color.RGBA{255, 0, 0, 255})

	d1, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	bounds := d1.Image().Bounds()
	if bounds.Dx() != 100 || bounds.Dy() != 80 {
		t.Errorf("unexpected dimensions: got %dx%d, want 100x80", bounds.Dx(), bounds.Dy())
	}
	if d1.Format != "png" {
		t.Errorf("Format: got %s, want png", d1.Format)
	}
	if d1.Animated() {
		t.Error("a PNG should not be animated")
	}
	if d1.Source != imgPath {
		t.Errorf("Source: got %s, want %s", d1.Source, imgPath)
	}

	d2, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if d1 != d2 {
		t.Error("second Load did not return cached image")
	}
}

func TestImageCache_Load_NonExistent(t *testing.T) {
	cache := NewImageCache()
	if _, err := cache.Load("/nonexistent/path/to/image.png"); err == nil {
		t.Error("Load should fail for non-existent file")
	}
}

func TestImageCache_Load_InvalidImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-an-image.png")
	if err := os.WriteFile(path, []byte("this is not an image"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	cache := NewImageCache()
	if _, err := cache.Load(path); err == nil {
		t.Error("Load should fail for invalid image data")
	}
}

func TestImageCache_Load_URL(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, createPatternImage(6, 6)); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}

	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pattern.png" {
			http.NotFound(w, r)
			return
		}
		requests++
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()

	cache := NewImageCache()
	d, err := cache.Load(srv.URL + "/pattern.png")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if d.Image().Bounds().Dx() != 6 {
		t.Errorf("width: got %d, want 6", d.Image().Bounds().Dx())
	}
	if _, err := cache.Load(srv.URL + "/pattern.png"); err != nil {
		t.Fatalf("cached Load failed: %v", err)
	}
	if requests != 1 {
		t.Errorf("requests: got %d, want 1", requests)
	}

	if _, err := cache.Load(srv.URL + "/missing.png"); err == nil {
		t.Error("Load should fail on a 404")
	}
}

func TestImageCache_EvictAndClear(t *testing.T) {
	cache := NewImageCache()
	path1 := createTestImage(t, 10, 10, color.White)
	path2 := createTestImage(t, 10, 10, color.Black)

	for _, p := range []string{path1, path2} {
		if _, err := cache.Load(p); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
	}

	cache.Evict(path1)
	cache.mu.RLock()
	_, has1 := cache.images[path1]
	_, has2 := cache.images[path2]
	cache.mu.RUnlock()
	if has1 || !has2 {
		t.Errorf("after Evict: has1=%v has2=%v, want false true", has1, has2)
	}

	cache.Clear()
	cache.mu.RLock()
	n := len(cache.images)
	cache.mu.RUnlock()
	if n != 0 {
		t.Errorf("after Clear: got %d entries, want 0", n)
	}
}

func TestImageCache_ConcurrentAccess(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 50, 50, color.RGBA{0, 255, 0, 255})

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Load(imgPath); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Load failed: %v", err)
	}
}

func TestDecode_AnimatedGIF(t *testing.T) {
	d, err := Decode(createTestGIF(t))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if d.Format != "gif" {
		t.Errorf("Format: got %s, want gif", d.Format)
	}
	if !d.Animated() || len(d.Frames) != 2 {
		t.Fatalf("frames: got %d, want 2", len(d.Frames))
	}
	if d.LoopCount != 3 {
		t.Errorf("LoopCount: got %d, want 3", d.LoopCount)
	}
	if len(d.Delays) != 2 || d.Delays[0] != 10 || d.Delays[1] != 20 {
		t.Errorf("Delays: got %v, want [10 20]", d.Delays)
	}

	// The second frame is composited over the first.
	second := d.Frames[1]
	if got := second.NRGBAAt(0, 0); got != (color.NRGBA{0, 0, 255, 255}) {
		t.Errorf("frame 2 at (0,0): got %v, want blue", got)
	}
	if got := second.NRGBAAt(3, 3); got != (color.NRGBA{255, 0, 0, 255}) {
		t.Errorf("frame 2 at (3,3): got %v, want red carried from frame 1", got)
	}
}

// webpLossless1x1 is a one-pixel lossless WebP file.
const webpLossless1x1 = "UklGRhoAAABXRUJQVlA4TA0AAAAvAAAAEAcQERGIiP4HAA=="

func TestDecode_WebP(t *testing.T) {
	data, err := base64.StdEncoding.DecodeString(webpLossless1x1)
	if err != nil {
		t.Fatalf("bad fixture: %v", err)
	}

	d, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if d.Format != "webp" {
		t.Errorf("Format: got %q, want webp", d.Format)
	}
	if len(d.Frames) != 1 {
		t.Errorf("Frames: got %d, want 1", len(d.Frames))
	}
	if b := d.Image().Bounds(); b.Dx() != 1 || b.Dy() != 1 {
		t.Errorf("dimensions: got %dx%d, want 1x1", b.Dx(), b.Dy())
	}
}

func TestLoadImageInfo(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 200, 150, color.RGBA{128, 128, 128, 255})

	info, err := LoadImageInfo(cache, imgPath)
	if err != nil {
		t.Fatalf("LoadImageInfo failed: %v", err)
	}
	if info.Width != 200 || info.Height != 150 {
		t.Errorf("dimensions: got %dx%d, want 200x150", info.Width, info.Height)
	}
	if info.Format != "png" {
		t.Errorf("Format: got %s, want png", info.Format)
	}
	if info.Frames != 1 {
		t.Errorf("Frames: got %d, want 1", info.Frames)
	}
	if info.HasAlpha {
		t.Error("an opaque PNG should report no alpha")
	}
	if info.SizeBytes <= 0 {
		t.Errorf("SizeBytes should be positive, got %d", info.SizeBytes)
	}
}

func TestGetDimensions(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 320, 240, color.White)

	dims, err := GetDimensions(cache, imgPath)
	if err != nil {
		t.Fatalf("GetDimensions failed: %v", err)
	}
	if dims.Width != 320 || dims.Height != 240 {
		t.Errorf("got %dx%d, want 320x240", dims.Width, dims.Height)
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"out.png", "png"},
		{"out.JPG", "jpeg"},
		{"out.jpeg", "jpeg"},
		{"anim.gif", "gif"},
		{"noext", "png"},
	}
	for _, tt := range tests {
		if got := FormatFromPath(tt.path); got != tt.want {
			t.Errorf("FormatFromPath(%q): got %s, want %s", tt.path, got, tt.want)
		}
	}
}

func TestIsURL(t *testing.T) {
	if !IsURL("https://example.com/a.png") || !IsURL("http://example.com/a.png") {
		t.Error("http(s) sources should be URLs")
	}
	if IsURL("/tmp/a.png") || IsURL("ftp://example.com/a.png") {
		t.Error("paths and other schemes should not be URLs")
	}
}
