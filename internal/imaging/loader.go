package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// Decoded is an image read from a file or URL.
//
// Still images have a single entry in Frames. Animated GIFs have one fully
// composited frame per entry, so every frame can be processed on its own.
type Decoded struct {
	// Source is the path or URL the image was read from.
	Source string

	// Format is the decoder name reported by image.Decode: "png", "jpeg",
	// "gif", or "webp".
	Format string

	// Frames holds the decoded frames, all of the same size.
	Frames []*image.NRGBA

	// Delays holds per-frame delays in 100ths of a second (GIF only).
	Delays []int

	// LoopCount is the GIF loop count (0 loops forever).
	LoopCount int

	// Size is the encoded size in bytes.
	Size int64
}

// Image returns the first frame.
func (d *Decoded) Image() *image.NRGBA { return d.Frames[0] }

// Animated reports whether the image has more than one frame.
func (d *Decoded) Animated() bool { return len(d.Frames) > 1 }

// ImageCache provides thread-safe caching of decoded images keyed by path or
// URL.
//
// Cached images remain in memory until removed via Evict() or Clear(). The
// MCP server keeps one cache for its whole lifetime; the watch loop evicts
// the input whenever it changes on disk.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]*Decoded
	client *http.Client
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]*Decoded),
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// IsURL reports whether source names an HTTP(S) resource rather than a file.
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Load retrieves an image from the cache or reads and decodes it.
//
// source may be a file path or an http:// or https:// URL. Supported formats
// are PNG, JPEG, and GIF; every frame of an animated GIF is decoded.
//
// # Errors
//
//   - Returns error if the file does not exist or the URL cannot be fetched
//   - Returns error if the data is not a valid PNG, JPEG, or GIF image
func (c *ImageCache) Load(source string) (*Decoded, error) {
	c.mu.RLock()
	if d, ok := c.images[source]; ok {
		c.mu.RUnlock()
		return d, nil
	}
	c.mu.RUnlock()

	data, err := c.read(source)
	if err != nil {
		return nil, err
	}

	d, err := Decode(data)
	if err != nil {
		return nil, err
	}
	d.Source = source

	c.mu.Lock()
	c.images[source] = d
	c.mu.Unlock()

	return d, nil
}

func (c *ImageCache) read(source string) ([]byte, error) {
	if !IsURL(source) {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("failed to open image: %w", err)
		}
		return data, nil
	}

	resp, err := c.client.Get(source)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("failed to fetch image: %s returned %s", source, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image body: %w", err)
	}
	return data, nil
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]*Decoded)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache. If source is not cached,
// this method does nothing.
func (c *ImageCache) Evict(source string) {
	c.mu.Lock()
	delete(c.images, source)
	c.mu.Unlock()
}

// Decode decodes a still or animated image from memory.
func Decode(data []byte) (*Decoded, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	if format == "gif" {
		g, err := gif.DecodeAll(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode image: %w", err)
		}
		if len(g.Image) == 0 {
			return nil, fmt.Errorf("failed to decode image: gif has no frames")
		}
		return &Decoded{
			Format:    format,
			Frames:    compositeFrames(g),
			Delays:    append([]int(nil), g.Delay...),
			LoopCount: g.LoopCount,
			Size:      int64(len(data)),
		}, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return &Decoded{
		Format: format,
		Frames: []*image.NRGBA{imaging.Clone(img)},
		Size:   int64(len(data)),
	}, nil
}

// compositeFrames renders each GIF frame onto a running canvas, honoring the
// frame disposal methods, and returns a snapshot per frame.
func compositeFrames(g *gif.GIF) []*image.NRGBA {
	bounds := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if bounds.Empty() && len(g.Image) > 0 {
		bounds = g.Image[0].Bounds()
	}

	canvas := image.NewNRGBA(bounds)
	frames := make([]*image.NRGBA, 0, len(g.Image))

	for i, frame := range g.Image {
		var previous *image.NRGBA
		disposal := byte(0)
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}
		if disposal == gif.DisposalPrevious {
			previous = imaging.Clone(canvas)
		}

		draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)
		frames = append(frames, imaging.Clone(canvas))

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, frame.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			canvas = previous
		}
	}
	return frames
}

// ImageInfo contains metadata about a loaded image.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the decoded format: "png", "jpeg", or "gif".
	Format string `json:"format"`

	// Frames is the number of frames (1 for still images).
	Frames int `json:"frames"`

	// HasAlpha indicates whether any pixel is not fully opaque.
	HasAlpha bool `json:"has_alpha"`

	// SizeBytes is the encoded size in bytes.
	SizeBytes int64 `json:"size_bytes"`
}

// LoadImageInfo loads an image into the cache and returns its metadata.
func LoadImageInfo(cache *ImageCache, source string) (*ImageInfo, error) {
	d, err := cache.Load(source)
	if err != nil {
		return nil, err
	}

	bounds := d.Image().Bounds()
	return &ImageInfo{
		Width:     bounds.Dx(),
		Height:    bounds.Dy(),
		Format:    d.Format,
		Frames:    len(d.Frames),
		HasAlpha:  !d.Image().Opaque(),
		SizeBytes: d.Size,
	}, nil
}

// DimensionsResult contains the width and height of an image.
type DimensionsResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// GetDimensions returns the dimensions of an image without other metadata.
func GetDimensions(cache *ImageCache, source string) (*DimensionsResult, error) {
	d, err := cache.Load(source)
	if err != nil {
		return nil, err
	}

	bounds := d.Image().Bounds()
	return &DimensionsResult{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}

// FormatFromPath maps a file extension to a lower-case format name such as
// "png" or "gif". Unknown extensions map to "png", matching Save.
func FormatFromPath(path string) string {
	f, err := imaging.FormatFromFilename(path)
	if err != nil {
		return "png"
	}
	return strings.ToLower(f.String())
}
