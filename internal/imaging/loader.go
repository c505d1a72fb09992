// Package imaging decodes wallpaper images once per path and produces
// per-output pre-scaled pixel buffers on demand, bounded by two size-2 LRU
// caches as described for the engine's image loader.
package imaging

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/intuitionamiga/driftwall/internal/errs"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// TargetMode is the (width, height) an image is being scaled for; it doubles
// as the key for the scaled-buffer cache alongside the source path.
type TargetMode struct {
	Width  int
	Height int
}

type scaledKey struct {
	path    string
	mode    TargetMode
	scaling Scaling
	filter  Filter
}

// Loader decodes images and serves pre-scaled buffers from two bounded
// caches: one of decoded images keyed by path, one of scaled RGB buffers
// keyed by (path, mode, scaling, filter).
type Loader struct {
	decoded *lruCache[string, image.Image]
	scaled  *lruCache[scaledKey, *PixelBuffer]
}

// NewLoader constructs an empty Loader.
func NewLoader() *Loader {
	return &Loader{
		decoded: newLRUCache[string, image.Image](),
		scaled:  newLRUCache[scaledKey, *PixelBuffer](),
	}
}

// Load decodes (or reuses a cached decode of) path, scales it for mode under
// the given Scaling/Filter, and returns the resulting buffer. The returned
// buffer is owned by the cache and must be treated as read-only; it remains
// valid until evicted by a later Load call for a third distinct key.
func (l *Loader) Load(path string, mode TargetMode, scaling Scaling, filter Filter) (*PixelBuffer, error) {
	key := scaledKey{path: path, mode: mode, scaling: scaling, filter: filter}
	if buf, ok := l.scaled.get(key); ok {
		return buf, nil
	}

	img, err := l.decode(path)
	if err != nil {
		return nil, err
	}

	buf := Scale(img, mode.Width, mode.Height, scaling, filter)
	l.scaled.put(key, buf)
	return buf, nil
}

func (l *Loader) decode(path string) (image.Image, error) {
	if img, ok := l.decoded.get(path); ok {
		return img, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.System(errs.NotAFile, "imaging.decode", path, err)
	}

	img, err := decodeBytes(raw)
	if err != nil {
		return nil, err
	}

	l.decoded.put(path, img)
	return img, nil
}

func decodeBytes(raw []byte) (image.Image, error) {
	if sniffFarbfeld(raw) {
		img, err := decodeFarbfeld(bytes.NewReader(raw))
		if err != nil {
			return nil, err
		}
		return img, nil
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err == nil {
		return img, nil
	}

	// When the generic decode fails, the bytes are retried against the WebP
	// decoder explicitly before giving up.
	if img, werr := webp.Decode(bytes.NewReader(raw)); werr == nil {
		return img, nil
	}

	if format == "" {
		return nil, errs.Image(errs.Unsupported, "imaging.decodeBytes", "unrecognized image format", err)
	}
	return nil, errs.Image(errs.CouldNotDecode, "imaging.decodeBytes", format, err)
}
