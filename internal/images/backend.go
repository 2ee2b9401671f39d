// Package images resolves icon names to files across prioritized search
// directories, decodes them through a registry of format backends and builds
// scaled, rotated patterns ready for painting.
package images

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// DecodeOptions carries the requested output size to backends that
// rasterize at a target size (SVG). Zero means "not requested".
type DecodeOptions struct {
	Width  int
	Height int
}

// DecodeFunc turns the raw bytes of a file into a surface.
type DecodeFunc func(data []byte, opts DecodeOptions) (*Surface, error)

// BackendError is returned when no registered backend handles a file suffix.
type BackendError struct {
	Path string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("no image backend found for %q", e.Path)
}

// Registry maps lower-case file extensions (without the dot) to decoders.
// It is populated during setup and read-only afterwards.
type Registry struct {
	backends map[string]DecodeFunc
	logger   *slog.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		backends: make(map[string]DecodeFunc),
		logger:   logger,
	}
}

// NewDefaultRegistry registers every built-in backend. PNG is always
// available; SVG is added only when its rasterizer initializes.
func NewDefaultRegistry(logger *slog.Logger) *Registry {
	r := NewRegistry(logger)
	r.Register("png", decodeWith(png.Decode))
	r.Register("gif", decodeWith(gif.Decode))
	r.Register("jpg", decodeWith(jpeg.Decode))
	r.Register("jpeg", decodeWith(jpeg.Decode))
	r.Register("bmp", decodeWith(bmp.Decode))
	r.Register("tif", decodeWith(tiff.Decode))
	r.Register("tiff", decodeWith(tiff.Decode))
	r.Register("webp", decodeWith(webp.Decode))
	registerSVG(r)
	return r
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	return NewDefaultRegistry(slog.Default())
})

// DefaultRegistry returns the process-wide registry built on first use.
func DefaultRegistry() *Registry {
	return defaultRegistry()
}

// Register adds or replaces the decoder for ext.
func (r *Registry) Register(ext string, fn DecodeFunc) {
	ext = normalizeExt(ext)
	if ext == "" || fn == nil {
		return
	}
	r.backends[ext] = fn
}

// Backends returns a copy of the extension to decoder mapping.
func (r *Registry) Backends() map[string]DecodeFunc {
	out := make(map[string]DecodeFunc, len(r.backends))
	for ext, fn := range r.backends {
		out[ext] = fn
	}
	return out
}

// Extensions lists the registered extensions in sorted order.
func (r *Registry) Extensions() []string {
	out := make([]string, 0, len(r.backends))
	for ext := range r.backends {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Lookup returns the decoder whose extension is a suffix of path.
func (r *Registry) Lookup(path string) (string, DecodeFunc, bool) {
	lower := strings.ToLower(path)
	for _, ext := range r.Extensions() {
		if strings.HasSuffix(lower, "."+ext) {
			return ext, r.backends[ext], true
		}
	}
	return "", nil, false
}

// Supports reports whether path has a registered suffix.
func (r *Registry) Supports(path string) bool {
	_, _, ok := r.Lookup(path)
	return ok
}

// DecodeByPath reads path and decodes it with the backend matching its
// suffix. A missing backend is a *BackendError; read failures are returned
// as the underlying *fs.PathError.
func (r *Registry) DecodeByPath(path string, opts DecodeOptions) (*Surface, error) {
	ext, fn, ok := r.Lookup(path)
	if !ok {
		err := &BackendError{Path: path}
		r.logger.Warn("No image backend found", "path", path)
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	surface, err := fn(data, opts)
	if err != nil {
		return nil, &DecodeError{Path: path, Ext: ext, Err: err}
	}
	return surface, nil
}

// DecodeError is returned when a backend rejects the file content.
type DecodeError struct {
	Path string
	Ext  string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s as %s: %v", e.Path, e.Ext, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func decodeWith(decode func(io.Reader) (image.Image, error)) DecodeFunc {
	return func(data []byte, _ DecodeOptions) (*Surface, error) {
		img, err := decode(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return NewSurface(img), nil
	}
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// stem returns the file name without its last word-character extension.
func stem(path string) string {
	base := filepath.Base(path)
	return extPattern.ReplaceAllString(base, "")
}
