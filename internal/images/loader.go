package images

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"log/slog"
	"path/filepath"
	"strings"
)

// ErrNoSearchDirs is returned by icon lookups on a loader without search
// directories.
var ErrNoSearchDirs = errors.New("no icon search directories configured")

// LoadingError reports icons that could not be loaded when a complete set
// is required.
type LoadingError struct {
	Missing []string
}

func (e *LoadingError) Error() string {
	return fmt.Sprintf("failed to load icons: %s", strings.Join(e.Missing, ", "))
}

// LoadedImage is the outcome of loading one image. When Success is false
// Surface and Pattern are nil and Width and Height are zero.
type LoadedImage struct {
	Success bool
	Name    string
	Path    string
	Surface *Surface
	Pattern *Pattern
	Width   int
	Height  int
}

// LoadOptions tune a single load. Zero Width or Height fall back to the
// loader default and then to the intrinsic size. An empty Name is derived
// from the file name.
type LoadOptions struct {
	Width  int
	Height int
	Name   string
	// Theta rotates the pattern, in degrees.
	Theta float64
}

// Loader loads images by path and icons by name.
type Loader struct {
	dirs     []string
	width    int
	height   int
	registry *Registry
	logger   *slog.Logger
	cache    *surfaceCache
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithSearchDirs sets the icon directories, highest priority first.
func WithSearchDirs(dirs ...string) LoaderOption {
	return func(l *Loader) {
		l.dirs = append([]string(nil), dirs...)
	}
}

// WithSize sets the default output size for every load.
func WithSize(width, height int) LoaderOption {
	return func(l *Loader) {
		l.width = width
		l.height = height
	}
}

// WithRegistry replaces the process-wide backend registry.
func WithRegistry(r *Registry) LoaderOption {
	return func(l *Loader) {
		l.registry = r
	}
}

// WithLogger sets the logger used for load warnings.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithCacheSize keeps up to size decoded surfaces in memory. Zero disables
// caching.
func WithCacheSize(size int) LoaderOption {
	return func(l *Loader) {
		l.cache = newSurfaceCache(size)
	}
}

// NewLoader creates a loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	if l.registry == nil {
		l.registry = DefaultRegistry()
	}
	return l
}

// SearchDirs returns the icon directories in priority order.
func (l *Loader) SearchDirs() []string {
	return append([]string(nil), l.dirs...)
}

// Registry returns the backend registry in use.
func (l *Loader) Registry() *Registry {
	return l.registry
}

// Load decodes the image at path. Failures are reported in the result and
// logged, never returned.
func (l *Loader) Load(path string, opts LoadOptions) LoadedImage {
	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = l.width
	}
	if height <= 0 {
		height = l.height
	}
	name := opts.Name

	if path == "" {
		l.logger.Warn("Can't load image with no given path", "name", name)
		return LoadedImage{Name: name, Path: path}
	}
	if name == "" {
		name = stem(path)
	}

	surface, err := l.surface(path, width, height)
	if err != nil {
		var backendErr *BackendError
		var decodeErr *DecodeError
		switch {
		case errors.As(err, &backendErr):
			l.logger.Warn("Can't load image with current backends", "path", path, "name", name)
		case errors.As(err, &decodeErr):
			l.logger.Warn("Can't decode image", "path", path, "name", name, "error", decodeErr.Err)
		case errors.Is(err, fs.ErrNotExist):
			l.logger.Warn("Couldn't find image", "path", path, "name", name)
		default:
			l.logger.Warn("Couldn't open image", "path", path, "name", name, "error", err)
		}
		return LoadedImage{Name: name, Path: path}
	}

	w, h := OutputDimensions(surface, width, height)
	return LoadedImage{
		Success: true,
		Name:    name,
		Path:    path,
		Surface: surface,
		Pattern: NewPattern(surface, width, height, opts.Theta),
		Width:   w,
		Height:  h,
	}
}

func (l *Loader) surface(path string, width, height int) (*Surface, error) {
	key := surfaceKey{path: filepath.Clean(path), width: width, height: height}
	if s, ok := l.cache.get(key); ok {
		return s, nil
	}
	s, err := l.registry.DecodeByPath(path, DecodeOptions{Width: width, Height: height})
	if err != nil {
		return nil, err
	}
	l.cache.add(key, s)
	return s, nil
}

// Paths loads each path in order.
func (l *Loader) Paths(paths []string, width, height int) []LoadedImage {
	out := make([]LoadedImage, 0, len(paths))
	for _, p := range paths {
		out = append(out, l.Load(p, LoadOptions{Width: width, Height: height}))
	}
	return out
}

// FilterPaths lazily yields the paths that have a registered backend.
func (l *Loader) FilterPaths(paths []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, p := range paths {
			if !l.registry.Supports(p) {
				l.logger.Info("No backend found", "path", p)
				continue
			}
			if !yield(p) {
				return
			}
		}
	}
}

// Find returns the best candidate path for each name: the first file with a
// registered suffix, searching directories in priority order. Names with no
// candidate map to "".
func (l *Loader) Find(names []string) (map[string]string, error) {
	if len(l.dirs) == 0 {
		return nil, ErrNoSearchDirs
	}
	merged, err := MergeAcrossDirectories(l.dirs, names, false)
	if err != nil {
		return nil, fmt.Errorf("search icon directories: %w", err)
	}
	out := make(map[string]string, len(names))
	for _, name := range names {
		out[name] = ""
		for p := range l.FilterPaths(merged[name]) {
			out[name] = p
			break
		}
	}
	return out, nil
}

// Icons loads one image per name, in order.
func (l *Loader) Icons(names []string, width, height int) ([]LoadedImage, error) {
	return l.IconsWithOptions(names, LoadOptions{Width: width, Height: height})
}

// IconsWithOptions is Icons with full load options applied to every name.
// opts.Name is ignored; each image is named after its logical name.
func (l *Loader) IconsWithOptions(names []string, opts LoadOptions) ([]LoadedImage, error) {
	chosen, err := l.Find(names)
	if err != nil {
		return nil, err
	}
	out := make([]LoadedImage, 0, len(names))
	for _, name := range names {
		opts.Name = name
		out = append(out, l.Load(chosen[name], opts))
	}
	return out, nil
}

// RequireIcons is Icons for callers that need every icon. Any failure
// yields a *LoadingError listing the missing names.
func (l *Loader) RequireIcons(names []string, width, height int) ([]LoadedImage, error) {
	return l.RequireIconsWithOptions(names, LoadOptions{Width: width, Height: height})
}

// RequireIconsWithOptions is RequireIcons with full load options.
func (l *Loader) RequireIconsWithOptions(names []string, opts LoadOptions) ([]LoadedImage, error) {
	loaded, err := l.IconsWithOptions(names, opts)
	if err != nil {
		return nil, err
	}
	var missing []string
	for _, img := range loaded {
		if !img.Success {
			missing = append(missing, img.Name)
		}
	}
	if len(missing) > 0 {
		return loaded, &LoadingError{Missing: missing}
	}
	return loaded, nil
}

// InvalidatePath drops cached surfaces for path.
func (l *Loader) InvalidatePath(path string) int {
	return l.cache.invalidate(filepath.Clean(path))
}

// Purge drops every cached surface.
func (l *Loader) Purge() {
	l.cache.purge()
}

// CachedSurfaces reports how many decoded surfaces are cached.
func (l *Loader) CachedSurfaces() int {
	return l.cache.len()
}
