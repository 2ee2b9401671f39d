//go:build nosvg

package images

func registerSVG(r *Registry) {
	r.logger.Warn("built without SVG support; svg icons will not load")
}
