//go:build !nosvg

package images

import (
	"bytes"
	"fmt"
	"image"
	"math"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// maxSVGSide bounds each raster dimension so a bogus view box fails to
// decode instead of exhausting memory.
const maxSVGSide = 8192

// svgProbe is rasterized once before the backend is registered.
var svgProbe = []byte(`<svg xmlns="http://www.w3.org/2000/svg" width="2" height="2" viewBox="0 0 2 2"><rect width="2" height="2" fill="#000"/></svg>`)

func registerSVG(r *Registry) {
	if _, err := decodeSVG(svgProbe, DecodeOptions{}); err != nil {
		r.logger.Warn("SVG rasterizer unavailable; svg icons will not load", "error", err)
		return
	}
	r.Register("svg", decodeSVG)
}

// decodeSVG rasterizes at the requested size. When only one dimension is
// requested the other follows the view box aspect ratio.
func decodeSVG(data []byte, opts DecodeOptions) (*Surface, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse svg: %w", err)
	}
	w, h := svgTargetSize(icon.ViewBox.W, icon.ViewBox.H, opts)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("svg has no size")
	}
	if w > maxSVGSide || h > maxSVGSide {
		return nil, fmt.Errorf("svg raster %dx%d exceeds %dx%d", w, h, maxSVGSide, maxSVGSide)
	}

	icon.SetTarget(0, 0, float64(w), float64(h))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	raster := rasterx.NewDasher(w, h, scanner)
	icon.Draw(raster, 1.0)
	return &Surface{img: img}, nil
}

func svgTargetSize(vw, vh float64, opts DecodeOptions) (int, int) {
	if !finiteSide(vw) || !finiteSide(vh) {
		return 0, 0
	}
	switch {
	case opts.Width > 0 && opts.Height > 0:
		return opts.Width, opts.Height
	case opts.Width > 0 && vw > 0:
		return opts.Width, int(math.Ceil(float64(opts.Width) * vh / vw))
	case opts.Height > 0 && vh > 0:
		return int(math.Ceil(float64(opts.Height) * vw / vh)), opts.Height
	default:
		return int(math.Ceil(vw)), int(math.Ceil(vh))
	}
}

// finiteSide rejects NaN, infinities and sizes that overflow int conversion.
func finiteSide(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= math.MaxInt32
}
