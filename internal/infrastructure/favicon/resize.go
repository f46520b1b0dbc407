package favicon

import (
	"image"

	"golang.org/x/image/draw"
)

// scaleToFit shrinks img so that neither side exceeds maxDim, keeping the
// aspect ratio. Images already within bounds, or a non-positive maxDim,
// are returned unchanged. Uses CatmullRom interpolation.
func scaleToFit(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) || w == 0 || h == 0 {
		return img
	}

	dw, dh := maxDim, maxDim
	if w > h {
		dh = max(1, h*maxDim/w)
	} else if h > w {
		dw = max(1, w*maxDim/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
