package imaging

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
)

// Scaling selects how a decoded image is fitted into an output's target
// pixel dimensions.
type Scaling string

const (
	ScaleNone Scaling = "none"
	ScaleFit  Scaling = "fit"
	ScaleFill Scaling = "fill"
)

// Filter selects the resampling kernel used when the scale factor differs
// from 1.
type Filter string

const (
	FilterFast Filter = "fast"
	FilterGood Filter = "good"
	FilterBest Filter = "best"
)

// lanczos3 is golang.org/x/image/draw's kernel family built by hand, since
// the package ships Bilinear and CatmullRom but no Lanczos3 variant. Support
// radius 3 matches the filter's namesake.
var lanczos3 = draw.Kernel{
	Support: 3,
	At: func(t float64) float64 {
		if t == 0 {
			return 1
		}
		if t < -3 || t > 3 {
			return 0
		}
		x := math.Pi * t
		return 3 * math.Sin(x) * math.Sin(x/3) / (x * x)
	},
}

func kernelFor(f Filter) draw.Interpolator {
	switch f {
	case FilterFast:
		return draw.ApproxBiLinear
	case FilterBest:
		return &lanczos3
	default:
		return draw.CatmullRom
	}
}

// PixelBuffer is a tightly-packed 24-bit RGB buffer, row-major, no padding
// between rows — the exact layout the GPU upload path expects.
type PixelBuffer struct {
	Width  int
	Height int
	Pix    []byte // len == Width*Height*3
}

// Scale fits src into a Width x Height target using the requested Scaling
// mode and resampling Filter, producing a ready-to-upload PixelBuffer.
func Scale(src image.Image, targetW, targetH int, scaling Scaling, filter Filter) *PixelBuffer {
	dst := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	fillBlack(dst)

	sb := src.Bounds()
	srcW, srcH := sb.Dx(), sb.Dy()

	switch scaling {
	case ScaleNone:
		drawCentered(dst, src, srcW, srcH)
	case ScaleFit:
		scale := math.Min(float64(targetW)/float64(srcW), float64(targetH)/float64(srcH))
		drawScaledCentered(dst, src, scale, filter)
	case ScaleFill:
		scale := math.Max(float64(targetW)/float64(srcW), float64(targetH)/float64(srcH))
		drawScaledCentered(dst, src, scale, filter)
	}

	return rgbaToPixelBuffer(dst)
}

func fillBlack(dst *image.RGBA) {
	black := color.RGBA{A: 0xff}
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: black}, image.Point{}, draw.Src)
}

func drawCentered(dst *image.RGBA, src image.Image, srcW, srcH int) {
	ox := (dst.Bounds().Dx() - srcW) / 2
	oy := (dst.Bounds().Dy() - srcH) / 2
	target := image.Rect(ox, oy, ox+srcW, oy+srcH).Intersect(dst.Bounds())
	sp := image.Point{X: target.Min.X - ox, Y: target.Min.Y - oy}.Add(src.Bounds().Min)
	draw.Draw(dst, target, src, sp, draw.Src)
}

func drawScaledCentered(dst *image.RGBA, src image.Image, scale float64, filter Filter) {
	sb := src.Bounds()
	scaledW := int(math.Round(float64(sb.Dx()) * scale))
	scaledH := int(math.Round(float64(sb.Dy()) * scale))
	if scaledW < 1 {
		scaledW = 1
	}
	if scaledH < 1 {
		scaledH = 1
	}

	ox := (dst.Bounds().Dx() - scaledW) / 2
	oy := (dst.Bounds().Dy() - scaledH) / 2
	target := image.Rect(ox, oy, ox+scaledW, oy+scaledH)

	kernelFor(filter).Scale(dst, target, src, sb, draw.Over, nil)
}

func rgbaToPixelBuffer(img *image.RGBA) *PixelBuffer {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	pix := make([]byte, w*h*3)
	for y := 0; y < h; y++ {
		rowOff := img.PixOffset(img.Bounds().Min.X, img.Bounds().Min.Y+y)
		row := img.Pix[rowOff : rowOff+w*4]
		out := pix[y*w*3 : (y+1)*w*3]
		for x := 0; x < w; x++ {
			out[x*3+0] = row[x*4+0]
			out[x*3+1] = row[x*4+1]
			out[x*3+2] = row[x*4+2]
		}
	}
	return &PixelBuffer{Width: w, Height: h, Pix: pix}
}
