package composite

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"
)

//White is the background of every canvas built here. Black is reserved for
//transform padding, which CropToContent removes.
var White = color.RGBA{R: 255, G: 255, B: 255, A: 0}

//Black is the transform padding
var Black = color.RGBA{}

func whiteCanvas(rows, cols int) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 0), rows, cols, gocv.MatTypeCV8UC3)
}

//paste copies the top left width x height block of src into dst at (x, y).
func paste(dst *gocv.Mat, src gocv.Mat, x, y, width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	from := src.Region(image.Rect(0, 0, width, height))
	defer from.Close()
	to := dst.Region(image.Rect(x, y, x+width, y+height))
	defer to.Close()
	from.CopyTo(&to)
}

func stack(upper, bottom gocv.Mat) gocv.Mat {
	width := upper.Cols()
	if bottom.Cols() < width {
		width = bottom.Cols()
	}

	merged := whiteCanvas(upper.Rows()+bottom.Rows(), width)
	paste(&merged, upper, 0, 0, width, upper.Rows())
	paste(&merged, bottom, 0, upper.Rows(), width, bottom.Rows())
	return merged
}

//BuildNaive stacks upper on top of bottom, both cropped on the right to the
//narrower width. No scaling or alignment is applied; the result is the reference
//composite the aligned one is scored against.
func BuildNaive(upper, bottom gocv.Mat) gocv.Mat {
	return stack(upper, bottom)
}

//BuildAligned stacks an aligned and cropped upper image on top of bottom. The
//translation under test is already part of alignedUpper (see ShiftRight), so this is
//pure concatenation. The result is height(alignedUpper)+height(bottom) by the narrower width.
func BuildAligned(alignedUpper, bottom gocv.Mat) gocv.Mat {
	return stack(alignedUpper, bottom)
}

//StackAt keeps the first row rows of top and places all of bottom below them.
func StackAt(top, bottom gocv.Mat, row int) (gocv.Mat, error) {
	if row < 0 || row > top.Rows() {
		return gocv.Mat{}, fmt.Errorf("StackAt: row %d outside of %d rows", row, top.Rows())
	}

	width := top.Cols()
	if bottom.Cols() < width {
		width = bottom.Cols()
	}

	merged := whiteCanvas(row+bottom.Rows(), width)
	paste(&merged, top, 0, 0, width, row)
	paste(&merged, bottom, 0, row, width, bottom.Rows())
	return merged, nil
}

//PadToCanvas returns img centered on a white canvas of exactly width x height.
//An image larger than the canvas on either side is first downscaled, keeping its aspect
//ratio, until it fits. Every composite then shares one pixel frame.
func PadToCanvas(img gocv.Mat, width, height int) gocv.Mat {
	fitted := img
	if img.Cols() > width || img.Rows() > height {
		factor := math.Min(float64(width)/float64(img.Cols()), float64(height)/float64(img.Rows()))
		size := image.Pt(clamp(int(float64(img.Cols())*factor), 1, width), clamp(int(float64(img.Rows())*factor), 1, height))

		fitted = gocv.NewMat()
		defer fitted.Close()
		gocv.Resize(img, &fitted, size, 0, 0, gocv.InterpolationArea)
	}

	deltaW, deltaH := width-fitted.Cols(), height-fitted.Rows()
	top, bottom := deltaH/2, deltaH-deltaH/2
	left, right := deltaW/2, deltaW-deltaW/2

	padded := gocv.NewMat()
	gocv.CopyMakeBorder(fitted, &padded, top, bottom, left, right, gocv.BorderConstant, White)
	return padded
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

//ShiftRight returns a copy of img with t black columns added on its left. The black band
//is the transform padding a destination triangle shifted by t along x leaves, so a
//cropped upper image shifted here is what aligning it t pixels further right yields.
func ShiftRight(img gocv.Mat, t int) (gocv.Mat, error) {
	if t < 0 {
		return gocv.Mat{}, fmt.Errorf("ShiftRight: negative offset %d", t)
	}

	shifted := gocv.NewMat()
	gocv.CopyMakeBorder(img, &shifted, 0, 0, t, 0, gocv.BorderConstant, Black)
	return shifted, nil
}

//Scale resizes img by factor on both axes using area interpolation.
func Scale(img gocv.Mat, factor float64) (gocv.Mat, error) {
	width, height := int(float64(img.Cols())*factor), int(float64(img.Rows())*factor)
	if width <= 0 || height <= 0 {
		return gocv.Mat{}, fmt.Errorf("Scale: factor %v leaves an empty %dx%d image", factor, width, height)
	}

	scaled := gocv.NewMat()
	gocv.Resize(img, &scaled, image.Pt(width, height), 0, 0, gocv.InterpolationArea)
	return scaled, nil
}
