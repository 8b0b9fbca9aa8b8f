//Package composite crops transform padding and stacks upper body images on top
//of bottom images.
package composite

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

//ErrNoForeground is returned when an image has no non-black content to crop to.
var ErrNoForeground = errors.New("no foreground content")

//foregroundThreshold separates black transform padding from content.
const foregroundThreshold = 1

//ContentBounds returns the bounding rectangle of the largest external contour of
//the non-black content in img. Ties keep the first contour found.
func ContentBounds(img gocv.Mat) (image.Rectangle, error) {
	gray := gocv.NewMat()
	defer gray.Close()
	if img.Channels() == 1 {
		img.CopyTo(&gray)
	} else {
		gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.MedianBlur(gray, &blurred, 3)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(blurred, &thresh, foregroundThreshold, 255, gocv.ThresholdBinary)

	contours := gocv.FindContours(thresh, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	if contours.Size() == 0 {
		return image.Rectangle{}, fmt.Errorf("ContentBounds: %dx%d image, got '%w'", img.Cols(), img.Rows(), ErrNoForeground)
	}

	best, maxArea := -1, -1.0
	for i := 0; i < contours.Size(); i++ {
		if area := gocv.ContourArea(contours.At(i)); area > maxArea {
			best, maxArea = i, area
		}
	}

	return gocv.BoundingRect(contours.At(best)), nil
}

//CropToContent returns a copy of img cropped to its dominant foreground blob.
func CropToContent(img gocv.Mat) (gocv.Mat, error) {
	rect, err := ContentBounds(img)
	if err != nil {
		return gocv.Mat{}, err
	}

	region := img.Region(rect)
	defer region.Close()
	return region.Clone(), nil
}
