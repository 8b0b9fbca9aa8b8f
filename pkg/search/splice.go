package search

import (
	"fmt"
	"image"
	"math"

	"github.com/chenBenjamin97/partial-skeleton/pkg/composite"
	"github.com/chenBenjamin97/partial-skeleton/pkg/evaluate"
	"github.com/chenBenjamin97/partial-skeleton/pkg/geometry"
	"github.com/chenBenjamin97/partial-skeleton/pkg/pose"
	"github.com/chenBenjamin97/partial-skeleton/pkg/skeleton"
	"gocv.io/x/gocv"
)

//AlignmentParts are the landmarks whose triangle fits one body onto another.
var AlignmentParts = []skeleton.Part{skeleton.RHip, skeleton.LHip, skeleton.LEar}

//LandmarkTriangle returns the AlignmentParts of s in pixels of a width x height image.
func LandmarkTriangle(s skeleton.Skeleton, width, height int) geometry.Triangle {
	var tri geometry.Triangle
	for i, p := range AlignmentParts {
		tri[i] = s[p].Pixel(width, height)
	}
	return tri
}

//Comparison is the result of splicing the top of one full body image onto the
//bottom of another.
type Comparison struct {
	RMSE            evaluate.RMSE
	ReferenceLength float64 //left knee to left ankle of the second image, pixels
	HipRow          int
	Merged          gocv.Mat //spliced image with its skeleton drawn
	Legs            gocv.Mat //Merged with every row above HipRow white
}

//Close releases the images of the comparison.
func (c *Comparison) Close() {
	c.Merged.Close()
	c.Legs.Close()
}

func withParts(a, b []skeleton.Part) []skeleton.Part {
	out := append([]skeleton.Part{}, a...)
	for _, p := range b {
		found := false
		for _, q := range out {
			if p == q {
				found = true
				break
			}
		}
		if !found {
			out = append(out, p)
		}
	}
	return out
}

//Compare aligns first onto second through their hip and ear triangle, keeps the
//aligned first image above the lower of the two hips and second below it, and
//scores the spliced skeleton's legs against second's.
func Compare(est pose.Estimator, first, second gocv.Mat) (*Comparison, error) {
	width, height := second.Cols(), second.Rows()

	firstSkeleton, err := pose.Detect(est, first, AlignmentParts)
	if err != nil {
		return nil, fmt.Errorf("Compare: first image, got '%w'", err)
	}
	secondSkeleton, err := pose.Detect(est, second, withParts(AlignmentParts, skeleton.LowerBody))
	if err != nil {
		return nil, fmt.Errorf("Compare: second image, got '%w'", err)
	}

	aligned, err := geometry.Align(first,
		LandmarkTriangle(firstSkeleton, first.Cols(), first.Rows()),
		LandmarkTriangle(secondSkeleton, width, height))
	if err != nil {
		return nil, fmt.Errorf("Compare: Error, got '%w'", err)
	}
	defer aligned.Close()

	alignedSkeleton, err := pose.Detect(est, aligned, []skeleton.Part{skeleton.RHip})
	if err != nil {
		return nil, fmt.Errorf("Compare: aligned image, got '%w'", err)
	}

	hip := math.Max(alignedSkeleton[skeleton.RHip].Y, secondSkeleton[skeleton.RHip].Y)
	hipRow := int(hip * float64(height))
	if hipRow > aligned.Rows() {
		hipRow = aligned.Rows()
	}
	if hipRow > height {
		hipRow = height
	}

	lower := second.Region(image.Rect(0, hipRow, width, height))
	defer lower.Close()
	spliced, err := composite.StackAt(aligned, lower, hipRow)
	if err != nil {
		return nil, fmt.Errorf("Compare: Error, got '%w'", err)
	}
	defer spliced.Close()

	mergedSkeleton, err := pose.Detect(est, spliced, skeleton.LowerBody)
	if err != nil {
		return nil, fmt.Errorf("Compare: spliced image, got '%w'", err)
	}

	merged := skeleton.Draw(spliced, mergedSkeleton)
	legs := merged.Clone()
	if hipRow > 0 {
		top := legs.Region(image.Rect(0, 0, legs.Cols(), hipRow))
		top.SetTo(gocv.NewScalar(255, 255, 255, 0))
		top.Close()
	}

	return &Comparison{
		RMSE:            evaluate.CalculateRMSE(mergedSkeleton, secondSkeleton, width, height),
		ReferenceLength: evaluate.ReferenceLength(secondSkeleton, width, height),
		HipRow:          hipRow,
		Merged:          merged,
		Legs:            legs,
	}, nil
}

//Skeletonize re-poses dummy (a full body image) so its hip and ear triangle lands
//on hip, flips it vertically, places legs below the dummy's left hip row and
//returns the legs region of the spliced image with its skeleton drawn.
func Skeletonize(est pose.Estimator, dummy, legs gocv.Mat, hip geometry.Triangle) (gocv.Mat, error) {
	dummySkeleton, err := pose.Detect(est, dummy, AlignmentParts)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("Skeletonize: dummy image, got '%w'", err)
	}

	posed, err := geometry.Align(dummy, LandmarkTriangle(dummySkeleton, dummy.Cols(), dummy.Rows()), hip)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("Skeletonize: Error, got '%w'", err)
	}
	defer posed.Close()

	flipped := gocv.NewMat()
	defer flipped.Close()
	gocv.Flip(posed, &flipped, 0)

	flippedSkeleton, err := pose.Detect(est, flipped, []skeleton.Part{skeleton.LHip})
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("Skeletonize: posed dummy, got '%w'", err)
	}

	hipRow := int(flippedSkeleton[skeleton.LHip].Y * float64(flipped.Rows()))
	spliced, err := composite.StackAt(flipped, legs, hipRow)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("Skeletonize: Error, got '%w'", err)
	}
	defer spliced.Close()

	mergedSkeleton, err := pose.Detect(est, spliced, nil)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("Skeletonize: spliced image, got '%w'", err)
	}

	drawn := skeleton.Draw(spliced, mergedSkeleton)
	defer drawn.Close()

	region := drawn.Region(image.Rect(0, hipRow, drawn.Cols(), hipRow+legs.Rows()))
	defer region.Close()
	return region.Clone(), nil
}
