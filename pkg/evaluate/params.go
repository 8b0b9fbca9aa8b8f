//Package evaluate scores alignment hypotheses against a reference skeleton and
//ranks the whole candidate population.
package evaluate

import (
	"math"

	"github.com/chenBenjamin97/partial-skeleton/pkg/skeleton"
)

//Hypothesis identifies one point of the search grid.
type Hypothesis struct {
	Upper       string  `json:"upper"`
	Bottom      string  `json:"bottom"`
	Scale       float64 `json:"scale"`
	Translation int     `json:"translation"`
}

//RMSE holds the per axis and total root mean squared errors, in pixels.
type RMSE struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Total float64 `json:"total"`
}

//OptimalParams is the evaluated result of one hypothesis. It is only built for
//hypotheses whose aligned and reference skeletons are both complete, and it is
//not modified after construction.
type OptimalParams struct {
	Hypothesis
	Aligned   skeleton.Skeleton `json:"aligned"`
	Reference skeleton.Skeleton `json:"reference"`
	RMSE      RMSE              `json:"rmse"`
	Score     float64           `json:"skeletonScore"`
}

//NewOptimalParams evaluates both scores once. width and height are the canvas
//size used to turn normalized joint coordinates into pixels.
func NewOptimalParams(h Hypothesis, aligned, reference skeleton.Skeleton, width, height int) *OptimalParams {
	p := &OptimalParams{Hypothesis: h, Aligned: aligned, Reference: reference}
	p.RMSE = CalculateRMSE(aligned, reference, width, height)
	p.Score = CalculateSkeletonScore(aligned)
	return p
}

//HasCompleteSkeleton reports whether both skeletons carry every comparison joint.
func (p *OptimalParams) HasCompleteSkeleton() bool {
	return skeleton.IsComplete(p.Aligned, skeleton.LowerBody) && skeleton.IsComplete(p.Reference, skeleton.LowerBody)
}

//CalculateRMSE compares the lower body joints of aligned and reference in pixel
//units. Both skeletons must hold every skeleton.LowerBody part.
//
//Total reuses the x term: sqrt((mseX + mseX) / n), n being the number of compared
//joints. Stored rankings depend on it, see TestCalculateRMSE_TotalFormula.
func CalculateRMSE(aligned, reference skeleton.Skeleton, width, height int) RMSE {
	n := float64(len(skeleton.LowerBody))

	var mseX, mseY float64
	for _, p := range skeleton.LowerBody {
		a := aligned[p].Pixel(width, height)
		r := reference[p].Pixel(width, height)
		mseX += (r.X - a.X) * (r.X - a.X)
		mseY += (r.Y - a.Y) * (r.Y - a.Y)
	}
	mseX /= n
	mseY /= n

	return RMSE{
		X:     math.Sqrt(mseX),
		Y:     math.Sqrt(mseY),
		Total: math.Sqrt(1 / n * (mseX + mseX)),
	}
}

//CalculateSkeletonScore is the summed confidence of every joint present in s,
//higher meaning a more complete detection.
func CalculateSkeletonScore(s skeleton.Skeleton) float64 {
	return s.Score()
}

//ReferenceLength is the left knee to left ankle distance of s in pixels, the
//scale against which an RMSE can be read. It is zero when either joint is missing.
func ReferenceLength(s skeleton.Skeleton, width, height int) float64 {
	knee, okKnee := s[skeleton.LKnee]
	ankle, okAnkle := s[skeleton.LAnkle]
	if !okKnee || !okAnkle {
		return 0
	}
	return knee.Pixel(width, height).Distance(ankle.Pixel(width, height))
}
