//Package pose adapts external pose estimators to the skeleton schema and gates
//their output before anything gets scored.
package pose

import (
	"errors"
	"fmt"

	"github.com/chenBenjamin97/partial-skeleton/pkg/skeleton"
	"gocv.io/x/gocv"
)

//ErrIncompleteSkeleton is returned when an image yields no skeleton or a skeleton
//missing required joints.
var ErrIncompleteSkeleton = errors.New("incomplete skeleton")

//Estimator is the pose oracle: one call per image, zero or more detected people.
//An empty result is valid. Errors are reserved for oracle failures.
type Estimator interface {
	Infer(img gocv.Mat) ([]skeleton.Skeleton, error)
}

//Detect runs est on img, selects the primary skeleton and checks that every
//required part is present. Oracle failures are returned as is, a missing or
//incomplete skeleton wraps ErrIncompleteSkeleton.
func Detect(est Estimator, img gocv.Mat, required []skeleton.Part) (skeleton.Skeleton, error) {
	skeletons, err := est.Infer(img)
	if err != nil {
		return nil, err
	}

	primary := skeleton.SelectPrimary(skeletons)
	if primary == nil {
		return nil, fmt.Errorf("Detect: no skeleton among %d detections, got '%w'", len(skeletons), ErrIncompleteSkeleton)
	}

	if !skeleton.IsComplete(primary, required) {
		return nil, fmt.Errorf("Detect: %d of %d required joints, got '%w'", countPresent(primary, required), len(required), ErrIncompleteSkeleton)
	}

	return primary, nil
}

func countPresent(s skeleton.Skeleton, parts []skeleton.Part) int {
	n := 0
	for _, p := range parts {
		if s.Has(p) {
			n++
		}
	}
	return n
}
