package skeleton

import (
	"fmt"

	"github.com/chenBenjamin97/partial-skeleton/pkg/geometry"
)

//Joint is one detected landmark. X and Y are normalized to [0,1] by the image
//width and height.
type Joint struct {
	Part  Part    `json:"part"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Score float64 `json:"score"`
}

//Pixel returns the joint position in a width x height image.
func (j Joint) Pixel(width, height int) geometry.Point {
	return geometry.Pt(j.X*float64(width), j.Y*float64(height))
}

//Skeleton is the set of landmarks detected for one person.
type Skeleton map[Part]Joint

//New builds a skeleton, rejecting joints outside the schema.
func New(joints ...Joint) (Skeleton, error) {
	s := make(Skeleton, len(joints))
	for _, j := range joints {
		if !j.Part.Valid() {
			return nil, fmt.Errorf("New: joint %d, got '%w'", int(j.Part), ErrUnknownPart)
		}
		s[j.Part] = j
	}
	return s, nil
}

//Score is the summed confidence of all present joints.
func (s Skeleton) Score() float64 {
	total := 0.0
	for _, j := range s {
		total += j.Score
	}
	return total
}

//Has reports whether the joint is present.
func (s Skeleton) Has(p Part) bool {
	_, ok := s[p]
	return ok
}

//IsComplete reports whether every required part is present.
func IsComplete(s Skeleton, required []Part) bool {
	if s == nil {
		return false
	}
	for _, p := range required {
		if !s.Has(p) {
			return false
		}
	}
	return true
}

//SelectPrimary returns the skeleton with the highest summed confidence. Ties keep
//the first one in detection order. It returns nil for an empty slice.
func SelectPrimary(skeletons []Skeleton) Skeleton {
	var best Skeleton
	bestScore := 0.0
	for i, s := range skeletons {
		if score := s.Score(); i == 0 || score > bestScore {
			best, bestScore = s, score
		}
	}
	return best
}
