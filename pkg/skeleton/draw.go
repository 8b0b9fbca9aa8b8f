package skeleton

import (
	"image"

	"gocv.io/x/gocv"
)

//Draw plots the joints and rendered bones of s on a copy of img.
func Draw(img gocv.Mat, s Skeleton) gocv.Mat {
	out := img.Clone()
	width, height := out.Cols(), out.Rows()

	centers := make(map[Part]image.Point, len(s))
	for p := Nose; p < Background; p++ {
		j, ok := s[p]
		if !ok {
			continue
		}
		center := image.Pt(int(j.X*float64(width)+0.5), int(j.Y*float64(height)+0.5))
		centers[p] = center
		gocv.Circle(&out, center, 3, Colors[p], 3)
	}

	for order, pair := range RenderPairs {
		from, okFrom := centers[pair[0]]
		to, okTo := centers[pair[1]]
		if !okFrom || !okTo {
			continue
		}
		gocv.Line(&out, from, to, Colors[order], 3)
	}

	return out
}
