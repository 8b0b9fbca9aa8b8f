//Package geometry fits and applies the 3-point affine transforms used to align
//an upper body image into the coordinate frame of a bottom image.
package geometry

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/mat"
)

//ErrDegenerateTriangle is returned when the source triangle is collinear and no
//unique affine transform exists.
var ErrDegenerateTriangle = errors.New("degenerate triangle")

//minTriangleArea is the area under which a triangle is treated as collinear.
const minTriangleArea = 1e-9

//Point is a 2D point in pixel coordinates.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

//Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

//Distance returns the Euclidean distance to another point.
func (p Point) Distance(other Point) float64 {
	return math.Hypot(p.X-other.X, p.Y-other.Y)
}

//Triangle holds the three correspondence points of an affine fit.
type Triangle [3]Point

//Area returns the unsigned area of the triangle.
func (t Triangle) Area() float64 {
	return math.Abs((t[1].X-t[0].X)*(t[2].Y-t[0].Y)-(t[2].X-t[0].X)*(t[1].Y-t[0].Y)) / 2
}

//Affine is a 2x3 affine transform.
//[a b tx]
//[c d ty]
type Affine struct {
	A, B, TX float64
	C, D, TY float64
}

//Apply maps a point through the transform.
func (m Affine) Apply(p Point) Point {
	return Point{
		X: m.A*p.X + m.B*p.Y + m.TX,
		Y: m.C*p.X + m.D*p.Y + m.TY,
	}
}

//ToMatrix returns the transform as a [2][3]float64 array.
func (m Affine) ToMatrix() [2][3]float64 {
	return [2][3]float64{
		{m.A, m.B, m.TX},
		{m.C, m.D, m.TY},
	}
}

//ComputeAffine solves the 6-parameter affine system that maps every point of src
//exactly onto the matching point of dst.
func ComputeAffine(src, dst Triangle) (Affine, error) {
	if src.Area() < minTriangleArea {
		return Affine{}, fmt.Errorf("ComputeAffine: source %v, got '%w'", src, ErrDegenerateTriangle)
	}

	//[x', y'] = [a, b, tx; c, d, ty] * [x, y, 1]
	A := mat.NewDense(6, 6, nil)
	B := mat.NewVecDense(6, nil)

	for i := 0; i < 3; i++ {
		x, y := src[i].X, src[i].Y

		A.Set(i*2, 0, x)
		A.Set(i*2, 1, y)
		A.Set(i*2, 2, 1)
		B.SetVec(i*2, dst[i].X)

		A.Set(i*2+1, 3, x)
		A.Set(i*2+1, 4, y)
		A.Set(i*2+1, 5, 1)
		B.SetVec(i*2+1, dst[i].Y)
	}

	var params mat.VecDense
	if err := params.SolveVec(A, B); err != nil {
		return Affine{}, fmt.Errorf("ComputeAffine: %v, got '%w'", err, ErrDegenerateTriangle)
	}

	return Affine{
		A:  params.AtVec(0),
		B:  params.AtVec(1),
		TX: params.AtVec(2),
		C:  params.AtVec(3),
		D:  params.AtVec(4),
		TY: params.AtVec(5),
	}, nil
}

//ApplyAffine resamples img through the transform into a new mat with the same
//size as img. Pixels with no source mapping are black. The source is not modified.
func ApplyAffine(img gocv.Mat, m Affine) gocv.Mat {
	transformMat := gocv.NewMatWithSize(2, 3, gocv.MatTypeCV64F)
	defer transformMat.Close()
	transformMat.SetDoubleAt(0, 0, m.A)
	transformMat.SetDoubleAt(0, 1, m.B)
	transformMat.SetDoubleAt(0, 2, m.TX)
	transformMat.SetDoubleAt(1, 0, m.C)
	transformMat.SetDoubleAt(1, 1, m.D)
	transformMat.SetDoubleAt(1, 2, m.TY)

	dst := gocv.NewMat()
	gocv.WarpAffineWithParams(img, &dst, transformMat, image.Pt(img.Cols(), img.Rows()),
		gocv.InterpolationLinear, gocv.BorderConstant, color.RGBA{R: 0, G: 0, B: 0, A: 0})

	return dst
}

//Align fits src onto dst and warps img with the result.
func Align(img gocv.Mat, src, dst Triangle) (gocv.Mat, error) {
	m, err := ComputeAffine(src, dst)
	if err != nil {
		return gocv.Mat{}, err
	}
	return ApplyAffine(img, m), nil
}

//RectTriangle is the triangle spanned by a width x height rectangle used when no
//landmark correspondence is known: (dx, width), (dx+height, 0), (dx+height, width).
func RectTriangle(width, height int, dx float64) Triangle {
	w, h := float64(width), float64(height)
	return Triangle{
		{X: dx, Y: w},
		{X: dx + h, Y: 0},
		{X: dx + h, Y: w},
	}
}
