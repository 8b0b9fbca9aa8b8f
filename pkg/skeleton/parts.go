//Package skeleton defines the COCO landmark schema and the per-person joint sets
//produced by the pose estimator.
package skeleton

import (
	"errors"
	"fmt"
	"image/color"
)

//ErrUnknownPart is returned for landmark indices outside the COCO schema.
var ErrUnknownPart = errors.New("unknown body part")

//Part identifies one anatomical landmark in COCO (OpenPose) ordering.
type Part int

const (
	Nose Part = iota
	Neck
	RShoulder
	RElbow
	RWrist
	LShoulder
	LElbow
	LWrist
	RHip
	RKnee
	RAnkle
	LHip
	LKnee
	LAnkle
	REye
	LEye
	REar
	LEar
	Background
)

var partNames = [...]string{
	"Nose", "Neck", "RShoulder", "RElbow", "RWrist", "LShoulder", "LElbow", "LWrist",
	"RHip", "RKnee", "RAnkle", "LHip", "LKnee", "LAnkle", "REye", "LEye", "REar", "LEar",
	"Background",
}

func (p Part) String() string {
	if p < 0 || int(p) >= len(partNames) {
		return fmt.Sprintf("Part(%d)", int(p))
	}
	return partNames[p]
}

//Valid reports whether p is a real landmark (Background is the "no detection" sentinel).
func (p Part) Valid() bool {
	return p >= Nose && p < Background
}

//ParsePart converts a raw estimator index into a Part.
func ParsePart(index int) (Part, error) {
	p := Part(index)
	if !p.Valid() {
		return Background, fmt.Errorf("ParsePart: index %d, got '%w'", index, ErrUnknownPart)
	}
	return p, nil
}

//NumParts is the number of real landmarks in the schema.
const NumParts = int(Background)

//LowerBody is the comparison subset used for scoring and completeness gating.
var LowerBody = []Part{RHip, RKnee, RAnkle, LHip, LKnee, LAnkle}

//Pair is a rendered bone between two landmarks.
type Pair [2]Part

//Pairs is the COCO bone topology.
var Pairs = []Pair{
	{Neck, RShoulder}, {Neck, LShoulder}, {RShoulder, RElbow}, {RElbow, RWrist},
	{LShoulder, LElbow}, {LElbow, LWrist}, {Neck, RHip}, {RHip, RKnee}, {RKnee, RAnkle},
	{Neck, LHip}, {LHip, LKnee}, {LKnee, LAnkle}, {Neck, Nose}, {Nose, REye},
	{REye, REar}, {Nose, LEye}, {LEye, LEar}, {RShoulder, REar}, {LShoulder, LEar},
}

//RenderPairs are the pairs drawn on images (the ear-shoulder pairs are skipped).
var RenderPairs = Pairs[:len(Pairs)-2]

//Colors holds one BGR color per landmark, also indexed by render pair order.
var Colors = []color.RGBA{
	{255, 0, 0, 0}, {255, 85, 0, 0}, {255, 170, 0, 0}, {255, 255, 0, 0}, {170, 255, 0, 0},
	{85, 255, 0, 0}, {0, 255, 0, 0}, {0, 255, 85, 0}, {0, 255, 170, 0}, {0, 255, 255, 0},
	{0, 170, 255, 0}, {0, 85, 255, 0}, {0, 0, 255, 0}, {85, 0, 255, 0}, {170, 0, 255, 0},
	{255, 0, 255, 0}, {255, 0, 170, 0}, {255, 0, 85, 0},
}
