package utils

//CanvasWidth is the pose network input width, composites are padded to at least this width
const CanvasWidth = 432

//CanvasHeight is the pose network input height, composites are padded to at least this height
const CanvasHeight = 368

//DefaultLambda is the weight of the normalized skeleton score in the combined confidence
const DefaultLambda = 0.3

//JointThreshold is the minimal heatmap confidence for a joint to count as detected
const JointThreshold = 0.1

//ModeScale enumerates scale factors and translation offsets
const ModeScale = "scale"

//ModeTranslate enumerates translation offsets only, with the bottom image kept at its original size
const ModeTranslate = "translate"

//DefaultScales are the bottom image scale factors tried in scale mode
var DefaultScales = []float64{0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9}

//DefaultTranslations are the horizontal offsets (pixels) tried for the upper image
var DefaultTranslations = []int{0, 5, 10, 15, 20, 25, 30, 35, 40, 45, 50}

//ImageExtensions are the file extensions loaded from image directories
var ImageExtensions = []string{".png", ".jpg", ".jpeg", ".bmp"}
