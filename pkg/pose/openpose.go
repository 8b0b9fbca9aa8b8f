package pose

import (
	"errors"
	"fmt"
	"image"

	"github.com/chenBenjamin97/partial-skeleton/pkg/skeleton"
	"gocv.io/x/gocv"
)

//OpenPose runs an OpenPose tensorflow graph (graph_opt.pb) through OpenCV's DNN module.
//It finds a single person: the strongest heatmap peak of every landmark.
type OpenPose struct {
	net       gocv.Net
	width     int
	height    int
	threshold float64
}

//NewOpenPose loads the model once, the returned estimator should be closed by the caller
func NewOpenPose(modelPath string, width, height int, threshold float64) (*OpenPose, error) {
	net := gocv.ReadNetFromTensorflow(modelPath)
	if net.Empty() {
		return nil, errors.New("NewOpenPose: Could not load model " + modelPath)
	}

	return &OpenPose{net: net, width: width, height: height, threshold: threshold}, nil
}

//Close releases the network
func (o *OpenPose) Close() error {
	return o.net.Close()
}

//Infer returns at most one skeleton, joints whose heatmap peak is below the threshold are left out.
//Coordinates are normalized by the heatmap size so they are independent of the input size.
func (o *OpenPose) Infer(img gocv.Mat) ([]skeleton.Skeleton, error) {
	if img.Empty() {
		return nil, errors.New("OpenPose.Infer: Empty image")
	}

	blob := gocv.BlobFromImage(img, 1, image.Pt(o.width, o.height), gocv.NewScalar(127.5, 127.5, 127.5, 127.5), true, false)
	defer blob.Close()

	o.net.SetInput(blob, "")
	prob := o.net.Forward("")
	defer prob.Close()

	s := prob.Size()
	if len(s) != 4 {
		return nil, fmt.Errorf("OpenPose.Infer: Unexpected output shape %v", s)
	}
	nparts, h, w := s[1], s[2], s[3]
	if nparts > skeleton.NumParts {
		nparts = skeleton.NumParts //the rest are background and part affinity fields
	}

	found := skeleton.Skeleton{}
	for i := 0; i < nparts; i++ {
		heatmap, err := prob.FromPtr(h, w, gocv.MatTypeCV32F, 0, i)
		if err != nil {
			return nil, fmt.Errorf("OpenPose.Infer: Could not read heatmap %d, got '%w'", i, err)
		}

		_, conf, _, pt := gocv.MinMaxLoc(heatmap)
		heatmap.Close()

		if float64(conf) > o.threshold {
			part := skeleton.Part(i)
			found[part] = skeleton.Joint{
				Part:  part,
				X:     float64(pt.X) / float64(w),
				Y:     float64(pt.Y) / float64(h),
				Score: float64(conf),
			}
		}
	}

	if len(found) == 0 {
		return []skeleton.Skeleton{}, nil
	}

	return []skeleton.Skeleton{found}, nil
}
