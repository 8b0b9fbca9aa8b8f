package pose

import (
	"errors"
	"strings"
	"testing"

	"github.com/chenBenjamin97/partial-skeleton/pkg/skeleton"
	"gocv.io/x/gocv"
)

type stubEstimator struct {
	skeletons []skeleton.Skeleton
	err       error
	calls     int
}

func (s *stubEstimator) Infer(img gocv.Mat) ([]skeleton.Skeleton, error) {
	s.calls++
	return s.skeletons, s.err
}

func lowerBody(score float64) skeleton.Skeleton {
	s := skeleton.Skeleton{}
	for _, p := range skeleton.LowerBody {
		s[p] = skeleton.Joint{Part: p, X: 0.5, Y: 0.5, Score: score}
	}
	return s
}

func TestDetect(t *testing.T) {
	img := gocv.NewMatWithSize(4, 4, gocv.MatTypeCV8UC3)
	defer img.Close()

	partial := lowerBody(1)
	delete(partial, skeleton.LAnkle)

	oracleErr := errors.New("oracle down")

	tests := []struct {
		name      string
		skeletons []skeleton.Skeleton
		err       error
		wantErr   error
		wantScore float64
	}{
		{"no detections", nil, nil, ErrIncompleteSkeleton, 0},
		{"incomplete primary", []skeleton.Skeleton{partial}, nil, ErrIncompleteSkeleton, 0},
		{"picks strongest complete", []skeleton.Skeleton{lowerBody(0.1), lowerBody(0.5)}, nil, nil, 3},
		{"strongest is incomplete", []skeleton.Skeleton{lowerBody(0.1), partial}, nil, ErrIncompleteSkeleton, 0},
		{"oracle failure", nil, oracleErr, oracleErr, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est := &stubEstimator{skeletons: tt.skeletons, err: tt.err}
			got, err := Detect(est, img, skeleton.LowerBody)
			if est.calls != 1 {
				t.Errorf("expected exactly one inference call, got %d", est.calls)
			}
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if score := got.Score(); score < tt.wantScore-1e-9 || score > tt.wantScore+1e-9 {
				t.Errorf("expected score %v, got %v", tt.wantScore, score)
			}
		})
	}
}

func TestParseHumans(t *testing.T) {
	output := strings.Join([]string{
		"loading graph...",
		`{"parts":[{"id":8,"x":0.1,"y":0.2,"score":0.9},{"id":11,"x":0.3,"y":0.4,"score":0.8}]}`,
		"FPS: 3.2",
		`{"parts":[{"id":18,"x":0.1,"y":0.2,"score":0.9}]}`,
		`{"parts":[{"id":0,"x":0.5`,
		`{"parts":[]}`,
		"EOF",
		`{"parts":[{"id":1,"x":0.1,"y":0.2,"score":0.9}]}`,
	}, "\n")

	skeletons, err := parseHumans(strings.NewReader(output))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(skeletons) != 2 {
		t.Fatalf("expected 2 people (bad index and broken JSON skipped, nothing after EOF), got %d", len(skeletons))
	}

	first := skeletons[0]
	if j, ok := first[skeleton.LHip]; !ok || j.X != 0.3 || j.Y != 0.4 || j.Score != 0.8 {
		t.Errorf("unexpected LHip joint %+v", j)
	}
	if len(skeletons[1]) != 0 {
		t.Errorf("expected empty second person, got %v", skeletons[1])
	}
}
