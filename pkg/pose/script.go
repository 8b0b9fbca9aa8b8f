package pose

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/chenBenjamin97/partial-skeleton/pkg/skeleton"
	"gocv.io/x/gocv"
)

//ScriptEstimator runs an external python pose estimator (tf-pose-estimation) once per image.
//The script is called as "<python> <script> --image <png> --resolution <w>x<h>" and is expected to print
//one JSON line per detected person ({"parts":[{"id":8,"x":0.41,"y":0.52,"score":0.8},...]}) followed by "EOF".
//Any other output line is treated as logging and skipped.
type ScriptEstimator struct {
	Python  string
	Script  string
	Width   int
	Height  int
	Timeout time.Duration //zero means no timeout
}

type scriptPart struct {
	ID    int     `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Score float64 `json:"score"`
}

type scriptHuman struct {
	Parts []scriptPart `json:"parts"`
}

//Infer writes img to a temporary PNG and parses the script's output
func (e *ScriptEstimator) Infer(img gocv.Mat) ([]skeleton.Skeleton, error) {
	tmpDir, err := ioutil.TempDir("", "partial-skeleton")
	if err != nil {
		return nil, fmt.Errorf("ScriptEstimator.Infer: Error, got '%w'", err)
	}
	defer os.RemoveAll(tmpDir)

	imgPath := filepath.Join(tmpDir, "input.png")
	if !gocv.IMWrite(imgPath, img) {
		return nil, fmt.Errorf("ScriptEstimator.Infer: Could not write '%s'", imgPath)
	}

	ctx := context.Background()
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	python := e.Python
	if python == "" {
		python = "python3"
	}
	cmd := exec.CommandContext(ctx, python, e.Script, "--image", imgPath, "--resolution", fmt.Sprintf("%dx%d", e.Width, e.Height))

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ScriptEstimator.Infer: Error getting python's standard output, got '%w'", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ScriptEstimator.Infer: Error executing python's code, got '%w'", err)
	}

	skeletons, parseErr := parseHumans(stdout)
	io.Copy(ioutil.Discard, stdout) //drain anything after EOF so Wait does not block

	if err := cmd.Wait(); err != nil {
		return nil, fmt.Errorf("ScriptEstimator.Infer: Error waiting python's process, got '%w'", err)
	}

	return skeletons, parseErr
}

//parseHumans reads JSON person lines until "EOF" or the end of the stream
func parseHumans(r io.Reader) ([]skeleton.Skeleton, error) {
	skeletons := make([]skeleton.Skeleton, 0)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "EOF" {
			break
		}

		if !strings.HasPrefix(line, "{\"parts\":") { //log print from the script, skip it
			continue
		}

		human := scriptHuman{}
		if err := json.Unmarshal([]byte(line), &human); err != nil {
			log.Printf("parseHumans: Error, got '%v'", err)
			continue
		}

		joints := make([]skeleton.Joint, 0, len(human.Parts))
		for _, p := range human.Parts {
			joints = append(joints, skeleton.Joint{Part: skeleton.Part(p.ID), X: p.X, Y: p.Y, Score: p.Score})
		}

		s, err := skeleton.New(joints...)
		if err != nil {
			log.Printf("parseHumans: Skipping person, got '%v'", err)
			continue
		}
		skeletons = append(skeletons, s)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("parseHumans: Error reading output, got '%w'", err)
	}

	return skeletons, nil
}
