package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chenBenjamin97/partial-skeleton/pkg/evaluate"
	"github.com/chenBenjamin97/partial-skeleton/pkg/search"
	"github.com/chenBenjamin97/partial-skeleton/pkg/skeleton"
	"github.com/gin-gonic/gin"
	"gocv.io/x/gocv"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func do(r http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func fakeResult() *search.Result {
	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 0), 30, 30, gocv.MatTypeCV8UC3)
	winner := &evaluate.OptimalParams{
		Hypothesis: evaluate.Hypothesis{Upper: "u.png", Bottom: "b.png", Scale: 0.5, Translation: 10},
		Aligned:    skeleton.Skeleton{skeleton.LKnee: {Part: skeleton.LKnee, X: 0.5, Y: 0.5, Score: 0.9}},
	}
	pop := &evaluate.Population{}
	pop.Add(winner)

	ranked := []evaluate.Ranked{{OptimalParams: winner, Confidence: 1.5}}
	return &search.Result{Population: pop, Ranked: ranked, Winner: ranked[0], MeanRMSE: 2, Hypotheses: 4, Skipped: 3, Composite: &img}
}

func getResult(t *testing.T, r http.Handler) ResultResponse {
	t.Helper()
	w := do(r, http.MethodGet, "/api/Result")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/Result = %d", w.Code)
	}
	var response ResultResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return response
}

func waitFor(t *testing.T, r http.Handler, status string) ResultResponse {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if response := getResult(t, r); response.Status == status {
			return response
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("search did not reach status %s", status)
	return ResultResponse{}
}

func TestImagesNames(t *testing.T) {
	upper, bottom := t.TempDir(), t.TempDir()
	for _, name := range []string{"b.png", "a.jpg", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(upper, name), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}

	r := SetRouter(Directories{Upper: upper, Bottom: bottom}, nil)

	w := do(r, http.MethodGet, "/api/UpperImagesNames")
	if w.Code != http.StatusOK || w.Body.String() != `["a.jpg","b.png"]` {
		t.Errorf("unexpected upper listing %d %s", w.Code, w.Body.String())
	}

	w = do(r, http.MethodGet, "/api/BottomImagesNames")
	if w.Code != http.StatusOK || w.Body.String() != `[]` {
		t.Errorf("unexpected bottom listing %d %s", w.Code, w.Body.String())
	}

	r = SetRouter(Directories{Upper: filepath.Join(upper, "missing")}, nil)
	if w := do(r, http.MethodGet, "/api/UpperImagesNames"); w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 for a missing directory, got %d", w.Code)
	}
}

func TestSearch(t *testing.T) {
	release := make(chan struct{})
	runs := 0
	r := SetRouter(Directories{}, func() (*search.Result, error) {
		runs++
		<-release
		return fakeResult(), nil
	})

	if response := getResult(t, r); response.Status != StatusIdle {
		t.Errorf("expected idle before the first search, got %s", response.Status)
	}
	if w := do(r, http.MethodGet, "/api/SkeletonImage"); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 before the first search, got %d", w.Code)
	}

	if w := do(r, http.MethodPost, "/api/Search"); w.Code != http.StatusAccepted {
		t.Fatalf("POST /api/Search = %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/api/Search"); w.Code != http.StatusConflict {
		t.Errorf("expected 409 while running, got %d", w.Code)
	}
	if response := getResult(t, r); response.Status != StatusRunning {
		t.Errorf("expected running, got %s", response.Status)
	}

	close(release)
	response := waitFor(t, r, StatusDone)

	if response.Winner == nil || response.Winner.Translation != 10 || response.Winner.Scale != 0.5 {
		t.Errorf("unexpected winner %+v", response.Winner)
	}
	if len(response.Candidates) != 1 || response.Hypotheses != 4 || response.Skipped != 3 {
		t.Errorf("unexpected result %+v", response)
	}
	if runs != 1 {
		t.Errorf("expected a single run, got %d", runs)
	}

	w := do(r, http.MethodGet, "/api/SkeletonImage")
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("GET /api/SkeletonImage = %d %s", w.Code, w.Header().Get("Content-Type"))
	}
	img, err := gocv.IMDecode(w.Body.Bytes(), gocv.IMReadColor)
	if err != nil {
		t.Fatal(err)
	}
	defer img.Close()
	if img.Rows() != 30 || img.Cols() != 30 {
		t.Errorf("unexpected image size %dx%d", img.Cols(), img.Rows())
	}
}

func TestSearch_Failure(t *testing.T) {
	r := SetRouter(Directories{}, func() (*search.Result, error) {
		return nil, errors.New("no candidates")
	})

	if w := do(r, http.MethodPost, "/api/Search"); w.Code != http.StatusAccepted {
		t.Fatalf("POST /api/Search = %d", w.Code)
	}
	response := waitFor(t, r, StatusFailed)
	if response.Error != "no candidates" {
		t.Errorf("unexpected error %q", response.Error)
	}

	//a failed search does not block the next one
	if w := do(r, http.MethodPost, "/api/Search"); w.Code != http.StatusAccepted {
		t.Errorf("expected a new search to start, got %d", w.Code)
	}
	waitFor(t, r, StatusFailed)
}
