package api

import (
	"log"
	"net/http"
	"sync"

	"github.com/chenBenjamin97/partial-skeleton/pkg/evaluate"
	"github.com/chenBenjamin97/partial-skeleton/pkg/search"
	"github.com/chenBenjamin97/partial-skeleton/pkg/utils"
	"github.com/gin-gonic/gin"
	"gocv.io/x/gocv"
)

const (
	StatusIdle    = "idle"
	StatusRunning = "running"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

//Runner runs one search over the configured image directories
type Runner func() (*search.Result, error)

//Directories are the image directories listed by the api
type Directories struct {
	Upper  string
	Bottom string
}

//ResultResponse is the body of GET /api/Result
type ResultResponse struct {
	Status     string            `json:"status"`
	Error      string            `json:"error,omitempty"`
	MeanRMSE   float64           `json:"meanRmse,omitempty"`
	Hypotheses int               `json:"hypotheses,omitempty"`
	Skipped    int               `json:"skipped,omitempty"`
	Winner     *evaluate.Ranked  `json:"winner,omitempty"`
	Candidates []evaluate.Ranked `json:"candidates,omitempty"`
}

//state holds the last search, at most one search runs at a time
type state struct {
	mu       sync.Mutex
	response ResultResponse
	image    []byte //winner PNG
}

func (s *state) start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.response.Status == StatusRunning {
		return false
	}
	s.response = ResultResponse{Status: StatusRunning}
	s.image = nil
	return true
}

func (s *state) finish(res *search.Result, err error) {
	if err != nil {
		log.Printf("api/Search: Search failed, got '%v'", err)
		s.mu.Lock()
		s.response = ResultResponse{Status: StatusFailed, Error: err.Error()}
		s.mu.Unlock()
		return
	}
	defer res.Close()

	image, err := encodeWinner(res)
	if err != nil {
		log.Printf("api/Search: Could not render winner, got '%v'", err)
	}

	winner := res.Winner
	s.mu.Lock()
	s.response = ResultResponse{
		Status:     StatusDone,
		MeanRMSE:   res.MeanRMSE,
		Hypotheses: res.Hypotheses,
		Skipped:    res.Skipped,
		Winner:     &winner,
		Candidates: res.Ranked,
	}
	s.image = image
	s.mu.Unlock()
}

func encodeWinner(res *search.Result) ([]byte, error) {
	drawn, err := res.Render()
	if err != nil {
		return nil, err
	}
	defer drawn.Close()

	buf, err := gocv.IMEncode(gocv.PNGFileExt, drawn)
	if err != nil {
		return nil, err
	}
	defer buf.Close()

	return append([]byte{}, buf.GetBytes()...), nil
}

func SetRouter(dirs Directories, run Runner) *gin.Engine {
	r := gin.Default()
	s := &state{response: ResultResponse{Status: StatusIdle}}

	apiRoutes := r.Group("/api")

	apiRoutes.GET("/UpperImagesNames", func(ctx *gin.Context) {
		if names, err := utils.ListImages(dirs.Upper); err != nil {
			ctx.Status(http.StatusInternalServerError)
		} else {
			ctx.JSON(http.StatusOK, names)
		}
	})

	apiRoutes.GET("/BottomImagesNames", func(ctx *gin.Context) {
		if names, err := utils.ListImages(dirs.Bottom); err != nil {
			ctx.Status(http.StatusInternalServerError)
		} else {
			ctx.JSON(http.StatusOK, names)
		}
	})

	apiRoutes.POST("/Search", func(ctx *gin.Context) {
		if !s.start() {
			ctx.Status(http.StatusConflict) //a search is already running
			return
		}

		log.Printf("api/Search: Starting search")
		go func() {
			s.finish(run())
		}()
		ctx.Status(http.StatusAccepted)
	})

	apiRoutes.GET("/Result", func(ctx *gin.Context) {
		s.mu.Lock()
		response := s.response
		s.mu.Unlock()

		ctx.JSON(http.StatusOK, response)
	})

	apiRoutes.GET("/SkeletonImage", func(ctx *gin.Context) {
		s.mu.Lock()
		image := s.image
		s.mu.Unlock()

		if image == nil {
			ctx.Status(http.StatusNotFound)
			return
		}
		ctx.Data(http.StatusOK, "image/png", image)
	})

	return r
}
