package evaluate

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"
)

//ErrEmptyPopulation is returned when no hypothesis produced a candidate.
var ErrEmptyPopulation = errors.New("empty candidate population")

//ErrSingletonPopulation is returned when z-scores are requested for a single
//candidate, whose standard deviation is undefined.
var ErrSingletonPopulation = errors.New("candidate population of one can not be normalized")

//Population is the ordered, append-only set of candidates of one search run.
type Population struct {
	candidates []*OptimalParams
}

//Add appends a candidate.
func (p *Population) Add(c *OptimalParams) {
	p.candidates = append(p.candidates, c)
}

//Len returns the number of candidates.
func (p *Population) Len() int {
	return len(p.candidates)
}

//Candidates returns the candidates in insertion order.
func (p *Population) Candidates() []*OptimalParams {
	return p.candidates
}

//MeanRMSE is the mean total RMSE over all candidates.
func (p *Population) MeanRMSE() (float64, error) {
	if len(p.candidates) == 0 {
		return 0, ErrEmptyPopulation
	}
	return stat.Mean(p.values(func(c *OptimalParams) float64 { return c.RMSE.Total }), nil), nil
}

func (p *Population) values(f func(*OptimalParams) float64) []float64 {
	values := make([]float64, len(p.candidates))
	for i, c := range p.candidates {
		values[i] = f(c)
	}
	return values
}

//Ranked is a candidate together with its population relative scores.
type Ranked struct {
	*OptimalParams
	NormalizedRMSE  float64 `json:"normalizedRmse"`
	NormalizedScore float64 `json:"normalizedScore"`
	Confidence      float64 `json:"confidence"`
}

//Rank z-scores the total RMSE and the skeleton score over the whole population and
//combines them per candidate as
//
//	confidence = (1-lambda)*z(-rmse) + lambda*z(score)
//
//The RMSE is negated before normalization, so NormalizedRMSE is -z(rmse): like the
//skeleton score, higher means better and the arg-max prefers the lowest error.
//Rank must only be called once the population is final, since every candidate's
//confidence depends on all others.
func (p *Population) Rank(lambda float64) ([]Ranked, error) {
	rmse, err := ZScores(p.values(func(c *OptimalParams) float64 { return -c.RMSE.Total }))
	if err != nil {
		return nil, fmt.Errorf("Rank: rmse, got '%w'", err)
	}
	score, err := ZScores(p.values(func(c *OptimalParams) float64 { return c.Score }))
	if err != nil {
		return nil, fmt.Errorf("Rank: skeleton score, got '%w'", err)
	}

	ranked := make([]Ranked, len(p.candidates))
	for i, c := range p.candidates {
		ranked[i] = Ranked{
			OptimalParams:   c,
			NormalizedRMSE:  rmse[i],
			NormalizedScore: score[i],
			Confidence:      (1-lambda)*rmse[i] + lambda*score[i],
		}
	}
	return ranked, nil
}

//Best returns the index of the highest confidence. Ties keep the earliest candidate.
func Best(ranked []Ranked) (int, error) {
	if len(ranked) == 0 {
		return -1, ErrEmptyPopulation
	}
	best := 0
	for i := 1; i < len(ranked); i++ {
		if ranked[i].Confidence > ranked[best].Confidence {
			best = i
		}
	}
	return best, nil
}

//ZScores standardizes values with the population mean and standard deviation.
//When every value is equal all z-scores are zero.
func ZScores(values []float64) ([]float64, error) {
	switch len(values) {
	case 0:
		return nil, ErrEmptyPopulation
	case 1:
		return nil, ErrSingletonPopulation
	}

	mean, std := stat.PopMeanStdDev(values, nil)
	z := make([]float64, len(values))
	if std == 0 {
		return z, nil
	}
	for i, v := range values {
		z[i] = stat.StdScore(v, mean, std)
	}
	return z, nil
}
