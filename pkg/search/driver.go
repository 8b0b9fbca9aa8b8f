//Package search runs the grid search over (upper, bottom, scale, translation)
//hypotheses and selects the alignment whose composite skeleton best matches the
//naively stacked reference.
package search

import (
	"errors"
	"fmt"
	"log"

	"github.com/chenBenjamin97/partial-skeleton/pkg/bbox"
	"github.com/chenBenjamin97/partial-skeleton/pkg/composite"
	"github.com/chenBenjamin97/partial-skeleton/pkg/evaluate"
	"github.com/chenBenjamin97/partial-skeleton/pkg/geometry"
	"github.com/chenBenjamin97/partial-skeleton/pkg/pose"
	"github.com/chenBenjamin97/partial-skeleton/pkg/skeleton"
	"github.com/chenBenjamin97/partial-skeleton/pkg/utils"
	"gocv.io/x/gocv"
)

//Config holds the enumerations and weights of one search.
type Config struct {
	Mode         string //utils.ModeScale or utils.ModeTranslate
	Scales       []float64
	Translations []int
	CanvasWidth  int
	CanvasHeight int
	Lambda       float64
	Required     []skeleton.Part //defaults to skeleton.LowerBody
}

//DefaultConfig returns the configuration of a full scale and translation search.
func DefaultConfig() Config {
	return Config{
		Mode:         utils.ModeScale,
		Scales:       utils.DefaultScales,
		Translations: utils.DefaultTranslations,
		CanvasWidth:  utils.CanvasWidth,
		CanvasHeight: utils.CanvasHeight,
		Lambda:       utils.DefaultLambda,
	}
}

//ScaleFactors returns the scales the search enumerates; translate mode keeps the
//bottom image at its original size.
func (c Config) ScaleFactors() []float64 {
	if c.Mode == utils.ModeTranslate {
		return []float64{1}
	}
	return c.Scales
}

func (c Config) required() []skeleton.Part {
	if len(c.Required) == 0 {
		return skeleton.LowerBody
	}
	return c.Required
}

//Validate checks the enumerations before a run.
func (c Config) Validate() error {
	if c.Mode != utils.ModeScale && c.Mode != utils.ModeTranslate {
		return fmt.Errorf("Validate: unknown mode '%s'", c.Mode)
	}
	if len(c.ScaleFactors()) == 0 || len(c.Translations) == 0 {
		return errors.New("Validate: scales and translations must not be empty")
	}
	for _, s := range c.ScaleFactors() {
		if s <= 0 || s > 1 {
			return fmt.Errorf("Validate: scale %v outside of (0,1]", s)
		}
	}
	for _, t := range c.Translations {
		if t < 0 {
			return fmt.Errorf("Validate: negative translation %d", t)
		}
	}
	if c.Lambda < 0 || c.Lambda > 1 {
		return fmt.Errorf("Validate: lambda %v outside of [0,1]", c.Lambda)
	}
	if c.CanvasWidth <= 0 || c.CanvasHeight <= 0 {
		return fmt.Errorf("Validate: invalid canvas %dx%d", c.CanvasWidth, c.CanvasHeight)
	}
	return nil
}

//Result is the outcome of one run.
type Result struct {
	Population *evaluate.Population
	Ranked     []evaluate.Ranked
	Winner     evaluate.Ranked
	MeanRMSE   float64
	Hypotheses int //visited hypotheses, skipped ones included
	Skipped    int

	//Composite is the winner's aligned composite, rebuilt once the search is over. May be nil.
	Composite *gocv.Mat
}

//Close releases the winner's composite
func (r *Result) Close() {
	if r != nil && r.Composite != nil {
		r.Composite.Close()
		r.Composite = nil
	}
}

//Render draws the winner's aligned skeleton on a copy of its composite
func (r *Result) Render() (gocv.Mat, error) {
	if r.Winner.OptimalParams == nil || r.Composite == nil {
		return gocv.Mat{}, errors.New("Render: winner has no composite")
	}
	return skeleton.Draw(*r.Composite, r.Winner.Aligned), nil
}

//Driver owns one estimator and runs searches with it sequentially.
type Driver struct {
	est   pose.Estimator
	cfg   Config
	cache *bbox.Cache

	//OnHypothesis, when set, is called once per visited hypothesis.
	OnHypothesis func(h evaluate.Hypothesis)
}

//NewDriver returns a driver. cache may be nil.
func NewDriver(est pose.Estimator, cfg Config, cache *bbox.Cache) *Driver {
	return &Driver{est: est, cfg: cfg, cache: cache}
}

//Total returns the number of hypotheses a run over the given counts visits.
func (d *Driver) Total(uppers, bottoms int) int {
	return uppers * bottoms * len(d.cfg.ScaleFactors()) * len(d.cfg.Translations)
}

//run holds the state of a single invocation of Run.
type run struct {
	*Driver
	pop        *evaluate.Population
	hypotheses int
	skipped    int
}

//Run searches every (upper, bottom, scale, translation) hypothesis. Hypotheses
//that can not be aligned or yield incomplete skeletons are logged and skipped;
//estimator failures abort the run. An empty population is an error.
func (d *Driver) Run(uppers, bottoms []utils.NamedImage) (*Result, error) {
	if err := d.cfg.Validate(); err != nil {
		return nil, err
	}

	r := &run{Driver: d, pop: &evaluate.Population{}}
	for _, upper := range uppers {
		for _, bottom := range bottoms {
			for _, scale := range d.cfg.ScaleFactors() {
				if err := r.scale(upper, bottom, scale); err != nil {
					return nil, err
				}
			}
		}
	}

	res := &Result{Population: r.pop, Hypotheses: r.hypotheses, Skipped: r.skipped}
	if r.pop.Len() == 0 {
		return nil, fmt.Errorf("Run: %d hypotheses, got '%w'", r.hypotheses, evaluate.ErrEmptyPopulation)
	}

	ranked, err := r.pop.Rank(d.cfg.Lambda)
	if err != nil {
		return nil, fmt.Errorf("Run: Error, got '%w'", err)
	}
	best, err := evaluate.Best(ranked)
	if err != nil {
		return nil, fmt.Errorf("Run: Error, got '%w'", err)
	}
	mean, err := r.pop.MeanRMSE()
	if err != nil {
		return nil, fmt.Errorf("Run: Error, got '%w'", err)
	}
	res.Ranked, res.Winner, res.MeanRMSE = ranked, ranked[best], mean

	//composites are not kept during the search, the pipeline is deterministic so the winner's is built again
	merged, err := d.rebuild(res.Winner.Hypothesis, uppers, bottoms)
	if err != nil {
		log.Printf("Run: Could not rebuild the winner composite, got '%v'", err)
	} else {
		res.Composite = &merged
	}

	return res, nil
}

//rebuild returns the aligned composite of h
func (d *Driver) rebuild(h evaluate.Hypothesis, uppers, bottoms []utils.NamedImage) (gocv.Mat, error) {
	upper, ok := findImage(uppers, h.Upper)
	if !ok {
		return gocv.Mat{}, fmt.Errorf("rebuild: unknown upper image '%s'", h.Upper)
	}
	bottom, ok := findImage(bottoms, h.Bottom)
	if !ok {
		return gocv.Mat{}, fmt.Errorf("rebuild: unknown bottom image '%s'", h.Bottom)
	}

	p, err := d.prepare(upper, bottom, h.Scale)
	if err != nil {
		return gocv.Mat{}, err
	}
	defer p.Close()

	return d.composite(p, h.Translation)
}

func findImage(images []utils.NamedImage, id string) (utils.NamedImage, bool) {
	for _, img := range images {
		if img.ID == id {
			return img, true
		}
	}
	return utils.NamedImage{}, false
}

//destination returns the triangle the upper image is fitted onto for a bottom image
//at scale, translation 0. Missing cache entries fall back to the scaled bottom
//rectangle and are recorded in the cache.
func (d *Driver) destination(bottomID string, scaled gocv.Mat, scale float64) geometry.Triangle {
	if tri, ok := d.cache.Get(bottomID, scale); ok {
		return tri
	}

	tri := geometry.RectTriangle(scaled.Cols(), scaled.Rows(), 0)
	if d.cache != nil {
		d.cache.Put(bottomID, scale, tri)
	}
	return tri
}

func (r *run) visit(h evaluate.Hypothesis, skipped bool) {
	r.hypotheses++
	if skipped {
		r.skipped++
	}
	if r.OnHypothesis != nil {
		r.OnHypothesis(h)
	}
}

//prepared holds the images every translation of one (upper, bottom, scale) shares
type prepared struct {
	scaled  gocv.Mat //bottom at scale
	aligned gocv.Mat //upper fitted onto the bottom frame and cropped, translation 0
}

func (p *prepared) Close() {
	p.scaled.Close()
	p.aligned.Close()
}

//prepare scales bottom, warps upper onto the destination triangle and crops the
//black transform padding. A failure here rules out every translation of the scale.
func (d *Driver) prepare(upper, bottom utils.NamedImage, scale float64) (*prepared, error) {
	scaled, err := composite.Scale(bottom.Mat, scale)
	if err != nil {
		return nil, err
	}

	src := geometry.RectTriangle(upper.Mat.Cols(), upper.Mat.Rows(), 0)
	warped, err := geometry.Align(upper.Mat, src, d.destination(bottom.ID, scaled, scale))
	if err != nil {
		scaled.Close()
		return nil, err
	}
	defer warped.Close()

	aligned, err := composite.CropToContent(warped)
	if err != nil {
		scaled.Close()
		return nil, err
	}

	return &prepared{scaled: scaled, aligned: aligned}, nil
}

//alignedUpper is the cropped upper image moved t pixels right
func (p *prepared) alignedUpper(t int) (gocv.Mat, error) {
	return composite.ShiftRight(p.aligned, t)
}

//composite builds the canvas sized aligned composite of translation t
func (d *Driver) composite(p *prepared, t int) (gocv.Mat, error) {
	upper, err := p.alignedUpper(t)
	if err != nil {
		return gocv.Mat{}, err
	}
	defer upper.Close()

	stacked := composite.BuildAligned(upper, p.scaled)
	defer stacked.Close()
	return composite.PadToCanvas(stacked, d.cfg.CanvasWidth, d.cfg.CanvasHeight), nil
}

func (r *run) scale(upper, bottom utils.NamedImage, scale float64) error {
	hypothesis := func(t int) evaluate.Hypothesis {
		return evaluate.Hypothesis{Upper: upper.ID, Bottom: bottom.ID, Scale: scale, Translation: t}
	}

	p, err := r.prepare(upper, bottom, scale)
	if err != nil {
		log.Printf("Run: Skipping upper '%s' bottom '%s' scale %v, got '%v'", upper.ID, bottom.ID, scale, err)
		for _, t := range r.cfg.Translations {
			r.visit(hypothesis(t), true)
		}
		return nil
	}
	defer p.Close()

	naive := &reference{upper: upper.Mat, bottom: p.scaled}

	for _, t := range r.cfg.Translations {
		h := hypothesis(t)

		candidate, err := r.evaluate(h, p, naive)
		if err != nil {
			if isLocal(err) {
				log.Printf("Run: No full skeleton for %+v, got '%v'", h, err)
				r.visit(h, true)
				continue
			}
			return err
		}

		r.pop.Add(candidate)
		r.visit(h, false)
	}

	return nil
}

//evaluate scores one hypothesis. The aligned composite is estimated first and a
//hypothesis with an incomplete aligned skeleton never reaches the reference.
func (r *run) evaluate(h evaluate.Hypothesis, p *prepared, naive *reference) (*evaluate.OptimalParams, error) {
	merged, err := r.composite(p, h.Translation)
	if err != nil {
		return nil, err
	}
	defer merged.Close()

	alignedSkeleton, err := pose.Detect(r.est, merged, r.cfg.required())
	if err != nil {
		return nil, err
	}

	referenceSkeleton, err := naive.skeleton(r.est, r.cfg)
	if err != nil {
		return nil, err
	}

	return evaluate.NewOptimalParams(h, alignedSkeleton, referenceSkeleton, r.cfg.CanvasWidth, r.cfg.CanvasHeight), nil
}

//reference lazily estimates the naive composite of one (upper, bottom, scale).
//It does not depend on the translation, so it is estimated at most once.
type reference struct {
	upper  gocv.Mat
	bottom gocv.Mat

	done bool
	s    skeleton.Skeleton
	err  error
}

func (ref *reference) skeleton(est pose.Estimator, cfg Config) (skeleton.Skeleton, error) {
	if ref.done {
		return ref.s, ref.err
	}

	stacked := composite.BuildNaive(ref.upper, ref.bottom)
	defer stacked.Close()
	merged := composite.PadToCanvas(stacked, cfg.CanvasWidth, cfg.CanvasHeight)
	defer merged.Close()

	ref.s, ref.err = pose.Detect(est, merged, cfg.required())
	if ref.err != nil {
		ref.err = fmt.Errorf("reference composite: %w", ref.err)
	}
	ref.done = true
	return ref.s, ref.err
}

//isLocal reports errors that skip a single hypothesis instead of aborting the run.
func isLocal(err error) bool {
	return errors.Is(err, pose.ErrIncompleteSkeleton) ||
		errors.Is(err, composite.ErrNoForeground) ||
		errors.Is(err, geometry.ErrDegenerateTriangle)
}
