package sampling

import (
	"fmt"
	"maps"
	"math"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/idlab-discover/GeoAccuRate-cli/internal/apperr"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/finding"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/labels"
)

// SpacingScope selects which accepted points a candidate is checked against.
type SpacingScope string

const (
	// SpacingStratum checks only points of the same stratum.
	SpacingStratum SpacingScope = "stratum"
	// SpacingGlobal checks points of every stratum generated so far.
	SpacingGlobal SpacingScope = "global"
)

// Candidate is a pixel centre eligible for sampling, in projected map units.
type Candidate struct {
	X       float64           `csv:"x"`
	Y       float64           `csv:"y"`
	Stratum labels.ClassLabel `csv:"class"`
}

// Point is an accepted sample location.
type Point struct {
	ID      int               `json:"id" yaml:"id" csv:"id"`
	X       float64           `json:"x" yaml:"x" csv:"x"`
	Y       float64           `json:"y" yaml:"y" csv:"y"`
	Stratum labels.ClassLabel `json:"stratum" yaml:"stratum" csv:"stratum"`
}

// GenerateParams configures Generate.
type GenerateParams struct {
	MinDistance float64      `json:"min_distance" validate:"gte=0"`
	Seed        uint64       `json:"seed"`
	Scope       SpacingScope `json:"spacing_scope" validate:"omitempty,oneof=stratum global"`
	// Progress, when set, is called after each stratum.
	Progress func(done, total int) `json:"-"`
}

// StratumOutcome reports how one stratum fared.
type StratumOutcome struct {
	Class      labels.ClassLabel `json:"class" yaml:"class"`
	Requested  int               `json:"requested" yaml:"requested"`
	Generated  int               `json:"generated" yaml:"generated"`
	Candidates int               `json:"candidates" yaml:"candidates"`
}

// Sample is the output of Generate.
type Sample struct {
	Points []Point          `json:"points" yaml:"points"`
	Strata []StratumOutcome `json:"strata" yaml:"strata"`
}

// Generate draws counts[c] points per stratum from the candidates. Strata
// are processed in ascending class order; candidates of each stratum are
// shuffled with a PCG stream seeded from (Seed, class), so the draw for one
// stratum does not depend on the others. A candidate is rejected when it lies
// closer than MinDistance to an accepted point (a kd-tree answers the
// nearest-neighbour query). Point IDs are sequential from 1.
//
// Falling short of a requested count is not an error; it is reported as a
// finding.
func Generate(candidates []Candidate, counts map[labels.ClassLabel]int, p GenerateParams) (Sample, []finding.Finding, error) {
	if err := apperr.Validate(p); err != nil {
		return Sample{}, nil, err
	}
	if p.Scope == "" {
		p.Scope = SpacingStratum
	}

	byStratum := make(map[labels.ClassLabel][]kdtree.Point)
	for i, c := range candidates {
		if !finite(c.X) || !finite(c.Y) {
			return Sample{}, nil, apperr.Invalidf(fmt.Sprintf("candidates[%d]", i), "coordinates must be finite, got (%v, %v)", c.X, c.Y)
		}
		byStratum[c.Stratum] = append(byStratum[c.Stratum], kdtree.Point{c.X, c.Y})
	}
	for c, n := range counts {
		if n < 0 {
			return Sample{}, nil, apperr.Invalidf(fmt.Sprintf("counts[%d]", c), "must be >= 0, got %d", n)
		}
	}

	minSq := p.MinDistance * p.MinDistance
	var (
		out    Sample
		fs     []finding.Finding
		global = &kdtree.Tree{}
		nextID = 1
	)
	classes := slices.Sorted(maps.Keys(counts))
	for step, class := range classes {
		want := counts[class]
		pool := byStratum[class]
		outcome := StratumOutcome{Class: class, Requested: want, Candidates: len(pool)}

		switch {
		case want == 0:
		case len(pool) == 0:
			fs = append(fs, finding.New(finding.RuleNoCandidates, finding.Stratum(class),
				"no candidate pixels; 0 of %d samples generated", want))
		default:
			rng := rand.New(rand.NewPCG(p.Seed, uint64(int64(class))))
			shuffled := slices.Clone(pool)
			rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

			tree := global
			if p.Scope == SpacingStratum {
				tree = &kdtree.Tree{}
			}
			for _, q := range shuffled {
				if outcome.Generated == want {
					break
				}
				if minSq > 0 {
					if _, d := tree.Nearest(q); d < minSq {
						continue
					}
					tree.Insert(q, false)
				}
				out.Points = append(out.Points, Point{ID: nextID, X: q[0], Y: q[1], Stratum: class})
				nextID++
				outcome.Generated++
			}
			if outcome.Generated < want {
				fs = append(fs, finding.New(finding.RuleSampleShortfall, finding.Stratum(class),
					"only %d of %d samples generated (insufficient candidates or minimum distance too strict)",
					outcome.Generated, want))
			}
		}

		logf(class.String(), "accepted %d of %d (candidates %d)", outcome.Generated, want, outcome.Candidates)
		out.Strata = append(out.Strata, outcome)
		if p.Progress != nil {
			p.Progress(step+1, len(classes))
		}
	}
	return out, fs, nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
