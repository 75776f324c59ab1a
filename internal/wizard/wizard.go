// Package wizard provides the interactive form used by `design --interactive`.
package wizard

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/idlab-discover/GeoAccuRate-cli/internal/apperr"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/sampling"
)

// designValues holds the raw form state. Numbers are edited as text so the
// form can show the current value and validate on the fly.
type designValues struct {
	confidence  string
	expected    string
	margin      string
	total       string
	minPerClass string
	minDistance string
	seed        string
	fpc         bool
	policy      sampling.Policy
	scope       sampling.SpacingScope
}

func newValues(p sampling.DesignParams) *designValues {
	scope := p.SpacingScope
	if scope == "" {
		scope = sampling.SpacingStratum
	}
	policy := p.Policy
	if policy == sampling.Manual || policy == "" {
		policy = sampling.Proportional
	}
	return &designValues{
		confidence:  formatFloat(p.Confidence),
		expected:    formatFloat(p.ExpectedAccuracy),
		margin:      formatFloat(p.Margin),
		total:       strconv.Itoa(p.Total),
		minPerClass: strconv.Itoa(p.MinPerClass),
		minDistance: formatFloat(p.MinDistance),
		seed:        strconv.FormatUint(p.Seed, 10),
		fpc:         p.FinitePopulation,
		policy:      policy,
		scope:       scope,
	}
}

// apply parses the form state on top of p.
func (v *designValues) apply(p sampling.DesignParams) (sampling.DesignParams, error) {
	var err error
	if p.Confidence, err = parseUnit("confidence", v.confidence); err != nil {
		return p, err
	}
	if p.ExpectedAccuracy, err = parseUnit("expected_accuracy", v.expected); err != nil {
		return p, err
	}
	if p.Margin, err = parseUnit("margin_of_error", v.margin); err != nil {
		return p, err
	}
	if p.Total, err = parseCount("total", v.total, 0); err != nil {
		return p, err
	}
	if p.MinPerClass, err = parseCount("min_per_class", v.minPerClass, 1); err != nil {
		return p, err
	}
	if p.MinDistance, err = parseDistance(v.minDistance); err != nil {
		return p, err
	}
	if p.Seed, err = strconv.ParseUint(strings.TrimSpace(v.seed), 10, 64); err != nil {
		return p, apperr.Invalidf("seed", "must be a non-negative integer, got %q", v.seed)
	}
	p.FinitePopulation = v.fpc
	p.Policy = v.policy
	p.SpacingScope = v.scope
	p.Counts = nil
	return p, nil
}

func (v *designValues) form() *huh.Form {
	unit := func(param string) func(string) error {
		return func(s string) error {
			_, err := parseUnit(param, s)
			return err
		}
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Sample Design").
				Description("Sample size follows Cochran's formula for a proportion.\nPress Enter to keep a value."),
			huh.NewInput().
				Title("Confidence level").
				Description("Between 0 and 1, e.g. 0.95").
				Value(&v.confidence).
				Validate(unit("confidence")),
			huh.NewInput().
				Title("Expected overall accuracy").
				Description("Anticipated accuracy of the map, e.g. 0.85").
				Value(&v.expected).
				Validate(unit("expected_accuracy")),
			huh.NewInput().
				Title("Margin of error").
				Description("Half-width of the target interval, e.g. 0.05").
				Value(&v.margin).
				Validate(unit("margin_of_error")),
			huh.NewConfirm().
				Title("Apply finite population correction?").
				Value(&v.fpc),
		),
		huh.NewGroup(
			huh.NewSelect[sampling.Policy]().
				Title("Allocation").
				Options(
					huh.NewOption("Proportional to stratum size", sampling.Proportional),
					huh.NewOption("Equal per stratum", sampling.Equal),
				).
				Value(&v.policy),
			huh.NewInput().
				Title("Total sample size").
				Description("0 uses the computed sample size").
				Value(&v.total).
				Validate(func(s string) error {
					_, err := parseCount("total", s, 0)
					return err
				}),
			huh.NewInput().
				Title("Recommended minimum per class").
				Value(&v.minPerClass).
				Validate(func(s string) error {
					_, err := parseCount("min_per_class", s, 1)
					return err
				}),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Minimum distance between points").
				Description("In map units; 0 disables the check").
				Value(&v.minDistance).
				Validate(func(s string) error {
					_, err := parseDistance(s)
					return err
				}),
			huh.NewSelect[sampling.SpacingScope]().
				Title("Distance applies to").
				Options(
					huh.NewOption("Points of the same stratum", sampling.SpacingStratum),
					huh.NewOption("All points", sampling.SpacingGlobal),
				).
				Value(&v.scope),
			huh.NewInput().
				Title("Random seed").
				Value(&v.seed),
		),
	)
}

// DesignForm prompts for design parameters, pre-filled with p. Aborting the
// form returns apperr.ErrCancelled.
func DesignForm(p sampling.DesignParams) (sampling.DesignParams, error) {
	v := newValues(p)
	if err := v.form().Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return p, apperr.ErrCancelled
		}
		return p, fmt.Errorf("design form: %w", err)
	}
	return v.apply(p)
}

func parseUnit(param, s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f <= 0 || f >= 1 {
		return 0, apperr.Invalidf(param, "must be a number strictly between 0 and 1, got %q", s)
	}
	return f, nil
}

func parseCount(param, s string, minimum int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < minimum {
		return 0, apperr.Invalidf(param, "must be an integer >= %d, got %q", minimum, s)
	}
	return n, nil
}

func parseDistance(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < 0 {
		return 0, apperr.Invalidf("min_distance", "must be a number >= 0, got %q", s)
	}
	return f, nil
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
