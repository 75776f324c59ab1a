// Package methods renders a publication-ready methods paragraph and the
// matching reference list for an assessment report.
package methods

import (
	"fmt"
	"strings"

	"github.com/idlab-discover/GeoAccuRate-cli/internal/assessment"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/metrics"
)

// Reference is one bibliography entry.
type Reference struct {
	Key      string `json:"key" yaml:"key"`
	Citation string `json:"citation" yaml:"citation"`
	DOI      string `json:"doi,omitempty" yaml:"doi,omitempty"`
}

// References cited by Text, in alphabetical order.
var References = []Reference{
	{
		Key:      "congalton2019",
		Citation: "Congalton, R.G. and Green, K. (2019). Assessing the Accuracy of Remotely Sensed Data: Principles and Practices, 3rd ed. CRC Press.",
	},
	{
		Key:      "olofsson2014",
		Citation: "Olofsson, P., Foody, G.M., Herold, M., Stehman, S.V., Woodcock, C.E. and Wulder, M.A. (2014). Good practices for estimating area and assessing accuracy of land change. Remote Sensing of Environment, 148, 42-57.",
		DOI:      "10.1016/j.rse.2014.02.015",
	},
	{
		Key:      "pontius2011",
		Citation: "Pontius, R.G. Jr. and Millones, M. (2011). Death to Kappa: birth of quantity disagreement and allocation disagreement for accuracy assessment. International Journal of Remote Sensing, 32(15), 4407-4429.",
		DOI:      "10.1080/01431161.2011.552923",
	},
}

// Options add optional sentences to Text.
type Options struct {
	// Sampling describes the sample design, e.g. "selected by stratified
	// random sampling with proportional allocation".
	Sampling string
}

// SamplingSentence describes a stratified random design with the given
// allocation policy, for use as Options.Sampling.
func SamplingSentence(policy string) string {
	return fmt.Sprintf("selected by stratified random sampling with %s allocation", policy)
}

// Text returns the methods section as paragraphs separated by blank lines.
func Text(r *assessment.Report, opt Options) string {
	conf := pct(metrics.ConfidenceForZ(r.Metrics.Z))
	var paras []string

	var b strings.Builder
	fmt.Fprintf(&b, "Accuracy was assessed with %d reference samples over %d classes", r.Matrix.Total, len(r.Matrix.Classes))
	if s := strings.TrimSpace(opt.Sampling); s != "" {
		fmt.Fprintf(&b, ", %s", s)
	}
	b.WriteString(". The confusion matrix was built following Congalton and Green (2019), with map classes in rows and reference classes in columns.")
	if n := r.Provenance.Excluded; n > 0 {
		fmt.Fprintf(&b, " %d sample(s) with nodata in the classified map were excluded.", n)
	}
	paras = append(paras, b.String())

	b.Reset()
	oa := r.Metrics.Overall
	fmt.Fprintf(&b, "Overall accuracy was %s (%s Wilson CI: %s to %s).",
		pct(oa.Estimate), conf, pct(oa.Interval.Lower), pct(oa.Interval.Upper))
	fmt.Fprintf(&b, " Following Pontius and Millones (2011), disagreement was split into quantity disagreement (%.4f) and allocation disagreement (%.4f).",
		r.Disagreement.Quantity, r.Disagreement.Allocation)
	if k := r.Metrics.Kappa; k.Defined {
		fmt.Fprintf(&b, " Cohen's Kappa (%.4f) is reported for comparison with earlier studies only.", k.Estimate)
	}
	paras = append(paras, b.String())

	if a := r.Area; a != nil {
		b.Reset()
		b.WriteString("Area-weighted accuracy and class areas were estimated following Olofsson et al. (2014), using mapped area proportions as stratum weights.")
		fmt.Fprintf(&b, " Area-weighted overall accuracy was %s (%s CI: %s to %s).",
			pct(a.Overall.Estimate), conf, pct(a.Overall.Interval.Lower), pct(a.Overall.Interval.Upper))
		b.WriteString(" Estimated class areas and their confidence intervals are listed in the area table.")
		paras = append(paras, b.String())
	}

	paras = append(paras, fmt.Sprintf(
		"Per-class producer's and user's accuracies with %s Wilson confidence intervals are listed in the per-class table.", conf))

	tool := r.Provenance.Tool
	if tool == "" {
		tool = assessment.Tool
	}
	paras = append(paras, fmt.Sprintf("All metrics were computed with %s %s.", tool, r.Provenance.Version))

	return strings.Join(paras, "\n\n")
}

// ReferenceList renders References one per paragraph.
func ReferenceList() string {
	out := make([]string, len(References))
	for i, ref := range References {
		out[i] = ref.Citation
		if ref.DOI != "" {
			out[i] += " https://doi.org/" + ref.DOI
		}
	}
	return strings.Join(out, "\n\n")
}

func pct(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}
