package cmd

import (
	"github.com/idlab-discover/GeoAccuRate-cli/internal/assessment"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/finding"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/labels"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/metrics"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/rules"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/sampling"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/ui"
)

func estimateView(r metrics.Result) ui.Estimate {
	return ui.Estimate{Value: r.Estimate, Lower: r.Interval.Lower, Upper: r.Interval.Upper, Defined: r.Defined}
}

func warningViews(ws []finding.Warning) []ui.WarningItem {
	out := make([]ui.WarningItem, len(ws))
	for i, w := range ws {
		out[i] = ui.WarningItem{
			Severity:    string(w.Severity),
			Subject:     w.Entity.Subject(),
			Message:     w.Message,
			Occurrences: w.Occurrences,
		}
	}
	return out
}

func assessmentView(r *assessment.Report, outputs []string) ui.AssessmentReport {
	v := ui.AssessmentReport{
		RunID:      r.Provenance.RunID,
		Samples:    r.Provenance.Samples,
		Excluded:   r.Provenance.Excluded,
		Confidence: metrics.ConfidenceForZ(r.Metrics.Z),
		Matrix:     r.Matrix.Counts,
		RowTotals:  r.Matrix.RowTotals,
		ColTotals:  r.Matrix.ColumnTotals,
		Total:      r.Matrix.Total,
		Overall:    estimateView(r.Metrics.Overall),
		Kappa:      estimateView(r.Metrics.Kappa),
		Quantity:   r.Disagreement.Quantity,
		Allocation: r.Disagreement.Allocation,
		Warnings:   warningViews(r.Warnings),
		Outputs:    outputs,
	}
	for _, c := range r.Matrix.Classes {
		v.Classes = append(v.Classes, r.Name(c))
	}
	for _, cm := range r.Metrics.Classes {
		v.PerClass = append(v.PerClass, ui.ClassRow{
			Label:     r.Name(cm.Class),
			Predicted: cm.Predicted,
			Reference: cm.Reference,
			Producers: estimateView(cm.Producers),
			Users:     estimateView(cm.Users),
			F1:        estimateView(cm.F1),
		})
	}
	if a := r.Area; a != nil {
		v.AreaUnit = a.Unit
		v.TotalArea = a.TotalArea
		overall := estimateView(a.Overall)
		v.AreaOverall = &overall
		for _, ce := range a.Classes {
			v.Area = append(v.Area, ui.AreaRow{
				Label:      r.Name(ce.Class),
				MappedArea: ce.MappedArea,
				Proportion: ce.Proportion,
				Area:       ce.Area,
				Lower:      ce.AreaCI.Lower,
				Upper:      ce.AreaCI.Upper,
				Users:      estimateView(ce.Users),
				Producers:  estimateView(ce.Producers),
			})
		}
	}
	return v
}

func stratumLabel(c labels.ClassLabel, name string) string {
	if name == "" {
		return c.String()
	}
	return c.String() + " " + name
}

func designView(d sampling.Design, ws []finding.Warning, output string) ui.DesignReport {
	v := ui.DesignReport{
		Scheme:           d.Scheme,
		Confidence:       d.Params.Confidence,
		ExpectedAccuracy: d.Params.ExpectedAccuracy,
		Margin:           d.Params.Margin,
		Z:                d.Size.Z,
		Raw:              d.Size.Raw,
		Required:         d.Size.Required,
		Corrected:        d.Size.Corrected,
		Adjusted:         d.Size.Adjusted,
		Population:       d.Size.Population,
		Policy:           string(d.Allocation.Policy),
		Total:            d.Allocation.Total,
		Warnings:         warningViews(ws),
		Output:           output,
	}
	for _, s := range d.Allocation.Strata {
		v.Strata = append(v.Strata, ui.StratumRow{
			Label:   stratumLabel(s.Class, s.Name),
			Pixels:  s.Pixels,
			Weight:  s.Weight,
			Samples: s.Samples,
		})
	}
	return v
}

func sampleView(s sampling.Sample, d sampling.Design, ws []finding.Warning, output string) ui.SampleReport {
	v := ui.SampleReport{Points: len(s.Points), Warnings: warningViews(ws), Output: output}
	for _, o := range s.Strata {
		var name string
		if sa, ok := d.Allocation.Get(o.Class); ok {
			name = sa.Name
		}
		v.Strata = append(v.Strata, ui.OutcomeRow{
			Label:      stratumLabel(o.Class, name),
			Requested:  o.Requested,
			Generated:  o.Generated,
			Candidates: o.Candidates,
		})
	}
	return v
}

func checkView(samples, classes int, ws []finding.Warning, strict bool) ui.CheckReport {
	s := rules.Summarize(ws)
	return ui.CheckReport{
		Samples:  samples,
		Classes:  classes,
		Warnings: warningViews(ws),
		Errors:   s.Errors,
		Warns:    s.Warnings,
		Infos:    s.Infos,
		Strict:   strict,
		Passed:   s.Passed(strict),
	}
}
