package io

import (
	"fmt"
	goio "io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/idlab-discover/GeoAccuRate-cli/internal/apperr"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/labels"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/sampling"
)

// LabelOptions configures ReadLabels.
type LabelOptions struct {
	// Column names; empty means "predicted", "reference" and "weight".
	PredictedColumn string
	ReferenceColumn string
	WeightColumn    string
	// Nodata codes. Rows with a nodata code or an empty cell in either label
	// column are excluded and counted.
	Nodata []labels.ClassLabel
}

func (o LabelOptions) columns() (pred, ref, weight string) {
	pred, ref, weight = o.PredictedColumn, o.ReferenceColumn, o.WeightColumn
	if pred == "" {
		pred = "predicted"
	}
	if ref == "" {
		ref = "reference"
	}
	if weight == "" {
		weight = "weight"
	}
	return pred, ref, weight
}

// ReadLabels reads paired labels from a CSV file with a header row.
func ReadLabels(path string, opt LabelOptions) (labels.Pairs, error) {
	f, err := os.Open(path)
	if err != nil {
		return labels.Pairs{}, err
	}
	defer f.Close()
	return DecodeLabels(f, opt)
}

// DecodeLabels reads paired labels from CSV. An optional weight column
// attaches per-sample weights.
func DecodeLabels(r goio.Reader, opt LabelOptions) (labels.Pairs, error) {
	rows, err := gocsv.CSVToMaps(r)
	if err != nil {
		return labels.Pairs{}, fmt.Errorf("read labels: %w", err)
	}
	if len(rows) == 0 {
		return labels.Pairs{}, apperr.Invalid("labels", "no label rows")
	}
	predCol, refCol, weightCol := opt.columns()
	for _, col := range []string{predCol, refCol} {
		if _, ok := rows[0][col]; !ok {
			return labels.Pairs{}, apperr.Invalidf("labels", "missing column %q", col)
		}
	}
	_, weighted := rows[0][weightCol]

	var (
		pred, ref []labels.ClassLabel
		weights   []float64
		excluded  int
	)
	for i, row := range rows {
		line := i + 2 // header is line 1
		p, pok, err := parseLabel(row[predCol], opt.Nodata)
		if err != nil {
			return labels.Pairs{}, apperr.Invalidf(predCol, "line %d: %v", line, err)
		}
		q, qok, err := parseLabel(row[refCol], opt.Nodata)
		if err != nil {
			return labels.Pairs{}, apperr.Invalidf(refCol, "line %d: %v", line, err)
		}
		if !pok || !qok {
			excluded++
			continue
		}
		pred = append(pred, p)
		ref = append(ref, q)
		if weighted {
			w, err := strconv.ParseFloat(strings.TrimSpace(row[weightCol]), 64)
			if err != nil {
				return labels.Pairs{}, apperr.Invalidf(weightCol, "line %d: %v", line, err)
			}
			weights = append(weights, w)
		}
	}

	opts := []labels.Option{labels.WithExcluded(excluded)}
	if weighted {
		opts = append(opts, labels.WithWeights(weights))
	}
	return labels.New(pred, ref, opts...)
}

// parseLabel returns ok=false for nodata.
func parseLabel(s string, nodata []labels.ClassLabel) (labels.ClassLabel, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, fmt.Errorf("class code %q is not an integer", s)
	}
	c := labels.ClassLabel(n)
	if slices.Contains(nodata, c) {
		return 0, false, nil
	}
	return c, true, nil
}

type classRow struct {
	Class  labels.ClassLabel `csv:"class"`
	Name   string            `csv:"name"`
	Area   float64           `csv:"area"`
	Pixels int               `csv:"pixels"`
	To     labels.ClassLabel `csv:"to"`
}

func readClassRows(path string) ([]classRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows []classRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	seen := make(map[labels.ClassLabel]bool, len(rows))
	for _, r := range rows {
		if seen[r.Class] {
			return nil, apperr.Invalidf("class", "%s: class %d listed twice", filepath.Base(path), r.Class)
		}
		seen[r.Class] = true
	}
	return rows, nil
}

// ReadNames reads a class,name CSV.
func ReadNames(path string) (map[labels.ClassLabel]string, error) {
	rows, err := readClassRows(path)
	if err != nil {
		return nil, err
	}
	out := make(map[labels.ClassLabel]string, len(rows))
	for _, r := range rows {
		if name := strings.TrimSpace(r.Name); name != "" {
			out[r.Class] = name
		}
	}
	return out, nil
}

// ReadMapping reads a class,to CSV translating map codes to reference codes.
func ReadMapping(path string) (map[labels.ClassLabel]labels.ClassLabel, error) {
	rows, err := readClassRows(path)
	if err != nil {
		return nil, err
	}
	out := make(map[labels.ClassLabel]labels.ClassLabel, len(rows))
	for _, r := range rows {
		out[r.Class] = r.To
	}
	return out, nil
}

// ReadAreas reads per-class mapped areas from a CSV with a class column and
// either an area column or a pixels column. Pixel counts are multiplied by
// pixelArea. Names found in an optional name column are returned as well.
func ReadAreas(path string, pixelArea float64) (map[labels.ClassLabel]float64, map[labels.ClassLabel]string, error) {
	if pixelArea <= 0 {
		return nil, nil, apperr.Invalidf("pixel_area", "must be > 0, got %v", pixelArea)
	}
	rows, err := readClassRows(path)
	if err != nil {
		return nil, nil, err
	}
	areas := make(map[labels.ClassLabel]float64, len(rows))
	names := make(map[labels.ClassLabel]string)
	for _, r := range rows {
		a := r.Area
		if a == 0 {
			a = float64(r.Pixels) * pixelArea
		}
		areas[r.Class] = a
		if r.Name != "" {
			names[r.Class] = r.Name
		}
	}
	return areas, names, nil
}

// ReadStrata reads a class,pixels[,name] CSV.
func ReadStrata(path string) ([]sampling.Stratum, error) {
	rows, err := readClassRows(path)
	if err != nil {
		return nil, err
	}
	out := make([]sampling.Stratum, len(rows))
	for i, r := range rows {
		out[i] = sampling.Stratum{Class: r.Class, Pixels: r.Pixels, Name: r.Name}
	}
	return out, nil
}

// ReadCandidates reads an x,y,class CSV of candidate pixel centres.
func ReadCandidates(path string) ([]sampling.Candidate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []sampling.Candidate
	if err := gocsv.UnmarshalFile(f, &out); err != nil {
		return nil, fmt.Errorf("read candidates: %w", err)
	}
	return out, nil
}

// WriteSamples writes sample points as an id,x,y,stratum CSV, creating
// directories as needed.
func WriteSamples(path string, points []sampling.Point) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if points == nil {
		points = []sampling.Point{}
	}
	return gocsv.MarshalFile(&points, f)
}
