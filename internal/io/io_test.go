package io

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/idlab-discover/GeoAccuRate-cli/internal/apperr"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/labels"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/sampling"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return p
}

func TestResolveFormat_AllCases(t *testing.T) {
	tcs := []struct {
		path, format string
		want         Format
		ok           bool
	}{
		{"r.json", "auto", FormatJSON, true},
		{"r.yaml", "", FormatYAML, true},
		{"r.YML", "auto", FormatYAML, true},
		{"r", "", FormatJSON, true},
		{"r.txt", "auto", FormatJSON, true},
		{"r.json", " JSON ", FormatJSON, true},
		{"r", "yaml", FormatYAML, true},
		{"r.yml", "yaml", FormatYAML, true},
		{"r.yaml", "json", "", false},
		{"r.json", "yaml", "", false},
		{"r.json", "xml", "", false},
	}
	for _, tc := range tcs {
		got, err := ResolveFormat(tc.path, tc.format)
		if (err == nil) != tc.ok || got != tc.want {
			t.Fatalf("ResolveFormat(%q, %q) = (%q, %v), want (%q, ok=%v)", tc.path, tc.format, got, err, tc.want, tc.ok)
		}
	}
}

func TestDecodeLabels_NodataExcluded(t *testing.T) {
	csv := "id,predicted,reference\n" +
		"1,1,1\n" +
		"2,2,1\n" +
		"3,,2\n" +
		"4,255,2\n" +
		"5,3,3\n"
	p, err := DecodeLabels(strings.NewReader(csv), LabelOptions{Nodata: []labels.ClassLabel{255}})
	if err != nil {
		t.Fatalf("DecodeLabels: %v", err)
	}
	if p.Len() != 3 {
		t.Fatalf("expected 3 pairs, got %d", p.Len())
	}
	if p.Excluded() != 2 {
		t.Fatalf("expected 2 excluded, got %d", p.Excluded())
	}
	if diff := cmp.Diff([]labels.ClassLabel{1, 2, 3}, p.Predicted()); diff != "" {
		t.Fatalf("predicted mismatch (-want +got):\n%s", diff)
	}
	if p.HasWeights() {
		t.Fatalf("expected no weights")
	}
}

func TestDecodeLabels_CustomColumnsAndWeights(t *testing.T) {
	csv := "map,truth,w\n1,1,0.5\n2,1,1.5\n"
	p, err := DecodeLabels(strings.NewReader(csv), LabelOptions{
		PredictedColumn: "map", ReferenceColumn: "truth", WeightColumn: "w",
	})
	if err != nil {
		t.Fatalf("DecodeLabels: %v", err)
	}
	if got := p.WeightTotal(); got != 2 {
		t.Fatalf("expected weight total 2, got %v", got)
	}
}

func TestDecodeLabels_Errors(t *testing.T) {
	tcs := []struct {
		name, csv, param string
	}{
		{"missing column", "predicted,ref\n1,1\n", "labels"},
		{"no rows", "predicted,reference\n", "labels"},
		{"non-integer", "predicted,reference\n1,1\n2.5,1\n", "predicted"},
		{"bad weight", "predicted,reference,weight\n1,1,x\n", "weight"},
		{"negative weight", "predicted,reference,weight\n1,1,-1\n", "weights[0]"},
		{"all nodata", "predicted,reference\n,1\n", "predicted"},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeLabels(strings.NewReader(tc.csv), LabelOptions{})
			var ie *apperr.InvalidInputError
			if !errors.As(err, &ie) {
				t.Fatalf("expected InvalidInputError, got %v", err)
			}
			if ie.Param != tc.param {
				t.Fatalf("expected param %q, got %q (%v)", tc.param, ie.Param, err)
			}
		})
	}
}

func TestDecodeLabels_MessageNamesLine(t *testing.T) {
	_, err := DecodeLabels(strings.NewReader("predicted,reference\n1,1\n1,x\n"), LabelOptions{})
	if err == nil || !strings.Contains(err.Error(), "line 3") {
		t.Fatalf("expected error naming line 3, got %v", err)
	}
}

func TestReadLabels_OpenError(t *testing.T) {
	if _, err := ReadLabels(filepath.Join(t.TempDir(), "missing.csv"), LabelOptions{}); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestReadAreas(t *testing.T) {
	p := writeFile(t, "areas.csv", "class,pixels,area,name\n1,100,,Forest\n2,50,,\n3,0,12.5,Water\n")
	areas, names, err := ReadAreas(p, 0.09)
	if err != nil {
		t.Fatalf("ReadAreas: %v", err)
	}
	want := map[labels.ClassLabel]float64{1: 9, 2: 4.5, 3: 12.5}
	if diff := cmp.Diff(want, areas, cmp.Comparer(func(a, b float64) bool { return a-b < 1e-9 && b-a < 1e-9 })); diff != "" {
		t.Fatalf("areas mismatch (-want +got):\n%s", diff)
	}
	if names[1] != "Forest" || names[3] != "Water" || names[2] != "" {
		t.Fatalf("unexpected names: %v", names)
	}

	if _, _, err := ReadAreas(p, 0); !apperr.IsInvalidInput(err) {
		t.Fatalf("expected invalid pixel area, got %v", err)
	}
}

func TestReadClassRows_Duplicate(t *testing.T) {
	p := writeFile(t, "names.csv", "class,name\n1,Forest\n1,Water\n")
	if _, err := ReadNames(p); !apperr.IsInvalidInput(err) {
		t.Fatalf("expected duplicate class error, got %v", err)
	}
}

func TestReadNamesAndMapping(t *testing.T) {
	names, err := ReadNames(writeFile(t, "names.csv", "class,name\n1, Forest \n2,\n"))
	if err != nil {
		t.Fatalf("ReadNames: %v", err)
	}
	if diff := cmp.Diff(map[labels.ClassLabel]string{1: "Forest"}, names); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}

	m, err := ReadMapping(writeFile(t, "map.csv", "class,to\n10,1\n20,2\n"))
	if err != nil {
		t.Fatalf("ReadMapping: %v", err)
	}
	if diff := cmp.Diff(map[labels.ClassLabel]labels.ClassLabel{10: 1, 20: 2}, m); diff != "" {
		t.Fatalf("mapping mismatch (-want +got):\n%s", diff)
	}
}

func TestReadStrataAndCandidates(t *testing.T) {
	strata, err := ReadStrata(writeFile(t, "strata.csv", "class,pixels,name\n2,300,Crop\n1,700,Forest\n"))
	if err != nil {
		t.Fatalf("ReadStrata: %v", err)
	}
	want := []sampling.Stratum{{Class: 2, Pixels: 300, Name: "Crop"}, {Class: 1, Pixels: 700, Name: "Forest"}}
	if diff := cmp.Diff(want, strata); diff != "" {
		t.Fatalf("strata mismatch (-want +got):\n%s", diff)
	}

	cands, err := ReadCandidates(writeFile(t, "cands.csv", "x,y,class\n0.5,1.5,1\n10,20,2\n"))
	if err != nil {
		t.Fatalf("ReadCandidates: %v", err)
	}
	if diff := cmp.Diff([]sampling.Candidate{{X: 0.5, Y: 1.5, Stratum: 1}, {X: 10, Y: 20, Stratum: 2}}, cands); diff != "" {
		t.Fatalf("candidates mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteSamples(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "points.csv")
	pts := []sampling.Point{{ID: 1, X: 0.5, Y: 2, Stratum: 3}, {ID: 2, X: 10, Y: 20, Stratum: 1}}
	if err := WriteSamples(out, pts); err != nil {
		t.Fatalf("WriteSamples: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 3 || lines[0] != "id,x,y,stratum" || lines[1] != "1,0.5,2,3" {
		t.Fatalf("unexpected CSV:\n%s", b)
	}
}

func testDesign(t *testing.T) sampling.Design {
	t.Helper()
	d, err := sampling.NewDesign(sampling.DefaultDesignParams(), []sampling.Stratum{
		{Class: 1, Pixels: 6000, Name: "Forest"},
		{Class: 2, Pixels: 4000},
	})
	if err != nil {
		t.Fatalf("NewDesign: %v", err)
	}
	return d
}

func TestDesign_RoundTrip(t *testing.T) {
	for _, name := range []string{"design.json", "design.yaml"} {
		t.Run(name, func(t *testing.T) {
			d := testDesign(t)
			out := filepath.Join(t.TempDir(), name)
			if err := WriteDesign(d, out, "auto"); err != nil {
				t.Fatalf("WriteDesign: %v", err)
			}
			got, err := ReadDesign(out, "")
			if err != nil {
				t.Fatalf("ReadDesign: %v", err)
			}
			if diff := cmp.Diff(d, got); diff != "" {
				t.Fatalf("design mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReadDesign_Errors(t *testing.T) {
	if _, err := ReadDesign(writeFile(t, "d.json", `{`), "json"); err == nil {
		t.Fatalf("expected decode error for invalid JSON")
	}
	if _, err := ReadDesign(writeFile(t, "d.json", `{"scheme":"systematic"}`), "auto"); err == nil {
		t.Fatalf("expected error for unsupported scheme")
	}
	if _, err := ReadDesign(filepath.Join(t.TempDir(), "missing.yaml"), "auto"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestWriteReport_JSONAndYAML(t *testing.T) {
	dir := t.TempDir()
	v := map[string]any{"overall_accuracy": 0.9, "classes": []int{1, 2}}

	jp := filepath.Join(dir, "r.json")
	if err := WriteReport(v, jp, "auto"); err != nil {
		t.Fatalf("WriteReport json: %v", err)
	}
	b, _ := os.ReadFile(jp)
	var back map[string]any
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}

	yp := filepath.Join(dir, "r.yaml")
	if err := WriteReport(v, yp, "auto"); err != nil {
		t.Fatalf("WriteReport yaml: %v", err)
	}
	b, _ = os.ReadFile(yp)
	if !strings.Contains(string(b), "overall_accuracy: 0.9") {
		t.Fatalf("unexpected YAML:\n%s", b)
	}

	if err := WriteReport(v, filepath.Join(dir, "r.json"), "yaml"); err == nil {
		t.Fatalf("expected extension/format mismatch error")
	}
}

func TestWriteText(t *testing.T) {
	out := filepath.Join(t.TempDir(), "a", "methods.txt")
	if err := WriteText(out, "hello"); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	if b, _ := os.ReadFile(out); string(b) != "hello" {
		t.Fatalf("unexpected content %q", b)
	}
}
