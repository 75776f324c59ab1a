package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idlab-discover/GeoAccuRate-cli/internal/assessment"
	geoio "github.com/idlab-discover/GeoAccuRate-cli/internal/io"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/labels"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/methods"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/ui"
)

var (
	assessLabels          string
	assessPredictedColumn string
	assessReferenceColumn string
	assessWeightColumn    string
	assessNodata          []string
	assessClasses         []string
	assessMapping         string
	assessNames           string
	assessAreas           string
	assessPixelArea       float64
	assessAreaUnit        string
	assessProjected       bool
	assessDesign          string
	assessConfidence      float64
	assessZ               float64
	assessMinTotal        int
	assessMinClass        int
	assessOutput          string
	assessFormat          string
	assessMethods         string
	assessLogLevel        string
	assessPlainSummary    bool
)

// assessCmd represents the assess command
var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Assess map accuracy from paired map and reference labels",
	Long: "Reads a CSV of paired predicted (map) and reference class codes, builds the confusion matrix " +
		"and reports overall, producer's and user's accuracy with Wilson intervals, quantity and allocation " +
		"disagreement and Cohen's kappa. With --areas, also estimates class areas (requires --projected).",
	RunE: runAssess,
}

func runAssess(cmd *cobra.Command, args []string) error {
	level, err := resolveLogLevel("assess")
	if err != nil {
		return err
	}
	wireLoggers(level)
	quiet := level == "quiet"

	labelsPath, err := requireString("assess.labels", "labels")
	if err != nil {
		return err
	}
	nodata, err := parseClassList("nodata", viper.GetStringSlice("assess.nodata"))
	if err != nil {
		return err
	}
	classes, err := parseClassList("classes", viper.GetStringSlice("assess.classes"))
	if err != nil {
		return err
	}

	outputPath := viper.GetString("assess.output")
	outputFormat := viper.GetString("assess.format")
	// Fail fast on format/extension mismatch
	if outputPath != "" {
		if _, err := geoio.ResolveFormat(outputPath, outputFormat); err != nil {
			return err
		}
	}

	pairs, err := geoio.ReadLabels(labelsPath, geoio.LabelOptions{
		PredictedColumn: viper.GetString("assess.predicted-column"),
		ReferenceColumn: viper.GetString("assess.reference-column"),
		WeightColumn:    viper.GetString("assess.weight-column"),
		Nodata:          nodata,
	})
	if err != nil {
		return err
	}

	opt := assessment.DefaultOptions()
	opt.Version = version
	opt.Classes = classes
	opt.Inputs = map[string]string{"labels": labelsPath}
	if c := viper.GetFloat64("assess.confidence"); c != 0 {
		opt.Confidence = c
	}
	opt.Z = viper.GetFloat64("assess.z")
	if viper.IsSet("assess.min-total") {
		opt.Thresholds.MinTotalSamples = viper.GetInt("assess.min-total")
	}
	if viper.IsSet("assess.min-class") {
		opt.Thresholds.MinClassSamples = viper.GetInt("assess.min-class")
	}

	if path := viper.GetString("assess.mapping"); path != "" {
		if opt.Mapping, err = geoio.ReadMapping(path); err != nil {
			return err
		}
		opt.Inputs["mapping"] = path
	}
	names := map[labels.ClassLabel]string{}
	if path := viper.GetString("assess.names"); path != "" {
		if names, err = geoio.ReadNames(path); err != nil {
			return err
		}
		opt.Inputs["names"] = path
	}
	if path := viper.GetString("assess.areas"); path != "" {
		pixelArea := viper.GetFloat64("assess.pixel-area")
		if pixelArea == 0 {
			pixelArea = 1
		}
		areas, areaNames, err := geoio.ReadAreas(path, pixelArea)
		if err != nil {
			return err
		}
		for c, n := range areaNames {
			if _, ok := names[c]; !ok {
				names[c] = n
			}
		}
		opt.MappedArea = areas
		opt.AreaUnit = viper.GetString("assess.area-unit")
		opt.Projected = viper.GetBool("assess.projected")
		opt.Inputs["areas"] = path
	}
	opt.Names = names

	var samplingText string
	if path := viper.GetString("assess.design"); path != "" {
		d, err := geoio.ReadDesign(path, "auto")
		if err != nil {
			return err
		}
		seed := d.Params.Seed
		opt.Seed = &seed
		opt.Inputs["design"] = path
		samplingText = methods.SamplingSentence(string(d.Allocation.Policy))
	}

	assessUI := ui.NewAssessUI(cmd.OutOrStdout(), quiet || viper.GetBool("assess.plain-summary"))
	assessUI.StartWorkflow(assessment.StepNames())
	opt.OnProgress = func(e assessment.Event) {
		idx := int(e.Step)
		switch e.Type {
		case assessment.EventStepStart:
			assessUI.StartStep(idx)
		case assessment.EventStepComplete:
			assessUI.CompleteStep(idx, "")
		case assessment.EventStepSkipped:
			assessUI.SkipStep(idx, "no mapped areas")
		case assessment.EventStepFailed:
			assessUI.FailStep(idx, e.Err.Error())
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	rep, err := assessment.Run(ctx, pairs, opt)
	assessUI.FinishWorkflow()
	if err != nil {
		return err
	}

	var written []string
	if outputPath != "" {
		if err := geoio.WriteReport(rep, outputPath, outputFormat); err != nil {
			return err
		}
		written = append(written, outputPath)
	}
	if path := viper.GetString("assess.methods"); path != "" {
		text := methods.Text(rep, methods.Options{Sampling: samplingText}) +
			"\n\nReferences\n\n" + methods.ReferenceList() + "\n"
		if err := geoio.WriteText(path, text); err != nil {
			return err
		}
		written = append(written, path)
	}

	view := assessmentView(rep, written)
	if viper.GetBool("assess.plain-summary") {
		ui.NewAssessUI(cmd.OutOrStdout(), false).PrintSimpleReport(view)
		return nil
	}
	assessUI.PrintReport(view)
	return nil
}

func init() {
	assessCmd.Flags().StringVarP(&assessLabels, "labels", "i", "", "CSV of paired labels with predicted and reference columns (required)")
	assessCmd.Flags().StringVar(&assessPredictedColumn, "predicted-column", "", "Name of the predicted (map) column (default \"predicted\")")
	assessCmd.Flags().StringVar(&assessReferenceColumn, "reference-column", "", "Name of the reference column (default \"reference\")")
	assessCmd.Flags().StringVar(&assessWeightColumn, "weight-column", "", "Name of the optional weight column (default \"weight\")")
	assessCmd.Flags().StringSliceVar(&assessNodata, "nodata", []string{}, "Class codes treated as nodata and excluded (comma-separated)")
	assessCmd.Flags().StringSliceVar(&assessClasses, "classes", []string{}, "Fixed class set for the matrix (default: observed classes)")
	assessCmd.Flags().StringVar(&assessMapping, "mapping", "", "CSV (class,to) remapping predicted codes before assessment")
	assessCmd.Flags().StringVar(&assessNames, "names", "", "CSV (class,name) of class display names")
	assessCmd.Flags().StringVar(&assessAreas, "areas", "", "CSV of mapped area per class (class,area or class,pixels) for area estimation")
	assessCmd.Flags().Float64Var(&assessPixelArea, "pixel-area", 0, "Area of one pixel when --areas lists pixel counts")
	assessCmd.Flags().StringVar(&assessAreaUnit, "area-unit", "", "Unit of the mapped areas, e.g. ha")
	assessCmd.Flags().BoolVar(&assessProjected, "projected", false, "The map uses a projected CRS (required for area estimation)")
	assessCmd.Flags().StringVar(&assessDesign, "design", "", "Sample design file the labels were collected with (recorded in provenance)")
	assessCmd.Flags().Float64Var(&assessConfidence, "confidence", 0, "Confidence level for intervals (default 0.95)")
	assessCmd.Flags().Float64Var(&assessZ, "z", 0, "Explicit critical value, overrides --confidence")
	assessCmd.Flags().IntVar(&assessMinTotal, "min-total", 0, "Recommended minimum number of reference samples")
	assessCmd.Flags().IntVar(&assessMinClass, "min-class", 0, "Recommended minimum reference samples per class")
	assessCmd.Flags().StringVarP(&assessOutput, "output", "o", "", "Write the full report to this file")
	assessCmd.Flags().StringVarP(&assessFormat, "format", "f", "", "Report format: json|yaml|auto")
	assessCmd.Flags().StringVar(&assessMethods, "methods", "", "Write a methods paragraph with references to this file")
	assessCmd.Flags().StringVar(&assessLogLevel, "log-level", "", "Log level: quiet|standard|debug")
	assessCmd.Flags().BoolVar(&assessPlainSummary, "plain-summary", false, "Print a plain summary (no styling)")

	// Bind all flags to viper for config file support
	viper.BindPFlag("assess.labels", assessCmd.Flags().Lookup("labels"))
	viper.BindPFlag("assess.predicted-column", assessCmd.Flags().Lookup("predicted-column"))
	viper.BindPFlag("assess.reference-column", assessCmd.Flags().Lookup("reference-column"))
	viper.BindPFlag("assess.weight-column", assessCmd.Flags().Lookup("weight-column"))
	viper.BindPFlag("assess.nodata", assessCmd.Flags().Lookup("nodata"))
	viper.BindPFlag("assess.classes", assessCmd.Flags().Lookup("classes"))
	viper.BindPFlag("assess.mapping", assessCmd.Flags().Lookup("mapping"))
	viper.BindPFlag("assess.names", assessCmd.Flags().Lookup("names"))
	viper.BindPFlag("assess.areas", assessCmd.Flags().Lookup("areas"))
	viper.BindPFlag("assess.pixel-area", assessCmd.Flags().Lookup("pixel-area"))
	viper.BindPFlag("assess.area-unit", assessCmd.Flags().Lookup("area-unit"))
	viper.BindPFlag("assess.projected", assessCmd.Flags().Lookup("projected"))
	viper.BindPFlag("assess.design", assessCmd.Flags().Lookup("design"))
	viper.BindPFlag("assess.confidence", assessCmd.Flags().Lookup("confidence"))
	viper.BindPFlag("assess.z", assessCmd.Flags().Lookup("z"))
	viper.BindPFlag("assess.min-total", assessCmd.Flags().Lookup("min-total"))
	viper.BindPFlag("assess.min-class", assessCmd.Flags().Lookup("min-class"))
	viper.BindPFlag("assess.output", assessCmd.Flags().Lookup("output"))
	viper.BindPFlag("assess.format", assessCmd.Flags().Lookup("format"))
	viper.BindPFlag("assess.methods", assessCmd.Flags().Lookup("methods"))
	viper.BindPFlag("assess.log-level", assessCmd.Flags().Lookup("log-level"))
	viper.BindPFlag("assess.plain-summary", assessCmd.Flags().Lookup("plain-summary"))
}

