package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idlab-discover/GeoAccuRate-cli/internal/apperr"
	geoio "github.com/idlab-discover/GeoAccuRate-cli/internal/io"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/labels"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/matrix"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/rules"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/ui"
)

var (
	checkLabels       string
	checkNodata       []string
	checkClasses      []string
	checkMapping      string
	checkNames        string
	checkDesign       string
	checkAreas        bool
	checkProjected    bool
	checkMinTotal     int
	checkMinClass     int
	checkStrict       bool
	checkLogLevel     string
	checkPlainSummary bool
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run the validation rules over labels and/or a sample design",
	Long: "Checks reference labels for under-sampled classes, empty rows and columns and nodata exclusions, " +
		"a sample design for strata below the recommended minimum, and the CRS precondition for area estimation. " +
		"Exits non-zero when an error is found, or any warning with --strict.",
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	level, err := resolveLogLevel("check")
	if err != nil {
		return err
	}
	wireLoggers(level)

	labelsPath := viper.GetString("check.labels")
	designPath := viper.GetString("check.design")
	if labelsPath == "" && designPath == "" {
		return apperr.User("either --labels or --design is required")
	}

	t := rules.DefaultThresholds()
	overrideInt("check.min-total", &t.MinTotalSamples)
	overrideInt("check.min-class", &t.MinClassSamples)
	if err := apperr.Validate(t); err != nil {
		return err
	}

	names := make(map[labels.ClassLabel]string)
	if path := viper.GetString("check.names"); path != "" {
		if names, err = geoio.ReadNames(path); err != nil {
			return err
		}
	}

	in := rules.Input{
		Area:      viper.GetBool("check.areas"),
		Projected: viper.GetBool("check.projected"),
	}
	var samples, classes int
	if labelsPath != "" {
		nodata, err := parseClassList("nodata", viper.GetStringSlice("check.nodata"))
		if err != nil {
			return err
		}
		fixed, err := parseClassList("classes", viper.GetStringSlice("check.classes"))
		if err != nil {
			return err
		}
		pairs, err := geoio.ReadLabels(labelsPath, geoio.LabelOptions{Nodata: nodata})
		if err != nil {
			return err
		}
		if path := viper.GetString("check.mapping"); path != "" {
			mapping, err := geoio.ReadMapping(path)
			if err != nil {
				return err
			}
			pairs = pairs.Remap(mapping)
		}
		m, err := matrix.Build(pairs, fixed...)
		if err != nil {
			return err
		}
		in.Pairs = &pairs
		in.Matrix = &m
		samples, classes = m.Total(), m.Size()
	}
	if designPath != "" {
		d, err := geoio.ReadDesign(designPath, "auto")
		if err != nil {
			return err
		}
		alloc := d.Allocation
		in.Allocation = &alloc
		in.MinPerClass = d.Params.MinPerClass
		for _, s := range d.Allocation.Strata {
			if s.Name != "" {
				if _, ok := names[s.Class]; !ok {
					names[s.Class] = s.Name
				}
			}
		}
		if labelsPath == "" {
			samples, classes = d.Allocation.Total, len(d.Allocation.Strata)
		}
	}

	ws := rules.Evaluate(in, t, names)
	strict := viper.GetBool("check.strict")
	view := checkView(samples, classes, ws, strict)

	if viper.GetBool("check.plain-summary") {
		ui.NewCheckUI(cmd.OutOrStdout(), false).PrintSimpleReport(view)
	} else {
		ui.NewCheckUI(cmd.OutOrStdout(), level == "quiet").PrintReport(view)
	}
	if level == "debug" {
		rules.PrintReport(ws)
	}

	if !view.Passed {
		return apperr.User(rules.FormatSummary(rules.Summarize(ws), strict))
	}
	return nil
}

func init() {
	checkCmd.Flags().StringVarP(&checkLabels, "labels", "i", "", "CSV of paired labels with predicted and reference columns")
	checkCmd.Flags().StringSliceVar(&checkNodata, "nodata", []string{}, "Class codes treated as nodata and excluded (comma-separated)")
	checkCmd.Flags().StringSliceVar(&checkClasses, "classes", []string{}, "Fixed class set for the matrix (default: observed classes)")
	checkCmd.Flags().StringVar(&checkMapping, "mapping", "", "CSV (class,to) remapping predicted codes")
	checkCmd.Flags().StringVar(&checkNames, "names", "", "CSV (class,name) of class display names")
	checkCmd.Flags().StringVarP(&checkDesign, "design", "d", "", "Sample design file to check the allocation of")
	checkCmd.Flags().BoolVar(&checkAreas, "areas", false, "Area estimation is planned (checks the CRS precondition)")
	checkCmd.Flags().BoolVar(&checkProjected, "projected", false, "The map uses a projected CRS")
	checkCmd.Flags().IntVar(&checkMinTotal, "min-total", 0, "Recommended minimum number of reference samples (default 50)")
	checkCmd.Flags().IntVar(&checkMinClass, "min-class", 0, "Recommended minimum reference samples per class (default 25)")
	checkCmd.Flags().BoolVar(&checkStrict, "strict", false, "Fail on warnings, not only on errors")
	checkCmd.Flags().StringVar(&checkLogLevel, "log-level", "", "Log level: quiet|standard|debug")
	checkCmd.Flags().BoolVar(&checkPlainSummary, "plain-summary", false, "Print a plain summary (no styling)")

	// Bind all flags to viper for config file support
	viper.BindPFlag("check.labels", checkCmd.Flags().Lookup("labels"))
	viper.BindPFlag("check.nodata", checkCmd.Flags().Lookup("nodata"))
	viper.BindPFlag("check.classes", checkCmd.Flags().Lookup("classes"))
	viper.BindPFlag("check.mapping", checkCmd.Flags().Lookup("mapping"))
	viper.BindPFlag("check.names", checkCmd.Flags().Lookup("names"))
	viper.BindPFlag("check.design", checkCmd.Flags().Lookup("design"))
	viper.BindPFlag("check.areas", checkCmd.Flags().Lookup("areas"))
	viper.BindPFlag("check.projected", checkCmd.Flags().Lookup("projected"))
	viper.BindPFlag("check.min-total", checkCmd.Flags().Lookup("min-total"))
	viper.BindPFlag("check.min-class", checkCmd.Flags().Lookup("min-class"))
	viper.BindPFlag("check.strict", checkCmd.Flags().Lookup("strict"))
	viper.BindPFlag("check.log-level", checkCmd.Flags().Lookup("log-level"))
	viper.BindPFlag("check.plain-summary", checkCmd.Flags().Lookup("plain-summary"))
}
