package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idlab-discover/GeoAccuRate-cli/internal/apperr"
	geoio "github.com/idlab-discover/GeoAccuRate-cli/internal/io"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/labels"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/rules"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/sampling"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/ui"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/wizard"
)

var (
	designStrata       string
	designConfidence   float64
	designExpected     float64
	designMargin       float64
	designTotal        int
	designFPC          bool
	designAllocation   string
	designCounts       []string
	designMinPerClass  int
	designMinDistance  float64
	designSpacingScope string
	designSeed         uint64
	designInteractive  bool
	designOutput       string
	designFormat       string
	designLogLevel     string
)

// designCmd represents the design command
var designCmd = &cobra.Command{
	Use:   "design",
	Short: "Compute a stratified random sample design",
	Long: "Computes the Cochran sample size for a target margin of error, optionally corrected for a finite " +
		"population, and allocates it across map strata read from a class,pixels CSV. The design is written " +
		"as YAML or JSON and consumed by the 'sample' command.",
	RunE: runDesign,
}

// designParams resolves the design parameters from defaults, config, env
// and flags.
func designParams() (sampling.DesignParams, error) {
	p := sampling.DefaultDesignParams()
	overrideFloat("design.confidence", &p.Confidence)
	overrideFloat("design.expected-accuracy", &p.ExpectedAccuracy)
	overrideFloat("design.margin", &p.Margin)
	overrideInt("design.total", &p.Total)
	overrideBool("design.fpc", &p.FinitePopulation)
	overrideInt("design.min-per-class", &p.MinPerClass)
	overrideFloat("design.min-distance", &p.MinDistance)
	if viper.IsSet("design.seed") {
		p.Seed = viper.GetUint64("design.seed")
	}
	if s := strings.TrimSpace(viper.GetString("design.spacing-scope")); s != "" {
		p.SpacingScope = sampling.SpacingScope(strings.ToLower(s))
	}
	if s := strings.TrimSpace(viper.GetString("design.allocation")); s != "" {
		policy, err := sampling.ParsePolicy(strings.ToLower(s))
		if err != nil {
			return p, err
		}
		p.Policy = policy
	}
	counts, err := parseCounts(viper.GetStringSlice("design.counts"))
	if err != nil {
		return p, err
	}
	// counts imply a manual allocation
	if len(counts) > 0 {
		p.Policy = sampling.Manual
		p.Counts = counts
	}
	return p, nil
}

func runDesign(cmd *cobra.Command, args []string) error {
	level, err := resolveLogLevel("design")
	if err != nil {
		return err
	}
	wireLoggers(level)

	strataPath, err := requireString("design.strata", "strata")
	if err != nil {
		return err
	}
	output := viper.GetString("design.output")
	if output == "" {
		output = "dist/design.yaml"
	}
	format := viper.GetString("design.format")
	if _, err := geoio.ResolveFormat(output, format); err != nil {
		return err
	}

	p, err := designParams()
	if err != nil {
		return err
	}
	if viper.GetBool("design.interactive") {
		if p.Policy == sampling.Manual {
			return apperr.User("--interactive cannot be used with manual counts")
		}
		if p, err = wizard.DesignForm(p); err != nil {
			return err
		}
	}

	strata, err := geoio.ReadStrata(strataPath)
	if err != nil {
		return err
	}

	designUI := ui.NewDesignUI(cmd.OutOrStdout(), level == "quiet")
	designUI.StartComputing()
	d, err := sampling.NewDesign(p, strata)
	designUI.StopComputing(err)
	if err != nil {
		return err
	}

	names := make(map[labels.ClassLabel]string)
	for _, s := range strata {
		if s.Name != "" {
			names[s.Class] = s.Name
		}
	}
	ws := rules.Evaluate(rules.Input{
		Allocation:  &d.Allocation,
		MinPerClass: p.MinPerClass,
	}, rules.DefaultThresholds(), names)

	if err := geoio.WriteDesign(d, output, format); err != nil {
		return err
	}
	designUI.PrintReport(designView(d, ws, output))
	return nil
}

func init() {
	designCmd.Flags().StringVarP(&designStrata, "strata", "s", "", "CSV of map strata with class and pixels columns (required)")
	designCmd.Flags().Float64Var(&designConfidence, "confidence", 0, "Confidence level (default 0.95)")
	designCmd.Flags().Float64Var(&designExpected, "expected-accuracy", 0, "Expected overall accuracy (default 0.85)")
	designCmd.Flags().Float64Var(&designMargin, "margin", 0, "Target margin of error (default 0.05)")
	designCmd.Flags().IntVar(&designTotal, "total", 0, "Fixed total sample size, overrides the Cochran size")
	designCmd.Flags().BoolVar(&designFPC, "fpc", true, "Apply the finite population correction")
	designCmd.Flags().StringVar(&designAllocation, "allocation", "", "Allocation policy: proportional|equal|manual")
	designCmd.Flags().StringSliceVar(&designCounts, "counts", []string{}, "Manual per-class counts, e.g. 1=50,2=30 (implies --allocation manual)")
	designCmd.Flags().IntVar(&designMinPerClass, "min-per-class", 0, "Recommended minimum samples per stratum (default 25)")
	designCmd.Flags().Float64Var(&designMinDistance, "min-distance", 0, "Minimum distance between sample points in map units")
	designCmd.Flags().StringVar(&designSpacingScope, "spacing-scope", "", "Minimum distance applies per stratum or globally: stratum|global")
	designCmd.Flags().Uint64Var(&designSeed, "seed", 0, "Random seed for point generation (default 42)")
	designCmd.Flags().BoolVar(&designInteractive, "interactive", false, "Edit the design parameters in an interactive form")
	designCmd.Flags().StringVarP(&designOutput, "output", "o", "", "Design output file (default dist/design.yaml)")
	designCmd.Flags().StringVarP(&designFormat, "format", "f", "", "Design format: json|yaml|auto")
	designCmd.Flags().StringVar(&designLogLevel, "log-level", "", "Log level: quiet|standard|debug")

	// Bind all flags to viper for config file support
	viper.BindPFlag("design.strata", designCmd.Flags().Lookup("strata"))
	viper.BindPFlag("design.confidence", designCmd.Flags().Lookup("confidence"))
	viper.BindPFlag("design.expected-accuracy", designCmd.Flags().Lookup("expected-accuracy"))
	viper.BindPFlag("design.margin", designCmd.Flags().Lookup("margin"))
	viper.BindPFlag("design.total", designCmd.Flags().Lookup("total"))
	viper.BindPFlag("design.fpc", designCmd.Flags().Lookup("fpc"))
	viper.BindPFlag("design.allocation", designCmd.Flags().Lookup("allocation"))
	viper.BindPFlag("design.counts", designCmd.Flags().Lookup("counts"))
	viper.BindPFlag("design.min-per-class", designCmd.Flags().Lookup("min-per-class"))
	viper.BindPFlag("design.min-distance", designCmd.Flags().Lookup("min-distance"))
	viper.BindPFlag("design.spacing-scope", designCmd.Flags().Lookup("spacing-scope"))
	viper.BindPFlag("design.seed", designCmd.Flags().Lookup("seed"))
	viper.BindPFlag("design.interactive", designCmd.Flags().Lookup("interactive"))
	viper.BindPFlag("design.output", designCmd.Flags().Lookup("output"))
	viper.BindPFlag("design.format", designCmd.Flags().Lookup("format"))
	viper.BindPFlag("design.log-level", designCmd.Flags().Lookup("log-level"))
}
