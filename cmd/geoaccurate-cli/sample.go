package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	geoio "github.com/idlab-discover/GeoAccuRate-cli/internal/io"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/labels"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/rules"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/ui"
)

var (
	sampleDesign     string
	sampleFormat     string
	sampleCandidates string
	sampleOutput     string
	sampleLogLevel   string
)

// sampleCmd represents the sample command
var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Generate stratified random sample points from a design",
	Long: "Reads a design written by 'design' and a CSV of candidate pixel centres (x,y,class), draws the " +
		"allocated number of points per stratum with a seeded shuffle, rejects points closer than the design's " +
		"minimum distance and writes the accepted points as id,x,y,stratum CSV.",
	RunE: runSample,
}

func runSample(cmd *cobra.Command, args []string) error {
	level, err := resolveLogLevel("sample")
	if err != nil {
		return err
	}
	wireLoggers(level)
	quiet := level == "quiet"

	designPath, err := requireString("sample.design", "design")
	if err != nil {
		return err
	}
	candidatesPath, err := requireString("sample.candidates", "candidates")
	if err != nil {
		return err
	}
	output := viper.GetString("sample.output")
	if output == "" {
		output = "dist/samples.csv"
	}

	d, err := geoio.ReadDesign(designPath, viper.GetString("sample.format"))
	if err != nil {
		return err
	}
	candidates, err := geoio.ReadCandidates(candidatesPath)
	if err != nil {
		return err
	}

	names := make(map[labels.ClassLabel]string)
	strata := make([]string, len(d.Allocation.Strata))
	for i, s := range d.Allocation.Strata {
		strata[i] = stratumLabel(s.Class, s.Name)
		if s.Name != "" {
			names[s.Class] = s.Name
		}
	}

	sampleUI := ui.NewSampleUI(cmd.OutOrStdout(), quiet)
	sampleUI.StartStrata(strata)
	s, fs, err := d.Generate(candidates, sampleUI.Progress)
	sampleUI.Finish(err)
	if err != nil {
		return err
	}

	ws := rules.Evaluate(rules.Input{Findings: fs}, rules.DefaultThresholds(), names)
	if err := geoio.WriteSamples(output, s.Points); err != nil {
		return err
	}
	sampleUI.PrintReport(sampleView(s, d, ws, output))
	return nil
}

func init() {
	sampleCmd.Flags().StringVarP(&sampleDesign, "design", "d", "", "Design file written by 'design' (required)")
	sampleCmd.Flags().StringVarP(&sampleFormat, "format", "f", "", "Design format: json|yaml|auto")
	sampleCmd.Flags().StringVarP(&sampleCandidates, "candidates", "c", "", "CSV of candidate pixel centres with x, y and class columns (required)")
	sampleCmd.Flags().StringVarP(&sampleOutput, "output", "o", "", "Sample points CSV (default dist/samples.csv)")
	sampleCmd.Flags().StringVar(&sampleLogLevel, "log-level", "", "Log level: quiet|standard|debug")

	// Bind all flags to viper for config file support
	viper.BindPFlag("sample.design", sampleCmd.Flags().Lookup("design"))
	viper.BindPFlag("sample.format", sampleCmd.Flags().Lookup("format"))
	viper.BindPFlag("sample.candidates", sampleCmd.Flags().Lookup("candidates"))
	viper.BindPFlag("sample.output", sampleCmd.Flags().Lookup("output"))
	viper.BindPFlag("sample.log-level", sampleCmd.Flags().Lookup("log-level"))
}
