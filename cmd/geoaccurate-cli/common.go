package cmd

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/idlab-discover/GeoAccuRate-cli/internal/apperr"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/area"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/assessment"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/disagreement"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/labels"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/metrics"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/rules"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/sampling"
)

// resolveLogLevel reads <command>.log-level (config, env or flag).
func resolveLogLevel(command string) (string, error) {
	level := strings.ToLower(strings.TrimSpace(viper.GetString(command + ".log-level")))
	if level == "" {
		level = "standard"
	}
	switch level {
	case "quiet", "standard", "debug":
		return level, nil
	default:
		return "", apperr.Userf("invalid --log-level %q (expected quiet|standard|debug)", level)
	}
}

// wireLoggers sends package logs to stderr in debug mode and silences them
// otherwise.
func wireLoggers(level string) {
	var w io.Writer
	if level == "debug" {
		w = os.Stderr
	}
	assessment.SetLogger(w)
	metrics.SetLogger(w)
	disagreement.SetLogger(w)
	area.SetLogger(w)
	sampling.SetLogger(w)
	rules.SetLogger(w)
}

// parseClassList parses "1,2, 3" into class labels.
func parseClassList(param string, items []string) ([]labels.ClassLabel, error) {
	var out []labels.ClassLabel
	for _, item := range items {
		for _, s := range strings.Split(item, ",") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			n, err := strconv.Atoi(s)
			if err != nil {
				return nil, apperr.Userf("invalid --%s value %q: class codes are integers", param, s)
			}
			out = append(out, labels.ClassLabel(n))
		}
	}
	return out, nil
}

// requireString returns the viper value of key or a UserError naming flag.
func requireString(key, flag string) (string, error) {
	v := strings.TrimSpace(viper.GetString(key))
	if v == "" {
		return "", apperr.Userf("--%s is required", flag)
	}
	return v, nil
}

// overrideFloat replaces *dst when key is set in config, env or flags.
func overrideFloat(key string, dst *float64) {
	if viper.IsSet(key) {
		*dst = viper.GetFloat64(key)
	}
}

func overrideInt(key string, dst *int) {
	if viper.IsSet(key) {
		*dst = viper.GetInt(key)
	}
}

func overrideBool(key string, dst *bool) {
	if viper.IsSet(key) {
		*dst = viper.GetBool(key)
	}
}

// parseCounts parses manual allocation entries of the form "class=samples".
func parseCounts(items []string) (map[labels.ClassLabel]int, error) {
	out := make(map[labels.ClassLabel]int)
	for _, item := range items {
		for _, s := range strings.Split(item, ",") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			cls, n, ok := strings.Cut(s, "=")
			if !ok {
				return nil, apperr.Userf("invalid --counts entry %q (expected class=samples)", s)
			}
			c, err := strconv.Atoi(strings.TrimSpace(cls))
			if err != nil {
				return nil, apperr.Userf("invalid --counts entry %q: class codes are integers", s)
			}
			v, err := strconv.Atoi(strings.TrimSpace(n))
			if err != nil {
				return nil, apperr.Userf("invalid --counts entry %q: sample counts are integers", s)
			}
			out[labels.ClassLabel(c)] = v
		}
	}
	return out, nil
}
