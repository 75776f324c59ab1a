package sampling

import (
	"io"

	"github.com/idlab-discover/GeoAccuRate-cli/internal/logging"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/ui"
)

var logger = &logging.Logger{PrefixText: "Sample:", PrefixColor: ui.FgYellow, EntityKey: "stratum"}

// SetLogger sets an optional destination for sampling logs.
func SetLogger(w io.Writer) { logger.SetWriter(w) }

func logf(stratum string, format string, args ...any) {
	logger.Logf(stratum, format, args...)
}
