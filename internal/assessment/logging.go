package assessment

import (
	"io"

	"github.com/idlab-discover/GeoAccuRate-cli/internal/logging"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/ui"
)

var logger = &logging.Logger{PrefixText: "Assessment:", PrefixColor: ui.FgGreen}

// SetLogger sets an optional destination for pipeline logs.
func SetLogger(w io.Writer) { logger.SetWriter(w) }

func logf(runID string, format string, args ...any) {
	logger.Logf(runID, format, args...)
}
