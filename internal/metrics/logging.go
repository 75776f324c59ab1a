package metrics

import (
	"io"

	"github.com/idlab-discover/GeoAccuRate-cli/internal/logging"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/ui"
)

var logger = &logging.Logger{PrefixText: "Metrics:", PrefixColor: ui.FgCyan, OmitEntity: true}

// SetLogger sets an optional destination for metric logs.
func SetLogger(w io.Writer) { logger.SetWriter(w) }

func logf(format string, args ...any) {
	logger.Logf("", format, args...)
}
