package disagreement

import (
	"io"

	"github.com/idlab-discover/GeoAccuRate-cli/internal/logging"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/ui"
)

var logger = &logging.Logger{PrefixText: "Disagreement:", PrefixColor: ui.FgMagenta, OmitEntity: true}

// SetLogger sets an optional destination for disagreement logs.
func SetLogger(w io.Writer) { logger.SetWriter(w) }

func logf(format string, args ...any) {
	logger.Logf("", format, args...)
}
