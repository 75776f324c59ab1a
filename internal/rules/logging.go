package rules

import (
	"io"

	"github.com/idlab-discover/GeoAccuRate-cli/internal/logging"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/ui"
)

var logger = &logging.Logger{PrefixText: "Rules:", PrefixColor: ui.FgRed, OmitEntity: true}

// SetLogger sets an optional destination for rule logs.
func SetLogger(w io.Writer) { logger.SetWriter(w) }

func logf(format string, args ...any) {
	logger.Logf("", format, args...)
}
