package area

import (
	"io"

	"github.com/idlab-discover/GeoAccuRate-cli/internal/logging"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/ui"
)

var logger = &logging.Logger{PrefixText: "Area:", PrefixColor: ui.FgGreen, OmitEntity: true}

// SetLogger sets an optional destination for area estimation logs.
func SetLogger(w io.Writer) { logger.SetWriter(w) }

func logf(format string, args ...any) {
	logger.Logf("", format, args...)
}
