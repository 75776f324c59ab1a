package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/idlab-discover/GeoAccuRate-cli/internal/ui"
)

// Logger is a tiny opt-in logger used across internal packages.
// When Writer is nil, logging is disabled.
//
// The output format is:
//
//	<ColoredPrefix> <EntityKey>=<entity> <formattedMessage>\n
//
// where <entity> is trimmed and defaults to "(none)". EntityKey defaults to
// "run".
type Logger struct {
	Writer io.Writer

	PrefixText  string
	PrefixColor string
	EntityKey   string

	// OmitEntity controls whether the entity field is written.
	OmitEntity bool
}

func (l *Logger) SetWriter(w io.Writer) { l.Writer = w }

func (l *Logger) Enabled() bool { return l != nil && l.Writer != nil }

func (l *Logger) Logf(entity string, format string, args ...any) {
	if l == nil || l.Writer == nil {
		return
	}
	prefix := l.PrefixText
	if prefix == "" {
		prefix = "Log:"
	}
	if l.PrefixColor != "" {
		prefix = ui.Color(prefix, l.PrefixColor)
	}
	msg := fmt.Sprintf(format, args...)
	if l.OmitEntity {
		fmt.Fprintf(l.Writer, "%s %s\n", prefix, msg)
		return
	}

	key := l.EntityKey
	if key == "" {
		key = "run"
	}
	e := strings.TrimSpace(entity)
	if e == "" {
		e = "(none)"
	}
	fmt.Fprintf(l.Writer, "%s %s=%s %s\n", prefix, key, e, msg)
}
