package ui

import (
	"image/color"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/fang"
)

// Palette. Greens and blues follow the land/water convention of map legends.
var (
	ColorPrimary   = lipgloss.Color("#0E7490") // Deep teal
	ColorSecondary = lipgloss.Color("#38BDF8") // Sky
	ColorSuccess   = lipgloss.Color("#22C55E") // Green
	ColorWarning   = lipgloss.Color("#EAB308") // Ochre
	ColorError     = lipgloss.Color("#DC2626") // Red
	ColorMuted     = lipgloss.Color("#6B7280") // Gray
	ColorHighlight = lipgloss.Color("#A3E635") // Lime

	ColorText    = lipgloss.Color("#F9FAFB")
	ColorTextDim = lipgloss.Color("#9CA3AF")
)

// styleWrapper keeps the call sites short: ui.Dim.Render(s).
type styleWrapper struct {
	style lipgloss.Style
}

func (s styleWrapper) Render(str string) string { return s.style.Render(str) }

// Bold returns a copy of the style with bold set to v.
func (s styleWrapper) Bold(v bool) styleWrapper { return styleWrapper{s.style.Bold(v)} }

func fg(c color.Color) styleWrapper { return styleWrapper{lipgloss.NewStyle().Foreground(c)} }

var (
	Bold          = styleWrapper{lipgloss.NewStyle().Bold(true)}
	Dim           = fg(ColorTextDim)
	Muted         = fg(ColorMuted)
	Success       = fg(ColorSuccess)
	Warning       = fg(ColorWarning)
	Error         = fg(ColorError)
	Secondary     = fg(ColorSecondary)
	Highlight     = fg(ColorHighlight).Bold(true)
	Title         = fg(ColorPrimary).Bold(true)
	SectionHeader = fg(ColorSecondary).Bold(true)
)

// GetCheckMark returns a styled check mark
func GetCheckMark() string { return Success.Render("✓") }

// GetCrossMark returns a styled cross mark
func GetCrossMark() string { return Error.Render("✗") }

// GetWarnMark returns a styled warning mark
func GetWarnMark() string { return Warning.Render("⚠") }

// GetInfoMark returns a styled info mark
func GetInfoMark() string { return Secondary.Render("ℹ") }

// severityMark maps a finding severity to its mark.
func severityMark(severity string) string {
	switch severity {
	case "error":
		return GetCrossMark()
	case "warning":
		return GetWarnMark()
	}
	return GetInfoMark()
}

// Accuracy tiers used for bars and per-class highlights. The 85% target is
// the customary minimum for thematic map accuracy.
const (
	accuracyGood = 0.85
	accuracyFair = 0.70
)

type accuracyTier int

const (
	tierPoor accuracyTier = iota
	tierFair
	tierGood
)

func tierOf(score float64) accuracyTier {
	switch {
	case score >= accuracyGood:
		return tierGood
	case score >= accuracyFair:
		return tierFair
	}
	return tierPoor
}

func accuracyStyle(score float64) styleWrapper {
	switch tierOf(score) {
	case tierGood:
		return Success
	case tierFair:
		return Warning
	}
	return Error
}

type boxWrapper struct {
	style lipgloss.Style
}

func (b boxWrapper) Render(str string) string { return b.style.Render(str) }

func roundedBox(c color.Color) boxWrapper {
	return boxWrapper{lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(c).Padding(0, 1)}
}

var (
	Box        = roundedBox(ColorMuted)
	SuccessBox = roundedBox(ColorSuccess)
	ErrorBox   = roundedBox(ColorError)
)

// FormatKeyValue formats a key-value pair with styling
func FormatKeyValue(key, value string) string {
	return Dim.Render(key+": ") + value
}

// FangColorScheme returns a Fang color scheme based on the application's color palette
func FangColorScheme(c lipgloss.LightDarkFunc) fang.ColorScheme {
	return fang.ColorScheme{
		Base:           ColorText,
		Title:          ColorPrimary,
		Description:    ColorTextDim,
		Codeblock:      c(lipgloss.Color("#E5E7EB"), lipgloss.Color("#1E293B")),
		Program:        ColorSecondary,
		DimmedArgument: ColorMuted,
		Comment:        ColorMuted,
		Flag:           ColorHighlight,
		FlagDefault:    ColorTextDim,
		Command:        ColorSuccess,
		QuotedString:   ColorSecondary,
		Argument:       ColorText,
		Help:           ColorTextDim,
		Dash:           ColorMuted,
		ErrorHeader:    [2]color.Color{ColorText, ColorError},
		ErrorDetails:   ColorError,
	}
}

// BannerASCII is the ASCII art banner for the application
const BannerASCII = `
   ____             _                   ____       _
  / ___| ___  ___  / \   ___ ___ _   _|  _ \ __ _| |_ ___
 | |  _ / _ \/ _ \/ _ \ / __/ __| | | | |_) / _` + "`" + ` | __/ _ \
 | |_| |  __/ (_) / ___ \ (_| (__| |_| |  _ < (_| | ||  __/
  \____|\___|\___/_/   \_\___\___|\__,_|_| \_\__,_|\__\___|
`

// RenderGradientBanner renders the banner in the primary teal
func RenderGradientBanner(banner string) string {
	return Title.Render(banner)
}
