package theme

// Palette and ttk style setup for the ruler window. InitStyles activates the
// base theme and configures the semantic styles used by the views.

import (
	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// Palette defines core semantic colors used across widgets.
const (
	ColorBg        = "#f7f9fb" // app background
	ColorSurface   = "#ffffff" // status and history panels
	ColorBorder    = "#d0d7de"
	ColorPrimary   = "#2563eb" // buttons, result text
	ColorDanger    = "#dc2626" // quit, diagnostics
	ColorAccent    = "#10b981" // calibration badge
	ColorText      = "#1e293b"
	ColorTextMuted = "#64748b"
)

// PaletteSnapshot represents resolved colors for the active mode.
type PaletteSnapshot struct {
	AppBg     string
	Surface   string
	Border    string
	Primary   string
	Danger    string
	Accent    string
	Text      string
	TextMuted string
}

// CurrentPalette returns colors for the current dark/light mode.
func CurrentPalette() PaletteSnapshot { return palette(darkMode) }

func palette(dark bool) PaletteSnapshot {
	if dark {
		return PaletteSnapshot{
			AppBg:     "#0f172a",
			Surface:   "#1e293b",
			Border:    "#334155",
			Primary:   "#3b82f6",
			Danger:    "#ef4444",
			Accent:    "#10b981",
			Text:      "#f1f5f9",
			TextMuted: "#94a3b8",
		}
	}
	return PaletteSnapshot{
		AppBg:     ColorBg,
		Surface:   ColorSurface,
		Border:    ColorBorder,
		Primary:   ColorPrimary,
		Danger:    ColorDanger,
		Accent:    ColorAccent,
		Text:      ColorText,
		TextMuted: ColorTextMuted,
	}
}

// style names used with Style("primary.TButton") etc.
const (
	StylePrimaryButton = "primary.TButton"
	StyleDangerButton  = "danger.TButton"
	StyleStatusLabel   = "status.TLabel"
	StyleCalibLabel    = "calib.TLabel"
	StyleHistoryLabel  = "history.TLabel"
)

var darkMode bool

// InitStyles (re)applies styles for the current mode.
func InitStyles() { applyStyles(palette(darkMode)) }

// SetDark switches mode and reapplies styles. Returns the new mode.
func SetDark(dark bool) bool {
	darkMode = dark
	applyStyles(palette(darkMode))
	return darkMode
}

// IsDark reports current mode.
func IsDark() bool { return darkMode }

func applyStyles(p PaletteSnapshot) {
	_ = ActivateTheme("azure light") // baseline metrics
	App.Configure(Background(p.AppBg))

	StyleConfigure(StylePrimaryButton,
		Background(p.Primary),
		Foreground("white"),
		Padding("4p 3p"),
		Borderwidth(1),
		Relief("ridge"),
	)
	StyleConfigure(StyleDangerButton,
		Background(p.Danger),
		Foreground("white"),
		Padding("4p 3p"),
		Borderwidth(1),
		Relief("ridge"),
	)
	StyleConfigure(StyleStatusLabel,
		Foreground(p.Text),
		Background(p.Surface),
		Padding("4p 2p"),
		Borderwidth(1),
		Relief("ridge"),
	)
	StyleConfigure(StyleCalibLabel,
		Foreground("white"),
		Background(p.Accent),
		Padding("4p 2p"),
		Borderwidth(1),
		Relief("groove"),
	)
	StyleConfigure(StyleHistoryLabel,
		Foreground(p.TextMuted),
		Background(p.Surface),
		Padding("2p 1p"),
	)
}
