package ui

import "github.com/charmbracelet/lipgloss"

// Colors used throughout the TUI.
var (
	ColorRed     = lipgloss.Color("#FF0000")
	ColorGreen   = lipgloss.Color("#00FF00")
	ColorYellow  = lipgloss.Color("#FFFF00")
	ColorCyan    = lipgloss.Color("#00FFFF")
	ColorBlue    = lipgloss.Color("#3A6EA5")
	ColorTeal    = lipgloss.Color("#2A9D8F")
	ColorPlum    = lipgloss.Color("#9D4EDD")
	ColorSand    = lipgloss.Color("#B08948")
	ColorGray    = lipgloss.Color("#666666")
	ColorDimGray = lipgloss.Color("#444444")
	ColorWhite   = lipgloss.Color("#FFFFFF")
)

// Base styles reused by UI components.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorCyan)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(ColorCyan).
			Bold(true)

	FooterKeyStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)

	FooterDescStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	DividerStyle = lipgloss.NewStyle().
			Foreground(ColorDimGray)

	PlayingBadgeStyle = lipgloss.NewStyle().
				Foreground(ColorGreen).
				Bold(true)

	PausedBadgeStyle = lipgloss.NewStyle().
				Foreground(ColorGray)

	SnapBadgeStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	DirtyBadgeStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)
)

// Timeline surface styles. Clip bodies paint the lane background by kind;
// selection and drag previews restyle the same cells.
var (
	RulerStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	PlayheadStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true)

	MarkerStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	TrackNameStyle = lipgloss.NewStyle().
			Foreground(ColorWhite)

	TrackFlagStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	ClipVideoStyle = lipgloss.NewStyle().
			Foreground(ColorWhite).
			Background(ColorBlue)

	ClipAudioStyle = lipgloss.NewStyle().
			Foreground(ColorWhite).
			Background(ColorTeal)

	ClipOverlayStyle = lipgloss.NewStyle().
				Foreground(ColorWhite).
				Background(ColorPlum)

	ClipCaptionStyle = lipgloss.NewStyle().
				Foreground(ColorWhite).
				Background(ColorSand)

	ClipSelectedStyle = lipgloss.NewStyle().
				Foreground(ColorCyan).
				Background(ColorDimGray).
				Bold(true)

	GhostValidStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	GhostInvalidStyle = lipgloss.NewStyle().
				Foreground(ColorRed)

	SlidePreviewStyle = lipgloss.NewStyle().
				Foreground(ColorYellow)
)
